// Command server runs the single-owner OpenID identity provider.
//
// Business logic lives in the internal packages; main only loads
// configuration, wires dependencies, and owns the process lifecycle.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"ownidp/internal/decision"
	decisionmetrics "ownidp/internal/decision/metrics"
	"ownidp/internal/hcard"
	"ownidp/internal/openid"
	"ownidp/internal/password"
	"ownidp/internal/platform/config"
	"ownidp/internal/platform/httpserver"
	"ownidp/internal/platform/metrics"
	platformredis "ownidp/internal/platform/redis"
	"ownidp/internal/session"
	"ownidp/internal/trustroot"
	"ownidp/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}

	roots, cleanup, err := newTrustStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("trust store: %w", err)
	}
	defer cleanup()

	passwords, err := password.NewManager(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("password manager: %w", err)
	}

	sessions, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	codec := session.NewTokenCodec(sessionKey(cfg, logger))

	extractor := hcard.NewExtractor(hcard.NewHTTPFetcher(cfg.ExtractTimeout), logger)
	engine := decision.NewEngine(
		openid.NewUnsignedEngine(),
		roots,
		extractor,
		logger,
		decisionmetrics.New(),
	)

	handler := web.NewHandler(
		logger,
		engine,
		roots,
		sessions,
		codec,
		passwords,
		metrics.New(),
		cfg.BaseURL,
		cfg.SessionTTL,
	)

	router := chi.NewRouter()
	handler.Register(router)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Addr, "trust_store", cfg.TrustStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func newTrustStore(ctx context.Context, cfg config.Config) (trustroot.Store, func(), error) {
	switch cfg.TrustStore {
	case "file", "":
		store, err := trustroot.NewFileStore(filepath.Join(cfg.DataDir, "trusted"))
		return store, func() {}, err
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := trustroot.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case "memory":
		return trustroot.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown trust store backend %q", cfg.TrustStore)
	}
}

func newSessionStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (session.Store, error) {
	client, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		logger.Info("sessions kept in process memory")
		return session.NewMemoryStore(), nil
	}
	return session.NewRedisStore(client.Client), nil
}

// sessionKey returns the configured signing key, or a random one. A random
// key invalidates all browser sessions on restart.
func sessionKey(cfg config.Config, logger *slog.Logger) []byte {
	if cfg.SessionKey != "" {
		return []byte(cfg.SessionKey)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("session key: %v", err))
	}
	logger.Warn("OWNIDP_SESSION_KEY not set, sessions will not survive restarts")
	return key
}
