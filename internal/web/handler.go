// Package web serves the identity provider's HTTP surface: the OpenID
// endpoint, the owner's account pages, and discovery documents.
package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ownidp/internal/decision"
	"ownidp/internal/openid"
	"ownidp/internal/password"
	"ownidp/internal/platform/metrics"
	"ownidp/internal/platform/middleware"
	"ownidp/internal/session"
	"ownidp/internal/trustroot"
)

const sessionCookie = "ownidp_session"

// Handler wires the decision engine and the account state into HTTP routes.
type Handler struct {
	logger     *slog.Logger
	decisions  DecisionService
	roots      trustroot.Store
	sessions   session.Store
	codec      *session.TokenCodec
	passwords  *password.Manager
	metrics    *metrics.Metrics
	baseURL    string
	sessionTTL time.Duration
}

func NewHandler(
	logger *slog.Logger,
	decisions DecisionService,
	roots trustroot.Store,
	sessions session.Store,
	codec *session.TokenCodec,
	passwords *password.Manager,
	m *metrics.Metrics,
	baseURL string,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		logger:     logger,
		decisions:  decisions,
		roots:      roots,
		sessions:   sessions,
		codec:      codec,
		passwords:  passwords,
		metrics:    m,
		baseURL:    strings.TrimRight(baseURL, "/"),
		sessionTTL: sessionTTL,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Latency(h.metrics))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", h.handleIndex)
	r.Get("/yadis.xrds", h.handleYadis)
	r.Get("/healthz", h.handleHealth)

	r.Get("/endpoint", h.handleEndpoint)
	r.Post("/endpoint", h.handleEndpoint)

	r.Route("/account", func(r chi.Router) {
		r.Get("/", h.handleIndex)
		r.Get("/login", h.handleLoginForm)
		r.Post("/login", h.handleLogin)
		r.Get("/logout", h.handleLogout)
		r.Get("/change_password", h.handleChangePasswordForm)
		r.Post("/change_password", h.handleChangePassword)
		r.Get("/trusted", h.handleTrusted)
		r.Get("/trusted/delete", h.handleTrustedDeleteConfirm)
		r.Post("/trusted/delete", h.handleTrustedDelete)
		r.Get("/decision", h.handleDecisionForm)
		r.Post("/decision", h.handleDecision)
	})
}

// handleEndpoint receives relying-party protocol messages and relays the
// engine's verdict: terminal outcomes go straight back on the wire, the
// interactive ones detour through the owner's pages.
func (h *Handler) handleEndpoint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	_, loggedIn := h.currentSession(r)

	outcome, err := h.decisions.Begin(r.Context(), r.Form, loggedIn)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	switch outcome.State {
	case decision.StateNeedsLogin:
		h.redirectToLogin(w, r, "/endpoint?"+r.Form.Encode())
	case decision.StateNeedsDecision:
		http.Redirect(w, r, "/account/decision?"+r.Form.Encode(), http.StatusFound)
	case decision.StateRejected:
		http.Error(w, outcome.Reason, http.StatusBadRequest)
	default:
		relayWire(w, outcome.Wire)
	}
}

// handleDecisionForm shows the owner what the relying party is asking for.
func (h *Handler) handleDecisionForm(w http.ResponseWriter, r *http.Request) {
	if !h.requireLogin(w, r) {
		return
	}
	query := r.URL.Query()
	preview, err := h.decisions.Preview(r.Context(), query)
	if err != nil {
		http.Error(w, "not an authorization request", http.StatusBadRequest)
		return
	}
	h.render(w, r, "verify", map[string]any{
		"Title":     "Authorize " + preview.TrustRoot,
		"Identity":  preview.Identity,
		"TrustRoot": preview.TrustRoot,
		"Profile":   preview.Profile,
		"Query":     query,
	})
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	if !h.requireLogin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	choice := decision.ChoiceDecline
	switch {
	case r.Form.Has("approve"):
		choice = decision.ChoiceApprove
	case r.Form.Has("always"):
		choice = decision.ChoiceAlways
	}

	outcome, err := h.decisions.Resolve(r.Context(), r.Form, choice)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if outcome.State == decision.StateRejected {
		http.Error(w, outcome.Reason, http.StatusBadRequest)
		return
	}
	relayWire(w, outcome.Wire)
}

// currentSession resolves the session cookie. The second return is true only
// for a live logged-in session.
func (h *Handler) currentSession(r *http.Request) (session.Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return session.Session{}, false
	}
	id, err := h.codec.Verify(cookie.Value)
	if err != nil {
		return session.Session{}, false
	}
	sess, err := h.sessions.Find(r.Context(), id)
	if err != nil {
		return session.Session{}, false
	}
	return sess, sess.LoggedIn
}

// requireLogin bounces anonymous visitors to the login form, preserving the
// page they were after.
func (h *Handler) requireLogin(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := h.currentSession(r); ok {
		return true
	}
	h.redirectToLogin(w, r, r.URL.RequestURI())
	return false
}

func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request, returnTo string) {
	http.Redirect(w, r, "/account/login?return_to="+url.QueryEscape(returnTo), http.StatusFound)
}

// safeReturnTo restricts post-login redirects to local paths.
func safeReturnTo(raw string) string {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw
	}
	return "/account"
}

// origin is the externally visible base URL, either configured or inferred
// from the request.
func (h *Handler) origin(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		"path", r.URL.Path,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err,
	)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	data["Endpoint"] = h.origin(r) + "/endpoint"
	data["Yadis"] = h.origin(r) + "/yadis.xrds"
	if _, ok := data["Title"]; !ok {
		data["Title"] = "OpenID"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template render failed", "template", name, "error", err)
	}
}

// relayWire writes a protocol engine response verbatim.
func relayWire(w http.ResponseWriter, wire openid.WireResponse) {
	for k, v := range wire.Headers {
		w.Header().Set(k, v)
	}
	code := wire.Code
	if code == 0 {
		code = http.StatusOK
	}
	w.WriteHeader(code)
	if wire.Body != "" {
		_, _ = w.Write([]byte(wire.Body))
	}
}
