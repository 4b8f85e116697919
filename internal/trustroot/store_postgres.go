package trustroot

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ownidp/pkg/sentinel"
)

// PostgresStore keeps trust roots in a table keyed by canonical token, for
// deployments that already run Postgres instead of local disk.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const trustRootSchema = `
CREATE TABLE IF NOT EXISTS trust_roots (
	token TEXT PRIMARY KEY,
	url   TEXT NOT NULL
)`

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, trustRootSchema); err != nil {
		return nil, fmt.Errorf("trustroot: ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Add(ctx context.Context, url string) error {
	token, err := Token(url)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO trust_roots (token, url) VALUES ($1, $2) ON CONFLICT (token) DO NOTHING`,
		token, url)
	if err != nil {
		return fmt.Errorf("trustroot: add %q: %w", url, err)
	}
	return nil
}

func (s *PostgresStore) Check(ctx context.Context, url string) (bool, error) {
	token, err := Token(url)
	if err != nil {
		return false, err
	}
	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM trust_roots WHERE token = $1)`, token).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("trustroot: check %q: %w", url, err)
	}
	return exists, nil
}

func (s *PostgresStore) Delete(ctx context.Context, url string) error {
	token, err := Token(url)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM trust_roots WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("trustroot: delete %q: %w", url, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trustroot: delete %q: %w", url, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Items(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT token, url FROM trust_roots`)
	if err != nil {
		return nil, fmt.Errorf("trustroot: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Token, &e.URL); err != nil {
			return nil, fmt.Errorf("trustroot: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trustroot: list: %w", err)
	}
	return entries, nil
}
