// Package password manages the single owner password guarding the account
// area. One bcrypt hash in one file; until a password is set the instance is
// considered unclaimed and login is open.
package password

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNoPassword signals that no password has ever been configured.
	ErrNoPassword = errors.New("no password set")
	// ErrMismatch signals a wrong password.
	ErrMismatch = errors.New("password mismatch")
)

const passwordFile = "password"

type Manager struct {
	dir string
}

func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("password: create store dir: %w", err)
	}
	return &Manager{dir: dir}, nil
}

func (m *Manager) path() string {
	return filepath.Join(m.dir, passwordFile)
}

// Set replaces the owner password.
func (m *Manager) Set(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("password: hash: %w", err)
	}
	if err := os.WriteFile(m.path(), hash, 0o600); err != nil {
		return fmt.Errorf("password: store: %w", err)
	}
	return nil
}

// Validate checks password against the stored hash. Returns ErrNoPassword
// when none was ever set, ErrMismatch on a wrong password, nil on success.
func (m *Manager) Validate(password string) error {
	hash, err := os.ReadFile(m.path())
	if os.IsNotExist(err) {
		return ErrNoPassword
	}
	if err != nil {
		return fmt.Errorf("password: read: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrMismatch
	}
	return nil
}
