// Package session tracks whether the identity provider's owner is logged in.
// Sessions live server-side keyed by ID; the browser holds only a signed
// token wrapping that ID.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
)

// Session is the owner's login state. NoPassword marks a session opened
// before any password was configured, so pages can prompt for one.
type Session struct {
	ID         string    `json:"id"`
	LoggedIn   bool      `json:"logged_in"`
	NoPassword bool      `json:"no_password,omitempty"`
	Device     string    `json:"device,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Store persists sessions. Find returns sentinel.ErrNotFound (wrapped) for
// unknown or expired session IDs.
type Store interface {
	Save(ctx context.Context, s Session) error
	Find(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// New builds a logged-in session for the given user agent.
func New(userAgent string, ttl time.Duration) Session {
	now := time.Now().UTC()
	return Session{
		ID:        uuid.NewString(),
		LoggedIn:  true,
		Device:    DeviceName(userAgent),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// DeviceName renders a user-agent string as a short human-readable device
// description for the account pages.
func DeviceName(rawUA string) string {
	if rawUA == "" {
		return "Unknown Device"
	}
	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OS()

	switch {
	case browser == "" && os == "":
		return "Unknown Device"
	case browser == "":
		return os
	case os == "":
		return browser
	}
	return strings.TrimSpace(browser + " on " + os)
}
