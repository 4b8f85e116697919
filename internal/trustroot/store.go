// Package trustroot persists the relying-party origins the owner has approved
// with "always allow". This is the identity provider's long-lived policy
// state; every other part of a request is ephemeral.
package trustroot

import "context"

// Entry is one trusted relying party. Token is a stable opaque identifier
// derived from the URL, usable to reference the entry (delete links) without
// re-encoding the URL.
type Entry struct {
	Token string
	URL   string
}

// Store implementations must provide atomic single-entry add/delete; no
// multi-entry transaction is ever required.
type Store interface {
	// Add records url as trusted. Adding an already-present url is a no-op
	// success.
	Add(ctx context.Context, url string) error

	// Check reports whether url is currently trusted.
	Check(ctx context.Context, url string) (bool, error)

	// Delete removes the trust record. Returns sentinel.ErrNotFound (wrapped)
	// when absent.
	Delete(ctx context.Context, url string) error

	// Items enumerates all trusted roots in unspecified order.
	Items(ctx context.Context) ([]Entry, error)
}
