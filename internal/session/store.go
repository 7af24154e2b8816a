// Package session holds per-session authentication state and the HTTP
// plumbing that attaches a session to each request.
//
// STORE AS A CAPABILITY INTERFACE:
// The backend (in-memory vs SQLite) is chosen exactly once at startup from
// configuration. Everything else programs against Store — the flow
// controller and the middleware neither know nor care which backend is
// behind it. This replaces the "if env == production" conditional scattered
// through a codebase with a single wiring decision in cmd/server.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/rs/xid"

	"github.com/sakif/readmegen/internal/model"
)

// ErrNotFound is returned by Get when no live session exists for the ID.
// An expired session is indistinguishable from a missing one — both report
// ErrNotFound and the caller starts a fresh session.
var ErrNotFound = errors.New("session: not found")

// Store persists session records keyed by their opaque ID.
//
// CONCURRENCY CONTRACT:
// Access is read-modify-write per request. Two concurrent requests mutating
// the same session race last-write-wins; no store-level locking is provided
// and callers must not rely on any.
type Store interface {
	// Get returns the live session for id, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Session, error)

	// Set inserts or replaces the session record.
	Set(ctx context.Context, s *model.Session) error

	// Destroy removes the session. Destroying an absent session is not an
	// error — the end state is the same.
	Destroy(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// NewID returns a fresh session identifier. The xid prefix gives IDs a
// sortable creation-time component (handy when eyeballing the store); the
// random suffix adds 128 bits of crypto/rand entropy so IDs are
// unguessable, which is what actually protects the session.
func NewID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; there is no
		// safe fallback for an unguessable ID.
		panic("session: crypto/rand unavailable: " + err.Error())
	}
	return xid.New().String() + hex.EncodeToString(buf)
}
