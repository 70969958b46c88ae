package store

import (
	"context"
	"errors"

	"pokerledger/internal/core"
)

// Backend is the uniform persistence port behind the record store. Exactly one
// implementation is selected at startup; all of them move the full per-user
// collection in one round trip.
type Backend interface {
	// Load returns the persisted collection for username. A user that has
	// never saved anything yields an empty collection and no error.
	Load(ctx context.Context, username string) (records []core.Tournament, nextID int64, err error)

	// Save replaces the persisted collection for username.
	Save(ctx context.Context, username string, records []core.Tournament, nextID int64) error

	// Name identifies the backend for diagnostics only.
	Name() string
}

// Listener receives the full collection after every successful mutation.
type Listener func(records []core.Tournament)

var (
	// ErrNotFound marks an update/delete whose target id is absent.
	ErrNotFound = errors.New("record not found")

	// ErrBackend wraps persistence failures after the in-memory rollback.
	ErrBackend = errors.New("backend write failed")
)
