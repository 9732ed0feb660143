// Package store defines the persistence port for the ledger state and is
// implemented by the sqlite and jsonfile backends.
package store

import (
	"context"

	"mizaniya/internal/core"
)

// StateStore persists the full ledger state. Save replaces whatever was
// stored before; with concurrent writers the last save wins and no merge is
// attempted. A failed Save is non-fatal for the caller: the in-memory state
// stays authoritative for the session.
type StateStore interface {
	// Load returns the persisted state, or a fresh default state when
	// nothing has been saved yet.
	Load(ctx context.Context) (core.State, error)
	Save(ctx context.Context, state core.State) error
	Close() error
}
