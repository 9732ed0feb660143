// Package services holds the application state controller: the single owner
// of the in-memory ledger state, serializing mutations and persisting each
// accepted one.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mizaniya/internal/core"
	"mizaniya/internal/log"
	"mizaniya/internal/store"
)

// LedgerService applies core operations to the current state and saves the
// result. There is exactly one logical writer: every mutation takes the
// lock, applies the pure operation, swaps the state value in and persists.
//
// A failed save never fails the mutation; the in-memory state stays
// authoritative for the session and the error is kept for the caller to
// surface as a non-blocking warning.
type LedgerService struct {
	mu          sync.Mutex
	store       store.StateStore
	state       core.State
	logger      *log.Logger
	lastSaveErr error

	now func() time.Time
}

// NewLedgerService loads the persisted state and takes ownership of it.
// A non-zero defaultCurrency seeds the settings of a ledger that has never
// been written to; once anything is persisted the stored currency wins.
func NewLedgerService(ctx context.Context, st store.StateStore, logger *log.Logger, defaultCurrency core.Currency) (*LedgerService, error) {
	state, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger state: %w", err)
	}
	if defaultCurrency != (core.Currency{}) && fresh(state) {
		state.Settings.Currency = defaultCurrency
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger.InfoContext(ctx, "Ledger state loaded",
		"records", len(state.Records),
		"history", len(state.History),
		"balance_cents", state.Balance.Cents)
	return &LedgerService{
		store:  st,
		state:  state,
		logger: logger.WithComponent("ledger"),
		now:    time.Now,
	}, nil
}

// fresh reports whether the state is indistinguishable from a never-used
// ledger.
func fresh(s core.State) bool {
	return len(s.Records) == 0 &&
		len(s.History) == 0 &&
		s.Balance.Cents == 0 &&
		s.Settings == core.DefaultSettings()
}

// UpsertRecord creates or replaces a record. An empty id means create and
// gets a fresh one assigned. Returns the resulting state snapshot.
func (s *LedgerService) UpsertRecord(ctx context.Context, r core.Record) (core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = core.NewRecordID()
	}
	next, err := core.Upsert(s.state, r, s.now())
	if err != nil {
		return s.state, err
	}
	s.state = next
	s.persist(ctx)
	s.logger.InfoContext(ctx, "Record upserted",
		"id", r.ID,
		"kind", string(r.Kind),
		"amount_cents", r.Amount.Cents,
		"balance_cents", next.Balance.Cents)
	return next, nil
}

// DeleteRecord removes a record; unknown ids are a no-op.
func (s *LedgerService) DeleteRecord(ctx context.Context, id string) core.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.state.Records)
	next := core.Remove(s.state, id, s.now())
	if len(next.Records) == before {
		return s.state
	}
	s.state = next
	s.persist(ctx)
	s.logger.InfoContext(ctx, "Record deleted", "id", id, "balance_cents", next.Balance.Cents)
	return next
}

// AdjustBalance applies a manual deposit or withdrawal.
func (s *LedgerService) AdjustBalance(ctx context.Context, amount core.Money, dir core.Direction, description string) (core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := core.AdjustBalance(s.state, amount, dir, description, s.now())
	if err != nil {
		return s.state, err
	}
	s.state = next
	s.persist(ctx)
	s.logger.InfoContext(ctx, "Balance adjusted",
		"direction", string(dir),
		"amount_cents", amount.Cents,
		"balance_cents", next.Balance.Cents)
	return next, nil
}

// UpdateSettings replaces the presentation settings; the ledger itself is
// untouched.
func (s *LedgerService) UpdateSettings(ctx context.Context, settings core.Settings) core.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Settings = settings
	s.state = next
	s.persist(ctx)
	return next
}

// ClearAll resets the ledger to an empty default state and persists the
// reset. This is the explicit "wipe everything" action, not an operation of
// the reconciliation engine.
func (s *LedgerService) ClearAll(ctx context.Context) core.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = core.NewState()
	s.persist(ctx)
	s.logger.InfoContext(ctx, "Ledger cleared")
	return s.state
}

// Snapshot returns the current state value. Core operations never mutate a
// published state in place, so the snapshot is safe for concurrent reads.
func (s *LedgerService) Snapshot() core.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the balance history, newest-first.
func (s *LedgerService) History() []core.BalanceEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.BalanceEvent, len(s.state.History))
	copy(out, s.state.History)
	return out
}

// LastSaveError reports the error from the most recent persistence attempt,
// or nil when it succeeded.
func (s *LedgerService) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

// persist saves the current state. Callers hold the lock.
func (s *LedgerService) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.state); err != nil {
		s.lastSaveErr = err
		s.logger.ErrorContext(ctx, "Failed to persist ledger state, in-memory state remains authoritative", "error", err)
		return
	}
	s.lastSaveErr = nil
}

// Close releases the underlying store.
func (s *LedgerService) Close() error {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}
	return nil
}
