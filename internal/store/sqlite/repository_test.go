package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mizaniya/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLoadFreshDatabase(t *testing.T) {
	repo := newTestRepo(t)

	state, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.Balance.Cents != 0 || len(state.Records) != 0 || len(state.History) != 0 {
		t.Fatalf("fresh database should load an empty state: %+v", state)
	}
	if state.Settings.Currency.Code != "SAR" {
		t.Fatalf("fresh state should carry default settings, got %+v", state.Settings)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	state := core.NewState()
	state, err := core.AdjustBalance(state, core.Money{Cents: 500_00}, core.Deposit, "seed", at)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	rec := core.Record{
		ID:            "txn-1",
		Kind:          core.KindPayable,
		Category:      "إيجار",
		Description:   "الشقة",
		Amount:        core.Money{Cents: 150_00},
		OccurredAt:    at,
		Settlement:    core.StatusSettled,
		AttachmentRef: "img-1",
		ExpectedAt:    at.AddDate(0, 1, 0),
	}
	state, err = core.Upsert(state, rec, at)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	state.Settings.DarkMode = true
	state.Settings.BalanceHidden = true

	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Balance != state.Balance {
		t.Fatalf("balance = %d, want %d", loaded.Balance.Cents, state.Balance.Cents)
	}
	got, ok := loaded.Records["txn-1"]
	if !ok {
		t.Fatalf("record not loaded")
	}
	if got != rec {
		t.Fatalf("record round trip mismatch:\n got %+v\nwant %+v", got, rec)
	}
	if len(loaded.History) != len(state.History) {
		t.Fatalf("history length = %d, want %d", len(loaded.History), len(state.History))
	}
	for i := range state.History {
		if loaded.History[i] != state.History[i] {
			t.Fatalf("history[%d] mismatch:\n got %+v\nwant %+v", i, loaded.History[i], state.History[i])
		}
	}
	if !loaded.Settings.DarkMode || !loaded.Settings.BalanceHidden {
		t.Fatalf("settings not persisted: %+v", loaded.Settings)
	}
}

func TestSaveReplacesPreviousState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	state := core.NewState()
	state, _ = core.Upsert(state, core.Record{
		ID: "txn-1", Kind: core.KindExpense, Category: "طعام",
		Amount: core.Money{Cents: 10_00}, OccurredAt: at,
	}, at)
	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Delete the record and save again; the old row must be gone.
	state = core.Remove(state, "txn-1", at)
	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Records) != 0 {
		t.Fatalf("stale records survived the save: %+v", loaded.Records)
	}
	if loaded.Balance.Cents != 0 {
		t.Fatalf("balance = %d, want 0", loaded.Balance.Cents)
	}
	// Booking event plus its reversal.
	if len(loaded.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(loaded.History))
	}
	if loaded.History[0].Kind != core.EventExpenseReversed {
		t.Fatalf("newest event kind = %s", loaded.History[0].Kind)
	}
}
