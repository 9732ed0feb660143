package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"mizaniya/internal/core"
)

// fakeStore is an in-memory StateStore that can be told to fail saves.
type fakeStore struct {
	state   core.State
	saves   int
	saveErr error
}

func (f *fakeStore) Load(context.Context) (core.State, error) { return f.state, nil }

func (f *fakeStore) Save(_ context.Context, state core.State) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state = state
	f.saves++
	return nil
}

func (f *fakeStore) Close() error { return nil }

func newTestService(t *testing.T, st *fakeStore) *LedgerService {
	t.Helper()
	if st.state.Records == nil {
		st.state = core.NewState()
	}
	svc, err := NewLedgerService(context.Background(), st, nil, core.Currency{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func record(id string, cents int64) core.Record {
	return core.Record{
		ID:         id,
		Kind:       core.KindExpense,
		Category:   "طعام",
		Amount:     core.Money{Cents: cents},
		OccurredAt: time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestFreshLedgerUsesConfiguredCurrency(t *testing.T) {
	usd, ok := core.CurrencyByCode("USD")
	if !ok {
		t.Fatalf("USD missing from catalog")
	}

	svc, err := NewLedgerService(context.Background(), &fakeStore{state: core.NewState()}, nil, usd)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if got := svc.Snapshot().Settings.Currency; got != usd {
		t.Fatalf("fresh ledger currency = %+v, want %+v", got, usd)
	}

	// A ledger that has been used keeps its stored currency.
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	used := core.NewState()
	used, _ = core.AdjustBalance(used, core.Money{Cents: 1_00}, core.Deposit, "seed", at)
	svc, err = NewLedgerService(context.Background(), &fakeStore{state: used}, nil, usd)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if got := svc.Snapshot().Settings.Currency.Code; got != "SAR" {
		t.Fatalf("used ledger currency = %s, want stored SAR", got)
	}

	// And an explicitly chosen currency survives even on an otherwise
	// empty ledger.
	eur, _ := core.CurrencyByCode("EUR")
	chosen := core.NewState()
	chosen.Settings.Currency = eur
	svc, err = NewLedgerService(context.Background(), &fakeStore{state: chosen}, nil, usd)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if got := svc.Snapshot().Settings.Currency; got != eur {
		t.Fatalf("chosen currency overridden: %+v", got)
	}
}

func TestUpsertPersistsEachMutation(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(t, st)
	ctx := context.Background()

	state, err := svc.UpsertRecord(ctx, record("e1", 100_00))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if state.Balance.Cents != -100_00 {
		t.Fatalf("balance = %d", state.Balance.Cents)
	}
	if st.saves != 1 {
		t.Fatalf("saves = %d, want 1", st.saves)
	}
	if st.state.Balance.Cents != -100_00 {
		t.Fatalf("persisted balance = %d", st.state.Balance.Cents)
	}

	svc.DeleteRecord(ctx, "e1")
	if st.saves != 2 {
		t.Fatalf("saves = %d, want 2", st.saves)
	}
}

func TestUpsertAssignsID(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	r := record("", 10_00)

	state, err := svc.UpsertRecord(context.Background(), r)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(state.Records) != 1 {
		t.Fatalf("records = %d", len(state.Records))
	}
	for id := range state.Records {
		if id == "" {
			t.Fatalf("record kept empty id")
		}
	}
}

func TestValidationFailureDoesNotPersist(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(t, st)

	if _, err := svc.UpsertRecord(context.Background(), record("e1", 0)); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("got %v, want %v", err, core.ErrInvalidAmount)
	}
	if st.saves != 0 {
		t.Fatalf("rejected mutation was persisted")
	}
	if svc.Snapshot().Balance.Cents != 0 {
		t.Fatalf("state changed on rejected mutation")
	}
}

func TestDeleteUnknownIDDoesNotPersist(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(t, st)

	svc.DeleteRecord(context.Background(), "missing")
	if st.saves != 0 {
		t.Fatalf("no-op delete was persisted")
	}
}

func TestSaveFailureKeepsStateAuthoritative(t *testing.T) {
	st := &fakeStore{saveErr: errors.New("disk full")}
	svc := newTestService(t, st)
	ctx := context.Background()

	state, err := svc.AdjustBalance(ctx, core.Money{Cents: 500_00}, core.Deposit, "seed")
	if err != nil {
		t.Fatalf("adjust must not fail on save error: %v", err)
	}
	if state.Balance.Cents != 500_00 {
		t.Fatalf("balance = %d", state.Balance.Cents)
	}
	if svc.LastSaveError() == nil {
		t.Fatalf("save error not recorded")
	}
	if svc.Snapshot().Balance.Cents != 500_00 {
		t.Fatalf("in-memory state lost after save failure")
	}

	// Recovery clears the recorded error.
	st.saveErr = nil
	if _, err := svc.AdjustBalance(ctx, core.Money{Cents: 1_00}, core.Deposit, "again"); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if svc.LastSaveError() != nil {
		t.Fatalf("save error not cleared after successful save")
	}
}

func TestClearAllResets(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(t, st)
	ctx := context.Background()

	svc.UpsertRecord(ctx, record("e1", 100_00))
	svc.AdjustBalance(ctx, core.Money{Cents: 50_00}, core.Deposit, "seed")

	state := svc.ClearAll(ctx)
	if state.Balance.Cents != 0 || len(state.Records) != 0 || len(state.History) != 0 {
		t.Fatalf("clear did not reset: %+v", state)
	}
	if state.Settings.Currency.Code != "SAR" {
		t.Fatalf("clear did not restore default settings")
	}
	if st.state.Balance.Cents != 0 {
		t.Fatalf("reset not persisted")
	}
}

func TestUpdateSettings(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(t, st)

	want := core.Settings{
		Currency: core.Currency{Code: "EUR", Symbol: "€", Name: "يورو"},
		DarkMode: true,
	}
	state := svc.UpdateSettings(context.Background(), want)
	if state.Settings != want {
		t.Fatalf("settings = %+v", state.Settings)
	}
	if st.state.Settings != want {
		t.Fatalf("settings not persisted")
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	svc.AdjustBalance(context.Background(), core.Money{Cents: 10_00}, core.Deposit, "seed")

	h := svc.History()
	if len(h) != 1 {
		t.Fatalf("history = %d", len(h))
	}
	h[0].Description = "tampered"
	if svc.History()[0].Description == "tampered" {
		t.Fatalf("History leaked internal slice")
	}
}
