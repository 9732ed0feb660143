// Package sqlite persists the ledger state in a small multi-table local
// database, one table per concern (records, balance events, balance,
// settings), mirroring the object stores the original app kept on device.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mizaniya/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save replaces the persisted state atomically: every table is cleared and
// rewritten inside one transaction, so a reader never observes a torn state.
func (r *Repository) Save(ctx context.Context, state core.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	for _, rec := range state.Records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO records (id, kind, category, description, amount_cents, occurred_at, settlement, attachment_ref, expected_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, string(rec.Kind), rec.Category, rec.Description, rec.Amount.Cents,
			formatTime(rec.OccurredAt), string(rec.Settlement), rec.AttachmentRef, formatTime(rec.ExpectedAt),
		)
		if err != nil {
			return fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM balance_events`); err != nil {
		return fmt.Errorf("clear balance events: %w", err)
	}
	for i, ev := range state.History {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO balance_events (position, id, occurred_at, description, amount_cents, kind, balance_after_cents)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, ev.ID, formatTime(ev.OccurredAt), ev.Description, ev.Amount.Cents,
			string(ev.Kind), ev.BalanceAfter.Cents,
		)
		if err != nil {
			return fmt.Errorf("insert balance event %s: %w", ev.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO balance (key, cents) VALUES ('current', ?)
		ON CONFLICT(key) DO UPDATE SET cents = excluded.cents`,
		state.Balance.Cents,
	)
	if err != nil {
		return fmt.Errorf("save balance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO settings (key, currency_code, currency_symbol, currency_name, dark_mode, balance_hidden)
		VALUES ('current', ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			currency_code = excluded.currency_code,
			currency_symbol = excluded.currency_symbol,
			currency_name = excluded.currency_name,
			dark_mode = excluded.dark_mode,
			balance_hidden = excluded.balance_hidden`,
		state.Settings.Currency.Code, state.Settings.Currency.Symbol, state.Settings.Currency.Name,
		boolToInt(state.Settings.DarkMode), boolToInt(state.Settings.BalanceHidden),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}

	slog.DebugContext(ctx, "Ledger state saved",
		"records", len(state.Records),
		"history", len(state.History),
		"balance_cents", state.Balance.Cents)
	return nil
}

// Load reads the persisted state. A database that was never saved to yields
// a fresh default state, not an error.
func (r *Repository) Load(ctx context.Context) (core.State, error) {
	state := core.NewState()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, category, description, amount_cents, occurred_at, settlement, attachment_ref, expected_at
		FROM records`)
	if err != nil {
		return state, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rec                    core.Record
			kind, settlement       string
			occurredAt, expectedAt string
		)
		if err := rows.Scan(&rec.ID, &kind, &rec.Category, &rec.Description, &rec.Amount.Cents,
			&occurredAt, &settlement, &rec.AttachmentRef, &expectedAt); err != nil {
			return state, fmt.Errorf("scan record: %w", err)
		}
		rec.Kind = core.RecordKind(kind)
		rec.Settlement = core.SettlementStatus(settlement)
		if rec.OccurredAt, err = parseTime(occurredAt); err != nil {
			return state, fmt.Errorf("record %s occurred_at: %w", rec.ID, err)
		}
		if rec.ExpectedAt, err = parseTime(expectedAt); err != nil {
			return state, fmt.Errorf("record %s expected_at: %w", rec.ID, err)
		}
		state.Records[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return state, fmt.Errorf("iterate records: %w", err)
	}

	evRows, err := r.db.QueryContext(ctx, `
		SELECT id, occurred_at, description, amount_cents, kind, balance_after_cents
		FROM balance_events ORDER BY position ASC`)
	if err != nil {
		return state, fmt.Errorf("load balance events: %w", err)
	}
	defer evRows.Close()
	for evRows.Next() {
		var (
			ev         core.BalanceEvent
			kind       string
			occurredAt string
		)
		if err := evRows.Scan(&ev.ID, &occurredAt, &ev.Description, &ev.Amount.Cents, &kind, &ev.BalanceAfter.Cents); err != nil {
			return state, fmt.Errorf("scan balance event: %w", err)
		}
		ev.Kind = core.EventKind(kind)
		if ev.OccurredAt, err = parseTime(occurredAt); err != nil {
			return state, fmt.Errorf("balance event %s occurred_at: %w", ev.ID, err)
		}
		state.History = append(state.History, ev)
	}
	if err := evRows.Err(); err != nil {
		return state, fmt.Errorf("iterate balance events: %w", err)
	}

	var cents int64
	err = r.db.QueryRowContext(ctx, `SELECT cents FROM balance WHERE key = 'current'`).Scan(&cents)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh database; keep defaults.
	case err != nil:
		return state, fmt.Errorf("load balance: %w", err)
	default:
		state.Balance = core.Money{Cents: cents}
	}

	var (
		code, symbol, name      string
		darkMode, balanceHidden int
	)
	err = r.db.QueryRowContext(ctx, `
		SELECT currency_code, currency_symbol, currency_name, dark_mode, balance_hidden
		FROM settings WHERE key = 'current'`).Scan(&code, &symbol, &name, &darkMode, &balanceHidden)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return state, fmt.Errorf("load settings: %w", err)
	default:
		state.Settings = core.Settings{
			Currency:      core.Currency{Code: code, Symbol: symbol, Name: name},
			DarkMode:      darkMode != 0,
			BalanceHidden: balanceHidden != 0,
		}
	}

	return state, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
