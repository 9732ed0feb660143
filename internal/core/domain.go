package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindExpense    RecordKind = "expense"
	KindReceivable RecordKind = "right"
	KindPayable    RecordKind = "debt"
)

const (
	StatusUnsettled SettlementStatus = "unsettled"
	StatusSettled   SettlementStatus = "settled"
)

const (
	Deposit  Direction = "deposit"
	Withdraw Direction = "withdraw"
)

type (
	RecordKind       string
	SettlementStatus string
	Direction        string

	Money struct {
		Cents int64 `json:"cents"`
	}

	// Record is a single financial transaction. Settlement only carries
	// meaning for receivables and payables; an expense is always paid.
	Record struct {
		ID            string           `json:"id"`
		Kind          RecordKind       `json:"type"`
		Category      string           `json:"category"`
		Description   string           `json:"description,omitempty"`
		Amount        Money            `json:"amount"`
		OccurredAt    time.Time        `json:"date"`
		Settlement    SettlementStatus `json:"status,omitempty"`
		AttachmentRef string           `json:"imageUrl,omitempty"`
		ExpectedAt    time.Time        `json:"expectedDate,omitzero"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid record kind")
	ErrInvalidStatus    = errors.New("invalid settlement status")
	ErrInvalidDirection = errors.New("invalid adjustment direction")
	ErrEmptyID          = errors.New("empty record id")
	ErrEmptyCategory    = errors.New("empty category")
	ErrZeroDate         = errors.New("date cannot be zero")
)

func (k RecordKind) Valid() bool {
	switch k {
	case KindExpense, KindReceivable, KindPayable:
		return true
	}
	return false
}

// Settled reports whether the record currently counts toward cash on hand.
// Expenses are implicitly settled the moment they are booked.
func (r Record) Settled() bool {
	if r.Kind == KindExpense {
		return true
	}
	return r.Settlement == StatusSettled
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if r.OccurredAt.IsZero() {
		return ErrZeroDate
	}
	if r.Kind != KindExpense {
		switch r.Settlement {
		case "", StatusUnsettled, StatusSettled:
		default:
			return ErrInvalidStatus
		}
	}
	return nil
}
