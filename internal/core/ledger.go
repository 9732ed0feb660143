package core

import (
	"iter"
	"time"
)

// HistoryLimit is the maximum number of balance events kept. Truncation
// drops the oldest entries and never touches the balance total itself.
const HistoryLimit = 50

const (
	EventManualDeposit       EventKind = "deposit"
	EventManualWithdraw      EventKind = "withdraw"
	EventExpenseBooked       EventKind = "expense"
	EventReceivableCollected EventKind = "right_collection"
	EventPayableSettled      EventKind = "debt_payment"
	EventExpenseReversed     EventKind = "expense_reversal"
	EventReceivableReversed  EventKind = "right_collection_reversal"
	EventPayableReversed     EventKind = "debt_payment_reversal"
)

type (
	EventKind string

	// BalanceEvent is one entry in the bounded audit log: a single change
	// to the running balance and the total immediately after it. Amount is
	// a magnitude; the direction follows from Kind.
	BalanceEvent struct {
		ID           string    `json:"id"`
		OccurredAt   time.Time `json:"date"`
		Description  string    `json:"description"`
		Amount       Money     `json:"amount"`
		Kind         EventKind `json:"type"`
		BalanceAfter Money     `json:"balanceAfter"`
	}

	// State is the full ledger: the record set keyed by id, the running
	// balance (the only source of truth for cash on hand), the bounded
	// newest-first history, and the pass-through settings.
	//
	// State values are immutable by convention: every operation copies
	// before changing anything and returns a new value. The caller applies
	// one operation's result before starting the next.
	State struct {
		Records  map[string]Record `json:"records"`
		Balance  Money             `json:"balance"`
		History  []BalanceEvent    `json:"history"`
		Settings Settings          `json:"settings"`
	}
)

// Reversal maps a booking kind to the kind logged when the booking is
// undone by a delete. Manual adjustments have no reversal.
func (k EventKind) Reversal() EventKind {
	switch k {
	case EventExpenseBooked:
		return EventExpenseReversed
	case EventReceivableCollected:
		return EventReceivableReversed
	case EventPayableSettled:
		return EventPayableReversed
	}
	return k
}

// Direction reports whether the event added to or removed from the balance.
func (k EventKind) Direction() Direction {
	switch k {
	case EventManualDeposit, EventReceivableCollected, EventExpenseReversed, EventPayableReversed:
		return Deposit
	}
	return Withdraw
}

// NewState returns an empty ledger with default settings.
func NewState() State {
	return State{
		Records:  make(map[string]Record),
		Settings: DefaultSettings(),
	}
}

// clone copies the mutable parts so the input state stays untouched.
func (s State) clone() State {
	records := make(map[string]Record, len(s.Records)+1)
	for id, r := range s.Records {
		records[id] = r
	}
	history := make([]BalanceEvent, len(s.History), len(s.History)+1)
	copy(history, s.History)
	s.Records = records
	s.History = history
	return s
}

// ForwardImpact computes the signed contribution of a record to the balance:
// an expense always reduces it, a receivable adds once collected, a payable
// reduces once paid, and an unsettled obligation contributes nothing.
func ForwardImpact(r Record) int64 {
	switch r.Kind {
	case KindExpense:
		return -r.Amount.Cents
	case KindReceivable:
		if r.Settled() {
			return r.Amount.Cents
		}
	case KindPayable:
		if r.Settled() {
			return -r.Amount.Cents
		}
	}
	return 0
}

// ReverseImpact is the exact undo of ForwardImpact, used to revert a
// record's prior effect before applying its replacement or on delete.
func ReverseImpact(r Record) int64 {
	return -ForwardImpact(r)
}

// Upsert applies a create-or-replace of a record. On edit the old record's
// impact is reverted before the new one is applied, so a settlement flip
// moves the balance by exactly the net difference. Only creates with a
// non-zero impact append a history event; edits never do.
//
// Invalid records are rejected: the unchanged state is returned together
// with the validation error.
func Upsert(s State, r Record, at time.Time) (State, error) {
	if err := r.Validate(); err != nil {
		return s, err
	}
	next := s.clone()
	balance := s.Balance.Cents
	old, exists := next.Records[r.ID]
	if exists {
		balance += ReverseImpact(old)
		delete(next.Records, r.ID)
	}
	impact := ForwardImpact(r)
	balance += impact
	next.Records[r.ID] = r
	next.Balance = Money{Cents: balance}
	if !exists && impact != 0 {
		next.History = appendEvent(next.History, BalanceEvent{
			ID:           NewEventID(),
			OccurredAt:   at,
			Description:  bookingDescription(r),
			Amount:       r.Amount,
			Kind:         bookingKind(r.Kind),
			BalanceAfter: next.Balance,
		})
	}
	return next, nil
}

// Remove deletes a record and reverts its effect on the balance. Unknown
// ids are a benign no-op so deletes stay idempotent under retry. A reversal
// event is logged only when the record actually affected the balance.
func Remove(s State, id string, at time.Time) State {
	r, ok := s.Records[id]
	if !ok {
		return s
	}
	next := s.clone()
	delete(next.Records, id)
	rev := ReverseImpact(r)
	next.Balance = Money{Cents: s.Balance.Cents + rev}
	if rev != 0 {
		amount := rev
		if amount < 0 {
			amount = -amount
		}
		next.History = appendEvent(next.History, BalanceEvent{
			ID:           NewEventID(),
			OccurredAt:   at,
			Description:  removalDescription(r),
			Amount:       Money{Cents: amount},
			Kind:         bookingKind(r.Kind).Reversal(),
			BalanceAfter: next.Balance,
		})
	}
	return next
}

// AdjustBalance applies a manual deposit or withdrawal. It always appends a
// history event. Non-positive amounts are rejected with the state unchanged.
func AdjustBalance(s State, amount Money, dir Direction, description string, at time.Time) (State, error) {
	if err := amount.Validate(); err != nil {
		return s, err
	}
	var kind EventKind
	signed := amount.Cents
	switch dir {
	case Deposit:
		kind = EventManualDeposit
	case Withdraw:
		kind = EventManualWithdraw
		signed = -signed
	default:
		return s, ErrInvalidDirection
	}
	next := s.clone()
	next.Balance = Money{Cents: s.Balance.Cents + signed}
	next.History = appendEvent(next.History, BalanceEvent{
		ID:           NewEventID(),
		OccurredAt:   at,
		Description:  description,
		Amount:       amount,
		Kind:         kind,
		BalanceAfter: next.Balance,
	})
	return next, nil
}

// Events yields the balance history newest-first.
func (s State) Events() iter.Seq[BalanceEvent] {
	return func(yield func(BalanceEvent) bool) {
		for _, e := range s.History {
			if !yield(e) {
				return
			}
		}
	}
}

// appendEvent prepends e and truncates to the newest HistoryLimit entries.
func appendEvent(history []BalanceEvent, e BalanceEvent) []BalanceEvent {
	out := make([]BalanceEvent, 0, min(len(history)+1, HistoryLimit))
	out = append(out, e)
	for _, old := range history {
		if len(out) == HistoryLimit {
			break
		}
		out = append(out, old)
	}
	return out
}

func bookingKind(k RecordKind) EventKind {
	switch k {
	case KindReceivable:
		return EventReceivableCollected
	case KindPayable:
		return EventPayableSettled
	}
	return EventExpenseBooked
}

const noDescription = "بدون وصف"

func bookingDescription(r Record) string {
	desc := r.Description
	if desc == "" {
		desc = noDescription
	}
	return r.Category + ": " + desc
}

func removalDescription(r Record) string {
	return "حذف: " + r.Category
}
