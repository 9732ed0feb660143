package core

import "github.com/google/uuid"

// NewRecordID returns a fresh identifier for a Record.
func NewRecordID() string {
	return "txn-" + uuid.NewString()
}

// NewEventID returns a fresh identifier for a BalanceEvent.
func NewEventID() string {
	return "bal-" + uuid.NewString()
}
