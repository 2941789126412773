package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// EscrowStatus represents the escrow session lifecycle
type EscrowStatus string

const (
	EscrowStatusLocked     EscrowStatus = "locked"
	EscrowStatusReleased   EscrowStatus = "released"
	EscrowStatusConfirming EscrowStatus = "confirming"
	EscrowStatusFinalized  EscrowStatus = "finalized"
	EscrowStatusReversed   EscrowStatus = "reversed"
)

// IsTerminal reports whether the session accepts further mutation.
func (s EscrowStatus) IsTerminal() bool {
	return s == EscrowStatusFinalized || s == EscrowStatusReversed
}

// EscrowSession is paired 1:1 with an accepted trade.
type EscrowSession struct {
	ID                   uuid.UUID    `json:"id"`
	TradeID              uuid.UUID    `json:"tradeId"`
	Status               EscrowStatus `json:"status"`
	LockedAt             time.Time    `json:"lockedAt"`
	ReleasedAt           null.Time    `json:"releasedAt"`
	ConfirmationDeadline null.Time    `json:"confirmationDeadline"`
	FinalizedAt          null.Time    `json:"finalizedAt"`
}

// DeadlinePassed reports whether a deadline exists and now is after it.
func (e *EscrowSession) DeadlinePassed(now time.Time) bool {
	return e.ConfirmationDeadline.Valid && now.After(e.ConfirmationDeadline.Time)
}
