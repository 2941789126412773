package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// TradeStatus represents the trade lifecycle
type TradeStatus string

const (
	TradeStatusProposed      TradeStatus = "proposed"
	TradeStatusInEscrow      TradeStatus = "in_escrow"
	TradeStatusCodesReleased TradeStatus = "codes_released"
	TradeStatusConfirming    TradeStatus = "confirming"
	TradeStatusCompleted     TradeStatus = "completed"
	TradeStatusCancelled     TradeStatus = "cancelled"
	TradeStatusDisputed      TradeStatus = "disputed"
)

// ActiveTradeStatuses are the non-terminal statuses counted against active-trade limits.
var ActiveTradeStatuses = []TradeStatus{
	TradeStatusProposed,
	TradeStatusInEscrow,
	TradeStatusCodesReleased,
	TradeStatusConfirming,
}

// IsTerminal reports whether no further transition is allowed.
func (s TradeStatus) IsTerminal() bool {
	return s == TradeStatusCompleted || s == TradeStatusCancelled
}

// Trade is a two-party swap of gift cards
type Trade struct {
	ID                   uuid.UUID       `json:"id"`
	Reference            string          `json:"reference"`
	InitiatorID          uuid.UUID       `json:"initiatorId"`
	ResponderID          uuid.UUID       `json:"responderId"`
	InitiatorCardID      uuid.UUID       `json:"initiatorCardId"`
	ResponderCardID      uuid.UUID       `json:"responderCardId"`
	Status               TradeStatus     `json:"status"`
	InitiatorConfirmed   bool            `json:"initiatorConfirmed"`
	ResponderConfirmed   bool            `json:"responderConfirmed"`
	PlatformFeeInitiator decimal.Decimal `json:"platformFeeInitiator"`
	PlatformFeeResponder decimal.Decimal `json:"platformFeeResponder"`
	Notes                null.String     `json:"notes"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

func (t *Trade) IsParticipant(userID uuid.UUID) bool {
	return t.InitiatorID == userID || t.ResponderID == userID
}

// BothConfirmed reports whether both participants confirmed receipt.
func (t *Trade) BothConfirmed() bool {
	return t.InitiatorConfirmed && t.ResponderConfirmed
}

// CodesVisible reports whether participants may see each other's codes.
func (t *Trade) CodesVisible() bool {
	switch t.Status {
	case TradeStatusCodesReleased, TradeStatusConfirming, TradeStatusCompleted:
		return true
	}
	return false
}

// ProposeTradeInput represents input for proposing a trade
type ProposeTradeInput struct {
	InitiatorCardID uuid.UUID `json:"initiatorCardId" binding:"required"`
	ResponderCardID uuid.UUID `json:"responderCardId" binding:"required"`
	Notes           string    `json:"notes"`
}

// TradeView is the query surface for a trade.
type TradeView struct {
	Trade  *Trade         `json:"trade"`
	Escrow *EscrowSession `json:"escrow,omitempty"`
	Codes  []CardCode     `json:"codes,omitempty"`
}

// TradeFilter narrows trade listings.
type TradeFilter struct {
	UserID uuid.UUID
	Status TradeStatus
	Limit  int
	Offset int
}
