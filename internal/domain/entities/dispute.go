package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DisputeStatus represents the dispute lifecycle
type DisputeStatus string

const (
	DisputeStatusOpen        DisputeStatus = "open"
	DisputeStatusUnderReview DisputeStatus = "under_review"
	DisputeStatusResolved    DisputeStatus = "resolved"
	DisputeStatusDismissed   DisputeStatus = "dismissed"
)

// Dispute references exactly one of a trade or a sale.
type Dispute struct {
	ID         uuid.UUID     `json:"id"`
	TradeID    uuid.NullUUID `json:"tradeId"`
	SaleID     uuid.NullUUID `json:"saleId"`
	RaisedBy   uuid.UUID     `json:"raisedBy"`
	Reason     string        `json:"reason"`
	Status     DisputeStatus `json:"status"`
	Resolution null.String   `json:"resolution"`
	ResolvedBy uuid.NullUUID `json:"resolvedBy"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// ResolveDisputeInput represents an admin decision on a dispute
type ResolveDisputeInput struct {
	Status     DisputeStatus `json:"status" binding:"required,oneof=under_review resolved dismissed"`
	Resolution string        `json:"resolution"`
}

// DisputeFilter narrows admin dispute listings.
type DisputeFilter struct {
	Status DisputeStatus
	Limit  int
	Offset int
}
