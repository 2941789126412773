package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// FraudFlagType names a fraud heuristic
type FraudFlagType string

const (
	FraudFlagRapidTrades      FraudFlagType = "rapid_trades"
	FraudFlagRepeatedDisputes FraudFlagType = "repeated_disputes"
	FraudFlagMultiIP          FraudFlagType = "multi_ip"
	FraudFlagAbnormalValue    FraudFlagType = "abnormal_value"
)

// FraudFlagStatus represents admin review state
type FraudFlagStatus string

const (
	FraudFlagStatusPending   FraudFlagStatus = "pending"
	FraudFlagStatusReviewed  FraudFlagStatus = "reviewed"
	FraudFlagStatusDismissed FraudFlagStatus = "dismissed"
	FraudFlagStatusConfirmed FraudFlagStatus = "confirmed"
)

// UnresolvedFraudFlagStatuses still count toward auto-restriction.
var UnresolvedFraudFlagStatuses = []FraudFlagStatus{
	FraudFlagStatusPending,
	FraudFlagStatusReviewed,
}

// FraudFlag is a system-raised suspicion against a user
type FraudFlag struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	FlagType       FraudFlagType   `json:"flagType"`
	Details        string          `json:"details"`
	Status         FraudFlagStatus `json:"status"`
	AutoRestricted bool            `json:"autoRestricted"`
	AdminNotes     null.String     `json:"adminNotes"`
	ReviewedBy     uuid.NullUUID   `json:"reviewedBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ReviewFraudFlagInput represents an admin decision on a flag
type ReviewFraudFlagInput struct {
	Status     FraudFlagStatus `json:"status" binding:"required,oneof=reviewed dismissed confirmed"`
	AdminNotes string          `json:"adminNotes"`
}

// FraudFlagFilter narrows admin fraud flag listings.
type FraudFlagFilter struct {
	UserID   uuid.UUID
	FlagType FraudFlagType
	Status   FraudFlagStatus
	Limit    int
	Offset   int
}
