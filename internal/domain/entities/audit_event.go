package entities

import (
	"time"

	"github.com/google/uuid"
)

// SubjectType names what a transition event is about.
type SubjectType string

const (
	SubjectTrade     SubjectType = "trade"
	SubjectSale      SubjectType = "sale"
	SubjectDispute   SubjectType = "dispute"
	SubjectFraudFlag SubjectType = "fraud_flag"
	SubjectUser      SubjectType = "user"
	SubjectGiftCard  SubjectType = "gift_card"
)

// TransitionEvent describes one committed state change. It feeds both the
// notifier and the audit sink.
type TransitionEvent struct {
	ID          uuid.UUID         `json:"id"`
	Action      string            `json:"action"`
	SubjectType SubjectType       `json:"subjectType"`
	SubjectID   uuid.UUID         `json:"subjectId"`
	Reference   string            `json:"reference,omitempty"`
	ActorID     uuid.NullUUID     `json:"actorId"`
	From        string            `json:"from,omitempty"`
	To          string            `json:"to,omitempty"`
	Recipients  []uuid.UUID       `json:"recipients,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// AuditLogFilter narrows audit trail listings. From and To bound the event
// day inclusively; zero values leave that end open.
type AuditLogFilter struct {
	SubjectType SubjectType
	SubjectID   uuid.UUID
	ActorID     uuid.UUID
	Action      string
	From        time.Time
	To          time.Time
	Limit       int
	Offset      int
}
