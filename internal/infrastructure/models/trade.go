package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Trade struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference            string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	InitiatorID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ResponderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	InitiatorCardID      uuid.UUID       `gorm:"type:uuid;not null"`
	ResponderCardID      uuid.UUID       `gorm:"type:uuid;not null"`
	Status               string          `gorm:"type:varchar(15);not null;default:'proposed';index"`
	InitiatorConfirmed   bool            `gorm:"not null;default:false"`
	ResponderConfirmed   bool            `gorm:"not null;default:false"`
	PlatformFeeInitiator decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PlatformFeeResponder decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Notes                *string         `gorm:"type:text"`
	CreatedAt            time.Time       `gorm:"index"`
	UpdatedAt            time.Time
}

type EscrowSession struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	TradeID              uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Status               string    `gorm:"type:varchar(15);not null;default:'locked'"`
	LockedAt             time.Time `gorm:"not null"`
	ReleasedAt           *time.Time
	ConfirmationDeadline *time.Time `gorm:"index"`
	FinalizedAt          *time.Time
}
