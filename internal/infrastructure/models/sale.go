package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Sale struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference    string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	BuyerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	GiftCardID   uuid.UUID       `gorm:"type:uuid;not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PlatformFee  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status       string          `gorm:"type:varchar(12);not null;default:'pending';index"`
	CodeRevealed bool            `gorm:"not null;default:false"`
	Notes        *string         `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
