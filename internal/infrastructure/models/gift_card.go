package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GiftCard struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey"`
	OwnerID             uuid.UUID           `gorm:"type:uuid;not null;index"`
	Brand               string              `gorm:"type:varchar(200);not null"`
	Value               decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	ExpiryDate          time.Time           `gorm:"type:date;not null"`
	ListingType         string              `gorm:"type:varchar(10);not null;default:'swap'"`
	Status              string              `gorm:"type:varchar(15);not null;default:'active';index"`
	SellingPrice        decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	CardNumberEncrypted string              `gorm:"type:text"`
	PinEncrypted        string              `gorm:"type:text"`
	ModerationNote      *string             `gorm:"type:text"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
