package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Username        string          `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email           string          `gorm:"type:varchar(255);not null"`
	AvatarURL       *string         `gorm:"type:text"`
	Role            string          `gorm:"type:varchar(10);not null;default:'user'"`
	Status          string          `gorm:"type:varchar(12);not null;default:'active';index"`
	TrustTier       int             `gorm:"not null;default:0"`
	TrustScore      int             `gorm:"not null;default:50"`
	DailyTradeCount int             `gorm:"not null;default:0"`
	DailyTradeValue decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DailyTradeReset *time.Time      `gorm:"type:date"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
