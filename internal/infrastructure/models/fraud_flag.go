package models

import (
	"time"

	"github.com/google/uuid"
)

type FraudFlag struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_fraud_flags_user_type"`
	FlagType       string     `gorm:"type:varchar(20);not null;index:idx_fraud_flags_user_type"`
	Details        string     `gorm:"type:text"`
	Status         string     `gorm:"type:varchar(12);not null;default:'pending'"`
	AutoRestricted bool       `gorm:"not null;default:false"`
	AdminNotes     *string    `gorm:"type:text"`
	ReviewedBy     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
