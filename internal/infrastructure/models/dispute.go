package models

import (
	"time"

	"github.com/google/uuid"
)

type Dispute struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TradeID    *uuid.UUID `gorm:"type:uuid;index"`
	SaleID     *uuid.UUID `gorm:"type:uuid;index"`
	RaisedBy   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Reason     string     `gorm:"type:text;not null"`
	Status     string     `gorm:"type:varchar(15);not null;default:'open'"`
	Resolution *string    `gorm:"type:text"`
	ResolvedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time  `gorm:"index"`
	UpdatedAt  time.Time
}
