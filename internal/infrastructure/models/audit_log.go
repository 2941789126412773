package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Action      string     `gorm:"type:varchar(50);not null"`
	SubjectType string     `gorm:"type:varchar(20);not null;index:idx_audit_logs_subject"`
	SubjectID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_logs_subject"`
	Reference   string     `gorm:"type:varchar(20)"`
	ActorID     *uuid.UUID `gorm:"type:uuid"`
	FromStatus  string     `gorm:"type:varchar(20)"`
	ToStatus    string     `gorm:"type:varchar(20)"`
	Metadata    string     `gorm:"type:text"`
	CreatedAt   time.Time  `gorm:"index"`
}
