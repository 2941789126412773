package repositories

import (
	"context"

	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
)

// AuditLogRepository stores transition events
type AuditLogRepository interface {
	Append(ctx context.Context, event *entities.TransitionEvent) error
	ListBySubject(ctx context.Context, subjectType entities.SubjectType, subjectID uuid.UUID) ([]*entities.TransitionEvent, error)
	// List pages the trail newest first.
	List(ctx context.Context, filter entities.AuditLogFilter) ([]*entities.TransitionEvent, int64, error)
}
