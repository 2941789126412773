package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/internal/infrastructure/models"
	"cardswap.backend/pkg/utils"
)

// AuditLogRepository implements the transition audit trail
type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Append(ctx context.Context, event *entities.TransitionEvent) error {
	meta := ""
	if len(event.Metadata) > 0 {
		raw, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("encode audit metadata: %w", err)
		}
		meta = string(raw)
	}
	id := event.ID
	if id == uuid.Nil {
		id = utils.GenerateUUIDv7()
	}
	m := &models.AuditLog{
		ID:          id,
		Action:      event.Action,
		SubjectType: string(event.SubjectType),
		SubjectID:   event.SubjectID,
		Reference:   event.Reference,
		ActorID:     nullUUIDPtr(event.ActorID),
		FromStatus:  event.From,
		ToStatus:    event.To,
		Metadata:    meta,
		CreatedAt:   event.OccurredAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *AuditLogRepository) ListBySubject(ctx context.Context, subjectType entities.SubjectType, subjectID uuid.UUID) ([]*entities.TransitionEvent, error) {
	var ms []models.AuditLog
	err := GetDB(ctx, r.db).
		Where("subject_type = ? AND subject_id = ?", string(subjectType), subjectID).
		Order("created_at ASC, id ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return toTransitionEvents(ms)
}

func (r *AuditLogRepository) List(ctx context.Context, filter entities.AuditLogFilter) ([]*entities.TransitionEvent, int64, error) {
	base := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.AuditLog{})
		if filter.SubjectType != "" {
			q = q.Where("subject_type = ?", string(filter.SubjectType))
		}
		if filter.SubjectID != uuid.Nil {
			q = q.Where("subject_id = ?", filter.SubjectID)
		}
		if filter.ActorID != uuid.Nil {
			q = q.Where("actor_id = ?", filter.ActorID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if !filter.From.IsZero() {
			q = q.Where("created_at >= ?", entities.DateOf(filter.From))
		}
		if !filter.To.IsZero() {
			q = q.Where("created_at < ?", entities.DateOf(filter.To).AddDate(0, 0, 1))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base().Order("created_at DESC, id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	var ms []models.AuditLog
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	events, err := toTransitionEvents(ms)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func toTransitionEvents(ms []models.AuditLog) ([]*entities.TransitionEvent, error) {
	out := make([]*entities.TransitionEvent, 0, len(ms))
	for _, m := range ms {
		ev := &entities.TransitionEvent{
			ID:          m.ID,
			Action:      m.Action,
			SubjectType: entities.SubjectType(m.SubjectType),
			SubjectID:   m.SubjectID,
			Reference:   m.Reference,
			ActorID:     ptrNullUUID(m.ActorID),
			From:        m.FromStatus,
			To:          m.ToStatus,
			OccurredAt:  m.CreatedAt,
		}
		if m.Metadata != "" {
			if err := json.Unmarshal([]byte(m.Metadata), &ev.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		out = append(out, ev)
	}
	return out, nil
}
