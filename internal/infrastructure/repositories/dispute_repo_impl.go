package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/infrastructure/models"
)

// DisputeRepository implements dispute data operations
type DisputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// Create rejects disputes that reference both or neither of a trade and a sale.
func (r *DisputeRepository) Create(ctx context.Context, dispute *entities.Dispute) error {
	if dispute.TradeID.Valid == dispute.SaleID.Valid {
		return domainerrors.ValidationFailed("dispute must reference exactly one trade or sale")
	}
	m := &models.Dispute{
		ID:         dispute.ID,
		TradeID:    nullUUIDPtr(dispute.TradeID),
		SaleID:     nullUUIDPtr(dispute.SaleID),
		RaisedBy:   dispute.RaisedBy,
		Reason:     dispute.Reason,
		Status:     string(dispute.Status),
		Resolution: dispute.Resolution.Ptr(),
		ResolvedBy: nullUUIDPtr(dispute.ResolvedBy),
		CreatedAt:  dispute.CreatedAt,
		UpdatedAt:  dispute.UpdatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Dispute, error) {
	var m models.Dispute
	if err := forUpdate(ctx, GetDB(ctx, r.db)).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toDisputeEntity(&m), nil
}

func (r *DisputeRepository) Update(ctx context.Context, dispute *entities.Dispute) error {
	updates := map[string]interface{}{
		"status":      string(dispute.Status),
		"resolution":  dispute.Resolution.Ptr(),
		"resolved_by": nullUUIDPtr(dispute.ResolvedBy),
	}
	if !dispute.UpdatedAt.IsZero() {
		updates["updated_at"] = dispute.UpdatedAt
	}
	result := GetDB(ctx, r.db).Model(&models.Dispute{}).Where("id = ?", dispute.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *DisputeRepository) HasBlockingForTrade(ctx context.Context, tradeID uuid.UUID) (bool, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.Dispute{}).
		Where("trade_id = ? AND status <> ?", tradeID, string(entities.DisputeStatusDismissed)).
		Count(&n).Error
	return n > 0, err
}

func (r *DisputeRepository) CountRaisedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.Dispute{}).
		Where("raised_by = ? AND created_at >= ?", userID, since).
		Count(&n).Error
	return n, err
}

func (r *DisputeRepository) List(ctx context.Context, filter entities.DisputeFilter) ([]*entities.Dispute, int64, error) {
	base := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.Dispute{})
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base().Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	var ms []models.Dispute
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	disputes := make([]*entities.Dispute, 0, len(ms))
	for i := range ms {
		disputes = append(disputes, toDisputeEntity(&ms[i]))
	}
	return disputes, total, nil
}

func toDisputeEntity(m *models.Dispute) *entities.Dispute {
	return &entities.Dispute{
		ID:         m.ID,
		TradeID:    ptrNullUUID(m.TradeID),
		SaleID:     ptrNullUUID(m.SaleID),
		RaisedBy:   m.RaisedBy,
		Reason:     m.Reason,
		Status:     entities.DisputeStatus(m.Status),
		Resolution: null.StringFromPtr(m.Resolution),
		ResolvedBy: ptrNullUUID(m.ResolvedBy),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func nullUUIDPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}

func ptrNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
