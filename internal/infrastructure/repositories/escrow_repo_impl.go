package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/infrastructure/models"
)

// EscrowRepository implements escrow session operations
type EscrowRepository struct {
	db *gorm.DB
}

func NewEscrowRepository(db *gorm.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// Create fails with ErrAlreadyExists if the trade already has a session.
func (r *EscrowRepository) Create(ctx context.Context, session *entities.EscrowSession) error {
	db := GetDB(ctx, r.db)
	var n int64
	if err := db.Model(&models.EscrowSession{}).Where("trade_id = ?", session.TradeID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return domainerrors.ErrAlreadyExists
	}
	m := &models.EscrowSession{
		ID:                   session.ID,
		TradeID:              session.TradeID,
		Status:               string(session.Status),
		LockedAt:             session.LockedAt,
		ReleasedAt:           session.ReleasedAt.Ptr(),
		ConfirmationDeadline: session.ConfirmationDeadline.Ptr(),
		FinalizedAt:          session.FinalizedAt.Ptr(),
	}
	return db.Create(m).Error
}

func (r *EscrowRepository) GetByTradeID(ctx context.Context, tradeID uuid.UUID) (*entities.EscrowSession, error) {
	var m models.EscrowSession
	if err := forUpdate(ctx, GetDB(ctx, r.db)).Where("trade_id = ?", tradeID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.EscrowSession{
		ID:                   m.ID,
		TradeID:              m.TradeID,
		Status:               entities.EscrowStatus(m.Status),
		LockedAt:             m.LockedAt,
		ReleasedAt:           null.TimeFromPtr(m.ReleasedAt),
		ConfirmationDeadline: null.TimeFromPtr(m.ConfirmationDeadline),
		FinalizedAt:          null.TimeFromPtr(m.FinalizedAt),
	}, nil
}

// Update writes status and timestamps. locked_at is never rewritten.
func (r *EscrowRepository) Update(ctx context.Context, session *entities.EscrowSession) error {
	result := GetDB(ctx, r.db).Model(&models.EscrowSession{}).Where("id = ?", session.ID).Updates(map[string]interface{}{
		"status":                string(session.Status),
		"released_at":           session.ReleasedAt.Ptr(),
		"confirmation_deadline": session.ConfirmationDeadline.Ptr(),
		"finalized_at":          session.FinalizedAt.Ptr(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
