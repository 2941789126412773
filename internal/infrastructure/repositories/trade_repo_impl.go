package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/infrastructure/models"
)

// TradeRepository implements trade data operations
type TradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

func (r *TradeRepository) Create(ctx context.Context, trade *entities.Trade) error {
	m := &models.Trade{
		ID:                   trade.ID,
		Reference:            trade.Reference,
		InitiatorID:          trade.InitiatorID,
		ResponderID:          trade.ResponderID,
		InitiatorCardID:      trade.InitiatorCardID,
		ResponderCardID:      trade.ResponderCardID,
		Status:               string(trade.Status),
		InitiatorConfirmed:   trade.InitiatorConfirmed,
		ResponderConfirmed:   trade.ResponderConfirmed,
		PlatformFeeInitiator: trade.PlatformFeeInitiator,
		PlatformFeeResponder: trade.PlatformFeeResponder,
		Notes:                trade.Notes.Ptr(),
		CreatedAt:            trade.CreatedAt,
		UpdatedAt:            trade.UpdatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *TradeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Trade, error) {
	var m models.Trade
	if err := forUpdate(ctx, GetDB(ctx, r.db)).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toTradeEntity(&m), nil
}

// Update writes status and confirmation flags. Fees and parties are immutable.
func (r *TradeRepository) Update(ctx context.Context, trade *entities.Trade) error {
	updates := map[string]interface{}{
		"status":              string(trade.Status),
		"initiator_confirmed": trade.InitiatorConfirmed,
		"responder_confirmed": trade.ResponderConfirmed,
	}
	if !trade.UpdatedAt.IsZero() {
		updates["updated_at"] = trade.UpdatedAt
	}
	result := GetDB(ctx, r.db).Model(&models.Trade{}).Where("id = ?", trade.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *TradeRepository) List(ctx context.Context, filter entities.TradeFilter) ([]*entities.Trade, int64, error) {
	base := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.Trade{})
		if filter.UserID != uuid.Nil {
			q = q.Where("initiator_id = ? OR responder_id = ?", filter.UserID, filter.UserID)
		}
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
	var ms []models.Trade
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	trades := make([]*entities.Trade, 0, len(ms))
	for i := range ms {
		trades = append(trades, toTradeEntity(&ms[i]))
	}
	return trades, total, nil
}

func (r *TradeRepository) CountActiveByUser(ctx context.Context, userID, excludeID uuid.UUID) (int64, error) {
	statuses := make([]string, 0, len(entities.ActiveTradeStatuses))
	for _, s := range entities.ActiveTradeStatuses {
		statuses = append(statuses, string(s))
	}
	q := GetDB(ctx, r.db).Model(&models.Trade{}).
		Where("(initiator_id = ? OR responder_id = ?) AND status IN ?", userID, userID, statuses)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *TradeRepository) CountCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.Trade{}).
		Where("(initiator_id = ? OR responder_id = ?) AND status = ?", userID, userID, string(entities.TradeStatusCompleted)).
		Count(&n).Error
	return n, err
}

func (r *TradeRepository) CountCreatedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.Trade{}).
		Where("(initiator_id = ? OR responder_id = ?) AND created_at >= ? AND status <> ?",
			userID, userID, since, string(entities.TradeStatusCancelled)).
		Count(&n).Error
	return n, err
}

func (r *TradeRepository) MaxOwnCardValue(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	highest := decimal.Zero
	for _, side := range []struct{ party, card string }{
		{"trades.initiator_id", "trades.initiator_card_id"},
		{"trades.responder_id", "trades.responder_card_id"},
	} {
		var values []decimal.Decimal
		err := GetDB(ctx, r.db).Table("trades").
			Joins("JOIN gift_cards ON gift_cards.id = "+side.card).
			Where(side.party+" = ? AND trades.status <> ?", userID, string(entities.TradeStatusCancelled)).
			Pluck("gift_cards.value", &values).Error
		if err != nil {
			return decimal.Zero, err
		}
		for _, v := range values {
			if v.GreaterThan(highest) {
				highest = v
			}
		}
	}
	return highest, nil
}

func (r *TradeRepository) ListExpiredConfirming(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	q := GetDB(ctx, r.db).Table("trades").
		Joins("JOIN escrow_sessions ON escrow_sessions.trade_id = trades.id").
		Where("trades.status = ? AND escrow_sessions.confirmation_deadline < ?", string(entities.TradeStatusConfirming), now).
		Order("escrow_sessions.confirmation_deadline ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var ids []uuid.UUID
	err := q.Pluck("trades.id", &ids).Error
	return ids, err
}

func toTradeEntity(m *models.Trade) *entities.Trade {
	return &entities.Trade{
		ID:                   m.ID,
		Reference:            m.Reference,
		InitiatorID:          m.InitiatorID,
		ResponderID:          m.ResponderID,
		InitiatorCardID:      m.InitiatorCardID,
		ResponderCardID:      m.ResponderCardID,
		Status:               entities.TradeStatus(m.Status),
		InitiatorConfirmed:   m.InitiatorConfirmed,
		ResponderConfirmed:   m.ResponderConfirmed,
		PlatformFeeInitiator: m.PlatformFeeInitiator,
		PlatformFeeResponder: m.PlatformFeeResponder,
		Notes:                null.StringFromPtr(m.Notes),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
