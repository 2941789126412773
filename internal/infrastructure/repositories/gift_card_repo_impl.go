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

// GiftCardRepository implements gift card listing operations
type GiftCardRepository struct {
	db *gorm.DB
}

func NewGiftCardRepository(db *gorm.DB) *GiftCardRepository {
	return &GiftCardRepository{db: db}
}

func (r *GiftCardRepository) Create(ctx context.Context, card *entities.GiftCard) error {
	m := &models.GiftCard{
		ID:                  card.ID,
		OwnerID:             card.OwnerID,
		Brand:               card.Brand,
		Value:               card.Value,
		ExpiryDate:          entities.DateOf(card.ExpiryDate),
		ListingType:         string(card.ListingType),
		Status:              string(card.Status),
		SellingPrice:        card.SellingPrice,
		CardNumberEncrypted: card.CardNumberEncrypted,
		PinEncrypted:        card.PinEncrypted,
		ModerationNote:      card.ModerationNote.Ptr(),
		CreatedAt:           card.CreatedAt,
		UpdatedAt:           card.UpdatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *GiftCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.GiftCard, error) {
	var m models.GiftCard
	if err := forUpdate(ctx, GetDB(ctx, r.db)).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toGiftCardEntity(&m), nil
}

// Update writes owner and status, the only fields deals mutate
func (r *GiftCardRepository) Update(ctx context.Context, card *entities.GiftCard) error {
	updates := map[string]interface{}{
		"owner_id":        card.OwnerID,
		"status":          string(card.Status),
		"moderation_note": card.ModerationNote.Ptr(),
	}
	if !card.UpdatedAt.IsZero() {
		updates["updated_at"] = card.UpdatedAt
	}
	result := GetDB(ctx, r.db).Model(&models.GiftCard{}).Where("id = ?", card.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *GiftCardRepository) ListExpiredActive(ctx context.Context, day time.Time) ([]*entities.GiftCard, error) {
	var ms []models.GiftCard
	err := GetDB(ctx, r.db).
		Where("status = ? AND expiry_date < ?", string(entities.GiftCardStatusActive), entities.DateOf(day)).
		Order("expiry_date ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	cards := make([]*entities.GiftCard, 0, len(ms))
	for i := range ms {
		cards = append(cards, toGiftCardEntity(&ms[i]))
	}
	return cards, nil
}

// MarkExpired only touches cards that are still active and returns the ids it
// changed. A card that left active after it was listed is skipped.
func (r *GiftCardRepository) MarkExpired(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	expired := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		result := GetDB(ctx, r.db).Model(&models.GiftCard{}).
			Where("id = ? AND status = ?", id, string(entities.GiftCardStatusActive)).
			Update("status", string(entities.GiftCardStatusExpired))
		if result.Error != nil {
			return expired, result.Error
		}
		if result.RowsAffected == 1 {
			expired = append(expired, id)
		}
	}
	return expired, nil
}

func toGiftCardEntity(m *models.GiftCard) *entities.GiftCard {
	return &entities.GiftCard{
		ID:                  m.ID,
		OwnerID:             m.OwnerID,
		Brand:               m.Brand,
		Value:               m.Value,
		ExpiryDate:          entities.DateOf(m.ExpiryDate),
		ListingType:         entities.ListingType(m.ListingType),
		Status:              entities.GiftCardStatus(m.Status),
		SellingPrice:        m.SellingPrice,
		CardNumberEncrypted: m.CardNumberEncrypted,
		PinEncrypted:        m.PinEncrypted,
		ModerationNote:      null.StringFromPtr(m.ModerationNote),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
