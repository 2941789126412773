package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
)

// GiftCardRepository defines gift card listing operations
type GiftCardRepository interface {
	Create(ctx context.Context, card *entities.GiftCard) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.GiftCard, error)
	Update(ctx context.Context, card *entities.GiftCard) error
	// ListExpiredActive returns active cards whose expiry date is before day.
	ListExpiredActive(ctx context.Context, day time.Time) ([]*entities.GiftCard, error)
	// MarkExpired moves the given cards that are still active to expired and
	// returns the ids that changed.
	MarkExpired(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}
