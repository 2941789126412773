package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cardswap.backend/internal/domain/entities"
)

// TradeRepository defines trade data operations
type TradeRepository interface {
	Create(ctx context.Context, trade *entities.Trade) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Trade, error)
	Update(ctx context.Context, trade *entities.Trade) error
	List(ctx context.Context, filter entities.TradeFilter) ([]*entities.Trade, int64, error)

	// CountActiveByUser counts non-terminal trades the user takes part in,
	// ignoring excludeID (pass uuid.Nil to count all).
	CountActiveByUser(ctx context.Context, userID, excludeID uuid.UUID) (int64, error)
	CountCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// CountCreatedSince counts non-cancelled trades involving the user created at or after since.
	CountCreatedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	// MaxOwnCardValue is the highest value of the card the user put up in any non-cancelled trade.
	MaxOwnCardValue(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	// ListExpiredConfirming returns ids of confirming trades whose escrow deadline is before now.
	ListExpiredConfirming(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}
