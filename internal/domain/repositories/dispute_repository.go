package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
)

// DisputeRepository defines dispute data operations
type DisputeRepository interface {
	Create(ctx context.Context, dispute *entities.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Dispute, error)
	Update(ctx context.Context, dispute *entities.Dispute) error
	// HasBlockingForTrade reports whether the trade has any dispute that is not dismissed.
	HasBlockingForTrade(ctx context.Context, tradeID uuid.UUID) (bool, error)
	CountRaisedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	List(ctx context.Context, filter entities.DisputeFilter) ([]*entities.Dispute, int64, error)
}
