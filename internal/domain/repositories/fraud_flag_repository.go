package repositories

import (
	"context"

	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
)

// FraudFlagRepository defines fraud flag operations
type FraudFlagRepository interface {
	Create(ctx context.Context, flag *entities.FraudFlag) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.FraudFlag, error)
	Update(ctx context.Context, flag *entities.FraudFlag) error
	HasUnresolved(ctx context.Context, userID uuid.UUID, flagType entities.FraudFlagType) (bool, error)
	CountUnresolved(ctx context.Context, userID uuid.UUID) (int64, error)
	CountConfirmed(ctx context.Context, userID uuid.UUID) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.FraudFlag, error)
	List(ctx context.Context, filter entities.FraudFlagFilter) ([]*entities.FraudFlag, int64, error)
}
