package repositories

import (
	"context"

	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	ListIDsByStatus(ctx context.Context, status entities.UserStatus) ([]uuid.UUID, error)
	List(ctx context.Context, filter entities.UserFilter) ([]*entities.User, int64, error)
}
