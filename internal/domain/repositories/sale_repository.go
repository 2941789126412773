package repositories

import (
	"context"

	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
)

// SaleRepository defines sale data operations
type SaleRepository interface {
	Create(ctx context.Context, sale *entities.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Sale, error)
	Update(ctx context.Context, sale *entities.Sale) error
	List(ctx context.Context, filter entities.SaleFilter) ([]*entities.Sale, int64, error)
}
