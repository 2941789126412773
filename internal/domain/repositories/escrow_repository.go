package repositories

import (
	"context"

	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
)

// EscrowRepository defines escrow session operations
type EscrowRepository interface {
	Create(ctx context.Context, session *entities.EscrowSession) error
	GetByTradeID(ctx context.Context, tradeID uuid.UUID) (*entities.EscrowSession, error)
	Update(ctx context.Context, session *entities.EscrowSession) error
}
