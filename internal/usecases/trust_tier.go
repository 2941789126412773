package usecases

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/logger"
)

// Completed-trade thresholds for promotion.
const (
	EstablishedTierTrades = 5
	TrustedTierTrades     = 20
)

// TrustTierEngine promotes users one tier at a time. Tiers never go down here.
type TrustTierEngine struct {
	userRepo  repositories.UserRepository
	tradeRepo repositories.TradeRepository
	flagRepo  repositories.FraudFlagRepository
	clock     clock.Clock
}

func NewTrustTierEngine(
	userRepo repositories.UserRepository,
	tradeRepo repositories.TradeRepository,
	flagRepo repositories.FraudFlagRepository,
	clk clock.Clock,
) *TrustTierEngine {
	return &TrustTierEngine{userRepo: userRepo, tradeRepo: tradeRepo, flagRepo: flagRepo, clock: clk}
}

// Evaluate reports whether the user moved up a tier.
func (e *TrustTierEngine) Evaluate(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := e.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, notFoundOr(err, "user not found")
	}

	confirmed, err := e.flagRepo.CountConfirmed(ctx, userID)
	if err != nil {
		return false, domainerrors.InternalError(err)
	}
	if confirmed > 0 {
		return false, nil
	}

	completed, err := e.tradeRepo.CountCompletedByUser(ctx, userID)
	if err != nil {
		return false, domainerrors.InternalError(err)
	}

	next := user.TrustTier
	switch {
	case user.TrustTier == entities.TrustTierNew && completed >= EstablishedTierTrades:
		next = entities.TrustTierEstablished
	case user.TrustTier == entities.TrustTierEstablished && completed >= TrustedTierTrades:
		next = entities.TrustTierTrusted
	}
	if next == user.TrustTier {
		return false, nil
	}

	user.TrustTier = next
	user.UpdatedAt = e.clock.Now()
	if err := e.userRepo.Update(ctx, user); err != nil {
		return false, domainerrors.InternalError(err)
	}
	logger.Info(ctx, "Trust tier upgraded",
		zap.String("user_id", userID.String()),
		zap.Int("trust_tier", int(next)),
		zap.Int64("completed_trades", completed),
	)
	return true, nil
}
