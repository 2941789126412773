package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/internal/domain/repositories"
)

// Heuristic thresholds.
const (
	RapidTradesThreshold      = 3
	RapidTradesWindow         = time.Hour
	RepeatedDisputesThreshold = 2
	RepeatedDisputesWindow    = 7 * 24 * time.Hour
)

var AbnormalValueThreshold = decimal.NewFromInt(500)

// FraudCheck is one independent heuristic. Evaluate returns flagged=true with a
// human readable details string when the user trips it.
type FraudCheck interface {
	Type() entities.FraudFlagType
	Evaluate(ctx context.Context, user *entities.User, now time.Time) (details string, flagged bool, err error)
}

// DefaultFraudChecks returns the built-in heuristics in evaluation order.
func DefaultFraudChecks(
	tradeRepo repositories.TradeRepository,
	disputeRepo repositories.DisputeRepository,
) []FraudCheck {
	return []FraudCheck{
		&RapidTradesCheck{tradeRepo: tradeRepo},
		&RepeatedDisputesCheck{disputeRepo: disputeRepo},
		MultiIPCheck{},
		&AbnormalValueCheck{tradeRepo: tradeRepo},
	}
}

type RapidTradesCheck struct {
	tradeRepo repositories.TradeRepository
}

func (c *RapidTradesCheck) Type() entities.FraudFlagType { return entities.FraudFlagRapidTrades }

func (c *RapidTradesCheck) Evaluate(ctx context.Context, user *entities.User, now time.Time) (string, bool, error) {
	count, err := c.tradeRepo.CountCreatedSince(ctx, user.ID, now.Add(-RapidTradesWindow))
	if err != nil {
		return "", false, err
	}
	if count <= RapidTradesThreshold {
		return "", false, nil
	}
	return fmt.Sprintf("User %s has %d trades in the last %d hour(s), exceeding the threshold of %d.",
		user.Username, count, int(RapidTradesWindow.Hours()), RapidTradesThreshold), true, nil
}

type RepeatedDisputesCheck struct {
	disputeRepo repositories.DisputeRepository
}

func (c *RepeatedDisputesCheck) Type() entities.FraudFlagType {
	return entities.FraudFlagRepeatedDisputes
}

func (c *RepeatedDisputesCheck) Evaluate(ctx context.Context, user *entities.User, now time.Time) (string, bool, error) {
	count, err := c.disputeRepo.CountRaisedSince(ctx, user.ID, now.Add(-RepeatedDisputesWindow))
	if err != nil {
		return "", false, err
	}
	if count <= RepeatedDisputesThreshold {
		return "", false, nil
	}
	return fmt.Sprintf("User %s has filed %d disputes in the last %d days, exceeding the threshold of %d.",
		user.Username, count, int(RepeatedDisputesWindow.Hours()/24), RepeatedDisputesThreshold), true, nil
}

// MultiIPCheck never flags. Request origins are not recorded yet.
type MultiIPCheck struct{}

func (MultiIPCheck) Type() entities.FraudFlagType { return entities.FraudFlagMultiIP }

func (MultiIPCheck) Evaluate(context.Context, *entities.User, time.Time) (string, bool, error) {
	return "", false, nil
}

// AbnormalValueCheck only looks at new (tier 0) users.
type AbnormalValueCheck struct {
	tradeRepo repositories.TradeRepository
}

func (c *AbnormalValueCheck) Type() entities.FraudFlagType { return entities.FraudFlagAbnormalValue }

func (c *AbnormalValueCheck) Evaluate(ctx context.Context, user *entities.User, _ time.Time) (string, bool, error) {
	if user.TrustTier != entities.TrustTierNew {
		return "", false, nil
	}
	highest, err := c.tradeRepo.MaxOwnCardValue(ctx, user.ID)
	if err != nil {
		return "", false, err
	}
	if !highest.GreaterThan(AbnormalValueThreshold) {
		return "", false, nil
	}
	return fmt.Sprintf("New user %s (trust_tier=%d) has a trade involving a card valued at $%s, exceeding the threshold of $%s for new users.",
		user.Username, user.TrustTier, highest.StringFixed(2), AbnormalValueThreshold.StringFixed(2)), true, nil
}
