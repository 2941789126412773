package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/clock"
)

// AdmissionOptions tunes a single limits check.
type AdmissionOptions struct {
	// ExcludeTradeID is left out of the active-trade count (the trade being accepted).
	ExcludeTradeID uuid.UUID
	// SkipActiveCheck disables the active-trade ceiling. Sales only count toward daily limits.
	SkipActiveCheck bool
}

// LimitsEnforcer owns the daily counters on User.
// Check and Record must run inside the transaction that admits the deal, with the user row locked.
type LimitsEnforcer struct {
	userRepo  repositories.UserRepository
	tradeRepo repositories.TradeRepository
	config    ConfigReader
	clock     clock.Clock
}

func NewLimitsEnforcer(
	userRepo repositories.UserRepository,
	tradeRepo repositories.TradeRepository,
	config ConfigReader,
	clk clock.Clock,
) *LimitsEnforcer {
	return &LimitsEnforcer{
		userRepo:  userRepo,
		tradeRepo: tradeRepo,
		config:    config,
		clock:     clk,
	}
}

// Check resets stale daily counters and rejects the admission of value when a ceiling would be crossed.
func (e *LimitsEnforcer) Check(ctx context.Context, user *entities.User, value decimal.Decimal, opts AdmissionOptions) error {
	if e.resetIfStale(user) {
		if err := e.userRepo.Update(ctx, user); err != nil {
			return domainerrors.InternalError(err)
		}
	}

	limits := e.config.TierLimits(ctx, user.TrustTier)

	if !opts.SkipActiveCheck {
		active, err := e.tradeRepo.CountActiveByUser(ctx, user.ID, opts.ExcludeTradeID)
		if err != nil {
			return domainerrors.InternalError(err)
		}
		if active >= int64(limits.MaxActiveTrades) {
			return domainerrors.LimitExceeded(fmt.Sprintf("active trade limit reached (%d)", limits.MaxActiveTrades))
		}
	}

	if user.DailyTradeCount >= limits.MaxDailyTrades {
		return domainerrors.LimitExceeded(fmt.Sprintf("daily trade limit reached (%d)", limits.MaxDailyTrades))
	}
	if user.DailyTradeValue.Add(value).GreaterThan(limits.MaxDailyValue) {
		return domainerrors.LimitExceeded(fmt.Sprintf("daily value limit of $%s would be exceeded", limits.MaxDailyValue.StringFixed(2)))
	}
	return nil
}

// Record counts one admitted deal of value against the user's day.
func (e *LimitsEnforcer) Record(ctx context.Context, user *entities.User, value decimal.Decimal) error {
	e.resetIfStale(user)
	user.DailyTradeCount++
	user.DailyTradeValue = user.DailyTradeValue.Add(value)
	user.UpdatedAt = e.clock.Now()
	if err := e.userRepo.Update(ctx, user); err != nil {
		return domainerrors.InternalError(err)
	}
	return nil
}

// Snapshot returns the user's current admission state without writing.
func (e *LimitsEnforcer) Snapshot(ctx context.Context, userID uuid.UUID) (*entities.LimitSnapshot, error) {
	user, err := e.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	e.resetIfStale(user)

	active, err := e.tradeRepo.CountActiveByUser(ctx, user.ID, uuid.Nil)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return &entities.LimitSnapshot{
		TrustTier:       user.TrustTier,
		Limits:          e.config.TierLimits(ctx, user.TrustTier),
		DailyTradeCount: user.DailyTradeCount,
		DailyTradeValue: user.DailyTradeValue,
		ActiveTrades:    active,
	}, nil
}

// resetIfStale zeroes the counters when the last reset is not today (UTC).
func (e *LimitsEnforcer) resetIfStale(user *entities.User) bool {
	today := entities.DateOf(e.clock.Now())
	if user.DailyTradeReset.Valid && entities.DateOf(user.DailyTradeReset.Time).Equal(today) {
		return false
	}
	user.DailyTradeCount = 0
	user.DailyTradeValue = decimal.Zero
	user.DailyTradeReset = null.TimeFrom(today)
	user.UpdatedAt = e.clock.Now()
	return true
}
