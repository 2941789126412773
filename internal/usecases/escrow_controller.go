package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/utils"
)

// EscrowController holds escrow session state. Every method expects the caller's
// transaction context with the owning trade row already locked.
type EscrowController struct {
	repo  repositories.EscrowRepository
	clock clock.Clock
}

func NewEscrowController(repo repositories.EscrowRepository, clk clock.Clock) *EscrowController {
	return &EscrowController{repo: repo, clock: clk}
}

// Get returns the session for tradeID.
func (c *EscrowController) Get(ctx context.Context, tradeID uuid.UUID) (*entities.EscrowSession, error) {
	s, err := c.repo.GetByTradeID(ctx, tradeID)
	if err != nil {
		return nil, notFoundOr(err, "escrow session not found")
	}
	return s, nil
}

// Lock opens the session for a trade. It can run once per trade.
func (c *EscrowController) Lock(ctx context.Context, tradeID uuid.UUID) (*entities.EscrowSession, error) {
	s := &entities.EscrowSession{
		ID:       utils.GenerateUUIDv7(),
		TradeID:  tradeID,
		Status:   entities.EscrowStatusLocked,
		LockedAt: c.clock.Now(),
	}
	if err := c.repo.Create(ctx, s); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.InvalidState("escrow already locked for this trade")
		}
		return nil, domainerrors.InternalError(err)
	}
	return s, nil
}

// Release moves a locked session to released.
func (c *EscrowController) Release(ctx context.Context, s *entities.EscrowSession) error {
	if s.Status != entities.EscrowStatusLocked {
		return domainerrors.InvalidState("escrow is not locked")
	}
	s.Status = entities.EscrowStatusReleased
	s.ReleasedAt = null.TimeFrom(c.clock.Now())
	return c.save(ctx, s)
}

// ArmConfirmationWindow sets the deadline once. It reports false without writing
// when a deadline already exists.
func (c *EscrowController) ArmConfirmationWindow(ctx context.Context, s *entities.EscrowSession, window time.Duration) (bool, error) {
	if s.Status.IsTerminal() {
		return false, domainerrors.InvalidState("escrow is already " + string(s.Status))
	}
	if s.ConfirmationDeadline.Valid {
		return false, nil
	}
	s.Status = entities.EscrowStatusConfirming
	s.ConfirmationDeadline = null.TimeFrom(c.clock.Now().Add(window))
	if err := c.save(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}

// Finalize closes the session after both sides confirmed.
func (c *EscrowController) Finalize(ctx context.Context, s *entities.EscrowSession) error {
	if s.Status.IsTerminal() {
		return domainerrors.InvalidState("escrow is already " + string(s.Status))
	}
	s.Status = entities.EscrowStatusFinalized
	s.FinalizedAt = null.TimeFrom(c.clock.Now())
	return c.save(ctx, s)
}

// Reverse unwinds the session.
func (c *EscrowController) Reverse(ctx context.Context, s *entities.EscrowSession) error {
	if s.Status.IsTerminal() {
		return domainerrors.InvalidState("escrow is already " + string(s.Status))
	}
	s.Status = entities.EscrowStatusReversed
	return c.save(ctx, s)
}

func (c *EscrowController) save(ctx context.Context, s *entities.EscrowSession) error {
	if err := c.repo.Update(ctx, s); err != nil {
		return domainerrors.InternalError(err)
	}
	return nil
}
