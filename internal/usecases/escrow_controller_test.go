package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
)

func TestEscrowController_LockOncePerTrade(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	trade := h.propose(t, h.newScenario(t))

	s, err := h.escrow.Lock(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.EscrowStatusLocked, s.Status)
	assert.Equal(t, h.clock.Now(), s.LockedAt)

	_, err = h.escrow.Lock(ctx, trade.ID)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
}

func TestEscrowController_ArmRejectedAfterFinalize(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	trade := h.propose(t, h.newScenario(t))
	s, err := h.escrow.Lock(ctx, trade.ID)
	require.NoError(t, err)

	require.NoError(t, h.escrow.Finalize(ctx, s))
	s, err = h.escrow.Get(ctx, trade.ID)
	require.NoError(t, err)
	_, err = h.escrow.ArmConfirmationWindow(ctx, s, time.Hour)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
}

func TestEscrowController_DeadlineSetAtMostOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	trade := h.propose(t, h.newScenario(t))
	s, err := h.escrow.Lock(ctx, trade.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, h.escrow.Finalize(ctx, &entities.EscrowSession{ID: s.ID, Status: entities.EscrowStatusReversed}), domainerrors.ErrInvalidState)

	require.NoError(t, h.escrow.Release(ctx, s))
	assert.ErrorIs(t, h.escrow.Release(ctx, s), domainerrors.ErrInvalidState)

	armed, err := h.escrow.ArmConfirmationWindow(ctx, s, time.Hour)
	require.NoError(t, err)
	assert.True(t, armed)
	first := s.ConfirmationDeadline.Time

	h.clock.Advance(10 * time.Minute)
	armed, err = h.escrow.ArmConfirmationWindow(ctx, s, 2*time.Hour)
	require.NoError(t, err)
	assert.False(t, armed)
	assert.Equal(t, first, s.ConfirmationDeadline.Time)

	stored := h.reloadEscrow(t, trade.ID)
	assert.True(t, first.Equal(stored.ConfirmationDeadline.Time))
	assert.Equal(t, entities.EscrowStatusConfirming, stored.Status)

	require.NoError(t, h.escrow.Finalize(ctx, s))
	assert.ErrorIs(t, h.escrow.Reverse(ctx, s), domainerrors.ErrInvalidState)
	assert.ErrorIs(t, h.escrow.Finalize(ctx, s), domainerrors.ErrInvalidState)
	assert.Equal(t, entities.EscrowStatusFinalized, h.reloadEscrow(t, trade.ID).Status)
}
