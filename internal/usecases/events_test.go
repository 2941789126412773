package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/internal/infrastructure/repositories"
	"cardswap.backend/internal/testutil"
	"cardswap.backend/internal/usecases"
	"cardswap.backend/pkg/clock"
)

type failingNotifier struct{ calls chan entities.TransitionEvent }

func (n failingNotifier) Notify(_ context.Context, ev entities.TransitionEvent) error {
	n.calls <- ev
	return errors.New("smtp down")
}

func TestEventDispatcher_AuditsAndNotifies(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	audit := repositories.NewAuditLogRepository(db)
	clk := clock.NewFake(harnessStart)
	notifier := failingNotifier{calls: make(chan entities.TransitionEvent, 1)}
	d := usecases.NewEventDispatcher(audit, notifier, clk)

	subject := uuid.New()
	d.Dispatch(ctx, entities.TransitionEvent{
		Action:      "trade.proposed",
		SubjectType: entities.SubjectTrade,
		SubjectID:   subject,
		To:          "proposed",
	})
	d.Wait()

	sent := <-notifier.calls
	assert.Equal(t, "trade.proposed", sent.Action)
	assert.NotEqual(t, uuid.Nil, sent.ID)
	assert.Equal(t, harnessStart, sent.OccurredAt)

	stored, err := audit.ListBySubject(ctx, entities.SubjectTrade, subject)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, sent.ID, stored[0].ID)
}

func TestEventDispatcher_NilSafe(t *testing.T) {
	var d *usecases.EventDispatcher
	d.Dispatch(context.Background(), entities.TransitionEvent{Action: "noop"})
	d.Wait()

	d = usecases.NewEventDispatcher(nil, nil, nil)
	d.Dispatch(context.Background(), entities.TransitionEvent{Action: "noop"})
	d.Wait()
}
