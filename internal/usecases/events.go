package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/logger"
	"cardswap.backend/pkg/utils"
)

// NotifyTimeout bounds a single fire-and-forget notifier call.
var NotifyTimeout = 5 * time.Second

// Notifier receives every committed transition.
type Notifier interface {
	Notify(ctx context.Context, event entities.TransitionEvent) error
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, entities.TransitionEvent) error { return nil }

// EventDispatcher fans committed transitions out to the audit sink and the notifier.
// It must only be called after the owning transaction committed.
type EventDispatcher struct {
	audit    repositories.AuditLogRepository
	notifier Notifier
	clock    clock.Clock
	wg       sync.WaitGroup
}

func NewEventDispatcher(audit repositories.AuditLogRepository, notifier Notifier, clk clock.Clock) *EventDispatcher {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &EventDispatcher{audit: audit, notifier: notifier, clock: clk}
}

// Dispatch records the events and hands them to the notifier in the background.
// Failures are logged and never returned.
func (d *EventDispatcher) Dispatch(ctx context.Context, events ...entities.TransitionEvent) {
	if d == nil {
		return
	}
	for i := range events {
		ev := events[i]
		if ev.ID == uuid.Nil {
			ev.ID = utils.GenerateUUIDv7()
		}
		if ev.OccurredAt.IsZero() {
			ev.OccurredAt = d.clock.Now()
		}

		logger.Info(ctx, "State transition",
			zap.String("action", ev.Action),
			zap.String("subject_type", string(ev.SubjectType)),
			zap.String("subject_id", ev.SubjectID.String()),
			zap.String("from", ev.From),
			zap.String("to", ev.To),
		)

		if d.audit != nil {
			if err := d.audit.Append(ctx, &ev); err != nil {
				logger.Warn(ctx, "Audit append failed", zap.String("action", ev.Action), zap.Error(err))
			}
		}

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NotifyTimeout)
			defer cancel()
			if err := d.notifier.Notify(nctx, ev); err != nil {
				logger.Warn(nctx, "Transition notification failed",
					zap.String("action", ev.Action),
					zap.String("subject_id", ev.SubjectID.String()),
					zap.Error(err),
				)
			}
		}()
	}
}

// Wait blocks until in-flight notifications finish.
func (d *EventDispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

func actorNullID(actor entities.Actor) uuid.NullUUID {
	if actor.ID == uuid.Nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: actor.ID, Valid: true}
}

func tradeEvent(action string, actor entities.Actor, trade *entities.Trade, from entities.TradeStatus) entities.TransitionEvent {
	return entities.TransitionEvent{
		Action:      action,
		SubjectType: entities.SubjectTrade,
		SubjectID:   trade.ID,
		Reference:   trade.Reference,
		ActorID:     actorNullID(actor),
		From:        string(from),
		To:          string(trade.Status),
		Recipients:  []uuid.UUID{trade.InitiatorID, trade.ResponderID},
	}
}

func saleEvent(action string, actor entities.Actor, sale *entities.Sale, from entities.SaleStatus) entities.TransitionEvent {
	return entities.TransitionEvent{
		Action:      action,
		SubjectType: entities.SubjectSale,
		SubjectID:   sale.ID,
		Reference:   sale.Reference,
		ActorID:     actorNullID(actor),
		From:        string(from),
		To:          string(sale.Status),
		Recipients:  []uuid.UUID{sale.BuyerID, sale.SellerID},
	}
}
