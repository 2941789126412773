package usecases

import (
	"context"

	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/clock"
)

// DisputeUsecase handles admin review of disputes.
type DisputeUsecase struct {
	uow         repositories.UnitOfWork
	disputeRepo repositories.DisputeRepository
	clock       clock.Clock
	dispatcher  *EventDispatcher
}

func NewDisputeUsecase(uow repositories.UnitOfWork, disputeRepo repositories.DisputeRepository, clk clock.Clock, dispatcher *EventDispatcher) *DisputeUsecase {
	return &DisputeUsecase{uow: uow, disputeRepo: disputeRepo, clock: clk, dispatcher: dispatcher}
}

func (uc *DisputeUsecase) GetDispute(ctx context.Context, actor entities.Actor, disputeID uuid.UUID) (*entities.Dispute, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("only admins can view disputes")
	}
	d, err := uc.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, notFoundOr(err, "dispute not found")
	}
	return d, nil
}

// Resolve moves a dispute to under_review, resolved or dismissed.
// Dismissing a trade dispute lets the sweep finalize that trade again.
func (uc *DisputeUsecase) Resolve(ctx context.Context, actor entities.Actor, disputeID uuid.UUID, input entities.ResolveDisputeInput) (*entities.Dispute, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("only admins can resolve disputes")
	}
	switch input.Status {
	case entities.DisputeStatusUnderReview, entities.DisputeStatusResolved, entities.DisputeStatusDismissed:
	default:
		return nil, domainerrors.ValidationFailed("status must be under_review, resolved or dismissed")
	}

	var (
		dispute *entities.Dispute
		from    entities.DisputeStatus
	)
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		dispute, err = uc.disputeRepo.GetByID(uc.uow.WithLock(txCtx), disputeID)
		if err != nil {
			return notFoundOr(err, "dispute not found")
		}
		from = dispute.Status
		if from == entities.DisputeStatusResolved || from == entities.DisputeStatusDismissed {
			return domainerrors.InvalidState("dispute is already " + string(from))
		}

		dispute.Status = input.Status
		if resolution := notesOf(input.Resolution); resolution.Valid {
			dispute.Resolution = resolution
		}
		if input.Status != entities.DisputeStatusUnderReview {
			dispute.ResolvedBy = actorNullID(actor)
		}
		dispute.UpdatedAt = uc.clock.Now()
		return uc.disputeRepo.Update(txCtx, dispute)
	})
	if err != nil {
		return nil, internalOr(err)
	}

	meta := map[string]string{}
	if dispute.TradeID.Valid {
		meta["trade_id"] = dispute.TradeID.UUID.String()
	}
	if dispute.SaleID.Valid {
		meta["sale_id"] = dispute.SaleID.UUID.String()
	}
	uc.dispatcher.Dispatch(ctx, entities.TransitionEvent{
		Action:      "dispute." + string(dispute.Status),
		SubjectType: entities.SubjectDispute,
		SubjectID:   dispute.ID,
		ActorID:     actorNullID(actor),
		From:        string(from),
		To:          string(dispute.Status),
		Recipients:  []uuid.UUID{dispute.RaisedBy},
		Metadata:    meta,
	})
	return dispute, nil
}
