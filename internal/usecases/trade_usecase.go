package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/logger"
	"cardswap.backend/pkg/utils"
)

// FraudChecker runs post-transition heuristics for a user.
type FraudChecker interface {
	RunChecks(ctx context.Context, userID uuid.UUID) []*entities.FraudFlag
}

// CodeCipher seals and opens card codes.
type CodeCipher interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}

// SweepOutcome is what FinalizeExpired did to one trade.
type SweepOutcome string

const (
	SweepOutcomeFinalized SweepOutcome = "finalized"
	SweepOutcomeSkipped   SweepOutcome = "skipped_disputed"
	SweepOutcomeNoop      SweepOutcome = "noop"
)

// TradeUsecase drives the trade state machine. Every transition locks the trade
// row first and dispatches side effects only after commit.
type TradeUsecase struct {
	uow         repositories.UnitOfWork
	userRepo    repositories.UserRepository
	cardRepo    repositories.GiftCardRepository
	tradeRepo   repositories.TradeRepository
	disputeRepo repositories.DisputeRepository
	escrow      *EscrowController
	limits      *LimitsEnforcer
	trust       *TrustTierEngine
	fraud       FraudChecker
	config      ConfigReader
	cipher      CodeCipher
	clock       clock.Clock
	dispatcher  *EventDispatcher
}

func NewTradeUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	cardRepo repositories.GiftCardRepository,
	tradeRepo repositories.TradeRepository,
	disputeRepo repositories.DisputeRepository,
	escrow *EscrowController,
	limits *LimitsEnforcer,
	trust *TrustTierEngine,
	fraud FraudChecker,
	config ConfigReader,
	cipher CodeCipher,
	clk clock.Clock,
	dispatcher *EventDispatcher,
) *TradeUsecase {
	return &TradeUsecase{
		uow:         uow,
		userRepo:    userRepo,
		cardRepo:    cardRepo,
		tradeRepo:   tradeRepo,
		disputeRepo: disputeRepo,
		escrow:      escrow,
		limits:      limits,
		trust:       trust,
		fraud:       fraud,
		config:      config,
		cipher:      cipher,
		clock:       clk,
		dispatcher:  dispatcher,
	}
}

// Propose opens a trade offering the actor's card for another user's swap listing.
func (uc *TradeUsecase) Propose(ctx context.Context, actor entities.Actor, input entities.ProposeTradeInput) (*entities.Trade, error) {
	if input.InitiatorCardID == input.ResponderCardID {
		return nil, domainerrors.ValidationFailed("cannot trade a card for itself")
	}

	var trade *entities.Trade
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := uc.uow.WithLock(txCtx)

		initiator, err := uc.userRepo.GetByID(lockCtx, actor.ID)
		if err != nil {
			return notFoundOr(err, "user not found")
		}
		if !initiator.IsActive() {
			return domainerrors.Forbidden("your account is " + string(initiator.Status))
		}
		if !initiator.HasCompleteProfile() {
			return domainerrors.ValidationFailed("upload a profile image before trading")
		}

		now := uc.clock.Now()
		cards, err := uc.lockCards(lockCtx, input.InitiatorCardID, input.ResponderCardID)
		if err != nil {
			return err
		}
		initiatorCard, responderCard := cards[input.InitiatorCardID], cards[input.ResponderCardID]
		if initiatorCard.OwnerID != initiator.ID {
			return domainerrors.ValidationFailed("you can only offer your own gift card")
		}
		if err := validateListing(initiatorCard, entities.ListingTypeSwap, now); err != nil {
			return err
		}
		if responderCard.OwnerID == initiator.ID {
			return domainerrors.ValidationFailed("you cannot trade with yourself")
		}
		if err := validateListing(responderCard, entities.ListingTypeSwap, now); err != nil {
			return err
		}
		if _, err := uc.userRepo.GetByID(txCtx, responderCard.OwnerID); err != nil {
			return notFoundOr(err, "card owner not found")
		}

		if err := uc.limits.Check(txCtx, initiator, initiatorCard.Value, AdmissionOptions{}); err != nil {
			return err
		}

		feePct := uc.config.FeePercentage(txCtx)
		trade = &entities.Trade{
			ID:                   utils.GenerateUUIDv7(),
			Reference:            utils.GenerateReference("TRD"),
			InitiatorID:          initiator.ID,
			ResponderID:          responderCard.OwnerID,
			InitiatorCardID:      initiatorCard.ID,
			ResponderCardID:      responderCard.ID,
			Status:               entities.TradeStatusProposed,
			PlatformFeeInitiator: calculateFee(initiatorCard.Value, feePct),
			PlatformFeeResponder: calculateFee(responderCard.Value, feePct),
			Notes:                notesOf(input.Notes),
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := uc.tradeRepo.Create(txCtx, trade); err != nil {
			return domainerrors.InternalError(err)
		}
		return uc.limits.Record(txCtx, initiator, initiatorCard.Value)
	})
	if err != nil {
		return nil, internalOr(err)
	}

	uc.dispatcher.Dispatch(ctx, tradeEvent("trade.proposed", actor, trade, ""))
	uc.fraud.RunChecks(ctx, trade.InitiatorID)
	return trade, nil
}

// Respond lets the responder accept (escrow opens) or decline (trade cancelled).
func (uc *TradeUsecase) Respond(ctx context.Context, actor entities.Actor, tradeID uuid.UUID, accept bool) (*entities.TradeView, error) {
	var (
		trade  *entities.Trade
		escrow *entities.EscrowSession
	)
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := uc.uow.WithLock(txCtx)

		var err error
		trade, err = uc.lockTrade(lockCtx, tradeID)
		if err != nil {
			return err
		}
		if trade.ResponderID != actor.ID {
			return domainerrors.Forbidden("only the responder can accept or decline this trade")
		}
		if trade.Status != entities.TradeStatusProposed {
			return domainerrors.InvalidState("trade is not in a proposed state")
		}

		now := uc.clock.Now()
		if !accept {
			trade.Status = entities.TradeStatusCancelled
			trade.UpdatedAt = now
			return uc.saveTrade(txCtx, trade)
		}

		responder, err := uc.userRepo.GetByID(lockCtx, actor.ID)
		if err != nil {
			return notFoundOr(err, "user not found")
		}
		if !responder.IsActive() {
			return domainerrors.Forbidden("your account is " + string(responder.Status))
		}

		cards, err := uc.lockCards(lockCtx, trade.InitiatorCardID, trade.ResponderCardID)
		if err != nil {
			return err
		}
		initiatorCard, responderCard := cards[trade.InitiatorCardID], cards[trade.ResponderCardID]

		if err := uc.limits.Check(txCtx, responder, responderCard.Value, AdmissionOptions{ExcludeTradeID: trade.ID}); err != nil {
			return err
		}

		if initiatorCard.Status != entities.GiftCardStatusActive {
			return domainerrors.ValidationFailed("the initiator's gift card is no longer active")
		}
		if responderCard.Status != entities.GiftCardStatusActive {
			return domainerrors.ValidationFailed("your gift card is no longer active")
		}

		for _, card := range []*entities.GiftCard{initiatorCard, responderCard} {
			card.Status = entities.GiftCardStatusInTrade
			card.UpdatedAt = now
			if err := uc.cardRepo.Update(txCtx, card); err != nil {
				return domainerrors.InternalError(err)
			}
		}

		escrow, err = uc.escrow.Lock(txCtx, trade.ID)
		if err != nil {
			return err
		}

		trade.Status = entities.TradeStatusInEscrow
		trade.UpdatedAt = now
		if err := uc.saveTrade(txCtx, trade); err != nil {
			return err
		}
		return uc.limits.Record(txCtx, responder, responderCard.Value)
	})
	if err != nil {
		return nil, internalOr(err)
	}

	action := "trade.declined"
	if accept {
		action = "trade.accepted"
	}
	uc.dispatcher.Dispatch(ctx, tradeEvent(action, actor, trade, entities.TradeStatusProposed))
	if accept {
		uc.fraud.RunChecks(ctx, trade.ResponderID)
	}
	return &entities.TradeView{Trade: trade, Escrow: escrow}, nil
}

// Release reveals both codes to the participants.
func (uc *TradeUsecase) Release(ctx context.Context, actor entities.Actor, tradeID uuid.UUID) (*entities.TradeView, error) {
	var (
		trade  *entities.Trade
		escrow *entities.EscrowSession
	)
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		trade, err = uc.lockTrade(uc.uow.WithLock(txCtx), tradeID)
		if err != nil {
			return err
		}
		if !trade.IsParticipant(actor.ID) {
			return domainerrors.Forbidden("you are not a participant in this trade")
		}
		if trade.Status != entities.TradeStatusInEscrow {
			return domainerrors.InvalidState("codes can only be released while the trade is in escrow")
		}

		escrow, err = uc.escrow.Get(txCtx, trade.ID)
		if err != nil {
			return err
		}
		if err := uc.escrow.Release(txCtx, escrow); err != nil {
			return err
		}

		trade.Status = entities.TradeStatusCodesReleased
		trade.UpdatedAt = uc.clock.Now()
		return uc.saveTrade(txCtx, trade)
	})
	if err != nil {
		return nil, internalOr(err)
	}

	uc.dispatcher.Dispatch(ctx, tradeEvent("trade.codes_released", actor, trade, entities.TradeStatusInEscrow))
	return &entities.TradeView{Trade: trade, Escrow: escrow}, nil
}

// Confirm records the actor's receipt. The first confirmation arms the window,
// the second completes the trade.
func (uc *TradeUsecase) Confirm(ctx context.Context, actor entities.Actor, tradeID uuid.UUID) (*entities.TradeView, error) {
	var (
		trade  *entities.Trade
		escrow *entities.EscrowSession
		from   entities.TradeStatus
	)
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		trade, err = uc.lockTrade(uc.uow.WithLock(txCtx), tradeID)
		if err != nil {
			return err
		}
		from = trade.Status
		if !trade.IsParticipant(actor.ID) {
			return domainerrors.Forbidden("you are not a participant in this trade")
		}
		if trade.Status != entities.TradeStatusCodesReleased && trade.Status != entities.TradeStatusConfirming {
			return domainerrors.InvalidState("trade must be in codes_released or confirming state to confirm")
		}

		escrow, err = uc.escrow.Get(txCtx, trade.ID)
		if err != nil {
			return err
		}
		now := uc.clock.Now()
		if escrow.DeadlinePassed(now) {
			return domainerrors.InvalidState("the confirmation window has expired")
		}

		// Flags only ever go from false to true, so the other side's flag tells
		// us whether this is the first confirmation.
		isInitiator := actor.ID == trade.InitiatorID
		if isInitiator {
			if trade.InitiatorConfirmed {
				return domainerrors.InvalidState("you have already confirmed this trade")
			}
			trade.InitiatorConfirmed = true
		} else {
			if trade.ResponderConfirmed {
				return domainerrors.InvalidState("you have already confirmed this trade")
			}
			trade.ResponderConfirmed = true
		}
		trade.UpdatedAt = now

		if trade.BothConfirmed() {
			return uc.completeTrade(txCtx, trade, escrow)
		}

		if _, err := uc.escrow.ArmConfirmationWindow(txCtx, escrow, uc.config.ConfirmationWindow(txCtx)); err != nil {
			return err
		}
		trade.Status = entities.TradeStatusConfirming
		return uc.saveTrade(txCtx, trade)
	})
	if err != nil {
		return nil, internalOr(err)
	}

	uc.afterTransition(ctx, actor, trade, from)
	return &entities.TradeView{Trade: trade, Escrow: escrow}, nil
}

// Dispute freezes the trade for admin review.
func (uc *TradeUsecase) Dispute(ctx context.Context, actor entities.Actor, tradeID uuid.UUID, reason string) (*entities.Dispute, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domainerrors.ValidationFailed("a reason is required to file a dispute")
	}

	var (
		trade      *entities.Trade
		dispute    *entities.Dispute
		from       entities.TradeStatus
		restricted []uuid.UUID
	)
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := uc.uow.WithLock(txCtx)

		var err error
		trade, err = uc.lockTrade(lockCtx, tradeID)
		if err != nil {
			return err
		}
		from = trade.Status
		if !trade.IsParticipant(actor.ID) {
			return domainerrors.Forbidden("you are not a participant in this trade")
		}
		if trade.Status != entities.TradeStatusCodesReleased && trade.Status != entities.TradeStatusConfirming {
			return domainerrors.InvalidState("disputes can only be filed while codes_released or confirming")
		}

		now := uc.clock.Now()
		dispute = &entities.Dispute{
			ID:        utils.GenerateUUIDv7(),
			TradeID:   uuid.NullUUID{UUID: trade.ID, Valid: true},
			RaisedBy:  actor.ID,
			Reason:    reason,
			Status:    entities.DisputeStatusOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.disputeRepo.Create(txCtx, dispute); err != nil {
			return internalOr(err)
		}

		trade.Status = entities.TradeStatusDisputed
		trade.UpdatedAt = now
		if err := uc.saveTrade(txCtx, trade); err != nil {
			return err
		}

		restricted, err = uc.restrictParticipants(lockCtx, trade, now)
		if err != nil {
			return err
		}

		escrow, err := uc.escrow.Get(txCtx, trade.ID)
		if err != nil {
			return err
		}
		return uc.escrow.Reverse(txCtx, escrow)
	})
	if err != nil {
		return nil, internalOr(err)
	}

	events := []entities.TransitionEvent{tradeEvent("trade.disputed", actor, trade, from)}
	for _, id := range restricted {
		events = append(events, entities.TransitionEvent{
			Action:      "user.restricted",
			SubjectType: entities.SubjectUser,
			SubjectID:   id,
			ActorID:     actorNullID(actor),
			From:        string(entities.UserStatusActive),
			To:          string(entities.UserStatusRestricted),
			Recipients:  []uuid.UUID{id},
			Metadata:    map[string]string{"reason": "dispute", "trade_id": trade.ID.String()},
		})
	}
	uc.dispatcher.Dispatch(ctx, events...)
	uc.fraud.RunChecks(ctx, actor.ID)
	return dispute, nil
}

func (uc *TradeUsecase) restrictParticipants(lockCtx context.Context, trade *entities.Trade, now time.Time) ([]uuid.UUID, error) {
	var restricted []uuid.UUID
	for _, id := range lockOrder(trade.InitiatorID, trade.ResponderID) {
		user, err := uc.userRepo.GetByID(lockCtx, id)
		if err != nil {
			return nil, notFoundOr(err, "user not found")
		}
		if !user.IsActive() {
			continue
		}
		user.Status = entities.UserStatusRestricted
		user.UpdatedAt = now
		if err := uc.userRepo.Update(lockCtx, user); err != nil {
			return nil, domainerrors.InternalError(err)
		}
		restricted = append(restricted, id)
	}
	return restricted, nil
}

// Reverse is the admin unwind. Completed and cancelled trades cannot be reversed.
func (uc *TradeUsecase) Reverse(ctx context.Context, actor entities.Actor, tradeID uuid.UUID) (*entities.TradeView, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("only admins can reverse trades")
	}

	var (
		trade  *entities.Trade
		escrow *entities.EscrowSession
		from   entities.TradeStatus
	)
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := uc.uow.WithLock(txCtx)

		var err error
		trade, err = uc.lockTrade(lockCtx, tradeID)
		if err != nil {
			return err
		}
		from = trade.Status
		if trade.Status.IsTerminal() {
			return domainerrors.InvalidState("trade is already " + string(trade.Status))
		}

		escrow, err = uc.escrow.Get(txCtx, trade.ID)
		switch {
		case errors.Is(err, domainerrors.ErrNotFound):
			escrow = nil
		case err != nil:
			return err
		case !escrow.Status.IsTerminal():
			if err := uc.escrow.Reverse(txCtx, escrow); err != nil {
				return err
			}
		}

		now := uc.clock.Now()
		cards, err := uc.lockCards(lockCtx, trade.InitiatorCardID, trade.ResponderCardID)
		if err != nil {
			return err
		}
		for _, card := range cards {
			// A proposed trade never took the cards out of the market.
			if from == entities.TradeStatusProposed || card.Status == entities.GiftCardStatusActive {
				continue
			}
			card.Status = entities.GiftCardStatusActive
			card.UpdatedAt = now
			if err := uc.cardRepo.Update(txCtx, card); err != nil {
				return domainerrors.InternalError(err)
			}
		}

		trade.Status = entities.TradeStatusCancelled
		trade.UpdatedAt = now
		return uc.saveTrade(txCtx, trade)
	})
	if err != nil {
		return nil, internalOr(err)
	}

	uc.dispatcher.Dispatch(ctx, tradeEvent("trade.reversed", actor, trade, from))
	return &entities.TradeView{Trade: trade, Escrow: escrow}, nil
}

// FinalizeExpired completes a confirming trade whose window lapsed without a live dispute.
// It is safe to call repeatedly: anything already settled comes back as a no-op.
func (uc *TradeUsecase) FinalizeExpired(ctx context.Context, tradeID uuid.UUID) (SweepOutcome, error) {
	var (
		trade   *entities.Trade
		outcome = SweepOutcomeNoop
	)
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		trade, err = uc.lockTrade(uc.uow.WithLock(txCtx), tradeID)
		if err != nil {
			return err
		}
		escrow, verdict, err := uc.expiryVerdict(txCtx, trade)
		if err != nil || verdict != SweepOutcomeFinalized {
			outcome = verdict
			return err
		}

		trade.InitiatorConfirmed = true
		trade.ResponderConfirmed = true
		trade.UpdatedAt = uc.clock.Now()
		if err := uc.completeTrade(txCtx, trade, escrow); err != nil {
			return err
		}
		outcome = SweepOutcomeFinalized
		return nil
	})
	if err != nil {
		return SweepOutcomeNoop, internalOr(err)
	}

	if outcome == SweepOutcomeFinalized {
		uc.afterTransition(ctx, entities.SystemActor, trade, entities.TradeStatusConfirming)
	}
	return outcome, nil
}

// PreviewExpired reports what FinalizeExpired would do without writing.
func (uc *TradeUsecase) PreviewExpired(ctx context.Context, tradeID uuid.UUID) (SweepOutcome, error) {
	trade, err := uc.tradeRepo.GetByID(ctx, tradeID)
	if err != nil {
		return SweepOutcomeNoop, notFoundOr(err, "trade not found")
	}
	_, outcome, err := uc.expiryVerdict(ctx, trade)
	if err != nil {
		return SweepOutcomeNoop, internalOr(err)
	}
	return outcome, nil
}

func (uc *TradeUsecase) expiryVerdict(ctx context.Context, trade *entities.Trade) (*entities.EscrowSession, SweepOutcome, error) {
	if trade.Status != entities.TradeStatusConfirming {
		return nil, SweepOutcomeNoop, nil
	}
	escrow, err := uc.escrow.Get(ctx, trade.ID)
	if err != nil {
		return nil, SweepOutcomeNoop, err
	}
	if escrow.Status.IsTerminal() || !escrow.DeadlinePassed(uc.clock.Now()) {
		return escrow, SweepOutcomeNoop, nil
	}
	blocked, err := uc.disputeRepo.HasBlockingForTrade(ctx, trade.ID)
	if err != nil {
		return nil, SweepOutcomeNoop, domainerrors.InternalError(err)
	}
	if blocked {
		return escrow, SweepOutcomeSkipped, nil
	}
	return escrow, SweepOutcomeFinalized, nil
}

// completeTrade finalizes escrow, swaps ownership and re-evaluates trust tiers.
// The caller holds the trade lock and has already set both confirmation flags.
func (uc *TradeUsecase) completeTrade(txCtx context.Context, trade *entities.Trade, escrow *entities.EscrowSession) error {
	lockCtx := uc.uow.WithLock(txCtx)
	// Trust evaluation writes both users, so their rows are taken before the cards.
	for _, id := range lockOrder(trade.InitiatorID, trade.ResponderID) {
		if _, err := uc.userRepo.GetByID(lockCtx, id); err != nil {
			return notFoundOr(err, "user not found")
		}
	}
	cards, err := uc.lockCards(lockCtx, trade.InitiatorCardID, trade.ResponderCardID)
	if err != nil {
		return err
	}
	initiatorCard, responderCard := cards[trade.InitiatorCardID], cards[trade.ResponderCardID]

	if err := uc.escrow.Finalize(txCtx, escrow); err != nil {
		return err
	}

	now := uc.clock.Now()
	if initiatorCard.OwnerID != trade.InitiatorID || responderCard.OwnerID != trade.ResponderID {
		return domainerrors.InvalidState("card ownership changed since the trade was proposed")
	}

	initiatorCard.OwnerID = trade.ResponderID
	responderCard.OwnerID = trade.InitiatorID
	for _, card := range []*entities.GiftCard{initiatorCard, responderCard} {
		card.Status = entities.GiftCardStatusSwapped
		card.UpdatedAt = now
		if err := uc.cardRepo.Update(txCtx, card); err != nil {
			return domainerrors.InternalError(err)
		}
	}

	trade.Status = entities.TradeStatusCompleted
	trade.UpdatedAt = now
	if err := uc.saveTrade(txCtx, trade); err != nil {
		return err
	}

	for _, id := range lockOrder(trade.InitiatorID, trade.ResponderID) {
		if _, err := uc.trust.Evaluate(lockCtx, id); err != nil {
			return err
		}
	}
	return nil
}

func (uc *TradeUsecase) afterTransition(ctx context.Context, actor entities.Actor, trade *entities.Trade, from entities.TradeStatus) {
	action := "trade.confirmed"
	switch {
	case trade.Status == entities.TradeStatusCompleted && actor == entities.SystemActor:
		action = "trade.auto_finalized"
	case trade.Status == entities.TradeStatusCompleted:
		action = "trade.completed"
	}
	uc.dispatcher.Dispatch(ctx, tradeEvent(action, actor, trade, from))

	if trade.Status == entities.TradeStatusCompleted {
		logger.Info(ctx, "Trade completed",
			zap.String("trade_id", trade.ID.String()),
			zap.String("reference", trade.Reference),
		)
		uc.fraud.RunChecks(ctx, trade.InitiatorID)
		uc.fraud.RunChecks(ctx, trade.ResponderID)
	}
}

// GetTrade returns the trade with its escrow. Codes are included only for
// participants once they have been released.
func (uc *TradeUsecase) GetTrade(ctx context.Context, actor entities.Actor, tradeID uuid.UUID) (*entities.TradeView, error) {
	trade, err := uc.tradeRepo.GetByID(ctx, tradeID)
	if err != nil {
		return nil, notFoundOr(err, "trade not found")
	}
	participant := trade.IsParticipant(actor.ID)
	if !participant && !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("you are not a participant in this trade")
	}

	view := &entities.TradeView{Trade: trade}
	escrow, err := uc.escrow.Get(ctx, trade.ID)
	switch {
	case err == nil:
		view.Escrow = escrow
	case !errors.Is(err, domainerrors.ErrNotFound):
		return nil, err
	}

	if participant && trade.CodesVisible() {
		for _, cardID := range []uuid.UUID{trade.InitiatorCardID, trade.ResponderCardID} {
			code, err := uc.revealCode(ctx, cardID)
			if err != nil {
				return nil, err
			}
			view.Codes = append(view.Codes, *code)
		}
	}
	return view, nil
}

// ListTrades lists the actor's trades. Admins see every trade.
func (uc *TradeUsecase) ListTrades(ctx context.Context, actor entities.Actor, filter entities.TradeFilter) ([]*entities.Trade, int64, error) {
	if !actor.IsAdmin() {
		filter.UserID = actor.ID
	}
	trades, total, err := uc.tradeRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, domainerrors.InternalError(err)
	}
	return trades, total, nil
}

func (uc *TradeUsecase) revealCode(ctx context.Context, cardID uuid.UUID) (*entities.CardCode, error) {
	card, err := uc.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, notFoundOr(err, "gift card not found")
	}
	return openCardCode(uc.cipher, card)
}

func (uc *TradeUsecase) lockTrade(lockCtx context.Context, tradeID uuid.UUID) (*entities.Trade, error) {
	trade, err := uc.tradeRepo.GetByID(lockCtx, tradeID)
	if err != nil {
		return nil, notFoundOr(err, "trade not found")
	}
	return trade, nil
}

// lockCards reads and locks the given cards in lock order.
func (uc *TradeUsecase) lockCards(lockCtx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*entities.GiftCard, error) {
	cards := make(map[uuid.UUID]*entities.GiftCard, len(ids))
	for _, id := range lockOrder(ids...) {
		card, err := uc.cardRepo.GetByID(lockCtx, id)
		if err != nil {
			return nil, notFoundOr(err, "gift card not found")
		}
		cards[id] = card
	}
	return cards, nil
}

func (uc *TradeUsecase) saveTrade(ctx context.Context, trade *entities.Trade) error {
	if err := uc.tradeRepo.Update(ctx, trade); err != nil {
		return domainerrors.InternalError(err)
	}
	return nil
}

// validateListing checks a card can enter a new deal of the given kind.
func validateListing(card *entities.GiftCard, kind entities.ListingType, now time.Time) error {
	if card.Status != entities.GiftCardStatusActive {
		return domainerrors.ValidationFailed("gift card is not active")
	}
	if card.ListingType != kind {
		return domainerrors.ValidationFailed("gift card is not listed for " + string(kind))
	}
	if card.IsExpired(now) {
		return domainerrors.ValidationFailed("gift card has expired")
	}
	return nil
}

func openCardCode(cipher CodeCipher, card *entities.GiftCard) (*entities.CardCode, error) {
	number, err := cipher.Open(card.CardNumberEncrypted)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	code := &entities.CardCode{GiftCardID: card.ID, CardNumber: number}
	if card.PinEncrypted != "" {
		if code.Pin, err = cipher.Open(card.PinEncrypted); err != nil {
			return nil, domainerrors.InternalError(err)
		}
	}
	return code, nil
}
