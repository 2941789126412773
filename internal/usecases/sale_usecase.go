package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/utils"
)

// SaleUsecase drives the one-way sale state machine.
type SaleUsecase struct {
	uow         repositories.UnitOfWork
	userRepo    repositories.UserRepository
	cardRepo    repositories.GiftCardRepository
	saleRepo    repositories.SaleRepository
	disputeRepo repositories.DisputeRepository
	limits      *LimitsEnforcer
	fraud       FraudChecker
	config      ConfigReader
	cipher      CodeCipher
	clock       clock.Clock
	dispatcher  *EventDispatcher
}

func NewSaleUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	cardRepo repositories.GiftCardRepository,
	saleRepo repositories.SaleRepository,
	disputeRepo repositories.DisputeRepository,
	limits *LimitsEnforcer,
	fraud FraudChecker,
	config ConfigReader,
	cipher CodeCipher,
	clk clock.Clock,
	dispatcher *EventDispatcher,
) *SaleUsecase {
	return &SaleUsecase{
		uow:         uow,
		userRepo:    userRepo,
		cardRepo:    cardRepo,
		saleRepo:    saleRepo,
		disputeRepo: disputeRepo,
		limits:      limits,
		fraud:       fraud,
		config:      config,
		cipher:      cipher,
		clock:       clk,
		dispatcher:  dispatcher,
	}
}

// CreateSale reserves a sell listing for the buyer.
func (uc *SaleUsecase) CreateSale(ctx context.Context, actor entities.Actor, input entities.CreateSaleInput) (*entities.Sale, error) {
	var sale *entities.Sale
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := uc.uow.WithLock(txCtx)

		buyer, err := uc.userRepo.GetByID(lockCtx, actor.ID)
		if err != nil {
			return notFoundOr(err, "user not found")
		}
		if !buyer.IsActive() {
			return domainerrors.Forbidden("your account is " + string(buyer.Status))
		}

		card, err := uc.cardRepo.GetByID(lockCtx, input.GiftCardID)
		if err != nil {
			return notFoundOr(err, "gift card not found")
		}
		if card.OwnerID == buyer.ID {
			return domainerrors.ValidationFailed("you cannot buy your own gift card")
		}
		now := uc.clock.Now()
		if err := validateListing(card, entities.ListingTypeSell, now); err != nil {
			return err
		}
		if !card.SellingPrice.Valid {
			return domainerrors.ValidationFailed("gift card has no selling price")
		}
		price := card.SellingPrice.Decimal

		if err := uc.limits.Check(txCtx, buyer, price, AdmissionOptions{SkipActiveCheck: true}); err != nil {
			return err
		}

		sale = &entities.Sale{
			ID:          utils.GenerateUUIDv7(),
			Reference:   utils.GenerateReference("SAL"),
			BuyerID:     buyer.ID,
			SellerID:    card.OwnerID,
			GiftCardID:  card.ID,
			Amount:      price,
			PlatformFee: calculateFee(price, uc.config.FeePercentage(txCtx)),
			Status:      entities.SaleStatusPending,
			Notes:       notesOf(input.Notes),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uc.saleRepo.Create(txCtx, sale); err != nil {
			return domainerrors.InternalError(err)
		}

		card.Status = entities.GiftCardStatusInTrade
		card.UpdatedAt = now
		if err := uc.cardRepo.Update(txCtx, card); err != nil {
			return domainerrors.InternalError(err)
		}
		return uc.limits.Record(txCtx, buyer, price)
	})
	if err != nil {
		return nil, internalOr(err)
	}

	uc.dispatcher.Dispatch(ctx, saleEvent("sale.created", actor, sale, ""))
	uc.fraud.RunChecks(ctx, sale.BuyerID)
	return sale, nil
}

// AcceptSale marks a pending sale as paid. The buyer or an admin may record it.
func (uc *SaleUsecase) AcceptSale(ctx context.Context, actor entities.Actor, saleID uuid.UUID) (*entities.Sale, error) {
	return uc.transition(ctx, actor, saleID, "sale.accepted", func(txCtx context.Context, sale *entities.Sale) error {
		if sale.BuyerID != actor.ID && !actor.IsAdmin() {
			return domainerrors.Forbidden("only the buyer can pay for this sale")
		}
		if sale.Status != entities.SaleStatusPending {
			return domainerrors.InvalidState("this sale is not in a pending state")
		}
		sale.Status = entities.SaleStatusAccepted
		return nil
	})
}

// ConfirmSale releases the code to the buyer and hands over the card.
func (uc *SaleUsecase) ConfirmSale(ctx context.Context, actor entities.Actor, saleID uuid.UUID) (*entities.Sale, error) {
	return uc.transition(ctx, actor, saleID, "sale.completed", func(txCtx context.Context, sale *entities.Sale) error {
		if sale.SellerID != actor.ID {
			return domainerrors.Forbidden("only the seller can confirm this sale")
		}
		if !sale.Status.IsOpen() {
			return domainerrors.InvalidState("this sale is already " + string(sale.Status))
		}
		card, err := uc.cardRepo.GetByID(uc.uow.WithLock(txCtx), sale.GiftCardID)
		if err != nil {
			return notFoundOr(err, "gift card not found")
		}
		card.Status = entities.GiftCardStatusSold
		card.OwnerID = sale.BuyerID
		card.UpdatedAt = uc.clock.Now()
		if err := uc.cardRepo.Update(txCtx, card); err != nil {
			return domainerrors.InternalError(err)
		}
		sale.CodeRevealed = true
		sale.Status = entities.SaleStatusCompleted
		return nil
	})
}

// DisputeSale freezes an open sale for admin review.
func (uc *SaleUsecase) DisputeSale(ctx context.Context, actor entities.Actor, saleID uuid.UUID, reason string) (*entities.Sale, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domainerrors.ValidationFailed("a reason is required to file a dispute")
	}
	sale, err := uc.transition(ctx, actor, saleID, "sale.disputed", func(txCtx context.Context, sale *entities.Sale) error {
		if !sale.IsParticipant(actor.ID) {
			return domainerrors.Forbidden("you are not a participant in this sale")
		}
		if !sale.Status.IsOpen() {
			return domainerrors.InvalidState("this sale is already " + string(sale.Status))
		}
		now := uc.clock.Now()
		dispute := &entities.Dispute{
			ID:        utils.GenerateUUIDv7(),
			SaleID:    uuid.NullUUID{UUID: sale.ID, Valid: true},
			RaisedBy:  actor.ID,
			Reason:    reason,
			Status:    entities.DisputeStatusOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.disputeRepo.Create(txCtx, dispute); err != nil {
			return internalOr(err)
		}
		sale.Status = entities.SaleStatusDisputed
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.fraud.RunChecks(ctx, actor.ID)
	return sale, nil
}

// CancelSale returns the card to the market.
func (uc *SaleUsecase) CancelSale(ctx context.Context, actor entities.Actor, saleID uuid.UUID) (*entities.Sale, error) {
	return uc.transition(ctx, actor, saleID, "sale.cancelled", func(txCtx context.Context, sale *entities.Sale) error {
		if !sale.IsParticipant(actor.ID) {
			return domainerrors.Forbidden("you are not a participant in this sale")
		}
		if !sale.Status.IsOpen() {
			return domainerrors.InvalidState("this sale is already " + string(sale.Status))
		}
		card, err := uc.cardRepo.GetByID(uc.uow.WithLock(txCtx), sale.GiftCardID)
		if err != nil {
			return notFoundOr(err, "gift card not found")
		}
		if card.Status == entities.GiftCardStatusInTrade {
			card.Status = entities.GiftCardStatusActive
			card.UpdatedAt = uc.clock.Now()
			if err := uc.cardRepo.Update(txCtx, card); err != nil {
				return domainerrors.InternalError(err)
			}
		}
		sale.Status = entities.SaleStatusCancelled
		return nil
	})
}

// transition locks the sale, applies fn and persists the result.
func (uc *SaleUsecase) transition(
	ctx context.Context,
	actor entities.Actor,
	saleID uuid.UUID,
	action string,
	fn func(txCtx context.Context, sale *entities.Sale) error,
) (*entities.Sale, error) {
	var (
		sale *entities.Sale
		from entities.SaleStatus
	)
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		sale, err = uc.saleRepo.GetByID(uc.uow.WithLock(txCtx), saleID)
		if err != nil {
			return notFoundOr(err, "sale not found")
		}
		from = sale.Status
		if err := fn(txCtx, sale); err != nil {
			return err
		}
		sale.UpdatedAt = uc.clock.Now()
		if err := uc.saleRepo.Update(txCtx, sale); err != nil {
			return domainerrors.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, internalOr(err)
	}
	uc.dispatcher.Dispatch(ctx, saleEvent(action, actor, sale, from))
	return sale, nil
}

// GetSale returns the sale. The buyer sees the code once it was revealed.
func (uc *SaleUsecase) GetSale(ctx context.Context, actor entities.Actor, saleID uuid.UUID) (*entities.SaleView, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, notFoundOr(err, "sale not found")
	}
	if !sale.IsParticipant(actor.ID) && !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("you are not a participant in this sale")
	}

	view := &entities.SaleView{Sale: sale}
	if sale.CodeRevealed && sale.BuyerID == actor.ID {
		card, err := uc.cardRepo.GetByID(ctx, sale.GiftCardID)
		if err != nil {
			return nil, notFoundOr(err, "gift card not found")
		}
		if view.Code, err = openCardCode(uc.cipher, card); err != nil {
			return nil, err
		}
	}
	return view, nil
}

// ListSales lists sales where the actor is buyer or seller. Admins see every sale.
func (uc *SaleUsecase) ListSales(ctx context.Context, actor entities.Actor, filter entities.SaleFilter) ([]*entities.Sale, int64, error) {
	if !actor.IsAdmin() {
		filter.UserID = actor.ID
	}
	sales, total, err := uc.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, domainerrors.InternalError(err)
	}
	return sales, total, nil
}
