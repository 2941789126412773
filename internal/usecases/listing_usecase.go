package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/logger"
	"cardswap.backend/pkg/utils"
)

// ListingUsecase manages gift card listings.
type ListingUsecase struct {
	userRepo   repositories.UserRepository
	cardRepo   repositories.GiftCardRepository
	cipher     CodeCipher
	clock      clock.Clock
	dispatcher *EventDispatcher
}

func NewListingUsecase(
	userRepo repositories.UserRepository,
	cardRepo repositories.GiftCardRepository,
	cipher CodeCipher,
	clk clock.Clock,
	dispatcher *EventDispatcher,
) *ListingUsecase {
	return &ListingUsecase{userRepo: userRepo, cardRepo: cardRepo, cipher: cipher, clock: clk, dispatcher: dispatcher}
}

// CreateListing seals the codes and lists the card as active.
func (uc *ListingUsecase) CreateListing(ctx context.Context, actor entities.Actor, input entities.CreateGiftCardInput) (*entities.GiftCard, error) {
	owner, err := uc.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	if !owner.IsActive() {
		return nil, domainerrors.Forbidden("your account is " + string(owner.Status))
	}

	brand := strings.TrimSpace(input.Brand)
	number := strings.TrimSpace(input.CardNumber)
	now := uc.clock.Now()
	switch {
	case brand == "":
		return nil, domainerrors.ValidationFailed("brand is required")
	case number == "":
		return nil, domainerrors.ValidationFailed("card number is required")
	case !input.Value.IsPositive():
		return nil, domainerrors.ValidationFailed("value must be greater than zero")
	case entities.DateOf(input.ExpiryDate).Before(entities.DateOf(now)):
		return nil, domainerrors.ValidationFailed("gift card has already expired")
	}

	card := &entities.GiftCard{
		ID:          utils.GenerateUUIDv7(),
		OwnerID:     owner.ID,
		Brand:       brand,
		Value:       input.Value,
		ExpiryDate:  entities.DateOf(input.ExpiryDate),
		ListingType: input.ListingType,
		Status:      entities.GiftCardStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch input.ListingType {
	case entities.ListingTypeSell:
		if input.SellingPrice == nil || !input.SellingPrice.IsPositive() {
			return nil, domainerrors.ValidationFailed("a selling price is required for sell listings")
		}
		card.SellingPrice = decimal.NewNullDecimal(*input.SellingPrice)
	case entities.ListingTypeSwap:
	default:
		return nil, domainerrors.ValidationFailed("listing type must be swap or sell")
	}

	if card.CardNumberEncrypted, err = uc.cipher.Seal(number); err != nil {
		return nil, domainerrors.InternalError(err)
	}
	if pin := strings.TrimSpace(input.Pin); pin != "" {
		if card.PinEncrypted, err = uc.cipher.Seal(pin); err != nil {
			return nil, domainerrors.InternalError(err)
		}
	}

	if err := uc.cardRepo.Create(ctx, card); err != nil {
		return nil, domainerrors.InternalError(err)
	}

	uc.dispatcher.Dispatch(ctx, entities.TransitionEvent{
		Action:      "gift_card.listed",
		SubjectType: entities.SubjectGiftCard,
		SubjectID:   card.ID,
		ActorID:     actorNullID(actor),
		To:          string(card.Status),
		Metadata:    map[string]string{"listing_type": string(card.ListingType), "brand": card.Brand},
	})
	return card, nil
}

// ExpireListings moves active cards whose expiry date passed to expired.
func (uc *ListingUsecase) ExpireListings(ctx context.Context) (int64, error) {
	cards, err := uc.cardRepo.ListExpiredActive(ctx, entities.DateOf(uc.clock.Now()))
	if err != nil {
		return 0, domainerrors.InternalError(err)
	}
	if len(cards) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	expired, err := uc.cardRepo.MarkExpired(ctx, ids)
	if err != nil {
		return 0, domainerrors.InternalError(err)
	}

	owners := make(map[uuid.UUID]uuid.UUID, len(cards))
	for _, c := range cards {
		owners[c.ID] = c.OwnerID
	}
	events := make([]entities.TransitionEvent, 0, len(expired))
	for _, id := range expired {
		events = append(events, entities.TransitionEvent{
			Action:      "gift_card.expired",
			SubjectType: entities.SubjectGiftCard,
			SubjectID:   id,
			From:        string(entities.GiftCardStatusActive),
			To:          string(entities.GiftCardStatusExpired),
			Recipients:  []uuid.UUID{owners[id]},
		})
	}
	uc.dispatcher.Dispatch(ctx, events...)
	n := int64(len(expired))
	logger.Info(ctx, "Expired gift card listings", zap.Int64("count", n))
	return n, nil
}
