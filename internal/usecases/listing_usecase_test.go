package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	domainrepo "cardswap.backend/internal/domain/repositories"
	"cardswap.backend/internal/usecases"
)

func TestListingUsecase_CreateSealsCodes(t *testing.T) {
	h := newHarness(t)
	owner := h.seedUser(t, "uma")

	card := h.listCard(t, owner, "25", entities.ListingTypeSwap)
	assert.Equal(t, entities.GiftCardStatusActive, card.Status)
	assert.NotEmpty(t, card.CardNumberEncrypted)
	assert.NotContains(t, card.CardNumberEncrypted, "CARD-uma")
	assert.False(t, card.SellingPrice.Valid)

	stored := h.reloadCard(t, card.ID)
	assert.Equal(t, card.CardNumberEncrypted, stored.CardNumberEncrypted)
	assert.Equal(t, owner.ID, stored.OwnerID)
}

func TestListingUsecase_CreateValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	owner := h.seedUser(t, "vic")
	price := decimal.NewFromInt(10)
	valid := entities.CreateGiftCardInput{
		Brand:       "Acme",
		Value:       decimal.NewFromInt(20),
		ExpiryDate:  h.clock.Now().AddDate(0, 6, 0),
		ListingType: entities.ListingTypeSwap,
		CardNumber:  "1111",
	}

	cases := map[string]func(in *entities.CreateGiftCardInput){
		"blank brand":     func(in *entities.CreateGiftCardInput) { in.Brand = "  " },
		"blank number":    func(in *entities.CreateGiftCardInput) { in.CardNumber = "" },
		"zero value":      func(in *entities.CreateGiftCardInput) { in.Value = decimal.Zero },
		"expired":         func(in *entities.CreateGiftCardInput) { in.ExpiryDate = h.clock.Now().AddDate(0, 0, -1) },
		"sell no price":   func(in *entities.CreateGiftCardInput) { in.ListingType = entities.ListingTypeSell },
		"unknown listing": func(in *entities.CreateGiftCardInput) { in.ListingType = "auction" },
		"negative price": func(in *entities.CreateGiftCardInput) {
			neg := price.Neg()
			in.ListingType = entities.ListingTypeSell
			in.SellingPrice = &neg
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := h.listing.CreateListing(ctx, actorOf(owner), in)
			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		})
	}

	in := valid
	in.ListingType = entities.ListingTypeSell
	in.SellingPrice = &price
	card, err := h.listing.CreateListing(ctx, actorOf(owner), in)
	require.NoError(t, err)
	assert.True(t, price.Equal(card.SellingPrice.Decimal))
	assert.Empty(t, card.PinEncrypted)
}

func TestListingUsecase_ExpireListings(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	owner := h.seedUser(t, "wes")
	card := h.listCard(t, owner, "25", entities.ListingTypeSwap)

	n, err := h.listing.ExpireListings(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	// The expiry date itself is still valid.
	h.clock.Set(card.ExpiryDate.Add(12 * time.Hour))
	n, err = h.listing.ExpireListings(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	h.clock.Advance(24 * time.Hour)
	n, err = h.listing.ExpireListings(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, entities.GiftCardStatusExpired, h.reloadCard(t, card.ID).Status)

	h.dispatcher.Wait()
	assert.Equal(t, 1, h.notifier.count("gift_card.expired"))
}

// claimingCards moves one listed card into a trade after the expiry query ran.
type claimingCards struct {
	domainrepo.GiftCardRepository
	claim func(ctx context.Context)
}

func (r claimingCards) ListExpiredActive(ctx context.Context, day time.Time) ([]*entities.GiftCard, error) {
	cards, err := r.GiftCardRepository.ListExpiredActive(ctx, day)
	r.claim(ctx)
	return cards, err
}

func TestListingUsecase_ExpireSkipsCardsClaimedMeanwhile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	owner := h.seedUser(t, "xan")
	kept := h.listCard(t, owner, "25", entities.ListingTypeSwap)
	claimed := h.listCard(t, owner, "30", entities.ListingTypeSwap)

	cards := claimingCards{GiftCardRepository: h.cards, claim: func(ctx context.Context) {
		card := h.reloadCard(t, claimed.ID)
		card.Status = entities.GiftCardStatusInTrade
		require.NoError(t, h.cards.Update(ctx, card))
	}}
	listing := usecases.NewListingUsecase(h.users, cards, h.sealer, h.clock, h.dispatcher)

	h.clock.Set(kept.ExpiryDate.Add(36 * time.Hour))
	n, err := listing.ExpireListings(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, entities.GiftCardStatusExpired, h.reloadCard(t, kept.ID).Status)
	assert.Equal(t, entities.GiftCardStatusInTrade, h.reloadCard(t, claimed.ID).Status)

	h.dispatcher.Wait()
	assert.Equal(t, 1, h.notifier.count("gift_card.expired"))
	trail, err := h.audit.ListBySubject(ctx, entities.SubjectGiftCard, claimed.ID)
	require.NoError(t, err)
	for _, ev := range trail {
		assert.NotEqual(t, "gift_card.expired", ev.Action)
	}
}
