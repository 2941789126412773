package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
)

func TestGiftCardRepository_CreateGetUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewGiftCardRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	card := seedCard(t, db, alice.ID, "75.25")
	got, err := repo.GetByID(ctx, card.ID)
	require.NoError(t, err)
	require.True(t, got.Value.Equal(decimal.RequireFromString("75.25")))
	require.False(t, got.SellingPrice.Valid)
	require.Equal(t, entities.ListingTypeSwap, got.ListingType)

	got.OwnerID = bob.ID
	got.Status = entities.GiftCardStatusSwapped
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, card.ID)
	require.NoError(t, err)
	require.Equal(t, bob.ID, again.OwnerID)
	require.Equal(t, entities.GiftCardStatusSwapped, again.Status)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.Update(ctx, &entities.GiftCard{ID: uuid.New()}), domainerrors.ErrNotFound)
}

func TestGiftCardRepository_Expiry(t *testing.T) {
	db := newTestDB(t)
	repo := NewGiftCardRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")

	fresh := seedCard(t, db, alice.ID, "10")
	stale := seedCard(t, db, alice.ID, "20")
	staleInTrade := seedCard(t, db, alice.ID, "30")
	require.NoError(t, db.Exec("UPDATE gift_cards SET expiry_date = ? WHERE id IN ?",
		entities.DateOf(testNow.AddDate(0, 0, -1)), []uuid.UUID{stale.ID, staleInTrade.ID}).Error)
	require.NoError(t, db.Exec("UPDATE gift_cards SET status = ? WHERE id = ?", "in_trade", staleInTrade.ID).Error)

	cards, err := repo.ListExpiredActive(ctx, testNow)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.Equal(t, stale.ID, cards[0].ID)

	changed, err := repo.MarkExpired(ctx, []uuid.UUID{stale.ID, staleInTrade.ID})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{stale.ID}, changed, "only active cards flip")

	inTrade, err := repo.GetByID(ctx, staleInTrade.ID)
	require.NoError(t, err)
	require.Equal(t, entities.GiftCardStatusInTrade, inTrade.Status)

	still, err := repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, entities.GiftCardStatusActive, still.Status)

	changed, err = repo.MarkExpired(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, changed)
}
