package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/internal/testutil"
)

var testNow = time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewDB(t)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()
	return seedUserCtx(t, context.Background(), db, username)
}

func seedUserCtx(t *testing.T, ctx context.Context, db *gorm.DB, username string) *entities.User {
	t.Helper()
	u := &entities.User{
		ID:              uuid.New(),
		Username:        username,
		Email:           username + "@example.com",
		AvatarURL:       null.StringFrom("avatars/" + username + ".png"),
		Role:            entities.UserRoleUser,
		Status:          entities.UserStatusActive,
		TrustTier:       entities.TrustTierNew,
		TrustScore:      50,
		DailyTradeValue: decimal.Zero,
		CreatedAt:       testNow,
		UpdatedAt:       testNow,
	}
	require.NoError(t, NewUserRepository(db).Create(ctx, u))
	return u
}

func seedCard(t *testing.T, db *gorm.DB, owner uuid.UUID, value string) *entities.GiftCard {
	t.Helper()
	c := &entities.GiftCard{
		ID:          uuid.New(),
		OwnerID:     owner,
		Brand:       "Acme",
		Value:       decimal.RequireFromString(value),
		ExpiryDate:  entities.DateOf(testNow.AddDate(1, 0, 0)),
		ListingType: entities.ListingTypeSwap,
		Status:      entities.GiftCardStatusActive,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
	require.NoError(t, NewGiftCardRepository(db).Create(context.Background(), c))
	return c
}

func seedTrade(t *testing.T, db *gorm.DB, a, b *entities.User, ac, bc *entities.GiftCard, status entities.TradeStatus, createdAt time.Time) *entities.Trade {
	t.Helper()
	tr := &entities.Trade{
		ID:                   uuid.New(),
		Reference:            "TRD-" + uuid.NewString()[:8],
		InitiatorID:          a.ID,
		ResponderID:          b.ID,
		InitiatorCardID:      ac.ID,
		ResponderCardID:      bc.ID,
		Status:               status,
		PlatformFeeInitiator: decimal.Zero,
		PlatformFeeResponder: decimal.Zero,
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}
	require.NoError(t, NewTradeRepository(db).Create(context.Background(), tr))
	return tr
}
