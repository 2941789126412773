package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
)

func TestUserRepository_CreateGetUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "alice")

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.True(t, got.HasCompleteProfile())
	require.False(t, got.DailyTradeReset.Valid)

	got.DailyTradeCount = 2
	got.DailyTradeValue = decimal.RequireFromString("150.50")
	got.DailyTradeReset = null.TimeFrom(entities.DateOf(testNow))
	got.TrustTier = entities.TrustTierEstablished
	got.Status = entities.UserStatusRestricted
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, again.DailyTradeCount)
	require.True(t, again.DailyTradeValue.Equal(decimal.RequireFromString("150.5")))
	require.True(t, again.DailyTradeReset.Valid)
	require.True(t, entities.DateOf(again.DailyTradeReset.Time).Equal(entities.DateOf(testNow)))
	require.Equal(t, entities.TrustTierEstablished, again.TrustTier)
	require.Equal(t, entities.UserStatusRestricted, again.Status)
}

func TestUserRepository_ListIDsByStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")
	b.Status = entities.UserStatusBanned
	require.NoError(t, repo.Update(ctx, b))

	ids, err := repo.ListIDsByStatus(ctx, entities.UserStatusActive)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{a.ID}, ids)
}

func TestUserRepository_NotFoundBranches(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	id := uuid.New()

	_, err := repo.GetByID(ctx, id)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = repo.Update(ctx, &entities.User{ID: id, Status: entities.UserStatusActive})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	bob.Status = entities.UserStatusSuspended
	bob.TrustTier = entities.TrustTierTrusted
	require.NoError(t, repo.Update(ctx, bob))
	seedUser(t, db, "carol")

	users, total, err := repo.List(ctx, entities.UserFilter{Status: entities.UserStatusSuspended})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, bob.ID, users[0].ID)

	tier := entities.TrustTierNew
	users, total, err = repo.List(ctx, entities.UserFilter{TrustTier: &tier, Limit: 1})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, users, 1)

	_, total, err = repo.List(ctx, entities.UserFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
}
