package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
)

type listingServiceStub struct {
	got entities.CreateGiftCardInput
	err error
}

func (s *listingServiceStub) CreateListing(_ context.Context, actor entities.Actor, input entities.CreateGiftCardInput) (*entities.GiftCard, error) {
	s.got = input
	if s.err != nil {
		return nil, s.err
	}
	return &entities.GiftCard{
		ID:                  uuid.New(),
		OwnerID:             actor.ID,
		Brand:               input.Brand,
		Value:               input.Value,
		Status:              entities.GiftCardStatusActive,
		CardNumberEncrypted: "sealed-secret",
	}, nil
}

type limitsReaderStub struct {
	snapshot *entities.LimitSnapshot
	err      error
}

func (s limitsReaderStub) Snapshot(context.Context, uuid.UUID) (*entities.LimitSnapshot, error) {
	return s.snapshot, s.err
}

func listingRoutes(actor *entities.Actor, svc ListingService, limits LimitsReader) *gin.Engine {
	h := NewListingHandler(svc, limits)
	r := newRouter(actor)
	r.POST("/listings", h.CreateListing)
	r.GET("/me/limits", h.GetMyLimits)
	return r
}

func TestListingHandler_CreateListing(t *testing.T) {
	svc := &listingServiceStub{}
	body := gin.H{
		"brand":       "Acme",
		"value":       "50.00",
		"expiryDate":  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		"listingType": "swap",
		"cardNumber":  "4111-2222",
		"pin":         "9876",
	}

	w := doJSON(listingRoutes(&testUser, svc, nil), http.MethodPost, "/listings", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decimal.NewFromInt(50).Equal(svc.got.Value))
	assert.Equal(t, "4111-2222", svc.got.CardNumber)
	assert.NotContains(t, w.Body.String(), "sealed-secret")
	assert.NotContains(t, w.Body.String(), "4111-2222")
}

func TestListingHandler_CreateListing_Validation(t *testing.T) {
	svc := &listingServiceStub{}
	w := doJSON(listingRoutes(&testUser, svc, nil), http.MethodPost, "/listings", gin.H{
		"brand": "Acme", "value": "10", "expiryDate": time.Now().Add(time.Hour), "listingType": "auction", "cardNumber": "1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	svc.err = domainerrors.ValidationFailed("Card has expired")
	w = doJSON(listingRoutes(&testUser, svc, nil), http.MethodPost, "/listings", gin.H{
		"brand": "Acme", "value": "10", "expiryDate": time.Now().Add(-time.Hour), "listingType": "swap", "cardNumber": "1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Card has expired")
}

func TestListingHandler_GetMyLimits(t *testing.T) {
	snapshot := &entities.LimitSnapshot{
		TrustTier:       entities.TrustTierEstablished,
		Limits:          entities.TierLimits{MaxDailyTrades: 10, MaxDailyValue: decimal.NewFromInt(500), MaxActiveTrades: 5},
		DailyTradeCount: 2,
		DailyTradeValue: decimal.NewFromInt(120),
		ActiveTrades:    1,
	}
	w := doJSON(listingRoutes(&testUser, nil, limitsReaderStub{snapshot: snapshot}), http.MethodGet, "/me/limits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dailyTradeCount":2`)
	assert.Contains(t, w.Body.String(), `"activeTrades":1`)

	w = doJSON(listingRoutes(&testUser, nil, limitsReaderStub{err: domainerrors.InternalError(errors.New("db"))}), http.MethodGet, "/me/limits", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
