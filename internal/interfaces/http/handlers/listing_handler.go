package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/internal/interfaces/http/response"
)

type ListingService interface {
	CreateListing(ctx context.Context, actor entities.Actor, input entities.CreateGiftCardInput) (*entities.GiftCard, error)
}

type LimitsReader interface {
	Snapshot(ctx context.Context, userID uuid.UUID) (*entities.LimitSnapshot, error)
}

// ListingHandler handles gift card listings and the caller's own account view
type ListingHandler struct {
	listingUsecase ListingService
	limits         LimitsReader
}

func NewListingHandler(listingUsecase ListingService, limits LimitsReader) *ListingHandler {
	return &ListingHandler{listingUsecase: listingUsecase, limits: limits}
}

// CreateListing POST /api/v1/listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input entities.CreateGiftCardInput
	if !bindJSON(c, &input) {
		return
	}

	card, err := h.listingUsecase.CreateListing(c.Request.Context(), actor, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"giftCard": card})
}

// GetMyLimits shows today's counters against the caller's tier caps
// GET /api/v1/me/limits
func (h *ListingHandler) GetMyLimits(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	snapshot, err := h.limits.Snapshot(c.Request.Context(), actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"limits": snapshot})
}
