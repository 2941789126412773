package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/internal/interfaces/http/response"
)

type TradeService interface {
	Propose(ctx context.Context, actor entities.Actor, input entities.ProposeTradeInput) (*entities.Trade, error)
	Respond(ctx context.Context, actor entities.Actor, tradeID uuid.UUID, accept bool) (*entities.TradeView, error)
	Release(ctx context.Context, actor entities.Actor, tradeID uuid.UUID) (*entities.TradeView, error)
	Confirm(ctx context.Context, actor entities.Actor, tradeID uuid.UUID) (*entities.TradeView, error)
	Dispute(ctx context.Context, actor entities.Actor, tradeID uuid.UUID, reason string) (*entities.Dispute, error)
	Reverse(ctx context.Context, actor entities.Actor, tradeID uuid.UUID) (*entities.TradeView, error)
	GetTrade(ctx context.Context, actor entities.Actor, tradeID uuid.UUID) (*entities.TradeView, error)
	ListTrades(ctx context.Context, actor entities.Actor, filter entities.TradeFilter) ([]*entities.Trade, int64, error)
}

// TradeHandler handles swap trade endpoints
type TradeHandler struct {
	tradeUsecase TradeService
}

func NewTradeHandler(tradeUsecase TradeService) *TradeHandler {
	return &TradeHandler{tradeUsecase: tradeUsecase}
}

// ProposeTrade opens a swap against another user's listing
// POST /api/v1/trades
func (h *TradeHandler) ProposeTrade(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input entities.ProposeTradeInput
	if !bindJSON(c, &input) {
		return
	}

	trade, err := h.tradeUsecase.Propose(c.Request.Context(), actor, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"trade": trade})
}

// GetTrade returns a trade with its escrow and any revealed codes
// GET /api/v1/trades/:id
func (h *TradeHandler) GetTrade(c *gin.Context) {
	h.view(c, h.tradeUsecase.GetTrade, http.StatusOK)
}

// ListTrades lists the caller's trades
// GET /api/v1/trades
func (h *TradeHandler) ListTrades(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	page, ok := pagination(c)
	if !ok {
		return
	}

	trades, total, err := h.tradeUsecase.ListTrades(c.Request.Context(), actor, entities.TradeFilter{
		Status: entities.TradeStatus(c.Query("status")),
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, "trades", trades, page.Meta(total))
}

// AcceptTrade POST /api/v1/trades/:id/accept
func (h *TradeHandler) AcceptTrade(c *gin.Context) {
	h.view(c, func(ctx context.Context, actor entities.Actor, id uuid.UUID) (*entities.TradeView, error) {
		return h.tradeUsecase.Respond(ctx, actor, id, true)
	}, http.StatusOK)
}

// DeclineTrade POST /api/v1/trades/:id/decline
func (h *TradeHandler) DeclineTrade(c *gin.Context) {
	h.view(c, func(ctx context.Context, actor entities.Actor, id uuid.UUID) (*entities.TradeView, error) {
		return h.tradeUsecase.Respond(ctx, actor, id, false)
	}, http.StatusOK)
}

// ReleaseCodes POST /api/v1/trades/:id/release
func (h *TradeHandler) ReleaseCodes(c *gin.Context) {
	h.view(c, h.tradeUsecase.Release, http.StatusOK)
}

// ConfirmTrade POST /api/v1/trades/:id/confirm
func (h *TradeHandler) ConfirmTrade(c *gin.Context) {
	h.view(c, h.tradeUsecase.Confirm, http.StatusOK)
}

// ReverseTrade is the admin override
// POST /api/v1/admin/trades/:id/reverse
func (h *TradeHandler) ReverseTrade(c *gin.Context) {
	h.view(c, h.tradeUsecase.Reverse, http.StatusOK)
}

// DisputeTrade POST /api/v1/trades/:id/dispute
func (h *TradeHandler) DisputeTrade(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "trade")
	if !ok {
		return
	}
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}

	dispute, err := h.tradeUsecase.Dispute(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"dispute": dispute})
}

func (h *TradeHandler) view(c *gin.Context, op func(context.Context, entities.Actor, uuid.UUID) (*entities.TradeView, error), status int) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "trade")
	if !ok {
		return
	}

	view, err := op(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status, view)
}
