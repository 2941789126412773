package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/internal/interfaces/http/response"
)

type SaleService interface {
	CreateSale(ctx context.Context, actor entities.Actor, input entities.CreateSaleInput) (*entities.Sale, error)
	AcceptSale(ctx context.Context, actor entities.Actor, saleID uuid.UUID) (*entities.Sale, error)
	ConfirmSale(ctx context.Context, actor entities.Actor, saleID uuid.UUID) (*entities.Sale, error)
	DisputeSale(ctx context.Context, actor entities.Actor, saleID uuid.UUID, reason string) (*entities.Sale, error)
	CancelSale(ctx context.Context, actor entities.Actor, saleID uuid.UUID) (*entities.Sale, error)
	GetSale(ctx context.Context, actor entities.Actor, saleID uuid.UUID) (*entities.SaleView, error)
	ListSales(ctx context.Context, actor entities.Actor, filter entities.SaleFilter) ([]*entities.Sale, int64, error)
}

// SaleHandler handles direct purchase endpoints
type SaleHandler struct {
	saleUsecase SaleService
}

func NewSaleHandler(saleUsecase SaleService) *SaleHandler {
	return &SaleHandler{saleUsecase: saleUsecase}
}

// CreateSale POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input entities.CreateSaleInput
	if !bindJSON(c, &input) {
		return
	}

	sale, err := h.saleUsecase.CreateSale(c.Request.Context(), actor, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"sale": sale})
}

// GetSale GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "sale")
	if !ok {
		return
	}

	view, err := h.saleUsecase.GetSale(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// ListSales GET /api/v1/sales
func (h *SaleHandler) ListSales(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	page, ok := pagination(c)
	if !ok {
		return
	}

	sales, total, err := h.saleUsecase.ListSales(c.Request.Context(), actor, entities.SaleFilter{
		Status: entities.SaleStatus(c.Query("status")),
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, "sales", sales, page.Meta(total))
}

// AcceptSale POST /api/v1/sales/:id/accept
func (h *SaleHandler) AcceptSale(c *gin.Context) {
	h.transition(c, h.saleUsecase.AcceptSale)
}

// ConfirmSale POST /api/v1/sales/:id/confirm
func (h *SaleHandler) ConfirmSale(c *gin.Context) {
	h.transition(c, h.saleUsecase.ConfirmSale)
}

// CancelSale POST /api/v1/sales/:id/cancel
func (h *SaleHandler) CancelSale(c *gin.Context) {
	h.transition(c, h.saleUsecase.CancelSale)
}

// DisputeSale POST /api/v1/sales/:id/dispute
func (h *SaleHandler) DisputeSale(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "sale")
	if !ok {
		return
	}
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}

	sale, err := h.saleUsecase.DisputeSale(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sale": sale})
}

func (h *SaleHandler) transition(c *gin.Context, op func(context.Context, entities.Actor, uuid.UUID) (*entities.Sale, error)) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "sale")
	if !ok {
		return
	}

	sale, err := op(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sale": sale})
}
