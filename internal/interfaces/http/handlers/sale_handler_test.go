package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
)

type saleServiceStub struct {
	err        error
	calls      []string
	lastReason string
	lastFilter entities.SaleFilter
}

func (s *saleServiceStub) sale(op string, id uuid.UUID) (*entities.Sale, error) {
	s.calls = append(s.calls, op)
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Sale{ID: id, Reference: "SAL-BBBB2222", Status: entities.SaleStatusPending}, nil
}

func (s *saleServiceStub) CreateSale(_ context.Context, _ entities.Actor, input entities.CreateSaleInput) (*entities.Sale, error) {
	return s.sale("create", input.GiftCardID)
}

func (s *saleServiceStub) AcceptSale(_ context.Context, _ entities.Actor, id uuid.UUID) (*entities.Sale, error) {
	return s.sale("accept", id)
}

func (s *saleServiceStub) ConfirmSale(_ context.Context, _ entities.Actor, id uuid.UUID) (*entities.Sale, error) {
	return s.sale("confirm", id)
}

func (s *saleServiceStub) DisputeSale(_ context.Context, _ entities.Actor, id uuid.UUID, reason string) (*entities.Sale, error) {
	s.lastReason = reason
	return s.sale("dispute", id)
}

func (s *saleServiceStub) CancelSale(_ context.Context, _ entities.Actor, id uuid.UUID) (*entities.Sale, error) {
	return s.sale("cancel", id)
}

func (s *saleServiceStub) GetSale(_ context.Context, _ entities.Actor, id uuid.UUID) (*entities.SaleView, error) {
	sale, err := s.sale("get", id)
	if err != nil {
		return nil, err
	}
	return &entities.SaleView{Sale: sale, Code: &entities.CardCode{GiftCardID: id, CardNumber: "4111"}}, nil
}

func (s *saleServiceStub) ListSales(_ context.Context, _ entities.Actor, filter entities.SaleFilter) ([]*entities.Sale, int64, error) {
	s.calls = append(s.calls, "list")
	s.lastFilter = filter
	return []*entities.Sale{}, 0, s.err
}

func saleRoutes(actor *entities.Actor, svc SaleService) *gin.Engine {
	h := NewSaleHandler(svc)
	r := newRouter(actor)
	r.POST("/sales", h.CreateSale)
	r.GET("/sales", h.ListSales)
	r.GET("/sales/:id", h.GetSale)
	r.POST("/sales/:id/accept", h.AcceptSale)
	r.POST("/sales/:id/confirm", h.ConfirmSale)
	r.POST("/sales/:id/cancel", h.CancelSale)
	r.POST("/sales/:id/dispute", h.DisputeSale)
	return r
}

func TestSaleHandler_Lifecycle(t *testing.T) {
	svc := &saleServiceStub{}
	r := saleRoutes(&testUser, svc)
	id := uuid.New()

	w := doJSON(r, http.MethodPost, "/sales", gin.H{"giftCardId": id})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "SAL-BBBB2222")

	for _, op := range []string{"accept", "confirm", "cancel"} {
		w = doJSON(r, http.MethodPost, "/sales/"+id.String()+"/"+op, nil)
		assert.Equal(t, http.StatusOK, w.Code, op)
	}

	w = doJSON(r, http.MethodPost, "/sales/"+id.String()+"/dispute", gin.H{"reason": "card declined"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "card declined", svc.lastReason)

	w = doJSON(r, http.MethodGet, "/sales/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cardNumber":"4111"`)

	assert.Equal(t, []string{"create", "accept", "confirm", "cancel", "dispute", "get"}, svc.calls)
}

func TestSaleHandler_Errors(t *testing.T) {
	svc := &saleServiceStub{err: domainerrors.Forbidden("Only the seller can confirm")}
	r := saleRoutes(&testUser, svc)

	w := doJSON(r, http.MethodPost, "/sales/"+uuid.NewString()+"/confirm", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/sales/xyz/accept", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPost, "/sales", gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(saleRoutes(nil, svc), http.MethodGet, "/sales", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSaleHandler_ListSales(t *testing.T) {
	svc := &saleServiceStub{}
	w := doJSON(saleRoutes(&testUser, svc), http.MethodGet, "/sales?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.SaleStatusPending, svc.lastFilter.Status)
	assert.Equal(t, 20, svc.lastFilter.Limit)
	assert.Equal(t, 0, svc.lastFilter.Offset)
}
