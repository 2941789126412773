package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// SaleStatus represents the sale lifecycle
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusAccepted  SaleStatus = "accepted"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusDisputed  SaleStatus = "disputed"
)

// IsOpen reports whether a sale can still be confirmed, disputed or cancelled.
func (s SaleStatus) IsOpen() bool {
	return s == SaleStatusPending || s == SaleStatusAccepted
}

// Sale is a one-way purchase of a listing
type Sale struct {
	ID           uuid.UUID       `json:"id"`
	Reference    string          `json:"reference"`
	BuyerID      uuid.UUID       `json:"buyerId"`
	SellerID     uuid.UUID       `json:"sellerId"`
	GiftCardID   uuid.UUID       `json:"giftCardId"`
	Amount       decimal.Decimal `json:"amount"`
	PlatformFee  decimal.Decimal `json:"platformFee"`
	Status       SaleStatus      `json:"status"`
	CodeRevealed bool            `json:"codeRevealed"`
	Notes        null.String     `json:"notes"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (s *Sale) IsParticipant(userID uuid.UUID) bool {
	return s.BuyerID == userID || s.SellerID == userID
}

// CreateSaleInput represents input for buying a listing
type CreateSaleInput struct {
	GiftCardID uuid.UUID `json:"giftCardId" binding:"required"`
	Notes      string    `json:"notes"`
}

// SaleView is the query surface for a sale.
type SaleView struct {
	Sale *Sale     `json:"sale"`
	Code *CardCode `json:"code,omitempty"`
}

// SaleFilter narrows sale listings.
type SaleFilter struct {
	UserID uuid.UUID
	Status SaleStatus
	Limit  int
	Offset int
}
