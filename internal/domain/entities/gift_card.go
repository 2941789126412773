package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// ListingType selects whether a card is offered for swap or for sale.
type ListingType string

const (
	ListingTypeSwap ListingType = "swap"
	ListingTypeSell ListingType = "sell"
)

// GiftCardStatus represents the listing lifecycle
type GiftCardStatus string

const (
	GiftCardStatusActive        GiftCardStatus = "active"
	GiftCardStatusInTrade       GiftCardStatus = "in_trade"
	GiftCardStatusSold          GiftCardStatus = "sold"
	GiftCardStatusSwapped       GiftCardStatus = "swapped"
	GiftCardStatusExpired       GiftCardStatus = "expired"
	GiftCardStatusPendingReview GiftCardStatus = "pending_review"
	GiftCardStatusRejected      GiftCardStatus = "rejected"
)

// GiftCard is a listed card. Codes are stored sealed.
type GiftCard struct {
	ID                  uuid.UUID           `json:"id"`
	OwnerID             uuid.UUID           `json:"ownerId"`
	Brand               string              `json:"brand"`
	Value               decimal.Decimal     `json:"value"`
	ExpiryDate          time.Time           `json:"expiryDate"`
	ListingType         ListingType         `json:"listingType"`
	Status              GiftCardStatus      `json:"status"`
	SellingPrice        decimal.NullDecimal `json:"sellingPrice"`
	CardNumberEncrypted string              `json:"-"`
	PinEncrypted        string              `json:"-"`
	ModerationNote      null.String         `json:"moderationNote,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// IsExpired reports whether the expiry date is strictly before the UTC date of now.
func (g *GiftCard) IsExpired(now time.Time) bool {
	return DateOf(g.ExpiryDate).Before(DateOf(now))
}

// DateOf truncates t to midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CardCode is a revealed card number and PIN.
type CardCode struct {
	GiftCardID uuid.UUID `json:"giftCardId"`
	CardNumber string    `json:"cardNumber"`
	Pin        string    `json:"pin"`
}

// CreateGiftCardInput represents input for listing a card
type CreateGiftCardInput struct {
	Brand        string           `json:"brand" binding:"required"`
	Value        decimal.Decimal  `json:"value" binding:"required"`
	ExpiryDate   time.Time        `json:"expiryDate" binding:"required"`
	ListingType  ListingType      `json:"listingType" binding:"required,oneof=swap sell"`
	SellingPrice *decimal.Decimal `json:"sellingPrice"`
	CardNumber   string           `json:"cardNumber" binding:"required"`
	Pin          string           `json:"pin"`
}
