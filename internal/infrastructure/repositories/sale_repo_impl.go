package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/infrastructure/models"
)

// SaleRepository implements sale data operations
type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

func (r *SaleRepository) Create(ctx context.Context, sale *entities.Sale) error {
	m := &models.Sale{
		ID:           sale.ID,
		Reference:    sale.Reference,
		BuyerID:      sale.BuyerID,
		SellerID:     sale.SellerID,
		GiftCardID:   sale.GiftCardID,
		Amount:       sale.Amount,
		PlatformFee:  sale.PlatformFee,
		Status:       string(sale.Status),
		CodeRevealed: sale.CodeRevealed,
		Notes:        sale.Notes.Ptr(),
		CreatedAt:    sale.CreatedAt,
		UpdatedAt:    sale.UpdatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *SaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Sale, error) {
	var m models.Sale
	if err := forUpdate(ctx, GetDB(ctx, r.db)).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toSaleEntity(&m), nil
}

func (r *SaleRepository) Update(ctx context.Context, sale *entities.Sale) error {
	updates := map[string]interface{}{
		"status":        string(sale.Status),
		"code_revealed": sale.CodeRevealed,
	}
	if !sale.UpdatedAt.IsZero() {
		updates["updated_at"] = sale.UpdatedAt
	}
	result := GetDB(ctx, r.db).Model(&models.Sale{}).Where("id = ?", sale.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *SaleRepository) List(ctx context.Context, filter entities.SaleFilter) ([]*entities.Sale, int64, error) {
	base := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.Sale{})
		if filter.UserID != uuid.Nil {
			q = q.Where("buyer_id = ? OR seller_id = ?", filter.UserID, filter.UserID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := base().Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	var ms []models.Sale
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	sales := make([]*entities.Sale, 0, len(ms))
	for i := range ms {
		sales = append(sales, toSaleEntity(&ms[i]))
	}
	return sales, total, nil
}

func toSaleEntity(m *models.Sale) *entities.Sale {
	return &entities.Sale{
		ID:           m.ID,
		Reference:    m.Reference,
		BuyerID:      m.BuyerID,
		SellerID:     m.SellerID,
		GiftCardID:   m.GiftCardID,
		Amount:       m.Amount,
		PlatformFee:  m.PlatformFee,
		Status:       entities.SaleStatus(m.Status),
		CodeRevealed: m.CodeRevealed,
		Notes:        null.StringFromPtr(m.Notes),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
