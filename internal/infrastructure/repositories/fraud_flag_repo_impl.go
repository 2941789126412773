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

// FraudFlagRepository implements fraud flag operations
type FraudFlagRepository struct {
	db *gorm.DB
}

func NewFraudFlagRepository(db *gorm.DB) *FraudFlagRepository {
	return &FraudFlagRepository{db: db}
}

func unresolvedStatuses() []string {
	out := make([]string, 0, len(entities.UnresolvedFraudFlagStatuses))
	for _, s := range entities.UnresolvedFraudFlagStatuses {
		out = append(out, string(s))
	}
	return out
}

func (r *FraudFlagRepository) Create(ctx context.Context, flag *entities.FraudFlag) error {
	m := &models.FraudFlag{
		ID:             flag.ID,
		UserID:         flag.UserID,
		FlagType:       string(flag.FlagType),
		Details:        flag.Details,
		Status:         string(flag.Status),
		AutoRestricted: flag.AutoRestricted,
		AdminNotes:     flag.AdminNotes.Ptr(),
		ReviewedBy:     nullUUIDPtr(flag.ReviewedBy),
		CreatedAt:      flag.CreatedAt,
		UpdatedAt:      flag.UpdatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *FraudFlagRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.FraudFlag, error) {
	var m models.FraudFlag
	if err := forUpdate(ctx, GetDB(ctx, r.db)).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toFraudFlagEntity(&m), nil
}

func (r *FraudFlagRepository) Update(ctx context.Context, flag *entities.FraudFlag) error {
	updates := map[string]interface{}{
		"status":          string(flag.Status),
		"auto_restricted": flag.AutoRestricted,
		"admin_notes":     flag.AdminNotes.Ptr(),
		"reviewed_by":     nullUUIDPtr(flag.ReviewedBy),
	}
	if !flag.UpdatedAt.IsZero() {
		updates["updated_at"] = flag.UpdatedAt
	}
	result := GetDB(ctx, r.db).Model(&models.FraudFlag{}).Where("id = ?", flag.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *FraudFlagRepository) HasUnresolved(ctx context.Context, userID uuid.UUID, flagType entities.FraudFlagType) (bool, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.FraudFlag{}).
		Where("user_id = ? AND flag_type = ? AND status IN ?", userID, string(flagType), unresolvedStatuses()).
		Count(&n).Error
	return n > 0, err
}

func (r *FraudFlagRepository) CountUnresolved(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.FraudFlag{}).
		Where("user_id = ? AND status IN ?", userID, unresolvedStatuses()).
		Count(&n).Error
	return n, err
}

func (r *FraudFlagRepository) CountConfirmed(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.FraudFlag{}).
		Where("user_id = ? AND status = ?", userID, string(entities.FraudFlagStatusConfirmed)).
		Count(&n).Error
	return n, err
}

func (r *FraudFlagRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.FraudFlag, error) {
	var ms []models.FraudFlag
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	flags := make([]*entities.FraudFlag, 0, len(ms))
	for i := range ms {
		flags = append(flags, toFraudFlagEntity(&ms[i]))
	}
	return flags, nil
}

func (r *FraudFlagRepository) List(ctx context.Context, filter entities.FraudFlagFilter) ([]*entities.FraudFlag, int64, error) {
	base := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.FraudFlag{})
		if filter.UserID != uuid.Nil {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.FlagType != "" {
			q = q.Where("flag_type = ?", string(filter.FlagType))
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
	var ms []models.FraudFlag
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	flags := make([]*entities.FraudFlag, 0, len(ms))
	for i := range ms {
		flags = append(flags, toFraudFlagEntity(&ms[i]))
	}
	return flags, total, nil
}

func toFraudFlagEntity(m *models.FraudFlag) *entities.FraudFlag {
	return &entities.FraudFlag{
		ID:             m.ID,
		UserID:         m.UserID,
		FlagType:       entities.FraudFlagType(m.FlagType),
		Details:        m.Details,
		Status:         entities.FraudFlagStatus(m.Status),
		AutoRestricted: m.AutoRestricted,
		AdminNotes:     null.StringFromPtr(m.AdminNotes),
		ReviewedBy:     ptrNullUUID(m.ReviewedBy),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
