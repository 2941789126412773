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

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	m := &models.User{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		AvatarURL:       user.AvatarURL.Ptr(),
		Role:            string(user.Role),
		Status:          string(user.Status),
		TrustTier:       int(user.TrustTier),
		TrustScore:      user.TrustScore,
		DailyTradeCount: user.DailyTradeCount,
		DailyTradeValue: user.DailyTradeValue,
		DailyTradeReset: user.DailyTradeReset.Ptr(),
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByID gets a user by ID. Locks the row when ctx carries a lock.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := forUpdate(ctx, GetDB(ctx, r.db)).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Update writes the mutable profile, status, tier and counter fields
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	updates := map[string]interface{}{
		"avatar_url":        user.AvatarURL.Ptr(),
		"status":            string(user.Status),
		"trust_tier":        int(user.TrustTier),
		"trust_score":       user.TrustScore,
		"daily_trade_count": user.DailyTradeCount,
		"daily_trade_value": user.DailyTradeValue,
		"daily_trade_reset": user.DailyTradeReset.Ptr(),
	}
	if !user.UpdatedAt.IsZero() {
		updates["updated_at"] = user.UpdatedAt
	}

	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListIDsByStatus returns ids of users in the given status, oldest first
func (r *UserRepository) ListIDsByStatus(ctx context.Context, status entities.UserStatus) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&models.User{}).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// List pages users newest first
func (r *UserRepository) List(ctx context.Context, filter entities.UserFilter) ([]*entities.User, int64, error) {
	base := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.User{})
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.TrustTier != nil {
			q = q.Where("trust_tier = ?", int(*filter.TrustTier))
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
	var ms []models.User
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	users := make([]*entities.User, 0, len(ms))
	for i := range ms {
		users = append(users, r.toEntity(&ms[i]))
	}
	return users, total, nil
}

func (r *UserRepository) toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:              m.ID,
		Username:        m.Username,
		Email:           m.Email,
		AvatarURL:       null.StringFromPtr(m.AvatarURL),
		Role:            entities.UserRole(m.Role),
		Status:          entities.UserStatus(m.Status),
		TrustTier:       entities.TrustTier(m.TrustTier),
		TrustScore:      m.TrustScore,
		DailyTradeCount: m.DailyTradeCount,
		DailyTradeValue: m.DailyTradeValue,
		DailyTradeReset: null.TimeFromPtr(m.DailyTradeReset),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
