package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/infrastructure/models"
)

// PlatformSettingRepository implements key/value setting storage
type PlatformSettingRepository struct {
	db *gorm.DB
}

func NewPlatformSettingRepository(db *gorm.DB) *PlatformSettingRepository {
	return &PlatformSettingRepository{db: db}
}

func (r *PlatformSettingRepository) Get(ctx context.Context, key string) (*entities.PlatformSetting, error) {
	var m models.PlatformSetting
	if err := GetDB(ctx, r.db).Where("key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.PlatformSetting{Key: m.Key, Value: m.Value, Description: m.Description, UpdatedAt: m.UpdatedAt}, nil
}

func (r *PlatformSettingRepository) Upsert(ctx context.Context, setting *entities.PlatformSetting) error {
	m := &models.PlatformSetting{
		Key:         setting.Key,
		Value:       setting.Value,
		Description: setting.Description,
		UpdatedAt:   setting.UpdatedAt,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(m).Error
}

func (r *PlatformSettingRepository) List(ctx context.Context) ([]*entities.PlatformSetting, error) {
	var ms []models.PlatformSetting
	if err := GetDB(ctx, r.db).Order("key ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.PlatformSetting, 0, len(ms))
	for _, m := range ms {
		out = append(out, &entities.PlatformSetting{Key: m.Key, Value: m.Value, Description: m.Description, UpdatedAt: m.UpdatedAt})
	}
	return out, nil
}
