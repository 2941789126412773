package repositories

import (
	"context"

	"cardswap.backend/internal/domain/entities"
)

// PlatformSettingRepository reads and writes key/value tunables
type PlatformSettingRepository interface {
	// Get returns ErrNotFound when the key has no row.
	Get(ctx context.Context, key string) (*entities.PlatformSetting, error)
	Upsert(ctx context.Context, setting *entities.PlatformSetting) error
	List(ctx context.Context) ([]*entities.PlatformSetting, error)
}
