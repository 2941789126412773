package usecases

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/logger"
)

// Hard-coded fallbacks used when a setting row is absent or unparseable.
var (
	DefaultFeePercentage             = decimal.NewFromInt(5)
	DefaultConfirmationWindowMinutes = 60

	defaultTierLimits = map[entities.TrustTier]entities.TierLimits{
		entities.TrustTierNew:         {MaxDailyTrades: 3, MaxDailyValue: decimal.NewFromInt(200), MaxActiveTrades: 1},
		entities.TrustTierEstablished: {MaxDailyTrades: 10, MaxDailyValue: decimal.NewFromInt(500), MaxActiveTrades: 5},
		entities.TrustTierTrusted:     {MaxDailyTrades: 25, MaxDailyValue: decimal.NewFromInt(2000), MaxActiveTrades: 10},
	}
)

// ConfigReader exposes typed platform tunables.
type ConfigReader interface {
	FeePercentage(ctx context.Context) decimal.Decimal
	ConfirmationWindow(ctx context.Context) time.Duration
	TierLimits(ctx context.Context, tier entities.TrustTier) entities.TierLimits
}

// PlatformConfig reads platform_settings on every call so edits apply on the next read.
type PlatformConfig struct {
	repo repositories.PlatformSettingRepository
}

func NewPlatformConfig(repo repositories.PlatformSettingRepository) *PlatformConfig {
	return &PlatformConfig{repo: repo}
}

func (c *PlatformConfig) FeePercentage(ctx context.Context) decimal.Decimal {
	raw, ok := c.lookup(ctx, entities.SettingFeePercentage)
	if !ok {
		return DefaultFeePercentage
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		c.warnInvalid(ctx, entities.SettingFeePercentage, raw)
		return DefaultFeePercentage
	}
	return v
}

func (c *PlatformConfig) ConfirmationWindow(ctx context.Context) time.Duration {
	minutes := c.intSetting(ctx, entities.SettingConfirmationWindowMinutes, DefaultConfirmationWindowMinutes)
	return time.Duration(minutes) * time.Minute
}

func (c *PlatformConfig) TierLimits(ctx context.Context, tier entities.TrustTier) entities.TierLimits {
	def, ok := defaultTierLimits[tier]
	if !ok {
		def = defaultTierLimits[entities.TrustTierNew]
	}
	suffix := tier.SettingSuffix()
	limits := entities.TierLimits{
		MaxDailyTrades:  c.intSetting(ctx, entities.SettingMaxDailyTradesPrefix+suffix, def.MaxDailyTrades),
		MaxActiveTrades: c.intSetting(ctx, entities.SettingMaxActiveTradesPrefix+suffix, def.MaxActiveTrades),
		MaxDailyValue:   def.MaxDailyValue,
	}
	key := entities.SettingMaxDailyValuePrefix + suffix
	if raw, ok := c.lookup(ctx, key); ok {
		if v, err := decimal.NewFromString(raw); err == nil {
			limits.MaxDailyValue = v
		} else {
			c.warnInvalid(ctx, key, raw)
		}
	}
	return limits
}

func (c *PlatformConfig) intSetting(ctx context.Context, key string, def int) int {
	raw, ok := c.lookup(ctx, key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.warnInvalid(ctx, key, raw)
		return def
	}
	return v
}

func (c *PlatformConfig) lookup(ctx context.Context, key string) (string, bool) {
	s, err := c.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn(ctx, "Platform setting lookup failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return strings.TrimSpace(s.Value), true
}

func (c *PlatformConfig) warnInvalid(ctx context.Context, key, raw string) {
	logger.Warn(ctx, "Invalid platform setting, using default", zap.String("key", key), zap.String("value", raw))
}
