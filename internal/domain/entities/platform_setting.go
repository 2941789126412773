package entities

import "time"

// PlatformSetting is a key/value tunable
type PlatformSetting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Platform setting keys
const (
	SettingFeePercentage             = "fee_percentage"
	SettingConfirmationWindowMinutes = "confirmation_window_minutes"
	SettingMaxDailyTradesPrefix      = "max_daily_trades_"
	SettingMaxDailyValuePrefix       = "max_daily_value_"
	SettingMaxActiveTradesPrefix     = "max_active_trades_"
)
