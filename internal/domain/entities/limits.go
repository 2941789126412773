package entities

import "github.com/shopspring/decimal"

// TierLimits are the per-tier admission ceilings.
type TierLimits struct {
	MaxDailyTrades  int             `json:"maxDailyTrades"`
	MaxDailyValue   decimal.Decimal `json:"maxDailyValue"`
	MaxActiveTrades int             `json:"maxActiveTrades"`
}

// LimitSnapshot is the display view of a user's admission state.
type LimitSnapshot struct {
	TrustTier       TrustTier       `json:"trustTier"`
	Limits          TierLimits      `json:"limits"`
	DailyTradeCount int             `json:"dailyTradeCount"`
	DailyTradeValue decimal.Decimal `json:"dailyTradeValue"`
	ActiveTrades    int64           `json:"activeTrades"`
}
