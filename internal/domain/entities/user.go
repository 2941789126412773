package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// UserStatus gates whether a user may enter new deals.
type UserStatus string

const (
	UserStatusActive     UserStatus = "active"
	UserStatusRestricted UserStatus = "restricted"
	UserStatusSuspended  UserStatus = "suspended"
	UserStatusBanned     UserStatus = "banned"
)

// TrustTier is the coarse reputation bucket driving trade limits.
type TrustTier int

const (
	TrustTierNew         TrustTier = 0
	TrustTierEstablished TrustTier = 1
	TrustTierTrusted     TrustTier = 2
)

// SettingSuffix names the tier in platform setting keys.
func (t TrustTier) SettingSuffix() string {
	switch t {
	case TrustTierEstablished:
		return "established"
	case TrustTierTrusted:
		return "trusted"
	default:
		return "new"
	}
}

// User represents a marketplace participant
type User struct {
	ID              uuid.UUID       `json:"id"`
	Username        string          `json:"username"`
	Email           string          `json:"email"`
	AvatarURL       null.String     `json:"avatarUrl"`
	Role            UserRole        `json:"role"`
	Status          UserStatus      `json:"status"`
	TrustTier       TrustTier       `json:"trustTier"`
	TrustScore      int             `json:"trustScore"`
	DailyTradeCount int             `json:"dailyTradeCount"`
	DailyTradeValue decimal.Decimal `json:"dailyTradeValue"`
	DailyTradeReset null.Time       `json:"dailyTradeReset"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// HasCompleteProfile reports whether the user uploaded a profile image.
func (u *User) HasCompleteProfile() bool {
	return u.AvatarURL.Valid && u.AvatarURL.String != ""
}

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusRestricted, UserStatusSuspended, UserStatusBanned:
		return true
	}
	return false
}

// Valid reports whether t is a known tier.
func (t TrustTier) Valid() bool {
	return t >= TrustTierNew && t <= TrustTierTrusted
}

// AdminUpdateUserInput changes a user's standing. Nil fields stay as they are.
type AdminUpdateUserInput struct {
	Status    *UserStatus `json:"status" binding:"omitempty,oneof=active restricted suspended banned"`
	TrustTier *TrustTier  `json:"trustTier" binding:"omitempty,min=0,max=2"`
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Status    UserStatus
	TrustTier *TrustTier
	Limit     int
	Offset    int
}
