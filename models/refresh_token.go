package models

import (
	"time"

	"gorm.io/gorm"
)

// RefreshToken is a long-lived opaque token exchanged for new access tokens
type RefreshToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Token     string    `json:"token" gorm:"size:255;uniqueIndex;not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	IsRevoked bool      `json:"is_revoked" gorm:"default:false;index"`
	UserAgent string    `json:"user_agent" gorm:"size:500"`
	IPAddress string    `json:"ip_address" gorm:"size:45"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the RefreshToken model
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsValid checks the token is neither expired nor revoked
func (rt *RefreshToken) IsValid(now time.Time) bool {
	return !rt.IsRevoked && now.Before(rt.ExpiresAt)
}

// BeforeCreate defaults the expiry to 30 days
func (rt *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ExpiresAt.IsZero() {
		rt.ExpiresAt = time.Now().Add(30 * 24 * time.Hour)
	}
	return nil
}
