package domain

import "time"

// RefreshToken represents a revocable refresh token for admin web sessions.
// The token value itself is an opaque UUID, not a JWT, so revocation is a
// single row update.
type RefreshToken struct {
	ID         int64      `gorm:"primaryKey;column:id" json:"id"`
	AdminID    int64      `gorm:"column:admin_id;not null;index" json:"admin_id"`
	Token      string     `gorm:"column:token;size:255;uniqueIndex;not null" json:"token"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	IsRevoked  bool       `gorm:"column:is_revoked;not null;default:false" json:"is_revoked"`
	UserAgent  *string    `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	LastUsedAt *time.Time `gorm:"column:last_used_at" json:"last_used_at,omitempty"`

	// Relationships
	Admin *AdminUser `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
}

// TableName returns the table name for GORM.
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsExpired reports whether the token has expired.
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsValid reports whether the token can still be exchanged.
func (rt *RefreshToken) IsValid() bool {
	return !rt.IsExpired() && !rt.IsRevoked && rt.Token != ""
}

// Revoke marks the token as revoked.
func (rt *RefreshToken) Revoke() {
	rt.IsRevoked = true
}
