package domain

import "time"

// AdminUser represents a directory administrator. The directory has no
// self-service registration; admins are seeded from configuration.
type AdminUser struct {
	ID           int64      `gorm:"primaryKey;column:id" json:"id"`
	Username     string     `gorm:"column:username;uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`

	// Relationships
	RefreshTokens []RefreshToken `gorm:"foreignKey:AdminID" json:"refresh_tokens,omitempty"`
}

// TableName returns the table name for GORM.
func (AdminUser) TableName() string {
	return "admin_users"
}
