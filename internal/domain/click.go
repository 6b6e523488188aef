package domain

import (
	"net"
	"time"
)

// ClickEvent is one telemetry row for a "join group" action. The clicks
// counter on the group itself is maintained separately by an atomic update;
// these rows are best-effort and may be missing for some clicks.
type ClickEvent struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	GroupID    int64     `gorm:"column:group_id;not null;index" json:"group_id"`
	IPAddress  *net.IP   `gorm:"column:ip_address;type:inet" json:"ip_address,omitempty"`
	UserAgent  *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	Referer    *string   `gorm:"column:referer;size:500" json:"referer,omitempty"`
	DeviceType *string   `gorm:"column:device_type;size:10" json:"device_type,omitempty"` // 'desktop', 'mobile', 'tablet', 'bot'
	Browser    *string   `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS         *string   `gorm:"column:os;size:50" json:"os,omitempty"`
	ClickedAt  time.Time `gorm:"column:clicked_at;autoCreateTime;index" json:"clicked_at"`

	// Relationships
	Group *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

// TableName returns the table name for GORM.
func (ClickEvent) TableName() string {
	return "group_clicks"
}

// GetDeviceType returns the device type or "unknown" when it was not parsed.
func (c *ClickEvent) GetDeviceType() string {
	if c.DeviceType != nil {
		return *c.DeviceType
	}
	return "unknown"
}
