package domain

import "time"

// Legacy rows may carry empty or null fields; readers never see those raw
// values, Normalize applies the defaults at the repository boundary.
const (
	DefaultName     = "Untitled"
	DefaultCategory = "Other"
)

// Group is a WhatsApp group listing in the directory. The addedat column name
// is inherited from the original schema and is kept so existing databases work
// unchanged; the JSON field is the camelCase addedAt clients expect.
type Group struct {
	ID          int64     `gorm:"primaryKey;column:id" json:"id"`
	Name        string    `gorm:"column:name;size:255" json:"name"`
	Link        string    `gorm:"column:link;size:500;not null;uniqueIndex" json:"link"`
	Category    string    `gorm:"column:category;size:100;index" json:"category"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	AddedAt     time.Time `gorm:"column:addedat;index" json:"addedAt"`
	Clicks      int64     `gorm:"column:clicks;not null;default:0" json:"clicks"`
	Approved    bool      `gorm:"column:approved;not null;default:true;index" json:"approved"`
	ImageURL    string    `gorm:"column:image_url;size:500" json:"image_url,omitempty"`
	CustomColor string    `gorm:"column:custom_color;size:20" json:"custom_color,omitempty"`
}

// TableName returns the table name for GORM.
func (Group) TableName() string {
	return "whatsapp_groups"
}

// Normalize fills presentation defaults for legacy rows. Repositories call it
// on every read so handlers and clients never deal with partial records.
func (g *Group) Normalize() {
	if g.Name == "" {
		g.Name = DefaultName
	}
	if g.Category == "" {
		g.Category = DefaultCategory
	}
	if g.Clicks < 0 {
		g.Clicks = 0
	}
	if g.AddedAt.IsZero() {
		g.AddedAt = time.Now().UTC()
	}
}
