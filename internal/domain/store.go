package domain

import "time"

// StoreRule maps a URL substring to a retailer name
type StoreRule struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id,string"`
	Sort      int       `json:"sort"`
	Pattern   string    `gorm:"uniqueIndex;size:255" json:"pattern"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (StoreRule) TableName() string {
	return "store_rule"
}

// UnknownStore is the store name of links matching no rule
const UnknownStore = "Unknown"

// DefaultStoreRules are seeded into an empty store_rule table
var DefaultStoreRules = []StoreRule{
	{Sort: 1, Pattern: "rei.com", Name: "REI"},
	{Sort: 2, Pattern: "evo.com", Name: "Evo"},
	{Sort: 3, Pattern: "backcountry.com", Name: "Backcountry"},
}
