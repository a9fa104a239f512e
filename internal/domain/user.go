package domain

import "time"

// User anonymous client identity, the id is generated by the browser
type User struct {
	ID                 string              `gorm:"type:varchar(64);primaryKey" json:"id"`
	CreatedAt          time.Time           `json:"created_at"`
	RecommendationSets []RecommendationSet `gorm:"foreignKey:UserID" json:"-"`
}

// TableName Specify table name
func (User) TableName() string {
	return "users"
}
