package domain

import "time"

// Detail types stored in ProductDetail.Type
const (
	DetailPro = "pro"
	DetailCon = "con"
)

// RecommendationSet one prompt's full AI result, owner of the category tree
type RecommendationSet struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string     `gorm:"type:varchar(64);index" json:"user_id"`
	PromptText string     `gorm:"type:text" json:"prompt_text"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	Categories []Category `gorm:"foreignKey:RecommendationSetID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

// TableName Specify table name
func (RecommendationSet) TableName() string {
	return "recommendation_sets"
}

// Category gear category of a recommendation set, e.g. "Skis"
type Category struct {
	ID                  string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	RecommendationSetID string    `gorm:"type:varchar(36);index" json:"recommendation_set_id"`
	Position            int       `json:"position"`
	Title               string    `json:"title"`
	Products            []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "categories"
}

// Product a recommended product
type Product struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CategoryID  string          `gorm:"type:varchar(36);index" json:"category_id"`
	Position    int             `json:"position"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Description string          `gorm:"type:text" json:"description"`
	PriceRange  string          `json:"price_range"`
	Highlight   string          `json:"highlight"` // e.g. "Best Value"
	Details     []ProductDetail `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
	StoreLinks  []StoreLink     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"store_links,omitempty"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

// ProductDetail a single pro or con line of a product
type ProductDetail struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductID string `gorm:"type:varchar(36);index" json:"product_id"`
	Position  int    `json:"position"`
	Type      string `gorm:"type:varchar(8)" json:"type"` // pro or con
	Text      string `json:"text"`
}

// TableName Specify table name
func (ProductDetail) TableName() string {
	return "product_details"
}

// StoreLink retailer page of a product
type StoreLink struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductID string `gorm:"type:varchar(36);index" json:"product_id"`
	Position  int    `json:"position"`
	URL       string `gorm:"size:2048" json:"url"`
	StoreName string `json:"store_name"`
}

// TableName Specify table name
func (StoreLink) TableName() string {
	return "store_links"
}
