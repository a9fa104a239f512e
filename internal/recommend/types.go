package recommend

// Product one recommended product as exchanged with the AI and the frontend
type Product struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	PriceRange  string   `json:"priceRange"`
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
	Highlight   string   `json:"highlight"`
	StoreLink   []string `json:"storeLink"`
}

// Category a titled group of products
type Category struct {
	CategoryTitle string    `json:"categoryTitle"`
	Products      []Product `json:"products"`
}

// Recommendations the document returned by the AI, decorated with the
// stored set's id, prompt and creation time once persisted.
type Recommendations struct {
	Categories []Category `json:"categories"`
	ID         string     `json:"id,omitempty"`
	PromptText string     `json:"prompt_text,omitempty"`
	CreatedAt  string     `json:"created_at,omitempty"`
}

// HistoryItem summary of a stored set
type HistoryItem struct {
	ID         string `json:"id"`
	PromptText string `json:"prompt_text"`
	CreatedAt  string `json:"created_at"`
}

// CreateRequest body of a new recommendation request
type CreateRequest struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
	UserID string `json:"userId" validate:"required,max=64"`
}

// normalize replaces nil slices with empty ones so the JSON shape is
// identical whether it comes from the AI or from the database.
func (r *Recommendations) normalize() {
	if r.Categories == nil {
		r.Categories = []Category{}
	}
	for i := range r.Categories {
		c := &r.Categories[i]
		if c.Products == nil {
			c.Products = []Product{}
		}
		for j := range c.Products {
			p := &c.Products[j]
			if p.Pros == nil {
				p.Pros = []string{}
			}
			if p.Cons == nil {
				p.Cons = []string{}
			}
			if p.StoreLink == nil {
				p.StoreLink = []string{}
			}
		}
	}
}
