package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/talkincode/slopeselector/internal/domain"
)

func TestStoreNamerDefaults(t *testing.T) {
	namer := NewStoreNamer(nil)

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.rei.com/product/123/rossignol-experience-88", "REI"},
		{"https://www.evo.com/outlet/skis/volkl-mantra", "Evo"},
		{"https://www.backcountry.com/burton-custom", "Backcountry"},
		{"https://www.amazon.com/dp/B000", domain.UnknownStore},
		{"", domain.UnknownStore},
		// matching is case-sensitive
		{"https://WWW.REI.COM/x", domain.UnknownStore},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, namer.Name(tt.url))
		})
	}
}

func TestStoreNamerOrder(t *testing.T) {
	rules := []domain.StoreRule{
		{ID: 3, Sort: 2, Pattern: "evo.com", Name: "Evo"},
		{ID: 2, Sort: 1, Pattern: "outlet", Name: "Outlet"},
		{ID: 1, Sort: 1, Pattern: "evo.com/outlet", Name: "Evo Outlet"},
		{ID: 4, Sort: 0, Pattern: "", Name: "Empty"},
	}
	namer := NewStoreNamer(rules)

	assert.Equal(t, "Evo Outlet", namer.Name("https://www.evo.com/outlet/skis"), "lower id wins within a sort")
	assert.Equal(t, "Outlet", namer.Name("https://shop.example/outlet"))
	assert.Equal(t, "Evo", namer.Name("https://www.evo.com/skis"))
	assert.Equal(t, domain.UnknownStore, namer.Name("https://example.org"), "empty patterns never match")

	// input slice is left untouched
	assert.EqualValues(t, 3, rules[0].ID)
}
