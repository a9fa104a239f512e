package recommend

import (
	"sort"
	"strings"

	"github.com/talkincode/slopeselector/internal/domain"
)

// StoreNamer derives a retailer name from a product URL
type StoreNamer struct {
	rules []domain.StoreRule
}

// NewStoreNamer orders rules by sort, then id. An empty rule list falls
// back to domain.DefaultStoreRules.
func NewStoreNamer(rules []domain.StoreRule) *StoreNamer {
	if len(rules) == 0 {
		rules = domain.DefaultStoreRules
	}
	sorted := make([]domain.StoreRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Sort != sorted[j].Sort {
			return sorted[i].Sort < sorted[j].Sort
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &StoreNamer{rules: sorted}
}

// Name returns the first rule whose pattern occurs in url
func (n *StoreNamer) Name(url string) string {
	for _, r := range n.rules {
		if r.Pattern != "" && strings.Contains(url, r.Pattern) {
			return r.Name
		}
	}
	return domain.UnknownStore
}
