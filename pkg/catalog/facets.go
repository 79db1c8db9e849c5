package catalog

import (
	"slices"

	"github.com/matst80/slask-storefront/pkg/types"
)

// FacetSummary lists the active filter selections for UI badges plus a total
// count matching what the storefront shows on the mobile filter button.
type FacetSummary struct {
	Categories   []string `json:"categories,omitempty"`
	Brands       []string `json:"brands,omitempty"`
	Features     []string `json:"features,omitempty"`
	PriceMin     float64  `json:"priceMin"`
	PriceMax     float64  `json:"priceMax"`
	VerifiedOnly bool     `json:"verifiedOnly,omitempty"`
	ActiveCount  int      `json:"activeCount"`
}

func Summarize(q *types.CatalogQuery) FacetSummary {
	s := FacetSummary{
		Categories:   slices.Clone(q.Categories),
		Brands:       slices.Clone(q.Brands),
		Features:     slices.Clone(q.Features),
		PriceMin:     q.PriceMin,
		PriceMax:     q.PriceMax,
		VerifiedOnly: q.VerifiedOnly,
	}
	s.ActiveCount = len(s.Categories) + len(s.Brands) + len(s.Features)
	if q.VerifiedOnly {
		s.ActiveCount++
	}
	if q.HasPriceFilter() {
		s.ActiveCount++
	}
	return s
}
