package catalog

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matst80/slask-storefront/pkg/types"
)

// Sort returns a new slice ordered by the given key, the input is never
// mutated. Every ordering is stable so equal-key products keep their merge
// order, which makes pagination reproducible. Relevance is the merge order
// itself: remote before local, each in source order.
func Sort(products []types.Product, key types.SortKey) []types.Product {
	out := slices.Clone(products)
	switch key {
	case types.SortPriceLow:
		slices.SortStableFunc(out, func(a, b types.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case types.SortPriceHigh:
		slices.SortStableFunc(out, func(a, b types.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case types.SortRating:
		// absent rating stays 0 and sinks to the bottom
		slices.SortStableFunc(out, func(a, b types.Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	case types.SortName:
		// a Collator carries mutable iterator state and must not be shared
		// across concurrent sorts
		c := collate.New(language.English, collate.IgnoreCase)
		slices.SortStableFunc(out, func(a, b types.Product) int {
			return c.CompareString(a.Name, b.Name)
		})
	case types.SortNewest:
		// zero CreatedAt sorts as oldest
		slices.SortStableFunc(out, func(a, b types.Product) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out
}
