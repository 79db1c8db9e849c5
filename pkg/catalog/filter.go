package catalog

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/matst80/slask-storefront/pkg/types"
)

// Filter applies the query predicate to every product. All clauses are AND'd,
// within the features facet a single overlap is enough. Empty selection sets
// restrict nothing.
func Filter(products []types.Product, q *types.CatalogQuery) []types.Product {
	text := strings.ToLower(q.Text)
	out := make([]types.Product, 0, len(products))
	for _, p := range products {
		if matches(&p, q, text) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p *types.Product, q *types.CatalogQuery, text string) bool {
	if p.Price < q.PriceMin || p.Price > q.PriceMax {
		return false
	}
	if text != "" && !matchesText(p, text) {
		return false
	}
	if len(q.Categories) > 0 && !slices.Contains(q.Categories, p.Category) {
		return false
	}
	if len(q.Brands) > 0 && !slices.Contains(q.Brands, p.Brand) {
		return false
	}
	if len(q.Features) > 0 && !lo.Some(p.Features, q.Features) {
		return false
	}
	if q.VerifiedOnly && !p.IsVerified {
		return false
	}
	return true
}

func matchesText(p *types.Product, text string) bool {
	if strings.Contains(strings.ToLower(p.Name), text) ||
		strings.Contains(strings.ToLower(p.Category), text) ||
		strings.Contains(strings.ToLower(p.Brand), text) {
		return true
	}
	for _, f := range p.Features {
		if strings.Contains(strings.ToLower(f), text) {
			return true
		}
	}
	return false
}
