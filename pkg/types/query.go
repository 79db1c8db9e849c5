package types

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/gorilla/schema"
)

type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
	SortNewest    SortKey = "newest"
)

func (s SortKey) IsValid() bool {
	switch s {
	case SortRelevance, SortPriceLow, SortPriceHigh, SortRating, SortName, SortNewest:
		return true
	}
	return false
}

type FacetKind string

const (
	FacetCategory FacetKind = "category"
	FacetBrand    FacetKind = "brand"
	FacetFeatures FacetKind = "features"
)

const (
	DefaultPriceMax = 2000
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// CatalogQuery is the transient query-parameter state driving one derived
// view. Facet selections are OR'd within a facet and AND'd across facets.
type CatalogQuery struct {
	Text         string   `json:"query" schema:"q"`
	Categories   []string `json:"categories" schema:"category"`
	Brands       []string `json:"brands" schema:"brand"`
	Features     []string `json:"features" schema:"feature"`
	PriceMin     float64  `json:"priceMin" schema:"-"`
	PriceMax     float64  `json:"priceMax" schema:"-"`
	VerifiedOnly bool     `json:"verifiedOnly" schema:"verified"`
	Sort         SortKey  `json:"sort" schema:"sort"`
	Page         int      `json:"page" schema:"page"`
	PageSize     int      `json:"pageSize" schema:"size"`
}

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

func clamp[T int | float64](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func (q *CatalogQuery) Sanitize() {
	if !q.Sort.IsValid() {
		q.Sort = SortRelevance
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	q.PageSize = clamp(q.PageSize, 1, MaxPageSize)
	if q.PriceMin == 0 && q.PriceMax == 0 {
		q.PriceMax = DefaultPriceMax
	}
	if q.PriceMax < q.PriceMin {
		q.PriceMin, q.PriceMax = q.PriceMax, q.PriceMin
	}
}

// HasPriceFilter reports a price range narrower than the default span.
func (q *CatalogQuery) HasPriceFilter() bool {
	return q.PriceMin != 0 || q.PriceMax != DefaultPriceMax
}

func (q *CatalogQuery) facetSelection(kind FacetKind) *[]string {
	switch kind {
	case FacetCategory:
		return &q.Categories
	case FacetBrand:
		return &q.Brands
	case FacetFeatures:
		return &q.Features
	}
	return nil
}

// ToggleFacet flips membership of value in the selection set for kind and
// reports whether anything changed.
func (q *CatalogQuery) ToggleFacet(kind FacetKind, value string) bool {
	sel := q.facetSelection(kind)
	if sel == nil || value == "" {
		return false
	}
	if i := slices.Index(*sel, value); i >= 0 {
		*sel = slices.Delete(*sel, i, i+1)
	} else {
		*sel = append(*sel, value)
	}
	return true
}

// ClearFilters resets every facet, the price range and the verified flag.
// The free-text query is deliberately left alone, search is independent of
// the filter sidebar.
func (q *CatalogQuery) ClearFilters() {
	q.Categories = nil
	q.Brands = nil
	q.Features = nil
	q.PriceMin = 0
	q.PriceMax = DefaultPriceMax
	q.VerifiedOnly = false
}

// DefaultCatalogQuery is the unfiltered first page, relevance order.
func DefaultCatalogQuery() *CatalogQuery {
	return &CatalogQuery{
		Sort:     SortRelevance,
		Page:     1,
		PageSize: DefaultPageSize,
		PriceMax: DefaultPriceMax,
	}
}

// CatalogQueryFromRequest decodes query parameters for GET requests and a
// json body otherwise, then sanitizes the result.
func CatalogQueryFromRequest(r *http.Request) (*CatalogQuery, error) {
	q := DefaultCatalogQuery()
	var err error
	if r.Method == http.MethodGet {
		err = catalogQueryFromValues(r.URL.Query(), q)
	} else {
		err = json.NewDecoder(r.Body).Decode(q)
	}
	q.Sanitize()
	return q, err
}

func catalogQueryFromValues(values url.Values, result *CatalogQuery) error {
	if err := decoder.Decode(result, values); err != nil {
		return err
	}
	// price arrives as a single "min-max" pair, same shape as a range facet
	if v := values.Get("price"); v != "" {
		var lo, hi float64
		if _, err := fmt.Sscanf(v, "%f-%f", &lo, &hi); err == nil {
			result.PriceMin = lo
			result.PriceMax = hi
		}
	}
	return nil
}
