package catalog

import (
	"testing"

	"github.com/matst80/slask-storefront/pkg/types"
)

func filterFixture() []types.Product {
	return []types.Product{
		{Id: "1", Name: "iPhone 15", Brand: "Apple", Category: "Electronics", Price: 999, Features: []string{"Free Shipping", "New Arrival"}, IsVerified: true},
		{Id: "2", Name: "Galaxy S24", Brand: "Samsung", Category: "Electronics", Price: 899, Features: []string{"Discount"}},
		{Id: "3", Name: "Air Max", Brand: "Nike", Category: "Sports", Price: 120, Features: []string{"Free Shipping"}, IsVerified: true},
		{Id: "4", Name: "Lipstick Set", Brand: "LG", Category: "Beauty", Price: 25},
	}
}

func baseQuery() *types.CatalogQuery {
	q := types.DefaultCatalogQuery()
	q.PageSize = 100
	return q
}

func idsOf(products []types.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.Id
	}
	return ids
}

func TestFilterPriceInclusiveBounds(t *testing.T) {
	q := baseQuery()
	q.PriceMin = 120
	q.PriceMax = 899
	got := Filter(filterFixture(), q)
	if len(got) != 2 {
		t.Fatalf("both boundary prices must pass, got %v", idsOf(got))
	}
	if got[0].Id != "2" || got[1].Id != "3" {
		t.Errorf("unexpected result %v", idsOf(got))
	}
}

func TestFilterTextSearchesFeatures(t *testing.T) {
	q := baseQuery()
	q.Text = "free shipping"
	got := Filter(filterFixture(), q)
	if len(got) != 2 {
		t.Errorf("feature strings are searchable, got %v", idsOf(got))
	}

	q.Text = "APPLE"
	got = Filter(filterFixture(), q)
	if len(got) != 1 || got[0].Id != "1" {
		t.Errorf("text match must be case-insensitive, got %v", idsOf(got))
	}
}

func TestFilterFacetSemantics(t *testing.T) {
	q := baseQuery()
	q.Features = []string{"Discount", "New Arrival"}
	got := Filter(filterFixture(), q)
	if len(got) != 2 {
		t.Errorf("features facet is OR within the facet, got %v", idsOf(got))
	}

	q.Categories = []string{"Electronics"}
	q.Brands = []string{"Samsung"}
	got = Filter(filterFixture(), q)
	if len(got) != 1 || got[0].Id != "2" {
		t.Errorf("facets must AND across facets, got %v", idsOf(got))
	}
}

func TestFilterVerifiedOnly(t *testing.T) {
	q := baseQuery()
	q.VerifiedOnly = true
	got := Filter(filterFixture(), q)
	if len(got) != 2 {
		t.Errorf("expected only verified products, got %v", idsOf(got))
	}
}

func TestFilterEmptySelectionsRestrictNothing(t *testing.T) {
	got := Filter(filterFixture(), baseQuery())
	if len(got) != 4 {
		t.Errorf("default query should pass everything, got %v", idsOf(got))
	}
}

func TestFilterIdempotent(t *testing.T) {
	q := baseQuery()
	q.Text = "electronics"
	q.PriceMax = 950
	once := Filter(filterFixture(), q)
	twice := Filter(once, q)
	if len(once) != len(twice) {
		t.Fatalf("filter must be idempotent: %v vs %v", idsOf(once), idsOf(twice))
	}
	for i := range once {
		if once[i].Id != twice[i].Id {
			t.Errorf("filter must be idempotent at index %d", i)
		}
	}
}
