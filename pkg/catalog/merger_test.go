package catalog

import (
	"testing"

	"github.com/matst80/slask-storefront/pkg/types"
)

func TestMergeRemoteWins(t *testing.T) {
	remote := []types.Product{
		{Id: "r1", Name: "A", Brand: "X", Price: 10, Origin: types.OriginRemote},
	}
	local := []types.Product{
		{Id: "l1", Name: "A", Brand: "X", Price: 20, Origin: types.OriginLocal},
		{Id: "l2", Name: "B", Brand: "Y", Price: 5, Origin: types.OriginLocal},
	}
	merged := Merge(remote, local)
	if len(merged) != 2 {
		t.Fatalf("expected 2 products, got %d", len(merged))
	}
	if merged[0].Id != "r1" || merged[0].Price != 10 {
		t.Errorf("remote copy must win the dedup tie, got %+v", merged[0])
	}
	if merged[1].Id != "l2" {
		t.Errorf("unmatched local products keep their order, got %+v", merged[1])
	}
}

func TestMergeNoDuplicateKeys(t *testing.T) {
	remote := []types.Product{
		{Id: "r1", Name: "AirPods", Brand: "Apple", Price: 199},
		{Id: "r2", Name: "airpods", Brand: "APPLE", Price: 189},
		{Id: "r3", Name: "Galaxy Buds", Brand: "Samsung", Price: 149},
	}
	local := []types.Product{
		{Id: "l1", Name: "AIRPODS", Brand: "apple", Price: 210},
	}
	merged := Merge(remote, local)
	seen := map[string]bool{}
	for _, p := range merged {
		key := p.DedupKey()
		if seen[key] {
			t.Errorf("duplicate dedup key %q in output", key)
		}
		seen[key] = true
	}
	if len(merged) != 2 {
		t.Errorf("expected 2 unique products, got %d", len(merged))
	}
}

func TestMergeEmptyRemoteIsIdentity(t *testing.T) {
	local := []types.Product{
		{Id: "l1", Name: "B", Price: 5},
		{Id: "l2", Name: "C", Price: 7},
	}
	merged := Merge(nil, local)
	if len(merged) != 2 || merged[0].Id != "l1" || merged[1].Id != "l2" {
		t.Errorf("empty remote should return local unchanged, got %+v", merged)
	}
}

func TestMergeDedupsLocalWithEmptyRemote(t *testing.T) {
	local := []types.Product{
		{Id: "l1", Name: "Desk Lamp", Brand: "LG", Price: 35},
		{Id: "l2", Name: "desk lamp", Brand: "lg", Price: 29},
		{Id: "l3", Name: "Floor Lamp", Brand: "LG", Price: 59},
	}
	merged := Merge(nil, local)
	if len(merged) != 2 {
		t.Fatalf("local duplicates must collapse without remote data, got %+v", merged)
	}
	if merged[0].Id != "l1" || merged[1].Id != "l3" {
		t.Errorf("first occurrence wins, got %v", idsOf(merged))
	}
}

func TestMergeDropsMalformed(t *testing.T) {
	remote := []types.Product{
		{Id: "r1", Name: "", Price: 10},  // no name
		{Id: "r2", Name: "Ok", Price: 5},
	}
	local := []types.Product{
		{Id: "l1", Name: "Broken", Price: -3},
		{Id: "l2", Name: "Fine", Price: 1},
	}
	merged := Merge(remote, local)
	if len(merged) != 2 {
		t.Fatalf("expected malformed records dropped, got %+v", merged)
	}
	localOnly := Merge(nil, local)
	if len(localOnly) != 1 || localOnly[0].Id != "l2" {
		t.Errorf("local-only path must also drop malformed records, got %+v", localOnly)
	}
}
