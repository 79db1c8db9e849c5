package catalog

import (
	"github.com/matst80/slask-storefront/pkg/types"
)

// Merge combines the remote snapshot with the local baseline+override layer
// into one list without duplicates. Remote entries are visited first, so a
// product present in both sources under the same case-insensitive name+brand
// key keeps its remote copy. First-seen order is preserved on both sides.
// The local slice is deduped against itself as well, an empty remote (failed
// or unconfigured backend) must yield the same duplicate-free output.
// Malformed records are dropped here so the filter and sort stages never see
// them.
func Merge(remote, local []types.Product) []types.Product {
	seen := make(map[string]struct{}, len(remote)+len(local))
	merged := make([]types.Product, 0, len(remote)+len(local))
	for _, p := range remote {
		if !p.IsValid() {
			continue
		}
		key := p.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, p)
	}
	for _, p := range local {
		if !p.IsValid() {
			continue
		}
		key := p.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, p)
	}
	return merged
}
