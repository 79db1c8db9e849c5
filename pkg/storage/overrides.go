package storage

import (
	"context"
	"errors"
	"log"
	"slices"

	"github.com/bytedance/sonic"
	"github.com/samber/lo"

	"github.com/matst80/slask-storefront/pkg/types"
)

const (
	overridesKey  = "storefront_product_overrides"
	deletedIdsKey = "storefront_product_deleted_ids"
)

// OverrideStore persists admin edits on top of the local baseline catalog as
// two kv entries: a patch per baseline id and a deleted-id list. Reads fail
// soft, a missing or unparsable value behaves like empty state so the catalog
// keeps rendering. Writes are total overwrites, callers read-modify-write.
type OverrideStore struct {
	kv KeyValueStore
}

func NewOverrideStore(kv KeyValueStore) *OverrideStore {
	return &OverrideStore{kv: kv}
}

func (s *OverrideStore) GetOverrides(ctx context.Context) map[string]types.ProductPatch {
	result := make(map[string]types.ProductPatch)
	data, err := s.kv.Get(ctx, overridesKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("override read failed, using empty set: %v", err)
		}
		return result
	}
	if err := sonic.Unmarshal([]byte(data), &result); err != nil {
		log.Printf("override data unreadable, using empty set: %v", err)
		return make(map[string]types.ProductPatch)
	}
	return result
}

func (s *OverrideStore) SaveOverrides(ctx context.Context, overrides map[string]types.ProductPatch) error {
	if overrides == nil {
		overrides = map[string]types.ProductPatch{}
	}
	data, err := sonic.Marshal(overrides)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, overridesKey, string(data))
}

func (s *OverrideStore) GetDeletedIds(ctx context.Context) map[string]struct{} {
	result := make(map[string]struct{})
	data, err := s.kv.Get(ctx, deletedIdsKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("deleted-id read failed, using empty set: %v", err)
		}
		return result
	}
	ids := []string{}
	if err := sonic.Unmarshal([]byte(data), &ids); err != nil {
		log.Printf("deleted-id data unreadable, using empty set: %v", err)
		return result
	}
	for _, id := range ids {
		result[id] = struct{}{}
	}
	return result
}

func (s *OverrideStore) SaveDeletedIds(ctx context.Context, deleted map[string]struct{}) error {
	ids := lo.Keys(deleted)
	slices.Sort(ids)
	data, err := sonic.Marshal(ids)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, deletedIdsKey, string(data))
}

// ApplyOverrides patches each baseline product, tags it as local origin and
// remembers the baseline id for later deletion checks and re-editing. The
// baseline slice is never mutated.
func (s *OverrideStore) ApplyOverrides(ctx context.Context, baseline []types.Product) []types.Product {
	overrides := s.GetOverrides(ctx)
	out := make([]types.Product, 0, len(baseline))
	for _, p := range baseline {
		localId := p.Id
		if patch, ok := overrides[localId]; ok {
			patch.ApplyTo(&p)
		}
		p.Image = types.ResolveImagePath(p.Image)
		p.Origin = types.OriginLocal
		p.LocalId = localId
		out = append(out, p)
	}
	return out
}

// VisibleLocalProducts is ApplyOverrides minus anything the admin deleted.
func (s *OverrideStore) VisibleLocalProducts(ctx context.Context, baseline []types.Product) []types.Product {
	deleted := s.GetDeletedIds(ctx)
	patched := s.ApplyOverrides(ctx, baseline)
	if len(deleted) == 0 {
		return patched
	}
	out := make([]types.Product, 0, len(patched))
	for _, p := range patched {
		if _, gone := deleted[p.LocalId]; gone {
			continue
		}
		out = append(out, p)
	}
	return out
}
