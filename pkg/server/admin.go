package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matst80/slask-storefront/pkg/messaging"
	"github.com/matst80/slask-storefront/pkg/types"
)

var (
	adminMutations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_admin_mutations_total",
		Help: "The total number of admin catalog mutations",
	})
)

func (ws *WebServer) baselineProduct(localId string) *types.Product {
	for i := range ws.Baseline {
		if ws.Baseline[i].Id == localId {
			return &ws.Baseline[i]
		}
	}
	return nil
}

func (ws *WebServer) notifyChange(topic messaging.ChangeTopic, localId string) {
	if ws.Engine != nil {
		ws.Engine.Invalidate()
	}
	if ws.Transport == nil {
		return
	}
	var err error
	switch topic {
	case messaging.TopicOverrideSaved:
		err = ws.Transport.SendOverrideSaved(localId)
	case messaging.TopicProductDeleted:
		err = ws.Transport.SendProductDeleted(localId)
	case messaging.TopicProductRestored:
		err = ws.Transport.SendProductRestored(localId)
	}
	if err != nil {
		log.Printf("Failed to publish %s for %s: %v", topic, localId, err)
	}
}

type localProductRow struct {
	types.Product
	Deleted    bool `json:"deleted,omitempty"`
	Overridden bool `json:"overridden,omitempty"`
}

// HandleListLocal returns every baseline product with overrides applied,
// including deleted ones, for the admin dashboard.
func (ws *WebServer) HandleListLocal(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	ctx := r.Context()
	overrides := ws.Overrides.GetOverrides(ctx)
	deleted := ws.Overrides.GetDeletedIds(ctx)
	patched := ws.Overrides.ApplyOverrides(ctx, ws.Baseline)
	rows := make([]localProductRow, 0, len(patched))
	for _, p := range patched {
		_, isDeleted := deleted[p.LocalId]
		_, isOverridden := overrides[p.LocalId]
		rows = append(rows, localProductRow{
			Product:    p,
			Deleted:    isDeleted,
			Overridden: isOverridden,
		})
	}
	return enc.Encode(map[string]any{"items": rows})
}

// HandleSaveOverride stores a partial edit for one local product. The stored
// mapping is replaced wholesale, so the handler does a read-modify-write.
func (ws *WebServer) HandleSaveOverride(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	localId := r.PathValue("id")
	base := ws.baselineProduct(localId)
	if base == nil {
		http.Error(w, "product not found", http.StatusNotFound)
		return nil
	}
	patch := types.ProductPatch{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}
	if patch.IsEmpty() {
		http.Error(w, "empty patch", http.StatusBadRequest)
		return nil
	}
	ctx := r.Context()
	overrides := ws.Overrides.GetOverrides(ctx)
	overrides[localId] = patch
	if err := ws.Overrides.SaveOverrides(ctx, overrides); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	adminMutations.Inc()
	ws.notifyChange(messaging.TopicOverrideSaved, localId)

	result := *base
	patch.ApplyTo(&result)
	result.Origin = types.OriginLocal
	result.LocalId = localId
	return enc.Encode(result)
}

// HandleDeleteProduct hides a local product from every derived view. The
// baseline record stays untouched so a restore brings it back.
func (ws *WebServer) HandleDeleteProduct(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	localId := r.PathValue("id")
	if ws.baselineProduct(localId) == nil {
		http.Error(w, "product not found", http.StatusNotFound)
		return nil
	}
	ctx := r.Context()
	deleted := ws.Overrides.GetDeletedIds(ctx)
	deleted[localId] = struct{}{}
	if err := ws.Overrides.SaveDeletedIds(ctx, deleted); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	adminMutations.Inc()
	ws.notifyChange(messaging.TopicProductDeleted, localId)
	return enc.Encode(map[string]string{"deleted": localId})
}

// HandlePreview renders the shared view engine, the admin dashboard uses it
// to inspect what shoppers will see after an edit. Parameters mutate the
// engine's session query state, a bare call serves the current (possibly
// cached) view. Edits on this node and change messages from other nodes both
// invalidate it.
func (ws *WebServer) HandlePreview(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	if ws.Engine == nil {
		http.Error(w, "preview unavailable", http.StatusServiceUnavailable)
		return nil
	}
	params := r.URL.Query()
	if params.Has("clear") {
		ws.Engine.ClearFilters()
	}
	if params.Has("q") {
		ws.Engine.SetTextQuery(params.Get("q"))
	}
	for _, kind := range []types.FacetKind{types.FacetCategory, types.FacetBrand, types.FacetFeatures} {
		if v := params.Get(string(kind)); v != "" {
			ws.Engine.ToggleFacet(kind, v)
		}
	}
	if v := params.Get("price"); v != "" {
		var lo, hi float64
		if _, err := fmt.Sscanf(v, "%f-%f", &lo, &hi); err == nil {
			ws.Engine.SetPriceRange(lo, hi)
		}
	}
	if v := params.Get("verified"); v != "" {
		ws.Engine.SetVerifiedOnly(v == "true")
	}
	if v := params.Get("sort"); v != "" {
		ws.Engine.SetSortKey(types.SortKey(v))
	}
	if v := params.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			ws.Engine.SetPage(page)
		}
	}
	return enc.Encode(ws.Engine.GetView(r.Context()))
}

func (ws *WebServer) HandleRestoreProduct(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	localId := r.PathValue("id")
	ctx := r.Context()
	deleted := ws.Overrides.GetDeletedIds(ctx)
	if _, ok := deleted[localId]; !ok {
		http.Error(w, "product not deleted", http.StatusNotFound)
		return nil
	}
	delete(deleted, localId)
	if err := ws.Overrides.SaveDeletedIds(ctx, deleted); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	adminMutations.Inc()
	ws.notifyChange(messaging.TopicProductRestored, localId)
	return enc.Encode(map[string]string{"restored": localId})
}
