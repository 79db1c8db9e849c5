package server

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matst80/slask-storefront/pkg/catalog"
	"github.com/matst80/slask-storefront/pkg/common"
	"github.com/matst80/slask-storefront/pkg/messaging"
	"github.com/matst80/slask-storefront/pkg/storage"
	"github.com/matst80/slask-storefront/pkg/types"
)

var (
	catalogRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_catalog_requests_total",
		Help: "The total number of catalog view requests",
	})
)

// WebServer serves the derived catalog view and the admin back-office. The
// catalog endpoint is stateless, every request decodes a full query and runs
// the pipeline. Engine and Transport are optional, when present they are
// notified about admin mutations.
type WebServer struct {
	Source    catalog.ProductSource
	Overrides *storage.OverrideStore
	Baseline  []types.Product
	Engine    *catalog.Engine
	Transport *messaging.CatalogTransport
}

func (ws *WebServer) Handle() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/products", common.JsonHandler(ws.HandleCatalog))
	mux.HandleFunc("OPTIONS /api/products", common.RespondToOptions)
	mux.HandleFunc("GET /api/admin/products", common.JsonHandler(ws.HandleListLocal))
	mux.HandleFunc("GET /api/admin/preview", common.JsonHandler(ws.HandlePreview))
	mux.HandleFunc("PUT /api/admin/products/{id}", common.JsonHandler(ws.HandleSaveOverride))
	mux.HandleFunc("DELETE /api/admin/products/{id}", common.JsonHandler(ws.HandleDeleteProduct))
	mux.HandleFunc("POST /api/admin/products/{id}/restore", common.JsonHandler(ws.HandleRestoreProduct))
	mux.HandleFunc("OPTIONS /api/admin/", common.RespondToOptions)
	return mux
}

func (ws *WebServer) HandleCatalog(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	catalogRequests.Inc()
	q, err := types.CatalogQueryFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}
	view := catalog.BuildView(r.Context(), ws.Source, ws.Overrides, ws.Baseline, q)
	return enc.Encode(view)
}
