package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matst80/slask-storefront/pkg/catalog"
	"github.com/matst80/slask-storefront/pkg/storage"
	"github.com/matst80/slask-storefront/pkg/types"
)

func testBaseline() []types.Product {
	return []types.Product{
		{Id: "1", Name: "Desk Lamp", Price: 35, Brand: "LG", Category: "Home & Kitchen", Origin: types.OriginLocal, LocalId: "1"},
		{Id: "2", Name: "Office Chair", Price: 120, Category: "Home & Kitchen", Origin: types.OriginLocal, LocalId: "2"},
		{Id: "3", Name: "Running Shoes", Price: 80, Brand: "Nike", Category: "Sports", Origin: types.OriginLocal, LocalId: "3"},
	}
}

func testServer() (*httptest.Server, *WebServer) {
	ws := &WebServer{
		Overrides: storage.NewOverrideStore(storage.NewMemoryStore()),
		Baseline:  testBaseline(),
	}
	return httptest.NewServer(ws.Handle()), ws
}

func getView(t *testing.T, url string) *catalog.View {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}
	view := &catalog.View{}
	if err := json.NewDecoder(res.Body).Decode(view); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return view
}

func TestCatalogEndpoint(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	view := getView(t, srv.URL+"/api/products")
	if view.TotalCount != 3 || view.CurrentPage != 1 {
		t.Errorf("expected the full baseline on page 1, got %+v", view.Page)
	}

	view = getView(t, srv.URL+"/api/products?category=Sports")
	if view.TotalCount != 1 || view.Items[0].Id != "3" {
		t.Errorf("category filter failed, got %+v", view.Items)
	}

	view = getView(t, srv.URL+"/api/products?q=lamp&sort=price-low")
	if view.TotalCount != 1 || view.Items[0].Name != "Desk Lamp" {
		t.Errorf("text search failed, got %+v", view.Items)
	}
}

func TestSaveOverrideReflectsInCatalog(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	req, _ := http.NewRequest("PUT", srv.URL+"/api/admin/products/1", strings.NewReader(`{"price":19.5}`))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}
	patched := types.Product{}
	if err := json.NewDecoder(res.Body).Decode(&patched); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if patched.Price != 19.5 || patched.Name != "Desk Lamp" {
		t.Errorf("response should carry the patched product, got %+v", patched)
	}

	view := getView(t, srv.URL+"/api/products?q=lamp")
	if len(view.Items) != 1 || view.Items[0].Price != 19.5 {
		t.Errorf("catalog should serve the override, got %+v", view.Items)
	}
}

func TestSaveOverrideRejections(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	req, _ := http.NewRequest("PUT", srv.URL+"/api/admin/products/missing", strings.NewReader(`{"price":1}`))
	res, _ := http.DefaultClient.Do(req)
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("unknown product should 404, got %d", res.StatusCode)
	}

	req, _ = http.NewRequest("PUT", srv.URL+"/api/admin/products/1", strings.NewReader(`{}`))
	res, _ = http.DefaultClient.Do(req)
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("empty patch should 400, got %d", res.StatusCode)
	}
}

func TestDeleteAndRestoreProduct(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	req, _ := http.NewRequest("DELETE", srv.URL+"/api/admin/products/2", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}

	view := getView(t, srv.URL+"/api/products")
	if view.TotalCount != 2 {
		t.Errorf("deleted product should be hidden, got %d items", view.TotalCount)
	}
	for _, p := range view.Items {
		if p.Id == "2" {
			t.Errorf("product 2 should not be served after delete")
		}
	}

	res, err = http.Post(srv.URL+"/api/admin/products/2/restore", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}
	view = getView(t, srv.URL+"/api/products")
	if view.TotalCount != 3 {
		t.Errorf("restored product should be back, got %d items", view.TotalCount)
	}
}

func testServerWithEngine() (*httptest.Server, *WebServer) {
	baseline := testBaseline()
	overrides := storage.NewOverrideStore(storage.NewMemoryStore())
	ws := &WebServer{
		Overrides: overrides,
		Baseline:  baseline,
		Engine:    catalog.NewEngine(nil, overrides, baseline),
	}
	return httptest.NewServer(ws.Handle()), ws
}

func TestPreviewServesEngineView(t *testing.T) {
	srv, _ := testServerWithEngine()
	defer srv.Close()

	view := getView(t, srv.URL+"/api/admin/preview")
	if view.TotalCount != 3 || view.CurrentPage != 1 {
		t.Fatalf("bare preview should render the full catalog, got %+v", view.Page)
	}

	view = getView(t, srv.URL+"/api/admin/preview?category=Sports")
	if view.TotalCount != 1 || view.Items[0].Id != "3" {
		t.Errorf("preview facet toggle failed, got %+v", view.Items)
	}

	// second toggle of the same value deselects it
	view = getView(t, srv.URL+"/api/admin/preview?category=Sports")
	if view.TotalCount != 3 {
		t.Errorf("toggling the facet off should widen the view again, got %d", view.TotalCount)
	}
}

func TestPreviewReflectsAdminEdits(t *testing.T) {
	srv, _ := testServerWithEngine()
	defer srv.Close()

	before := getView(t, srv.URL+"/api/admin/preview?q=lamp")
	if len(before.Items) != 1 || before.Items[0].Price != 35 {
		t.Fatalf("unexpected starting view %+v", before.Items)
	}

	req, _ := http.NewRequest("PUT", srv.URL+"/api/admin/products/1", strings.NewReader(`{"price":19.5}`))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()

	after := getView(t, srv.URL+"/api/admin/preview")
	if len(after.Items) != 1 || after.Items[0].Price != 19.5 {
		t.Errorf("edit should invalidate the cached preview, got %+v", after.Items)
	}
}

func TestPreviewWithoutEngine(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/admin/preview")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("preview without an engine should 503, got %d", res.StatusCode)
	}
}

func TestRestoreNotDeleted(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	res, err := http.Post(srv.URL+"/api/admin/products/1/restore", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("restoring a live product should 404, got %d", res.StatusCode)
	}
}

func TestListLocalMarksState(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	req, _ := http.NewRequest("PUT", srv.URL+"/api/admin/products/1", strings.NewReader(`{"name":"Edited Lamp"}`))
	res, _ := http.DefaultClient.Do(req)
	res.Body.Close()
	req, _ = http.NewRequest("DELETE", srv.URL+"/api/admin/products/3", nil)
	res, _ = http.DefaultClient.Do(req)
	res.Body.Close()

	res, err := http.Get(srv.URL + "/api/admin/products")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	payload := struct {
		Items []localProductRow `json:"items"`
	}{}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(payload.Items) != 3 {
		t.Fatalf("admin list includes deleted rows, got %d", len(payload.Items))
	}
	byId := map[string]localProductRow{}
	for _, row := range payload.Items {
		byId[row.LocalId] = row
	}
	if !byId["1"].Overridden || byId["1"].Name != "Edited Lamp" {
		t.Errorf("override not reflected: %+v", byId["1"])
	}
	if !byId["3"].Deleted {
		t.Errorf("deletion not reflected: %+v", byId["3"])
	}
	if byId["2"].Deleted || byId["2"].Overridden {
		t.Errorf("untouched product should carry no flags: %+v", byId["2"])
	}
}
