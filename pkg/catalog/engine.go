package catalog

import (
	"context"
	"log"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matst80/slask-storefront/pkg/types"
)

var (
	viewsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_views_total",
		Help: "The total number of computed catalog views",
	})
	remoteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_remote_failures_total",
		Help: "The total number of failed remote product fetches",
	})
)

// how many products one remote fetch asks for, matches the storefront client
const remoteFetchLimit = 100

// ProductSource is the remote collaborator. A failing fetch degrades the view
// to local-only data, it is never surfaced as an error by the engine.
type ProductSource interface {
	FetchProducts(ctx context.Context, req types.ProductRequest) ([]types.RawProduct, error)
}

// LocalSource supplies the baseline+override layer, already stripped of
// deleted products. *storage.OverrideStore satisfies this.
type LocalSource interface {
	VisibleLocalProducts(ctx context.Context, baseline []types.Product) []types.Product
}

// View is the derived result handed to the presentation layer. Degraded marks
// a view computed without remote data.
type View struct {
	Page
	Facets   FacetSummary `json:"facets"`
	Degraded bool         `json:"degraded,omitempty"`
}

// BuildView runs the full pipeline once: fetch, merge, filter, sort, paginate.
// Pure apart from the remote fetch, both the stateless http handler and the
// stateful engine go through here.
func BuildView(ctx context.Context, source ProductSource, local LocalSource, baseline []types.Product, q *types.CatalogQuery) *View {
	viewsComputed.Inc()
	var remote []types.Product
	degraded := false
	if source != nil {
		raw, err := source.FetchProducts(ctx, types.ProductRequest{Text: q.Text, Limit: remoteFetchLimit})
		if err != nil {
			remoteFailures.Inc()
			log.Printf("remote fetch failed, serving local catalog: %v", err)
			degraded = true
		} else {
			remote = types.NormalizeAll(raw)
		}
	}
	var localProducts []types.Product
	if local != nil {
		localProducts = local.VisibleLocalProducts(ctx, baseline)
	} else {
		localProducts = baseline
	}
	merged := Merge(remote, localProducts)
	filtered := Filter(merged, q)
	sorted := Sort(filtered, q.Sort)
	return &View{
		Page:     Paginate(sorted, q.PageSize, q.Page),
		Facets:   Summarize(q),
		Degraded: degraded,
	}
}

// Engine owns the current query state and recomputes the derived view when
// any input changes. Any filter, sort or text change resets the page to 1,
// changing only the page does not touch the filters. A fetch superseded by a
// newer change can still be returned to its caller but is never cached.
type Engine struct {
	mu         sync.Mutex
	source     ProductSource
	local      LocalSource
	baseline   []types.Product
	query      types.CatalogQuery
	generation uint64
	view       *View
	dirty      bool
}

func NewEngine(source ProductSource, local LocalSource, baseline []types.Product) *Engine {
	return &Engine{
		source:   source,
		local:    local,
		baseline: baseline,
		query:    *types.DefaultCatalogQuery(),
		dirty:    true,
	}
}

// markChanged invalidates the cached view and discards in-flight computations.
func (e *Engine) markChanged(resetPage bool) {
	e.generation++
	e.dirty = true
	if resetPage {
		e.query.Page = 1
	}
}

func (e *Engine) SetTextQuery(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.query.Text == text {
		return
	}
	e.query.Text = text
	e.markChanged(true)
}

func (e *Engine) ToggleFacet(kind types.FacetKind, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.query.ToggleFacet(kind, value) {
		e.markChanged(true)
	}
}

func (e *Engine) SetPriceRange(min, max float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if max < min {
		min, max = max, min
	}
	if e.query.PriceMin == min && e.query.PriceMax == max {
		return
	}
	e.query.PriceMin = min
	e.query.PriceMax = max
	e.markChanged(true)
}

func (e *Engine) SetVerifiedOnly(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.query.VerifiedOnly == enabled {
		return
	}
	e.query.VerifiedOnly = enabled
	e.markChanged(true)
}

func (e *Engine) SetSortKey(key types.SortKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !key.IsValid() || e.query.Sort == key {
		return
	}
	e.query.Sort = key
	e.markChanged(true)
}

func (e *Engine) SetPage(page int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if page < 1 || e.query.Page == page {
		return
	}
	e.query.Page = page
	e.markChanged(false)
}

// ClearFilters resets facets, price range, verified flag and page. The free
// text query stays, search is independent of the filter sidebar.
func (e *Engine) ClearFilters() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query.ClearFilters()
	e.markChanged(true)
}

// Invalidate forces a recompute on the next GetView, used when the override
// store changed underneath us (admin edit, change message from another node).
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.markChanged(false)
}

// Query returns a snapshot of the current query state.
func (e *Engine) Query() types.CatalogQuery {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneQuery(&e.query)
}

// GetView returns the cached view when nothing changed, otherwise recomputes.
// Calling it twice with unchanged inputs yields the identical result.
func (e *Engine) GetView(ctx context.Context) *View {
	e.mu.Lock()
	if !e.dirty && e.view != nil {
		v := e.view
		e.mu.Unlock()
		return v
	}
	gen := e.generation
	q := cloneQuery(&e.query)
	e.mu.Unlock()

	view := BuildView(ctx, e.source, e.local, e.baseline, &q)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen == e.generation {
		e.view = view
		e.dirty = false
	}
	return view
}

// cloneQuery detaches the facet slices so an in-flight compute never observes
// a concurrent toggle.
func cloneQuery(q *types.CatalogQuery) types.CatalogQuery {
	c := *q
	c.Categories = slices.Clone(q.Categories)
	c.Brands = slices.Clone(q.Brands)
	c.Features = slices.Clone(q.Features)
	return c
}
