package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/matst80/slask-storefront/pkg/types"
)

// HTTPProductSource fetches raw products from the backend catalog api. It
// implements catalog.ProductSource. Retry and backoff policy belong to the
// injected client, not here.
type HTTPProductSource struct {
	BaseUrl string
	Client  *http.Client
}

func NewHTTPProductSource(baseUrl string) *HTTPProductSource {
	return &HTTPProductSource{
		BaseUrl: baseUrl,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// itemsEnvelope is the alternative response shape, the backend answers with
// either a bare array or {"items": [...]}.
type itemsEnvelope struct {
	Items []types.RawProduct `json:"items"`
}

func (s *HTTPProductSource) FetchProducts(ctx context.Context, req types.ProductRequest) ([]types.RawProduct, error) {
	values := url.Values{}
	if req.Text != "" {
		values.Set("q", req.Text)
	}
	if req.Category != "" {
		values.Set("category", req.Category)
	}
	if req.Limit > 0 {
		values.Set("limit", strconv.Itoa(req.Limit))
	}
	endpoint := s.BaseUrl + "/api/products"
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product fetch status %d", res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	items := []types.RawProduct{}
	if err := sonic.Unmarshal(body, &items); err == nil {
		return items, nil
	}
	envelope := itemsEnvelope{}
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected product response: %w", err)
	}
	return envelope.Items, nil
}
