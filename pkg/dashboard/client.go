package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avolkov/catalog_insights/internal/domain"
)

const defaultHTTPTimeout = 30 * time.Second

// Client is a thin JSON client for the catalog API. All calls take a context
// so a view controller can cancel a fetch it no longer wants.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for an API base URL (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// NewClientWithHTTP creates a client with a caller-supplied http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

// ListResult is one page of a collection plus the paging metadata the grid
// needs to decide whether another page exists.
type ListResult struct {
	Items []*domain.Item
	Meta  domain.PageMeta
}

type listEnvelope struct {
	Success bool             `json:"success"`
	Error   string           `json:"error"`
	Count   int              `json:"count"`
	Data    []*domain.Item   `json:"data"`
	Meta    *domain.PageMeta `json:"meta"`
}

type dataEnvelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// List fetches one page of a collection under the given filter.
func (c *Client) List(ctx context.Context, entity string, f FilterState, page, limit int) (*ListResult, error) {
	q := f.Query()
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var env listEnvelope
	if err := c.get(ctx, c.collectionPath(entity, ""), q, &env); err != nil {
		return nil, err
	}

	result := &ListResult{Items: env.Data}
	if env.Meta != nil {
		result.Meta = *env.Meta
	}
	return result, nil
}

// Stats fetches the aggregation bundle for the given filter.
func (c *Client) Stats(ctx context.Context, entity string, f FilterState) (*domain.Stats, error) {
	var stats domain.Stats
	if err := c.getData(ctx, c.collectionPath(entity, "/analytics/stats"), f.Query(), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Recommendations fetches top-rated items for one facet value. A zero
// minRating defers to the server's per-collection floor.
func (c *Client) Recommendations(ctx context.Context, entity, facetParam, facetValue string, minRating float64) ([]*domain.Item, error) {
	q := url.Values{}
	if facetValue != "" {
		q.Set(facetParam, facetValue)
	}
	if minRating > 0 {
		q.Set("minRating", strconv.FormatFloat(minRating, 'f', -1, 64))
	}

	var items []*domain.Item
	if err := c.getData(ctx, c.collectionPath(entity, "/recommendations"), q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FilterOptions fetches the distinct facet values used to populate dropdowns.
func (c *Client) FilterOptions(ctx context.Context, entity string) (*domain.Options, error) {
	var opts domain.Options
	if err := c.getData(ctx, c.collectionPath(entity, "/filters/options"), nil, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// GetByID fetches a single item.
func (c *Client) GetByID(ctx context.Context, entity, id string) (*domain.Item, error) {
	var item domain.Item
	if err := c.getData(ctx, c.collectionPath(entity, "/"+id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) collectionPath(entity, suffix string) string {
	return "/api/" + entity + "s" + suffix
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var fail dataEnvelope
		if decodeErr := json.NewDecoder(resp.Body).Decode(&fail); decodeErr == nil && fail.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, fail.Error)
		}
		return fmt.Errorf("api error: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// getData fetches a {success, data} envelope and unmarshals its data field.
func (c *Client) getData(ctx context.Context, path string, q url.Values, out interface{}) error {
	var env dataEnvelope
	if err := c.get(ctx, path, q, &env); err != nil {
		return err
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
