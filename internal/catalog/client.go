// Package catalog talks to the external catalog service. Each call is a
// single request-response round trip: the whole collection is fetched eagerly,
// with no retry and no caching layer.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"

	"catalog-dashboard/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Predefined errors for catalog operations.
var (
	ErrProductNotFound    = errors.New("catalog: product not found")
	ErrCatalogUnavailable = errors.New("catalog: upstream service unavailable")
)

// Fetcher defines the read operations the dashboard needs from the catalog
// service.
type Fetcher interface {
	FetchAllProducts(ctx context.Context) ([]domain.Product, error)
	FetchCategories(ctx context.Context) ([]string, error)
	FetchProductByID(ctx context.Context, id int64) (*domain.Product, error)
	FetchProductsByCategory(ctx context.Context, name string) ([]domain.Product, error)
}

// Client implements Fetcher over the catalog service's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the service at baseURL. A non-positive
// timeout leaves the default transport behavior in place.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchAllProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.getJSON(ctx, "/products", &products, false); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "/products/categories", &categories, false); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) FetchProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := c.getJSON(ctx, fmt.Sprintf("/products/%d", id), &product, true)
	if err != nil {
		return nil, err
	}
	// Some catalog deployments answer a missing id with 200 and an empty
	// body instead of 404; treat an unfilled product the same way.
	if product.ID == 0 {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

func (c *Client) FetchProductsByCategory(ctx context.Context, name string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.getJSON(ctx, "/products/category/"+url.PathEscape(name), &products, false); err != nil {
		return nil, err
	}
	return products, nil
}

// getJSON performs one GET round trip and decodes the body into out. A 404
// maps to ErrProductNotFound only for single-resource lookups; on collection
// endpoints every non-200 is an unavailable upstream.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}, singleResource bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("catalog: building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrCatalogUnavailable, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound && singleResource {
		return ErrProductNotFound
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s returned status %d", ErrCatalogUnavailable, path, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrCatalogUnavailable, path, err)
	}
	return nil
}
