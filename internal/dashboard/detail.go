package dashboard

import (
	"context"
	"errors"
	"sync"

	"catalog-dashboard/internal/catalog"
	"catalog-dashboard/internal/domain"
)

// ErrSuperseded is returned by Detail.Load when another load for a different
// id started while this one was in flight. The stale result is discarded.
var ErrSuperseded = errors.New("dashboard: detail load superseded by a newer request")

// Detail is the single-product view. Each load is tagged with the requested
// id, and a response is only committed if its tag still matches the current
// id; a response for a superseded id can therefore never overwrite newer
// state.
type Detail struct {
	fetcher catalog.Fetcher

	mu        sync.Mutex
	currentID int64
	product   *domain.Product
	errMsg    string
}

// NewDetail creates a Detail view loading through fetcher.
func NewDetail(fetcher catalog.Fetcher) *Detail {
	return &Detail{fetcher: fetcher}
}

// Load fetches the product with the given id and commits it as the current
// detail state, unless a newer Load for a different id has started meanwhile.
func (d *Detail) Load(ctx context.Context, id int64) (*domain.Product, error) {
	d.mu.Lock()
	d.currentID = id
	d.product = nil
	d.errMsg = ""
	d.mu.Unlock()

	product, err := d.fetcher.FetchProductByID(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.currentID != id {
		return nil, ErrSuperseded
	}
	if err != nil {
		d.errMsg = err.Error()
		return nil, err
	}
	d.product = product
	return product, nil
}

// Product returns the committed product for the current id, or nil while
// loading or after a failed load.
func (d *Detail) Product() *domain.Product {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.product
}

// LoadError returns the error message from the last failed load for the
// current id, or the empty string.
func (d *Detail) LoadError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errMsg
}
