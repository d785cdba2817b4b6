// Package dashboard owns the catalog view state: the last-fetched raw
// collections plus the user's current filter, sort and page selections. The
// derived visible page is never stored; it is recomputed from raw data and
// selection on demand, so it can never go stale.
package dashboard

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"catalog-dashboard/internal/catalog"
	"catalog-dashboard/internal/domain"
	"catalog-dashboard/internal/query"
)

// DefaultPageSize is the number of products shown per page.
const DefaultPageSize = 12

// Selection is the user's current search/filter/sort/page choices.
type Selection struct {
	SearchTerm string        `json:"searchTerm"`
	Category   string        `json:"category"`
	MinPrice   float64       `json:"minPrice"`
	MaxPrice   float64       `json:"maxPrice"`
	Sort       query.SortKey `json:"sort"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
}

// Stats are aggregates over the whole raw catalog; they are unaffected by
// any active filters.
type Stats struct {
	TotalProducts   int     `json:"totalProducts"`
	TotalCategories int     `json:"totalCategories"`
	AveragePrice    float64 `json:"averagePrice"`
	InStock         int     `json:"inStock"`
}

// Page is one derived visible page plus the pagination facts the
// presentation layer needs to render controls around it.
type Page struct {
	Items       []domain.Product `json:"items"`
	Page        int              `json:"page"`
	PageSize    int              `json:"pageSize"`
	TotalItems  int              `json:"totalItems"`
	TotalPages  int              `json:"totalPages"`
	PageNumbers []int            `json:"pageNumbers"`
}

// View holds the raw collections and the active Selection for one dashboard.
type View struct {
	fetcher catalog.Fetcher

	mu         sync.Mutex
	products   []domain.Product
	categories []string
	sel        Selection
	maxBound   float64 // full price upper bound computed at load time
	loaded     bool
	loadErr    string
}

// NewView creates a View that loads through fetcher. A non-positive pageSize
// falls back to DefaultPageSize.
func NewView(fetcher catalog.Fetcher, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View{
		fetcher: fetcher,
		sel:     Selection{Category: query.CategoryAll, Sort: query.SortDefault, Page: 1, PageSize: pageSize},
	}
}

// Load fetches products and categories concurrently and, once both have
// arrived, initializes the filter defaults (price bounds depend on the loaded
// data). If either fetch fails the whole load fails: no partial collections
// are committed, and the error is kept as the view's error state.
func (v *View) Load(ctx context.Context) error {
	var (
		products   []domain.Product
		categories []string
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = v.fetcher.FetchAllProducts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = v.fetcher.FetchCategories(ctx)
		return err
	})

	err := g.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.products = nil
		v.categories = nil
		v.loaded = false
		v.loadErr = err.Error()
		return err
	}

	v.products = products
	v.categories = categories
	v.loaded = true
	v.loadErr = ""

	_, v.maxBound = query.PriceBounds(products)
	pageSize := v.sel.PageSize
	v.sel = Selection{
		Category: query.CategoryAll,
		MinPrice: 0,
		MaxPrice: v.maxBound,
		Sort:     query.SortDefault,
		Page:     1,
		PageSize: pageSize,
	}
	return nil
}

// Loaded reports whether a load has completed successfully.
func (v *View) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// LoadError returns the human-readable message from the last failed load, or
// the empty string.
func (v *View) LoadError() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadErr
}

// SetSearchTerm updates the search filter and moves back to page 1.
func (v *View) SetSearchTerm(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel.SearchTerm = term
	v.sel.Page = 1
}

// SetCategory updates the category filter and moves back to page 1.
func (v *View) SetCategory(category string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if category == "" {
		category = query.CategoryAll
	}
	v.sel.Category = category
	v.sel.Page = 1
}

// SetPriceRange updates the price filter and moves back to page 1. Bounds are
// stored as given; an inverted range simply filters everything out.
func (v *View) SetPriceRange(min, max float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel.MinPrice = min
	v.sel.MaxPrice = max
	v.sel.Page = 1
}

// SetSort updates the sort key and moves back to page 1.
func (v *View) SetSort(key query.SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel.Sort = key
	v.sel.Page = 1
}

// SetPage moves to the requested page, clamped into [1, totalPages] so the
// user is never shown an unintentionally empty page.
func (v *View) SetPage(page int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if page < 1 {
		page = 1
	}
	total := v.totalPagesLocked()
	if total < 1 {
		total = 1
	}
	if page > total {
		page = total
	}
	v.sel.Page = page
}

// ClearFilters resets category, price range and sort to their defaults. The
// search term belongs to the page-level navigation, not the filter bar, so it
// is deliberately left alone.
func (v *View) ClearFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel.Category = query.CategoryAll
	v.sel.MinPrice = 0
	v.sel.MaxPrice = v.maxBound
	v.sel.Sort = query.SortDefault
	v.sel.Page = 1
}

// HasActiveFilters reports whether any filter deviates from its default, the
// signal for offering a "clear filters" affordance.
func (v *View) HasActiveFilters() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel.Category != query.CategoryAll ||
		v.sel.MinPrice != 0 ||
		v.sel.MaxPrice != v.maxBound ||
		v.sel.Sort != query.SortDefault ||
		strings.TrimSpace(v.sel.SearchTerm) != ""
}

// Selection returns a copy of the active selection.
func (v *View) Selection() Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel
}

// Categories returns the category universe as fetched from the catalog
// service (which may diverge from the labels present on products).
func (v *View) Categories() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.categories))
	copy(out, v.categories)
	return out
}

// Stats derives the aggregate tiles from the raw collection: filters never
// change them.
func (v *View) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Stats{
		TotalProducts:   len(v.products),
		TotalCategories: len(v.categories),
		AveragePrice:    query.AveragePrice(v.products),
		InStock:         len(v.products), // the catalog service has no stock signal; everything ships
	}
}

// VisiblePage recomputes the derived page: the fixed pipeline order over the
// raw collection, then the slice for the current page.
func (v *View) VisiblePage() Page {
	v.mu.Lock()
	defer v.mu.Unlock()

	items, filteredTotal := query.ApplyPage(v.products, v.paramsLocked(), v.sel.Page, v.sel.PageSize)
	totalPages := query.TotalPages(filteredTotal, v.sel.PageSize)
	return Page{
		Items:       items,
		Page:        v.sel.Page,
		PageSize:    v.sel.PageSize,
		TotalItems:  filteredTotal,
		TotalPages:  totalPages,
		PageNumbers: query.PageWindow(v.sel.Page, totalPages),
	}
}

// TotalPages is the page count for the current filtered set.
func (v *View) TotalPages() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalPagesLocked()
}

func (v *View) totalPagesLocked() int {
	filtered := query.Apply(v.products, v.paramsLocked())
	return query.TotalPages(len(filtered), v.sel.PageSize)
}

func (v *View) paramsLocked() query.Params {
	return query.Params{
		Term:     v.sel.SearchTerm,
		Category: v.sel.Category,
		MinPrice: v.sel.MinPrice,
		MaxPrice: v.sel.MaxPrice,
		Sort:     v.sel.Sort,
	}
}
