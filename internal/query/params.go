package query

import "catalog-dashboard/internal/domain"

// Params holds one full set of filter and sort choices for Apply. It mirrors
// the knobs the dashboard exposes; pagination is deliberately separate so the
// caller can count the filtered set before slicing a page out of it.
type Params struct {
	Term     string
	Category string
	MinPrice float64
	MaxPrice float64
	Sort     SortKey
}

// Apply runs the pipeline stages in their fixed order: search, category
// filter, price-range filter, then sort. The filters narrow the candidate set
// before the sort, and the sort runs last so it orders the final filtered set
// rather than a subset. Pagination is not applied here; see ApplyPage.
func Apply(products []domain.Product, p Params) []domain.Product {
	result := Search(products, p.Term)
	result = FilterByCategory(result, p.Category)
	result = FilterByPriceRange(result, p.MinPrice, p.MaxPrice)
	return Sort(result, p.Sort)
}

// ApplyPage applies the full pipeline and slices out the requested 1-based
// page. It also returns the filtered total so callers can derive TotalPages
// without re-running the filters.
func ApplyPage(products []domain.Product, p Params, page, pageSize int) (pageItems []domain.Product, filteredTotal int) {
	filtered := Apply(products, p)
	return Paginate(filtered, page, pageSize), len(filtered)
}
