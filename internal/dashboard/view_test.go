package dashboard

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog-dashboard/internal/domain"
	"catalog-dashboard/internal/query"
)

// MockFetcher is a mock implementation of catalog.Fetcher.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchAllProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	var products []domain.Product
	if arg0 := args.Get(0); arg0 != nil {
		products = arg0.([]domain.Product)
	}
	return products, args.Error(1)
}

func (m *MockFetcher) FetchCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var categories []string
	if arg0 := args.Get(0); arg0 != nil {
		categories = arg0.([]string)
	}
	return categories, args.Error(1)
}

func (m *MockFetcher) FetchProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockFetcher) FetchProductsByCategory(ctx context.Context, name string) ([]domain.Product, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func catalogFixture() ([]domain.Product, []string) {
	products := []domain.Product{
		{ID: 1, Title: "Jacket", Price: 5, Category: "A", Rating: domain.Rating{Rate: 4.1}},
		{ID: 2, Title: "Ring", Price: 50, Category: "B", Rating: domain.Rating{Rate: 3.0}},
		{ID: 3, Title: "Monitor", Price: 500, Category: "A", Rating: domain.Rating{Rate: 4.8}},
	}
	return products, []string{"A", "B", "C"}
}

func loadedView(t *testing.T) *View {
	t.Helper()
	products, categories := catalogFixture()
	fetcher := new(MockFetcher)
	fetcher.On("FetchAllProducts", mock.Anything).Return(products, nil).Once()
	fetcher.On("FetchCategories", mock.Anything).Return(categories, nil).Once()

	view := NewView(fetcher, DefaultPageSize)
	require.NoError(t, view.Load(context.Background()))
	fetcher.AssertExpectations(t)
	return view
}

func TestView_LoadInitializesDefaults(t *testing.T) {
	view := loadedView(t)

	assert.True(t, view.Loaded())
	assert.Empty(t, view.LoadError())

	sel := view.Selection()
	assert.Equal(t, query.CategoryAll, sel.Category)
	assert.Equal(t, 0.0, sel.MinPrice)
	assert.Equal(t, 500.0, sel.MaxPrice, "upper bound comes from the loaded price extrema")
	assert.Equal(t, query.SortDefault, sel.Sort)
	assert.Equal(t, 1, sel.Page)
	assert.Equal(t, DefaultPageSize, sel.PageSize)
	assert.False(t, view.HasActiveFilters())
}

func TestView_LoadFailsFast(t *testing.T) {
	_, categories := catalogFixture()
	fetcher := new(MockFetcher)
	fetcher.On("FetchAllProducts", mock.Anything).Return(nil, errors.New("upstream down"))
	fetcher.On("FetchCategories", mock.Anything).Return(categories, nil).Maybe()

	view := NewView(fetcher, DefaultPageSize)
	err := view.Load(context.Background())
	require.Error(t, err)

	// No partial dashboard: the successful categories fetch is not kept.
	assert.False(t, view.Loaded())
	assert.Contains(t, view.LoadError(), "upstream down")
	assert.Empty(t, view.Categories())
	assert.Zero(t, view.Stats().TotalProducts)
}

func TestView_FilterChangeResetsPage(t *testing.T) {
	products := make([]domain.Product, 30)
	for i := range products {
		products[i] = domain.Product{ID: int64(i + 1), Price: float64(i + 1), Category: "bulk"}
	}
	fetcher := new(MockFetcher)
	fetcher.On("FetchAllProducts", mock.Anything).Return(products, nil).Once()
	fetcher.On("FetchCategories", mock.Anything).Return([]string{"bulk"}, nil).Once()

	view := NewView(fetcher, DefaultPageSize)
	require.NoError(t, view.Load(context.Background()))

	view.SetPage(3)
	assert.Equal(t, 3, view.Selection().Page)

	view.SetCategory("bulk")
	assert.Equal(t, 1, view.Selection().Page, "changing a filter while on page 3 goes back to page 1")

	view.SetPage(3)
	view.SetSort(query.SortPriceDesc)
	assert.Equal(t, 1, view.Selection().Page)

	view.SetPage(3)
	view.SetPriceRange(0, 10)
	assert.Equal(t, 1, view.Selection().Page)

	view.SetPage(2)
	view.SetSearchTerm("x")
	assert.Equal(t, 1, view.Selection().Page)
}

func TestView_SetPageClamps(t *testing.T) {
	products := make([]domain.Product, 25)
	for i := range products {
		products[i] = domain.Product{ID: int64(i + 1)}
	}
	fetcher := new(MockFetcher)
	fetcher.On("FetchAllProducts", mock.Anything).Return(products, nil).Once()
	fetcher.On("FetchCategories", mock.Anything).Return([]string{}, nil).Once()

	view := NewView(fetcher, DefaultPageSize)
	require.NoError(t, view.Load(context.Background()))
	require.Equal(t, 3, view.TotalPages())

	view.SetPage(7)
	assert.Equal(t, 3, view.Selection().Page)
	view.SetPage(0)
	assert.Equal(t, 1, view.Selection().Page)
}

func TestView_ExtremePageOnEmptyFilteredSet(t *testing.T) {
	view := loadedView(t)

	// No product carries this category, so the filtered set is empty and the
	// requested page collapses to 1 rather than lingering in the selection.
	view.SetCategory("no-such-category")
	view.SetPage(math.MaxInt)
	assert.Equal(t, 1, view.Selection().Page)

	page := view.VisiblePage()
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalItems)
	assert.Equal(t, 0, page.TotalPages)
	assert.Empty(t, page.PageNumbers)
}

func TestView_VisiblePageWindows(t *testing.T) {
	products := make([]domain.Product, 25)
	for i := range products {
		products[i] = domain.Product{ID: int64(i + 1)}
	}
	fetcher := new(MockFetcher)
	fetcher.On("FetchAllProducts", mock.Anything).Return(products, nil).Once()
	fetcher.On("FetchCategories", mock.Anything).Return([]string{}, nil).Once()

	view := NewView(fetcher, DefaultPageSize)
	require.NoError(t, view.Load(context.Background()))

	page := view.VisiblePage()
	assert.Len(t, page.Items, 12)
	assert.Equal(t, 25, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, page.PageNumbers)

	view.SetPage(3)
	page = view.VisiblePage()
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(25), page.Items[0].ID)
}

func TestView_EndToEndCategoryThenSort(t *testing.T) {
	view := loadedView(t)

	view.SetCategory("A")
	view.SetSort(query.SortPriceDesc)

	page := view.VisiblePage()
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Items[0].ID) // 500
	assert.Equal(t, int64(1), page.Items[1].ID) // 5
}

func TestView_ClearFiltersKeepsSearchTerm(t *testing.T) {
	view := loadedView(t)

	view.SetSearchTerm("jacket")
	view.SetCategory("A")
	view.SetPriceRange(10, 100)
	view.SetSort(query.SortPriceAsc)
	require.True(t, view.HasActiveFilters())

	view.ClearFilters()
	sel := view.Selection()
	assert.Equal(t, query.CategoryAll, sel.Category)
	assert.Equal(t, 0.0, sel.MinPrice)
	assert.Equal(t, 500.0, sel.MaxPrice)
	assert.Equal(t, query.SortDefault, sel.Sort)
	assert.Equal(t, "jacket", sel.SearchTerm, "clear filters does not own the search term")

	// A non-empty search term still counts as an active filter.
	assert.True(t, view.HasActiveFilters())
	view.SetSearchTerm("  ")
	assert.False(t, view.HasActiveFilters(), "whitespace-only terms are not a filter")
}

func TestView_StatsComeFromRawCollection(t *testing.T) {
	view := loadedView(t)

	view.SetCategory("B")
	view.SetPriceRange(40, 60)

	stats := view.Stats()
	assert.Equal(t, 3, stats.TotalProducts, "stats ignore active filters")
	assert.Equal(t, 3, stats.TotalCategories, "category count comes from the category endpoint, not products")
	assert.InDelta(t, (5.0+50.0+500.0)/3.0, stats.AveragePrice, 1e-9)
	assert.Equal(t, 3, stats.InStock)
}
