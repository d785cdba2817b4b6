// Package query implements the in-memory product query pipeline: search,
// category and price filters, sorting, pagination and catalog statistics.
// Every function is pure and total: no input slice is ever mutated, and no
// input produces an error (empty in, empty out).
package query

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"catalog-dashboard/internal/domain"
)

// SortKey selects the ordering applied by Sort.
type SortKey string

const (
	SortDefault    SortKey = "default"     // source order, as received upstream
	SortPriceAsc   SortKey = "price-asc"   // numeric ascending on price
	SortPriceDesc  SortKey = "price-desc"  // numeric descending on price
	SortRatingDesc SortKey = "rating-desc" // numeric descending on rating rate
)

// ParseSortKey validates a user-supplied sort key. The empty string maps to
// SortDefault so callers can pass query parameters through unchecked.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", SortDefault:
		return SortDefault, nil
	case SortPriceAsc, SortPriceDesc, SortRatingDesc:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("query: invalid sort key %q", s)
}

// Search retains products whose title or description contains term as a
// case-insensitive substring. A term that trims to empty is the identity.
func Search(products []domain.Product, term string) []domain.Product {
	term = strings.TrimSpace(term)
	if term == "" {
		return products
	}
	term = strings.ToLower(term)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByCategory retains products whose category label matches exactly
// (case-sensitive). An empty category or the sentinel "all" is the identity.
func FilterByCategory(products []domain.Product, category string) []domain.Product {
	if category == "" || category == CategoryAll {
		return products
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// CategoryAll is the sentinel meaning "no category filter".
const CategoryAll = "all"

// FilterByPriceRange retains products priced within [min, max], inclusive on
// both ends. Bounds are not validated or swapped: min > max yields an empty
// result.
func FilterByPriceRange(products []domain.Product, min, max float64) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Price >= min && p.Price <= max {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a copy of products ordered by key. The sort is stable, so
// equal-key products keep their prior relative order; SortDefault keeps the
// source order untouched.
func Sort(products []domain.Product, key SortKey) []domain.Product {
	sorted := make([]domain.Product, len(products))
	copy(sorted, products)

	switch key {
	case SortPriceAsc:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })
	case SortPriceDesc:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price > sorted[j].Price })
	case SortRatingDesc:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rating.Rate > sorted[j].Rating.Rate })
	}
	return sorted
}

// Paginate slices the 1-based page of size pageSize out of an already
// filtered and sorted sequence. A page beyond the available range yields an
// empty slice; callers that want to avoid presenting an empty page must clamp
// page into [1, TotalPages] themselves.
func Paginate(products []domain.Product, page, pageSize int) []domain.Product {
	if page < 1 || pageSize < 1 || page > TotalPages(len(products), pageSize) {
		return []domain.Product{}
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}

// TotalPages is ceil(totalItems / pageSize); zero items means zero pages.
func TotalPages(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// AveragePrice is the arithmetic mean price, defined as 0 for an empty
// collection so display code never sees a NaN.
func AveragePrice(products []domain.Product) float64 {
	if len(products) == 0 {
		return 0
	}
	prices := make([]float64, len(products))
	for i, p := range products {
		prices[i] = p.Price
	}
	mean, err := stats.Mean(prices)
	if err != nil {
		return 0
	}
	return mean
}

// UniqueCategories returns the distinct category labels present in products,
// in first-seen order.
func UniqueCategories(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// PriceBounds derives the full price-range filter bounds for a loaded
// collection: lower bound 0, upper bound the max price rounded up to a whole
// amount. An empty collection yields (0, 0).
func PriceBounds(products []domain.Product) (min, max float64) {
	if len(products) == 0 {
		return 0, 0
	}
	highest := products[0].Price
	for _, p := range products[1:] {
		if p.Price > highest {
			highest = p.Price
		}
	}
	return 0, math.Ceil(highest)
}
