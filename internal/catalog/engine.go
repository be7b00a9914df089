// Package catalog produces the filtered and sorted product view shown to
// shoppers. It never mutates the source collection.
package catalog

import (
	"sort"
	"strings"

	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/product"
)

// AllCategories is the category sentinel that matches every product.
const AllCategories = "all"

type SortKey string

const (
	SortFeatured   SortKey = "featured"
	SortNewest     SortKey = "newest"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortRatingDesc SortKey = "rating-desc"
)

// ParseSortKey accepts the canonical keys plus the legacy aliases
// price-low, price-high and rating. Empty means featured.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SortFeatured):
		return SortFeatured, nil
	case string(SortNewest):
		return SortNewest, nil
	case string(SortPriceAsc), "price-low":
		return SortPriceAsc, nil
	case string(SortPriceDesc), "price-high":
		return SortPriceDesc, nil
	case string(SortRatingDesc), "rating":
		return SortRatingDesc, nil
	}
	return "", apperror.Invalid("sort", "unknown sort key "+s)
}

// Query holds the three composable inputs of the view.
type Query struct {
	Search   string
	Category string
	Sort     SortKey
}

// Apply filters src by search and category, then sorts the matches. The
// result is a fresh slice; src is left untouched.
func Apply(src []product.Product, q Query) []product.Product {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]product.Product, 0, len(src))
	for _, p := range src {
		if matchesSearch(p, needle) && matchesCategory(p, q.Category) {
			out = append(out, p)
		}
	}
	sortProducts(out, q.Sort)
	return out
}

func matchesSearch(p product.Product, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Category), needle)
}

func matchesCategory(p product.Product, category string) bool {
	return category == "" || category == AllCategories || p.Category == category
}

func sortProducts(ps []product.Product, key SortKey) {
	var less func(a, b product.Product) bool
	switch key {
	case SortNewest:
		less = func(a, b product.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortPriceAsc:
		less = func(a, b product.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b product.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortRatingDesc:
		less = func(a, b product.Product) bool { return a.Rating > b.Rating }
	default:
		return
	}
	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}

// Categories returns "all" followed by the distinct category labels in order
// of first appearance in src.
func Categories(src []product.Product) []string {
	seen := make(map[string]struct{}, len(src))
	out := []string{AllCategories}
	for _, p := range src {
		if p.Category == "" || p.Category == AllCategories {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
