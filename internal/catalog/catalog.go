// Package catalog filters the product list for the storefront and the
// inventory screen.
package catalog

import (
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rjpc/storefront/internal/models"
)

const (
	AllCategories = "All"
	AllBrands     = "All Brands"
)

// Categories is the storefront's fixed category bar, "All" first.
var Categories = []string{
	AllCategories, "Blade", "Rubber", "Pips", "Table Tennis ball",
	"Table Tennis Table", "Pickleball", "Apparel", "Shoes",
}

// Filter is the storefront query. Empty, "All" and "All Brands" mean no filter.
type Filter struct {
	Category string `form:"category"`
	Brand    string `form:"brand"`
	Search   string `form:"search"`
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AllCategories) || strings.EqualFold(v, AllBrands)
}

// sameSlug compares two labels by slug so "Table Tennis ball" matches
// "table-tennis-ball" and brand casing does not matter.
func sameSlug(a, b string) bool {
	return slug.Make(a) == slug.Make(b)
}

// Apply returns the products matching every set criterion, keeping input order.
func Apply(products []models.Product, f Filter) []models.Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := []models.Product{}
	for _, p := range products {
		if !isAll(f.Category) && !sameSlug(p.Category, f.Category) {
			continue
		}
		if !isAll(f.Brand) && !sameSlug(p.Brand, f.Brand) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Brands lists the distinct non-empty brands, sorted, with "All Brands" first.
func Brands(products []models.Product) []string {
	seen := map[string]bool{}
	brands := []string{}
	for _, p := range products {
		b := strings.TrimSpace(p.Brand)
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		brands = append(brands, b)
	}
	sort.Strings(brands)
	return append([]string{AllBrands}, brands...)
}

// TotalStock sums stock across a product's variations.
func TotalStock(p models.Product) int {
	total := 0
	for _, v := range p.Variations {
		total += v.Stock
	}
	return total
}

// AdminSearch matches the inventory screen's search box against name, brand
// and category.
func AdminSearch(products []models.Product, term string) []models.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}
	out := []models.Product{}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Brand), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			out = append(out, p)
		}
	}
	return out
}
