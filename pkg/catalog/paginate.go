package catalog

import (
	"github.com/matst80/slask-storefront/pkg/types"
)

type Page struct {
	Items       []types.Product `json:"items"`
	TotalCount  int             `json:"totalCount"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
}

// Paginate slices the sorted list into the 1-based page of pageSize items.
// A page beyond the end yields an empty slice, not an error, the caller is
// expected to reset to page 1 when filters change.
func Paginate(products []types.Product, pageSize, page int) Page {
	if pageSize < 1 {
		pageSize = types.DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(products)
	result := Page{
		Items:       []types.Product{},
		TotalCount:  total,
		TotalPages:  (total + pageSize - 1) / pageSize,
		CurrentPage: page,
	}
	start := (page - 1) * pageSize
	if start >= total {
		return result
	}
	end := min(start+pageSize, total)
	result.Items = products[start:end]
	return result
}
