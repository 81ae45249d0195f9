package models

// Pagination describes paging metadata returned alongside list payloads.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NewPagination computes pagination metadata from raw totals.
func NewPagination(page, size, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return &Pagination{Page: page, PageSize: size, TotalCount: total}
}
