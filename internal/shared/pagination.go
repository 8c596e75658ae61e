package shared

import "math"

// MaxPerPage caps the page size a caller can request.
const MaxPerPage = 100

// MaxPage caps the page number so the row offset cannot overflow.
const MaxPage = math.MaxInt / MaxPerPage

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// PageRequest is a sanitised page/per_page pair with its row offset.
type PageRequest struct {
	Page    int
	PerPage int
	Offset  int
}

// NewPageRequest clamps page to [1, MaxPage] and perPage to [1, MaxPerPage].
func NewPageRequest(page, perPage int) PageRequest {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return PageRequest{Page: page, PerPage: perPage, Offset: (page - 1) * perPage}
}
