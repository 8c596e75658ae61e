package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationTotalPages(t *testing.T) {
	assert.Equal(t, Pagination{Total: 41, Page: 2, PerPage: 20, TotalPages: 3}, NewPagination(2, 20, 41))
	assert.Equal(t, 2, NewPagination(1, 20, 40).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 20, 0).TotalPages)
	assert.Equal(t, Pagination{Total: 5, Page: 1, PerPage: 20, TotalPages: 1}, NewPagination(0, 0, 5))
}

func TestNewPageRequestClamps(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, PerPage: 20, Offset: 0}, NewPageRequest(1, 20))
	assert.Equal(t, PageRequest{Page: 3, PerPage: 10, Offset: 20}, NewPageRequest(3, 10))
	assert.Equal(t, PageRequest{Page: 1, PerPage: 1, Offset: 0}, NewPageRequest(-4, 0))
	assert.Equal(t, PageRequest{Page: 2, PerPage: MaxPerPage, Offset: MaxPerPage}, NewPageRequest(2, 1000))
}

func TestNewPageRequestOffsetNeverOverflows(t *testing.T) {
	for _, perPage := range []int{1, 20, MaxPerPage, 1000} {
		req := NewPageRequest(math.MaxInt, perPage)
		assert.Equal(t, MaxPage, req.Page)
		assert.GreaterOrEqual(t, req.Offset, 0, "per_page=%d", perPage)
		assert.Equal(t, (MaxPage-1)*req.PerPage, req.Offset)
	}
}
