package shared

import (
	"errors"
	"net/url"
	"strconv"
)

// Listing defaults.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ErrInvalidPage is returned for non-numeric or non-positive paging params.
var ErrInvalidPage = errors.New("page and per_page must be positive integers")

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata. Out of range values fall back
// to the first page and the default page size.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// ParsePagination reads page and per_page from a query string. Missing
// values yield zero so NewPagination applies its defaults.
func ParsePagination(q url.Values) (page, perPage int, err error) {
	if page, err = positive(q.Get("page")); err != nil {
		return 0, 0, err
	}
	if perPage, err = positive(q.Get("per_page")); err != nil {
		return 0, 0, err
	}
	return page, perPage, nil
}

// Bounds returns the slice window of the current page.
func (p Pagination) Bounds() (start, end int) {
	start = (p.Page - 1) * p.PerPage
	if start > p.Total {
		start = p.Total
	}
	end = start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// Paginate returns the requested page of items together with its metadata.
func Paginate[T any](items []T, page, perPage int) ([]T, Pagination) {
	p := NewPagination(page, perPage, len(items))
	start, end := p.Bounds()
	return items[start:end], p
}

func positive(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, ErrInvalidPage
	}
	return n, nil
}
