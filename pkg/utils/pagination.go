package utils

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams holds pagination request parameters
type PaginationParams struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// PaginationMeta holds pagination response metadata
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// Normalize clamps page to >= 1 and limit to (0, MaxPageSize].
func (p PaginationParams) Normalize() PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset returns the SQL offset for a normalized params value.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta builds response metadata for totalCount rows.
func (p PaginationParams) Meta(totalCount int64) PaginationMeta {
	pages := 0
	if p.Limit > 0 {
		pages = int(math.Ceil(float64(totalCount) / float64(p.Limit)))
	}
	return PaginationMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: totalCount,
		TotalPages: pages,
	}
}
