// Package pagination builds filtered, windowed result pages.
package pagination

import (
	"context"
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

type Query struct {
	Search string
	Page   int
	Limit  int
}

// Normalize trims the filter and clamps page and limit to at least 1.
// No upper bound is applied here.
func (q Query) Normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 1
	}
	return q
}

// Offset is the number of rows before the window. It saturates at
// math.MaxInt instead of overflowing, which leaves the window empty.
func (q Query) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

type Page[T any] struct {
	Items    []T  `json:"items"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	Limit    int  `json:"limit"`
	NextPage *int `json:"nextPage"`
}

// Source returns one window of rows matching filter plus the total number of
// matching rows. Rows come back newest first, ties broken by id ascending.
type Source[T any] interface {
	Window(ctx context.Context, filter string, offset, limit int) ([]T, int, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc[T any] func(ctx context.Context, filter string, offset, limit int) ([]T, int, error)

func (f SourceFunc[T]) Window(ctx context.Context, filter string, offset, limit int) ([]T, int, error) {
	return f(ctx, filter, offset, limit)
}

func Paginate[T any](ctx context.Context, src Source[T], q Query) (Page[T], error) {
	q = q.Normalize()

	items, total, err := src.Window(ctx, q.Search, q.Offset(), q.Limit)
	if err != nil {
		return Page[T]{}, err
	}
	return NewPage(items, total, q), nil
}

func NewPage[T any](items []T, total int, q Query) Page[T] {
	if items == nil {
		items = []T{}
	}

	page := Page[T]{
		Items: items,
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
	}
	// total > page*limit, without the product.
	if total > 0 && q.Limit > 0 && q.Page <= (total-1)/q.Limit {
		next := q.Page + 1
		page.NextPage = &next
	}
	return page
}
