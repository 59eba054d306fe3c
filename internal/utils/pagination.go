// Package utils provides shared utility functions for HTTP handlers, database operations, and queries.
package utils

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
)

// DefaultItemPerPage is the page size used when the client does not send a
// usable item_per_page value.
const DefaultItemPerPage = 100

// PageRequest carries the raw pagination values from the query string.
// Values are kept as strings so malformed input can be coerced instead of
// rejected.
type PageRequest struct {
	Page        string
	ItemPerPage string
}

// PageRequestFromQuery extracts pagination parameters from the request.
func PageRequestFromQuery(c *gin.Context) PageRequest {
	return PageRequest{
		Page:        c.Query("page"),
		ItemPerPage: c.Query("item_per_page"),
	}
}

// Collection is an ordered, countable record source that can serve bounded
// slices of itself. Implementations read a fresh snapshot on every call.
type Collection[T any] interface {
	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int64, error)
	// Slice returns up to limit records starting at offset, preserving order.
	Slice(ctx context.Context, offset, limit int64) ([]T, error)
}

// Formatter converts a page of raw records into client-facing values.
// It is only ever applied to the selected slice, never the full collection.
type Formatter[T any] func(records []T) any

// PageResult is a serialized page. TotalCount is omitted from the JSON body
// for empty collections, which produces a distinct response shape from the
// non-empty case.
type PageResult struct {
	Result     any    `json:"result"`
	Pages      int64  `json:"pages"`
	Page       int64  `json:"page"`
	TotalCount *int64 `json:"total_count,omitempty"`
}

// ParsePositive parses a positive integer from a raw query value and reports
// whether the value was usable.
func ParsePositive(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Paginate slices a collection into fixed-size pages and serializes the
// requested page with format. Malformed pagination input never fails the
// request: a non-numeric page falls back to 1, a non-numeric item_per_page
// falls back to DefaultItemPerPage, and an out-of-range page serves page 1's
// records. Only collection I/O errors are returned.
func Paginate[T any](ctx context.Context, col Collection[T], req PageRequest, format Formatter[T]) (PageResult, error) {
	page, ok := ParsePositive(req.Page)
	if !ok {
		page = 1
	}

	count, err := col.Count(ctx)
	if err != nil {
		return PageResult{}, err
	}

	if count == 0 {
		return PageResult{Result: []any{}, Pages: 1, Page: page}, nil
	}

	itemPerPage, ok := ParsePositive(req.ItemPerPage)
	if !ok {
		itemPerPage = DefaultItemPerPage
	}
	if itemPerPage > count {
		itemPerPage = count
	}

	// count > 0 here, so the clamp guarantees itemPerPage >= 1 and the page
	// arithmetic cannot divide by zero.
	pages := (count + itemPerPage - 1) / itemPerPage
	if pages < 1 {
		pages = 1
	}

	// Out-of-range pages serve page 1 while the reported page number keeps
	// the requested value.
	effective := page
	if effective > pages {
		effective = 1
	}

	records, err := col.Slice(ctx, (effective-1)*itemPerPage, itemPerPage)
	if err != nil {
		return PageResult{}, err
	}

	var result any = records
	if format != nil {
		result = format(records)
	}

	return PageResult{Result: result, Pages: pages, Page: page, TotalCount: &count}, nil
}
