package utils

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SliceCollection adapts an in-memory slice to the Collection interface.
// Used for record sets that arrive whole, like occtl listings.
type SliceCollection[T any] []T

// Count returns the slice length.
func (s SliceCollection[T]) Count(_ context.Context) (int64, error) {
	return int64(len(s)), nil
}

// Slice returns up to limit elements starting at offset.
func (s SliceCollection[T]) Slice(_ context.Context, offset, limit int64) ([]T, error) {
	n := int64(len(s))
	if offset >= n || offset < 0 {
		return []T{}, nil
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return s[offset:end], nil
}

// QueryCollection pages over an ordered sqlx SELECT with a matching COUNT
// query. Query must carry its own ORDER BY and no LIMIT clause.
type QueryCollection[T any] struct {
	DB         *sqlx.DB
	Query      string
	CountQuery string
	Args       []interface{}
}

// Count runs the count query.
func (q QueryCollection[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := q.DB.GetContext(ctx, &count, q.CountQuery, q.Args...); err != nil {
		return 0, err
	}
	return count, nil
}

// Slice runs the base query with LIMIT/OFFSET appended.
func (q QueryCollection[T]) Slice(ctx context.Context, offset, limit int64) ([]T, error) {
	args := make([]interface{}, 0, len(q.Args)+2)
	args = append(args, q.Args...)
	args = append(args, limit, offset)

	var records []T
	if err := q.DB.SelectContext(ctx, &records, q.Query+" LIMIT ? OFFSET ?", args...); err != nil {
		return nil, err
	}
	return records, nil
}
