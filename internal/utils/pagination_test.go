package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecords(n int) SliceCollection[string] {
	records := make(SliceCollection[string], n)
	for i := range records {
		records[i] = fmt.Sprintf("record-%d", i+1)
	}
	return records
}

func TestPaginateEmptyCollection(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		req  PageRequest
		page int64
	}{
		{"no params", PageRequest{}, 1},
		{"explicit page", PageRequest{Page: "7"}, 7},
		{"non-numeric page", PageRequest{Page: "abc"}, 1},
		{"huge item_per_page", PageRequest{ItemPerPage: "9999"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Paginate(ctx, SliceCollection[string]{}, tt.req, nil)
			require.NoError(t, err)

			assert.Equal(t, int64(1), result.Pages)
			assert.Equal(t, tt.page, result.Page)
			assert.Equal(t, []any{}, result.Result)
			assert.Nil(t, result.TotalCount)
		})
	}
}

func TestPaginateEmptyShapeOmitsTotalCount(t *testing.T) {
	ctx := context.Background()

	empty, err := Paginate(ctx, SliceCollection[string]{}, PageRequest{}, nil)
	require.NoError(t, err)

	body, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "total_count")

	full, err := Paginate(ctx, makeRecords(3), PageRequest{}, nil)
	require.NoError(t, err)

	body, err = json.Marshal(full)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"total_count":3`)
}

func TestPaginatePageSizeClampsToCollectionSize(t *testing.T) {
	ctx := context.Background()
	col := makeRecords(5)

	result, err := Paginate(ctx, col, PageRequest{ItemPerPage: "50"}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Pages)
	require.NotNil(t, result.TotalCount)
	assert.Equal(t, int64(5), *result.TotalCount)

	records, ok := result.Result.([]string)
	require.True(t, ok)
	assert.Len(t, records, 5)
}

func TestPaginateNonNumericPageCoercesToOne(t *testing.T) {
	ctx := context.Background()
	col := makeRecords(10)

	for _, raw := range []string{"", "abc", "-3", "0", "1.5", "9e9e9"} {
		result, err := Paginate(ctx, col, PageRequest{Page: raw, ItemPerPage: "4"}, nil)
		require.NoError(t, err, "page=%q", raw)
		assert.Equal(t, int64(1), result.Page, "page=%q", raw)
	}
}

func TestPaginateNonNumericItemPerPageDefaults(t *testing.T) {
	ctx := context.Background()
	col := makeRecords(250)

	result, err := Paginate(ctx, col, PageRequest{ItemPerPage: "lots"}, nil)
	require.NoError(t, err)

	// default of 100 over 250 records
	assert.Equal(t, int64(3), result.Pages)
	records := result.Result.([]string)
	assert.Len(t, records, 100)
}

func TestPaginate250RecordsBy100(t *testing.T) {
	ctx := context.Background()
	col := makeRecords(250)

	page1, err := Paginate(ctx, col, PageRequest{Page: "1", ItemPerPage: "100"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page1.Pages)
	assert.Len(t, page1.Result.([]string), 100)
	assert.Equal(t, "record-1", page1.Result.([]string)[0])

	page3, err := Paginate(ctx, col, PageRequest{Page: "3", ItemPerPage: "100"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page3.Pages)
	assert.Len(t, page3.Result.([]string), 50)
	assert.Equal(t, "record-201", page3.Result.([]string)[0])
	require.NotNil(t, page3.TotalCount)
	assert.Equal(t, int64(250), *page3.TotalCount)
}

func TestPaginateOutOfRangePageFallsBackToFirst(t *testing.T) {
	ctx := context.Background()
	col := makeRecords(250)

	result, err := Paginate(ctx, col, PageRequest{Page: "99", ItemPerPage: "100"}, nil)
	require.NoError(t, err)

	// page 1's records with the requested page number preserved
	records := result.Result.([]string)
	assert.Len(t, records, 100)
	assert.Equal(t, "record-1", records[0])
	assert.Equal(t, int64(99), result.Page)
	assert.Equal(t, int64(3), result.Pages)
}

func TestPaginatePagesNeverZero(t *testing.T) {
	ctx := context.Background()

	for _, size := range []int{0, 1, 2, 99, 100, 101} {
		result, err := Paginate(ctx, makeRecords(size), PageRequest{}, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Pages, int64(1), "size=%d", size)
	}
}

func TestPaginateFormatterSeesOnlySelectedSlice(t *testing.T) {
	ctx := context.Background()
	col := makeRecords(30)

	var seen []string
	format := func(records []string) any {
		seen = records
		out := make([]map[string]string, len(records))
		for i, r := range records {
			out[i] = map[string]string{"name": r}
		}
		return out
	}

	result, err := Paginate(ctx, col, PageRequest{Page: "2", ItemPerPage: "10"}, format)
	require.NoError(t, err)

	assert.Len(t, seen, 10)
	assert.Equal(t, "record-11", seen[0])

	formatted := result.Result.([]map[string]string)
	require.Len(t, formatted, 10)
	assert.Equal(t, "record-11", formatted[0]["name"])
}

func TestSliceCollectionBounds(t *testing.T) {
	ctx := context.Background()
	col := makeRecords(3)

	out, err := col.Slice(ctx, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = col.Slice(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"record-3"}, out)
}

func TestParsePositive(t *testing.T) {
	tests := []struct {
		raw   string
		value int64
		ok    bool
	}{
		{"1", 1, true},
		{"100", 100, true},
		{"", 0, false},
		{"0", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
		{"3.5", 0, false},
		{" 2", 0, false},
	}

	for _, tt := range tests {
		value, ok := ParsePositive(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		if tt.ok {
			assert.Equal(t, tt.value, value, "raw=%q", tt.raw)
		}
	}
}
