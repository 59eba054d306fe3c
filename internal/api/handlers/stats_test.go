package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsContext(t *testing.T, query string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/stats/daily"+query, nil)
	return c, w
}

func TestParseStatsRangeExplicit(t *testing.T) {
	c, _ := statsContext(t, "?from=2026-08-01&to=2026-08-15")

	from, to, ok := parseStatsRange(c)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), to)
}

func TestParseStatsRangeDefaultsToLast30Days(t *testing.T) {
	c, _ := statsContext(t, "")

	from, to, ok := parseStatsRange(c)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), to, time.Minute)
	assert.WithinDuration(t, time.Now().Add(-30*24*time.Hour), from, time.Minute)
}

func TestParseStatsRangeRejectsBadDate(t *testing.T) {
	c, w := statsContext(t, "?from=15-08-2026")

	_, _, ok := parseStatsRange(c)
	assert.False(t, ok)
	assert.Equal(t, 400, w.Code)
}

func TestParseStatsRangeRejectsInvertedRange(t *testing.T) {
	c, w := statsContext(t, "?from=2026-08-15&to=2026-08-01")

	_, _, ok := parseStatsRange(c)
	assert.False(t, ok)
	assert.Equal(t, 400, w.Code)
}
