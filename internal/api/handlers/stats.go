package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ocserv-tools/ocserv-panel/internal/utils"
)

// statsDateLayout is the wire format for stats range parameters.
const statsDateLayout = "2006-01-02"

// defaultStatsWindow is the range used when no from/to is given.
const defaultStatsWindow = 30 * 24 * time.Hour

// UserTrafficHistory returns the daily RX/TX records for one VPN user.
func (h *Handlers) UserTrafficHistory(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	from, to, ok := parseStatsRange(c)
	if !ok {
		return
	}

	stats, err := h.trafficRepo.UserHistory(c.Request.Context(), id, from, to)
	if err != nil {
		utils.ProblemInternal(c, err)
		return
	}
	utils.Success(c, stats)
}

// DailyTrafficTotals returns panel-wide per-user daily usage.
func (h *Handlers) DailyTrafficTotals(c *gin.Context) {
	from, to, ok := parseStatsRange(c)
	if !ok {
		return
	}

	stats, err := h.trafficRepo.DailyTotals(c.Request.Context(), from, to)
	if err != nil {
		utils.ProblemInternal(c, err)
		return
	}
	utils.Success(c, stats)
}

// parseStatsRange reads optional from/to query parameters, falling back to
// the last 30 days.
func parseStatsRange(c *gin.Context) (time.Time, time.Time, bool) {
	to := time.Now()
	from := to.Add(-defaultStatsWindow)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(statsDateLayout, raw)
		if err != nil {
			utils.ProblemBadRequest(c, "from must be formatted as YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(statsDateLayout, raw)
		if err != nil {
			utils.ProblemBadRequest(c, "to must be formatted as YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}

	if to.Before(from) {
		utils.ProblemBadRequest(c, "to must not be before from")
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}
