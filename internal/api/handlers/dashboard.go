package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ocserv-tools/ocserv-panel/internal/occtl"
	"github.com/ocserv-tools/ocserv-panel/internal/utils"
	"github.com/ocserv-tools/ocserv-panel/pkg/logger"
)

// Dashboard returns the server overview: connected sessions, the raw status
// text, banned addresses and installed client routes.
func (h *Handlers) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	online, err := h.ctl.ShowUsers(ctx)
	if err != nil {
		logger.Error("dashboard: show users failed: %v", err)
		online = []occtl.OnlineUser{}
	}

	status, err := h.ctl.ShowStatus(ctx)
	if err != nil {
		utils.ProblemOcserv(c, "Failed to read server status")
		return
	}

	bans, err := h.ctl.ShowIPBans(ctx)
	if err != nil {
		logger.Error("dashboard: show ip bans failed: %v", err)
		bans = []occtl.IPBan{}
	}

	iroutes, err := h.ctl.ShowIRoutes(ctx)
	if err != nil {
		logger.Error("dashboard: show iroutes failed: %v", err)
		iroutes = []interface{}{}
	}

	utils.Success(c, DashboardResponse{
		OnlineUsers: online,
		ShowStatus:  status,
		ShowIPBans:  bans,
		ShowIRoutes: iroutes,
	})
}
