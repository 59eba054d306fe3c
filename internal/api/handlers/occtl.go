package handlers

import (
	"net"

	"github.com/gin-gonic/gin"

	"github.com/ocserv-tools/ocserv-panel/internal/utils"
)

// OnlineUsers returns the currently connected VPN sessions.
func (h *Handlers) OnlineUsers(c *gin.Context) {
	users, err := h.ctl.ShowUsers(c.Request.Context())
	if err != nil {
		utils.ProblemOcserv(c, "Failed to list connected sessions")
		return
	}
	utils.Success(c, users)
}

// ServerStatus returns the raw occtl status text.
func (h *Handlers) ServerStatus(c *gin.Context) {
	status, err := h.ctl.ShowStatus(c.Request.Context())
	if err != nil {
		utils.ProblemOcserv(c, "Failed to read server status")
		return
	}
	utils.Success(c, gin.H{"show_status": status})
}

// ListIPBans returns the banned client addresses. With ?points=true the
// response includes every scored address, banned or not.
func (h *Handlers) ListIPBans(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("points") == "true" {
		bans, err := h.ctl.ShowIPBanPoints(ctx)
		if err != nil {
			utils.ProblemOcserv(c, "Failed to list ban points")
			return
		}
		utils.Success(c, bans)
		return
	}

	bans, err := h.ctl.ShowIPBans(ctx)
	if err != nil {
		utils.ProblemOcserv(c, "Failed to list banned addresses")
		return
	}
	utils.Success(c, bans)
}

// UnbanIPRequest is the payload for removing an address ban.
type UnbanIPRequest struct {
	IP string `json:"ip" binding:"required"`
}

// UnbanIP removes a ban for a client address.
func (h *Handlers) UnbanIP(c *gin.Context) {
	var req UnbanIPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if net.ParseIP(req.IP) == nil {
		utils.ProblemBadRequest(c, "Invalid IP address")
		return
	}

	if err := h.ctl.UnbanIP(c.Request.Context(), req.IP); err != nil {
		utils.ProblemOcserv(c, "Failed to unban address")
		return
	}
	utils.NoContent(c)
}

// ListIRoutes returns the routes installed for connected clients.
func (h *Handlers) ListIRoutes(c *gin.Context) {
	iroutes, err := h.ctl.ShowIRoutes(c.Request.Context())
	if err != nil {
		utils.ProblemOcserv(c, "Failed to list client routes")
		return
	}
	utils.Success(c, iroutes)
}

// ReloadServer asks ocserv to re-read its configuration.
func (h *Handlers) ReloadServer(c *gin.Context) {
	if err := h.ctl.Reload(c.Request.Context()); err != nil {
		utils.ProblemOcserv(c, "Failed to reload server")
		return
	}
	utils.NoContent(c)
}
