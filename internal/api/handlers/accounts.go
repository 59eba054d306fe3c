package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ocserv-tools/ocserv-panel/internal/auth"
	"github.com/ocserv-tools/ocserv-panel/internal/models"
	"github.com/ocserv-tools/ocserv-panel/internal/services"
	"github.com/ocserv-tools/ocserv-panel/internal/utils"
	"github.com/ocserv-tools/ocserv-panel/internal/validation"
)

// SetupRequest is the one-time initial configuration payload.
type SetupRequest struct {
	Username         string           `json:"username" binding:"required"`
	Password         string           `json:"password" binding:"required"`
	DefaultConfigs   models.ConfigMap `json:"default_configs"`
	CaptchaSiteKey   string           `json:"captcha_site_key"`
	CaptchaSecretKey string           `json:"captcha_secret_key"`
	DefaultTraffic   int              `json:"default_traffic"`
}

// Setup creates the admin account and the initial panel settings.
// It can only run once; later calls answer with a conflict.
func (h *Handlers) Setup(c *gin.Context) {
	var req SetupRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if result := validation.New().
		CheckUsername("username", req.Username).
		CheckPassword("password", req.Password, 8); result.HasErrors() {
		handleServiceError(c, result.ToError(), "Setup")
		return
	}

	ctx := c.Request.Context()

	account, err := h.accountSvc.CreateAdmin(ctx, req.Username, req.Password)
	if err != nil {
		handleServiceError(c, err, "Admin config")
		return
	}

	settings, err := h.settingsSvc.Initialize(ctx, services.SetupRequest{
		DefaultConfigs:   req.DefaultConfigs,
		CaptchaSiteKey:   req.CaptchaSiteKey,
		CaptchaSecretKey: req.CaptchaSecretKey,
		DefaultTrafficGB: req.DefaultTraffic,
	})
	if err != nil {
		handleServiceError(c, err, "Panel settings")
		return
	}

	utils.Created(c, SetupResponse{User: account, Settings: settings})
}

// Account returns a panel account by ID for the session endpoints.
func (h *Handlers) Account(ctx context.Context, id int64) (*models.Account, error) {
	return h.accountSvc.GetByID(ctx, id)
}

// StaffRequest is the payload for creating a staff account.
type StaffRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ListStaffs returns all staff accounts.
func (h *Handlers) ListStaffs(c *gin.Context) {
	staffs, err := h.accountSvc.ListStaffs(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Staff")
		return
	}
	utils.Success(c, staffs)
}

// CreateStaff creates a staff account. Posting an existing username
// returns the existing account with a 200.
func (h *Handlers) CreateStaff(c *gin.Context) {
	var req StaffRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if result := validation.New().
		CheckUsername("username", req.Username).
		CheckPassword("password", req.Password, 8); result.HasErrors() {
		handleServiceError(c, result.ToError(), "Staff")
		return
	}

	account, created, err := h.accountSvc.CreateStaff(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c, err, "Staff")
		return
	}

	if created {
		utils.Created(c, account)
		return
	}
	utils.Success(c, account)
}

// DeleteStaff removes a staff account.
func (h *Handlers) DeleteStaff(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	if err := h.accountSvc.DeleteStaff(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "Staff")
		return
	}
	utils.NoContent(c)
}

// SuspendStaff blocks a staff account from logging in.
func (h *Handlers) SuspendStaff(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	if err := h.accountSvc.Suspend(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "Staff")
		return
	}
	c.Status(http.StatusAccepted)
}

// UnsuspendStaff restores a suspended staff account.
func (h *Handlers) UnsuspendStaff(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	if err := h.accountSvc.Unsuspend(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "Staff")
		return
	}
	c.Status(http.StatusAccepted)
}

// ChangePasswordRequest is the payload for a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// ChangePassword updates the password of the authenticated account.
func (h *Handlers) ChangePassword(c *gin.Context) {
	accountID, ok := auth.AccountID(c)
	if !ok {
		utils.ProblemUnauthorized(c, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if result := validation.New().
		CheckPassword("password", req.Password, 8); result.HasErrors() {
		handleServiceError(c, result.ToError(), "Password")
		return
	}

	err := h.accountSvc.ChangePassword(c.Request.Context(), accountID, req.OldPassword, req.Password)
	if err != nil {
		handleServiceError(c, err, "Password")
		return
	}
	c.Status(http.StatusAccepted)
}
