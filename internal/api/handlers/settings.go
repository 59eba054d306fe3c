package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ocserv-tools/ocserv-panel/internal/models"
	"github.com/ocserv-tools/ocserv-panel/internal/services"
	"github.com/ocserv-tools/ocserv-panel/internal/utils"
)

// UpdateSettingsRequest is the configuration patch payload. Omitted fields
// stay unchanged.
type UpdateSettingsRequest struct {
	DefaultConfigs   *models.ConfigMap `json:"default_configs"`
	CaptchaSiteKey   *string           `json:"captcha_site_key"`
	CaptchaSecretKey *string           `json:"captcha_secret_key"`
	DefaultTraffic   *int              `json:"default_traffic"`
}

// GetConfiguration returns the panel settings.
func (h *Handlers) GetConfiguration(c *gin.Context) {
	settings, err := h.settingsSvc.Get(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Configuration")
		return
	}
	utils.Success(c, settings)
}

// UpdateConfiguration patches the panel settings and pushes changed group
// defaults to ocserv.
func (h *Handlers) UpdateConfiguration(c *gin.Context) {
	var req UpdateSettingsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	settings, err := h.settingsSvc.Update(c.Request.Context(), services.UpdateSettingsRequest{
		DefaultConfigs:   req.DefaultConfigs,
		CaptchaSiteKey:   req.CaptchaSiteKey,
		CaptchaSecretKey: req.CaptchaSecretKey,
		DefaultTrafficGB: req.DefaultTraffic,
	})
	if err != nil {
		handleServiceError(c, err, "Configuration")
		return
	}
	c.JSON(http.StatusAccepted, settings)
}
