// Package handlers provides HTTP request handlers for all API endpoints.
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/ocserv-tools/ocserv-panel/internal/apperrors"
	"github.com/ocserv-tools/ocserv-panel/internal/config"
	"github.com/ocserv-tools/ocserv-panel/internal/occtl"
	"github.com/ocserv-tools/ocserv-panel/internal/repository"
	"github.com/ocserv-tools/ocserv-panel/internal/services"
	"github.com/ocserv-tools/ocserv-panel/internal/utils"
	"github.com/ocserv-tools/ocserv-panel/pkg/logger"
)

// Handlers contains all the dependencies needed by the API handlers.
type Handlers struct {
	db          *sqlx.DB
	config      *config.Config
	ctl         *occtl.Service
	accountSvc  *services.AccountService
	userSvc     *services.OcservUserService
	groupSvc    *services.GroupService
	settingsSvc *services.SettingsService
	trafficRepo *repository.TrafficRepository
}

// NewHandlers creates a new Handlers instance with all required dependencies.
func NewHandlers(
	db *sqlx.DB,
	cfg *config.Config,
	ctl *occtl.Service,
	accountSvc *services.AccountService,
	userSvc *services.OcservUserService,
	groupSvc *services.GroupService,
	settingsSvc *services.SettingsService,
	trafficRepo *repository.TrafficRepository,
) *Handlers {
	return &Handlers{
		db:          db,
		config:      cfg,
		ctl:         ctl,
		accountSvc:  accountSvc,
		userSvc:     userSvc,
		groupSvc:    groupSvc,
		settingsSvc: settingsSvc,
		trafficRepo: trafficRepo,
	}
}

// handleServiceError converts apperrors.Error to appropriate HTTP responses.
// Internal error details are logged but never exposed to clients.
func handleServiceError(c *gin.Context, err error, resource string) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		if appErr.Internal != "" {
			logger.Error("%s error: %s (internal: %s)", resource, appErr.Message, appErr.Internal)
		}
		if appErr.Err != nil {
			logger.Error("%s underlying error: %v", resource, appErr.Err)
		}

		switch appErr.Code {
		case apperrors.CodeNotFound:
			utils.ProblemNotFound(c, resource)
		case apperrors.CodeDuplicate:
			utils.ProblemDuplicate(c, resource)
		case apperrors.CodeInvalidInput, apperrors.CodeValidation:
			utils.ProblemBadRequest(c, appErr.Message)
		case apperrors.CodeOcserv:
			utils.ProblemOcserv(c, appErr.Message)
		case apperrors.CodeUnauthorized:
			utils.ProblemUnauthorized(c, appErr.Message)
		case apperrors.CodeForbidden:
			utils.ProblemForbidden(c, appErr.Message)
		default:
			utils.ProblemInternal(c, err)
		}
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.ProblemNotFound(c, resource)
	case errors.Is(err, services.ErrDuplicate):
		utils.ProblemDuplicate(c, resource)
	case errors.Is(err, services.ErrInvalidInput):
		utils.ProblemBadRequest(c, "Invalid input data")
	case errors.Is(err, services.ErrOcservError):
		utils.ProblemOcserv(c, "ocserv control command failed")
	default:
		utils.ProblemInternal(c, err)
	}
}
