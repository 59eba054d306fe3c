// Package api wires the HTTP routes, middleware and services of the panel.
package api

import (
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"github.com/ocserv-tools/ocserv-panel/internal/api/handlers"
	"github.com/ocserv-tools/ocserv-panel/internal/auth"
	"github.com/ocserv-tools/ocserv-panel/internal/config"
	"github.com/ocserv-tools/ocserv-panel/internal/occtl"
	"github.com/ocserv-tools/ocserv-panel/internal/ocpasswd"
	"github.com/ocserv-tools/ocserv-panel/internal/repository"
	"github.com/ocserv-tools/ocserv-panel/internal/services"
)

// SetupRouter configures and returns the main API router with all routes and middleware.
func SetupRouter(db *sqlx.DB, gdb *gorm.DB, cfg *config.Config) *gin.Engine {
	// Control tool services
	ctl := occtl.NewService(&cfg.Ocserv)
	passwd := ocpasswd.NewService(&cfg.Ocserv)

	// Repositories
	userRepo := repository.NewOcservUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	trafficRepo := repository.NewTrafficRepository(db)
	txManager := repository.NewTxManager(db)

	// Domain services
	accountSvc := services.NewAccountService(gdb)
	userSvc := services.NewOcservUserService(userRepo, settingsRepo, txManager, passwd, ctl)
	groupSvc := services.NewGroupService(groupRepo, &cfg.Ocserv, ctl)
	settingsSvc := services.NewSettingsService(settingsRepo, groupSvc)

	h := handlers.NewHandlers(db, cfg, ctl, accountSvc, userSvc, groupSvc, settingsSvc, trafficRepo)

	// Auth configuration
	authConfig := &auth.Config{
		Method: config.AuthMethod(cfg.Auth.Method),
		OIDC: auth.OIDCConfig{
			ProviderURL:  cfg.Auth.OIDCProviderURL,
			ClientID:     cfg.Auth.OIDCClientID,
			ClientSecret: cfg.Auth.OIDCClientSecret,
			RedirectURL:  cfg.Auth.OIDCRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
		},
		Local: auth.LocalConfig{
			Enabled:           config.AuthMethod(cfg.Auth.Method).SupportsLocal(),
			MinPasswordLength: 8,
			MaxFailedAttempts: 5,
		},
		Session: auth.SessionConfig{
			StoreType:      "memory",
			MaxAge:         86400,
			CookieName:     "ocpanel_session",
			CookiePath:     "/",
			CookieDomain:   cfg.Auth.CookieDomain,
			CookieSecure:   cfg.Environment == config.EnvProduction,
			CookieHTTPOnly: true,
			CookieSameSite: cfg.Auth.CookieSameSite,
			SecretKey:      cfg.Auth.SessionSecret,
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	authService, err := auth.NewService(authConfig, gdb)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}

	// Frontend URL is required for OAuth redirects
	frontendURL := os.Getenv("OCPANEL_FRONTEND_URL")
	if frontendURL == "" && config.AuthMethod(cfg.Auth.Method).SupportsOIDC() {
		log.Fatalf("OCPANEL_FRONTEND_URL is required when OAuth/OIDC is enabled")
	}
	authHandlers := NewAuthHandlers(authService, frontendURL, h)

	if cfg.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r := gin.Default()

	// Request IDs feed the trace_id field of problem responses
	r.Use(requestIDMiddleware())

	// Session middleware - must be first
	r.Use(authService.SessionMiddleware())

	// CORS middleware
	r.Use(corsMiddleware(cfg))

	v1 := r.Group("/api/v1")
	{
		// Authentication configuration (public)
		v1.GET("/auth/config", authHandlers.GetAuthConfig)

		// One-time admin setup (public until an admin exists)
		v1.POST("/admin/setup", h.Setup)

		// Authentication endpoints
		session := v1.Group("/session")
		{
			session.POST("/login", authHandlers.Login)
			session.GET("/oauth/start", authHandlers.StartOAuthFlow)
			session.GET("/oauth/callback", authHandlers.HandleOAuthCallback)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(authService.Middleware())
		{
			// Session management
			protected.DELETE("/session", authHandlers.Logout)
			protected.GET("/session", authHandlers.GetCurrentAccount)
			protected.POST("/admin/change_password", h.ChangePassword)

			// Panel configuration (admin only)
			protected.GET("/admin/configuration", authService.RequirePermission(auth.ResourceSettings, auth.ActionRead), h.GetConfiguration)
			protected.PATCH("/admin/configuration", authService.RequirePermission(auth.ResourceSettings, auth.ActionWrite), h.UpdateConfiguration)

			// Dashboard
			protected.GET("/admin/dashboard", authService.RequirePermission(auth.ResourceOcctl, auth.ActionRead), h.Dashboard)

			// Staff management (admin only)
			protected.GET("/admin/staffs", authService.RequirePermission(auth.ResourceStaffs, auth.ActionRead), h.ListStaffs)
			protected.POST("/admin/staffs", authService.RequirePermission(auth.ResourceStaffs, auth.ActionWrite), h.CreateStaff)
			protected.DELETE("/admin/staffs/:id", authService.RequirePermission(auth.ResourceStaffs, auth.ActionWrite), h.DeleteStaff)
			protected.POST("/admin/staffs/:id/suspend", authService.RequirePermission(auth.ResourceStaffs, auth.ActionWrite), h.SuspendStaff)
			protected.POST("/admin/staffs/:id/unsuspend", authService.RequirePermission(auth.ResourceStaffs, auth.ActionWrite), h.UnsuspendStaff)

			// VPN user routes
			protected.GET("/users", authService.RequirePermission(auth.ResourceUsers, auth.ActionRead), h.ListOcservUsers)
			protected.GET("/users/:id", authService.RequirePermission(auth.ResourceUsers, auth.ActionRead), h.GetOcservUser)
			protected.POST("/users", authService.RequirePermission(auth.ResourceUsers, auth.ActionWrite), h.CreateOcservUser)
			protected.PATCH("/users/:id", authService.RequirePermission(auth.ResourceUsers, auth.ActionWrite), h.UpdateOcservUser)
			protected.DELETE("/users/:id", authService.RequirePermission(auth.ResourceUsers, auth.ActionWrite), h.DeleteOcservUser)
			protected.PATCH("/users/:id/lock", authService.RequirePermission(auth.ResourceUsers, auth.ActionWrite), h.LockOcservUser)
			protected.PATCH("/users/:id/unlock", authService.RequirePermission(auth.ResourceUsers, auth.ActionWrite), h.UnlockOcservUser)
			protected.POST("/users/:id/disconnect", authService.RequirePermission(auth.ResourceUsers, auth.ActionWrite), h.DisconnectOcservUser)
			protected.GET("/users/:id/stats", authService.RequirePermission(auth.ResourceStats, auth.ActionRead), h.UserTrafficHistory)

			// Group routes
			protected.GET("/groups", authService.RequirePermission(auth.ResourceGroups, auth.ActionRead), h.ListGroups)
			protected.GET("/groups/names", authService.RequirePermission(auth.ResourceGroups, auth.ActionRead), h.ListGroupNames)
			protected.GET("/groups/:name", authService.RequirePermission(auth.ResourceGroups, auth.ActionRead), h.GetGroup)
			protected.POST("/groups", authService.RequirePermission(auth.ResourceGroups, auth.ActionWrite), h.CreateGroup)
			protected.PUT("/groups/defaults", authService.RequirePermission(auth.ResourceGroups, auth.ActionWrite), h.UpdateGroupDefaults)
			protected.PUT("/groups/:name", authService.RequirePermission(auth.ResourceGroups, auth.ActionWrite), h.UpdateGroup)
			protected.DELETE("/groups/:name", authService.RequirePermission(auth.ResourceGroups, auth.ActionWrite), h.DeleteGroup)

			// Server control (admin only)
			protected.GET("/occtl/online", authService.RequirePermission(auth.ResourceOcctl, auth.ActionRead), h.OnlineUsers)
			protected.GET("/occtl/status", authService.RequirePermission(auth.ResourceOcctl, auth.ActionRead), h.ServerStatus)
			protected.GET("/occtl/ip_bans", authService.RequirePermission(auth.ResourceOcctl, auth.ActionRead), h.ListIPBans)
			protected.POST("/occtl/unban", authService.RequirePermission(auth.ResourceOcctl, auth.ActionWrite), h.UnbanIP)
			protected.GET("/occtl/iroutes", authService.RequirePermission(auth.ResourceOcctl, auth.ActionRead), h.ListIRoutes)
			protected.POST("/occtl/reload", authService.RequirePermission(auth.ResourceOcctl, auth.ActionWrite), h.ReloadServer)

			// Traffic reporting (admin only)
			protected.GET("/stats/daily", authService.RequirePermission(auth.ResourceStats, auth.ActionRead), h.DailyTrafficTotals)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "ocserv-panel",
		})
	})

	return r
}

// requestIDMiddleware assigns each request an ID, honoring one supplied by a
// reverse proxy.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("trace_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// If no allowed origins are configured, disable CORS (secure by default)
		if cfg.Server.AllowedOrigins == "" {
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}
			c.Next()
			return
		}

		if isAllowedOrigin(origin, cfg.Server.AllowedOrigins) {
			// Delete any existing CORS headers that might be set by proxies
			c.Writer.Header().Del("Access-Control-Allow-Origin")
			c.Writer.Header().Del("Access-Control-Allow-Credentials")
			c.Writer.Header().Del("Access-Control-Allow-Headers")
			c.Writer.Header().Del("Access-Control-Allow-Methods")

			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// isAllowedOrigin reports whether origin is in the comma-separated allowed list.
func isAllowedOrigin(origin, allowedOrigins string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range strings.Split(allowedOrigins, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}
	return false
}
