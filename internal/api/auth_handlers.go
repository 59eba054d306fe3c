package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/ocserv-tools/ocserv-panel/internal/api/handlers"
	"github.com/ocserv-tools/ocserv-panel/internal/auth"
	"github.com/ocserv-tools/ocserv-panel/internal/utils"
	"github.com/ocserv-tools/ocserv-panel/pkg/logger"
)

// AuthHandlers provides HTTP handlers for authentication endpoints including
// local login, OAuth flows, session management, and configuration discovery.
type AuthHandlers struct {
	authService *auth.Service
	frontendURL string
	handlers    *handlers.Handlers
}

// NewAuthHandlers creates a new authentication handler with the provided services.
// The frontendURL is used for OAuth redirects after successful authentication.
func NewAuthHandlers(authService *auth.Service, frontendURL string, h *handlers.Handlers) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		frontendURL: frontendURL,
		handlers:    h,
	}
}

// Login handles local username/password authentication via JSON POST.
// Returns 201 Created on success.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ProblemBadRequest(c, "Invalid login request format")
		return
	}

	if err := h.authService.LocalLogin(c, req.Username, req.Password); err != nil {
		utils.ProblemUnauthorized(c, "Invalid username or password")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Login successful"})
}

// StartOAuthFlow initiates OAuth/OIDC authentication by redirecting to the provider.
func (h *AuthHandlers) StartOAuthFlow(c *gin.Context) {
	h.authService.StartOAuthFlow(c)
}

// HandleOAuthCallback processes the OAuth provider callback after authentication.
// Validates CSRF state, exchanges the code, verifies the ID token, and creates
// or updates the account. Redirects to the frontend with the outcome.
func (h *AuthHandlers) HandleOAuthCallback(c *gin.Context) {
	session := h.authService.Session(c)
	frontendURL, ok := auth.SessionFrontendURL(session)
	if !ok || frontendURL == "" {
		if h.frontendURL != "" {
			frontendURL = h.frontendURL
		} else {
			utils.ProblemInternal(c, fmt.Errorf("no frontend URL configured"))
			return
		}
	}

	if err := h.authService.FinishOAuthFlow(c); err != nil {
		c.Redirect(http.StatusTemporaryRedirect, frontendURL+"?error="+url.QueryEscape(err.Error()))
		return
	}

	auth.ClearSessionOAuth(session)
	if err := session.Save(c); err != nil {
		logger.Error("failed to save session after cleanup: %v", err)
	}

	c.Redirect(http.StatusTemporaryRedirect, frontendURL+"?login=success")
}

// Logout destroys the current session. Safe to call multiple times.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if err := h.authService.Logout(c); err != nil {
		utils.ProblemInternal(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCurrentAccount returns the authenticated account's profile.
func (h *AuthHandlers) GetCurrentAccount(c *gin.Context) {
	accountID, ok := auth.AccountID(c)
	if !ok {
		utils.ProblemUnauthorized(c, "Authentication required")
		return
	}

	account, err := h.handlers.Account(c.Request.Context(), accountID)
	if err != nil {
		utils.ProblemNotFound(c, "Account")
		return
	}
	utils.Success(c, account)
}

// GetAuthConfig returns the available authentication methods and OIDC URLs.
// Used by frontend applications to discover supported login options.
func (h *AuthHandlers) GetAuthConfig(c *gin.Context) {
	response := handlers.AuthConfigResponse{
		Methods: []string{},
	}

	if h.authService.IsLocalEnabled() {
		response.Methods = append(response.Methods, "local")
	}
	if h.authService.IsOAuthEnabled() {
		response.Methods = append(response.Methods, "oidc")
		response.OAuthURL = "/api/v1/session/oauth/start"
	}

	c.JSON(http.StatusOK, response)
}
