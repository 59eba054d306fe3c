// Package auth provides authentication and authorization services for the panel API.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/ocserv-tools/ocserv-panel/internal/models"
	"github.com/ocserv-tools/ocserv-panel/internal/utils"
	"github.com/ocserv-tools/ocserv-panel/pkg/logger"
)

// Service handles authentication and authorization.
type Service struct {
	config   *Config
	db       *gorm.DB
	enforcer *casbin.Enforcer
	sessions SessionStore
	ginStore any
}

// IsLocalEnabled reports whether local authentication is enabled.
func (s *Service) IsLocalEnabled() bool {
	return s.config.Method.SupportsLocal()
}

// IsOAuthEnabled reports whether OAuth/OIDC authentication is enabled.
func (s *Service) IsOAuthEnabled() bool {
	return s.config.Method.SupportsOIDC()
}

// NewService creates a new authentication service.
func NewService(cfg *Config, db *gorm.DB) (*Service, error) {
	s := &Service{
		config: cfg,
		db:     db,
	}

	// Initialize OIDC if configured
	if cfg.Method.SupportsOIDC() {
		if err := s.initializeOIDC(); err != nil {
			return nil, fmt.Errorf("failed to initialize OIDC: %w", err)
		}
	}

	// Initialize session store
	store, ginStore, err := NewGinSessionStore(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	s.sessions = store
	s.ginStore = ginStore

	// Initialize Casbin for RBAC
	enforcer, err := s.initializeRBAC()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Casbin: %w", err)
	}
	s.enforcer = enforcer

	return s, nil
}

// initializeOIDC configures the OIDC provider for OAuth authentication.
func (s *Service) initializeOIDC() error {
	ctx := context.Background()

	provider, err := oidc.NewProvider(ctx, s.config.OIDC.ProviderURL)
	if err != nil {
		return err
	}

	s.config.OIDC.Provider = provider

	oauth2Config := &oauth2.Config{
		ClientID:     s.config.OIDC.ClientID,
		ClientSecret: s.config.OIDC.ClientSecret,
		RedirectURL:  s.config.OIDC.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       s.config.OIDC.Scopes,
	}

	// Override endpoints if specified
	if s.config.OIDC.AuthURL != "" {
		oauth2Config.Endpoint.AuthURL = s.config.OIDC.AuthURL
	}
	if s.config.OIDC.TokenURL != "" {
		oauth2Config.Endpoint.TokenURL = s.config.OIDC.TokenURL
	}

	s.config.OIDC.OAuth2Config = oauth2Config

	return nil
}

// initializeRBAC sets up role-based access control using Casbin.
func (s *Service) initializeRBAC() (*casbin.Enforcer, error) {
	// Define RBAC model inline
	modelText := `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && keyMatch(r.act, p.act)
`

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	// Create enforcer with in-memory policy storage (no adapter needed)
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	// Define default policies
	policies := [][]string{
		// Admins can do everything
		{models.RoleAdmin, "*", "*"},

		// Staff manage VPN users and see their traffic
		{models.RoleStaff, "users", "read"},
		{models.RoleStaff, "users", "write"},
		{models.RoleStaff, "groups", "read"},
		{models.RoleStaff, "stats", "read"},
	}

	for _, p := range policies {
		added, err := enforcer.AddPolicy(p)
		if err != nil {
			return nil, fmt.Errorf("failed to add RBAC policy %v: %w", p, err)
		}
		if !added {
			logger.Debug("RBAC policy already exists: %v", p)
		}
	}

	return enforcer, nil
}

// sanitizeLocalPart converts an email address to a valid username candidate.
func sanitizeLocalPart(email string) string {
	base, _, _ := strings.Cut(email, "@")

	re := regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	username := re.ReplaceAllString(base, "_")

	// Too-short local parts get part of the domain appended
	if len(username) < 3 {
		if _, domainStr, found := strings.Cut(email, "@"); found {
			domainPart, _, _ := strings.Cut(domainStr, ".")
			domainPart = re.ReplaceAllString(domainPart, "_")
			username = username + "_" + domainPart
		}
	}

	if len(username) > 100 {
		username = username[:100]
	}

	return username
}

// sanitizeEmailToUsername converts an email address to a unique valid username.
func (s *Service) sanitizeEmailToUsername(email string) string {
	return s.ensureUniqueUsername(sanitizeLocalPart(email))
}

// ensureUniqueUsername returns a unique username, adding numeric suffixes if needed.
func (s *Service) ensureUniqueUsername(baseUsername string) string {
	username := baseUsername
	counter := 1
	ctx := context.Background()

	for {
		var count int64
		err := s.db.WithContext(ctx).Table("accounts").Where("username = ?", username).Where("deleted_at IS NULL").Count(&count).Error
		if err != nil {
			logger.Warn("database error checking username uniqueness, trying next: %v", err)
			username = fmt.Sprintf("%s_%d", baseUsername, counter)
			counter++
			if counter > 100 {
				// Fallback to timestamp-based username to avoid infinite loop
				username = fmt.Sprintf("%s_%d", baseUsername, time.Now().Unix())
				break
			}
			continue
		}

		if count == 0 {
			break
		}

		username = fmt.Sprintf("%s_%d", baseUsername, counter)
		counter++

		// Keep within the column limit of 100 characters
		if len(username) > 100 {
			maxBaseLen := 100 - len(fmt.Sprintf("_%d", counter))
			if maxBaseLen < 1 {
				maxBaseLen = 90
			}
			truncatedBase := baseUsername
			if len(truncatedBase) > maxBaseLen {
				truncatedBase = truncatedBase[:maxBaseLen]
			}
			username = fmt.Sprintf("%s_%d", truncatedBase, counter)
		}
	}

	return username
}

// SessionMiddleware returns the Gin middleware for session management.
func (s *Service) SessionMiddleware() gin.HandlerFunc {
	if _, ok := s.sessions.(*GinSessionStore); ok {
		if store, ok := s.ginStore.(sessions.Store); ok {
			return sessions.Sessions(s.config.Session.CookieName, store)
		}
	}
	// Default pass-through
	return func(c *gin.Context) {
		c.Next()
	}
}

// Middleware returns the Gin middleware for authentication enforcement.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.sessions.Get(c)

		accountID, ok := SessionAccountID(session)
		if !ok {
			utils.ProblemUnauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		// Load account from database
		var account struct {
			ID          int64
			Username    string
			Role        string
			SuspendedAt *time.Time
		}

		err := s.db.WithContext(c.Request.Context()).
			Table("accounts").
			Select("id, username, role, suspended_at").
			Where("id = ?", accountID).
			Where("deleted_at IS NULL").
			First(&account).Error
		if err != nil || account.SuspendedAt != nil {
			session.Delete(string(SessKeyAccountID))
			if saveErr := session.Save(c); saveErr != nil {
				logger.Error("failed to save session during cleanup: %v", saveErr)
			}
			utils.ProblemUnauthorized(c, "Invalid session")
			c.Abort()
			return
		}

		SetAccountContext(c, AccountContext{
			AccountID: account.ID,
			Username:  account.Username,
			Role:      account.Role,
		})

		c.Next()
	}
}

// RequirePermission returns middleware that enforces role-based access control.
func (s *Service) RequirePermission(obj Resource, act Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, roleOk := Role(c)
		if !roleOk {
			logger.Error("RequirePermission: role not found in context")
			utils.ProblemUnauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		allowed, err := s.enforcer.Enforce(role, string(obj), string(act))
		if err != nil {
			utils.ProblemInternal(c, fmt.Errorf("permission check failed: %w", err))
			c.Abort()
			return
		}

		if !allowed {
			utils.ProblemForbidden(c, "Insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// LocalLogin authenticates an account using username and password.
func (s *Service) LocalLogin(c *gin.Context, username, password string) error {
	if !s.config.Method.SupportsLocal() {
		return fmt.Errorf("local authentication is disabled")
	}

	var account struct {
		ID           int64
		Username     string
		PasswordHash string
		Role         string
		SuspendedAt  *time.Time
	}

	ctx := c.Request.Context()
	err := s.db.WithContext(ctx).
		Table("accounts").
		Select("id, username, password_hash, role, suspended_at").
		Where("username = ?", username).
		Where("deleted_at IS NULL").
		First(&account).Error
	if err != nil {
		return fmt.Errorf("invalid credentials")
	}

	if account.SuspendedAt != nil {
		return fmt.Errorf("account is suspended")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		// Track the failure but still answer with invalid credentials
		if updateErr := s.updateLoginFailure(ctx, account.ID); updateErr != nil {
			logger.Error("failed to update login failure stats: %v", updateErr)
		}
		return fmt.Errorf("invalid credentials")
	}

	if err := s.updateLoginSuccess(ctx, account.ID); err != nil {
		return fmt.Errorf("failed to update login stats: %w", err)
	}

	return s.CreateSession(c, account.ID, account.Username, account.Role, "local")
}

// StartOAuthFlow initiates the OAuth/OIDC authentication process.
func (s *Service) StartOAuthFlow(c *gin.Context) {
	if !s.config.Method.SupportsOIDC() {
		utils.ProblemBadRequest(c, "OAuth authentication is disabled")
		return
	}

	state, err := generateState()
	if err != nil {
		logger.Error("failed to generate OAuth state: %v", err)
		utils.ProblemInternal(c, err)
		return
	}

	session := s.sessions.Get(c)
	SetSessionOAuthState(session, state)

	// Store frontend URL for later redirect (with validation to prevent open redirect)
	frontendURL := c.Query("frontend_url")
	if frontendURL != "" {
		if s.isAllowedFrontendURL(frontendURL) {
			SetSessionFrontendURL(session, frontendURL)
		} else {
			logger.Warn("rejected invalid frontend_url: %s", frontendURL)
		}
	}
	if err := session.Save(c); err != nil {
		logger.Error("failed to save OAuth session: %v", err)
		utils.ProblemInternal(c, err)
		return
	}

	url := s.config.OIDC.OAuth2Config.AuthCodeURL(state)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// FinishOAuthFlow completes the OAuth authentication process.
func (s *Service) FinishOAuthFlow(c *gin.Context) error {
	session := s.sessions.Get(c)

	// Verify state
	state := c.Query("state")
	savedStateStr, ok := SessionOAuthState(session)
	if !ok || state != savedStateStr {
		return fmt.Errorf("invalid state")
	}
	session.Delete(string(SessKeyOAuthState))

	// Exchange code for token
	code := c.Query("code")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	token, err := s.config.OIDC.OAuth2Config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return fmt.Errorf("no id_token in response")
	}

	verifier := s.config.OIDC.Provider.Verifier(&oidc.Config{
		ClientID: s.config.OIDC.ClientID,
	})

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Sub               string `json:"sub"`
	}

	if err := idToken.Claims(&claims); err != nil {
		return fmt.Errorf("failed to parse claims: %w", err)
	}

	account, err := s.findOrCreateOAuthAccount(c.Request.Context(), claims.Email, claims.PreferredUsername)
	if err != nil {
		return err
	}

	return s.setupOAuthSession(c, account)
}

// oauthAccount represents the minimal account information needed for OAuth session setup.
type oauthAccount struct {
	ID       int64
	Username string
}

// findOrCreateOAuthAccount finds an existing account by email or creates a new one.
func (s *Service) findOrCreateOAuthAccount(ctx context.Context, email, preferredUsername string) (*oauthAccount, error) {
	var existing struct {
		ID          int64
		Username    string
		SuspendedAt *time.Time
	}

	err := s.db.WithContext(ctx).
		Table("accounts").
		Select("id, username, suspended_at").
		Where("email = ?", email).
		Where("deleted_at IS NULL").
		First(&existing).Error
	if err == nil {
		if existing.SuspendedAt != nil {
			return nil, fmt.Errorf("account is suspended")
		}
		return &oauthAccount{
			ID:       existing.ID,
			Username: existing.Username,
		}, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	// No existing account with this email, create one with the least privileged role
	username := s.determineOAuthUsername(preferredUsername, email)
	now := time.Now()

	newAccount := map[string]any{
		"username":      username,
		"email":         email,
		"role":          models.RoleStaff,
		"password_hash": "",
		"last_login_at": now,
		"login_count":   1,
	}

	result := s.db.WithContext(ctx).Table("accounts").Create(newAccount)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create account: %w", result.Error)
	}

	var id int64
	err = s.db.WithContext(ctx).Raw("SELECT LAST_INSERT_ID()").Scan(&id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get created account ID: %w", err)
	}

	return &oauthAccount{
		ID:       id,
		Username: username,
	}, nil
}

// determineOAuthUsername determines the best username from OAuth claims.
func (s *Service) determineOAuthUsername(preferredUsername, email string) string {
	username := preferredUsername
	if username == "" {
		return s.sanitizeEmailToUsername(email)
	}

	if strings.Contains(username, "@") || strings.Contains(username, ".") {
		return s.sanitizeEmailToUsername(username)
	}

	return username
}

// setupOAuthSession creates a session for an OAuth-authenticated account.
func (s *Service) setupOAuthSession(c *gin.Context, account *oauthAccount) error {
	ctx := c.Request.Context()

	if err := s.updateLoginSuccess(ctx, account.ID); err != nil {
		return fmt.Errorf("failed to update login stats: %w", err)
	}

	// Role always comes from the database, never from the session payload
	var role string
	if err := s.db.WithContext(ctx).
		Table("accounts").
		Select("role").
		Where("id = ?", account.ID).
		Where("deleted_at IS NULL").
		Scan(&role).Error; err != nil {
		logger.Error("failed to get role for account %d: %v", account.ID, err)
		return fmt.Errorf("failed to get account role: %w", err)
	}

	if err := s.CreateSession(c, account.ID, account.Username, role, "oidc"); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Session retrieves the current session for the request context.
func (s *Service) Session(c *gin.Context) Session {
	return s.sessions.Get(c)
}

// Logout destroys the session and returns an error if session save fails.
func (s *Service) Logout(c *gin.Context) error {
	session := s.sessions.Get(c)
	session.Clear()
	if err := session.Save(c); err != nil {
		logger.Error("failed to save session during logout: %v", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// CreateSession creates a new session for the authenticated account.
func (s *Service) CreateSession(c *gin.Context, accountID int64, username string, role string, authMethod string) error {
	session := s.sessions.Get(c)
	SetSessionAuth(session, SessionData{
		AccountID:  accountID,
		Username:   username,
		Role:       role,
		AuthMethod: authMethod,
	})
	return session.Save(c)
}

// updateLoginSuccess updates account statistics after successful login.
func (s *Service) updateLoginSuccess(ctx context.Context, accountID int64) error {
	err := s.db.WithContext(ctx).
		Table("accounts").
		Where("id = ?", accountID).
		Updates(map[string]any{
			"last_login_at":         time.Now(),
			"login_count":           gorm.Expr("login_count + 1"),
			"failed_login_attempts": 0,
		}).Error
	if err != nil {
		logger.Error("failed to update login stats: %v", err)
	}
	return err
}

// updateLoginFailure increments failed login attempts for an account.
func (s *Service) updateLoginFailure(ctx context.Context, accountID int64) error {
	err := s.db.WithContext(ctx).
		Table("accounts").
		Where("id = ?", accountID).
		Update("failed_login_attempts", gorm.Expr("failed_login_attempts + 1")).Error
	if err != nil {
		logger.Error("failed to update failed login attempts: %v", err)
	}
	return err
}

// generateState generates a cryptographically secure random state for OAuth2 CSRF protection.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// isAllowedFrontendURL reports whether the URL is in the allowed origins list.
func (s *Service) isAllowedFrontendURL(urlStr string) bool {
	if urlStr == "" || s.config.AllowedOrigins == "" {
		return false
	}

	for _, origin := range strings.Split(s.config.AllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if strings.HasPrefix(urlStr, origin) {
			return true
		}
	}
	return false
}
