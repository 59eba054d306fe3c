// Package config handles application configuration management.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Ocserv   OcservConfig
	// LogLevel controls logging verbosity ("info" or "debug")
	LogLevel    string
	Environment Environment
}

// ServerConfig holds HTTP server and CORS configuration.
type ServerConfig struct {
	Address string
	// AllowedOrigins is a comma-separated list of allowed origins for CORS
	AllowedOrigins string
}

// DatabaseConfig holds MySQL database connection parameters.
type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	MigrationsPath string
}

// AuthConfig holds authentication and session configuration.
type AuthConfig struct {
	// Method specifies authentication type: "local", "oidc", or "both"
	Method string

	// SessionSecret must be changed from default in production
	SessionSecret string

	// Cookie configuration
	CookieDomain   string
	CookieSameSite string

	// OIDC configuration
	OIDCProviderURL  string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
}

// OcservConfig holds paths and settings for the ocserv server integration.
type OcservConfig struct {
	// OcctlPath is the occtl control binary
	OcctlPath string
	// OcpasswdPath is the ocpasswd credential tool
	OcpasswdPath string
	// PasswdFile is the plain-auth password file managed through ocpasswd
	PasswdFile string
	// GroupDir holds per-group configuration files
	GroupDir string
	// DefaultsFile is the group defaults configuration file
	DefaultsFile string
	// OcctlSocket overrides the occtl unix socket path when non-empty
	OcctlSocket string
}

// Load reads configuration from environment variables and creates required directories.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Address:        getEnv("OCPANEL_SERVER_ADDRESS", ":8080"),
			AllowedOrigins: getEnv("OCPANEL_ALLOWED_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			Host:           getEnv("OCPANEL_DB_HOST", "localhost"),
			Port:           getEnvInt("OCPANEL_DB_PORT", 3306),
			User:           getEnv("OCPANEL_DB_USER", "ocpanel"),
			Password:       getEnv("OCPANEL_DB_PASSWORD", "ocpanel"),
			Database:       getEnv("OCPANEL_DB_NAME", "ocpanel"),
			MigrationsPath: getEnv("OCPANEL_MIGRATIONS_PATH", "migrations"),
		},
		Auth: AuthConfig{
			Method:           getEnv("OCPANEL_AUTH_METHOD", "local"),
			SessionSecret:    getEnv("OCPANEL_SESSION_SECRET", "your-secret-key-change-in-production"),
			CookieDomain:     getEnv("OCPANEL_COOKIE_DOMAIN", ""),
			CookieSameSite:   getEnv("OCPANEL_COOKIE_SAMESITE", "lax"),
			OIDCProviderURL:  getEnv("OCPANEL_OIDC_PROVIDER_URL", ""),
			OIDCClientID:     getEnv("OCPANEL_OIDC_CLIENT_ID", ""),
			OIDCClientSecret: getEnv("OCPANEL_OIDC_CLIENT_SECRET", ""),
			OIDCRedirectURL:  getEnv("OCPANEL_OIDC_REDIRECT_URL", "http://localhost:8080/api/v1/session/oauth/callback"),
		},
		Ocserv: OcservConfig{
			OcctlPath:    getEnv("OCPANEL_OCCTL_PATH", "occtl"),
			OcpasswdPath: getEnv("OCPANEL_OCPASSWD_PATH", "ocpasswd"),
			PasswdFile:   getEnv("OCPANEL_PASSWD_FILE", "/etc/ocserv/ocpasswd"),
			GroupDir:     getEnv("OCPANEL_GROUP_DIR", "/etc/ocserv/groups"),
			DefaultsFile: getEnv("OCPANEL_DEFAULTS_FILE", "/etc/ocserv/defaults/group.conf"),
			OcctlSocket:  getEnv("OCPANEL_OCCTL_SOCKET", ""),
		},
		LogLevel:    getEnv("OCPANEL_LOG_LEVEL", "info"),
		Environment: Environment(getEnv("OCPANEL_ENV", "development")),
	}

	if !cfg.Environment.IsValid() {
		return nil, fmt.Errorf("invalid environment %q", cfg.Environment)
	}

	if !AuthMethod(cfg.Auth.Method).IsValid() {
		return nil, fmt.Errorf("invalid auth method %q", cfg.Auth.Method)
	}

	// The group directory must exist before ocserv picks up per-group configs
	if err := os.MkdirAll(cfg.Ocserv.GroupDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create group directory %s: %w", cfg.Ocserv.GroupDir, err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable key, or defaultValue if unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of the environment variable key, or defaultValue.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
