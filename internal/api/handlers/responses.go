// Package handlers provides HTTP request handlers for all API endpoints.
package handlers

import "github.com/ocserv-tools/ocserv-panel/internal/occtl"

// AuthConfigResponse represents the authentication configuration response.
type AuthConfigResponse struct {
	Methods  []string `json:"methods"`
	OAuthURL string   `json:"oauth_url,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// DashboardResponse aggregates the server state shown on the panel landing page.
type DashboardResponse struct {
	OnlineUsers []occtl.OnlineUser `json:"online_users"`
	ShowStatus  string             `json:"show_status"`
	ShowIPBans  []occtl.IPBan      `json:"show_ip_bans"`
	ShowIRoutes interface{}        `json:"show_iroutes"`
}

// SetupResponse is returned after the initial admin setup run.
type SetupResponse struct {
	User     interface{} `json:"user"`
	Settings interface{} `json:"config"`
}
