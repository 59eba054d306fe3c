// Package occtl wraps the ocserv control tool for querying and managing the VPN server.
package occtl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"

	"github.com/ocserv-tools/ocserv-panel/internal/config"
)

// Service executes occtl commands against a running ocserv instance.
type Service struct {
	config *config.OcservConfig
}

// NewService creates a new occtl service.
func NewService(cfg *config.OcservConfig) *Service {
	return &Service{config: cfg}
}

// run executes occtl with the given arguments and returns its stdout.
func (s *Service) run(ctx context.Context, args ...string) ([]byte, error) {
	full := make([]string, 0, len(args)+2)
	if s.config.OcctlSocket != "" {
		full = append(full, "-s", s.config.OcctlSocket)
	}
	full = append(full, args...)

	// #nosec G204 - OcctlPath is from config, args are constructed internally
	cmd := exec.CommandContext(ctx, s.config.OcctlPath, full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, newCommandError(strings.Join(args, " "), stderr.String(), err)
	}
	return stdout.Bytes(), nil
}

// runJSON executes occtl with --json and decodes stdout into out.
func (s *Service) runJSON(ctx context.Context, out interface{}, args ...string) error {
	full := append([]string{"--json"}, args...)
	output, err := s.run(ctx, full...)
	if err != nil {
		return err
	}
	// occtl prints nothing at all for some empty result sets
	if len(bytes.TrimSpace(output)) == 0 {
		return nil
	}
	if err := json.Unmarshal(output, out); err != nil {
		return newCommandError(strings.Join(args, " "), "", err)
	}
	return nil
}

// ShowStatus returns the raw server status text, including the statistics note header.
func (s *Service) ShowStatus(ctx context.Context) (string, error) {
	output, err := s.run(ctx, "show", "status")
	if err != nil {
		return "", err
	}
	return string(output), nil
}

// ShowUsers returns the currently connected VPN sessions.
func (s *Service) ShowUsers(ctx context.Context) ([]OnlineUser, error) {
	var raw []rawOnlineUser
	if err := s.runJSON(ctx, &raw, "show", "users"); err != nil {
		return nil, err
	}
	return reshapeUsers(raw), nil
}

// ShowUser returns the active sessions for a single username.
// A user with no active session yields an empty slice, not an error.
func (s *Service) ShowUser(ctx context.Context, username string) ([]OnlineUser, error) {
	var raw []rawOnlineUser
	if err := s.runJSON(ctx, &raw, "show", "user", username); err != nil {
		// occtl exits non-zero when the user has no active session
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, "user") {
			return []OnlineUser{}, nil
		}
		return nil, err
	}
	return reshapeUsers(raw), nil
}

// ShowIPBans returns the currently banned client addresses.
func (s *Service) ShowIPBans(ctx context.Context) ([]IPBan, error) {
	var raw []rawIPBan
	if err := s.runJSON(ctx, &raw, "show", "ip", "bans"); err != nil {
		return nil, err
	}
	return reshapeBans(raw), nil
}

// ShowIPBanPoints returns all tracked addresses with their ban scores,
// including ones below the ban threshold.
func (s *Service) ShowIPBanPoints(ctx context.Context) ([]IPBan, error) {
	var raw []rawIPBan
	if err := s.runJSON(ctx, &raw, "show", "ip", "bans", "points"); err != nil {
		return nil, err
	}
	return reshapeBans(raw), nil
}

// ShowIRoutes returns the routes installed for connected clients as decoded occtl output.
func (s *Service) ShowIRoutes(ctx context.Context) (interface{}, error) {
	var routes interface{}
	if err := s.runJSON(ctx, &routes, "show", "iroutes"); err != nil {
		return nil, err
	}
	if routes == nil {
		routes = []interface{}{}
	}
	return routes, nil
}

// Disconnect terminates all active sessions for the given username.
func (s *Service) Disconnect(ctx context.Context, username string) error {
	_, err := s.run(ctx, "disconnect", "user", username)
	return err
}

// UnbanIP removes a ban for the given address.
func (s *Service) UnbanIP(ctx context.Context, ip string) error {
	_, err := s.run(ctx, "unban", "ip", ip)
	return err
}

// Reload asks ocserv to re-read its configuration, picking up group file changes.
func (s *Service) Reload(ctx context.Context) error {
	_, err := s.run(ctx, "reload")
	return err
}
