// Package ocpasswd manages VPN credentials in the ocserv password file.
package ocpasswd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ocserv-tools/ocserv-panel/internal/config"
)

// Service wraps the ocpasswd binary for credential management.
type Service struct {
	config *config.OcservConfig
}

// NewService creates a new ocpasswd service.
func NewService(cfg *config.OcservConfig) *Service {
	return &Service{config: cfg}
}

func (s *Service) run(ctx context.Context, stdin string, args ...string) error {
	full := append([]string{"-c", s.config.PasswdFile}, args...)

	// #nosec G204 - OcpasswdPath is from config, args are constructed internally
	cmd := exec.CommandContext(ctx, s.config.OcpasswdPath, full...)

	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("ocpasswd %s failed: %w: %s", strings.Join(args, " "), err, msg)
		}
		return fmt.Errorf("ocpasswd %s failed: %w", strings.Join(args, " "), err)
	}
	return nil
}

// SetPassword creates or updates the credential for username in the given group.
// ocpasswd reads the password twice from stdin when it is not a terminal.
func (s *Service) SetPassword(ctx context.Context, username, group, password string) error {
	args := []string{}
	if group != "" {
		args = append(args, "-g", group)
	}
	args = append(args, username)
	return s.run(ctx, password+"\n"+password+"\n", args...)
}

// Lock disables the credential without removing it.
func (s *Service) Lock(ctx context.Context, username string) error {
	return s.run(ctx, "", "-l", username)
}

// Unlock re-enables a locked credential.
func (s *Service) Unlock(ctx context.Context, username string) error {
	return s.run(ctx, "", "-u", username)
}

// Delete removes the credential from the password file.
func (s *Service) Delete(ctx context.Context, username string) error {
	return s.run(ctx, "", "-d", username)
}
