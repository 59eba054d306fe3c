package services

import (
	"context"
	"errors"

	"github.com/ocserv-tools/ocserv-panel/internal/models"
	"github.com/ocserv-tools/ocserv-panel/internal/repository"
)

// Configuration defaults applied during setup when the admin does not
// override them.
var defaultGroupConfigs = models.ConfigMap{
	"ipv4-network":     "172.16.12.1/22",
	"dns":              "8.8.8.8",
	"mtu":              "1400",
	"max-same-clients": "1",
	"keepalive":        "32400",
	"dpd":              "90",
	"mobile-dpd":       "1800",
	"session-timeout":  "86400",
}

const defaultTrafficGB = 10

// SettingsService manages the single-row panel configuration.
type SettingsService struct {
	repo   *repository.SettingsRepository
	groups *GroupService
}

// NewSettingsService creates a new settings service instance.
func NewSettingsService(repo *repository.SettingsRepository, groups *GroupService) *SettingsService {
	return &SettingsService{
		repo:   repo,
		groups: groups,
	}
}

// SetupRequest represents the initial panel configuration written during setup.
type SetupRequest struct {
	DefaultConfigs   models.ConfigMap
	CaptchaSiteKey   string
	CaptchaSecretKey string
	DefaultTrafficGB int
}

// UpdateSettingsRequest represents the optional fields of a configuration patch.
type UpdateSettingsRequest struct {
	DefaultConfigs   *models.ConfigMap
	CaptchaSiteKey   *string
	CaptchaSecretKey *string
	DefaultTrafficGB *int
}

// Get returns the panel settings.
func (s *SettingsService) Get(ctx context.Context) (*models.PanelSettings, error) {
	const op = "SettingsService.Get"

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, MapRepoError(op, err)
	}
	return settings, nil
}

// Initialize writes the settings row during setup and pushes the group
// defaults to ocserv. Running setup twice is an error.
func (s *SettingsService) Initialize(ctx context.Context, req SetupRequest) (*models.PanelSettings, error) {
	const op = "SettingsService.Initialize"

	if _, err := s.repo.Get(ctx); err == nil {
		return nil, MapRepoError(op, repository.ErrDuplicateKey)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, MapRepoError(op, err)
	}

	configs := models.ConfigMap{}
	for k, v := range defaultGroupConfigs {
		configs[k] = v
	}
	for k, v := range req.DefaultConfigs {
		configs[k] = v
	}

	traffic := req.DefaultTrafficGB
	if traffic <= 0 {
		traffic = defaultTrafficGB
	}

	settings := models.PanelSettings{
		DefaultConfigs:   configs,
		CaptchaSiteKey:   req.CaptchaSiteKey,
		CaptchaSecretKey: req.CaptchaSecretKey,
		DefaultTrafficGB: traffic,
	}
	if err := s.repo.Create(ctx, &settings); err != nil {
		return nil, MapRepoError(op, err)
	}

	if err := s.groups.WriteDefaults(ctx, configs); err != nil {
		return nil, err
	}

	return &settings, nil
}

// Update patches the settings; changed group defaults are re-pushed to ocserv.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*models.PanelSettings, error) {
	const op = "SettingsService.Update"

	updates := repository.SettingsUpdates{
		DefaultConfigs:   req.DefaultConfigs,
		CaptchaSiteKey:   req.CaptchaSiteKey,
		CaptchaSecretKey: req.CaptchaSecretKey,
		DefaultTrafficGB: req.DefaultTrafficGB,
	}
	if err := s.repo.Update(ctx, updates); err != nil {
		return nil, MapRepoError(op, err)
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, MapRepoError(op, err)
	}

	if req.DefaultConfigs != nil {
		if err := s.groups.WriteDefaults(ctx, settings.DefaultConfigs); err != nil {
			return nil, err
		}
	}

	return settings, nil
}
