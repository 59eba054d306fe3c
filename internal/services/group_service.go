package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ocserv-tools/ocserv-panel/internal/config"
	"github.com/ocserv-tools/ocserv-panel/internal/models"
	"github.com/ocserv-tools/ocserv-panel/internal/occtl"
	"github.com/ocserv-tools/ocserv-panel/internal/repository"
	"github.com/ocserv-tools/ocserv-panel/pkg/logger"
)

// GroupService manages ocserv groups: the database rows, the per-group
// config files and the defaults file ocserv reads for ungrouped users.
type GroupService struct {
	repo *repository.GroupRepository
	cfg  *config.OcservConfig
	ctl  *occtl.Service
}

// NewGroupService creates a new group service instance.
func NewGroupService(repo *repository.GroupRepository, cfg *config.OcservConfig, ctl *occtl.Service) *GroupService {
	return &GroupService{
		repo: repo,
		cfg:  cfg,
		ctl:  ctl,
	}
}

// Get returns a group by name.
func (s *GroupService) Get(ctx context.Context, name string) (*models.OcservGroup, error) {
	const op = "GroupService.Get"

	group, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, MapRepoError(op, err)
	}
	return group, nil
}

// ListNames returns all group names for the connect-time group selector.
func (s *GroupService) ListNames(ctx context.Context) ([]string, error) {
	const op = "GroupService.ListNames"

	names, err := s.repo.ListNames(ctx)
	if err != nil {
		return nil, MapRepoError(op, err)
	}
	return names, nil
}

// Create registers a group, writes its config file and reloads ocserv.
func (s *GroupService) Create(ctx context.Context, name string, cfg models.ConfigMap) (*models.OcservGroup, error) {
	const op = "GroupService.Create"

	if err := validateGroupName(name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg == nil {
		cfg = models.ConfigMap{}
	}

	group := models.OcservGroup{
		Name:   name,
		Config: cfg,
	}
	id, err := s.repo.Create(ctx, &group)
	if err != nil {
		return nil, MapRepoError(op, err)
	}
	group.ID = id

	if err := s.writeGroupFile(name, cfg); err != nil {
		return nil, WrapOcservError(op, err)
	}
	s.reload(ctx)

	return &group, nil
}

// Update replaces a group's configuration, rewrites the file and reloads ocserv.
func (s *GroupService) Update(ctx context.Context, name string, cfg models.ConfigMap) (*models.OcservGroup, error) {
	const op = "GroupService.Update"

	group, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, MapRepoError(op, err)
	}
	if cfg == nil {
		cfg = models.ConfigMap{}
	}

	if err := s.repo.UpdateConfig(ctx, group.ID, cfg); err != nil {
		return nil, MapRepoError(op, err)
	}
	group.Config = cfg

	if err := s.writeGroupFile(name, cfg); err != nil {
		return nil, WrapOcservError(op, err)
	}
	s.reload(ctx)

	return group, nil
}

// Delete removes a group row and its config file.
func (s *GroupService) Delete(ctx context.Context, name string) error {
	const op = "GroupService.Delete"

	group, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return MapRepoError(op, err)
	}

	if err := s.repo.Delete(ctx, group.ID); err != nil {
		return MapRepoError(op, err)
	}

	if err := os.Remove(s.groupFilePath(name)); err != nil && !os.IsNotExist(err) {
		logger.Error("failed to remove group file for %s: %v", name, err)
	}
	s.reload(ctx)

	return nil
}

// WriteDefaults rewrites the defaults file applied to users without a group.
func (s *GroupService) WriteDefaults(ctx context.Context, cfg models.ConfigMap) error {
	const op = "GroupService.WriteDefaults"

	if err := os.MkdirAll(filepath.Dir(s.cfg.DefaultsFile), 0750); err != nil {
		return WrapOcservError(op, err)
	}
	if err := writeConfigFile(s.cfg.DefaultsFile, cfg); err != nil {
		return WrapOcservError(op, err)
	}
	s.reload(ctx)
	return nil
}

func (s *GroupService) groupFilePath(name string) string {
	return filepath.Join(s.cfg.GroupDir, name)
}

func (s *GroupService) writeGroupFile(name string, cfg models.ConfigMap) error {
	return writeConfigFile(s.groupFilePath(name), cfg)
}

func (s *GroupService) reload(ctx context.Context) {
	if err := s.ctl.Reload(ctx); err != nil {
		// The file is already written; the next reload picks it up
		logger.Error("ocserv reload failed: %v", err)
	}
}

// writeConfigFile renders a config map as sorted key = value lines.
func writeConfigFile(path string, cfg models.ConfigMap) error {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s = %s\n", k, cfg[k])
	}

	return os.WriteFile(path, []byte(b.String()), 0640)
}

// validateGroupName rejects names that would escape the group directory
// or break the ocserv config syntax.
func validateGroupName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	if strings.ContainsAny(name, "/\\ \t\n") || name == "." || name == ".." {
		return fmt.Errorf("%w: invalid group name '%s'", ErrInvalidInput, name)
	}
	return nil
}
