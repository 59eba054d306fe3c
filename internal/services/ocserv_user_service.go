package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ocserv-tools/ocserv-panel/internal/models"
	"github.com/ocserv-tools/ocserv-panel/internal/ocpasswd"
	"github.com/ocserv-tools/ocserv-panel/internal/occtl"
	"github.com/ocserv-tools/ocserv-panel/internal/repository"
	"github.com/ocserv-tools/ocserv-panel/pkg/logger"
)

// OcservUserService coordinates VPN user state between the database,
// the ocserv password file and the running server.
type OcservUserService struct {
	repo     *repository.OcservUserRepository
	settings *repository.SettingsRepository
	tx       repository.TxManager
	passwd   *ocpasswd.Service
	ctl      *occtl.Service
}

// NewOcservUserService creates a new VPN user service instance.
func NewOcservUserService(
	repo *repository.OcservUserRepository,
	settings *repository.SettingsRepository,
	tx repository.TxManager,
	passwd *ocpasswd.Service,
	ctl *occtl.Service,
) *OcservUserService {
	return &OcservUserService{
		repo:     repo,
		settings: settings,
		tx:       tx,
		passwd:   passwd,
		ctl:      ctl,
	}
}

// CreateUserRequest represents the parameters for creating a VPN user.
type CreateUserRequest struct {
	Username    string
	Password    string
	Group       string
	ExpireDate  *time.Time
	TrafficType string
	TrafficGB   int
	Description *string
}

// UpdateUserRequest represents the optional parameters for updating a VPN user.
type UpdateUserRequest struct {
	Password    *string
	Group       *string
	ExpireDate  *time.Time
	TrafficType *string
	TrafficGB   *int
	Description *string
}

// Create registers the user in the database and writes the credential
// to the ocserv password file.
func (s *OcservUserService) Create(ctx context.Context, req CreateUserRequest) (*models.OcservUser, error) {
	const op = "OcservUserService.Create"

	if req.TrafficType == "" {
		req.TrafficType = models.TrafficFree
	}
	if !models.ValidTrafficType(req.TrafficType) {
		return nil, fmt.Errorf("%s: %w: invalid traffic type '%s'", op, ErrInvalidInput, req.TrafficType)
	}

	// An unset quota falls back to the panel default
	if req.TrafficGB == 0 && req.TrafficType != models.TrafficFree {
		settings, err := s.settings.Get(ctx)
		if err == nil {
			req.TrafficGB = settings.DefaultTrafficGB
		}
	}

	user := models.OcservUser{
		Username:    req.Username,
		Password:    req.Password,
		GroupName:   req.Group,
		Active:      true,
		ExpireDate:  req.ExpireDate,
		TrafficType: req.TrafficType,
		TrafficGB:   req.TrafficGB,
		Description: req.Description,
	}

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		id, err := s.repo.Create(txCtx, &user)
		if err != nil {
			return MapRepoError(op, err)
		}
		user.ID = id

		if err := s.passwd.SetPassword(ctx, req.Username, req.Group, req.Password); err != nil {
			return WrapOcservError(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Update modifies a VPN user; password and group changes are pushed to ocpasswd.
func (s *OcservUserService) Update(ctx context.Context, id int64, req UpdateUserRequest) (*models.OcservUser, error) {
	const op = "OcservUserService.Update"

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, MapRepoError(op, err)
	}

	if req.TrafficType != nil && !models.ValidTrafficType(*req.TrafficType) {
		return nil, fmt.Errorf("%s: %w: invalid traffic type '%s'", op, ErrInvalidInput, *req.TrafficType)
	}

	updates := repository.OcservUserUpdates{
		Password:    req.Password,
		GroupName:   req.Group,
		ExpireDate:  req.ExpireDate,
		TrafficType: req.TrafficType,
		TrafficGB:   req.TrafficGB,
		Description: req.Description,
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, id, updates); err != nil {
			return MapRepoError(op, err)
		}

		// Credential resync when the password or group changes
		if req.Password != nil || req.Group != nil {
			password := user.Password
			if req.Password != nil {
				password = *req.Password
			}
			group := user.GroupName
			if req.Group != nil {
				group = *req.Group
			}
			if err := s.passwd.SetPassword(ctx, user.Username, group, password); err != nil {
				return WrapOcservError(op, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, MapRepoError(op, err)
	}
	return updated, nil
}

// Delete removes the user from the database, the password file and any
// active session.
func (s *OcservUserService) Delete(ctx context.Context, id int64) error {
	const op = "OcservUserService.Delete"

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return MapRepoError(op, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return MapRepoError(op, err)
	}

	if err := s.passwd.Delete(ctx, user.Username); err != nil {
		// The database row is gone; log the drift instead of failing the request
		logger.Error("failed to remove credential for deleted user %s: %v", user.Username, err)
	}

	if err := s.ctl.Disconnect(ctx, user.Username); err != nil {
		logger.Debug("disconnect after delete for %s: %v", user.Username, err)
	}

	return nil
}

// GetByID returns a user with its online flag resolved through occtl.
func (s *OcservUserService) GetByID(ctx context.Context, id int64) (*models.OcservUser, error) {
	const op = "OcservUserService.GetByID"

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, MapRepoError(op, err)
	}

	sessions, err := s.ctl.ShowUser(ctx, user.Username)
	if err != nil {
		logger.Debug("online check for %s: %v", user.Username, err)
	} else {
		user.Online = len(sessions) > 0
	}

	return user, nil
}

// MarkOnline sets the Online flag on each user that has an active session.
func (s *OcservUserService) MarkOnline(ctx context.Context, users []models.OcservUser) []models.OcservUser {
	online, err := s.ctl.ShowUsers(ctx)
	if err != nil {
		logger.Debug("online lookup failed: %v", err)
		return users
	}

	active := make(map[string]struct{}, len(online))
	for _, o := range online {
		active[o.Username] = struct{}{}
	}
	for i := range users {
		_, users[i].Online = active[users[i].Username]
	}
	return users
}

// Lock deactivates a user, locks the credential and drops any active session.
func (s *OcservUserService) Lock(ctx context.Context, id int64) error {
	const op = "OcservUserService.Lock"

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return MapRepoError(op, err)
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return MapRepoError(op, err)
	}
	if err := s.passwd.Lock(ctx, user.Username); err != nil {
		return WrapOcservError(op, err)
	}
	if err := s.ctl.Disconnect(ctx, user.Username); err != nil {
		logger.Debug("disconnect after lock for %s: %v", user.Username, err)
	}
	return nil
}

// Unlock reactivates a user and unlocks the credential.
func (s *OcservUserService) Unlock(ctx context.Context, id int64) error {
	const op = "OcservUserService.Unlock"

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return MapRepoError(op, err)
	}

	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return MapRepoError(op, err)
	}
	if err := s.passwd.Unlock(ctx, user.Username); err != nil {
		return WrapOcservError(op, err)
	}
	return nil
}

// Disconnect drops the user's active VPN session.
func (s *OcservUserService) Disconnect(ctx context.Context, id int64) error {
	const op = "OcservUserService.Disconnect"

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return MapRepoError(op, err)
	}

	if err := s.ctl.Disconnect(ctx, user.Username); err != nil {
		return WrapOcservError(op, err)
	}
	return nil
}
