// Package scheduler provides background task scheduling for the panel.
package scheduler

import (
	"context"
	"time"

	"github.com/ocserv-tools/ocserv-panel/internal/repository"
	"github.com/ocserv-tools/ocserv-panel/internal/services"
	"github.com/ocserv-tools/ocserv-panel/pkg/logger"
)

// UserExpirationService handles automatic deactivation of VPN users past their expire date
type UserExpirationService struct {
	repo    *repository.OcservUserRepository
	userSvc *services.OcservUserService
	ticker  *time.Ticker
	done    chan bool
}

// NewUserExpirationService creates a new user expiration service
func NewUserExpirationService(repo *repository.OcservUserRepository, userSvc *services.OcservUserService) *UserExpirationService {
	return &UserExpirationService{
		repo:    repo,
		userSvc: userSvc,
		done:    make(chan bool),
	}
}

// Start begins the hourly expiration check
func (s *UserExpirationService) Start() {
	logger.Info("Starting user expiration service (runs hourly)")

	// Run immediately on start
	s.expireUsers()

	// Then run every hour
	s.ticker = time.NewTicker(1 * time.Hour)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.expireUsers()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop halts the expiration service
func (s *UserExpirationService) Stop() {
	logger.Info("Stopping user expiration service")
	if s.ticker != nil {
		s.ticker.Stop()
	}
	s.done <- true
}

// expireUsers locks users whose expire date has passed. Locking removes the
// credential from the password file and drops any active session, so expired
// users cannot reconnect until an admin unlocks them.
func (s *UserExpirationService) expireUsers() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	users, err := s.repo.ListExpired(ctx, time.Now())
	if err != nil {
		logger.Error("Failed to query expired users: %v", err)
		return
	}

	var locked int
	for _, u := range users {
		if err := s.userSvc.Lock(ctx, u.ID); err != nil {
			logger.Error("Failed to lock expired user %s: %v", u.Username, err)
			continue
		}
		locked++
	}

	if locked > 0 {
		logger.Info("Locked %d users past their expire date", locked)
	}
}
