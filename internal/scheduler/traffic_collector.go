package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/ocserv-tools/ocserv-panel/internal/occtl"
	"github.com/ocserv-tools/ocserv-panel/internal/repository"
	"github.com/ocserv-tools/ocserv-panel/internal/services"
	"github.com/ocserv-tools/ocserv-panel/pkg/logger"
)

// collectInterval is how often session counters are sampled from occtl.
const collectInterval = 5 * time.Minute

// sessionCounters holds the last observed cumulative counters for a session.
type sessionCounters struct {
	rx uint64
	tx uint64
}

// TrafficCollectorService periodically samples per-session traffic counters
// from occtl, accumulates them into the user accounting tables, and enforces
// traffic quotas. It also resets monthly counters on month rollover.
type TrafficCollectorService struct {
	ctl     *occtl.Service
	users   *repository.OcservUserRepository
	traffic *repository.TrafficRepository
	userSvc *services.OcservUserService

	// lastSeen maps username to the counters observed on the previous sample.
	// occtl reports cumulative per-session byte counts, so usage is the delta
	// between samples. A counter that went backwards means a new session.
	lastSeen map[string]sessionCounters

	lastMonth time.Month
	ticker    *time.Ticker
	done      chan bool
	stopOnce  sync.Once
}

// NewTrafficCollectorService creates a new background traffic accounting service.
// The service must be started with [TrafficCollectorService.Start] to begin sampling.
func NewTrafficCollectorService(
	ctl *occtl.Service,
	users *repository.OcservUserRepository,
	traffic *repository.TrafficRepository,
	userSvc *services.OcservUserService,
) *TrafficCollectorService {
	return &TrafficCollectorService{
		ctl:      ctl,
		users:    users,
		traffic:  traffic,
		userSvc:  userSvc,
		lastSeen: make(map[string]sessionCounters),
		done:     make(chan bool),
	}
}

// Start begins periodic traffic collection.
func (s *TrafficCollectorService) Start() {
	logger.Info("Starting traffic collector service (runs every %s)", collectInterval)

	s.lastMonth = time.Now().Month()

	// Run immediately on start with timeout context
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	s.collect(ctx)
	cancel()

	s.ticker = time.NewTicker(collectInterval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				func() {
					ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
					defer cancel()
					s.collect(ctx)
				}()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop gracefully shuts down the collector.
func (s *TrafficCollectorService) Stop() {
	s.stopOnce.Do(func() {
		logger.Info("Stopping traffic collector service")
		select {
		case s.done <- true:
		case <-time.After(5 * time.Second):
			logger.Info("Traffic collector shutdown timeout")
		}
		if s.ticker != nil {
			s.ticker.Stop()
		}
	})
}

// collect samples occtl counters, records usage deltas and enforces quotas.
func (s *TrafficCollectorService) collect(ctx context.Context) {
	s.rolloverMonth(ctx)

	sessions, err := s.ctl.ShowUsers(ctx)
	if err != nil {
		logger.Error("Failed to query online users from occtl: %v", err)
		return
	}

	seen := make(map[string]sessionCounters, len(sessions))
	today := time.Now()

	for _, sess := range sessions {
		if sess.Username == "" {
			continue
		}

		// A user can hold multiple sessions when max-same-clients allows it.
		// Counters from all sessions of the same username are summed.
		c := seen[sess.Username]
		c.rx += sess.RXBytes
		c.tx += sess.TXBytes
		seen[sess.Username] = c
	}

	for username, current := range seen {
		prev := s.lastSeen[username]

		drx := current.rx
		dtx := current.tx
		if current.rx >= prev.rx && current.tx >= prev.tx {
			drx = current.rx - prev.rx
			dtx = current.tx - prev.tx
		}

		if drx == 0 && dtx == 0 {
			continue
		}

		user, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			// Sessions can belong to users managed outside the panel
			logger.Debug("Skipping traffic for unknown user %s: %v", username, err)
			continue
		}

		if err := s.users.AddTraffic(ctx, user.ID, drx, dtx); err != nil {
			logger.Error("Failed to record traffic for user %s: %v", username, err)
			continue
		}
		if err := s.traffic.AddUsage(ctx, user.ID, today, drx, dtx); err != nil {
			logger.Error("Failed to record daily usage for user %s: %v", username, err)
		}
	}

	s.lastSeen = seen

	s.enforceQuotas(ctx)
}

// enforceQuotas locks users whose accumulated traffic exceeds their quota.
func (s *TrafficCollectorService) enforceQuotas(ctx context.Context) {
	over, err := s.users.ListOverQuota(ctx)
	if err != nil {
		logger.Error("Failed to query users over quota: %v", err)
		return
	}

	for _, u := range over {
		if err := s.userSvc.Lock(ctx, u.ID); err != nil {
			logger.Error("Failed to lock user %s over traffic quota: %v", u.Username, err)
			continue
		}
		logger.Info("Locked user %s: traffic quota of %d GB exceeded", u.Username, u.TrafficGB)
	}
}

// rolloverMonth resets monthly traffic counters when the calendar month changes.
func (s *TrafficCollectorService) rolloverMonth(ctx context.Context) {
	month := time.Now().Month()
	if month == s.lastMonth {
		return
	}

	affected, err := s.users.ResetMonthlyTraffic(ctx)
	if err != nil {
		logger.Error("Failed to reset monthly traffic counters: %v", err)
		return
	}

	s.lastMonth = month
	logger.Info("Monthly traffic counters reset for %d users", affected)
}
