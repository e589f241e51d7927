package scheduler

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/campusrooms/roomwatch/internal/config"
	"github.com/campusrooms/roomwatch/internal/database"
	"github.com/campusrooms/roomwatch/internal/service"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Scheduler drives periodic bulk checks of all active monitoring requests.
// It is disabled by default: deployments usually let an external cron hit
// the check-all endpoint instead. The sweep lock inside the checker keeps
// multiple pods from running overlapping passes.
type Scheduler struct {
	cfg      *config.Config
	checker  *service.Checker
	lockRepo *database.LockRepository
	podID    string
	schedule cron.Schedule
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	cfg *config.Config,
	checker *service.Checker,
	lockRepo *database.LockRepository,
) (*Scheduler, error) {
	// Get pod identifier (hostname in Kubernetes)
	podID, err := os.Hostname()
	if err != nil {
		podID = uuid.New().String() // Fallback to UUID
		slog.Warn("Failed to get hostname, using UUID as pod ID", "pod_id", podID)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cfg.SchedulerSchedule)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cfg:      cfg,
		checker:  checker,
		lockRepo: lockRepo,
		podID:    podID,
		schedule: schedule,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins the scheduler loop
func (s *Scheduler) Start(ctx context.Context) {
	if !s.cfg.SchedulerEnabled {
		slog.Info("Scheduler is disabled by configuration")
		return
	}

	slog.Info("Starting scheduler",
		"pod_id", s.podID,
		"schedule", s.cfg.SchedulerSchedule,
		"lock_ttl", s.cfg.SchedulerLockTTL,
	)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) {
	if !s.cfg.SchedulerEnabled {
		return
	}

	slog.Info("Stopping scheduler", "pod_id", s.podID)

	// Signal stop
	close(s.stopChan)

	// Wait for the in-flight sweep with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Scheduled sweep completed")
	case <-ctx.Done():
		slog.Warn("Timeout waiting for scheduled sweep to complete")
	}

	// Release all locks owned by this pod
	if err := s.lockRepo.ReleaseAllLocks(context.Background(), s.podID); err != nil {
		slog.Error("Failed to release locks during shutdown", "error", err)
	}

	slog.Info("Scheduler stopped", "pod_id", s.podID)
}

// run is the main scheduler loop
func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			s.sweep(ctx)
		case <-s.stopChan:
			timer.Stop()
			slog.Info("Scheduler stopped", "pod_id", s.podID)
			return
		case <-ctx.Done():
			timer.Stop()
			slog.Info("Scheduler context done", "pod_id", s.podID)
			return
		}
	}
}

// sweep runs one bulk check pass
func (s *Scheduler) sweep(ctx context.Context) {
	slog.Info("Scheduler sweep", "pod_id", s.podID, "time", time.Now().UTC().Format(time.RFC3339))

	// Clean expired locks first
	if cleaned, err := s.lockRepo.CleanExpiredLocks(ctx); err != nil {
		slog.Error("Failed to clean expired locks", "error", err)
	} else if cleaned > 0 {
		slog.Info("Cleaned expired locks", "count", cleaned)
	}

	summary, err := s.checker.CheckAll(ctx)
	if err != nil {
		slog.Error("Scheduled sweep failed", "pod_id", s.podID, "error", err)
		return
	}

	slog.Info("Scheduled sweep completed",
		"pod_id", s.podID,
		"checked", summary.Checked,
		"booked", summary.Booked,
	)
}
