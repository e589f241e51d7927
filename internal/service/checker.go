package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/campusrooms/roomwatch/internal/finder"
	"github.com/campusrooms/roomwatch/internal/libcal"
	"github.com/campusrooms/roomwatch/internal/model"
	"github.com/campusrooms/roomwatch/internal/worker"
	"github.com/google/uuid"
)

// SweepLockKey is the lock key serializing bulk check-all passes across pods.
const SweepLockKey = "check-all"

// MonitorStore is the monitoring request persistence the checker needs
type MonitorStore interface {
	GetByRequestID(ctx context.Context, requestID string) (*model.MonitoringRequest, error)
	FindActive(ctx context.Context) ([]model.MonitoringRequest, error)
	RecordCheck(ctx context.Context, requestID string, checkedAt time.Time) error
	Complete(ctx context.Context, requestID string, details *model.SuccessDetails) (bool, error)
	Fail(ctx context.Context, requestID, message string) (bool, error)
}

// LockStore is the distributed lock primitive the checker needs
type LockStore interface {
	AcquireLock(ctx context.Context, key, podID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, podID string) error
}

// CheckLog persists per-evaluation history records
type CheckLog interface {
	Create(ctx context.Context, record *model.CheckRecord) error
}

// BookingEngine is the remote-facing surface the checker drives
type BookingEngine interface {
	Availability(ctx context.Context, date string) (map[int][]model.Slot, error)
	BookRun(ctx context.Context, run []model.Slot, req *model.BookingRequest) (*model.BookingConfirmation, error)
}

// Notifier delivers booking outcomes to a request's webhook, if any
type Notifier interface {
	NotifyOutcome(ctx context.Context, req *model.MonitoringRequest, result *model.CheckResult, correlationID string)
}

// Checker evaluates monitoring requests: fetch the grid, look for the
// requested window, and when it appears, drive the booking transaction and
// settle the request's final state. A distributed lock per request keeps
// concurrent evaluations from double booking; the conditional status update
// is the backstop when a lock expires mid-flight.
type Checker struct {
	monitors MonitorStore
	locks    LockStore
	checkLog CheckLog
	booker   BookingEngine
	notifier Notifier
	pool     *worker.WorkerPool
	podID    string
	lockTTL  time.Duration
}

// NewChecker creates a new checker
func NewChecker(
	monitors MonitorStore,
	locks LockStore,
	checkLog CheckLog,
	booker BookingEngine,
	notifier Notifier,
	pool *worker.WorkerPool,
	lockTTL time.Duration,
) *Checker {
	// Get pod identifier (hostname in Kubernetes)
	podID, err := os.Hostname()
	if err != nil {
		podID = uuid.New().String() // Fallback to UUID
		slog.Warn("Failed to get hostname, using UUID as pod ID", "pod_id", podID)
	}

	return &Checker{
		monitors: monitors,
		locks:    locks,
		checkLog: checkLog,
		booker:   booker,
		notifier: notifier,
		pool:     pool,
		podID:    podID,
		lockTTL:  lockTTL,
	}
}

// CheckOne evaluates a single monitoring request. The returned result always
// describes what happened; the error is reserved for lookup failures.
func (c *Checker) CheckOne(ctx context.Context, requestID, correlationID string) (result *model.CheckResult, err error) {
	start := time.Now()

	acquired, lockErr := c.locks.AcquireLock(ctx, requestID, c.podID, c.lockTTL)
	if lockErr != nil {
		return nil, fmt.Errorf("failed to acquire check lock: %w", lockErr)
	}
	if !acquired {
		slog.Debug("Check already in progress elsewhere",
			"request_id", requestID,
			"correlation_id", correlationID,
		)
		return &model.CheckResult{
			RequestID: requestID,
			Message:   "check already in progress",
		}, nil
	}
	defer c.locks.ReleaseLock(ctx, requestID, c.podID)

	req, err := c.monitors.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.Terminal() {
		return &model.CheckResult{
			RequestID: requestID,
			Message:   fmt.Sprintf("monitoring request is not active (status: %s)", req.Status),
		}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("check panicked: %v", r)
			slog.Error("Recovered from panic during check",
				"request_id", requestID,
				"correlation_id", correlationID,
				"panic", r,
			)
			if _, failErr := c.monitors.Fail(ctx, requestID, msg); failErr != nil {
				slog.Error("Failed to mark request as errored", "request_id", requestID, "error", failErr.Error())
			}
			result = &model.CheckResult{RequestID: requestID, Message: msg}
			c.record(ctx, requestID, correlationID, start, result, "")
			err = nil
		}
	}()

	var terminal bool
	result, terminal = c.evaluate(ctx, req, correlationID, start)

	if terminal {
		c.notifier.NotifyOutcome(ctx, req, result, correlationID)
	}

	return result, nil
}

// evaluate runs one grid-to-booking pass for an active request. The second
// return value reports whether this pass settled the request's final state.
func (c *Checker) evaluate(ctx context.Context, req *model.MonitoringRequest, correlationID string, start time.Time) (*model.CheckResult, bool) {
	booking := req.BookingRequest()

	slotsByRoom, err := c.booker.Availability(ctx, booking.Date)
	if err != nil {
		// Grid failures are transient: the request stays active and the
		// check counter is not advanced.
		result := &model.CheckResult{
			RequestID: req.RequestID,
			Message:   fmt.Sprintf("failed to check availability: %v", err),
		}
		c.record(ctx, req.RequestID, correlationID, start, result, stageOf(err))
		return result, false
	}

	if booking.RoomPreference != 0 {
		slotsByRoom = filterRoom(slotsByRoom, booking.RoomPreference)
	}

	if err := c.monitors.RecordCheck(ctx, req.RequestID, time.Now().UTC()); err != nil {
		slog.Warn("Failed to record check",
			"request_id", req.RequestID,
			"error", err.Error(),
		)
	}

	startAt, err := booking.StartAt()
	if err != nil {
		msg := fmt.Sprintf("invalid booking window: %v", err)
		c.settleFailure(ctx, req, msg)
		result := &model.CheckResult{RequestID: req.RequestID, Message: msg}
		c.record(ctx, req.RequestID, correlationID, start, result, "")
		return result, true
	}

	run := finder.Find(slotsByRoom, startAt, booking.DurationHours)
	if run == nil {
		result := &model.CheckResult{
			RequestID: req.RequestID,
			Success:   true,
			Message: fmt.Sprintf("No %d-hour consecutive slots available starting from %s",
				booking.DurationHours, booking.StartTime),
		}
		c.record(ctx, req.RequestID, correlationID, start, result, "")
		return result, false
	}

	confirmation, err := c.booker.BookRun(ctx, run, &booking)
	if err != nil {
		msg := fmt.Sprintf("booking attempt failed: %v", err)
		c.settleFailure(ctx, req, msg)
		result := &model.CheckResult{
			RequestID: req.RequestID,
			Available: true,
			Message:   msg,
		}
		c.record(ctx, req.RequestID, correlationID, start, result, stageOf(err))
		return result, true
	}

	completed, err := c.monitors.Complete(ctx, req.RequestID, &model.SuccessDetails{
		Slots:     run,
		BookingID: confirmation.BookingID,
		BookedAt:  time.Now().UTC(),
		SlotCount: len(run),
	})
	if err != nil {
		slog.Error("Failed to mark request as completed",
			"request_id", req.RequestID,
			"booking_id", confirmation.BookingID,
			"error", err.Error(),
		)
	} else if !completed {
		// Lost the status race after committing remotely. The remote
		// booking stands; only one checker ever gets here per request.
		slog.Warn("Request was no longer active after successful booking",
			"request_id", req.RequestID,
			"booking_id", confirmation.BookingID,
		)
	}

	result := &model.CheckResult{
		RequestID: req.RequestID,
		Success:   true,
		Available: true,
		Booked:    completed,
		Message:   fmt.Sprintf("Successfully booked room %d for %s", confirmation.RoomID, confirmation.DisplayTime),
		BookingID: confirmation.BookingID,
		Slots:     run,
	}
	c.record(ctx, req.RequestID, correlationID, start, result, "")
	return result, true
}

// CheckAll evaluates every active monitoring request through the worker
// pool. The sweep lock keeps overlapping passes from stacking up when a
// pass outlives the schedule interval.
func (c *Checker) CheckAll(ctx context.Context) (*model.CheckSummary, error) {
	acquired, err := c.locks.AcquireLock(ctx, SweepLockKey, c.podID, c.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !acquired {
		return &model.CheckSummary{
			Success: true,
			Message: "check-all already running",
		}, nil
	}
	defer c.locks.ReleaseLock(ctx, SweepLockKey, c.podID)

	active, err := c.monitors.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active requests: %w", err)
	}

	if len(active) == 0 {
		return &model.CheckSummary{
			Success: true,
			Message: "no active monitoring requests",
		}, nil
	}

	slog.Info("Starting bulk check", "active", len(active))

	reply := make(chan worker.Result, len(active))
	submitted := 0
	for _, req := range active {
		job := worker.Job{
			RequestID:     req.RequestID,
			CorrelationID: uuid.New().String(),
			Context:       ctx,
			Reply:         reply,
		}
		if err := c.pool.Submit(job); err != nil {
			slog.Error("Failed to submit check job",
				"request_id", req.RequestID,
				"error", err.Error(),
			)
			continue
		}
		submitted++
	}

	summary := &model.CheckSummary{Success: true}
	for i := 0; i < submitted; i++ {
		res := <-reply

		if res.Error != nil {
			summary.Results = append(summary.Results, model.CheckResult{
				RequestID: res.RequestID,
				Message:   res.Error.Error(),
			})
			continue
		}

		summary.Checked++
		if res.Check.Booked {
			summary.Booked++
		}
		summary.Results = append(summary.Results, *res.Check)
	}

	summary.Message = fmt.Sprintf("checked %d requests, booked %d", summary.Checked, summary.Booked)

	slog.Info("Bulk check completed",
		"checked", summary.Checked,
		"booked", summary.Booked,
	)

	return summary, nil
}

// settleFailure moves a request into the terminal error state.
func (c *Checker) settleFailure(ctx context.Context, req *model.MonitoringRequest, msg string) {
	failed, err := c.monitors.Fail(ctx, req.RequestID, msg)
	if err != nil {
		slog.Error("Failed to mark request as errored",
			"request_id", req.RequestID,
			"error", err.Error(),
		)
		return
	}
	if failed {
		slog.Info("Monitoring request errored",
			"request_id", req.RequestID,
			"message", msg,
		)
	}
}

// record persists one evaluation into check history.
func (c *Checker) record(ctx context.Context, requestID, correlationID string, start time.Time, result *model.CheckResult, stage string) {
	record := &model.CheckRecord{
		CorrelationID: correlationID,
		RequestID:     requestID,
		CheckedAt:     start.UTC(),
		DurationMs:    time.Since(start).Milliseconds(),
		Outcome:       outcomeOf(result),
		Available:     result.Available,
		Booked:        result.Booked,
		Stage:         stage,
		Message:       result.Message,
		BookingID:     result.BookingID,
	}

	if err := c.checkLog.Create(ctx, record); err != nil {
		slog.Error("Failed to save check record",
			"request_id", requestID,
			"correlation_id", correlationID,
			"error", err.Error(),
		)
	}
}

func outcomeOf(result *model.CheckResult) string {
	switch {
	case result.BookingID != "":
		return model.OutcomeBooked
	case result.Success && !result.Available:
		return model.OutcomeNoSlots
	default:
		return model.OutcomeFailed
	}
}

func stageOf(err error) string {
	var stageErr *libcal.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
