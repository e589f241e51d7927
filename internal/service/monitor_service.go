package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusrooms/roomwatch/internal/database"
	"github.com/campusrooms/roomwatch/internal/model"
)

// MonitorService manages the lifecycle of monitoring requests
type MonitorService struct {
	monitorRepo *database.MonitorRepository
	booker      *Booker
}

// NewMonitorService creates a new monitor service
func NewMonitorService(monitorRepo *database.MonitorRepository, booker *Booker) *MonitorService {
	return &MonitorService{
		monitorRepo: monitorRepo,
		booker:      booker,
	}
}

// Create validates and persists a new monitoring request. When the caller is
// authenticated, missing requester fields are filled from the identity before
// validation.
func (s *MonitorService) Create(ctx context.Context, req *model.BookingRequest, notifyURL string, identity *model.Identity) (*model.MonitoringRequest, error) {
	if identity != nil {
		if req.Email == "" {
			req.Email = identity.Email
		}
		if req.FirstName == "" {
			req.FirstName = identity.FirstName
		}
		if req.LastName == "" {
			req.LastName = identity.LastName
		}
	}

	if err := s.booker.Validate(req); err != nil {
		return nil, err
	}

	endTime, err := req.EndTime()
	if err != nil {
		return nil, &ValidationError{Detail: "invalid booking window", Err: err}
	}

	targetDate, err := time.ParseInLocation(model.DateLayout, req.Date, time.Local)
	if err != nil {
		return nil, &ValidationError{Detail: "invalid target date", Err: err}
	}

	now := time.Now()
	monitoring := &model.MonitoringRequest{
		RequestID:      model.NewRequestID(req.Date, req.StartTime, endTime, now),
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		TargetDate:     req.Date,
		StartTime:      req.StartTime,
		EndTime:        endTime,
		DurationHours:  req.DurationHours,
		RoomPreference: req.RoomPreference,
		NotifyURL:      notifyURL,
		Status:         model.StatusActive,
		CreatedAt:      now.UTC(),
		// Kept until the whole target day has elapsed, then garbage
		// collected by the TTL index.
		ExpiresAt: targetDate.AddDate(0, 0, 1).UTC(),
	}
	if identity != nil {
		monitoring.UserID = identity.ID
	}

	if err := s.monitorRepo.Create(ctx, monitoring); err != nil {
		return nil, fmt.Errorf("failed to persist monitoring request: %w", err)
	}

	slog.Info("Created monitoring request",
		"request_id", monitoring.RequestID,
		"target_date", monitoring.TargetDate,
		"start_time", monitoring.StartTime,
		"duration_hours", monitoring.DurationHours,
	)

	return monitoring, nil
}

// Get retrieves one monitoring request by its request id
func (s *MonitorService) Get(ctx context.Context, requestID string) (*model.MonitoringRequest, error) {
	return s.monitorRepo.GetByRequestID(ctx, requestID)
}

// ListForUser retrieves the monitoring requests created by a user
func (s *MonitorService) ListForUser(ctx context.Context, userID string) ([]model.MonitoringRequest, error) {
	return s.monitorRepo.FindByUser(ctx, userID)
}

// ListActive retrieves all still-active monitoring requests
func (s *MonitorService) ListActive(ctx context.Context) ([]model.MonitoringRequest, error) {
	return s.monitorRepo.FindActive(ctx)
}

// Stop moves an active request to the stopped state. When ownerID is set the
// stop only succeeds for requests created by that owner. Returns false when
// the request was not active (or not owned by the caller).
func (s *MonitorService) Stop(ctx context.Context, requestID, ownerID string) (bool, error) {
	stopped, err := s.monitorRepo.Stop(ctx, requestID, ownerID)
	if err != nil {
		return false, err
	}

	if stopped {
		slog.Info("Stopped monitoring request", "request_id", requestID)
	}

	return stopped, nil
}
