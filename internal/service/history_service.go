package service

import (
	"context"
	"time"

	"github.com/campusrooms/roomwatch/internal/database"
	"github.com/campusrooms/roomwatch/internal/model"
	"go.mongodb.org/mongo-driver/bson"
)

// HistoryService answers queries over check history and notification logs
type HistoryService struct {
	checkRepo        *database.CheckRepository
	notificationRepo *database.NotificationRepository
}

// NewHistoryService creates a new history service
func NewHistoryService(checkRepo *database.CheckRepository, notificationRepo *database.NotificationRepository) *HistoryService {
	return &HistoryService{
		checkRepo:        checkRepo,
		notificationRepo: notificationRepo,
	}
}

// ListChecks retrieves check history summaries with optional filters
func (s *HistoryService) ListChecks(ctx context.Context, requestID, outcome, from, to string, page, limit int) ([]model.CheckRecordSummary, int64, error) {
	filter := bson.M{}

	if requestID != "" {
		filter["request_id"] = requestID
	}
	if outcome != "" {
		filter["outcome"] = outcome
	}
	if timeRange := parseTimeRange(from, to); len(timeRange) > 0 {
		filter["checked_at"] = timeRange
	}

	records, total, err := s.checkRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]model.CheckRecordSummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, records[i].ToSummary())
	}

	return summaries, total, nil
}

// GetCheck retrieves one check record by correlation id
func (s *HistoryService) GetCheck(ctx context.Context, correlationID string) (*model.CheckRecord, error) {
	return s.checkRepo.GetByCorrelationID(ctx, correlationID)
}

// ListNotifications retrieves notification log summaries with optional filters
func (s *HistoryService) ListNotifications(ctx context.Context, requestID, finalStatus string, page, limit int) ([]model.NotificationLogSummary, int64, error) {
	filter := bson.M{}

	if requestID != "" {
		filter["request_id"] = requestID
	}
	if finalStatus != "" {
		filter["final_status"] = finalStatus
	}

	logs, total, err := s.notificationRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]model.NotificationLogSummary, 0, len(logs))
	for i := range logs {
		summaries = append(summaries, logs[i].ToSummary())
	}

	return summaries, total, nil
}

func parseTimeRange(from, to string) bson.M {
	timeRange := bson.M{}

	if from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			timeRange["$gte"] = t
		}
	}
	if to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			timeRange["$lte"] = t
		}
	}

	return timeRange
}
