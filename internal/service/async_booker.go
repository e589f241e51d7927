package service

import (
	"context"
	"log/slog"

	"github.com/campusrooms/roomwatch/internal/model"
	"github.com/google/uuid"
)

// AsyncBooker handles async execution of one-shot bookings
type AsyncBooker struct {
	booker   *Booker
	jobStore *model.JobStatusStore
}

// NewAsyncBooker creates a new async booker
func NewAsyncBooker(booker *Booker) *AsyncBooker {
	return &AsyncBooker{
		booker:   booker,
		jobStore: model.NewJobStatusStore(),
	}
}

// SubmitJob submits a booking request for async execution. The request is
// validated synchronously so malformed input fails before a job is created.
func (ab *AsyncBooker) SubmitJob(ctx context.Context, req *model.BookingRequest) (string, error) {
	if err := ab.booker.Validate(req); err != nil {
		return "", err
	}

	// Generate job ID
	jobID := uuid.New().String()
	correlationID := uuid.New().String()

	// Create job status
	status := &model.JobStatus{
		JobID:         jobID,
		Status:        "queued",
		CorrelationID: correlationID,
	}
	ab.jobStore.Set(jobID, status)

	// Execute in background
	go ab.bookAsync(context.Background(), jobID, correlationID, req)

	return jobID, nil
}

// GetJobStatus retrieves the status of an async job
func (ab *AsyncBooker) GetJobStatus(jobID string) (*model.JobStatus, bool) {
	return ab.jobStore.Get(jobID)
}

// bookAsync executes a booking asynchronously
func (ab *AsyncBooker) bookAsync(ctx context.Context, jobID, correlationID string, req *model.BookingRequest) {
	// Update status to processing
	if status, exists := ab.jobStore.Get(jobID); exists {
		status.Status = "processing"
		ab.jobStore.Set(jobID, status)
	}

	slog.Info("Starting async booking",
		"job_id", jobID,
		"correlation_id", correlationID,
		"date", req.Date,
		"start_time", req.StartTime,
	)

	// Execute booking
	result, err := ab.booker.Book(ctx, req)

	// Update job status
	if status, exists := ab.jobStore.Get(jobID); exists {
		if err != nil {
			status.Status = "failed"
			status.Error = err.Error()
		} else {
			status.Status = "completed"
			status.Result = result
		}
		ab.jobStore.Set(jobID, status)
	}

	slog.Info("Async booking completed",
		"job_id", jobID,
		"correlation_id", correlationID,
		"status", func() string {
			if err != nil {
				return "failed"
			}
			return "completed"
		}(),
	)
}
