package notify

import (
	"context"
	"log/slog"

	"github.com/campusrooms/roomwatch/internal/database"
	"github.com/campusrooms/roomwatch/internal/model"
)

// OutcomeNotifier delivers booking outcomes to a monitoring request's
// webhook and persists the delivery log. Requests without a webhook are a
// no-op; delivery failures never affect the request's state.
type OutcomeNotifier struct {
	dispatcher       *Dispatcher
	notificationRepo *database.NotificationRepository
}

// NewOutcomeNotifier creates a new outcome notifier
func NewOutcomeNotifier(dispatcher *Dispatcher, notificationRepo *database.NotificationRepository) *OutcomeNotifier {
	return &OutcomeNotifier{
		dispatcher:       dispatcher,
		notificationRepo: notificationRepo,
	}
}

// NotifyOutcome sends the outcome of a settled monitoring request to its
// webhook, if one is configured.
func (n *OutcomeNotifier) NotifyOutcome(ctx context.Context, req *model.MonitoringRequest, result *model.CheckResult, correlationID string) {
	if req.NotifyURL == "" {
		return
	}

	payload := FormatOutcomePayload(req, result)

	log, err := n.dispatcher.Send(ctx, req.NotifyURL, payload, correlationID)
	if err != nil {
		slog.Error("Failed to deliver outcome notification",
			"request_id", req.RequestID,
			"correlation_id", correlationID,
			"error", err.Error(),
		)
	}

	log.RequestID = req.RequestID
	if saveErr := n.notificationRepo.Create(ctx, log); saveErr != nil {
		slog.Error("Failed to save notification log",
			"request_id", req.RequestID,
			"correlation_id", correlationID,
			"error", saveErr.Error(),
		)
	}
}
