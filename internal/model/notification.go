package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RetryConfig represents webhook retry configuration
type RetryConfig struct {
	MaxAttempts    int     `json:"max_attempts" bson:"max_attempts"`
	InitialDelayMs int     `json:"initial_delay_ms" bson:"initial_delay_ms"`
	MaxDelayMs     int     `json:"max_delay_ms" bson:"max_delay_ms"`
	Multiplier     float64 `json:"multiplier" bson:"multiplier"`
}

// SetDefaults sets default values for retry configuration
func (rc *RetryConfig) SetDefaults() {
	if rc.MaxAttempts == 0 {
		rc.MaxAttempts = 3
	}
	if rc.InitialDelayMs == 0 {
		rc.InitialDelayMs = 1000
	}
	if rc.MaxDelayMs == 0 {
		rc.MaxDelayMs = 30000
	}
	if rc.Multiplier == 0 {
		rc.Multiplier = 2.0
	}
}

// NotificationAttempt represents a single webhook delivery attempt
type NotificationAttempt struct {
	AttemptNumber int       `json:"attempt_number" bson:"attempt_number"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
	StatusCode    int       `json:"status_code,omitempty" bson:"status_code,omitempty"`
	ResponseBody  string    `json:"response_body,omitempty" bson:"response_body,omitempty"`
	Error         string    `json:"error,omitempty" bson:"error,omitempty"`
	DurationMs    int64     `json:"duration_ms" bson:"duration_ms"`
}

// NotificationPayload represents the payload sent to the webhook
type NotificationPayload struct {
	Text string `json:"text" bson:"text"`
}

// NotificationLog records a booking-outcome webhook delivery with all of its
// attempts.
type NotificationLog struct {
	ID            primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	CorrelationID string                `json:"correlation_id" bson:"correlation_id"`
	RequestID     string                `json:"request_id" bson:"request_id"`
	WebhookURL    string                `json:"webhook_url" bson:"webhook_url"`
	Payload       NotificationPayload   `json:"payload" bson:"payload"`
	Attempts      []NotificationAttempt `json:"attempts" bson:"attempts"`
	FinalStatus   string                `json:"final_status" bson:"final_status"` // "delivered", "failed", "retrying"
	CreatedAt     time.Time             `json:"created_at" bson:"created_at"`
	CompletedAt   time.Time             `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// NotificationLogSummary represents a summary for list responses
type NotificationLogSummary struct {
	ID            string `json:"id"`
	CorrelationID string `json:"correlation_id"`
	RequestID     string `json:"request_id"`
	WebhookURL    string `json:"webhook_url"`
	FinalStatus   string `json:"final_status"`
	AttemptsCount int    `json:"attempts_count"`
	CreatedAt     string `json:"created_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

// ToSummary converts NotificationLog to NotificationLogSummary
func (nl *NotificationLog) ToSummary() NotificationLogSummary {
	var createdAt, completedAt string
	if !nl.CreatedAt.IsZero() {
		createdAt = nl.CreatedAt.Format(time.RFC3339)
	}
	if !nl.CompletedAt.IsZero() {
		completedAt = nl.CompletedAt.Format(time.RFC3339)
	}

	return NotificationLogSummary{
		ID:            nl.ID.Hex(),
		CorrelationID: nl.CorrelationID,
		RequestID:     nl.RequestID,
		WebhookURL:    nl.WebhookURL,
		FinalStatus:   nl.FinalStatus,
		AttemptsCount: len(nl.Attempts),
		CreatedAt:     createdAt,
		CompletedAt:   completedAt,
	}
}
