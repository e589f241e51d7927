package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Check outcomes recorded in history.
const (
	OutcomeBooked  = "booked"
	OutcomeNoSlots = "no_slots"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// CheckResult is the per-request outcome of one orchestrated evaluation.
type CheckResult struct {
	RequestID string `json:"request_id"`
	Success   bool   `json:"success"`
	Available bool   `json:"available"`
	Booked    bool   `json:"booked"`
	Message   string `json:"message"`
	BookingID string `json:"booking_id,omitempty"`
	Slots     []Slot `json:"slots,omitempty"`
}

// CheckSummary aggregates a bulk evaluation pass.
type CheckSummary struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Checked int           `json:"checked"`
	Booked  int           `json:"booked"`
	Results []CheckResult `json:"results"`
}

// CheckRecord is one persisted evaluation of a monitoring request.
type CheckRecord struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CorrelationID string             `json:"correlation_id" bson:"correlation_id"`
	RequestID     string             `json:"request_id" bson:"request_id"`
	CheckedAt     time.Time          `json:"checked_at" bson:"checked_at"`
	DurationMs    int64              `json:"duration_ms" bson:"duration_ms"`
	Outcome       string             `json:"outcome" bson:"outcome"`
	Available     bool               `json:"available" bson:"available"`
	Booked        bool               `json:"booked" bson:"booked"`
	Stage         string             `json:"stage,omitempty" bson:"stage,omitempty"`
	Message       string             `json:"message,omitempty" bson:"message,omitempty"`
	BookingID     string             `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
}

// CheckRecordSummary is the list-response view of a check record.
type CheckRecordSummary struct {
	CorrelationID string `json:"correlation_id"`
	RequestID     string `json:"request_id"`
	CheckedAt     string `json:"checked_at"`
	DurationMs    int64  `json:"duration_ms"`
	Outcome       string `json:"outcome"`
	Stage         string `json:"stage,omitempty"`
	Message       string `json:"message,omitempty"`
}

// ToSummary converts a CheckRecord to its list view.
func (cr *CheckRecord) ToSummary() CheckRecordSummary {
	var checkedAt string
	if !cr.CheckedAt.IsZero() {
		checkedAt = cr.CheckedAt.Format(time.RFC3339)
	}

	return CheckRecordSummary{
		CorrelationID: cr.CorrelationID,
		RequestID:     cr.RequestID,
		CheckedAt:     checkedAt,
		DurationMs:    cr.DurationMs,
		Outcome:       cr.Outcome,
		Stage:         cr.Stage,
		Message:       cr.Message,
	}
}
