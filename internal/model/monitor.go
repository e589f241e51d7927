package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Monitoring request statuses. Every transition out of StatusActive is
// terminal; a terminal record is never evaluated again.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusStopped   = "stopped"
	StatusError     = "error"
)

// MonitoringRequest is a persisted, retryable booking intent. It is mutated
// only by the check orchestrator (status transitions, counters) or by an
// explicit stop, and becomes eligible for deletion once the target date has
// fully elapsed.
type MonitoringRequest struct {
	ID             primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	RequestID      string             `json:"request_id" bson:"request_id"`
	UserID         string             `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Email          string             `json:"email" bson:"email"`
	FirstName      string             `json:"first_name" bson:"first_name"`
	LastName       string             `json:"last_name" bson:"last_name"`
	TargetDate     string             `json:"target_date" bson:"target_date"`
	StartTime      string             `json:"start_time" bson:"start_time"`
	EndTime        string             `json:"end_time" bson:"end_time"`
	DurationHours  int                `json:"duration_hours" bson:"duration_hours"`
	RoomPreference int                `json:"room_preference,omitempty" bson:"room_preference,omitempty"`
	NotifyURL      string             `json:"notify_url,omitempty" bson:"notify_url,omitempty"`
	Status         string             `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	ExpiresAt      time.Time          `json:"expires_at" bson:"expires_at"`
	LastCheck      time.Time          `json:"last_check,omitempty" bson:"last_check,omitempty"`
	CheckCount     int                `json:"check_count" bson:"check_count"`
	SuccessDetails *SuccessDetails    `json:"success_details,omitempty" bson:"success_details,omitempty"`
	ErrorMessage   string             `json:"error_message,omitempty" bson:"error_message,omitempty"`
}

// SuccessDetails is the payload stored when a monitoring request completes.
type SuccessDetails struct {
	Slots     []Slot    `json:"slots" bson:"slots"`
	BookingID string    `json:"booking_id" bson:"booking_id"`
	BookedAt  time.Time `json:"booked_at" bson:"booked_at"`
	SlotCount int       `json:"slot_count" bson:"slot_count"`
}

// NewRequestID derives a globally unique identifier from the target window
// and the creation instant. Nanosecond resolution keeps two requests for the
// same window distinct even across users.
func NewRequestID(targetDate, startTime, endTime string, createdAt time.Time) string {
	return fmt.Sprintf("%s_%s-%s_%d", targetDate, startTime, endTime, createdAt.UnixNano())
}

// Terminal reports whether the request has left the active state.
func (mr *MonitoringRequest) Terminal() bool {
	return mr.Status != StatusActive
}

// BookingRequest reconstructs the embedded caller intent for evaluation.
func (mr *MonitoringRequest) BookingRequest() BookingRequest {
	return BookingRequest{
		Date:           mr.TargetDate,
		StartTime:      mr.StartTime,
		DurationHours:  mr.DurationHours,
		FirstName:      mr.FirstName,
		LastName:       mr.LastName,
		Email:          mr.Email,
		RoomPreference: mr.RoomPreference,
	}
}

// MonitoringSummary is the sanitized view exposed to anonymous listings:
// no requester identity, just the window and progress.
type MonitoringSummary struct {
	RequestID  string    `json:"request_id"`
	TargetDate string    `json:"target_date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	CheckCount int       `json:"check_count"`
}

// ToSummary converts a MonitoringRequest to its sanitized summary.
func (mr *MonitoringRequest) ToSummary() MonitoringSummary {
	return MonitoringSummary{
		RequestID:  mr.RequestID,
		TargetDate: mr.TargetDate,
		StartTime:  mr.StartTime,
		EndTime:    mr.EndTime,
		Status:     mr.Status,
		CreatedAt:  mr.CreatedAt,
		CheckCount: mr.CheckCount,
	}
}
