package model

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for grid dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for slot timestamps.
	TimeLayout = "2006-01-02 15:04:05"
	// ClockLayout is the caller-facing start time format.
	ClockLayout = "15:04"
)

// BookingRequest is a caller-supplied intent to book a room. It is built per
// invocation and only persisted when wrapped in a MonitoringRequest.
type BookingRequest struct {
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime      string `json:"startTime" validate:"required"`
	DurationHours  int    `json:"duration" validate:"required,min=1,max=2"`
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	RoomPreference int    `json:"roomPreference,omitempty" validate:"omitempty,min=1"`
}

// NormalizeStartTime reduces a full "2006-01-02 15:04:05" start value to a
// bare clock time. Callers sometimes submit the slot timestamp verbatim.
func (br *BookingRequest) NormalizeStartTime() error {
	if len(br.StartTime) <= len(ClockLayout) {
		return nil
	}
	t, err := time.ParseInLocation(TimeLayout, br.StartTime, time.Local)
	if err != nil {
		return fmt.Errorf("invalid start time %q: %w", br.StartTime, err)
	}
	br.StartTime = t.Format(ClockLayout)
	return nil
}

// StartAt resolves the requested start as an absolute timestamp on the
// target date.
func (br *BookingRequest) StartAt() (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, br.Date+" "+br.StartTime, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/start time %q %q: %w", br.Date, br.StartTime, err)
	}
	return t, nil
}

// EndTime returns the clock time at which the requested window closes.
func (br *BookingRequest) EndTime() (string, error) {
	start, err := br.StartAt()
	if err != nil {
		return "", err
	}
	return start.Add(time.Duration(br.DurationHours) * time.Hour).Format(ClockLayout), nil
}

// BookedSlot is one reserved hour inside a confirmation.
type BookedSlot struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

// BookingConfirmation summarizes a committed reservation.
type BookingConfirmation struct {
	RoomID      int          `json:"room_id"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
	DisplayTime string       `json:"display_time"`
	SlotCount   int          `json:"slot_count"`
	BookingID   string       `json:"booking_id"`
	Slots       []BookedSlot `json:"slots"`
}

// BookingResult is the synchronous outcome of a one-shot booking call.
type BookingResult struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Booking *BookingConfirmation `json:"booking,omitempty"`
}

// NewBookingConfirmation builds a confirmation from the committed run.
func NewBookingConfirmation(run []Slot, bookingID string) *BookingConfirmation {
	slots := make([]BookedSlot, 0, len(run))
	for _, s := range run {
		slots = append(slots, BookedSlot{Start: s.Start, End: s.End})
	}
	start := RunStart(run)
	end := RunEnd(run)
	return &BookingConfirmation{
		RoomID:      run[0].RoomID,
		StartTime:   start,
		EndTime:     end,
		DisplayTime: fmt.Sprintf("%s - %s", start.Format("3:04 PM"), end.Format("3:04 PM")),
		SlotCount:   len(run),
		BookingID:   bookingID,
		Slots:       slots,
	}
}
