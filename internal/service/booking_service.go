package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusrooms/roomwatch/internal/finder"
	"github.com/campusrooms/roomwatch/internal/libcal"
	"github.com/campusrooms/roomwatch/internal/model"
	"github.com/go-playground/validator/v10"
)

// Booker executes one-shot bookings against the remote space-booking system.
// Every attempt runs on a fresh client because the remote cart lives in
// session cookies.
type Booker struct {
	cfg      libcal.Config
	timeout  time.Duration
	validate *validator.Validate
}

// NewBooker creates a new booker
func NewBooker(cfg libcal.Config, timeout time.Duration) *Booker {
	return &Booker{
		cfg:      cfg,
		timeout:  timeout,
		validate: validator.New(),
	}
}

// Availability fetches and classifies the availability grid for one day.
func (b *Booker) Availability(ctx context.Context, date string) (map[int][]model.Slot, error) {
	client := libcal.NewClient(b.cfg, b.timeout)

	raw, err := client.FetchGrid(ctx, date)
	if err != nil {
		return nil, err
	}

	return libcal.ParseGrid(raw), nil
}

// Book attempts to reserve the requested window once. Returns NoSlotsError
// when no room currently offers it.
func (b *Booker) Book(ctx context.Context, req *model.BookingRequest) (*model.BookingResult, error) {
	if err := b.Validate(req); err != nil {
		return nil, err
	}

	start, err := req.StartAt()
	if err != nil {
		return nil, &ValidationError{Detail: "invalid start time", Err: err}
	}

	slotsByRoom, err := b.Availability(ctx, req.Date)
	if err != nil {
		return nil, err
	}

	if req.RoomPreference != 0 {
		slotsByRoom = filterRoom(slotsByRoom, req.RoomPreference)
	}

	run := finder.Find(slotsByRoom, start, req.DurationHours)
	if run == nil {
		return nil, &NoSlotsError{
			Date:          req.Date,
			StartTime:     req.StartTime,
			DurationHours: req.DurationHours,
		}
	}

	confirmation, err := b.BookRun(ctx, run, req)
	if err != nil {
		return nil, err
	}

	return &model.BookingResult{
		Success: true,
		Message: fmt.Sprintf("Successfully booked room %d for %s", confirmation.RoomID, confirmation.DisplayTime),
		Booking: confirmation,
	}, nil
}

// BookRun drives the three-stage booking transaction for an already located
// run: reserve the first hour, extend to the second when the run spans two,
// then commit with the requester's details.
func (b *Booker) BookRun(ctx context.Context, run []model.Slot, req *model.BookingRequest) (*model.BookingConfirmation, error) {
	client := libcal.NewClient(b.cfg, b.timeout)

	slog.Info("Starting booking transaction",
		"room_id", run[0].RoomID,
		"date", req.Date,
		"start_time", req.StartTime,
		"slot_count", len(run),
	)

	reservation, err := client.Reserve(ctx, run[0], req.Date)
	if err != nil {
		return nil, err
	}

	if len(run) > 1 {
		reservation, err = client.Extend(ctx, reservation, run[0], run[1], req.Date)
		if err != nil {
			return nil, err
		}
	}

	bookingID, err := client.Commit(ctx, reservation, run, libcal.Requester{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Booking transaction committed",
		"room_id", run[0].RoomID,
		"booking_id", bookingID,
	)

	return model.NewBookingConfirmation(run, bookingID), nil
}

// Validate normalizes and validates a booking request in place.
func (b *Booker) Validate(req *model.BookingRequest) error {
	if err := req.NormalizeStartTime(); err != nil {
		return &ValidationError{Detail: "invalid start time", Err: err}
	}

	if err := b.validate.Struct(req); err != nil {
		return &ValidationError{Detail: "invalid booking request", Err: err}
	}

	return nil
}

func filterRoom(slotsByRoom map[int][]model.Slot, roomID int) map[int][]model.Slot {
	filtered := make(map[int][]model.Slot, 1)
	if slots, ok := slotsByRoom[roomID]; ok {
		filtered[roomID] = slots
	}
	return filtered
}
