package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusrooms/roomwatch/internal/libcal"
	"github.com/campusrooms/roomwatch/internal/model"
)

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		Date:          "2026-09-15",
		StartTime:     "14:00",
		DurationHours: 2,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@baruchmail.cuny.edu",
	}
}

// fakeLibCal serves the grid, cart, and commit endpoints of the remote
// booking system with two free back-to-back hours in room 101.
func fakeLibCal(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/spaces/availability/grid":
			json.NewEncoder(w).Encode(map[string]any{
				"slots": []map[string]any{
					{"itemId": 101, "start": "2026-09-15 14:00:00", "end": "2026-09-15 15:00:00", "checksum": "cs1"},
					{"itemId": 101, "start": "2026-09-15 15:00:00", "end": "2026-09-15 16:00:00", "checksum": "cs2"},
				},
			})
		case "/spaces/availability/booking/add":
			json.NewEncoder(w).Encode(map[string]any{
				"bookings": []map[string]any{
					{"id": "cart-1", "eid": 101, "checksum": "cart-cs", "optionChecksums": []string{"opt0", "opt1"}},
				},
			})
		case "/ajax/space/book":
			json.NewEncoder(w).Encode(map[string]any{"bookId": "555"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testBooker(baseURL string) *Booker {
	return NewBooker(libcal.Config{
		BaseURL:           baseURL,
		LocationID:        16857,
		GroupID:           35704,
		AttestationField:  "q25689",
		AttestationAnswer: "Current student",
	}, 5*time.Second)
}

func TestBook_TwoHourWindow(t *testing.T) {
	server := fakeLibCal(t)
	defer server.Close()

	result, err := testBooker(server.URL).Book(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if !result.Success {
		t.Fatal("expected successful result")
	}
	if result.Booking == nil {
		t.Fatal("expected booking confirmation")
	}
	if result.Booking.BookingID != "555" {
		t.Errorf("booking id = %q, want 555", result.Booking.BookingID)
	}
	if result.Booking.RoomID != 101 {
		t.Errorf("room id = %d, want 101", result.Booking.RoomID)
	}
	if result.Booking.SlotCount != 2 {
		t.Errorf("slot count = %d, want 2", result.Booking.SlotCount)
	}
}

func TestBook_NoSlots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"slots": []any{}})
	}))
	defer server.Close()

	_, err := testBooker(server.URL).Book(context.Background(), validRequest())

	var noSlots *NoSlotsError
	if !errors.As(err, &noSlots) {
		t.Fatalf("expected NoSlotsError, got %v", err)
	}
	if noSlots.Date != "2026-09-15" {
		t.Errorf("error date = %q, want 2026-09-15", noSlots.Date)
	}
}

func TestBook_RoomPreferenceExcludesOtherRooms(t *testing.T) {
	server := fakeLibCal(t)
	defer server.Close()

	req := validRequest()
	req.RoomPreference = 999

	_, err := testBooker(server.URL).Book(context.Background(), req)

	var noSlots *NoSlotsError
	if !errors.As(err, &noSlots) {
		t.Fatalf("expected NoSlotsError for non-matching room preference, got %v", err)
	}
}

func TestBook_ValidationRejectsBeforeNetwork(t *testing.T) {
	booker := testBooker("http://localhost:0")

	cases := []struct {
		name   string
		mutate func(*model.BookingRequest)
	}{
		{"missing date", func(r *model.BookingRequest) { r.Date = "" }},
		{"bad date format", func(r *model.BookingRequest) { r.Date = "09/15/2026" }},
		{"zero duration", func(r *model.BookingRequest) { r.DurationHours = 0 }},
		{"three hours", func(r *model.BookingRequest) { r.DurationHours = 3 }},
		{"missing email", func(r *model.BookingRequest) { r.Email = "" }},
		{"bad email", func(r *model.BookingRequest) { r.Email = "not-an-email" }},
		{"missing first name", func(r *model.BookingRequest) { r.FirstName = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)

			_, err := booker.Book(context.Background(), req)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestValidate_NormalizesFullTimestamp(t *testing.T) {
	booker := testBooker("http://localhost:0")
	req := validRequest()
	req.StartTime = "2026-09-15 14:00:00"

	if err := booker.Validate(req); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if req.StartTime != "14:00" {
		t.Errorf("start time = %q, want normalized 14:00", req.StartTime)
	}
}

func TestAvailability_GridError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testBooker(server.URL).Availability(context.Background(), "2026-09-15")

	var stageErr *libcal.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if stageErr.Stage != libcal.StageGrid {
		t.Errorf("stage = %s, want grid", stageErr.Stage)
	}
}

func TestBook_OneHourSkipsExtend(t *testing.T) {
	var addCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/spaces/availability/grid":
			json.NewEncoder(w).Encode(map[string]any{
				"slots": []map[string]any{
					{"itemId": 101, "start": "2026-09-15 14:00:00", "end": "2026-09-15 15:00:00", "checksum": "cs1"},
				},
			})
		case "/spaces/availability/booking/add":
			addCalls++
			json.NewEncoder(w).Encode(map[string]any{
				"bookings": []map[string]any{
					{"id": "cart-1", "eid": 101, "checksum": "cart-cs", "optionChecksums": []string{"opt0"}},
				},
			})
		case "/ajax/space/book":
			json.NewEncoder(w).Encode(map[string]any{"bookId": "777"})
		}
	}))
	defer server.Close()

	req := validRequest()
	req.DurationHours = 1

	result, err := testBooker(server.URL).Book(context.Background(), req)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if result.Booking.BookingID != "777" {
		t.Errorf("booking id = %q, want 777", result.Booking.BookingID)
	}
	if addCalls != 1 {
		t.Errorf("cart endpoint called %d times, want 1 (no extend for a single hour)", addCalls)
	}
}
