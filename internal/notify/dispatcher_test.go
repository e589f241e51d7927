package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusrooms/roomwatch/internal/model"
)

func fastRetryConfig() model.RetryConfig {
	return model.RetryConfig{
		MaxAttempts:    3,
		InitialDelayMs: 1,
		MaxDelayMs:     5,
		Multiplier:     2.0,
	}
}

func TestSend_DeliversPayload(t *testing.T) {
	var received model.NotificationPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q, want application/json", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(5*time.Second, fastRetryConfig())
	log, err := d.Send(context.Background(), server.URL, model.NotificationPayload{Text: "hello"}, "corr-1")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if log.FinalStatus != "delivered" {
		t.Errorf("final status = %q, want delivered", log.FinalStatus)
	}
	if len(log.Attempts) != 1 {
		t.Errorf("attempts = %d, want 1", len(log.Attempts))
	}
	if received.Text != "hello" {
		t.Errorf("payload text = %q, want hello", received.Text)
	}
}

func TestSend_RetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(5*time.Second, fastRetryConfig())
	log, err := d.Send(context.Background(), server.URL, model.NotificationPayload{Text: "x"}, "corr-1")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if log.FinalStatus != "delivered" {
		t.Errorf("final status = %q, want delivered", log.FinalStatus)
	}
	if len(log.Attempts) != 3 {
		t.Errorf("attempts = %d, want 3", len(log.Attempts))
	}
}

func TestSend_ClientErrorDoesNotRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	d := NewDispatcher(5*time.Second, fastRetryConfig())
	log, err := d.Send(context.Background(), server.URL, model.NotificationPayload{Text: "x"}, "corr-1")
	if err == nil {
		t.Fatal("expected delivery error for 400 response")
	}
	if log.FinalStatus != "failed" {
		t.Errorf("final status = %q, want failed", log.FinalStatus)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1 (no retry on client error)", calls)
	}
}

func TestSend_ExhaustsRetries(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d := NewDispatcher(5*time.Second, fastRetryConfig())
	log, err := d.Send(context.Background(), server.URL, model.NotificationPayload{Text: "x"}, "corr-1")
	if err == nil {
		t.Fatal("expected delivery error after exhausted retries")
	}
	if log.FinalStatus != "failed" {
		t.Errorf("final status = %q, want failed", log.FinalStatus)
	}
	if calls != 3 {
		t.Errorf("server called %d times, want 3", calls)
	}
}

func TestFormatOutcomePayload_Booked(t *testing.T) {
	req := &model.MonitoringRequest{
		TargetDate: "2026-09-15",
		StartTime:  "14:00",
		EndTime:    "16:00",
		CheckCount: 4,
	}
	result := &model.CheckResult{
		Booked:    true,
		BookingID: "555",
		Slots:     []model.Slot{{RoomID: 101}},
	}

	payload := FormatOutcomePayload(req, result)
	want := "✅ Booked room 101 on 2026-09-15 from 14:00 to 16:00 (booking id 555, after 5 checks)"
	if payload.Text != want {
		t.Errorf("payload = %q, want %q", payload.Text, want)
	}
}

func TestFormatOutcomePayload_Failure(t *testing.T) {
	req := &model.MonitoringRequest{
		TargetDate: "2026-09-15",
		StartTime:  "14:00",
		EndTime:    "16:00",
	}
	result := &model.CheckResult{Message: "booking attempt failed: checksum rejected"}

	payload := FormatOutcomePayload(req, result)
	want := "🚨 Monitoring for 2026-09-15 14:00-16:00 stopped: booking attempt failed: checksum rejected"
	if payload.Text != want {
		t.Errorf("payload = %q, want %q", payload.Text, want)
	}
}
