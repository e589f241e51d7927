package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	return f.err
}

func newTestHealthHandler(pingErr error) *HealthHandler {
	return &HealthHandler{
		pinger:    fakePinger{err: pingErr},
		startTime: time.Now(),
		version:   "test",
	}
}

func TestHealth_Healthy(t *testing.T) {
	h := newTestHealthHandler(nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Service != "roomwatch-booking" {
		t.Errorf("service = %q, want roomwatch-booking", resp.Service)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.MongoDB.Status != "connected" {
		t.Errorf("mongodb status = %q, want connected", resp.MongoDB.Status)
	}
}

func TestHealth_DegradedWhenMongoDown(t *testing.T) {
	h := newTestHealthHandler(errors.New("server selection timeout"))

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	// Liveness stays 200, the body carries the degradation
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
	if resp.MongoDB.Status != "disconnected" {
		t.Errorf("mongodb status = %q, want disconnected", resp.MongoDB.Status)
	}
}

func TestReady_NotReadyWhenMongoDown(t *testing.T) {
	h := newTestHealthHandler(errors.New("server selection timeout"))

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp ReadyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Ready {
		t.Error("ready = true, want false")
	}
}

func TestReady_ReadyWhenMongoUp(t *testing.T) {
	h := newTestHealthHandler(nil)

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp ReadyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Ready || resp.MongoDB != "connected" {
		t.Errorf("ready = %v, mongodb = %q, want true/connected", resp.Ready, resp.MongoDB)
	}
}
