package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/campusrooms/roomwatch/internal/database"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const serviceName = "roomwatch-booking"

// mongoPinger is the slice of the Mongo client the health probes use.
type mongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// HealthHandler reports liveness and readiness of the booking service.
// Mongo is the only hard dependency; the booking portal itself is probed
// lazily on first use, so it is not part of the health picture.
type HealthHandler struct {
	pinger    mongoPinger
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.MongoDB, version string) *HealthHandler {
	return &HealthHandler{
		pinger:    db.Client,
		startTime: time.Now(),
		version:   version,
	}
}

// DependencyStatus describes one backing dependency in a health report.
type DependencyStatus struct {
	Status string `json:"status"`
	PingMs int64  `json:"ping_ms"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Service       string           `json:"service"`
	Status        string           `json:"status"`
	Version       string           `json:"version"`
	Timestamp     string           `json:"timestamp"`
	MongoDB       DependencyStatus `json:"mongodb"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Ready   bool   `json:"ready"`
	MongoDB string `json:"mongodb"`
}

// pingMongo measures one round trip to Mongo.
func (h *HealthHandler) pingMongo(r *http.Request) DependencyStatus {
	start := time.Now()
	if err := h.pinger.Ping(r.Context(), nil); err != nil {
		return DependencyStatus{Status: "disconnected", PingMs: time.Since(start).Milliseconds()}
	}
	return DependencyStatus{Status: "connected", PingMs: time.Since(start).Milliseconds()}
}

// Health returns the service health status. The process is reported as
// degraded rather than unhealthy when Mongo is unreachable: scheduled
// sweeps stall but the HTTP surface keeps serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	mongo := h.pingMongo(r)

	status := "healthy"
	if mongo.Status != "connected" {
		status = "degraded"
	}

	response := HealthResponse{
		Service:       serviceName,
		Status:        status,
		Version:       h.version,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		MongoDB:       mongo,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	writeJSON(w, http.StatusOK, response)
}

// Ready returns the service readiness status. Booking and monitoring
// both persist through Mongo, so the service is not ready without it.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	mongo := h.pingMongo(r)
	ready := mongo.Status == "connected"

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, ReadyResponse{
		Ready:   ready,
		MongoDB: mongo.Status,
	})
}
