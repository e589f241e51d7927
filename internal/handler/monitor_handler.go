package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/campusrooms/roomwatch/internal/database"
	"github.com/campusrooms/roomwatch/internal/model"
	"github.com/campusrooms/roomwatch/internal/service"
	"github.com/campusrooms/roomwatch/pkg/middleware"
	"github.com/google/uuid"
)

// MonitorHandler handles monitoring request operations
type MonitorHandler struct {
	monitors *service.MonitorService
	checker  *service.Checker
}

// NewMonitorHandler creates a new monitor handler
func NewMonitorHandler(monitors *service.MonitorService, checker *service.Checker) *MonitorHandler {
	return &MonitorHandler{
		monitors: monitors,
		checker:  checker,
	}
}

// CreateMonitoringRequest is the payload for starting monitoring
type CreateMonitoringRequest struct {
	model.BookingRequest
	NotifyURL string `json:"notifyUrl,omitempty"`
}

// Create handles POST /api/monitoring
func (h *MonitorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMonitoringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	monitoring, err := h.monitors.Create(r.Context(), &req.BookingRequest, req.NotifyURL, IdentityFrom(r.Context()))
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, monitoring)
}

// List handles GET /api/monitoring. Authenticated callers see their own
// requests in full; anonymous callers get sanitized summaries of active
// requests.
func (h *MonitorHandler) List(w http.ResponseWriter, r *http.Request) {
	if identity := IdentityFrom(r.Context()); identity != nil {
		requests, err := h.monitors.ListForUser(r.Context(), identity.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
		return
	}

	active, err := h.monitors.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]model.MonitoringSummary, 0, len(active))
	for i := range active {
		summaries = append(summaries, active[i].ToSummary())
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": summaries})
}

// Active handles GET /api/monitoring/active
func (h *MonitorHandler) Active(w http.ResponseWriter, r *http.Request) {
	active, err := h.monitors.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]model.MonitoringSummary, 0, len(active))
	for i := range active {
		summaries = append(summaries, active[i].ToSummary())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(summaries),
		"requests": summaries,
	})
}

// Get handles GET /api/monitoring/{request_id}
func (h *MonitorHandler) Get(w http.ResponseWriter, r *http.Request, requestID string) {
	monitoring, err := h.monitors.Get(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Monitoring request not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, monitoring)
}

// Stop handles POST /api/monitoring/{request_id}/stop
func (h *MonitorHandler) Stop(w http.ResponseWriter, r *http.Request, requestID string) {
	var ownerID string
	if identity := IdentityFrom(r.Context()); identity != nil {
		ownerID = identity.ID
	}

	stopped, err := h.monitors.Stop(r.Context(), requestID, ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !stopped {
		monitoring, getErr := h.monitors.Get(r.Context(), requestID)
		if errors.Is(getErr, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Monitoring request not found")
			return
		}
		if getErr == nil && monitoring.Terminal() {
			writeError(w, http.StatusConflict, "Monitoring request is not active (status: "+monitoring.Status+")")
			return
		}
		writeError(w, http.StatusForbidden, "Monitoring request belongs to another user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"request_id": requestID,
		"status":     model.StatusStopped,
	})
}

// CheckAndBook handles POST /api/monitoring/{request_id}/check-and-book
func (h *MonitorHandler) CheckAndBook(w http.ResponseWriter, r *http.Request, requestID string) {
	correlationID := middleware.GetCorrelationID(r.Context())
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	result, err := h.checker.CheckOne(r.Context(), requestID, correlationID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Monitoring request not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CheckAll handles POST /api/monitoring/check-all
func (h *MonitorHandler) CheckAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.checker.CheckAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// monitoringPathParts splits /api/monitoring/{request_id}[/{action}]
func monitoringPathParts(path string) (requestID, action string) {
	rest := strings.TrimPrefix(path, "/api/monitoring/")
	parts := strings.SplitN(rest, "/", 2)
	requestID = parts[0]
	if len(parts) > 1 {
		action = parts[1]
	}
	return requestID, action
}
