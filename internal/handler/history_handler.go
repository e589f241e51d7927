package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/campusrooms/roomwatch/internal/database"
	"github.com/campusrooms/roomwatch/internal/model"
	"github.com/campusrooms/roomwatch/internal/service"
)

// HistoryHandler handles check history and notification log queries
type HistoryHandler struct {
	service *service.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		service: service,
	}
}

// CheckListResponse represents check history list response
type CheckListResponse struct {
	Total   int64                      `json:"total"`
	Page    int                        `json:"page"`
	Limit   int                        `json:"limit"`
	Results []model.CheckRecordSummary `json:"results"`
}

// NotificationListResponse represents notification log list response
type NotificationListResponse struct {
	Total   int64                          `json:"total"`
	Page    int                            `json:"page"`
	Limit   int                            `json:"limit"`
	Results []model.NotificationLogSummary `json:"results"`
}

// ListChecks handles GET /api/checks
func (h *HistoryHandler) ListChecks(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	requestID := r.URL.Query().Get("request_id")
	outcome := r.URL.Query().Get("outcome")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	page := parseQueryInt(r, "page", 1)
	limit := parseQueryInt(r, "limit", 20)

	// Enforce max limit
	if limit > 100 {
		limit = 100
	}

	summaries, total, err := h.service.ListChecks(r.Context(), requestID, outcome, from, to, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := CheckListResponse{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Results: summaries,
	}

	writeJSON(w, http.StatusOK, response)
}

// GetCheck handles GET /api/checks/{correlation_id}
func (h *HistoryHandler) GetCheck(w http.ResponseWriter, r *http.Request) {
	correlationID := strings.TrimPrefix(r.URL.Path, "/api/checks/")

	record, err := h.service.GetCheck(r.Context(), correlationID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Check record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// ListNotifications handles GET /api/notifications
func (h *HistoryHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get("request_id")
	finalStatus := r.URL.Query().Get("final_status")
	page := parseQueryInt(r, "page", 1)
	limit := parseQueryInt(r, "limit", 20)

	if limit > 100 {
		limit = 100
	}

	summaries, total, err := h.service.ListNotifications(r.Context(), requestID, finalStatus, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := NotificationListResponse{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Results: summaries,
	}

	writeJSON(w, http.StatusOK, response)
}
