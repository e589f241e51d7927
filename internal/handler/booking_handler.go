package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/campusrooms/roomwatch/internal/libcal"
	"github.com/campusrooms/roomwatch/internal/model"
	"github.com/campusrooms/roomwatch/internal/service"
)

// BookingHandler handles one-shot booking operations
type BookingHandler struct {
	booker      *service.Booker
	asyncBooker *service.AsyncBooker
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(booker *service.Booker, asyncBooker *service.AsyncBooker) *BookingHandler {
	return &BookingHandler{
		booker:      booker,
		asyncBooker: asyncBooker,
	}
}

// AsyncResponse represents async booking response
type AsyncResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Book handles POST /api/book
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// Fill requester fields from the session when omitted
	if identity := IdentityFrom(r.Context()); identity != nil {
		if req.Email == "" {
			req.Email = identity.Email
		}
		if req.FirstName == "" {
			req.FirstName = identity.FirstName
		}
		if req.LastName == "" {
			req.LastName = identity.LastName
		}
	}

	// Check if async
	if r.URL.Query().Get("async") == "true" {
		jobID, err := h.asyncBooker.SubmitJob(r.Context(), &req)
		if err != nil {
			writeBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, AsyncResponse{
			JobID:   jobID,
			Status:  "queued",
			Message: "Booking queued successfully",
		})
		return
	}

	result, err := h.booker.Book(r.Context(), &req)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// JobStatus handles GET /api/book/jobs/{job_id}
func (h *BookingHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/book/jobs/")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job id is required")
		return
	}

	status, exists := h.asyncBooker.GetJobStatus(jobID)
	if !exists {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// writeBookingError maps booking failures onto HTTP statuses
func writeBookingError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	var noSlotsErr *service.NoSlotsError
	var stageErr *libcal.StageError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &noSlotsErr):
		writeJSON(w, http.StatusConflict, model.BookingResult{
			Success: false,
			Message: err.Error(),
		})
	case errors.As(err, &stageErr):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
