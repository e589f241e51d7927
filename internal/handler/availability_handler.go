package handler

import (
	"net/http"

	"github.com/campusrooms/roomwatch/internal/service"
)

// AvailabilityHandler serves the classified availability grid
type AvailabilityHandler struct {
	booker *service.Booker
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(booker *service.Booker) *AvailabilityHandler {
	return &AvailabilityHandler{
		booker: booker,
	}
}

// Get handles GET /api/availability?date=YYYY-MM-DD
func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	slotsByRoom, err := h.booker.Availability(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch availability: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, slotsByRoom)
}
