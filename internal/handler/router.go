package handler

import (
	"net/http"

	"github.com/campusrooms/roomwatch/pkg/middleware"
)

// Router handles HTTP routing
type Router struct {
	authHandler         *AuthHandler
	availabilityHandler *AvailabilityHandler
	bookingHandler      *BookingHandler
	monitorHandler      *MonitorHandler
	historyHandler      *HistoryHandler
	healthHandler       *HealthHandler
	corsConfig          middleware.CORSConfig
}

// NewRouter creates a new router
func NewRouter(
	authHandler *AuthHandler,
	availabilityHandler *AvailabilityHandler,
	bookingHandler *BookingHandler,
	monitorHandler *MonitorHandler,
	historyHandler *HistoryHandler,
	healthHandler *HealthHandler,
	corsConfig middleware.CORSConfig,
) *Router {
	return &Router{
		authHandler:         authHandler,
		availabilityHandler: availabilityHandler,
		bookingHandler:      bookingHandler,
		monitorHandler:      monitorHandler,
		historyHandler:      historyHandler,
		healthHandler:       healthHandler,
		corsConfig:          corsConfig,
	}
}

// Handler returns the configured HTTP handler with middleware
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints (no middleware)
	mux.HandleFunc("/health", rt.healthHandler.Health)
	mux.HandleFunc("/ready", rt.healthHandler.Ready)

	// Auth endpoints
	mux.HandleFunc("/api/auth/register", methodOnly(http.MethodPost, rt.authHandler.Register))
	mux.HandleFunc("/api/auth/login", methodOnly(http.MethodPost, rt.authHandler.Login))
	mux.HandleFunc("/api/auth/logout", methodOnly(http.MethodPost, rt.authHandler.Logout))
	mux.HandleFunc("/api/auth/me", methodOnly(http.MethodGet, rt.authHandler.Me))
	mux.HandleFunc("/api/auth/check", methodOnly(http.MethodGet, rt.authHandler.Check))

	// Availability and one-shot booking
	mux.HandleFunc("/api/availability", methodOnly(http.MethodGet, rt.availabilityHandler.Get))
	mux.HandleFunc("/api/book", methodOnly(http.MethodPost, rt.bookingHandler.Book))
	mux.HandleFunc("/api/book/jobs/", methodOnly(http.MethodGet, rt.bookingHandler.JobStatus))

	// Monitoring
	mux.HandleFunc("/api/monitoring", rt.handleMonitoring)
	mux.HandleFunc("/api/monitoring/active", methodOnly(http.MethodGet, rt.monitorHandler.Active))
	mux.HandleFunc("/api/monitoring/check-all", methodOnly(http.MethodPost, rt.monitorHandler.CheckAll))
	mux.HandleFunc("/api/monitoring/", rt.handleMonitoringWithID)

	// History
	mux.HandleFunc("/api/checks", methodOnly(http.MethodGet, rt.historyHandler.ListChecks))
	mux.HandleFunc("/api/checks/", methodOnly(http.MethodGet, rt.historyHandler.GetCheck))
	mux.HandleFunc("/api/notifications", methodOnly(http.MethodGet, rt.historyHandler.ListNotifications))

	// Apply middleware (CORS first to handle preflight requests)
	handler := rt.authHandler.WithIdentity(mux)
	handler = middleware.CORS(rt.corsConfig)(handler)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)
	handler = middleware.CorrelationID(handler)

	return handler
}

// handleMonitoring routes monitoring collection endpoints
func (rt *Router) handleMonitoring(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.monitorHandler.List(w, r)
	case http.MethodPost:
		rt.monitorHandler.Create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleMonitoringWithID routes monitoring individual endpoints
func (rt *Router) handleMonitoringWithID(w http.ResponseWriter, r *http.Request) {
	requestID, action := monitoringPathParts(r.URL.Path)
	if requestID == "" {
		writeError(w, http.StatusBadRequest, "request id is required")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rt.monitorHandler.Get(w, r, requestID)
	case "stop":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rt.monitorHandler.Stop(w, r, requestID)
	case "check-and-book":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rt.monitorHandler.CheckAndBook(w, r, requestID)
	default:
		writeError(w, http.StatusNotFound, "Endpoint not found")
	}
}

// methodOnly restricts a handler to a single HTTP method
func methodOnly(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		next(w, r)
	}
}
