package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/campusrooms/roomwatch/internal/model"
	"github.com/campusrooms/roomwatch/internal/service"
)

const sessionCookieName = "session_token"

type identityKey struct{}

// IdentityFrom extracts the authenticated caller from the request context,
// or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *model.Identity {
	if id, ok := ctx.Value(identityKey{}).(*model.Identity); ok {
		return id
	}
	return nil
}

// AuthHandler handles account and session endpoints
type AuthHandler struct {
	auth       *service.AuthService
	sessionTTL time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		sessionTTL: sessionTTL,
	}
}

// WithIdentity resolves the session cookie (or bearer token) into a caller
// identity on the request context. Requests without a valid session pass
// through anonymously; handlers that need identity check for themselves.
func (h *AuthHandler) WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents a successful register/login response
type AuthResponse struct {
	Success bool            `json:"success"`
	User    *model.Identity `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	identity, err := h.auth.Register(r.Context(), &input)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEmailDomainNotAllowed):
			writeError(w, http.StatusBadRequest, "Email must belong to an allowed campus domain")
		case errors.Is(err, service.ErrUserExists):
			writeError(w, http.StatusConflict, "An account with this email or username already exists")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Success: true, User: identity})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username (or email) and password are required")
		return
	}

	session, identity, err := h.auth.Login(r.Context(), identifier, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, AuthResponse{Success: true, User: identity})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFrom(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Success: true, User: identity})
}

// Check handles GET /api/auth/check
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFrom(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": identity != nil,
		"user":          identity,
	})
}

func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	const bearerPrefix = "Bearer "
	if auth := r.Header.Get("Authorization"); len(auth) > len(bearerPrefix) && auth[:len(bearerPrefix)] == bearerPrefix {
		return auth[len(bearerPrefix):]
	}

	return ""
}
