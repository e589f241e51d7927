package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campusrooms/roomwatch/internal/database"
	"github.com/campusrooms/roomwatch/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrUserExists is returned when a registration collides with an existing
// email or username.
var ErrUserExists = errors.New("user already exists")

// RegisterInput is the payload for creating a new account. Username defaults
// to the local part of the email when omitted.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Username  string `json:"username,omitempty"`
}

// AuthService manages user accounts and login sessions
type AuthService struct {
	userRepo       *database.UserRepository
	sessionRepo    *database.SessionRepository
	allowedDomains []string
	sessionTTL     time.Duration
	validate       *validator.Validate
}

// NewAuthService creates a new auth service. An empty allowedDomains list
// disables the domain restriction.
func NewAuthService(userRepo *database.UserRepository, sessionRepo *database.SessionRepository, allowedDomains []string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		allowedDomains: allowedDomains,
		sessionTTL:     sessionTTL,
		validate:       validator.New(),
	}
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*model.Identity, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, &ValidationError{Detail: "invalid registration", Err: err}
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !s.domainAllowed(email) {
		return nil, ErrEmailDomainNotAllowed
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		derived, err := s.deriveUsername(ctx, email)
		if err != nil {
			return nil, err
		}
		username = derived
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:     email,
		Username:  username,
		Password:  hash,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		CreatedAt: time.Now().UTC(),
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	slog.Info("Registered user", "username", username)

	return model.IdentityFromUser(user), nil
}

// Login verifies credentials and opens a new session. The identifier may be
// a username or an email.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*model.Session, *model.Identity, error) {
	identifier = strings.TrimSpace(identifier)

	user, err := s.userRepo.GetByUsername(ctx, identifier)
	if errors.Is(err, database.ErrNotFound) {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	}
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &model.Session{
		Token:        uuid.New().String(),
		UserID:       user.ID,
		Email:        user.Email,
		Username:     user.Username,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.sessionTTL),
		LastActivity: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID, now); err != nil {
		slog.Warn("Failed to record login time", "username", user.Username, "error", err.Error())
	}

	slog.Info("User logged in", "username", user.Username)

	return session, model.IdentityFromUser(user), nil
}

// Logout closes the session identified by token. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessionRepo.Delete(ctx, token)
}

// Authenticate resolves a session token into the caller's identity. Returns
// ErrInvalidCredentials for unknown or expired tokens.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.sessionRepo.Touch(ctx, token, time.Now().UTC()); err != nil {
		slog.Warn("Failed to touch session", "error", err.Error())
	}

	return model.IdentityFromUser(user), nil
}

// deriveUsername builds a username from the email local part, appending a
// numeric suffix until it is free.
func (s *AuthService) deriveUsername(ctx context.Context, email string) (string, error) {
	base := strings.SplitN(email, "@", 2)[0]
	username := base

	for counter := 1; ; counter++ {
		_, err := s.userRepo.GetByUsername(ctx, username)
		if errors.Is(err, database.ErrNotFound) {
			return username, nil
		}
		if err != nil {
			return "", err
		}
		username = fmt.Sprintf("%s%d", base, counter)
	}
}

func (s *AuthService) domainAllowed(email string) bool {
	if len(s.allowedDomains) == 0 {
		return true
	}

	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return false
	}

	for _, domain := range s.allowedDomains {
		if strings.EqualFold(parts[1], strings.TrimSpace(domain)) {
			return true
		}
	}

	return false
}
