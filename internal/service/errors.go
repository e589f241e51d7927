package service

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned when a login attempt fails. Unknown user
// and wrong password collapse into the same error on purpose.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailDomainNotAllowed is returned when a registration email is outside
// the allowed campus domains.
var ErrEmailDomainNotAllowed = errors.New("email domain not allowed")

// ValidationError reports malformed caller input. It is raised before any
// remote call is made.
type ValidationError struct {
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("validation failed: %s", e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NoSlotsError is returned when no room offers the requested consecutive
// window. It is an expected outcome, not a failure.
type NoSlotsError struct {
	Date          string
	StartTime     string
	DurationHours int
}

func (e *NoSlotsError) Error() string {
	return fmt.Sprintf("no %d-hour consecutive slots available starting from %s on %s",
		e.DurationHours, e.StartTime, e.Date)
}
