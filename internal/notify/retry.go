package notify

import (
	"math"
	"net/http"
	"time"

	"github.com/campusrooms/roomwatch/internal/model"
)

// RetryStrategy decides whether a failed outcome delivery gets another
// attempt, and how long to wait before it. Booking outcomes are
// time-sensitive, so delays grow exponentially but stay capped.
type RetryStrategy struct {
	config model.RetryConfig
}

// NewRetryStrategy builds a strategy from config, filling in defaults
// for any zero fields.
func NewRetryStrategy(config model.RetryConfig) *RetryStrategy {
	config.SetDefaults()
	return &RetryStrategy{config: config}
}

// CalculateDelay returns the backoff before the attempt after `attempt`:
// initial_delay * multiplier^(attempt-1), capped at max_delay.
func (rs *RetryStrategy) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delayMs := float64(rs.config.InitialDelayMs) * math.Pow(rs.config.Multiplier, float64(attempt-1))
	delayMs = math.Min(delayMs, float64(rs.config.MaxDelayMs))

	return time.Duration(delayMs) * time.Millisecond
}

// ShouldRetry reports whether the outcome webhook should be attempted
// again. Network failures and transient statuses retry; a 4xx other
// than rate limiting means the receiver rejected the payload and
// retrying the same outcome would not help.
func (rs *RetryStrategy) ShouldRetry(attempt int, statusCode int, err error) bool {
	if attempt >= rs.config.MaxAttempts {
		return false
	}

	if err != nil {
		return true
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return true
	case statusCode >= http.StatusInternalServerError:
		return true
	case statusCode >= http.StatusBadRequest:
		return false
	case statusCode >= http.StatusMultipleChoices:
		// Redirects are not followed for webhook posts
		return true
	default:
		return false
	}
}

// MaxAttempts returns the attempt budget for a single outcome.
func (rs *RetryStrategy) MaxAttempts() int {
	return rs.config.MaxAttempts
}
