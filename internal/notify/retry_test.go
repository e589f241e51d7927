package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/campusrooms/roomwatch/internal/model"
)

func TestCalculateDelay_ExponentialBackoff(t *testing.T) {
	rs := NewRetryStrategy(model.RetryConfig{
		MaxAttempts:    5,
		InitialDelayMs: 1000,
		MaxDelayMs:     30000,
		Multiplier:     2.0,
	})

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{10, 30 * time.Second}, // capped at max delay
	}

	for _, tc := range cases {
		if got := rs.CalculateDelay(tc.attempt); got != tc.want {
			t.Errorf("CalculateDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	rs := NewRetryStrategy(model.RetryConfig{MaxAttempts: 3})

	cases := []struct {
		name       string
		attempt    int
		statusCode int
		err        error
		want       bool
	}{
		{"network error", 1, 0, errors.New("dial tcp: refused"), true},
		{"server error", 1, 500, nil, true},
		{"rate limited", 1, 429, nil, true},
		{"client error", 1, 400, nil, false},
		{"redirect", 1, 302, nil, true},
		{"not found", 1, 404, nil, false},
		{"success", 1, 200, nil, false},
		{"max attempts reached", 3, 500, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rs.ShouldRetry(tc.attempt, tc.statusCode, tc.err); got != tc.want {
				t.Errorf("ShouldRetry(%d, %d, %v) = %v, want %v", tc.attempt, tc.statusCode, tc.err, got, tc.want)
			}
		})
	}
}

func TestRetryConfig_Defaults(t *testing.T) {
	rs := NewRetryStrategy(model.RetryConfig{})
	if rs.MaxAttempts() != 3 {
		t.Errorf("default max attempts = %d, want 3", rs.MaxAttempts())
	}
	if got := rs.CalculateDelay(1); got != time.Second {
		t.Errorf("default first delay = %v, want 1s", got)
	}
}
