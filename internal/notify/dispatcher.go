package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/campusrooms/roomwatch/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dispatcher handles webhook delivery with retry logic
type Dispatcher struct {
	httpClient     *http.Client
	circuitBreaker *CircuitBreaker
	retryConfig    model.RetryConfig
}

// NewDispatcher creates a new webhook dispatcher
func NewDispatcher(timeout time.Duration, retryConfig model.RetryConfig) *Dispatcher {
	retryConfig.SetDefaults()
	return &Dispatcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		circuitBreaker: DefaultCircuitBreaker(),
		retryConfig:    retryConfig,
	}
}

// Send delivers a payload to a webhook URL with retry logic. The returned
// log carries every attempt and is returned even on failure so callers can
// persist it.
func (d *Dispatcher) Send(
	ctx context.Context,
	url string,
	payload model.NotificationPayload,
	correlationID string,
) (*model.NotificationLog, error) {
	log := &model.NotificationLog{
		ID:            primitive.NewObjectID(),
		CorrelationID: correlationID,
		WebhookURL:    url,
		Payload:       payload,
		Attempts:      make([]model.NotificationAttempt, 0),
		FinalStatus:   "retrying",
		CreatedAt:     time.Now().UTC(),
	}

	// Check circuit breaker
	if !d.circuitBreaker.CanAttempt() {
		slog.Warn("Circuit breaker is open, skipping webhook delivery",
			"correlation_id", correlationID,
			"webhook_url", url,
			"circuit_state", d.circuitBreaker.GetStateName(),
		)
		log.FinalStatus = "failed"
		log.CompletedAt = time.Now().UTC()
		return log, fmt.Errorf("circuit breaker is open")
	}

	retryStrategy := NewRetryStrategy(d.retryConfig)

	// Attempt delivery with retries
	for attemptNum := 1; attemptNum <= retryStrategy.MaxAttempts(); attemptNum++ {
		slog.Info("Attempting webhook delivery",
			"correlation_id", correlationID,
			"webhook_url", url,
			"attempt", attemptNum,
			"max_attempts", retryStrategy.MaxAttempts(),
		)

		attempt, err := d.deliver(ctx, url, payload)
		attempt.AttemptNumber = attemptNum
		log.Attempts = append(log.Attempts, attempt)

		// Check if delivery was successful
		if err == nil && attempt.StatusCode >= 200 && attempt.StatusCode < 300 {
			slog.Info("Webhook delivered successfully",
				"correlation_id", correlationID,
				"webhook_url", url,
				"attempt", attemptNum,
				"status_code", attempt.StatusCode,
			)

			log.FinalStatus = "delivered"
			log.CompletedAt = time.Now().UTC()
			d.circuitBreaker.RecordSuccess()
			return log, nil
		}

		// Check if we should retry
		if !retryStrategy.ShouldRetry(attemptNum, attempt.StatusCode, err) {
			slog.Error("Webhook delivery failed, no retry",
				"correlation_id", correlationID,
				"webhook_url", url,
				"attempt", attemptNum,
				"status_code", attempt.StatusCode,
				"error", attempt.Error,
			)

			log.FinalStatus = "failed"
			log.CompletedAt = time.Now().UTC()
			d.circuitBreaker.RecordFailure()
			return log, fmt.Errorf("webhook delivery failed after %d attempts", attemptNum)
		}

		// Calculate delay before next retry
		if attemptNum < retryStrategy.MaxAttempts() {
			delay := retryStrategy.CalculateDelay(attemptNum)
			slog.Warn("Webhook delivery failed, retrying",
				"correlation_id", correlationID,
				"webhook_url", url,
				"attempt", attemptNum,
				"next_retry_ms", delay.Milliseconds(),
				"error", attempt.Error,
			)

			select {
			case <-time.After(delay):
				// Continue to next attempt
			case <-ctx.Done():
				log.FinalStatus = "failed"
				log.CompletedAt = time.Now().UTC()
				return log, ctx.Err()
			}
		}
	}

	// All retries exhausted
	slog.Error("Webhook delivery failed after all retries",
		"correlation_id", correlationID,
		"webhook_url", url,
		"attempts", retryStrategy.MaxAttempts(),
	)

	log.FinalStatus = "failed"
	log.CompletedAt = time.Now().UTC()
	d.circuitBreaker.RecordFailure()
	return log, fmt.Errorf("webhook delivery failed after %d attempts", retryStrategy.MaxAttempts())
}

// deliver performs a single webhook delivery attempt
func (d *Dispatcher) deliver(ctx context.Context, url string, payload model.NotificationPayload) (model.NotificationAttempt, error) {
	start := time.Now()
	attempt := model.NotificationAttempt{
		Timestamp: start.UTC(),
	}

	// Marshal payload
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		attempt.Error = fmt.Sprintf("Failed to marshal payload: %v", err)
		attempt.DurationMs = time.Since(start).Milliseconds()
		return attempt, err
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		attempt.Error = fmt.Sprintf("Failed to create request: %v", err)
		attempt.DurationMs = time.Since(start).Milliseconds()
		return attempt, err
	}

	req.Header.Set("Content-Type", "application/json")

	// Send request
	resp, err := d.httpClient.Do(req)
	if err != nil {
		attempt.Error = fmt.Sprintf("Request failed: %v", err)
		attempt.DurationMs = time.Since(start).Milliseconds()
		return attempt, err
	}
	defer resp.Body.Close()

	// Read response body (limit to 1KB to prevent memory issues)
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		slog.Warn("Failed to read webhook response body", "error", err)
	}

	attempt.StatusCode = resp.StatusCode
	attempt.ResponseBody = string(bodyBytes)
	attempt.DurationMs = time.Since(start).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		attempt.Error = fmt.Sprintf("Webhook returned status %d", resp.StatusCode)
		return attempt, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return attempt, nil
}

// GetCircuitBreakerState returns the current circuit breaker state
func (d *Dispatcher) GetCircuitBreakerState() string {
	return d.circuitBreaker.GetStateName()
}
