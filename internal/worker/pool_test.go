package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/campusrooms/roomwatch/internal/model"
)

func TestSubmitAfterStopReturnsError(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	pool.SetExecutor(func(ctx context.Context, requestID, correlationID string) (*model.CheckResult, error) {
		return &model.CheckResult{RequestID: requestID}, nil
	})
	pool.Start()
	pool.Stop()

	err := pool.Submit(Job{RequestID: "req-1", CorrelationID: "corr-1", Context: context.Background()})
	if !errors.Is(err, ErrPoolStopped) {
		t.Fatalf("Submit after Stop = %v, want ErrPoolStopped", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	pool.SetExecutor(func(ctx context.Context, requestID, correlationID string) (*model.CheckResult, error) {
		return &model.CheckResult{RequestID: requestID}, nil
	})
	pool.Start()

	pool.Stop()
	pool.Stop() // second call must not panic on the closed channel
}

func TestJobsDeliverResultsOnReplyChannel(t *testing.T) {
	pool := NewWorkerPool(2, 8)
	pool.SetExecutor(func(ctx context.Context, requestID, correlationID string) (*model.CheckResult, error) {
		return &model.CheckResult{RequestID: requestID, Success: true}, nil
	})
	pool.Start()
	defer pool.Stop()

	reply := make(chan Result, 3)
	for _, id := range []string{"req-1", "req-2", "req-3"} {
		if err := pool.Submit(Job{RequestID: id, CorrelationID: "corr", Context: context.Background(), Reply: reply}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		res := <-reply
		if res.Error != nil {
			t.Fatalf("job %s failed: %v", res.RequestID, res.Error)
		}
		if !res.Check.Success {
			t.Errorf("job %s result not successful", res.RequestID)
		}
		seen[res.RequestID] = true
	}
	if len(seen) != 3 {
		t.Errorf("saw %d distinct results, want 3", len(seen))
	}
}
