package worker

import (
	"context"

	"github.com/campusrooms/roomwatch/internal/model"
)

// Job represents one monitoring request evaluation job. Reply receives the
// outcome so each bulk pass aggregates its own jobs without sharing a
// channel with concurrent passes.
type Job struct {
	RequestID     string
	CorrelationID string
	Context       context.Context
	Reply         chan Result
}

// Result represents the outcome of a monitoring request evaluation
type Result struct {
	RequestID string
	Check     *model.CheckResult
	Error     error
}
