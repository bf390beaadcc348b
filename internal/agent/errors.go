// Package agent implements the reasoning loop, the reflection quality
// gate, and the orchestrator that drives analysis jobs to a terminal
// state.
package agent

import (
	"errors"
)

var (
	// ErrStepLimitExceeded means the reasoning loop hit its step budget
	// without producing a final answer.
	ErrStepLimitExceeded = errors.New("step limit exceeded without final answer")

	// ErrMalformedReasoning means the oracle produced two consecutive
	// unparseable reasoning responses for the same step.
	ErrMalformedReasoning = errors.New("malformed reasoning response")

	// ErrOracleUnavailable means the completion oracle itself failed.
	// Always job-fatal; never retried by the quality-retry policy.
	ErrOracleUnavailable = errors.New("completion oracle unavailable")

	// ErrJobCancelled means the caller cancelled the job between steps.
	ErrJobCancelled = errors.New("job cancelled")

	// ErrJobNotFound is returned when a job ID has no stored record.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobNotRunning is returned when cancelling a job that already
	// reached a terminal state.
	ErrJobNotRunning = errors.New("job is not running")
)

// FailureCause returns the human-readable cause category recorded on a
// failed job for the given fatal error.
func FailureCause(err error) string {
	switch {
	case errors.Is(err, ErrJobCancelled):
		return "cancelled"
	case errors.Is(err, ErrOracleUnavailable):
		return "oracle_unavailable"
	case errors.Is(err, ErrMalformedReasoning):
		return "malformed_reasoning"
	case errors.Is(err, ErrStepLimitExceeded):
		return "step_limit_exceeded"
	default:
		return "internal_error"
	}
}
