// -----------------------------------------------------------------------
// AnalysisJob - One analysis request tracked end to end through the
// reasoning loop, the reflection gate, and terminal persistence.
// -----------------------------------------------------------------------

package models

import (
	"time"
)

// JobStatus represents the lifecycle state of an analysis job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusRunning    JobStatus = "running"
	JobStatusReflecting JobStatus = "reflecting"
	JobStatusRetrying   JobStatus = "retrying"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether the status is a terminal state.
// A job is immutable once terminal.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// StepPhase tags a single entry in the reasoning transcript
type StepPhase string

const (
	PhaseThink   StepPhase = "think"
	PhaseAct     StepPhase = "act"
	PhaseObserve StepPhase = "observe"
	PhaseFinal   StepPhase = "final"
)

// ReasoningStep is one entry in the append-only reasoning transcript.
// Steps are never mutated after append; together they form the audit
// trail for one reasoning run.
type ReasoningStep struct {
	Index   int       `json:"index"`
	Phase   StepPhase `json:"phase"`
	Content string    `json:"content"`

	// Set on act steps only
	ToolName string                 `json:"tool_name,omitempty"`
	ToolArgs map[string]interface{} `json:"tool_args,omitempty"`

	// Set on observe steps carrying a tool failure
	IsError bool `json:"is_error,omitempty"`

	// Tool latency for the act/observe pair, recorded on the observe step
	LatencyMs int64 `json:"latency_ms,omitempty"`
}

// AnalysisJob tracks one analysis request end to end. Created on
// submission, mutated only by the orchestrator run that owns it,
// immutable once terminal.
type AnalysisJob struct {
	ID     string    `json:"id" badgerhold:"key"`
	Query  string    `json:"query"`
	Ticker string    `json:"ticker,omitempty"`
	Status JobStatus `json:"status" badgerholdIndex:"Status"`

	// Quick marks monitor-triggered runs with a reduced step budget
	Quick bool `json:"quick,omitempty"`

	Steps []ReasoningStep `json:"steps,omitempty"`

	// Report is nil until the job reaches a terminal success state
	Report *AnalysisReport `json:"report,omitempty"`

	// Reflection from the accepted attempt
	Reflection *ReflectionResult `json:"reflection,omitempty"`

	// Degraded marks a job that exhausted its quality retries and was
	// accepted as the best-scoring attempt below the threshold
	Degraded bool `json:"degraded,omitempty"`

	// RetryCount is the number of quality retries consumed
	RetryCount int `json:"retry_count"`

	// Error holds the human-readable cause category for failed jobs
	Error string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewAnalysisJob creates a pending analysis job
func NewAnalysisJob(id, query string) *AnalysisJob {
	return &AnalysisJob{
		ID:        id,
		Query:     query,
		Status:    JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}
