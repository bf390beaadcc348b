package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
	"github.com/ternarybob/arbor"
)

// Orchestrator owns the analysis job lifecycle: it runs the reasoning
// engine, applies the reflection gate with bounded quality retries, and
// persists every status transition. No other component writes job state.
type Orchestrator struct {
	engine    *Engine
	evaluator *Evaluator
	jobs      interfaces.JobStorage
	config    *common.Config
	events    interfaces.EventSink
	logger    arbor.ILogger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewOrchestrator creates the orchestrator. events may be nil.
func NewOrchestrator(engine *Engine, evaluator *Evaluator, jobs interfaces.JobStorage, config *common.Config, events interfaces.EventSink, logger arbor.ILogger) *Orchestrator {
	if events == nil {
		events = interfaces.NopEventSink{}
	}
	return &Orchestrator{
		engine:    engine,
		evaluator: evaluator,
		jobs:      jobs,
		config:    config,
		events:    events,
		logger:    logger,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Submit creates a pending job and runs it in the background. The
// returned job carries the ID callers poll for status.
func (o *Orchestrator) Submit(ctx context.Context, query string) (*models.AnalysisJob, error) {
	job := models.NewAnalysisJob(common.NewJobID(), query)
	if err := o.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	go func() {
		runCtx, cancel := context.WithCancel(context.Background())
		o.registerCancel(job.ID, cancel)
		defer o.unregisterCancel(job.ID)
		defer cancel()

		o.RunAnalysis(runCtx, job)
	}()

	return job, nil
}

// RunAnalysis drives a job to a terminal state with the full step
// budget.
func (o *Orchestrator) RunAnalysis(ctx context.Context, job *models.AnalysisJob) *models.AnalysisJob {
	return o.run(ctx, job, RunInput{
		Query:    job.Query,
		Ticker:   job.Ticker,
		MaxSteps: o.config.Analysis.MaxSteps,
	})
}

// RunQuickAnalysis runs a reduced-budget analysis for a monitor-
// triggered check. The reflection gate still applies. The returned job
// is terminal.
func (o *Orchestrator) RunQuickAnalysis(ctx context.Context, ticker string, newsContext string) *models.AnalysisJob {
	query := fmt.Sprintf("Briefly analyze the current situation for %s based on recent news.", ticker)
	if newsContext != "" {
		query += "\nRecent headlines:\n" + newsContext
	}

	job := models.NewAnalysisJob(common.NewJobID(), query)
	job.Ticker = ticker
	job.Quick = true
	if err := o.jobs.Save(ctx, job); err != nil {
		o.logger.Error().Err(err).Msg("Failed to persist quick analysis job")
	}

	return o.run(ctx, job, RunInput{
		Query:    query,
		Ticker:   ticker,
		MaxSteps: o.config.Analysis.QuickMaxSteps,
	})
}

// Cancel requests cancellation of a running job. The loop observes it
// at the top of its next reasoning turn.
func (o *Orchestrator) Cancel(jobID string) error {
	o.mu.Lock()
	cancel, ok := o.cancels[jobID]
	o.mu.Unlock()
	if !ok {
		return ErrJobNotRunning
	}
	cancel()
	return nil
}

// run executes the engine-reflect-retry cycle until the job is
// terminal. Quality retries restart the engine from a fresh transcript;
// fatal engine errors are never retried.
func (o *Orchestrator) run(ctx context.Context, job *models.AnalysisJob, input RunInput) *models.AnalysisJob {
	now := time.Now().UTC()
	job.Status = models.JobStatusRunning
	job.StartedAt = &now
	o.saveJob(ctx, job)

	input.OnStep = func(step models.ReasoningStep) {
		o.events.StepAppended(job.ID, step)
	}

	maxRetries := o.config.Reflection.MaxRetries
	var bestResult *RunResult
	var bestReflection *models.ReflectionResult

	for attempt := 0; ; attempt++ {
		result, err := o.engine.Run(ctx, input)
		if err != nil {
			// Job-fatal: record the cause, keep the partial transcript
			job.Steps = result.Steps
			o.finishFailed(ctx, job, err)
			return job
		}

		job.Steps = result.Steps
		job.Status = models.JobStatusReflecting
		o.saveJob(ctx, job)

		reflection := o.evaluator.Evaluate(ctx, input.Query, result.Report, result.Steps)

		if bestReflection == nil || reflection.Score > bestReflection.Score {
			bestResult = result
			bestReflection = reflection
		}

		if reflection.Accept {
			o.finishSucceeded(ctx, job, result, reflection, false)
			return job
		}

		if attempt >= maxRetries {
			// Quality retries exhausted: accept the best-scoring
			// attempt seen so far, flagged degraded
			o.logger.Warn().
				Str("job_id", job.ID).
				Float64("best_score", bestReflection.Score).
				Int("attempts", attempt+1).
				Msg("Quality retries exhausted, accepting best attempt")
			job.Steps = bestResult.Steps
			o.finishSucceeded(ctx, job, bestResult, bestReflection, true)
			return job
		}

		o.logger.Info().
			Str("job_id", job.ID).
			Float64("score", reflection.Score).
			Int("retry", attempt+1).
			Msg("Reflection rejected analysis, retrying from fresh transcript")

		job.Status = models.JobStatusRetrying
		job.RetryCount = attempt + 1
		o.saveJob(ctx, job)
	}
}

func (o *Orchestrator) finishSucceeded(ctx context.Context, job *models.AnalysisJob, result *RunResult, reflection *models.ReflectionResult, degraded bool) {
	report := result.Report
	if reflection.RefinedSummary != "" && strings.TrimSpace(reflection.RefinedSummary) != "" {
		report.Summary = strings.TrimSpace(reflection.RefinedSummary)
	}
	report.Normalize()

	now := time.Now().UTC()
	job.Status = models.JobStatusSucceeded
	job.Report = report
	job.Reflection = reflection
	job.Degraded = degraded
	job.CompletedAt = &now
	o.saveJob(ctx, job)

	o.logger.Info().
		Str("job_id", job.ID).
		Float64("score", reflection.Score).
		Bool("degraded", degraded).
		Msg("Analysis job succeeded")
}

func (o *Orchestrator) finishFailed(ctx context.Context, job *models.AnalysisJob, cause error) {
	now := time.Now().UTC()
	job.Status = models.JobStatusFailed
	job.Error = FailureCause(cause)
	job.CompletedAt = &now
	o.saveJob(ctx, job)

	o.logger.Warn().
		Str("job_id", job.ID).
		Str("cause", job.Error).
		Err(cause).
		Msg("Analysis job failed")
}

// saveJob persists the job and publishes the transition. Persistence
// errors are logged, not propagated; the in-memory job remains the
// source of truth for the owning run.
func (o *Orchestrator) saveJob(ctx context.Context, job *models.AnalysisJob) {
	if err := o.jobs.Save(ctx, job); err != nil {
		o.logger.Error().
			Err(err).
			Str("job_id", job.ID).
			Msg("Failed to persist job state")
	}
	o.events.JobUpdated(job)
}

func (o *Orchestrator) registerCancel(jobID string, cancel context.CancelFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancels[jobID] = cancel
}

func (o *Orchestrator) unregisterCancel(jobID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.cancels, jobID)
}
