package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
	"github.com/airalabs/aira/internal/services/llm"
	"github.com/ternarybob/arbor"
)

// ToolDispatcher is the registry surface the reasoning loop needs:
// prompt-ready tool descriptions and validated dispatch by name.
type ToolDispatcher interface {
	Describe() string
	Invoke(ctx context.Context, name string, args map[string]interface{}) (string, time.Duration, error)
}

// RunInput describes one reasoning run
type RunInput struct {
	Query    string
	Ticker   string
	MaxSteps int
	Model    string

	// OnStep, when set, is called synchronously after each step is
	// appended to the transcript
	OnStep func(step models.ReasoningStep)
}

// RunResult is the outcome of a completed reasoning run
type RunResult struct {
	Report *models.AnalysisReport
	Steps  []models.ReasoningStep
}

// Engine drives the think/act/observe reasoning loop. One Engine is
// shared across jobs; each Run owns its transcript.
type Engine struct {
	completion interfaces.CompletionService
	dispatcher ToolDispatcher
	logger     arbor.ILogger
}

// NewEngine creates a reasoning engine over a completion oracle and a
// tool dispatcher.
func NewEngine(completion interfaces.CompletionService, dispatcher ToolDispatcher, logger arbor.ILogger) *Engine {
	return &Engine{
		completion: completion,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run executes the reasoning loop until a final answer, the step limit,
// repeated malformed output, an oracle failure, or cancellation. The
// returned steps are valid even when err is non-nil; they record how
// far the run got.
func (e *Engine) Run(ctx context.Context, input RunInput) (*RunResult, error) {
	if input.MaxSteps <= 0 {
		return &RunResult{}, fmt.Errorf("max steps must be positive")
	}

	systemPrompt := buildReactSystemPrompt(e.dispatcher.Describe())
	steps := make([]models.ReasoningStep, 0, input.MaxSteps*3)

	appendStep := func(step models.ReasoningStep) {
		step.Index = len(steps)
		steps = append(steps, step)
		if input.OnStep != nil {
			input.OnStep(step)
		}
	}

	thinkCount := 0
	for {
		// Cancellation is checked at the top of each reasoning turn;
		// an in-flight tool call below is allowed to complete first.
		if err := ctx.Err(); err != nil {
			return &RunResult{Steps: steps}, fmt.Errorf("%w: %v", ErrJobCancelled, err)
		}

		thinkCount++
		if thinkCount > input.MaxSteps {
			e.logger.Warn().
				Int("max_steps", input.MaxSteps).
				Msg("Reasoning step limit reached without final answer")
			return &RunResult{Steps: steps}, fmt.Errorf("%w: no final answer within %d steps", ErrStepLimitExceeded, input.MaxSteps)
		}

		decision, err := e.think(ctx, systemPrompt, input, steps)
		if err != nil {
			return &RunResult{Steps: steps}, err
		}

		appendStep(models.ReasoningStep{
			Phase:   models.PhaseThink,
			Content: decision.Thought,
		})

		if decision.Action != "" {
			appendStep(models.ReasoningStep{
				Phase:    models.PhaseAct,
				Content:  decision.Action,
				ToolName: decision.Action,
				ToolArgs: decision.ActionInput,
			})

			// Tool failures are evidence, not loop-ending faults
			observation, latency, err := e.dispatcher.Invoke(ctx, decision.Action, decision.ActionInput)
			if err != nil {
				appendStep(models.ReasoningStep{
					Phase:     models.PhaseObserve,
					Content:   err.Error(),
					IsError:   true,
					LatencyMs: latency.Milliseconds(),
				})
				continue
			}

			appendStep(models.ReasoningStep{
				Phase:     models.PhaseObserve,
				Content:   observation,
				LatencyMs: latency.Milliseconds(),
			})
			continue
		}

		// Finishing turn
		report := &models.AnalysisReport{
			Ticker:         input.Ticker,
			Summary:        strings.TrimSpace(decision.FinalAnswer.Summary),
			SentimentScore: decision.FinalAnswer.SentimentScore,
			KeyFindings:    decision.FinalAnswer.KeyFindings,
			Confidence:     decision.FinalAnswer.Confidence,
		}
		report.Normalize()

		appendStep(models.ReasoningStep{
			Phase:   models.PhaseFinal,
			Content: report.Summary,
		})

		e.logger.Debug().
			Int("think_steps", thinkCount).
			Int("total_steps", len(steps)).
			Msg("Reasoning run reached final answer")

		return &RunResult{Report: report, Steps: steps}, nil
	}
}

// think runs one reasoning turn. A malformed oracle response is retried
// once with a corrective instruction; a second consecutive malformed
// response is fatal.
func (e *Engine) think(ctx context.Context, systemPrompt string, input RunInput, steps []models.ReasoningStep) (*reactDecision, error) {
	messages := []interfaces.Message{
		{Role: "user", Content: renderTranscript(input.Query, steps)},
	}

	for attempt := 0; attempt < 2; attempt++ {
		response, err := e.completion.Complete(ctx, &interfaces.CompletionRequest{
			Messages:          messages,
			Model:             input.Model,
			SystemInstruction: systemPrompt,
			OutputSchema:      reactOutputSchema(),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
		}

		decision, parseErr := parseDecision(response)
		if parseErr == nil {
			return decision, nil
		}

		if attempt == 0 {
			e.logger.Warn().
				Err(parseErr).
				Msg("Malformed reasoning response, retrying with corrective instruction")
			messages = append(messages,
				interfaces.Message{Role: "assistant", Content: response},
				interfaces.Message{Role: "user", Content: correctiveInstruction},
			)
		}
	}

	return nil, fmt.Errorf("%w: two consecutive unparseable responses", ErrMalformedReasoning)
}

// parseDecision parses an oracle response into a tool call or a final
// answer. Anything else is malformed.
func parseDecision(response string) (*reactDecision, error) {
	var decision reactDecision
	if err := llm.ExtractJSONObject(response, &decision); err != nil {
		return nil, err
	}

	hasAction := decision.Action != ""
	hasFinal := decision.FinalAnswer != nil && strings.TrimSpace(decision.FinalAnswer.Summary) != ""

	switch {
	case hasAction && hasFinal:
		return nil, fmt.Errorf("response contains both a tool call and a final answer")
	case hasAction:
		if decision.ActionInput == nil {
			decision.ActionInput = map[string]interface{}{}
		}
		return &decision, nil
	case hasFinal:
		return &decision, nil
	default:
		return nil, fmt.Errorf("response contains neither a tool call nor a final answer")
	}
}
