package agent

import (
	"context"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
	"github.com/airalabs/aira/internal/services/llm"
	"github.com/ternarybob/arbor"
)

// oracleFailureScore is recorded when the evaluator itself cannot
// reach the oracle. The attempt is accepted rather than failed; an
// evaluator outage must not sink an otherwise successful analysis.
const oracleFailureScore = 0.5

// Evaluator scores a completed analysis against the configured quality
// bar. A low score is a normal outcome, never an error.
type Evaluator struct {
	completion interfaces.CompletionService
	config     *common.ReflectionConfig
	model      string
	logger     arbor.ILogger
}

// NewEvaluator creates a reflection evaluator. model selects the oracle
// model used for scoring; empty means the provider default.
func NewEvaluator(completion interfaces.CompletionService, config *common.ReflectionConfig, model string, logger arbor.ILogger) *Evaluator {
	return &Evaluator{
		completion: completion,
		config:     config,
		model:      model,
		logger:     logger,
	}
}

// Enabled reports whether the quality gate is active
func (e *Evaluator) Enabled() bool {
	return e.config.Enabled
}

// Evaluate scores the report against completeness, balance, and
// specificity. Disabled reflection short-circuits to acceptance with no
// oracle call and no side effects.
func (e *Evaluator) Evaluate(ctx context.Context, query string, report *models.AnalysisReport, steps []models.ReasoningStep) *models.ReflectionResult {
	if !e.config.Enabled {
		return &models.ReflectionResult{Score: 1.0, Accept: true}
	}

	response, err := e.completion.Complete(ctx, &interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: renderReflectionInput(query, report, steps)},
		},
		Model:             e.model,
		SystemInstruction: reflectionSystemPrompt,
		OutputSchema:      reflectionOutputSchema(),
	})
	if err != nil {
		e.logger.Warn().
			Err(err).
			Msg("Reflection oracle call failed, accepting with default score")
		return &models.ReflectionResult{
			Score:     oracleFailureScore,
			Accept:    true,
			Rationale: "quality evaluation unavailable",
		}
	}

	var verdict reflectionVerdict
	if err := llm.ExtractJSONObject(response, &verdict); err != nil {
		e.logger.Warn().
			Err(err).
			Msg("Reflection response unparseable, accepting with default score")
		return &models.ReflectionResult{
			Score:     oracleFailureScore,
			Accept:    true,
			Rationale: "quality evaluation unavailable",
		}
	}

	result := &models.ReflectionResult{
		Score:          verdict.Score,
		Rationale:      verdict.Rationale,
		Improvements:   verdict.Improvements,
		RefinedSummary: verdict.RefinedSummary,
	}
	result.ClampScore()
	result.Accept = result.Score >= e.config.MinQualityScore

	e.logger.Debug().
		Float64("score", result.Score).
		Bool("accept", result.Accept).
		Msg("Reflection evaluation completed")

	return result
}
