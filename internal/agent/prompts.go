package agent

import (
	"fmt"
	"strings"

	"github.com/airalabs/aira/internal/models"
)

const reactSystemPromptTemplate = `You are an autonomous financial research analyst. You answer questions about companies by gathering evidence with tools, then synthesizing a balanced analysis.

Available tools:
%s
On every turn respond with a single JSON object, nothing else:
- To use a tool: {"thought": "<your reasoning>", "action": "<tool name>", "action_input": {<arguments>}}
- To finish: {"thought": "<your reasoning>", "final_answer": {"summary": "<analysis>", "sentiment_score": <-1.0 to 1.0>, "key_findings": ["<finding>", ...], "confidence": "<low|medium|high>"}}

Rules:
- Gather news, financial data, and sentiment evidence before finishing.
- Cite concrete figures from your observations in the summary.
- Cover both supportive and adverse factors.
- key_findings holds at most %d entries.`

const correctiveInstruction = `Your previous response was not a valid JSON tool call or final answer. Respond with exactly one JSON object as instructed: either {"thought": ..., "action": ..., "action_input": {...}} or {"thought": ..., "final_answer": {...}}. No other text.`

const reflectionSystemPrompt = `You are a strict quality reviewer for financial analyses. Score the analysis below on three dimensions:
- completeness: did the reasoning trail invoke every relevant evidence category (news, financial data, sentiment)?
- balance: does the text present both supportive and adverse factors?
- specificity: does it cite concrete data points and numeric figures?

Return a single overall score from 0.0 (unusable) to 1.0 (excellent), a one-sentence rationale, a list of concrete improvements, and optionally a refined_summary that tightens the wording without changing the conclusions.`

// reactDecision is the structured output shape requested from the
// oracle on every reasoning turn.
type reactDecision struct {
	Thought     string                 `json:"thought"`
	Action      string                 `json:"action,omitempty"`
	ActionInput map[string]interface{} `json:"action_input,omitempty"`
	FinalAnswer *finalAnswer           `json:"final_answer,omitempty"`
}

// finalAnswer is the report payload inside a finishing decision
type finalAnswer struct {
	Summary        string   `json:"summary"`
	SentimentScore float64  `json:"sentiment_score"`
	KeyFindings    []string `json:"key_findings"`
	Confidence     string   `json:"confidence"`
}

// reflectionVerdict is the structured output shape requested from the
// oracle during quality evaluation.
type reflectionVerdict struct {
	Score          float64  `json:"score"`
	Rationale      string   `json:"rationale"`
	Improvements   []string `json:"improvements"`
	RefinedSummary string   `json:"refined_summary"`
}

// reactOutputSchema constrains the oracle's reasoning turns to the
// decision shape where the provider supports structured generation.
func reactOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"thought": map[string]interface{}{"type": "string"},
			"action":  map[string]interface{}{"type": "string"},
			"action_input": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
			"final_answer": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"summary":         map[string]interface{}{"type": "string"},
					"sentiment_score": map[string]interface{}{"type": "number", "minimum": -1.0, "maximum": 1.0},
					"key_findings": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"confidence": map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
				},
			},
		},
		"required": []string{"thought"},
	}
}

// reflectionOutputSchema constrains the evaluator's verdict shape
func reflectionOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"score":     map[string]interface{}{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"rationale": map[string]interface{}{"type": "string"},
			"improvements": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"refined_summary": map[string]interface{}{"type": "string"},
		},
		"required": []string{"score"},
	}
}

// buildReactSystemPrompt renders the reasoning system prompt with the
// registry's tool descriptions.
func buildReactSystemPrompt(toolDescriptions string) string {
	return fmt.Sprintf(reactSystemPromptTemplate, toolDescriptions, models.MaxKeyFindings)
}

// renderTranscript renders the query and all prior steps as the user
// message for the next reasoning turn.
func renderTranscript(query string, steps []models.ReasoningStep) string {
	var b strings.Builder
	b.WriteString("Question: " + query + "\n")
	for _, step := range steps {
		switch step.Phase {
		case models.PhaseThink:
			b.WriteString("Thought: " + step.Content + "\n")
		case models.PhaseAct:
			b.WriteString(fmt.Sprintf("Action: %s %v\n", step.ToolName, step.ToolArgs))
		case models.PhaseObserve:
			if step.IsError {
				b.WriteString("Observation (error): " + step.Content + "\n")
			} else {
				b.WriteString("Observation: " + step.Content + "\n")
			}
		}
	}
	b.WriteString("What is your next step?")
	return b.String()
}

// renderReflectionInput renders the report and reasoning trail for the
// quality evaluation prompt.
func renderReflectionInput(query string, report *models.AnalysisReport, steps []models.ReasoningStep) string {
	var b strings.Builder
	b.WriteString("Question: " + query + "\n\n")
	b.WriteString("Analysis summary:\n" + report.Summary + "\n\n")
	b.WriteString(fmt.Sprintf("Sentiment score: %.2f\n", report.SentimentScore))
	if len(report.KeyFindings) > 0 {
		b.WriteString("Key findings:\n")
		for _, f := range report.KeyFindings {
			b.WriteString("- " + f + "\n")
		}
	}
	b.WriteString("\nReasoning trail:\n")
	for _, step := range steps {
		switch step.Phase {
		case models.PhaseAct:
			b.WriteString(fmt.Sprintf("- invoked tool %s\n", step.ToolName))
		case models.PhaseObserve:
			status := "ok"
			if step.IsError {
				status = "error"
			}
			b.WriteString(fmt.Sprintf("- observation (%s), %d chars\n", status, len(step.Content)))
		}
	}
	return b.String()
}
