package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/services/llm"
	"github.com/ternarybob/arbor"
)

// ToolNameSentiment is the registry name of the sentiment scoring tool
const ToolNameSentiment = "sentiment"

const sentimentSystemPrompt = `You are a financial sentiment analyst. Score each headline or text snippet for market sentiment toward the subject company. Scores range from -1.0 (strongly negative) to 1.0 (strongly positive); 0 is neutral.`

// sentimentResult is the structured output shape requested from the oracle
type sentimentResult struct {
	Items []struct {
		Text  string  `json:"text"`
		Score float64 `json:"score"`
	} `json:"items"`
}

// SentimentTool scores text snippets for market sentiment through the
// completion oracle using structured output, and reports aggregate
// statistics across the snippets.
type SentimentTool struct {
	completion interfaces.CompletionService
	model      string
	logger     arbor.ILogger
}

// NewSentimentTool creates the sentiment tool. model selects the
// provider model to score with; empty means the provider default.
func NewSentimentTool(completion interfaces.CompletionService, model string, logger arbor.ILogger) *SentimentTool {
	return &SentimentTool{
		completion: completion,
		model:      model,
		logger:     logger,
	}
}

func (t *SentimentTool) Name() string {
	return ToolNameSentiment
}

func (t *SentimentTool) Description() string {
	return "Score news headlines or text snippets for market sentiment. Input one snippet per line; returns per-snippet scores from -1.0 to 1.0 and an aggregate."
}

func (t *SentimentTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Headlines or snippets to score, one per line",
			},
		},
		"required": []string{"text"},
	}
}

func (t *SentimentTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	text := stringArg(args, "text")
	if text == "" {
		return "", fmt.Errorf("text argument is required")
	}

	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"items": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"text":  map[string]interface{}{"type": "string"},
						"score": map[string]interface{}{"type": "number", "minimum": -1.0, "maximum": 1.0},
					},
					"required": []string{"text", "score"},
				},
			},
		},
		"required": []string{"items"},
	}

	response, err := t.completion.Complete(ctx, &interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: "Score the sentiment of each of these snippets:\n" + text},
		},
		Model:             t.model,
		SystemInstruction: sentimentSystemPrompt,
		OutputSchema:      schema,
	})
	if err != nil {
		return "", fmt.Errorf("sentiment scoring failed: %w", err)
	}

	var result sentimentResult
	if err := llm.ExtractJSONObject(response, &result); err != nil {
		return "", fmt.Errorf("sentiment scoring returned unparseable output: %w", err)
	}
	if len(result.Items) == 0 {
		return "", fmt.Errorf("sentiment scoring returned no items")
	}

	var sum float64
	positive, negative := 0, 0
	var b strings.Builder
	b.WriteString("Sentiment scores:\n")
	for _, item := range result.Items {
		score := clampScore(item.Score)
		sum += score
		if score > 0.1 {
			positive++
		} else if score < -0.1 {
			negative++
		}
		b.WriteString(fmt.Sprintf("  %+.2f  %s\n", score, item.Text))
	}

	average := sum / float64(len(result.Items))
	b.WriteString(fmt.Sprintf("Aggregate: average %+.2f across %d snippets (%d positive, %d negative, %d neutral)",
		average, len(result.Items), positive, negative, len(result.Items)-positive-negative))

	return b.String(), nil
}

func clampScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}
