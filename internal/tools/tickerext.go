package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/services/llm"
	"github.com/ternarybob/arbor"
)

// ToolNameTickerExtract is the registry name of the ticker resolution tool
const ToolNameTickerExtract = "ticker_extract"

// parenTickerPattern matches explicit symbols like "(TSLA)" or "(NYSE: GE)"
var parenTickerPattern = regexp.MustCompile(`\(([A-Z]{1,6})(?:\.[A-Z]{1,3})?\)|\(([A-Z]+):\s*([A-Z]{1,6})\)`)

// knownCompanies maps common company names to tickers for the regex
// fast path. The oracle handles everything else.
var knownCompanies = map[string]string{
	"tesla":     "TSLA",
	"apple":     "AAPL",
	"microsoft": "MSFT",
	"google":    "GOOGL",
	"alphabet":  "GOOGL",
	"amazon":    "AMZN",
	"nvidia":    "NVDA",
	"meta":      "META",
	"netflix":   "NFLX",
}

const tickerExtractSystemPrompt = `You identify the primary publicly traded company in a user query and return its stock ticker symbol. If no public company is mentioned, return an empty ticker.`

// tickerExtractResult is the structured output shape requested from the oracle
type tickerExtractResult struct {
	Ticker     string  `json:"ticker"`
	Company    string  `json:"company"`
	Confidence float64 `json:"confidence"`
}

// TickerExtractTool resolves a free-text query to a stock ticker. A
// regex pass over explicit symbols and well-known company names runs
// first; the completion oracle is the fallback.
type TickerExtractTool struct {
	completion interfaces.CompletionService
	model      string
	logger     arbor.ILogger
}

// NewTickerExtractTool creates the ticker resolution tool
func NewTickerExtractTool(completion interfaces.CompletionService, model string, logger arbor.ILogger) *TickerExtractTool {
	return &TickerExtractTool{
		completion: completion,
		model:      model,
		logger:     logger,
	}
}

func (t *TickerExtractTool) Name() string {
	return ToolNameTickerExtract
}

func (t *TickerExtractTool) Description() string {
	return "Identify the stock ticker of the company mentioned in free text."
}

func (t *TickerExtractTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Free text mentioning a company",
			},
		},
		"required": []string{"text"},
	}
}

func (t *TickerExtractTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	text := stringArg(args, "text")
	if text == "" {
		return "", fmt.Errorf("text argument is required")
	}

	if ticker, method := extractTickerFast(text); ticker != "" {
		t.logger.Debug().Str("ticker", ticker).Str("method", method).Msg("Ticker resolved without oracle")
		return fmt.Sprintf("Ticker: %s (method: %s, confidence: 0.95)", ticker, method), nil
	}

	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"ticker":     map[string]interface{}{"type": "string"},
			"company":    map[string]interface{}{"type": "string"},
			"confidence": map[string]interface{}{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
		"required": []string{"ticker", "confidence"},
	}

	response, err := t.completion.Complete(ctx, &interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: "Identify the primary company ticker in this text:\n" + text},
		},
		Model:             t.model,
		SystemInstruction: tickerExtractSystemPrompt,
		OutputSchema:      schema,
	})
	if err != nil {
		return "", fmt.Errorf("ticker extraction failed: %w", err)
	}

	var result tickerExtractResult
	if err := llm.ExtractJSONObject(response, &result); err != nil {
		return "", fmt.Errorf("ticker extraction returned unparseable output: %w", err)
	}

	ticker := common.ParseTicker(result.Ticker)
	if result.Ticker == "" || !ticker.IsValid() {
		return "No ticker identified in the text.", nil
	}

	return fmt.Sprintf("Ticker: %s (method: llm, confidence: %.2f)", ticker.Code, result.Confidence), nil
}

// extractTickerFast tries the regex fast path: explicit parenthesized
// symbols first, then well-known company names.
func extractTickerFast(text string) (string, string) {
	if matches := parenTickerPattern.FindStringSubmatch(text); matches != nil {
		if matches[1] != "" {
			return matches[1], "regex"
		}
		if matches[3] != "" {
			return matches[3], "regex"
		}
	}

	lower := strings.ToLower(text)
	for name, ticker := range knownCompanies {
		if strings.Contains(lower, name) {
			return ticker, "known_company"
		}
	}

	return "", ""
}
