package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
)

type stubCompletion struct {
	response string
	err      error
	calls    int
}

func (s *stubCompletion) Complete(ctx context.Context, req *interfaces.CompletionRequest) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubCompletion) Close() error { return nil }

func TestExtractTickerFast(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantTicker string
		wantMethod string
	}{
		{
			name:       "parenthesized symbol",
			text:       "Analyze Rivian (RIVN) production numbers",
			wantTicker: "RIVN",
			wantMethod: "regex",
		},
		{
			name:       "exchange qualified symbol",
			text:       "What about General Electric (NYSE: GE)?",
			wantTicker: "GE",
			wantMethod: "regex",
		},
		{
			name:       "known company name",
			text:       "How is Tesla doing this quarter?",
			wantTicker: "TSLA",
			wantMethod: "known_company",
		},
		{
			name:       "no company",
			text:       "what is the weather today",
			wantTicker: "",
			wantMethod: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticker, method := extractTickerFast(tt.text)
			assert.Equal(t, tt.wantTicker, ticker)
			assert.Equal(t, tt.wantMethod, method)
		})
	}
}

func TestTickerExtractToolFastPathSkipsOracle(t *testing.T) {
	completion := &stubCompletion{}
	tool := NewTickerExtractTool(completion, "", common.GetLogger())

	obs, err := tool.Invoke(context.Background(), map[string]interface{}{"text": "Analyze Tesla stock"})
	require.NoError(t, err)
	assert.Contains(t, obs, "TSLA")
	assert.Equal(t, 0, completion.calls)
}

func TestTickerExtractToolOracleFallback(t *testing.T) {
	completion := &stubCompletion{
		response: `{"ticker": "RIO", "company": "Rio Tinto", "confidence": 0.85}`,
	}
	tool := NewTickerExtractTool(completion, "", common.GetLogger())

	obs, err := tool.Invoke(context.Background(), map[string]interface{}{"text": "Analyze the big Anglo-Australian miner"})
	require.NoError(t, err)
	assert.Contains(t, obs, "RIO")
	assert.Contains(t, obs, "llm")
	assert.Equal(t, 1, completion.calls)
}

func TestTickerExtractToolNoTicker(t *testing.T) {
	completion := &stubCompletion{
		response: `{"ticker": "", "company": "", "confidence": 0.0}`,
	}
	tool := NewTickerExtractTool(completion, "", common.GetLogger())

	obs, err := tool.Invoke(context.Background(), map[string]interface{}{"text": "a query about nothing in particular"})
	require.NoError(t, err)
	assert.Contains(t, obs, "No ticker identified")
}

func TestSentimentTool(t *testing.T) {
	completion := &stubCompletion{
		response: `{"items": [{"text": "Record deliveries", "score": 0.8}, {"text": "Recall announced", "score": -0.6}]}`,
	}
	tool := NewSentimentTool(completion, "", common.GetLogger())

	obs, err := tool.Invoke(context.Background(), map[string]interface{}{"text": "Record deliveries\nRecall announced"})
	require.NoError(t, err)
	assert.Contains(t, obs, "+0.80")
	assert.Contains(t, obs, "-0.60")
	assert.Contains(t, obs, "average +0.10")
	assert.Contains(t, obs, "1 positive, 1 negative")
}

func TestSentimentToolUnparseableOutput(t *testing.T) {
	completion := &stubCompletion{response: "I cannot score these."}
	tool := NewSentimentTool(completion, "", common.GetLogger())

	_, err := tool.Invoke(context.Background(), map[string]interface{}{"text": "headline"})
	require.Error(t, err)
}
