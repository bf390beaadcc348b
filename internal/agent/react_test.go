package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
)

// scriptedOracle returns its responses in order, repeating the last one
// when the script runs out.
type scriptedOracle struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedOracle) Complete(ctx context.Context, req *interfaces.CompletionRequest) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func (s *scriptedOracle) Close() error { return nil }

// stubDispatcher returns canned observations per tool name
type stubDispatcher struct {
	observations map[string]string
	errors       map[string]error
	invoked      []string
}

func (s *stubDispatcher) Describe() string {
	return "- news_search: search news\n- financial_data: fetch market data\n- sentiment: score sentiment\n"
}

func (s *stubDispatcher) Invoke(ctx context.Context, name string, args map[string]interface{}) (string, time.Duration, error) {
	s.invoked = append(s.invoked, name)
	if err, ok := s.errors[name]; ok {
		return "", time.Millisecond, err
	}
	obs, ok := s.observations[name]
	if !ok {
		return "", 0, fmt.Errorf("unknown tool '%s'", name)
	}
	return obs, time.Millisecond, nil
}

func toolCall(thought, tool string, args string) string {
	return fmt.Sprintf(`{"thought": %q, "action": %q, "action_input": %s}`, thought, tool, args)
}

func finalCall(summary string, sentiment float64) string {
	return fmt.Sprintf(`{"thought": "enough evidence", "final_answer": {"summary": %q, "sentiment_score": %f, "key_findings": ["delivery beat", "margin pressure"], "confidence": "medium"}}`, summary, sentiment)
}

func newTestEngine(oracle *scriptedOracle, dispatcher *stubDispatcher) *Engine {
	return NewEngine(oracle, dispatcher, common.GetLogger())
}

func TestEngineAnalyzeTeslaScenario(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{
		toolCall("check recent news", "news_search", `{"query": "Tesla"}`),
		toolCall("get market data", "financial_data", `{"ticker": "TSLA"}`),
		toolCall("score the headlines", "sentiment", `{"text": "headlines"}`),
		finalCall("Tesla delivered a record 500k vehicles; sentiment is mildly positive despite margin pressure.", 0.4),
	}}
	dispatcher := &stubDispatcher{observations: map[string]string{
		"news_search":    "Found 3 recent articles:\n1. [Reuters] Tesla beats delivery estimates\n2. [Bloomberg] Tesla expands factory\n3. [WSJ] Tesla margin pressure",
		"financial_data": "Market data for NASDAQ:TSLA: price 234.20, change +6.20 (+2.72%)",
		"sentiment":      "Aggregate: average +0.30 across 3 snippets",
	}}

	engine := newTestEngine(oracle, dispatcher)
	result, err := engine.Run(context.Background(), RunInput{Query: "Analyze Tesla", Ticker: "TSLA", MaxSteps: 10})
	require.NoError(t, err)

	// Final answer reached within 4 reasoning turns
	assert.Equal(t, 4, oracle.calls)
	assert.Equal(t, []string{"news_search", "financial_data", "sentiment"}, dispatcher.invoked)
	require.NotNil(t, result.Report)
	assert.NotEmpty(t, result.Report.Summary)
	assert.InDelta(t, 0.4, result.Report.SentimentScore, 0.001)

	// Last step is the final answer
	last := result.Steps[len(result.Steps)-1]
	assert.Equal(t, models.PhaseFinal, last.Phase)
}

func TestEngineStepLogShape(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{
		toolCall("news", "news_search", `{"query": "Tesla"}`),
		toolCall("data", "financial_data", `{"ticker": "TSLA"}`),
		finalCall("done", 0.1),
	}}
	dispatcher := &stubDispatcher{observations: map[string]string{
		"news_search":    "articles",
		"financial_data": "data",
	}}

	engine := newTestEngine(oracle, dispatcher)
	result, err := engine.Run(context.Background(), RunInput{Query: "Analyze Tesla", MaxSteps: 10})
	require.NoError(t, err)

	// Every act step is immediately followed by exactly one observe step
	for i, step := range result.Steps {
		assert.Equal(t, i, step.Index)
		if step.Phase == models.PhaseAct {
			require.Less(t, i+1, len(result.Steps), "act step cannot be last")
			assert.Equal(t, models.PhaseObserve, result.Steps[i+1].Phase)
		}
	}
}

func TestEngineStepLimit(t *testing.T) {
	// Oracle never finishes
	oracle := &scriptedOracle{responses: []string{
		toolCall("keep digging", "news_search", `{"query": "Tesla"}`),
	}}
	dispatcher := &stubDispatcher{observations: map[string]string{"news_search": "articles"}}

	engine := newTestEngine(oracle, dispatcher)
	result, err := engine.Run(context.Background(), RunInput{Query: "Analyze Tesla", MaxSteps: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStepLimitExceeded)
	assert.Equal(t, 3, oracle.calls)
	assert.Nil(t, result.Report)
	assert.NotEmpty(t, result.Steps)
}

func TestEngineRejectsNonPositiveStepLimit(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{finalCall("done", 0)}}
	engine := newTestEngine(oracle, &stubDispatcher{})

	// Misconfigured limit fails fast but still hands back a usable
	// result so callers can read the (empty) transcript
	result, err := engine.Run(context.Background(), RunInput{Query: "Analyze Tesla", MaxSteps: 0})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Steps)
	assert.Zero(t, oracle.calls)
}

func TestEngineMalformedReasoningAbort(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{"I think we should look at the news first."}}
	dispatcher := &stubDispatcher{}

	engine := newTestEngine(oracle, dispatcher)
	_, err := engine.Run(context.Background(), RunInput{Query: "Analyze Tesla", MaxSteps: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedReasoning)

	// Exactly two consecutive malformed attempts: original plus one
	// corrective retry
	assert.Equal(t, 2, oracle.calls)
}

func TestEngineMalformedThenRecovered(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{
		"not json at all",
		finalCall("recovered analysis", 0.0),
	}}
	dispatcher := &stubDispatcher{}

	engine := newTestEngine(oracle, dispatcher)
	result, err := engine.Run(context.Background(), RunInput{Query: "Analyze Tesla", MaxSteps: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, oracle.calls)
	require.NotNil(t, result.Report)
	assert.Equal(t, "recovered analysis", result.Report.Summary)
}

func TestEngineToolErrorIsRecoverable(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{
		toolCall("try news", "news_search", `{"query": "Tesla"}`),
		finalCall("analysis without news", -0.2),
	}}
	dispatcher := &stubDispatcher{
		errors: map[string]error{"news_search": errors.New("news source unavailable")},
	}

	engine := newTestEngine(oracle, dispatcher)
	result, err := engine.Run(context.Background(), RunInput{Query: "Analyze Tesla", MaxSteps: 10})
	require.NoError(t, err)

	// The failure shows up as an error observation in the transcript
	var observeErrors int
	for _, step := range result.Steps {
		if step.Phase == models.PhaseObserve && step.IsError {
			observeErrors++
			assert.Contains(t, step.Content, "news source unavailable")
		}
	}
	assert.Equal(t, 1, observeErrors)
	require.NotNil(t, result.Report)
}

func TestEngineOracleUnavailableIsFatal(t *testing.T) {
	oracle := &scriptedOracle{err: interfaces.ErrCompletionUnavailable}
	dispatcher := &stubDispatcher{}

	engine := newTestEngine(oracle, dispatcher)
	_, err := engine.Run(context.Background(), RunInput{Query: "Analyze Tesla", MaxSteps: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOracleUnavailable)
}

func TestEngineCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	oracle := &scriptedOracle{responses: []string{finalCall("never reached", 0)}}
	engine := newTestEngine(oracle, &stubDispatcher{})

	_, err := engine.Run(ctx, RunInput{Query: "Analyze Tesla", MaxSteps: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobCancelled)
	assert.Equal(t, 0, oracle.calls, "cancellation is observed before the oracle call")
}

func TestEngineSentimentClamped(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{
		`{"thought": "done", "final_answer": {"summary": "overly enthusiastic", "sentiment_score": 3.5, "key_findings": ["a", "b", "c", "d", "e", "f", "g"], "confidence": "high"}}`,
	}}
	engine := newTestEngine(oracle, &stubDispatcher{})

	result, err := engine.Run(context.Background(), RunInput{Query: "Analyze Tesla", MaxSteps: 5})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Report.SentimentScore)
	assert.Len(t, result.Report.KeyFindings, models.MaxKeyFindings)
}
