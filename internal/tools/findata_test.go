package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
)

type stubFinancialSource struct {
	snapshot *interfaces.FinancialSnapshot
	err      error
}

func (s *stubFinancialSource) Fetch(ctx context.Context, ticker string) (*interfaces.FinancialSnapshot, error) {
	return s.snapshot, s.err
}

func TestFinancialDataToolObservation(t *testing.T) {
	source := &stubFinancialSource{
		snapshot: &interfaces.FinancialSnapshot{
			Ticker:           "NASDAQ:TSLA",
			Price:            234.2,
			Change:           6.2,
			ChangePercent:    2.72,
			Open:             230.5,
			High:             236.1,
			Low:              229.8,
			PreviousClose:    228.0,
			Volume:           98000000,
			MarketCap:        745000000000,
			PERatio:          67.9,
			FiftyTwoWeekHigh: 299.3,
			FiftyTwoWeekLow:  138.8,
			RecentQuarters: []interfaces.QuarterlyFinancials{
				{Date: "2026-06-30", Revenue: 25500000000, NetIncome: 1480000000, EPS: 0.42},
			},
		},
	}
	tool := NewFinancialDataTool(source, common.GetLogger())

	observation, err := tool.Invoke(context.Background(), map[string]interface{}{"ticker": "TSLA"})
	require.NoError(t, err)

	assert.Contains(t, observation, "price 234.20")
	assert.Contains(t, observation, "market cap 745.00B")
	assert.Contains(t, observation, "P/E 67.90")
	assert.Contains(t, observation, "52-week range 138.80-299.30")
	assert.Contains(t, observation, "Quarter 2026-06-30: revenue 25.50B, net income 1.48B, EPS 0.42")
}

func TestFinancialDataToolQuoteOnlySnapshot(t *testing.T) {
	source := &stubFinancialSource{
		snapshot: &interfaces.FinancialSnapshot{
			Ticker: "NASDAQ:TSLA",
			Price:  234.2,
			Volume: 98000000,
		},
	}
	tool := NewFinancialDataTool(source, common.GetLogger())

	observation, err := tool.Invoke(context.Background(), map[string]interface{}{"ticker": "TSLA"})
	require.NoError(t, err)

	// Missing fundamentals leave no placeholder noise in the prompt
	assert.Contains(t, observation, "price 234.20")
	assert.NotContains(t, observation, "market cap")
	assert.NotContains(t, observation, "52-week")
	assert.NotContains(t, observation, "Quarter")
}

func TestFinancialDataToolErrors(t *testing.T) {
	tool := NewFinancialDataTool(&stubFinancialSource{err: errors.New("quote fetch failed")}, common.GetLogger())

	_, err := tool.Invoke(context.Background(), map[string]interface{}{"ticker": "TSLA"})
	require.Error(t, err)

	_, err = tool.Invoke(context.Background(), map[string]interface{}{})
	require.Error(t, err)
}
