package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/airalabs/aira/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// ToolNameFinancialData is the registry name of the financial data tool
const ToolNameFinancialData = "financial_data"

// FinancialDataTool fetches a current market snapshot for a ticker.
type FinancialDataTool struct {
	source interfaces.FinancialSource
	logger arbor.ILogger
}

// NewFinancialDataTool creates the financial data tool
func NewFinancialDataTool(source interfaces.FinancialSource, logger arbor.ILogger) *FinancialDataTool {
	return &FinancialDataTool{
		source: source,
		logger: logger,
	}
}

func (t *FinancialDataTool) Name() string {
	return ToolNameFinancialData
}

func (t *FinancialDataTool) Description() string {
	return "Fetch current market data for a stock ticker: price, daily change, volume, market cap, P/E ratio, 52-week range, and recent quarterly financials."
}

func (t *FinancialDataTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"ticker": map[string]interface{}{
				"type":        "string",
				"description": "Stock ticker, e.g. TSLA or NASDAQ:TSLA",
			},
		},
		"required": []string{"ticker"},
	}
}

func (t *FinancialDataTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	ticker := stringArg(args, "ticker")
	if ticker == "" {
		return "", fmt.Errorf("ticker argument is required")
	}

	snapshot, err := t.source.Fetch(ctx, ticker)
	if err != nil {
		return "", fmt.Errorf("financial data fetch failed: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		"Market data for %s: price %.2f, change %+.2f (%+.2f%%), open %.2f, high %.2f, low %.2f, previous close %.2f, volume %d",
		snapshot.Ticker,
		snapshot.Price,
		snapshot.Change,
		snapshot.ChangePercent,
		snapshot.Open,
		snapshot.High,
		snapshot.Low,
		snapshot.PreviousClose,
		snapshot.Volume,
	)
	if snapshot.MarketCap > 0 {
		fmt.Fprintf(&b, ", market cap %s", formatLargeNumber(snapshot.MarketCap))
	}
	if snapshot.PERatio > 0 {
		fmt.Fprintf(&b, ", P/E %.2f", snapshot.PERatio)
	}
	if snapshot.FiftyTwoWeekLow > 0 && snapshot.FiftyTwoWeekHigh > 0 {
		fmt.Fprintf(&b, ", 52-week range %.2f-%.2f", snapshot.FiftyTwoWeekLow, snapshot.FiftyTwoWeekHigh)
	}
	for _, q := range snapshot.RecentQuarters {
		fmt.Fprintf(&b, "\nQuarter %s: revenue %s, net income %s, EPS %.2f",
			q.Date, formatLargeNumber(q.Revenue), formatLargeNumber(q.NetIncome), q.EPS)
	}
	return b.String(), nil
}

// formatLargeNumber renders dollar amounts with T/B/M suffixes so the
// observation stays readable in a prompt.
func formatLargeNumber(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
