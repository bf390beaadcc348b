package eodhd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
)

// recentQuarterCount bounds how many quarters of income data the
// snapshot carries.
const recentQuarterCount = 4

// Source adapts the EODHD client to the financial source contract used
// by analysis tools.
type Source struct {
	client *Client
}

// NewSource creates a financial source over an EODHD client
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// Fetch retrieves a point-in-time snapshot for a ticker. Ticker strings
// accept the EXCHANGE:CODE form or a bare code on the default exchange.
// The quote is mandatory; fundamentals are best-effort and the snapshot
// degrades to quote-only when the fundamentals endpoint is unavailable.
func (s *Source) Fetch(ctx context.Context, ticker string) (*interfaces.FinancialSnapshot, error) {
	parsed := common.ParseTicker(ticker)
	if !parsed.IsValid() {
		return nil, fmt.Errorf("invalid ticker '%s'", ticker)
	}
	symbol := parsed.EODHDSymbol()

	quote, err := s.client.GetRealTimeQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: quote fetch for %s: %v", interfaces.ErrSourceUnavailable, parsed.String(), err)
	}

	snapshot := &interfaces.FinancialSnapshot{
		Ticker:        parsed.String(),
		Price:         quote.Close,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		Open:          quote.Open,
		High:          quote.High,
		Low:           quote.Low,
		PreviousClose: quote.PreviousClose,
		Volume:        quote.Volume,
		Timestamp:     quote.Timestamp,
	}

	if fundamentals, err := s.client.GetFundamentals(ctx, symbol); err == nil {
		applyFundamentals(snapshot, fundamentals)
	}

	if snapshot.FiftyTwoWeekHigh == 0 || snapshot.FiftyTwoWeekLow == 0 {
		s.rangeFromHistory(ctx, symbol, snapshot)
	}

	return snapshot, nil
}

func applyFundamentals(snapshot *interfaces.FinancialSnapshot, f *FundamentalsResponse) {
	if f.General != nil {
		snapshot.Name = f.General.Name
	}
	if f.Highlights != nil {
		snapshot.MarketCap = f.Highlights.MarketCapitalization
		snapshot.PERatio = f.Highlights.PERatio
		snapshot.DividendYield = f.Highlights.DividendYield
	}
	// Valuation trailing P/E wins over the highlights figure
	if f.Valuation != nil && f.Valuation.TrailingPE > 0 {
		snapshot.PERatio = f.Valuation.TrailingPE
	}
	if f.Technicals != nil {
		snapshot.FiftyTwoWeekHigh = f.Technicals.FiftyTwoWeekHigh
		snapshot.FiftyTwoWeekLow = f.Technicals.FiftyTwoWeekLow
	}
	snapshot.RecentQuarters = recentQuarters(f)
}

// recentQuarters extracts the newest income statement quarters,
// newest first.
func recentQuarters(f *FundamentalsResponse) []interfaces.QuarterlyFinancials {
	if f.Financials == nil || f.Financials.IncomeStatement == nil {
		return nil
	}
	rows := f.Financials.IncomeStatement.Quarterly
	if len(rows) == 0 {
		return nil
	}

	dates := make([]string, 0, len(rows))
	for date := range rows {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > recentQuarterCount {
		dates = dates[:recentQuarterCount]
	}

	quarters := make([]interfaces.QuarterlyFinancials, 0, len(dates))
	for _, date := range dates {
		row := rows[date]
		quarters = append(quarters, interfaces.QuarterlyFinancials{
			Date:      date,
			Revenue:   floatField(row, "totalRevenue"),
			NetIncome: floatField(row, "netIncome"),
			EPS:       floatField(row, "epsActual", "eps"),
		})
	}
	return quarters
}

// rangeFromHistory derives the 52-week range from daily bars when the
// fundamentals technicals are missing. Best-effort.
func (s *Source) rangeFromHistory(ctx context.Context, symbol string, snapshot *interfaces.FinancialSnapshot) {
	now := time.Now().UTC()
	bars, err := s.client.GetEOD(ctx, symbol,
		WithDateRange(now.AddDate(-1, 0, 0), now),
		WithPeriod("d"),
		WithOrder("a"),
	)
	if err != nil || len(bars) == 0 {
		return
	}

	high, low := bars[0].High, bars[0].Low
	for _, bar := range bars[1:] {
		if bar.High > high {
			high = bar.High
		}
		if bar.Low > 0 && bar.Low < low {
			low = bar.Low
		}
	}
	snapshot.FiftyTwoWeekHigh = high
	snapshot.FiftyTwoWeekLow = low
}

// floatField reads a numeric statement cell, which the API encodes as
// either a JSON number or a numeric string.
func floatField(row map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		switch v := row[key].(type) {
		case float64:
			return v
		case string:
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return 0
}
