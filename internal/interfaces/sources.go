package interfaces

import (
	"context"
	"errors"

	"github.com/airalabs/aira/internal/models"
)

// ErrSourceUnavailable indicates a data source request failed after
// retries. Callers treat this as recoverable evidence, not a fatal
// condition.
var ErrSourceUnavailable = errors.New("data source unavailable")

// NewsSearch describes one news query
type NewsSearch struct {
	// Query is free text; Ticker, when set, scopes the search
	Query       string
	Ticker      string
	DaysBack    int
	MaxArticles int
}

// NewsSource retrieves recent news articles
type NewsSource interface {
	Search(ctx context.Context, search NewsSearch) ([]*models.NewsArticle, error)
}

// QuarterlyFinancials is one quarter of income statement figures
type QuarterlyFinancials struct {
	Date      string  `json:"date"`
	Revenue   float64 `json:"revenue"`
	NetIncome float64 `json:"net_income"`
	EPS       float64 `json:"eps"`
}

// FinancialSnapshot is a point-in-time market summary for one ticker.
// Fundamentals fields are zero-valued when the provider has no data
// for them.
type FinancialSnapshot struct {
	Ticker           string                `json:"ticker"`
	Name             string                `json:"name,omitempty"`
	Price            float64               `json:"price"`
	Change           float64               `json:"change"`
	ChangePercent    float64               `json:"change_percent"`
	Open             float64               `json:"open"`
	High             float64               `json:"high"`
	Low              float64               `json:"low"`
	PreviousClose    float64               `json:"previous_close"`
	Volume           int64                 `json:"volume"`
	Timestamp        int64                 `json:"timestamp"`
	MarketCap        float64               `json:"market_cap,omitempty"`
	PERatio          float64               `json:"pe_ratio,omitempty"`
	DividendYield    float64               `json:"dividend_yield,omitempty"`
	FiftyTwoWeekHigh float64               `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  float64               `json:"fifty_two_week_low,omitempty"`
	RecentQuarters   []QuarterlyFinancials `json:"recent_quarters,omitempty"`
}

// FinancialSource retrieves market data
type FinancialSource interface {
	Fetch(ctx context.Context, ticker string) (*FinancialSnapshot, error)
}
