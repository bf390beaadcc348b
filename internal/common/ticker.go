// Package common provides shared utilities across the application.
package common

import (
	"regexp"
	"strings"
)

// Ticker represents a parsed exchange-qualified ticker.
// Format: EXCHANGE:CODE (e.g., "NASDAQ:TSLA", "NYSE:GE")
type Ticker struct {
	// Exchange is the exchange code (e.g., "NYSE", "NASDAQ", "ASX")
	Exchange string
	// Code is the stock code (e.g., "TSLA", "GE")
	Code string
	// Raw is the original ticker string
	Raw string
}

// ExchangeToSuffix maps exchange codes to EODHD API suffixes.
var ExchangeToSuffix = map[string]string{
	"NYSE":   ".US",
	"NASDAQ": ".US",
	"ASX":    ".AU",
	"LSE":    ".LSE",
	"TSX":    ".TO",
	"XETRA":  ".XETRA",
}

// DefaultExchange is the exchange assumed when a ticker has no exchange prefix.
var DefaultExchange = "NASDAQ"

// SetDefaultExchange sets the default exchange for parsing tickers.
// Called during app initialization from config.
func SetDefaultExchange(exchange string) {
	if exchange != "" {
		DefaultExchange = strings.ToUpper(exchange)
	}
}

var tickerCodePattern = regexp.MustCompile(`^[A-Z]{1,6}(\.[A-Z]{1,3})?$`)

// ParseTicker parses an exchange-qualified ticker string.
// Supports formats:
//   - "NASDAQ:TSLA" -> Exchange="NASDAQ", Code="TSLA"
//   - "TSLA" -> Exchange=DefaultExchange, Code="TSLA"
//   - "tsla" -> normalized to uppercase
func ParseTicker(ticker string) Ticker {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return Ticker{}
	}

	if idx := strings.Index(ticker, ":"); idx > 0 {
		return Ticker{
			Exchange: strings.ToUpper(ticker[:idx]),
			Code:     strings.ToUpper(ticker[idx+1:]),
			Raw:      ticker,
		}
	}

	return Ticker{
		Exchange: DefaultExchange,
		Code:     strings.ToUpper(ticker),
		Raw:      ticker,
	}
}

// IsValid reports whether the ticker code looks like a real symbol.
func (t Ticker) IsValid() bool {
	return t.Code != "" && tickerCodePattern.MatchString(t.Code)
}

// String returns the canonical EXCHANGE:CODE form.
func (t Ticker) String() string {
	if t.Code == "" {
		return ""
	}
	return t.Exchange + ":" + t.Code
}

// EODHDSymbol converts the ticker to EODHD's CODE.SUFFIX format
// (e.g., "NASDAQ:TSLA" -> "TSLA.US"). Unknown exchanges fall back to ".US".
func (t Ticker) EODHDSymbol() string {
	suffix, ok := ExchangeToSuffix[t.Exchange]
	if !ok {
		suffix = ".US"
	}
	return t.Code + suffix
}
