package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airalabs/aira/internal/interfaces"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient("test-token", WithBaseURL(server.URL))
	return server, client
}

func TestGetRealTimeQuote(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/real-time/TSLA.US", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))

		w.Write([]byte(`{
			"code": "TSLA.US",
			"timestamp": 1756400000,
			"open": 230.5,
			"high": 236.1,
			"low": 229.8,
			"close": 234.2,
			"volume": 98000000,
			"previousClose": 228.0,
			"change": 6.2,
			"change_p": 2.7193
		}`))
	})

	quote, err := client.GetRealTimeQuote(context.Background(), "TSLA.US")
	require.NoError(t, err)
	assert.Equal(t, "TSLA.US", quote.Code)
	assert.Equal(t, 234.2, quote.Close)
	assert.Equal(t, 2.7193, quote.ChangePercent)
	assert.Equal(t, int64(98000000), quote.Volume)
}

func TestGetEOD(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/AAPL.US", r.URL.Path)
		assert.Equal(t, "d", r.URL.Query().Get("period"))

		w.Write([]byte(`[
			{"date": "2026-08-26", "open": 180.0, "high": 183.0, "low": 179.5, "close": 182.1, "adjusted_close": 182.1, "volume": 51000000},
			{"date": "2026-08-27", "open": 182.2, "high": 184.0, "low": 181.0, "close": 183.5, "adjusted_close": 183.5, "volume": 48000000}
		]`))
	})

	data, err := client.GetEOD(context.Background(), "AAPL.US")
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, 182.1, data[0].Close)
	assert.Equal(t, "2026-08-26", data[0].Date.Format("2006-01-02"))
}

func TestGetRealTimeQuoteAPIError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "invalid token"}`))
	})

	_, err := client.GetRealTimeQuote(context.Background(), "TSLA.US")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestGetFundamentals(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundamentals/TSLA.US", r.URL.Path)
		w.Write([]byte(`{
			"General": {"Code": "TSLA", "Name": "Tesla Inc", "Sector": "Consumer Cyclical"},
			"Highlights": {"MarketCapitalization": 745000000000, "PERatio": 68.4, "DividendYield": 0},
			"Valuation": {"TrailingPE": 67.9, "ForwardPE": 55.1},
			"Technicals": {"Beta": 2.1, "52WeekHigh": 299.3, "52WeekLow": 138.8},
			"Financials": {
				"Income_Statement": {
					"currency": "USD",
					"quarterly": {
						"2026-06-30": {"totalRevenue": "25500000000.00", "netIncome": "1480000000.00", "epsActual": "0.42"},
						"2026-03-31": {"totalRevenue": "21300000000.00", "netIncome": "1130000000.00", "epsActual": "0.34"}
					}
				}
			}
		}`))
	})

	fundamentals, err := client.GetFundamentals(context.Background(), "TSLA.US")
	require.NoError(t, err)
	require.NotNil(t, fundamentals.Highlights)
	assert.Equal(t, 745000000000.0, fundamentals.Highlights.MarketCapitalization)
	assert.Equal(t, 67.9, fundamentals.Valuation.TrailingPE)
	assert.Equal(t, 299.3, fundamentals.Technicals.FiftyTwoWeekHigh)
	require.NotNil(t, fundamentals.Financials.IncomeStatement)
	assert.Len(t, fundamentals.Financials.IncomeStatement.Quarterly, 2)
}

func TestSourceFetch(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/real-time/TSLA.US":
			w.Write([]byte(`{"code": "TSLA.US", "timestamp": 1756400000, "close": 234.2, "previousClose": 228.0, "change": 6.2, "change_p": 2.7193, "volume": 98000000}`))
		case r.URL.Path == "/fundamentals/TSLA.US":
			w.Write([]byte(`{
				"General": {"Name": "Tesla Inc"},
				"Highlights": {"MarketCapitalization": 745000000000, "PERatio": 68.4},
				"Valuation": {"TrailingPE": 67.9},
				"Technicals": {"52WeekHigh": 299.3, "52WeekLow": 138.8},
				"Financials": {
					"Income_Statement": {
						"currency": "USD",
						"quarterly": {
							"2026-03-31": {"totalRevenue": "21300000000.00", "netIncome": "1130000000.00", "epsActual": "0.34"},
							"2026-06-30": {"totalRevenue": "25500000000.00", "netIncome": "1480000000.00", "epsActual": "0.42"}
						}
					}
				}
			}`))
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	})

	source := NewSource(client)
	snapshot, err := source.Fetch(context.Background(), "NASDAQ:TSLA")
	require.NoError(t, err)
	assert.Equal(t, "NASDAQ:TSLA", snapshot.Ticker)
	assert.Equal(t, "Tesla Inc", snapshot.Name)
	assert.Equal(t, 234.2, snapshot.Price)
	assert.Equal(t, 6.2, snapshot.Change)
	assert.Equal(t, 745000000000.0, snapshot.MarketCap)
	// Valuation trailing P/E preferred over the highlights figure
	assert.Equal(t, 67.9, snapshot.PERatio)
	assert.Equal(t, 299.3, snapshot.FiftyTwoWeekHigh)
	assert.Equal(t, 138.8, snapshot.FiftyTwoWeekLow)

	// Quarters come back newest first with parsed numeric strings
	require.Len(t, snapshot.RecentQuarters, 2)
	assert.Equal(t, "2026-06-30", snapshot.RecentQuarters[0].Date)
	assert.Equal(t, 25500000000.0, snapshot.RecentQuarters[0].Revenue)
	assert.Equal(t, 1480000000.0, snapshot.RecentQuarters[0].NetIncome)
	assert.Equal(t, 0.42, snapshot.RecentQuarters[0].EPS)
}

func TestSourceFetchRangeFromHistory(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/real-time/TSLA.US":
			w.Write([]byte(`{"code": "TSLA.US", "close": 234.2, "previousClose": 228.0, "change": 6.2, "change_p": 2.7193, "volume": 98000000}`))
		case r.URL.Path == "/fundamentals/TSLA.US":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": "subscription required"}`))
		case r.URL.Path == "/eod/TSLA.US":
			assert.NotEmpty(t, r.URL.Query().Get("from"))
			assert.Equal(t, "d", r.URL.Query().Get("period"))
			w.Write([]byte(`[
				{"date": "2026-05-12", "open": 150.0, "high": 152.0, "low": 138.8, "close": 140.1, "adjusted_close": 140.1, "volume": 80000000},
				{"date": "2026-07-03", "open": 290.0, "high": 299.3, "low": 288.5, "close": 296.0, "adjusted_close": 296.0, "volume": 91000000}
			]`))
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	})

	source := NewSource(client)
	snapshot, err := source.Fetch(context.Background(), "TSLA")
	require.NoError(t, err)

	// Fundamentals unavailable: snapshot degrades to quote data with the
	// 52-week range derived from daily history
	assert.Equal(t, 234.2, snapshot.Price)
	assert.Zero(t, snapshot.MarketCap)
	assert.Equal(t, 299.3, snapshot.FiftyTwoWeekHigh)
	assert.Equal(t, 138.8, snapshot.FiftyTwoWeekLow)
}

func TestSourceFetchInvalidTicker(t *testing.T) {
	source := NewSource(NewClient("test-token"))
	_, err := source.Fetch(context.Background(), "not a ticker!!")
	require.Error(t, err)
}

func TestSourceFetchUnavailable(t *testing.T) {
	server, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	source := NewSource(client)
	_, err := source.Fetch(context.Background(), "TSLA")
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrSourceUnavailable)
}
