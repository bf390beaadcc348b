package models

import (
	"time"
)

// MonitorState is the durable record for one watched ticker. The
// fingerprint set only ever grows; a fingerprint once recorded is never
// removed for the lifetime of the monitor.
type MonitorState struct {
	ID      string `json:"id" badgerhold:"key"`
	Ticker  string `json:"ticker" badgerholdIndex:"Ticker"`
	Enabled bool   `json:"enabled"`

	// SeenArticleHashes maps article fingerprints to first-seen time
	SeenArticleHashes map[string]time.Time `json:"seen_article_hashes"`

	// Interval is the check cadence, e.g. "24h"
	Interval string `json:"interval"`

	// MinArticles is the strict threshold: an alert fires only when the
	// new-article count for a check exceeds this value
	MinArticles int `json:"min_articles"`

	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	LastAlertAt   *time.Time `json:"last_alert_at,omitempty"`
	CheckCount    int        `json:"check_count"`
	AlertCount    int        `json:"alert_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMonitorState creates an enabled monitor with an empty seen set
func NewMonitorState(id, ticker, interval string, minArticles int) *MonitorState {
	now := time.Now().UTC()
	return &MonitorState{
		ID:                id,
		Ticker:            ticker,
		Enabled:           true,
		SeenArticleHashes: make(map[string]time.Time),
		Interval:          interval,
		MinArticles:       minArticles,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// MarkSeen records fingerprints into the seen set and returns how many
// were not already present.
func (m *MonitorState) MarkSeen(fingerprints []string, at time.Time) int {
	if m.SeenArticleHashes == nil {
		m.SeenArticleHashes = make(map[string]time.Time)
	}
	added := 0
	for _, fp := range fingerprints {
		if _, ok := m.SeenArticleHashes[fp]; !ok {
			m.SeenArticleHashes[fp] = at
			added++
		}
	}
	return added
}
