package models

import (
	"time"
)

// AlertKind distinguishes alert origins. Only proactive monitor alerts
// exist today.
type AlertKind string

const (
	AlertKindProactive AlertKind = "proactive_alert"
)

// Alert is a persisted notification produced by the monitor engine when
// a check crosses its new-article threshold and the follow-up quick
// analysis succeeds.
type Alert struct {
	ID     string    `json:"id" badgerhold:"key"`
	Kind   AlertKind `json:"kind"`
	Ticker string    `json:"ticker" badgerholdIndex:"Ticker"`

	// MonitorID links back to the monitor that raised the alert
	MonitorID string `json:"monitor_id"`

	// JobID links to the quick analysis job behind the alert
	JobID string `json:"job_id"`

	// NewArticleCount is the number of unseen articles in the
	// triggering check
	NewArticleCount int `json:"new_article_count"`

	Summary        string  `json:"summary"`
	SentimentScore float64 `json:"sentiment_score"`

	// Degraded propagates the quality flag from the underlying job
	Degraded bool `json:"degraded,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
