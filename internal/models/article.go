package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// NewsArticle is a single news item returned by a news source.
type NewsArticle struct {
	ID          string    `json:"id" badgerhold:"key"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Ticker      string    `json:"ticker,omitempty" badgerholdIndex:"Ticker"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Fingerprint returns a stable content identity for deduplication:
// SHA-256 over the normalized title, source name, and publication date.
// Case and surrounding whitespace do not affect the result. The URL is
// deliberately excluded so syndicated copies of the same story collapse
// to one fingerprint.
func (a *NewsArticle) Fingerprint() string {
	title := strings.ToLower(strings.TrimSpace(a.Title))
	source := strings.ToLower(strings.TrimSpace(a.Source))
	date := a.PublishedAt.UTC().Format("2006-01-02")
	h := sha256.Sum256([]byte(title + "|" + source + "|" + date))
	return hex.EncodeToString(h[:])
}
