package common

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewJobID generates a unique analysis job ID with the "job_" prefix
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// NewAlertID generates a unique alert ID with the "alert_" prefix
func NewAlertID() string {
	return "alert_" + uuid.New().String()
}

// NewMonitorID generates a unique monitor ID with the "mon_" prefix
func NewMonitorID() string {
	return "mon_" + uuid.New().String()
}

// ArticleID derives a stable article ID from the article URL so that
// re-fetching the same article upserts rather than duplicates. Articles
// without a URL fall back to a content fingerprint of title, source,
// and publication date.
func ArticleID(url, title, source string, publishedAt time.Time) string {
	input := strings.TrimSpace(url)
	if input == "" {
		input = fmt.Sprintf("%s|%s|%s",
			strings.ToLower(strings.TrimSpace(title)),
			strings.ToLower(strings.TrimSpace(source)),
			publishedAt.UTC().Format("2006-01-02"),
		)
	}
	sum := sha256.Sum256([]byte(input))
	return "art_" + hex.EncodeToString(sum[:16])
}
