package models

// MaxKeyFindings caps the findings list on every report
const MaxKeyFindings = 5

// AnalysisReport is the structured output of a completed analysis.
type AnalysisReport struct {
	Ticker  string `json:"ticker,omitempty"`
	Summary string `json:"summary"`

	// SentimentScore is clamped to [-1, 1]
	SentimentScore float64 `json:"sentiment_score"`

	// KeyFindings holds at most MaxKeyFindings entries
	KeyFindings []string `json:"key_findings,omitempty"`

	Sources []string `json:"sources,omitempty"`

	Confidence string `json:"confidence,omitempty"`
}

// Normalize clamps the sentiment score into [-1, 1] and truncates the
// findings list to its cap. Applied before a report is accepted.
func (r *AnalysisReport) Normalize() {
	if r.SentimentScore > 1 {
		r.SentimentScore = 1
	}
	if r.SentimentScore < -1 {
		r.SentimentScore = -1
	}
	if len(r.KeyFindings) > MaxKeyFindings {
		r.KeyFindings = r.KeyFindings[:MaxKeyFindings]
	}
}
