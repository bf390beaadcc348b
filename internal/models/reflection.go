package models

// ReflectionResult is the verdict of one quality evaluation pass over a
// completed reasoning transcript and its report.
type ReflectionResult struct {
	// Score is the quality score in [0, 1]
	Score float64 `json:"score"`

	// Accept is true when the score meets the configured minimum
	Accept bool `json:"accept"`

	// Rationale explains the score in one or two sentences
	Rationale string `json:"rationale,omitempty"`

	// Improvements lists concrete gaps to address on a retry
	Improvements []string `json:"improvements,omitempty"`

	// RefinedSummary optionally replaces the report summary when the
	// evaluator tightened the wording on an accepted attempt
	RefinedSummary string `json:"refined_summary,omitempty"`
}

// ClampScore forces the score into [0, 1]
func (r *ReflectionResult) ClampScore() {
	if r.Score < 0 {
		r.Score = 0
	}
	if r.Score > 1 {
		r.Score = 1
	}
}
