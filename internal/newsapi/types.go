package newsapi

import (
	"fmt"
	"time"
)

// QueryOption represents an optional parameter for API queries.
type QueryOption func(*queryParams)

// queryParams holds optional query parameters.
type queryParams struct {
	From     time.Time
	To       time.Time
	SortBy   string // relevancy, popularity, publishedAt
	Language string
	PageSize int
}

// WithDateRange sets the date range for the query.
func WithDateRange(from, to time.Time) QueryOption {
	return func(p *queryParams) {
		p.From = from
		p.To = to
	}
}

// WithSortBy sets the sort order.
func WithSortBy(sortBy string) QueryOption {
	return func(p *queryParams) {
		p.SortBy = sortBy
	}
}

// WithLanguage sets the article language filter.
func WithLanguage(language string) QueryOption {
	return func(p *queryParams) {
		p.Language = language
	}
}

// WithPageSize sets the maximum number of results.
func WithPageSize(pageSize int) QueryOption {
	return func(p *queryParams) {
		p.PageSize = pageSize
	}
}

// APIError represents an error from the NewsAPI.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("NewsAPI error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError represents a rate limit error.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("NewsAPI rate limit exceeded, retry after %v", e.RetryAfter)
}

// Article represents a single article from the API.
type Article struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

// EverythingResponse is the response envelope for the everything
// endpoint. Code and Message are set when Status is "error".
type EverythingResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
}
