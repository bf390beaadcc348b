package newsapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
)

// Source adapts the NewsAPI client to the news source contract used by
// analysis tools and monitors.
type Source struct {
	client *Client
}

// NewSource creates a news source over a NewsAPI client
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// Search retrieves recent articles matching the search. When a ticker is
// set it is added to the query so results stay scoped to the company.
func (s *Source) Search(ctx context.Context, search interfaces.NewsSearch) ([]*models.NewsArticle, error) {
	query := strings.TrimSpace(search.Query)
	if search.Ticker != "" && !strings.Contains(strings.ToUpper(query), strings.ToUpper(search.Ticker)) {
		if query == "" {
			query = search.Ticker
		} else {
			query = fmt.Sprintf("%s AND %s", query, search.Ticker)
		}
	}
	if query == "" {
		return nil, fmt.Errorf("news search requires a query or ticker")
	}

	daysBack := search.DaysBack
	if daysBack <= 0 {
		daysBack = 7
	}
	maxArticles := search.MaxArticles
	if maxArticles <= 0 {
		maxArticles = DefaultPageSize
	}

	now := time.Now().UTC()
	resp, err := s.client.Everything(ctx, query,
		WithDateRange(now.AddDate(0, 0, -daysBack), now),
		WithPageSize(maxArticles),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: news search '%s': %v", interfaces.ErrSourceUnavailable, query, err)
	}

	articles := make([]*models.NewsArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" {
			continue
		}
		articles = append(articles, &models.NewsArticle{
			ID:          common.ArticleID(a.URL, a.Title, a.Source.Name, a.PublishedAt),
			Title:       a.Title,
			Source:      a.Source.Name,
			URL:         a.URL,
			Description: a.Description,
			Content:     a.Content,
			PublishedAt: a.PublishedAt,
			Ticker:      search.Ticker,
			FetchedAt:   now,
		})
	}

	return articles, nil
}
