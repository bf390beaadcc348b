package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/airalabs/aira/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// ToolNameNewsSearch is the registry name of the news search tool
const ToolNameNewsSearch = "news_search"

// NewsSearchTool retrieves recent news articles for a query or ticker.
// Fetched articles are persisted so monitors and later analyses can
// reuse them.
type NewsSearchTool struct {
	source   interfaces.NewsSource
	articles interfaces.ArticleStorage
	logger   arbor.ILogger

	defaultDaysBack    int
	defaultMaxArticles int
}

// NewNewsSearchTool creates the news search tool. articleStorage may be
// nil when persistence is not wanted (tests).
func NewNewsSearchTool(source interfaces.NewsSource, articleStorage interfaces.ArticleStorage, daysBack, maxArticles int, logger arbor.ILogger) *NewsSearchTool {
	if daysBack <= 0 {
		daysBack = 7
	}
	if maxArticles <= 0 {
		maxArticles = 5
	}
	return &NewsSearchTool{
		source:             source,
		articles:           articleStorage,
		logger:             logger,
		defaultDaysBack:    daysBack,
		defaultMaxArticles: maxArticles,
	}
}

func (t *NewsSearchTool) Name() string {
	return ToolNameNewsSearch
}

func (t *NewsSearchTool) Description() string {
	return "Search recent news articles about a company or topic. Returns headlines with source, date, and description."
}

func (t *NewsSearchTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Free-text search query, e.g. a company name",
			},
			"ticker": map[string]interface{}{
				"type":        "string",
				"description": "Optional stock ticker to scope the search, e.g. TSLA",
			},
			"days_back": map[string]interface{}{
				"type":        "integer",
				"description": "How many days of news to include",
			},
			"max_articles": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of articles to return",
			},
		},
		"required": []string{"query"},
	}
}

func (t *NewsSearchTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	search := interfaces.NewsSearch{
		Query:       stringArg(args, "query"),
		Ticker:      stringArg(args, "ticker"),
		DaysBack:    intArg(args, "days_back", t.defaultDaysBack),
		MaxArticles: intArg(args, "max_articles", t.defaultMaxArticles),
	}

	articles, err := t.source.Search(ctx, search)
	if err != nil {
		return "", fmt.Errorf("news search failed: %w", err)
	}

	if len(articles) == 0 {
		return "No recent news articles found.", nil
	}

	if t.articles != nil {
		if err := t.articles.SaveBatch(ctx, articles); err != nil {
			t.logger.Warn().Err(err).Msg("Failed to persist fetched articles")
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Found %d recent articles:\n", len(articles)))
	for i, a := range articles {
		b.WriteString(fmt.Sprintf("%d. [%s] %s (%s)\n", i+1, a.Source, a.Title, a.PublishedAt.Format("2006-01-02")))
		if a.Description != "" {
			b.WriteString("   " + a.Description + "\n")
		}
	}

	return b.String(), nil
}

func stringArg(args map[string]interface{}, name string) string {
	if v, ok := args[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intArg(args map[string]interface{}, name string, fallback int) int {
	switch v := args[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}
