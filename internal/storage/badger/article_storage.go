package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
)

// ArticleStorage implements the ArticleStorage interface for Badger
type ArticleStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewArticleStorage creates a new ArticleStorage instance
func NewArticleStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ArticleStorage {
	return &ArticleStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ArticleStorage) Save(ctx context.Context, article *models.NewsArticle) error {
	if article.ID == "" {
		return fmt.Errorf("article ID is required")
	}
	if err := s.db.Store().Upsert(article.ID, article); err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}
	return nil
}

func (s *ArticleStorage) SaveBatch(ctx context.Context, articles []*models.NewsArticle) error {
	for _, article := range articles {
		if err := s.Save(ctx, article); err != nil {
			return err
		}
	}
	return nil
}

func (s *ArticleStorage) Get(ctx context.Context, id string) (*models.NewsArticle, error) {
	var article models.NewsArticle
	if err := s.db.Store().Get(id, &article); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

func (s *ArticleStorage) ListByTicker(ctx context.Context, ticker string, limit int) ([]*models.NewsArticle, error) {
	query := badgerhold.Where("Ticker").Eq(ticker).SortBy("PublishedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var articles []models.NewsArticle
	if err := s.db.Store().Find(&articles, query); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	result := make([]*models.NewsArticle, len(articles))
	for i := range articles {
		result[i] = &articles[i]
	}
	return result, nil
}

func (s *ArticleStorage) Delete(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.NewsArticle{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}
