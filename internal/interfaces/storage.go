package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/airalabs/aira/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrKeyNotFound is returned when a key/value lookup misses.
var ErrKeyNotFound = errors.New("key not found")

// KeyValuePair is a persisted setting
type KeyValuePair struct {
	Key       string `badgerhold:"key"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JobStorage persists analysis jobs
type JobStorage interface {
	Save(ctx context.Context, job *models.AnalysisJob) error
	Get(ctx context.Context, id string) (*models.AnalysisJob, error)
	List(ctx context.Context, status models.JobStatus, limit int) ([]*models.AnalysisJob, error)
	Delete(ctx context.Context, id string) error
}

// AlertStorage persists monitor alerts
type AlertStorage interface {
	Save(ctx context.Context, alert *models.Alert) error
	Get(ctx context.Context, id string) (*models.Alert, error)
	List(ctx context.Context, ticker string, limit int) ([]*models.Alert, error)
	Delete(ctx context.Context, id string) error
}

// MonitorStorage persists monitor state
type MonitorStorage interface {
	Save(ctx context.Context, state *models.MonitorState) error
	Get(ctx context.Context, id string) (*models.MonitorState, error)
	GetByTicker(ctx context.Context, ticker string) (*models.MonitorState, error)
	List(ctx context.Context, enabledOnly bool) ([]*models.MonitorState, error)
	Delete(ctx context.Context, id string) error
}

// ArticleStorage persists fetched news articles
type ArticleStorage interface {
	Save(ctx context.Context, article *models.NewsArticle) error
	SaveBatch(ctx context.Context, articles []*models.NewsArticle) error
	Get(ctx context.Context, id string) (*models.NewsArticle, error)
	ListByTicker(ctx context.Context, ticker string, limit int) ([]*models.NewsArticle, error)
	Delete(ctx context.Context, id string) error
}

// KeyValueStorage provides simple persisted settings
type KeyValueStorage interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// StorageManager provides access to all storage services over one
// underlying database connection.
type StorageManager interface {
	Jobs() JobStorage
	Alerts() AlertStorage
	Monitors() MonitorStorage
	Articles() ArticleStorage
	KeyValue() KeyValueStorage
	Close() error
}
