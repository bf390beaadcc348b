package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	manager, err := NewManager(common.GetLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	return manager
}

func TestJobStorageRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	job := models.NewAnalysisJob("job_1", "Analyze Tesla outlook")
	job.Ticker = "TSLA"
	job.Steps = []models.ReasoningStep{
		{Index: 0, Phase: models.PhaseThink, Content: "I should fetch recent news"},
		{Index: 1, Phase: models.PhaseAct, ToolName: "news_search"},
	}
	require.NoError(t, manager.Jobs().Save(ctx, job))

	loaded, err := manager.Jobs().Get(ctx, "job_1")
	require.NoError(t, err)
	assert.Equal(t, "Analyze Tesla outlook", loaded.Query)
	assert.Equal(t, models.JobStatusPending, loaded.Status)
	require.Len(t, loaded.Steps, 2)
	assert.Equal(t, "news_search", loaded.Steps[1].ToolName)

	// Update is an upsert on the same key
	loaded.Status = models.JobStatusSucceeded
	require.NoError(t, manager.Jobs().Save(ctx, loaded))
	reloaded, err := manager.Jobs().Get(ctx, "job_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSucceeded, reloaded.Status)

	require.NoError(t, manager.Jobs().Delete(ctx, "job_1"))
	_, err = manager.Jobs().Get(ctx, "job_1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestJobStorageListFilters(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	statuses := []models.JobStatus{
		models.JobStatusSucceeded,
		models.JobStatusFailed,
		models.JobStatusSucceeded,
		models.JobStatusRunning,
	}
	for i, status := range statuses {
		job := models.NewAnalysisJob(common.NewJobID(), "query")
		job.Status = status
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, manager.Jobs().Save(ctx, job))
	}

	all, err := manager.Jobs().List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	// Newest first
	assert.Equal(t, models.JobStatusRunning, all[0].Status)

	succeeded, err := manager.Jobs().List(ctx, models.JobStatusSucceeded, 0)
	require.NoError(t, err)
	assert.Len(t, succeeded, 2)

	limited, err := manager.Jobs().List(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMonitorStorageSeenHashesSurviveRestartShape(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	state := models.NewMonitorState("mon_1", "TSLA", "24h", 5)
	state.MarkSeen([]string{"hash-a", "hash-b"}, time.Now().UTC())
	require.NoError(t, manager.Monitors().Save(ctx, state))

	loaded, err := manager.Monitors().Get(ctx, "mon_1")
	require.NoError(t, err)
	assert.Len(t, loaded.SeenArticleHashes, 2)
	assert.Contains(t, loaded.SeenArticleHashes, "hash-a")

	byTicker, err := manager.Monitors().GetByTicker(ctx, "TSLA")
	require.NoError(t, err)
	assert.Equal(t, "mon_1", byTicker.ID)

	_, err = manager.Monitors().GetByTicker(ctx, "NVDA")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestMonitorStorageListEnabledOnly(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	enabled := models.NewMonitorState("mon_on", "TSLA", "24h", 5)
	disabled := models.NewMonitorState("mon_off", "NVDA", "24h", 5)
	disabled.Enabled = false
	require.NoError(t, manager.Monitors().Save(ctx, enabled))
	require.NoError(t, manager.Monitors().Save(ctx, disabled))

	all, err := manager.Monitors().List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := manager.Monitors().List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "mon_on", active[0].ID)
}

func TestAlertStorageListByTicker(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	tickers := []string{"TSLA", "NVDA", "TSLA"}
	for i, ticker := range tickers {
		alert := &models.Alert{
			ID:              common.NewAlertID(),
			Kind:            models.AlertKindProactive,
			Ticker:          ticker,
			NewArticleCount: i + 1,
			Summary:         "elevated news volume",
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, manager.Alerts().Save(ctx, alert))
	}

	tsla, err := manager.Alerts().List(ctx, "TSLA", 0)
	require.NoError(t, err)
	require.Len(t, tsla, 2)
	// Newest first
	assert.Equal(t, 3, tsla[0].NewArticleCount)

	all, err := manager.Alerts().List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestArticleStorageBatchAndListByTicker(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 27, 6, 0, 0, 0, time.UTC)
	articles := []*models.NewsArticle{
		{ID: "art_1", Title: "Tesla beats estimates", Source: "Reuters", Ticker: "TSLA", PublishedAt: base},
		{ID: "art_2", Title: "Tesla recall widens", Source: "Bloomberg", Ticker: "TSLA", PublishedAt: base.Add(2 * time.Hour)},
		{ID: "art_3", Title: "Nvidia ships new chip", Source: "Reuters", Ticker: "NVDA", PublishedAt: base.Add(time.Hour)},
	}
	require.NoError(t, manager.Articles().SaveBatch(ctx, articles))

	tsla, err := manager.Articles().ListByTicker(ctx, "TSLA", 0)
	require.NoError(t, err)
	require.Len(t, tsla, 2)
	// Most recent publication first
	assert.Equal(t, "art_2", tsla[0].ID)

	loaded, err := manager.Articles().Get(ctx, "art_3")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", loaded.Ticker)

	// Re-saving the same batch upserts by ID rather than duplicating
	require.NoError(t, manager.Articles().SaveBatch(ctx, articles))
	tsla, err = manager.Articles().ListByTicker(ctx, "TSLA", 0)
	require.NoError(t, err)
	assert.Len(t, tsla, 2)
}

func TestKVStorageCaseInsensitiveKeys(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, manager.KeyValue().Set(ctx, "NEWSAPI_API_KEY", "secret-1"))

	value, err := manager.KeyValue().Get(ctx, "newsapi_api_key")
	require.NoError(t, err)
	assert.Equal(t, "secret-1", value)

	// Overwrite through a differently-cased key
	require.NoError(t, manager.KeyValue().Set(ctx, "NewsAPI_API_Key", "secret-2"))
	value, err = manager.KeyValue().Get(ctx, "NEWSAPI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "secret-2", value)

	require.NoError(t, manager.KeyValue().Delete(ctx, "newsapi_api_key"))
	_, err = manager.KeyValue().Get(ctx, "newsapi_api_key")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}
