package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
)

func newTestService(news *stubNewsSource, analyzer *stubAnalyzer, monitors *memMonitorStorage) *Service {
	config := &common.MonitorConfig{
		Interval:     "24h",
		MinArticles:  5,
		LookbackDays: 1,
		MaxArticles:  10,
	}
	engine := NewEngine(news, monitors, &memAlertStorage{}, analyzer, config, nil, common.GetLogger())
	return NewService(engine, monitors, config, common.GetLogger())
}

func TestStartMonitorAppliesConfigDefaults(t *testing.T) {
	monitors := newMemMonitorStorage()
	service := newTestService(&stubNewsSource{}, &stubAnalyzer{}, monitors)

	state, err := service.StartMonitor(context.Background(), "tsla", "", 0)
	require.NoError(t, err)

	assert.Equal(t, "TSLA", state.Ticker)
	assert.True(t, state.Enabled)
	assert.Equal(t, "24h", state.Interval)
	assert.Equal(t, 5, state.MinArticles)

	stored, err := monitors.GetByTicker(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, state.ID, stored.ID)
}

func TestStartMonitorRejectsInvalidTicker(t *testing.T) {
	monitors := newMemMonitorStorage()
	service := newTestService(&stubNewsSource{}, &stubAnalyzer{}, monitors)

	_, err := service.StartMonitor(context.Background(), "not a ticker", "", 0)
	require.Error(t, err)

	states, err := monitors.List(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestStartMonitorRejectsInvalidInterval(t *testing.T) {
	monitors := newMemMonitorStorage()
	service := newTestService(&stubNewsSource{}, &stubAnalyzer{}, monitors)

	_, err := service.StartMonitor(context.Background(), "TSLA", "daily", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid interval")
}

func TestRestartMonitorKeepsSeenSet(t *testing.T) {
	monitors := newMemMonitorStorage()
	service := newTestService(&stubNewsSource{}, &stubAnalyzer{}, monitors)
	ctx := context.Background()

	state, err := service.StartMonitor(ctx, "TSLA", "1h", 3)
	require.NoError(t, err)

	// simulate a check having recorded articles
	stored, err := monitors.Get(ctx, state.ID)
	require.NoError(t, err)
	stored.MarkSeen([]string{"hash1", "hash2"}, time.Now().UTC())
	require.NoError(t, monitors.Save(ctx, stored))

	require.NoError(t, service.StopMonitor(ctx, "TSLA"))
	disabled, err := monitors.Get(ctx, state.ID)
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)

	restarted, err := service.StartMonitor(ctx, "TSLA", "30m", 0)
	require.NoError(t, err)

	assert.Equal(t, state.ID, restarted.ID)
	assert.True(t, restarted.Enabled)
	assert.Equal(t, "30m", restarted.Interval)
	assert.Len(t, restarted.SeenArticleHashes, 2)
}

func TestStopMonitorUnknownTicker(t *testing.T) {
	monitors := newMemMonitorStorage()
	service := newTestService(&stubNewsSource{}, &stubAnalyzer{}, monitors)

	err := service.StopMonitor(context.Background(), "MSFT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestServiceStartRestoresAndRejectsDoubleStart(t *testing.T) {
	monitors := newMemMonitorStorage()
	ctx := context.Background()

	enabled := models.NewMonitorState(common.NewMonitorID(), "TSLA", "24h", 5)
	require.NoError(t, monitors.Save(ctx, enabled))
	disabled := models.NewMonitorState(common.NewMonitorID(), "AAPL", "24h", 5)
	disabled.Enabled = false
	require.NoError(t, monitors.Save(ctx, disabled))

	service := newTestService(&stubNewsSource{}, &stubAnalyzer{}, monitors)
	require.NoError(t, service.Start(ctx))
	defer service.Stop()

	err := service.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	states, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 2)
}

func TestCheckNowRunsImmediately(t *testing.T) {
	batch := makeArticles("TSLA", "n1", "n2", "n3", "n4", "n5", "n6")
	news := &stubNewsSource{batches: [][]*models.NewsArticle{batch}}
	analyzer := &stubAnalyzer{status: models.JobStatusSucceeded}
	monitors := newMemMonitorStorage()
	service := newTestService(news, analyzer, monitors)
	ctx := context.Background()

	state, err := service.StartMonitor(ctx, "TSLA", "24h", 5)
	require.NoError(t, err)

	alert, err := service.CheckNow(ctx, state.ID)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, "TSLA", alert.Ticker)
	assert.Equal(t, 6, alert.NewArticleCount)
}
