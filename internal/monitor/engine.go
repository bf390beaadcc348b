// Package monitor implements standing ticker monitors: periodic news
// checks with fingerprint deduplication, a material-volume threshold,
// and proactive alerts backed by quick analyses.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
	"github.com/ternarybob/arbor"
)

// QuickAnalyzer is the orchestrator surface a check needs: a reduced-
// budget analysis run to a terminal state.
type QuickAnalyzer interface {
	RunQuickAnalysis(ctx context.Context, ticker string, newsContext string) *models.AnalysisJob
}

// Engine runs monitor checks. Checks for different tickers may run
// concurrently; two checks for the same monitor never do.
type Engine struct {
	news     interfaces.NewsSource
	monitors interfaces.MonitorStorage
	alerts   interfaces.AlertStorage
	analyzer QuickAnalyzer
	config   *common.MonitorConfig
	events   interfaces.EventSink
	logger   arbor.ILogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates the monitor check engine. events may be nil.
func NewEngine(
	news interfaces.NewsSource,
	monitors interfaces.MonitorStorage,
	alerts interfaces.AlertStorage,
	analyzer QuickAnalyzer,
	config *common.MonitorConfig,
	events interfaces.EventSink,
	logger arbor.ILogger,
) *Engine {
	if events == nil {
		events = interfaces.NopEventSink{}
	}
	return &Engine{
		news:     news,
		monitors: monitors,
		alerts:   alerts,
		analyzer: analyzer,
		config:   config,
		events:   events,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Check runs one dedup-and-threshold cycle for a monitor. If a check
// for the same monitor is already in flight, this tick is skipped.
// Returns the alert when the threshold fired and the quick analysis
// succeeded, nil otherwise.
func (e *Engine) Check(ctx context.Context, monitorID string) (*models.Alert, error) {
	lock := e.monitorLock(monitorID)
	if !lock.TryLock() {
		e.logger.Debug().
			Str("monitor_id", monitorID).
			Msg("Previous check still running, skipping tick")
		return nil, nil
	}
	defer lock.Unlock()

	state, err := e.monitors.Get(ctx, monitorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load monitor: %w", err)
	}
	if !state.Enabled {
		return nil, nil
	}

	// Fetch failures abort the check with no state mutation; the
	// monitor stays enabled and retries on the next tick
	articles, err := e.news.Search(ctx, interfaces.NewsSearch{
		Ticker:      state.Ticker,
		DaysBack:    e.config.LookbackDays,
		MaxArticles: e.config.MaxArticles,
	})
	if err != nil {
		e.logger.Warn().
			Str("ticker", state.Ticker).
			Err(err).
			Msg("Monitor news fetch failed, check aborted")
		return nil, err
	}

	now := time.Now().UTC()

	// Partition against the seen set, then record every new
	// fingerprint unconditionally so future runs never re-count them
	var newArticles []*models.NewsArticle
	var newFingerprints []string
	for _, article := range articles {
		fp := article.Fingerprint()
		if _, seen := state.SeenArticleHashes[fp]; !seen {
			newArticles = append(newArticles, article)
			newFingerprints = append(newFingerprints, fp)
		}
	}
	state.MarkSeen(newFingerprints, now)

	state.LastCheckedAt = &now
	state.CheckCount++
	state.UpdatedAt = now

	newCount := len(newArticles)
	e.logger.Debug().
		Str("ticker", state.Ticker).
		Int("fetched", len(articles)).
		Int("new", newCount).
		Int("threshold", state.MinArticles).
		Msg("Monitor check evaluated")

	// Strict greater-than: a count exactly at the minimum does not fire
	if newCount <= state.MinArticles {
		if err := e.monitors.Save(ctx, state); err != nil {
			return nil, fmt.Errorf("failed to persist monitor state: %w", err)
		}
		return nil, nil
	}

	alert := e.raiseAlert(ctx, state, newArticles, now)
	if alert != nil {
		state.LastAlertAt = &now
		state.AlertCount++
	}

	if err := e.monitors.Save(ctx, state); err != nil {
		return alert, fmt.Errorf("failed to persist monitor state: %w", err)
	}

	return alert, nil
}

// raiseAlert runs the quick analysis and persists an alert on success.
// A failed quick analysis is logged and absorbed; the dedup state
// already advanced.
func (e *Engine) raiseAlert(ctx context.Context, state *models.MonitorState, newArticles []*models.NewsArticle, now time.Time) *models.Alert {
	job := e.analyzer.RunQuickAnalysis(ctx, state.Ticker, renderHeadlines(newArticles))

	// Degraded still counts as succeeded; only FAILED is absorbed
	if job.Status != models.JobStatusSucceeded {
		e.logger.Warn().
			Str("ticker", state.Ticker).
			Str("job_id", job.ID).
			Str("cause", job.Error).
			Msg("Quick analysis failed, no alert raised")
		return nil
	}

	alert := &models.Alert{
		ID:              common.NewAlertID(),
		Kind:            models.AlertKindProactive,
		Ticker:          state.Ticker,
		MonitorID:       state.ID,
		JobID:           job.ID,
		NewArticleCount: len(newArticles),
		Summary:         job.Report.Summary,
		SentimentScore:  job.Report.SentimentScore,
		Degraded:        job.Degraded,
		CreatedAt:       now,
	}

	if err := e.alerts.Save(ctx, alert); err != nil {
		e.logger.Error().
			Str("ticker", state.Ticker).
			Err(err).
			Msg("Failed to persist alert")
		return nil
	}

	e.events.AlertCreated(alert)
	e.logger.Info().
		Str("ticker", state.Ticker).
		Str("alert_id", alert.ID).
		Int("new_articles", alert.NewArticleCount).
		Msg("Proactive alert raised")

	return alert
}

func (e *Engine) monitorLock(monitorID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[monitorID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[monitorID] = lock
	}
	return lock
}

func renderHeadlines(articles []*models.NewsArticle) string {
	var b strings.Builder
	for i, a := range articles {
		b.WriteString(fmt.Sprintf("%d. [%s] %s (%s)\n", i+1, a.Source, a.Title, a.PublishedAt.Format("2006-01-02")))
	}
	return b.String()
}
