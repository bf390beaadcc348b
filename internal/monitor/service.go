package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Service owns the monitor lifecycle: start/stop per ticker, cron
// scheduling, and restore of enabled monitors at boot.
type Service struct {
	engine   *Engine
	monitors interfaces.MonitorStorage
	config   *common.MonitorConfig
	cron     *cron.Cron
	logger   arbor.ILogger

	mu      sync.Mutex
	entries map[string]cron.EntryID
	running bool
}

// NewService creates the monitor service
func NewService(engine *Engine, monitors interfaces.MonitorStorage, config *common.MonitorConfig, logger arbor.ILogger) *Service {
	return &Service{
		engine:   engine,
		monitors: monitors,
		config:   config,
		cron:     cron.New(),
		logger:   logger,
		entries:  make(map[string]cron.EntryID),
	}
}

// Start restores enabled monitors from storage, schedules them, and
// starts the cron runner.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("monitor service already running")
	}

	states, err := s.monitors.List(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to load monitors: %w", err)
	}

	for _, state := range states {
		if err := s.scheduleLocked(state); err != nil {
			s.logger.Warn().
				Str("ticker", state.Ticker).
				Err(err).
				Msg("Failed to restore monitor schedule")
		}
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Int("restored", len(states)).
		Msg("Monitor service started")

	return nil
}

// Stop halts the cron runner and waits for in-flight checks
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info().Msg("Monitor service stopped")
}

// StartMonitor creates (or re-enables) a monitor for a ticker and
// schedules its checks. The seen set of a re-enabled monitor is kept.
func (s *Service) StartMonitor(ctx context.Context, ticker, interval string, minArticles int) (*models.MonitorState, error) {
	parsed := common.ParseTicker(ticker)
	if !parsed.IsValid() {
		return nil, fmt.Errorf("invalid ticker '%s'", ticker)
	}
	canonical := parsed.Code

	if interval == "" {
		interval = s.config.Interval
	}
	if _, err := time.ParseDuration(interval); err != nil {
		return nil, fmt.Errorf("invalid interval '%s': %w", interval, err)
	}
	if minArticles <= 0 {
		minArticles = s.config.MinArticles
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.monitors.GetByTicker(ctx, canonical)
	if err == nil && state != nil {
		state.Enabled = true
		state.Interval = interval
		state.MinArticles = minArticles
		state.UpdatedAt = time.Now().UTC()
	} else {
		state = models.NewMonitorState(common.NewMonitorID(), canonical, interval, minArticles)
	}

	if err := s.monitors.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to persist monitor: %w", err)
	}

	if err := s.scheduleLocked(state); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("ticker", canonical).
		Str("interval", interval).
		Int("min_articles", minArticles).
		Msg("Monitor started")

	return state, nil
}

// StopMonitor disables a ticker's monitor and removes its schedule.
// The monitor record and its seen set are kept for a later restart.
func (s *Service) StopMonitor(ctx context.Context, ticker string) error {
	canonical := common.ParseTicker(ticker).Code

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.monitors.GetByTicker(ctx, canonical)
	if err != nil {
		return fmt.Errorf("monitor for '%s' not found: %w", canonical, err)
	}

	state.Enabled = false
	state.UpdatedAt = time.Now().UTC()
	if err := s.monitors.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to persist monitor: %w", err)
	}

	if entryID, ok := s.entries[state.ID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, state.ID)
	}

	s.logger.Info().Str("ticker", canonical).Msg("Monitor stopped")
	return nil
}

// List returns all monitors, enabled or not
func (s *Service) List(ctx context.Context) ([]*models.MonitorState, error) {
	return s.monitors.List(ctx, false)
}

// CheckNow runs a check immediately, outside the schedule
func (s *Service) CheckNow(ctx context.Context, monitorID string) (*models.Alert, error) {
	return s.engine.Check(ctx, monitorID)
}

// scheduleLocked registers the monitor's cron entry. Caller holds s.mu.
func (s *Service) scheduleLocked(state *models.MonitorState) error {
	if entryID, ok := s.entries[state.ID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, state.ID)
	}

	monitorID := state.ID
	entryID, err := s.cron.AddFunc("@every "+state.Interval, func() {
		if _, err := s.engine.Check(context.Background(), monitorID); err != nil {
			s.logger.Warn().
				Str("monitor_id", monitorID).
				Err(err).
				Msg("Scheduled monitor check failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule monitor: %w", err)
	}

	s.entries[state.ID] = entryID
	return nil
}
