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

// MonitorStorage implements the MonitorStorage interface for Badger
type MonitorStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMonitorStorage creates a new MonitorStorage instance
func NewMonitorStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MonitorStorage {
	return &MonitorStorage{
		db:     db,
		logger: logger,
	}
}

func (s *MonitorStorage) Save(ctx context.Context, state *models.MonitorState) error {
	if state.ID == "" {
		return fmt.Errorf("monitor ID is required")
	}
	if err := s.db.Store().Upsert(state.ID, state); err != nil {
		return fmt.Errorf("failed to save monitor: %w", err)
	}
	return nil
}

func (s *MonitorStorage) Get(ctx context.Context, id string) (*models.MonitorState, error) {
	var state models.MonitorState
	if err := s.db.Store().Get(id, &state); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get monitor: %w", err)
	}
	return &state, nil
}

func (s *MonitorStorage) GetByTicker(ctx context.Context, ticker string) (*models.MonitorState, error) {
	var state models.MonitorState
	err := s.db.Store().FindOne(&state, badgerhold.Where("Ticker").Eq(ticker))
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get monitor by ticker: %w", err)
	}
	return &state, nil
}

func (s *MonitorStorage) List(ctx context.Context, enabledOnly bool) ([]*models.MonitorState, error) {
	query := badgerhold.Where("ID").Ne("")
	if enabledOnly {
		query = query.And("Enabled").Eq(true)
	}
	query = query.SortBy("CreatedAt")

	var states []models.MonitorState
	if err := s.db.Store().Find(&states, query); err != nil {
		return nil, fmt.Errorf("failed to list monitors: %w", err)
	}

	result := make([]*models.MonitorState, len(states))
	for i := range states {
		result[i] = &states[i]
	}
	return result, nil
}

func (s *MonitorStorage) Delete(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.MonitorState{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete monitor: %w", err)
	}
	return nil
}
