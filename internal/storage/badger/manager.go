package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	jobs     interfaces.JobStorage
	alerts   interfaces.AlertStorage
	monitors interfaces.MonitorStorage
	articles interfaces.ArticleStorage
	kv       interfaces.KeyValueStorage
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		jobs:     NewJobStorage(db, logger),
		alerts:   NewAlertStorage(db, logger),
		monitors: NewMonitorStorage(db, logger),
		articles: NewArticleStorage(db, logger),
		kv:       NewKVStorage(db, logger),
		logger:   logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// Jobs returns the analysis job storage
func (m *Manager) Jobs() interfaces.JobStorage {
	return m.jobs
}

// Alerts returns the alert storage
func (m *Manager) Alerts() interfaces.AlertStorage {
	return m.alerts
}

// Monitors returns the monitor state storage
func (m *Manager) Monitors() interfaces.MonitorStorage {
	return m.monitors
}

// Articles returns the news article storage
func (m *Manager) Articles() interfaces.ArticleStorage {
	return m.articles
}

// KeyValue returns the key/value storage
func (m *Manager) KeyValue() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
