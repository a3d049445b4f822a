// Package manager aggregates the in-memory cache stores behind a single
// dependency handed to services and the cleanup worker.
package manager

import (
	"time"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/nlu"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/stores"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/pkg/config"
)

// Manager owns the conversation and catalog stores
type Manager struct {
	conversations *stores.ConversationStore
	catalog       *stores.CatalogStore
}

// NewManager wires the stores from package config defaults
func NewManager(normalizer *nlu.Normalizer, logger *logging.ChanneledLogger) *Manager {
	return &Manager{
		conversations: stores.NewConversationStore(stores.ConversationStoreConfig{
			IdleTTL:     config.SessionIdleTTL,
			WindowSize:  config.ContextWindowSize,
			RepeatDepth: config.RepeatDetectionDepth,
		}, normalizer, logger),
		catalog: stores.NewCatalogStore(config.CatalogCacheTTL, nil, logger),
	}
}

// NewManagerWithClock builds a manager on an injected clock for tests
func NewManagerWithClock(normalizer *nlu.Normalizer, logger *logging.ChanneledLogger, now func() time.Time) *Manager {
	return &Manager{
		conversations: stores.NewConversationStore(stores.ConversationStoreConfig{
			IdleTTL:     config.SessionIdleTTL,
			WindowSize:  config.ContextWindowSize,
			RepeatDepth: config.RepeatDetectionDepth,
			Now:         now,
		}, normalizer, logger),
		catalog: stores.NewCatalogStore(config.CatalogCacheTTL, now, logger),
	}
}

// Conversations returns the conversation context store
func (m *Manager) Conversations() *stores.ConversationStore {
	return m.conversations
}

// Catalog returns the reference-data cache
func (m *Manager) Catalog() *stores.CatalogStore {
	return m.catalog
}

// Stats summarizes cache occupancy for the health endpoint
type Stats struct {
	LiveSessions int `json:"liveSessions"`
}

// GetStats reports cache occupancy
func (m *Manager) GetStats() Stats {
	return Stats{LiveSessions: m.conversations.Count()}
}
