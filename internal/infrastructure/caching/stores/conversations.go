// Package stores contains the in-memory cache stores backing conversation
// state and reference-data lookups.
package stores

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/convo"
	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
	"github.com/tercihrehberi/tercihbot-go/internal/domain/nlu"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
)

// ConversationStore holds live session contexts in memory. Contexts are
// bounded to a fixed entry window and evicted after the idle TTL by the
// cleanup worker. The clock is injected so expiry is testable.
type ConversationStore struct {
	mu       sync.RWMutex
	sessions map[string]*convo.SessionContext

	normalizer *nlu.Normalizer
	logger     *logging.ChanneledLogger
	nowFn      func() time.Time

	idleTTL     time.Duration
	windowSize  int
	repeatDepth int
}

// ConversationStoreConfig carries the tunables for a conversation store
type ConversationStoreConfig struct {
	IdleTTL     time.Duration
	WindowSize  int
	RepeatDepth int
	Now         func() time.Time
}

// NewConversationStore creates an empty conversation store
func NewConversationStore(cfg ConversationStoreConfig, normalizer *nlu.Normalizer, logger *logging.ChanneledLogger) *ConversationStore {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.WindowSize < 1 {
		cfg.WindowSize = 10
	}
	if cfg.RepeatDepth < 1 {
		cfg.RepeatDepth = 3
	}
	return &ConversationStore{
		sessions:    make(map[string]*convo.SessionContext),
		normalizer:  normalizer,
		logger:      logger,
		nowFn:       cfg.Now,
		idleTTL:     cfg.IdleTTL,
		windowSize:  cfg.WindowSize,
		repeatDepth: cfg.RepeatDepth,
	}
}

// GetOrCreate returns the live context for sessionID, creating a fresh
// one on first contact.
func (s *ConversationStore) GetOrCreate(sessionID, userID string) *convo.SessionContext {
	s.mu.RLock()
	if ctx, exists := s.sessions[sessionID]; exists {
		s.mu.RUnlock()
		return ctx
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx, exists := s.sessions[sessionID]; exists {
		return ctx
	}

	ctx := convo.NewSessionContext(sessionID, userID, s.nowFn())
	s.sessions[sessionID] = ctx

	if s.logger != nil {
		s.logger.Cache().Debug("Session context created",
			slog.String("sessionId", sessionID))
	}
	return ctx
}

// Get returns the context for sessionID without creating one
func (s *ConversationStore) Get(sessionID string) (*convo.SessionContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, exists := s.sessions[sessionID]
	return ctx, exists
}

// AddEntry appends a processed turn to the session, merges its entities
// into the accumulated map last-write-wins, advances the conversation
// state and refreshes the activity timestamp. Entries beyond the window
// size are dropped oldest-first; accumulated entities survive the drop.
func (s *ConversationStore) AddEntry(sessionID string, entry *convo.Entry) {
	ctx := s.GetOrCreate(sessionID, "")

	ctx.Mu.Lock()
	defer ctx.Mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.nowFn()
	}

	ctx.Entries = append(ctx.Entries, entry)
	if len(ctx.Entries) > s.windowSize {
		ctx.Entries = ctx.Entries[len(ctx.Entries)-s.windowSize:]
	}

	mergeEntities(ctx.AccumulatedEntities, entry.Entities)

	satisfied := requiredSatisfied(entry.Intent, ctx.AccumulatedEntities)
	clarifying := entry.Intent == dialogue.IntentClarification
	ctx.State = convo.Next(ctx.State, satisfied, clarifying, len(ctx.Entries))
	ctx.LastActivity = entry.Timestamp

	if s.logger != nil {
		s.logger.Cache().Debug("Session entry recorded",
			slog.String("sessionId", sessionID),
			slog.String("intent", string(entry.Intent)),
			slog.String("state", ctx.State.String()),
			slog.Int("entries", len(ctx.Entries)))
	}
}

// UpdateLatestBotText attaches the rendered reply to the newest entry
func (s *ConversationStore) UpdateLatestBotText(sessionID, botText string) {
	ctx, exists := s.Get(sessionID)
	if !exists {
		return
	}

	ctx.Mu.Lock()
	defer ctx.Mu.Unlock()
	if len(ctx.Entries) > 0 {
		ctx.Entries[len(ctx.Entries)-1].BotText = botText
	}
}

// GetAccumulatedEntities returns a copy of the merged entity map for the
// session, nil-safe for unknown sessions.
func (s *ConversationStore) GetAccumulatedEntities(sessionID string) map[string]any {
	ctx, exists := s.Get(sessionID)
	if !exists {
		return map[string]any{}
	}

	ctx.Mu.Lock()
	defer ctx.Mu.Unlock()
	out := make(map[string]any, len(ctx.AccumulatedEntities))
	for k, v := range ctx.AccumulatedEntities {
		out[k] = v
	}
	return out
}

// HasRequiredEntities reports whether the session has accumulated
// everything the intent needs.
func (s *ConversationStore) HasRequiredEntities(sessionID string, intent dialogue.Intent) bool {
	return requiredSatisfied(intent, s.GetAccumulatedEntities(sessionID))
}

// GetMissingEntities lists the intent requirements the session still
// lacks, in required-table order.
func (s *ConversationStore) GetMissingEntities(sessionID string, intent dialogue.Intent) []dialogue.EntityType {
	accumulated := s.GetAccumulatedEntities(sessionID)
	var missing []dialogue.EntityType
	for _, required := range nlu.RequiredEntities(intent) {
		if !entityPresent(accumulated, required) {
			missing = append(missing, required)
		}
	}
	return missing
}

// IsRepeating reports whether text re-asks one of the recent user turns.
// Comparison is exact equality over normalized forms, so near-miss
// questions that differ in a year or a name stay distinct.
func (s *ConversationStore) IsRepeating(sessionID, text string) bool {
	normalized := s.normalizer.Normalize(text)
	if normalized == "" {
		return false
	}

	for _, previous := range s.RecentUserTexts(sessionID, s.repeatDepth) {
		if s.normalizer.Normalize(previous) == normalized {
			return true
		}
	}
	return false
}

// RecentUserTexts returns up to n most recent user utterances, newest last
func (s *ConversationStore) RecentUserTexts(sessionID string, n int) []string {
	ctx, exists := s.Get(sessionID)
	if !exists || n < 1 {
		return nil
	}

	ctx.Mu.Lock()
	defer ctx.Mu.Unlock()

	start := len(ctx.Entries) - n
	if start < 0 {
		start = 0
	}
	var texts []string
	for _, entry := range ctx.Entries[start:] {
		texts = append(texts, entry.UserText)
	}
	return texts
}

// LastIntent returns the intent of the most recent turn, false when the
// session has no turns yet.
func (s *ConversationStore) LastIntent(sessionID string) (dialogue.Intent, bool) {
	ctx, exists := s.Get(sessionID)
	if !exists {
		return "", false
	}
	ctx.Mu.Lock()
	defer ctx.Mu.Unlock()
	if len(ctx.Entries) == 0 {
		return "", false
	}
	return ctx.Entries[len(ctx.Entries)-1].Intent, true
}

// GetState returns the current conversation state for the session
func (s *ConversationStore) GetState(sessionID string) convo.State {
	ctx, exists := s.Get(sessionID)
	if !exists {
		return convo.StateInitial
	}
	ctx.Mu.Lock()
	defer ctx.Mu.Unlock()
	return ctx.State
}

// Clear removes one session context
func (s *ConversationStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Count returns the number of live session contexts
func (s *ConversationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SweepExpired evicts sessions idle longer than the TTL and returns how
// many were removed.
func (s *ConversationStore) SweepExpired() int {
	now := s.nowFn()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, ctx := range s.sessions {
		ctx.Mu.Lock()
		expired := now.Sub(ctx.LastActivity) > s.idleTTL
		ctx.Mu.Unlock()

		if expired {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 && s.logger != nil {
		s.logger.Cache().Info("Expired sessions evicted",
			slog.Int("removed", removed),
			slog.Int("remaining", len(s.sessions)))
	}
	return removed
}

// mergeEntities folds incoming entity values into the accumulated map.
// Later turns win on conflict; nil and empty-string values never
// overwrite something already known.
func mergeEntities(accumulated, incoming map[string]any) {
	for key, value := range incoming {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		accumulated[key] = value
	}
}

func requiredSatisfied(intent dialogue.Intent, entities map[string]any) bool {
	for _, required := range nlu.RequiredEntities(intent) {
		if !entityPresent(entities, required) {
			return false
		}
	}
	return true
}

func entityPresent(entities map[string]any, t dialogue.EntityType) bool {
	v, ok := entities[string(t)]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && s == "" {
		return false
	}
	return true
}
