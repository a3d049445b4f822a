// Package convo provides domain entities for multi-turn conversation state:
// per-session context entries, accumulated entities and the conversation
// progress state machine.
package convo

import (
	"sync"
	"time"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
)

// State is the coarse progress marker of a conversation
type State int

const (
	StateInitial State = iota
	StateGathering
	StateProcessing
	StateCompleted
)

var stateNames = map[State]string{
	StateInitial:    "initial",
	StateGathering:  "gathering_info",
	StateProcessing: "processing",
	StateCompleted:  "completed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Next computes the follow-on conversation state. Transitions only move
// forward: a session that reached a later state never regresses to an
// earlier one regardless of what later turns look like.
func Next(current State, requiredSatisfied bool, clarifying bool, entryCount int) State {
	next := current
	if current == StateInitial && entryCount > 0 {
		next = StateGathering
	}
	if requiredSatisfied && !clarifying && next < StateProcessing {
		next = StateProcessing
	}
	// Single-turn sessions stay in processing so a lone complete answer
	// is not marked done prematurely.
	if requiredSatisfied && entryCount > 1 && next < StateCompleted {
		next = StateCompleted
	}
	if next < current {
		return current
	}
	return next
}

// Entry records one processed turn inside a session. Entries are immutable
// once appended except for BotText, which arrives after classification.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Intent    dialogue.Intent `json:"intent"`
	Entities  map[string]any  `json:"entities"`
	UserText  string          `json:"userText"`
	BotText   string          `json:"botText,omitempty"`
}

// SessionContext is the accumulated, time-bounded state of one conversation.
// Owned exclusively by the conversation store; Mu serializes turns that hit
// the same session concurrently.
type SessionContext struct {
	SessionID           string         `json:"sessionId"`
	UserID              string         `json:"userId"`
	Entries             []*Entry       `json:"entries"`
	AccumulatedEntities map[string]any `json:"accumulatedEntities"`
	State               State          `json:"state"`
	CreatedAt           time.Time      `json:"createdAt"`
	LastActivity        time.Time      `json:"lastActivity"`
	Mu                  sync.Mutex     `json:"-"`
}

// NewSessionContext creates a fresh session context record
func NewSessionContext(sessionID, userID string, now time.Time) *SessionContext {
	return &SessionContext{
		SessionID:           sessionID,
		UserID:              userID,
		Entries:             make([]*Entry, 0, 8),
		AccumulatedEntities: make(map[string]any),
		State:               StateInitial,
		CreatedAt:           now,
		LastActivity:        now,
	}
}
