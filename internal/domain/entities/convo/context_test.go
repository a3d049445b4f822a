package convo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextTransitions(t *testing.T) {
	tests := []struct {
		name              string
		current           State
		requiredSatisfied bool
		clarifying        bool
		entryCount        int
		expected          State
	}{
		{"first turn starts gathering", StateInitial, false, true, 1, StateGathering},
		{"no entries stays initial", StateInitial, false, false, 0, StateInitial},
		{"satisfied single turn reaches processing", StateInitial, true, false, 1, StateProcessing},
		{"satisfied multi turn completes", StateGathering, true, false, 2, StateCompleted},
		{"clarifying blocks processing", StateGathering, false, true, 2, StateGathering},
		{"completed never regresses", StateCompleted, false, true, 3, StateCompleted},
		{"processing holds without satisfaction", StateProcessing, false, false, 3, StateProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Next(tt.current, tt.requiredSatisfied, tt.clarifying, tt.entryCount))
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "initial", StateInitial.String())
	assert.Equal(t, "gathering_info", StateGathering.String())
	assert.Equal(t, "processing", StateProcessing.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestNewSessionContext(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sc := NewSessionContext("sess_1", "u1", now)

	assert.Equal(t, "sess_1", sc.SessionID)
	assert.Equal(t, StateInitial, sc.State)
	assert.Equal(t, now, sc.CreatedAt)
	assert.Equal(t, now, sc.LastActivity)
	assert.Empty(t, sc.Entries)
	assert.NotNil(t, sc.AccumulatedEntities)
}
