// Package performance provides performance tracking for TercihBot operations.
package performance

import (
	"sync"
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation string         `json:"operation"` // e.g., "chat:process_turn", "import:run"
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Completed bool           `json:"completed"`
}

// Complete marks the operation as finished and calculates final metrics
func (m *Marker) Complete() {
	if m.Completed {
		return // Prevent double completion
	}

	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// Tracker manages performance markers and provides aggregate statistics
type Tracker struct {
	markers    []*Marker
	maxMarkers int
	started    time.Time
	mu         sync.RWMutex
}

// NewTracker creates a new performance tracker
func NewTracker() *Tracker {
	return &Tracker{
		markers:    make([]*Marker, 0, 256),
		maxMarkers: 10000,
		started:    time.Now(),
	}
}

// StartOperation begins tracking a new operation and returns its marker
func (t *Tracker) StartOperation(operation string) *Marker {
	marker := &Marker{
		Operation: operation,
		StartTime: time.Now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.markers = append(t.markers, marker)
	if len(t.markers) > t.maxMarkers {
		// Drop the oldest half rather than shifting one at a time
		t.markers = append(t.markers[:0], t.markers[len(t.markers)/2:]...)
	}

	return marker
}

// Stats summarizes tracked operations
type Stats struct {
	Uptime              time.Duration `json:"uptime"`
	TotalOperations     int           `json:"totalOperations"`
	CompletedOperations int           `json:"completedOperations"`
	FailedOperations    int           `json:"failedOperations"`
	AverageDuration     time.Duration `json:"averageDuration"`
}

// GetStats returns aggregate statistics over retained markers
func (t *Tracker) GetStats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := Stats{
		Uptime:          time.Since(t.started),
		TotalOperations: len(t.markers),
	}

	var totalDuration time.Duration
	for _, m := range t.markers {
		if !m.Completed {
			continue
		}
		stats.CompletedOperations++
		totalDuration += m.Duration
		if !m.Success {
			stats.FailedOperations++
		}
	}

	if stats.CompletedOperations > 0 {
		stats.AverageDuration = totalDuration / time.Duration(stats.CompletedOperations)
	}

	return stats
}
