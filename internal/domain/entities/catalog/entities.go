// Package catalog provides reference-data entities for universities,
// departments and historical placement score records.
package catalog

import "time"

// University is one institution with its known alias surface forms
type University struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	City    string   `json:"city"`
	Aliases []string `json:"aliases"`
}

// Department is one program with its known alias surface forms
type Department struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

// ScoreRecord is one historical placement result for a
// (university, department, score type, year) combination
type ScoreRecord struct {
	ID         string    `json:"id"`
	University string    `json:"university"`
	Department string    `json:"department"`
	ScoreType  string    `json:"scoreType"` // SAY, EA, SÖZ, DİL
	Year       int       `json:"year"`
	MinScore   float64   `json:"minScore"`
	MinRank    int       `json:"minRank"`
	Quota      int       `json:"quota"`
	Imported   time.Time `json:"imported"`
}

// ChatSession is one persisted conversation shell
type ChatSession struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// ChatMessage is one persisted turn, user or bot side
type ChatMessage struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"sessionId"`
	Role       string         `json:"role"` // "user" or "bot"
	Body       string         `json:"body"`
	Intent     string         `json:"intent,omitempty"`
	Entities   map[string]any `json:"entities,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
