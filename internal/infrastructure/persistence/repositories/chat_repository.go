package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/catalog"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/database"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/security"
)

// ChatRepository persists conversation shells and individual turns
type ChatRepository struct {
	db     *database.Database
	logger *logging.ChanneledLogger
}

func NewChatRepository(db *database.Database, logger *logging.ChanneledLogger) *ChatRepository {
	return &ChatRepository{db: db, logger: logger}
}

// CreateSession persists a new conversation shell
func (r *ChatRepository) CreateSession(ctx context.Context, userID string) (*catalog.ChatSession, error) {
	session := &catalog.ChatSession{
		ID:           security.GenerateSessionID(),
		UserID:       userID,
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_sessions (id, user_id, created_at, last_activity)
		VALUES (?, ?, ?, ?)`,
		session.ID, session.UserID, session.CreatedAt, session.LastActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return session, nil
}

// EnsureSession creates the conversation shell when the caller supplies
// its own session ID, as the websocket transport does.
func (r *ChatRepository) EnsureSession(ctx context.Context, sessionID, userID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_sessions (id, user_id, created_at, last_activity)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		sessionID, userID, time.Now(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to ensure chat session: %w", err)
	}
	return nil
}

// GetSession loads a conversation shell, nil when unknown
func (r *ChatRepository) GetSession(ctx context.Context, sessionID string) (*catalog.ChatSession, error) {
	var session catalog.ChatSession
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, created_at, last_activity
		FROM chat_sessions WHERE id = ?`, sessionID).Scan(
		&session.ID, &session.UserID, &session.CreatedAt, &session.LastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chat session: %w", err)
	}
	return &session, nil
}

// TouchSession bumps the session activity timestamp
func (r *ChatRepository) TouchSession(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE chat_sessions SET last_activity = ? WHERE id = ?`,
		time.Now(), sessionID)
	return err
}

// SaveMessage persists one turn. The entities map is stored as JSON.
func (r *ChatRepository) SaveMessage(ctx context.Context, msg *catalog.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = security.GenerateULID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	entities := "{}"
	if len(msg.Entities) > 0 {
		encoded, err := json.Marshal(msg.Entities)
		if err != nil {
			return fmt.Errorf("failed to encode message entities: %w", err)
		}
		entities = string(encoded)
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_messages (id, session_id, role, body, intent, entities, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.Role, msg.Body, msg.Intent, entities, msg.Confidence, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

// GetMessages returns the most recent turns of a session in
// chronological order, capped at limit.
func (r *ChatRepository) GetMessages(ctx context.Context, sessionID string, limit int) ([]*catalog.ChatMessage, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, role, body, intent, entities, confidence, created_at
		FROM (
			SELECT * FROM chat_messages
			WHERE session_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		)
		ORDER BY created_at ASC`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*catalog.ChatMessage
	for rows.Next() {
		var msg catalog.ChatMessage
		var entities string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Body,
			&msg.Intent, &entities, &msg.Confidence, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		if entities != "" && entities != "{}" {
			if err := json.Unmarshal([]byte(entities), &msg.Entities); err != nil {
				return nil, fmt.Errorf("failed to decode message entities: %w", err)
			}
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}
