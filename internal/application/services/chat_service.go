package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/catalog"
	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/manager"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/performance"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/repositories"
)

// ChatReply is the transport-facing outcome of one handled message
type ChatReply struct {
	SessionID string           `json:"sessionId"`
	Reply     string           `json:"reply"`
	Result    *dialogue.Result `json:"result"`
}

// ChatService glues the dialogue engine to persistence: it owns session
// lifecycle, stores both sides of every turn and renders the Turkish
// reply text.
type ChatService struct {
	dialogue *DialogueService
	score    *ScoreService
	chats    *repositories.ChatRepository
	cache    *manager.Manager
	logger   *logging.ChanneledLogger
	perf     *performance.Tracker
}

func NewChatService(
	dialogueService *DialogueService,
	scoreService *ScoreService,
	chats *repositories.ChatRepository,
	cache *manager.Manager,
	logger *logging.ChanneledLogger,
	perf *performance.Tracker,
) *ChatService {
	return &ChatService{
		dialogue: dialogueService,
		score:    scoreService,
		chats:    chats,
		cache:    cache,
		logger:   logger,
		perf:     perf,
	}
}

// HandleMessage processes one user message end to end and returns the
// rendered reply. An empty sessionID starts a new conversation.
func (s *ChatService) HandleMessage(ctx context.Context, sessionID, userID, text string) (*ChatReply, error) {
	marker := s.perf.StartOperation("chat:handle_message")
	defer marker.Complete()

	if sessionID == "" {
		session, err := s.chats.CreateSession(ctx, userID)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}
		sessionID = session.ID
	} else if err := s.chats.EnsureSession(ctx, sessionID, userID); err != nil {
		marker.SetError(err)
		return nil, err
	}

	if err := s.chats.SaveMessage(ctx, &catalog.ChatMessage{
		SessionID: sessionID,
		Role:      "user",
		Body:      text,
	}); err != nil {
		marker.SetError(err)
		return nil, err
	}

	result, err := s.dialogue.ProcessTurn(ctx, sessionID, userID, text, nil)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	reply := s.renderReply(ctx, result)

	if err := s.chats.SaveMessage(ctx, &catalog.ChatMessage{
		SessionID:  sessionID,
		Role:       "bot",
		Body:       reply,
		Intent:     string(result.Intent),
		Entities:   result.Entities,
		Confidence: result.Confidence,
	}); err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.cache.Conversations().UpdateLatestBotText(sessionID, reply)
	if err := s.chats.TouchSession(ctx, sessionID); err != nil {
		s.logger.Chat().Warn("Failed to touch session",
			slog.String("sessionId", sessionID), slog.Any("error", err))
	}

	marker.SetSuccess(true)
	return &ChatReply{SessionID: sessionID, Reply: reply, Result: result}, nil
}

// History returns the persisted transcript of a session
func (s *ChatService) History(ctx context.Context, sessionID string, limit int) ([]*catalog.ChatMessage, error) {
	session, err := s.chats.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}
	return s.chats.GetMessages(ctx, sessionID, limit)
}
