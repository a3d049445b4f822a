package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/nlu"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/manager"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/performance"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/database"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/repositories"
	"github.com/tercihrehberi/tercihbot-go/pkg/config"
)

func newChatService(t *testing.T) *ChatService {
	t.Helper()

	config.DBDriver = "sqlite3"
	config.DBPath = filepath.Join(t.TempDir(), "chat.db")

	logger := newTestLogger(t)
	db, err := database.NewDatabase(logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.CreateTables(ctx))

	normalizer := nlu.NewNormalizer()
	cache := manager.NewManager(normalizer, logger)
	perf := performance.NewTracker()

	universities := repositories.NewUniversityRepository(db, cache.Catalog(), logger)
	departments := repositories.NewDepartmentRepository(db, cache.Catalog(), logger)
	scores := repositories.NewScoreRepository(db, cache.Catalog(), logger)
	chats := repositories.NewChatRepository(db, logger)
	require.NoError(t, repositories.NewSeeder(universities, departments, scores, logger).SeedIfEmpty(ctx))

	dialogueService := NewDialogueService(
		normalizer, nlu.NewRegistry(normalizer), nlu.NewClassifier(), nlu.NewGenerator(4),
		cache, logger, perf,
	)
	scoreService := NewScoreService(scores, logger)
	return NewChatService(dialogueService, scoreService, chats, cache, logger, perf)
}

func TestHandleMessageGreeting(t *testing.T) {
	svc := newChatService(t)

	reply, err := svc.HandleMessage(context.Background(), "", "u1", "Merhaba!")
	require.NoError(t, err)

	assert.NotEmpty(t, reply.SessionID)
	assert.Contains(t, reply.Reply, "Merhaba")
	assert.False(t, reply.Result.ClarificationNeeded)
}

func TestHandleMessageScoreQuery(t *testing.T) {
	svc := newChatService(t)

	reply, err := svc.HandleMessage(context.Background(), "", "u1",
		"Marmara Üniversitesi Bilgisayar Mühendisliği taban puanı nedir?")
	require.NoError(t, err)

	assert.Contains(t, reply.Reply, "Marmara Üniversitesi")
	assert.Contains(t, reply.Reply, "488,70")
	assert.Contains(t, reply.Reply, "2025")
}

func TestHandleMessageNetCalculation(t *testing.T) {
	svc := newChatService(t)

	reply, err := svc.HandleMessage(context.Background(), "", "u1",
		"Marmara Üniversitesi Bilgisayar Mühendisliği için kaç net gerekir?")
	require.NoError(t, err)

	assert.Contains(t, reply.Reply, "97 net")
}

func TestHandleMessageClarificationThenAnswer(t *testing.T) {
	svc := newChatService(t)
	ctx := context.Background()

	first, err := svc.HandleMessage(ctx, "", "u1", "Bilgisayar mühendisliği taban puanı kaç?")
	require.NoError(t, err)
	assert.True(t, first.Result.ClarificationNeeded)
	assert.Equal(t, "Hangi üniversitenin taban puanını öğrenmek istiyorsunuz?", first.Reply)

	second, err := svc.HandleMessage(ctx, first.SessionID, "u1", "Marmara Üniversitesi")
	require.NoError(t, err)
	assert.False(t, second.Result.ClarificationNeeded)
	assert.Contains(t, second.Reply, "488,70")
}

func TestHandleMessageUnknownPlacement(t *testing.T) {
	svc := newChatService(t)

	reply, err := svc.HandleMessage(context.Background(), "", "u1",
		"Ege Üniversitesi Uzay Mühendisliği taban puanı nedir?")
	require.NoError(t, err)

	assert.Contains(t, reply.Reply, "Üzgünüm")
}

func TestHandleMessagePersistsHistory(t *testing.T) {
	svc := newChatService(t)
	ctx := context.Background()

	reply, err := svc.HandleMessage(ctx, "", "u1", "Merhaba!")
	require.NoError(t, err)

	messages, err := svc.History(ctx, reply.SessionID, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "Merhaba!", messages[0].Body)
	assert.Equal(t, "bot", messages[1].Role)
	assert.Equal(t, "greeting", messages[1].Intent)

	_, err = svc.History(ctx, "sess_missing", 10)
	assert.Error(t, err)
}
