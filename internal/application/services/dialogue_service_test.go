package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
	"github.com/tercihrehberi/tercihbot-go/internal/domain/nlu"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/manager"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/performance"
)

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:  true,
		LogDirectory:  t.TempDir(),
		JSONFormat:    true,
		DefaultLevel:  slog.LevelInfo,
		ChannelLevels: make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)
	return logger
}

func newDialogueService(t *testing.T) *DialogueService {
	t.Helper()
	logger := newTestLogger(t)
	normalizer := nlu.NewNormalizer()
	cache := manager.NewManager(normalizer, logger)
	return NewDialogueService(
		normalizer,
		nlu.NewRegistry(normalizer),
		nlu.NewClassifier(),
		nlu.NewGenerator(4),
		cache,
		logger,
		performance.NewTracker(),
	)
}

func TestProcessTurnGreeting(t *testing.T) {
	svc := newDialogueService(t)

	result, err := svc.ProcessTurn(context.Background(), "s1", "u1", "Merhaba!", nil)
	require.NoError(t, err)

	assert.Equal(t, dialogue.IntentGreeting, result.Intent)
	assert.Greater(t, result.Confidence, 0.7)
	assert.False(t, result.ClarificationNeeded)
	assert.NotEmpty(t, result.Suggestions)
}

func TestProcessTurnFullQuery(t *testing.T) {
	svc := newDialogueService(t)

	result, err := svc.ProcessTurn(context.Background(), "s1", "u1",
		"Marmara Üniversitesi Bilgisayar Mühendisliği için kaç net gerekir?", nil)
	require.NoError(t, err)

	assert.Equal(t, dialogue.IntentNetCalculation, result.Intent)
	assert.Equal(t, 1.0, result.Confidence)
	assert.False(t, result.ClarificationNeeded)
	assert.Equal(t, "Marmara Üniversitesi", result.Entities["university"])
	assert.Equal(t, "Bilgisayar Mühendisliği", result.Entities["department"])
}

func TestProcessTurnAccumulatesAcrossTurns(t *testing.T) {
	svc := newDialogueService(t)
	ctx := context.Background()

	first, err := svc.ProcessTurn(ctx, "s1", "u1", "İstanbul Üniversitesi hakkında bilgi almak istiyorum", nil)
	require.NoError(t, err)
	assert.Equal(t, dialogue.IntentUniversityInfo, first.Intent)
	assert.False(t, first.ClarificationNeeded)

	second, err := svc.ProcessTurn(ctx, "s1", "u1", "Hukuk fakültesi taban puanı kaç?", nil)
	require.NoError(t, err)
	assert.Equal(t, dialogue.IntentScoreQuery, second.Intent)
	assert.False(t, second.ClarificationNeeded)
	assert.Equal(t, "İstanbul Üniversitesi", second.Entities["university"])
	assert.Equal(t, "Hukuk", second.Entities["department"])
}

func TestProcessTurnClarificationFlow(t *testing.T) {
	svc := newDialogueService(t)
	ctx := context.Background()

	first, err := svc.ProcessTurn(ctx, "s1", "u1", "Bilgisayar mühendisliği için kaç net lazım?", nil)
	require.NoError(t, err)
	assert.Equal(t, dialogue.IntentNetCalculation, first.Intent)
	assert.True(t, first.ClarificationNeeded)
	require.NotEmpty(t, first.FollowUpQuestions)
	assert.Equal(t, "Hangi üniversite için net hesaplayalım?", first.FollowUpQuestions[0])

	// Answering with just the university resumes the waiting intent
	second, err := svc.ProcessTurn(ctx, "s1", "u1", "Marmara Üniversitesi", nil)
	require.NoError(t, err)
	assert.Equal(t, dialogue.IntentNetCalculation, second.Intent)
	assert.False(t, second.ClarificationNeeded)
	assert.Equal(t, "Marmara Üniversitesi", second.Entities["university"])
	assert.Equal(t, "Bilgisayar Mühendisliği", second.Entities["department"])
}

func TestProcessTurnRepeatOffersHelp(t *testing.T) {
	svc := newDialogueService(t)
	ctx := context.Background()

	question := "Marmara Üniversitesi Bilgisayar Mühendisliği taban puanı nedir?"
	_, err := svc.ProcessTurn(ctx, "s1", "u1", question, nil)
	require.NoError(t, err)

	second, err := svc.ProcessTurn(ctx, "s1", "u1", question, nil)
	require.NoError(t, err)

	helpOffer := nlu.NewGenerator(4).HelpOffer()
	assert.Contains(t, second.FollowUpQuestions, helpOffer)
}

func TestProcessTurnConfusionOffersHelp(t *testing.T) {
	svc := newDialogueService(t)
	ctx := context.Background()
	helpOffer := nlu.NewGenerator(4).HelpOffer()

	// A single confused turn is below the help threshold
	first, err := svc.ProcessTurn(ctx, "s1", "u1", "anlamadım ki", nil)
	require.NoError(t, err)
	assert.NotContains(t, first.FollowUpQuestions, helpOffer)

	_, err = svc.ProcessTurn(ctx, "s1", "u1", "kafam karıştı valla", nil)
	require.NoError(t, err)

	// Two confused turns in the window trigger help even on a clean turn
	third, err := svc.ProcessTurn(ctx, "s1", "u1", "üniversiteler hakkında bilgi istiyorum", nil)
	require.NoError(t, err)
	assert.Contains(t, third.FollowUpQuestions, helpOffer)
}

func TestProcessTurnStatelessKeepsUsersApart(t *testing.T) {
	svc := newDialogueService(t)
	ctx := context.Background()

	alice, err := svc.ProcessTurn(ctx, "", "alice", "Marmara Üniversitesi hakkında bilgi istiyorum", nil)
	require.NoError(t, err)
	assert.Equal(t, "Marmara Üniversitesi", alice.Entities["university"])

	bob, err := svc.ProcessTurn(ctx, "", "bob", "Bilgisayar mühendisliği taban puanı nedir?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bilgisayar Mühendisliği", bob.Entities["department"])
	assert.NotContains(t, bob.Entities, "university")
	assert.True(t, bob.ClarificationNeeded)

	// Stateless turns never touch the context store
	assert.Equal(t, 0, svc.cache.Conversations().Count())
}

func TestProcessTurnStatelessMergesPriorEntities(t *testing.T) {
	svc := newDialogueService(t)

	result, err := svc.ProcessTurn(context.Background(), "", "u1",
		"Bilgisayar mühendisliği taban puanı nedir?",
		map[string]any{"university": "Marmara Üniversitesi", "city": ""})
	require.NoError(t, err)

	assert.Equal(t, dialogue.IntentScoreQuery, result.Intent)
	assert.False(t, result.ClarificationNeeded)
	assert.Equal(t, "Marmara Üniversitesi", result.Entities["university"])
	assert.Equal(t, "Bilgisayar Mühendisliği", result.Entities["department"])
	assert.NotContains(t, result.Entities, "city")
}

func TestProcessTurnEmptyInput(t *testing.T) {
	svc := newDialogueService(t)

	result, err := svc.ProcessTurn(context.Background(), "s1", "u1", "   ", nil)
	require.NoError(t, err)

	assert.Equal(t, dialogue.IntentClarification, result.Intent)
	assert.True(t, result.ClarificationNeeded)
	assert.NotEmpty(t, result.FollowUpQuestions)
}

func TestProcessTurnSubjectNets(t *testing.T) {
	svc := newDialogueService(t)

	result, err := svc.ProcessTurn(context.Background(), "s1", "u1",
		"Marmara Üniversitesi Bilgisayar Mühendisliği için matematik 35 doğru 5 yanlış yaptım kaç net eder?", nil)
	require.NoError(t, err)

	assert.Equal(t, dialogue.IntentNetCalculation, result.Intent)
	nets, ok := result.Entities["subjectNets"].(map[string]dialogue.NetPair)
	require.True(t, ok)
	assert.InDelta(t, 33.75, nets["matematik"].Net(), 0.001)
}
