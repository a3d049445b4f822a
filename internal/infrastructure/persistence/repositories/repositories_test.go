package repositories

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/catalog"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/stores"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/database"
	"github.com/tercihrehberi/tercihbot-go/pkg/config"
)

type testEnv struct {
	db    *database.Database
	cache *stores.CatalogStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	config.DBDriver = "sqlite3"
	config.DBPath = filepath.Join(dir, "test.db")

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:  true,
		LogDirectory:  filepath.Join(dir, "logs"),
		JSONFormat:    true,
		DefaultLevel:  slog.LevelWarn,
		ChannelLevels: make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)

	db, err := database.NewDatabase(logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.CreateTables(context.Background()))

	return &testEnv{
		db:    db,
		cache: stores.NewCatalogStore(time.Hour, nil, nil),
	}
}

func TestSeedAndFindUniversityByAlias(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	universities := NewUniversityRepository(env.db, env.cache, nil)
	departments := NewDepartmentRepository(env.db, env.cache, nil)
	scores := NewScoreRepository(env.db, env.cache, nil)

	seeder := NewSeeder(universities, departments, scores, nil)
	require.NoError(t, seeder.SeedIfEmpty(ctx))

	// Seeding twice must not duplicate anything
	require.NoError(t, seeder.SeedIfEmpty(ctx))
	count, err := universities.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(seedUniversities), count)

	byAlias, err := universities.FindByName(ctx, "odtü")
	require.NoError(t, err)
	require.NotNil(t, byAlias)
	assert.Equal(t, "Orta Doğu Teknik Üniversitesi", byAlias.Name)

	unknown, err := universities.FindByName(ctx, "yok böyle bir yer")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestScoreRepositoryRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	scores := NewScoreRepository(env.db, env.cache, nil)

	rec := &catalog.ScoreRecord{
		University: "Marmara Üniversitesi",
		Department: "Bilgisayar Mühendisliği",
		ScoreType:  "SAY",
		Year:       2025,
		MinScore:   488.7,
		MinRank:    21400,
		Quota:      110,
	}
	require.NoError(t, scores.Upsert(ctx, rec))

	// Upserting the same placement and year overwrites, not duplicates
	rec2 := *rec
	rec2.ID = ""
	rec2.MinScore = 490.1
	require.NoError(t, scores.Upsert(ctx, &rec2))

	count, err := scores.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	latest, err := scores.FindLatest(ctx, "Marmara Üniversitesi", "Bilgisayar Mühendisliği", "SAY")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 490.1, latest.MinScore)

	missing, err := scores.FindLatest(ctx, "Marmara Üniversitesi", "Uzay Bilimleri", "SAY")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestScoreRepositoryCacheFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	scores := NewScoreRepository(env.db, env.cache, nil)
	require.NoError(t, scores.Upsert(ctx, &catalog.ScoreRecord{
		University: "Boğaziçi Üniversitesi",
		Department: "Bilgisayar Mühendisliği",
		ScoreType:  "SAY",
		Year:       2025,
		MinScore:   540.3,
	}))

	first, err := scores.FindByPlacement(ctx, "Boğaziçi Üniversitesi", "Bilgisayar Mühendisliği")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Second read comes from cache
	cached, ok := env.cache.GetScoreRecords("Boğaziçi Üniversitesi", "Bilgisayar Mühendisliği")
	require.True(t, ok)
	assert.Equal(t, first, cached)
}

func TestChatRepositoryRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	chats := NewChatRepository(env.db, nil)

	session, err := chats.CreateSession(ctx, "u1")
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	require.NoError(t, chats.SaveMessage(ctx, &catalog.ChatMessage{
		SessionID: session.ID,
		Role:      "user",
		Body:      "Marmara bilgisayar taban puanı nedir?",
	}))
	require.NoError(t, chats.SaveMessage(ctx, &catalog.ChatMessage{
		SessionID:  session.ID,
		Role:       "bot",
		Body:       "488,70 puanla öğrenci aldı.",
		Intent:     "score_query",
		Entities:   map[string]any{"university": "Marmara Üniversitesi"},
		Confidence: 0.95,
	}))

	messages, err := chats.GetMessages(ctx, session.ID, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "bot", messages[1].Role)
	assert.Equal(t, "Marmara Üniversitesi", messages[1].Entities["university"])
	assert.Equal(t, 0.95, messages[1].Confidence)

	loaded, err := chats.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "u1", loaded.UserID)

	require.NoError(t, chats.EnsureSession(ctx, session.ID, "u1"))
	require.NoError(t, chats.EnsureSession(ctx, "sess_custom", "u2"))
	custom, err := chats.GetSession(ctx, "sess_custom")
	require.NoError(t, err)
	require.NotNil(t, custom)
}
