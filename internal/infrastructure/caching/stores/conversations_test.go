package stores

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/convo"
	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
	"github.com/tercihrehberi/tercihbot-go/internal/domain/nlu"
)

// fakeClock lets tests move time forward deterministically
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(clock *fakeClock) *ConversationStore {
	return NewConversationStore(ConversationStoreConfig{
		IdleTTL:     30 * time.Minute,
		WindowSize:  10,
		RepeatDepth: 3,
		Now:         clock.Now,
	}, nlu.NewNormalizer(), nil)
}

func entry(intent dialogue.Intent, userText string, entities map[string]any) *convo.Entry {
	return &convo.Entry{
		Intent:   intent,
		Entities: entities,
		UserText: userText,
	}
}

func TestGetOrCreate(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	first := store.GetOrCreate("s1", "u1")
	second := store.GetOrCreate("s1", "u1")

	assert.Same(t, first, second)
	assert.Equal(t, 1, store.Count())
	assert.Equal(t, convo.StateInitial, first.State)
}

func TestEntitiesAccumulateAcrossTurns(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("s1", entry(dialogue.IntentUniversityInfo, "istanbul üniversitesi hakkında bilgi",
		map[string]any{"university": "İstanbul Üniversitesi"}))
	store.AddEntry("s1", entry(dialogue.IntentScoreQuery, "hukuk taban puanı kaç",
		map[string]any{"department": "Hukuk"}))

	accumulated := store.GetAccumulatedEntities("s1")
	assert.Equal(t, "İstanbul Üniversitesi", accumulated["university"])
	assert.Equal(t, "Hukuk", accumulated["department"])

	assert.True(t, store.HasRequiredEntities("s1", dialogue.IntentScoreQuery))
	assert.Empty(t, store.GetMissingEntities("s1", dialogue.IntentScoreQuery))
}

func TestMergeSkipsNilAndEmptyValues(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("s1", entry(dialogue.IntentScoreQuery, "marmara bilgisayar",
		map[string]any{"university": "Marmara Üniversitesi"}))
	store.AddEntry("s1", entry(dialogue.IntentScoreQuery, "peki ya puan",
		map[string]any{"university": "", "department": nil}))

	accumulated := store.GetAccumulatedEntities("s1")
	assert.Equal(t, "Marmara Üniversitesi", accumulated["university"])
	_, hasDepartment := accumulated["department"]
	assert.False(t, hasDepartment)
}

func TestLastWriteWins(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("s1", entry(dialogue.IntentUniversityInfo, "odtü nasıl",
		map[string]any{"university": "Orta Doğu Teknik Üniversitesi"}))
	store.AddEntry("s1", entry(dialogue.IntentUniversityInfo, "peki boğaziçi",
		map[string]any{"university": "Boğaziçi Üniversitesi"}))

	accumulated := store.GetAccumulatedEntities("s1")
	assert.Equal(t, "Boğaziçi Üniversitesi", accumulated["university"])
}

func TestEntriesBoundedToWindow(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	for i := 0; i < 15; i++ {
		store.AddEntry("s1", entry(dialogue.IntentScoreQuery, fmt.Sprintf("soru %d", i),
			map[string]any{fmt.Sprintf("k%d", i): "v"}))
	}

	ctx, ok := store.Get("s1")
	require.True(t, ok)
	assert.Len(t, ctx.Entries, 10)
	assert.Equal(t, "soru 14", ctx.Entries[9].UserText)

	// Entities merged from dropped entries survive the window
	accumulated := store.GetAccumulatedEntities("s1")
	assert.Equal(t, "v", accumulated["k0"])
	assert.Len(t, accumulated, 15)
}

func TestStateProgression(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("s1", entry(dialogue.IntentScoreQuery, "bilgisayar mühendisliği puanı",
		map[string]any{"department": "Bilgisayar Mühendisliği"}))
	assert.Equal(t, convo.StateGathering, store.GetState("s1"))

	store.AddEntry("s1", entry(dialogue.IntentScoreQuery, "marmara üniversitesi için",
		map[string]any{"university": "Marmara Üniversitesi"}))
	assert.Equal(t, convo.StateCompleted, store.GetState("s1"))
}

func TestStateNeverRegresses(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("s1", entry(dialogue.IntentScoreQuery, "marmara bilgisayar puanı", map[string]any{
		"university": "Marmara Üniversitesi",
		"department": "Bilgisayar Mühendisliği",
	}))
	store.AddEntry("s1", entry(dialogue.IntentScoreQuery, "teşekkürler", nil))
	require.Equal(t, convo.StateCompleted, store.GetState("s1"))

	// A vague follow-up must not pull the session backwards
	store.AddEntry("s1", entry(dialogue.IntentClarification, "hmm bir şey soracaktım", nil))
	assert.Equal(t, convo.StateCompleted, store.GetState("s1"))
}

func TestSingleTurnDoesNotComplete(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("s1", entry(dialogue.IntentScoreQuery, "marmara bilgisayar puanı", map[string]any{
		"university": "Marmara Üniversitesi",
		"department": "Bilgisayar Mühendisliği",
	}))
	assert.Equal(t, convo.StateProcessing, store.GetState("s1"))
}

func TestIsRepeating(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("s1", entry(dialogue.IntentScoreQuery, "marmara bilgisayar taban puanı 2023", nil))

	assert.True(t, store.IsRepeating("s1", "marmara bilgisayar taban puanı 2023"))
	assert.True(t, store.IsRepeating("s1", "Marmara bilgisayar taban puanı 2023?"))
	// A different year is a different question, not a repeat
	assert.False(t, store.IsRepeating("s1", "marmara bilgisayar taban puanı 2024"))
	assert.False(t, store.IsRepeating("s1", "boğaziçi yurt imkanları nasıl"))
	assert.False(t, store.IsRepeating("s1", ""))
}

func TestIsRepeatingOnlyChecksRecentTurns(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("s1", entry(dialogue.IntentScoreQuery, "ilk soru taban puanı", nil))
	for i := 0; i < 3; i++ {
		store.AddEntry("s1", entry(dialogue.IntentScoreQuery, fmt.Sprintf("farklı soru numara %d", i), nil))
	}

	// The first question slid out of the repeat window
	assert.False(t, store.IsRepeating("s1", "ilk soru taban puanı"))
}

func TestSweepExpired(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("old", entry(dialogue.IntentGreeting, "merhaba", nil))

	clock.Advance(20 * time.Minute)
	store.AddEntry("fresh", entry(dialogue.IntentGreeting, "selam", nil))

	clock.Advance(15 * time.Minute)
	removed := store.SweepExpired()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Count())

	_, oldExists := store.Get("old")
	_, freshExists := store.Get("fresh")
	assert.False(t, oldExists)
	assert.True(t, freshExists)
}

func TestSweepKeepsSessionsTouchedRecently(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("s1", entry(dialogue.IntentGreeting, "merhaba", nil))

	clock.Advance(29 * time.Minute)
	store.AddEntry("s1", entry(dialogue.IntentScoreQuery, "marmara puanları", nil))

	clock.Advance(29 * time.Minute)
	assert.Equal(t, 0, store.SweepExpired())
	assert.Equal(t, 1, store.Count())
}

func TestUpdateLatestBotText(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("s1", entry(dialogue.IntentGreeting, "merhaba", nil))
	store.UpdateLatestBotText("s1", "Merhaba! Size nasıl yardımcı olabilirim?")

	ctx, ok := store.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "Merhaba! Size nasıl yardımcı olabilirim?", ctx.Entries[0].BotText)

	// Unknown sessions are a no-op
	store.UpdateLatestBotText("ghost", "selam")
}

func TestClear(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(clock)

	store.AddEntry("s1", entry(dialogue.IntentGreeting, "merhaba", nil))
	store.Clear("s1")

	assert.Equal(t, 0, store.Count())
	assert.Empty(t, store.GetAccumulatedEntities("s1"))
}
