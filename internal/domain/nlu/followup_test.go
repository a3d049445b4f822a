package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
)

func TestMissingEntities(t *testing.T) {
	g := NewGenerator(4)

	tests := []struct {
		name     string
		intent   dialogue.Intent
		entities map[string]any
		expected []dialogue.EntityType
	}{
		{
			"score query with nothing known",
			dialogue.IntentScoreQuery,
			map[string]any{},
			[]dialogue.EntityType{dialogue.EntityUniversity, dialogue.EntityDepartment},
		},
		{
			"score query with university known",
			dialogue.IntentScoreQuery,
			map[string]any{"university": "Marmara Üniversitesi"},
			[]dialogue.EntityType{dialogue.EntityDepartment},
		},
		{
			"score query fully specified",
			dialogue.IntentScoreQuery,
			map[string]any{"university": "Marmara Üniversitesi", "department": "Bilgisayar Mühendisliği"},
			nil,
		},
		{
			"empty string does not satisfy a requirement",
			dialogue.IntentDepartmentInfo,
			map[string]any{"department": ""},
			[]dialogue.EntityType{dialogue.EntityDepartment},
		},
		{
			"greeting requires nothing",
			dialogue.IntentGreeting,
			map[string]any{},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, g.MissingEntities(tt.intent, tt.entities))
		})
	}
}

func TestClarifications(t *testing.T) {
	g := NewGenerator(4)

	questions := g.Clarifications(dialogue.IntentNetCalculation, map[string]any{
		"university": "Marmara Üniversitesi",
	})
	require.Len(t, questions, 1)
	assert.Equal(t, "Hangi bölüm için net hesaplayalım?", questions[0])
}

func TestClarificationQuestionFallsBackToGeneric(t *testing.T) {
	q := ClarificationQuestion(dialogue.EntityScoreType, dialogue.IntentScoreQuery)
	assert.Equal(t, "Hangi puan türüyle ilgileniyorsunuz? (SAY, EA, SÖZ, DİL)", q)
}

func TestSuggestions(t *testing.T) {
	g := NewGenerator(4)

	t.Run("score query offers ranking and nets", func(t *testing.T) {
		entities := map[string]any{
			"university": "Marmara Üniversitesi",
			"department": "Bilgisayar Mühendisliği",
		}
		suggestions := g.Suggestions(dialogue.IntentScoreQuery, entities)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, dialogue.IntentRankingQuery, suggestions[0].Intent)
		assert.Contains(t, suggestions[0].Text, "Bilgisayar Mühendisliği")

		// Priority ordering is ascending
		for i := 1; i < len(suggestions); i++ {
			assert.GreaterOrEqual(t, suggestions[i].Priority, suggestions[i-1].Priority)
		}
	})

	t.Run("list is capped", func(t *testing.T) {
		g2 := NewGenerator(2)
		entities := map[string]any{
			"university": "Koç Üniversitesi",
			"department": "Bilgisayar Mühendisliği",
		}
		assert.Len(t, g2.Suggestions(dialogue.IntentScoreQuery, entities), 2)
	})

	t.Run("engineering department adds score type hint", func(t *testing.T) {
		entities := map[string]any{"department": "Makine Mühendisliği"}
		suggestions := g.Suggestions(dialogue.IntentDepartmentInfo, entities)

		var texts []string
		for _, s := range suggestions {
			texts = append(texts, s.Text)
		}
		assert.Contains(t, texts, "Mühendislik bölümleri sayısal (SAY) puan türüyle öğrenci alır.")
	})

	t.Run("duplicate texts keep the best rank only", func(t *testing.T) {
		deduped := dedupByText([]dialogue.FollowUpSuggestion{
			{Text: "Taban puanını da sorabilirsiniz.", Priority: 1},
			{Text: "Kontenjanlara da bakabilirim.", Priority: 2},
			{Text: "Taban puanını da sorabilirsiniz.", Priority: 3},
		})
		require.Len(t, deduped, 2)
		assert.Equal(t, 1, deduped[0].Priority)
		assert.Equal(t, 2, deduped[1].Priority)
	})

	t.Run("greeting gets onboarding suggestions", func(t *testing.T) {
		suggestions := g.Suggestions(dialogue.IntentGreeting, map[string]any{})
		require.NotEmpty(t, suggestions)
		assert.Equal(t, dialogue.SuggestionQuestion, suggestions[0].Kind)
	})
}

func TestIsConfused(t *testing.T) {
	g := NewGenerator(4)

	assert.True(t, g.IsConfused("anlamadım ne demek bu"))
	assert.True(t, g.IsConfused("kafam karıştı yardım eder misin"))
	assert.False(t, g.IsConfused("marmara üniversitesi taban puanı"))
}
