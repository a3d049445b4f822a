package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
)

func classify(t *testing.T, raw string) dialogue.IntentClassification {
	t.Helper()
	n := NewNormalizer()
	registry := NewRegistry(n)
	text := n.ExpandAbbreviations(n.Normalize(raw))
	return NewClassifier().Classify(text, registry.Extract(text))
}

func TestClassifyGreeting(t *testing.T) {
	result := classify(t, "Merhaba!")

	assert.Equal(t, dialogue.IntentGreeting, result.Intent)
	assert.Greater(t, result.Confidence, 0.7)
	assert.Contains(t, result.MatchedKeywords, "merhaba")
}

func TestClassifyNetCalculation(t *testing.T) {
	result := classify(t, "Marmara Üniversitesi Bilgisayar Mühendisliği için kaç net gerekir?")

	assert.Equal(t, dialogue.IntentNetCalculation, result.Intent)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Contains(t, result.MatchedKeywords, "kaç net")
}

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected dialogue.Intent
	}{
		{"farewell", "hoşça kal, görüşürüz", dialogue.IntentFarewell},
		{"thanks", "çok teşekkürler", dialogue.IntentThanks},
		{"score query", "boğaziçi hukuk taban puanı kaç", dialogue.IntentScoreQuery},
		{"ranking query", "psikoloji için başarı sırası ne olmalı", dialogue.IntentRankingQuery},
		{"quota query", "itü bilgisayar mühendisliği kontenjanı kaç kişi", dialogue.IntentQuotaQuery},
		{"scholarship", "bilkent burs veriyor mu", dialogue.IntentScholarshipInfo},
		{"preference advice", "tercih listemi nasıl yapmalıyım tavsiye var mı", dialogue.IntentPreferenceAdvice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classify(t, tt.text)
			assert.Equal(t, tt.expected, result.Intent, "text: %s", tt.text)
		})
	}
}

func TestClassifyFallbacks(t *testing.T) {
	t.Run("university and department alone imply a score query", func(t *testing.T) {
		result := classify(t, "Marmara Üniversitesi Bilgisayar Mühendisliği")
		assert.Equal(t, dialogue.IntentScoreQuery, result.Intent)
		assert.Equal(t, fallbackAnchorConfidence, result.Confidence)
	})

	t.Run("department alone implies department info", func(t *testing.T) {
		result := classify(t, "psikoloji")
		assert.Equal(t, dialogue.IntentDepartmentInfo, result.Intent)
		assert.Equal(t, fallbackAnchorConfidence, result.Confidence)
	})

	t.Run("university alone implies university info", func(t *testing.T) {
		result := classify(t, "hacettepe")
		assert.Equal(t, dialogue.IntentUniversityInfo, result.Intent)
		assert.Equal(t, fallbackAnchorConfidence, result.Confidence)
	})

	t.Run("bare question falls back to clarification", func(t *testing.T) {
		result := classify(t, "bu nerede yazıyor")
		assert.Equal(t, dialogue.IntentClarification, result.Intent)
		assert.Equal(t, fallbackQuestionConfidence, result.Confidence)
	})

	t.Run("unrecognized statement gets the low default", func(t *testing.T) {
		result := classify(t, "bugün hava çok güzeldi")
		assert.Equal(t, dialogue.IntentClarification, result.Intent)
		assert.Equal(t, fallbackDefaultConfidence, result.Confidence)
	})
}

func TestClassifyDeterministic(t *testing.T) {
	text := "marmara üniversitesi bilgisayar mühendisliği için kaç net gerekir"
	registry := NewRegistry(NewNormalizer())
	classifier := NewClassifier()

	first := classifier.Classify(text, registry.Extract(text))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, classifier.Classify(text, registry.Extract(text)))
	}
}
