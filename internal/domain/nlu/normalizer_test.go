package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase and punctuation", "Merhaba, DÜNYA!", "merhaba dünya"},
		{"turkish dotted capital I", "İstanbul Üniversitesi", "istanbul üniversitesi"},
		{"turkish dotless capital I", "ISPARTA", "ısparta"},
		{"whitespace collapse", "  kaç   net\t gerekir  ", "kaç net gerekir"},
		{"percent preserved", "%50 burslu", "%50 burslu"},
		{"question mark stripped", "taban puanı nedir?", "taban puanı nedir"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestAsciiFold(t *testing.T) {
	n := NewNormalizer()

	assert.Equal(t, "cgiosu", n.AsciiFold("çğıöşü"))
	assert.Equal(t, "bogazici", n.AsciiFold("boğaziçi"))
	assert.Equal(t, "kar", n.AsciiFold("kar"))
}

func TestExpandAbbreviations(t *testing.T) {
	n := NewNormalizer()

	assert.Equal(t, "marmara üniversitesi", n.ExpandAbbreviations("marmara üni"))
	assert.Equal(t, "bilgisayar mühendisliği", n.ExpandAbbreviations("bilg müh"))
	// Abbreviations only expand as whole words
	assert.Equal(t, "ünite", n.ExpandAbbreviations("ünite"))
}

func TestSimilarity(t *testing.T) {
	n := NewNormalizer()

	t.Run("identical strings score one", func(t *testing.T) {
		assert.Equal(t, 1.0, n.Similarity("bilgisayar", "bilgisayar"))
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, n.Similarity("marmara", "marmar"), n.Similarity("marmar", "marmara"))
	})

	t.Run("typo stays close", func(t *testing.T) {
		assert.Greater(t, n.Similarity("bilgisayar", "bilgisayr"), 0.85)
	})

	t.Run("folded forms compare equal", func(t *testing.T) {
		assert.Equal(t, 1.0, n.Similarity("boğaziçi", "bogazici"))
	})

	t.Run("unrelated strings score low", func(t *testing.T) {
		assert.Less(t, n.Similarity("hukuk", "matematik"), 0.5)
	})

	t.Run("both empty", func(t *testing.T) {
		assert.Equal(t, 1.0, n.Similarity("", ""))
	})
}
