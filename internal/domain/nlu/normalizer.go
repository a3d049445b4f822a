// Package nlu implements the rule-based dialogue understanding engine:
// text normalization, entity extraction, intent classification and
// follow-up suggestion generation. All components are pure and total;
// conversation state lives in the caching store, not here.
package nlu

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Everything outside word characters, whitespace, Turkish letters and
	// '%' is replaced with a space before matching.
	nonWordPattern    = regexp.MustCompile(`[^\wçğıöşüâîû%\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// asciiFoldTable maps Turkish letters to their closest ASCII letter.
// Used for fuzzy comparison only, never for display.
var asciiFoldTable = map[rune]rune{
	'ç': 'c', 'ğ': 'g', 'ı': 'i', 'ö': 'o', 'ş': 's', 'ü': 'u',
	'â': 'a', 'î': 'i', 'û': 'u',
}

// abbreviations holds whole-word expansions applied before alias matching
var abbreviations = map[string]string{
	"üni":  "üniversitesi",
	"ünv":  "üniversitesi",
	"müh":  "mühendisliği",
	"bilg": "bilgisayar",
	"fak":  "fakültesi",
	"mat":  "matematik",
	"öğr":  "öğretmenliği",
	"böl":  "bölümü",
}

// Normalizer provides Turkish-aware text canonicalization and fuzzy
// string comparison for the extraction and classification stages.
type Normalizer struct {
	lower cases.Caser
}

// NewNormalizer creates a normalizer with a Turkish case folder, so that
// dotted and dotless I both lower correctly ("İSTANBUL" -> "istanbul",
// "ISPARTA" -> "ısparta").
func NewNormalizer() *Normalizer {
	return &Normalizer{lower: cases.Lower(language.Turkish)}
}

// Normalize lowercases, strips punctuation while preserving Turkish
// letters and '%', collapses whitespace and trims.
func (n *Normalizer) Normalize(text string) string {
	text = n.lower.String(text)
	text = nonWordPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// AsciiFold maps Turkish letters to their closest ASCII letter.
func (n *Normalizer) AsciiFold(text string) string {
	return strings.Map(func(r rune) rune {
		if folded, ok := asciiFoldTable[r]; ok {
			return folded
		}
		return r
	}, text)
}

// ExpandAbbreviations performs whole-word replacement of known domain
// abbreviations ("marmara üni" -> "marmara üniversitesi").
func (n *Normalizer) ExpandAbbreviations(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		if full, ok := abbreviations[word]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// Similarity computes a normalized edit-distance closeness score in [0,1]
// over the ASCII-folded normal forms of both inputs. Identical strings
// score 1.0; the measure is symmetric.
func (n *Normalizer) Similarity(a, b string) float64 {
	fa := n.AsciiFold(n.Normalize(a))
	fb := n.AsciiFold(n.Normalize(b))

	maxLen := utf8.RuneCountInString(fa)
	if lb := utf8.RuneCountInString(fb); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(fa, fb)
	return 1.0 - float64(dist)/float64(maxLen)
}
