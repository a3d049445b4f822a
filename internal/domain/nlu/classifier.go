package nlu

import (
	"strings"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
)

// Context bonuses added to the winning raw score before confidence
// conversion. Anchor entities weigh more than bare numeric values.
const (
	anchorEntityBonus  = 0.3
	numericEntityBonus = 0.1
)

// Fallback confidences used when no keyword group fires at all
const (
	fallbackAnchorConfidence   = 0.6
	fallbackQuestionConfidence = 0.7
	fallbackDefaultConfidence  = 0.5
)

// Classifier scores normalized utterances against the weighted keyword
// table and resolves zero-score utterances through entity-anchored and
// interrogative fallbacks.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the best-scoring intent for the normalized text.
// Extracted entities from the same turn feed the context bonus and the
// fallback chain. Confidence is min(score/2, 1); ties resolve to the
// intent listed first in the fixed table order, so results are
// deterministic for identical input.
func (c *Classifier) Classify(text string, entities []dialogue.EntityMatch) dialogue.IntentClassification {
	words := strings.Fields(text)

	var best dialogue.IntentClassification
	bestScore := 0.0

	for _, intent := range intentOrder {
		score, matched := c.scoreIntent(text, words, intent)
		if score == 0 {
			continue
		}
		// Entities only reinforce intents the keyword table already
		// suggested; an entity-only turn goes through the fallback.
		score += contextBonus(intent, entities)
		if score > bestScore {
			bestScore = score
			best = dialogue.IntentClassification{Intent: intent, MatchedKeywords: matched}
		}
	}

	if bestScore == 0 {
		return c.fallback(text, words, entities)
	}

	best.Confidence = clampConfidence(bestScore / 2)
	return best
}

func (c *Classifier) scoreIntent(text string, words []string, intent dialogue.Intent) (float64, []string) {
	var score float64
	var matched []string

	for _, group := range intentPatterns[intent] {
		for _, keyword := range group.Keywords {
			kwScore := keywordScore(text, words, keyword)
			if kwScore > 0 {
				score += kwScore * group.Weight
				matched = append(matched, keyword)
			}
		}
	}
	return score, matched
}

// keywordScore implements the per-keyword contribution: a single word
// counts 1.0 as a whole word or 0.5 as a substring of a longer word; a
// multi-word phrase counts its word length when fully present, otherwise
// 0.3 per phrase word found as a whole word.
func keywordScore(text string, words []string, keyword string) float64 {
	if !strings.ContainsRune(keyword, ' ') {
		if _, _, ok := findPhrase(text, keyword); ok {
			return 1.0
		}
		if strings.Contains(text, keyword) {
			return 0.5
		}
		return 0
	}

	phraseWords := strings.Fields(keyword)
	if _, _, ok := findPhrase(text, keyword); ok {
		return float64(len(phraseWords))
	}

	found := 0
	for _, pw := range phraseWords {
		for _, w := range words {
			if w == pw {
				found++
				break
			}
		}
	}
	return 0.3 * float64(found)
}

// contextBonus rewards an intent for every one of its required entity
// types present in the turn, plus a small generic boost when numeric
// values appear.
func contextBonus(intent dialogue.Intent, entities []dialogue.EntityMatch) float64 {
	present := map[dialogue.EntityType]bool{}
	for _, e := range entities {
		present[e.Type] = true
	}

	var bonus float64
	for _, required := range RequiredEntities(intent) {
		if present[required] {
			bonus += anchorEntityBonus
		}
	}
	if present[dialogue.EntityNumber] || present[dialogue.EntitySubjectNet] {
		bonus += numericEntityBonus
	}
	return bonus
}

// fallback resolves utterances no keyword group matched. Anchor entities
// imply the high-value query intents; interrogative markers imply the
// user asked something the tables do not cover yet.
func (c *Classifier) fallback(text string, words []string, entities []dialogue.EntityMatch) dialogue.IntentClassification {
	hasUniversity := hasEntityType(entities, dialogue.EntityUniversity)
	hasDepartment := hasEntityType(entities, dialogue.EntityDepartment)

	switch {
	case hasUniversity && hasDepartment:
		return dialogue.IntentClassification{
			Intent:     dialogue.IntentScoreQuery,
			Confidence: fallbackAnchorConfidence,
		}
	case hasDepartment:
		return dialogue.IntentClassification{
			Intent:     dialogue.IntentDepartmentInfo,
			Confidence: fallbackAnchorConfidence,
		}
	case hasUniversity:
		return dialogue.IntentClassification{
			Intent:     dialogue.IntentUniversityInfo,
			Confidence: fallbackAnchorConfidence,
		}
	}

	if isQuestion(text, words) {
		return dialogue.IntentClassification{
			Intent:     dialogue.IntentClarification,
			Confidence: fallbackQuestionConfidence,
		}
	}
	return dialogue.IntentClassification{
		Intent:     dialogue.IntentClarification,
		Confidence: fallbackDefaultConfidence,
	}
}

func hasEntityType(entities []dialogue.EntityMatch, t dialogue.EntityType) bool {
	for _, e := range entities {
		if e.Type == t {
			return true
		}
	}
	return false
}

func isQuestion(text string, words []string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	for _, w := range words {
		if questionWords[w] {
			return true
		}
	}
	return false
}

func clampConfidence(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
