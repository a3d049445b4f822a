package nlu

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
)

// scholarshipUniversities are the private institutions worth a proactive
// scholarship hint.
var scholarshipUniversities = map[string]bool{
	"Koç Üniversitesi":                     true,
	"Sabancı Üniversitesi":                 true,
	"İhsan Doğramacı Bilkent Üniversitesi": true,
}

// Generator produces clarification questions for missing required
// entities and ranked follow-up suggestions after answered turns.
type Generator struct {
	maxSuggestions int
}

// NewGenerator caps returned suggestion lists at maxSuggestions; values
// below one fall back to a single suggestion.
func NewGenerator(maxSuggestions int) *Generator {
	if maxSuggestions < 1 {
		maxSuggestions = 1
	}
	return &Generator{maxSuggestions: maxSuggestions}
}

// MissingEntities returns the required entity types of intent not yet
// present in the accumulated entity map, in required-table order.
func (g *Generator) MissingEntities(intent dialogue.Intent, entities map[string]any) []dialogue.EntityType {
	var missing []dialogue.EntityType
	for _, required := range RequiredEntities(intent) {
		if !hasEntityValue(entities, required) {
			missing = append(missing, required)
		}
	}
	return missing
}

// Clarifications maps each missing required entity to its Turkish
// question, preserving required-table order.
func (g *Generator) Clarifications(intent dialogue.Intent, entities map[string]any) []string {
	var questions []string
	for _, missing := range g.MissingEntities(intent, entities) {
		questions = append(questions, ClarificationQuestion(missing, intent))
	}
	return questions
}

// Suggestions builds the ranked follow-up list for an answered turn.
// Priority is an inverted rank: 1 is the most important suggestion and
// sorts first. The list is deduplicated by text, then truncated to the
// configured maximum. Texts are parameterized with the accumulated
// entities so the bot never suggests something it would immediately have
// to clarify.
func (g *Generator) Suggestions(intent dialogue.Intent, entities map[string]any) []dialogue.FollowUpSuggestion {
	suggestions := intentSuggestions(intent, entities)
	suggestions = append(suggestions, contextualHints(entities)...)

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Priority < suggestions[j].Priority
	})
	suggestions = dedupByText(suggestions)
	if len(suggestions) > g.maxSuggestions {
		suggestions = suggestions[:g.maxSuggestions]
	}
	return suggestions
}

// dedupByText keeps the best-ranked suggestion per distinct text. The
// input must already be sorted by priority.
func dedupByText(suggestions []dialogue.FollowUpSuggestion) []dialogue.FollowUpSuggestion {
	seen := make(map[string]bool, len(suggestions))
	out := suggestions[:0]
	for _, s := range suggestions {
		if seen[s.Text] {
			continue
		}
		seen[s.Text] = true
		out = append(out, s)
	}
	return out
}

// IsConfused reports whether a normalized utterance carries one of the
// confusion markers.
func (g *Generator) IsConfused(text string) bool {
	for _, marker := range confusionMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// HelpOffer is the canned assistance message shown when the user repeats
// themselves or signals confusion.
func (g *Generator) HelpOffer() string {
	return "Size daha iyi yardımcı olabilmem için üniversite ve bölüm adını birlikte yazabilirsiniz. " +
		"Örnek: \"Marmara Üniversitesi Bilgisayar Mühendisliği taban puanı nedir?\""
}

func intentSuggestions(intent dialogue.Intent, entities map[string]any) []dialogue.FollowUpSuggestion {
	university := entityString(entities, dialogue.EntityUniversity)
	department := entityString(entities, dialogue.EntityDepartment)

	var out []dialogue.FollowUpSuggestion
	add := func(kind dialogue.SuggestionKind, text string, next dialogue.Intent, priority int) {
		out = append(out, dialogue.FollowUpSuggestion{
			Kind:     kind,
			Text:     text,
			Intent:   next,
			Entities: entities,
			Priority: priority,
		})
	}

	switch intent {
	case dialogue.IntentGreeting:
		add(dialogue.SuggestionQuestion, "Bir bölümün taban puanını sorabilirsiniz.", dialogue.IntentScoreQuery, 1)
		add(dialogue.SuggestionQuestion, "Net hesaplama için üniversite ve bölüm yazabilirsiniz.", dialogue.IntentNetCalculation, 2)
		add(dialogue.SuggestionInformation, "Tercih dönemi için size öneriler sunabilirim.", dialogue.IntentPreferenceAdvice, 3)

	case dialogue.IntentScoreQuery:
		if department != "" {
			add(dialogue.SuggestionQuestion, fmt.Sprintf("%s için başarı sıralamasını da görmek ister misiniz?", department), dialogue.IntentRankingQuery, 1)
			add(dialogue.SuggestionAction, fmt.Sprintf("%s için kaç net gerektiğini hesaplayabilirim.", department), dialogue.IntentNetCalculation, 2)
		}
		if university != "" {
			add(dialogue.SuggestionQuestion, fmt.Sprintf("%s kontenjanlarına bakmak ister misiniz?", university), dialogue.IntentQuotaQuery, 3)
		}

	case dialogue.IntentNetCalculation:
		add(dialogue.SuggestionQuestion, "Taban puanını da öğrenmek ister misiniz?", dialogue.IntentScoreQuery, 1)
		if department != "" {
			add(dialogue.SuggestionQuestion, fmt.Sprintf("%s başarı sıralaması da ilginizi çekebilir.", department), dialogue.IntentRankingQuery, 2)
		}

	case dialogue.IntentRankingQuery:
		add(dialogue.SuggestionQuestion, "Bu sıralama için gereken netleri hesaplayabilirim.", dialogue.IntentNetCalculation, 1)
		add(dialogue.SuggestionQuestion, "Taban puanlarını da görmek ister misiniz?", dialogue.IntentScoreQuery, 2)

	case dialogue.IntentQuotaQuery:
		add(dialogue.SuggestionQuestion, "Taban puanını da sorabilirsiniz.", dialogue.IntentScoreQuery, 1)

	case dialogue.IntentDepartmentInfo:
		if department != "" {
			add(dialogue.SuggestionQuestion, fmt.Sprintf("%s taban puanlarına bakmak ister misiniz?", department), dialogue.IntentScoreQuery, 1)
			add(dialogue.SuggestionQuestion, fmt.Sprintf("%s hangi üniversitelerde var, karşılaştırabilirim.", department), dialogue.IntentComparison, 2)
		}

	case dialogue.IntentUniversityInfo:
		if university != "" {
			add(dialogue.SuggestionQuestion, fmt.Sprintf("%s bölümlerinin taban puanlarını sorabilirsiniz.", university), dialogue.IntentScoreQuery, 1)
			add(dialogue.SuggestionQuestion, fmt.Sprintf("%s burs imkanlarını öğrenmek ister misiniz?", university), dialogue.IntentScholarshipInfo, 2)
		}

	case dialogue.IntentComparison:
		add(dialogue.SuggestionQuestion, "Karşılaştırdığınız bölümlerin kontenjanlarına da bakabilirim.", dialogue.IntentQuotaQuery, 1)

	case dialogue.IntentScholarshipInfo:
		add(dialogue.SuggestionQuestion, "Burslu kontenjanların taban puanlarını sorabilirsiniz.", dialogue.IntentScoreQuery, 1)

	case dialogue.IntentPreferenceAdvice:
		add(dialogue.SuggestionQuestion, "İlgilendiğiniz bölümün taban puanına bakarak başlayabiliriz.", dialogue.IntentScoreQuery, 1)
		add(dialogue.SuggestionInformation, "Netlerinizi yazarsanız yaklaşık puanınızı hesaplayabilirim.", dialogue.IntentNetCalculation, 2)

	case dialogue.IntentThanks, dialogue.IntentFarewell:
		add(dialogue.SuggestionInformation, "Başka bir sorunuz olursa buradayım.", dialogue.IntentClarification, 1)
	}
	return out
}

// contextualHints derives proactive tips from what is already known about
// the conversation regardless of the current intent.
func contextualHints(entities map[string]any) []dialogue.FollowUpSuggestion {
	var hints []dialogue.FollowUpSuggestion

	department := entityString(entities, dialogue.EntityDepartment)
	lowered := strings.ToLower(department)
	switch {
	case strings.Contains(lowered, "mühendis"):
		hints = append(hints, dialogue.FollowUpSuggestion{
			Kind:     dialogue.SuggestionInformation,
			Text:     "Mühendislik bölümleri sayısal (SAY) puan türüyle öğrenci alır.",
			Priority: 5,
		})
	case strings.Contains(lowered, "öğretmen"):
		hints = append(hints, dialogue.FollowUpSuggestion{
			Kind:     dialogue.SuggestionInformation,
			Text:     "Öğretmenlik bölümlerinin çoğu sözel veya eşit ağırlık puanıyla öğrenci alır.",
			Priority: 5,
		})
	}

	if university := entityString(entities, dialogue.EntityUniversity); scholarshipUniversities[university] {
		hints = append(hints, dialogue.FollowUpSuggestion{
			Kind:     dialogue.SuggestionInformation,
			Text:     fmt.Sprintf("%s burslu kontenjanlar sunuyor, burs koşullarını sorabilirsiniz.", university),
			Intent:   dialogue.IntentScholarshipInfo,
			Priority: 6,
		})
	}
	return hints
}

func hasEntityValue(entities map[string]any, t dialogue.EntityType) bool {
	v, ok := entities[string(t)]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && s == "" {
		return false
	}
	return true
}

func entityString(entities map[string]any, t dialogue.EntityType) string {
	if v, ok := entities[string(t)].(string); ok {
		return v
	}
	return ""
}
