// Package dialogue provides domain entities for the rule-based dialogue
// understanding engine: extracted entities, classified intents, follow-up
// suggestions and the per-turn result returned to transport.
package dialogue

// EntityType identifies the kind of a value extracted from user text
type EntityType string

const (
	EntityUniversity EntityType = "university"
	EntityDepartment EntityType = "department"
	EntityScoreType  EntityType = "scoreType"
	EntitySubjectNet EntityType = "subjectNet"
	EntityNumber     EntityType = "number"
	EntityCity       EntityType = "city"
)

// Intent is the classified purpose of a user utterance
type Intent string

const (
	IntentGreeting         Intent = "greeting"
	IntentFarewell         Intent = "farewell"
	IntentThanks           Intent = "thanks"
	IntentScoreQuery       Intent = "score_query"
	IntentNetCalculation   Intent = "net_calculation"
	IntentRankingQuery     Intent = "ranking_query"
	IntentDepartmentInfo   Intent = "department_info"
	IntentUniversityInfo   Intent = "university_info"
	IntentQuotaQuery       Intent = "quota_query"
	IntentScholarshipInfo  Intent = "scholarship_info"
	IntentComparison       Intent = "comparison"
	IntentPreferenceAdvice Intent = "preference_advice"
	IntentClarification    Intent = "clarification_needed"
)

// NetPair holds correct/wrong answer counts for one exam subject
type NetPair struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// Net returns the net score: correct answers minus a quarter per wrong answer
func (p NetPair) Net() float64 {
	return float64(p.Correct) - float64(p.Wrong)/4
}

// EntityMatch is one candidate entity extracted from normalized text.
// For subjectNet matches Value holds the canonical subject name and Pair
// carries the correct/wrong counts; for every other type Pair is nil.
type EntityMatch struct {
	Type       EntityType `json:"entityType"`
	Value      string     `json:"value"`
	Pair       *NetPair   `json:"pair,omitempty"`
	Confidence float64    `json:"confidence"` // 0.0-1.0
	Start      int        `json:"start"`
	End        int        `json:"end"`
}

// IntentClassification is the outcome of scoring an utterance against the
// weighted pattern table
type IntentClassification struct {
	Intent          Intent   `json:"intent"`
	Confidence      float64  `json:"confidence"` // 0.0-1.0
	MatchedKeywords []string `json:"matchedKeywords"`
}

// SuggestionKind distinguishes follow-up suggestion categories
type SuggestionKind string

const (
	SuggestionQuestion    SuggestionKind = "question"
	SuggestionAction      SuggestionKind = "action"
	SuggestionInformation SuggestionKind = "information"
)

// FollowUpSuggestion is one ranked follow-up offered after a turn.
// Priority is an inverted rank: 1 is shown first.
type FollowUpSuggestion struct {
	Kind     SuggestionKind `json:"kind"`
	Text     string         `json:"text"`
	Intent   Intent         `json:"intent,omitempty"`
	Entities map[string]any `json:"entities,omitempty"`
	Priority int            `json:"priority"`
}

// Result is the structured outcome of processing one user turn
type Result struct {
	Intent              Intent         `json:"intent"`
	Entities            map[string]any `json:"entities"`
	Confidence          float64        `json:"confidence"`
	Suggestions         []string       `json:"suggestions"`
	ClarificationNeeded bool           `json:"clarificationNeeded"`
	FollowUpQuestions   []string       `json:"followUpQuestions"`
}
