package nlu

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
)

const (
	aliasConfidence      = 0.9
	patternConfidence    = 0.75
	closedVocabConfidence = 0.95
	subjectNetConfidence = 0.95
	numberConfidence     = 0.6
	fuzzyThreshold       = 0.85
)

// Extractor recognizes one family of entities inside normalized text.
// Extract expects text that already went through Normalize and
// ExpandAbbreviations; implementations never mutate shared state.
type Extractor interface {
	CanHandle(entityType dialogue.EntityType) bool
	Extract(text string) []dialogue.EntityMatch
}

// Registry fans text out to every registered extractor and returns the
// combined matches ordered by confidence, ties preserving registration
// order. Overlapping matches of different types are all returned; the
// caller decides how to consume them.
type Registry struct {
	extractors []Extractor
}

// NewRegistry builds the default extractor set: dictionary extractors for
// universities, departments and cities, the suffix-pattern department
// extractor, the closed score-type vocabulary, subject nets and bare
// numbers.
func NewRegistry(normalizer *Normalizer) *Registry {
	return &Registry{
		extractors: []Extractor{
			newAliasExtractor(dialogue.EntityUniversity, universityAliases, normalizer),
			newAliasExtractor(dialogue.EntityDepartment, departmentAliases, normalizer),
			newDepartmentPatternExtractor(),
			newScoreTypeExtractor(),
			newSubjectNetExtractor(),
			newAliasExtractor(dialogue.EntityCity, cityAliases, normalizer),
			newNumberExtractor(),
		},
	}
}

// Register appends a custom extractor behind the defaults
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// Extract runs every extractor over the text and returns all candidate
// matches sorted by descending confidence. The sort is stable so equal
// confidences keep extractor registration order.
func (r *Registry) Extract(text string) []dialogue.EntityMatch {
	var matches []dialogue.EntityMatch
	for _, e := range r.extractors {
		matches = append(matches, e.Extract(text)...)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// ExtractTyped filters Extract down to one entity type
func (r *Registry) ExtractTyped(text string, entityType dialogue.EntityType) []dialogue.EntityMatch {
	var matches []dialogue.EntityMatch
	for _, e := range r.extractors {
		if !e.CanHandle(entityType) {
			continue
		}
		for _, m := range e.Extract(text) {
			if m.Type == entityType {
				matches = append(matches, m)
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// findPhrase locates phrase as a whole-word substring of text and returns
// rune offsets of the match.
func findPhrase(text, phrase string) (start, end int, ok bool) {
	padded := " " + text + " "
	idx := strings.Index(padded, " "+phrase+" ")
	if idx < 0 {
		return 0, 0, false
	}
	start = utf8.RuneCountInString(text[:idx])
	end = start + utf8.RuneCountInString(phrase)
	return start, end, true
}

// aliasExtractor matches a canonical-name dictionary against the text.
// Aliases are tried longest-first so the most specific surface form sets
// the span; one canonical yields at most one match. When no alias hits
// exactly, single-word aliases fall back to edit-distance comparison
// against individual words to absorb typos.
type aliasExtractor struct {
	entityType dialogue.EntityType
	normalizer *Normalizer
	canonical  []string
	aliases    map[string][]string
}

func newAliasExtractor(entityType dialogue.EntityType, aliases map[string][]string, normalizer *Normalizer) *aliasExtractor {
	canonical := make([]string, 0, len(aliases))
	for name := range aliases {
		canonical = append(canonical, name)
	}
	sort.Strings(canonical)

	sorted := make(map[string][]string, len(aliases))
	for name, list := range aliases {
		cp := append([]string(nil), list...)
		sort.SliceStable(cp, func(i, j int) bool { return len(cp[i]) > len(cp[j]) })
		sorted[name] = cp
	}

	return &aliasExtractor{
		entityType: entityType,
		normalizer: normalizer,
		canonical:  canonical,
		aliases:    sorted,
	}
}

func (e *aliasExtractor) CanHandle(entityType dialogue.EntityType) bool {
	return entityType == e.entityType
}

func (e *aliasExtractor) Extract(text string) []dialogue.EntityMatch {
	var matches []dialogue.EntityMatch
	words := strings.Fields(text)

	for _, name := range e.canonical {
		match, ok := e.matchCanonical(text, words, name)
		if ok {
			matches = append(matches, match)
		}
	}
	return matches
}

func (e *aliasExtractor) matchCanonical(text string, words []string, name string) (dialogue.EntityMatch, bool) {
	for _, alias := range e.aliases[name] {
		if start, end, ok := findPhrase(text, alias); ok {
			return dialogue.EntityMatch{
				Type:       e.entityType,
				Value:      name,
				Confidence: aliasConfidence,
				Start:      start,
				End:        end,
			}, true
		}
	}

	// Typo fallback, single-word aliases only
	for _, alias := range e.aliases[name] {
		if strings.ContainsRune(alias, ' ') || utf8.RuneCountInString(alias) < 4 {
			continue
		}
		offset := 0
		for _, word := range words {
			sim := e.normalizer.Similarity(word, alias)
			if sim >= fuzzyThreshold {
				start := offset
				return dialogue.EntityMatch{
					Type:       e.entityType,
					Value:      name,
					Confidence: aliasConfidence * sim,
					Start:      start,
					End:        start + utf8.RuneCountInString(word),
				}, true
			}
			offset += utf8.RuneCountInString(word) + 1
		}
	}
	return dialogue.EntityMatch{}, false
}

// departmentPatternExtractor catches departments the dictionary misses by
// their Turkish program suffix ("X mühendisliği", "Y öğretmenliği").
type departmentPatternExtractor struct {
	pattern *regexp.Regexp
}

func newDepartmentPatternExtractor() *departmentPatternExtractor {
	return &departmentPatternExtractor{
		pattern: regexp.MustCompile(`(?:^|\s)([\wçğıöşü]+(?:\s[\wçğıöşü]+)?\s(?:mühendisliği|öğretmenliği|bölümü|programı))(?:\s|$)`),
	}
}

func (e *departmentPatternExtractor) CanHandle(entityType dialogue.EntityType) bool {
	return entityType == dialogue.EntityDepartment
}

func (e *departmentPatternExtractor) Extract(text string) []dialogue.EntityMatch {
	var matches []dialogue.EntityMatch
	for _, loc := range e.pattern.FindAllStringSubmatchIndex(text, -1) {
		captured := text[loc[2]:loc[3]]
		capStart := loc[2]

		// The greedy prefix can swallow the tail of a university name,
		// as in "marmara üniversitesi bilgisayar mühendisliği".
		for _, stop := range []string{"üniversitesi ", "üniversite "} {
			if strings.HasPrefix(captured, stop) {
				captured = captured[len(stop):]
				capStart += len(stop)
				break
			}
		}
		if !strings.ContainsRune(captured, ' ') {
			continue
		}

		start := utf8.RuneCountInString(text[:capStart])
		matches = append(matches, dialogue.EntityMatch{
			Type:       dialogue.EntityDepartment,
			Value:      captured,
			Confidence: patternConfidence,
			Start:      start,
			End:        start + utf8.RuneCountInString(captured),
		})
	}
	return matches
}

// scoreTypeExtractor matches the closed score-type vocabulary as whole
// words, returning canonical type codes.
type scoreTypeExtractor struct {
	canonical []string
}

func newScoreTypeExtractor() *scoreTypeExtractor {
	canonical := make([]string, 0, len(scoreTypeVocab))
	for code := range scoreTypeVocab {
		canonical = append(canonical, code)
	}
	sort.Strings(canonical)
	return &scoreTypeExtractor{canonical: canonical}
}

func (e *scoreTypeExtractor) CanHandle(entityType dialogue.EntityType) bool {
	return entityType == dialogue.EntityScoreType
}

func (e *scoreTypeExtractor) Extract(text string) []dialogue.EntityMatch {
	var matches []dialogue.EntityMatch
	for _, code := range e.canonical {
		for _, synonym := range scoreTypeVocab[code] {
			if start, end, ok := findPhrase(text, synonym); ok {
				matches = append(matches, dialogue.EntityMatch{
					Type:       dialogue.EntityScoreType,
					Value:      code,
					Confidence: closedVocabConfidence,
					Start:      start,
					End:        end,
				})
				break
			}
		}
	}
	return matches
}

// subjectNetExtractor parses "matematik 35 doğru 5 yanlış" style fragments
// into per-subject correct/wrong pairs. A missing second number means zero
// wrong answers.
type subjectNetExtractor struct {
	pattern *regexp.Regexp
}

func newSubjectNetExtractor() *subjectNetExtractor {
	alternation := strings.Join(subjectNames, "|")
	return &subjectNetExtractor{
		pattern: regexp.MustCompile(`(?:^|\s)(` + alternation + `)(?:\s(?:den|dan|testi|testinden|neti|netim))?\s(\d{1,2})(?:\s?(?:doğru|dogru|d))?(?:\s(\d{1,2})\s?(?:yanlış|yanlis|y))?`),
	}
}

func (e *subjectNetExtractor) CanHandle(entityType dialogue.EntityType) bool {
	return entityType == dialogue.EntitySubjectNet
}

func (e *subjectNetExtractor) Extract(text string) []dialogue.EntityMatch {
	var matches []dialogue.EntityMatch
	for _, groups := range e.pattern.FindAllStringSubmatchIndex(text, -1) {
		subject := text[groups[2]:groups[3]]
		correct, err := strconv.Atoi(text[groups[4]:groups[5]])
		if err != nil {
			continue
		}
		wrong := 0
		if groups[6] >= 0 {
			wrong, _ = strconv.Atoi(text[groups[6]:groups[7]])
		}
		start := utf8.RuneCountInString(text[:groups[2]])
		matched := text[groups[2]:groups[1]]
		matches = append(matches, dialogue.EntityMatch{
			Type:       dialogue.EntitySubjectNet,
			Value:      subject,
			Pair:       &dialogue.NetPair{Correct: correct, Wrong: wrong},
			Confidence: subjectNetConfidence,
			Start:      start,
			End:        start + utf8.RuneCountInString(strings.TrimRight(matched, " ")),
		})
	}
	return matches
}

// numberExtractor catches standalone numeric values (scores, rankings,
// years). Integer or decimal with '.' or ',' separator.
type numberExtractor struct {
	pattern *regexp.Regexp
}

func newNumberExtractor() *numberExtractor {
	return &numberExtractor{
		pattern: regexp.MustCompile(`(?:^|\s)(\d+(?:[.,]\d+)?)(?:\s|$)`),
	}
}

func (e *numberExtractor) CanHandle(entityType dialogue.EntityType) bool {
	return entityType == dialogue.EntityNumber
}

func (e *numberExtractor) Extract(text string) []dialogue.EntityMatch {
	var matches []dialogue.EntityMatch
	rest := text
	base := 0
	for {
		loc := e.pattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		value := rest[loc[2]:loc[3]]
		start := base + utf8.RuneCountInString(rest[:loc[2]])
		matches = append(matches, dialogue.EntityMatch{
			Type:       dialogue.EntityNumber,
			Value:      strings.ReplaceAll(value, ",", "."),
			Confidence: numberConfidence,
			Start:      start,
			End:        start + utf8.RuneCountInString(value),
		})
		base += utf8.RuneCountInString(rest[:loc[3]])
		rest = rest[loc[3]:]
	}
	return matches
}
