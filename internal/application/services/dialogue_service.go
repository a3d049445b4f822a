// Package services contains the application layer: the dialogue
// orchestrator, chat persistence and reply rendering, score lookups and
// the catalog import runner.
package services

import (
	"context"
	"log/slog"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/convo"
	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
	"github.com/tercihrehberi/tercihbot-go/internal/domain/nlu"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/manager"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/performance"
)

// subjectNetsKey is the accumulated-entities key carrying parsed
// per-subject correct/wrong pairs.
const subjectNetsKey = "subjectNets"

// Help is offered when at least confusionThreshold of the last
// confusionWindow stored user texts carry a confusion marker.
const (
	confusionWindow    = 5
	confusionThreshold = 2
)

// DialogueService runs the understanding pipeline for one user turn:
// normalize, extract, classify, update session context, then decide
// between answering and clarifying.
type DialogueService struct {
	normalizer *nlu.Normalizer
	registry   *nlu.Registry
	classifier *nlu.Classifier
	generator  *nlu.Generator
	cache      *manager.Manager
	logger     *logging.ChanneledLogger
	perf       *performance.Tracker
}

func NewDialogueService(
	normalizer *nlu.Normalizer,
	registry *nlu.Registry,
	classifier *nlu.Classifier,
	generator *nlu.Generator,
	cache *manager.Manager,
	logger *logging.ChanneledLogger,
	perf *performance.Tracker,
) *DialogueService {
	return &DialogueService{
		normalizer: normalizer,
		registry:   registry,
		classifier: classifier,
		generator:  generator,
		cache:      cache,
		logger:     logger,
		perf:       perf,
	}
}

// ProcessTurn understands one utterance. With a sessionID the returned
// result carries the session-wide accumulated entities, not just the
// ones found in this turn, so callers can answer multi-turn queries. An
// empty sessionID runs a stateless single-turn analysis that never
// touches the context store; priorEntities then seeds what is already
// known about the caller and is merged under this turn's findings.
func (s *DialogueService) ProcessTurn(ctx context.Context, sessionID, userID, text string, priorEntities map[string]any) (*dialogue.Result, error) {
	marker := s.perf.StartOperation("dialogue:process_turn")
	defer marker.Complete()

	stateless := sessionID == ""

	normalized := s.normalizer.ExpandAbbreviations(s.normalizer.Normalize(text))
	if normalized == "" {
		known := map[string]any{}
		if stateless {
			mergeKnownEntities(known, priorEntities)
		} else {
			known = s.cache.Conversations().GetAccumulatedEntities(sessionID)
		}
		marker.SetSuccess(true)
		return &dialogue.Result{
			Intent:              dialogue.IntentClarification,
			Entities:            known,
			Confidence:          0,
			ClarificationNeeded: true,
			FollowUpQuestions:   []string{"Sizi tam anlayamadım, sorunuzu yazabilir misiniz?"},
		}, nil
	}

	// Repeat detection must look at the turns before this one
	repeating := false
	if !stateless {
		repeating = s.cache.Conversations().IsRepeating(sessionID, text)
	}

	matches := s.registry.Extract(normalized)
	classification := s.classifier.Classify(normalized, matches)
	turnEntities := collectTurnEntities(matches)

	var accumulated map[string]any
	confusedTurns := 0
	if stateless {
		accumulated = make(map[string]any, len(priorEntities)+len(turnEntities))
		mergeKnownEntities(accumulated, priorEntities)
		mergeKnownEntities(accumulated, turnEntities)
		if s.generator.IsConfused(normalized) {
			confusedTurns = 1
		}
	} else {
		// A turn that only names an entity while the previous intent is
		// still waiting for it resumes that intent instead of starting a
		// new topic.
		if resumed, ok := s.resumePendingIntent(sessionID, classification, turnEntities); ok {
			classification = resumed
		}

		s.cache.Conversations().GetOrCreate(sessionID, userID)
		s.cache.Conversations().AddEntry(sessionID, &convo.Entry{
			Intent:   classification.Intent,
			Entities: turnEntities,
			UserText: text,
		})

		accumulated = s.cache.Conversations().GetAccumulatedEntities(sessionID)
		for _, stored := range s.cache.Conversations().RecentUserTexts(sessionID, confusionWindow) {
			if s.generator.IsConfused(s.normalizer.Normalize(stored)) {
				confusedTurns++
			}
		}
	}

	missing := s.generator.MissingEntities(classification.Intent, accumulated)
	clarificationNeeded := len(missing) > 0 || classification.Intent == dialogue.IntentClarification

	var followUps []string
	if clarificationNeeded {
		followUps = s.generator.Clarifications(classification.Intent, accumulated)
	}
	if repeating || confusedTurns >= confusionThreshold {
		followUps = append(followUps, s.generator.HelpOffer())
	}

	var suggestions []string
	if !clarificationNeeded {
		for _, sg := range s.generator.Suggestions(classification.Intent, accumulated) {
			suggestions = append(suggestions, sg.Text)
		}
	}

	s.logger.Dialogue().Info("Turn processed",
		slog.String("sessionId", sessionID),
		slog.String("intent", string(classification.Intent)),
		slog.Float64("confidence", classification.Confidence),
		slog.Int("entitiesThisTurn", len(turnEntities)),
		slog.Int("missing", len(missing)),
		slog.Bool("repeating", repeating),
		slog.String("state", s.cache.Conversations().GetState(sessionID).String()))

	marker.SetSuccess(true)
	marker.AddMetadata("intent", string(classification.Intent))

	return &dialogue.Result{
		Intent:              classification.Intent,
		Entities:            accumulated,
		Confidence:          classification.Confidence,
		Suggestions:         suggestions,
		ClarificationNeeded: clarificationNeeded,
		FollowUpQuestions:   followUps,
	}, nil
}

// resumedIntentConfidence is assigned when a turn is folded back into the
// intent that was waiting for clarification.
const resumedIntentConfidence = 0.75

// resumePendingIntent checks whether the current turn merely supplies an
// entity the previous intent was missing. Applies only to turns the
// keyword table did not recognize on their own.
func (s *DialogueService) resumePendingIntent(sessionID string, classification dialogue.IntentClassification, turnEntities map[string]any) (dialogue.IntentClassification, bool) {
	if len(classification.MatchedKeywords) > 0 || len(turnEntities) == 0 {
		return classification, false
	}

	pending, ok := s.cache.Conversations().LastIntent(sessionID)
	if !ok || len(nlu.RequiredEntities(pending)) == 0 {
		return classification, false
	}
	if len(s.cache.Conversations().GetMissingEntities(sessionID, pending)) == 0 {
		return classification, false
	}

	// The turn must actually contribute toward what is missing
	contributes := false
	for _, missing := range s.cache.Conversations().GetMissingEntities(sessionID, pending) {
		if _, present := turnEntities[string(missing)]; present {
			contributes = true
			break
		}
	}
	if !contributes {
		return classification, false
	}

	return dialogue.IntentClassification{
		Intent:     pending,
		Confidence: resumedIntentConfidence,
	}, true
}

// mergeKnownEntities folds src into dst last-write-wins, skipping nil and
// empty-string values the same way the conversation store does.
func mergeKnownEntities(dst, src map[string]any) {
	for key, value := range src {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		dst[key] = value
	}
}

// collectTurnEntities reduces raw matches to one value per entity type.
// Matches arrive sorted by confidence, so the first hit per type wins.
// Subject nets aggregate into a per-subject map and numbers into a list.
func collectTurnEntities(matches []dialogue.EntityMatch) map[string]any {
	entities := make(map[string]any)
	subjectNets := make(map[string]dialogue.NetPair)
	var numbers []string

	for _, m := range matches {
		switch m.Type {
		case dialogue.EntitySubjectNet:
			if m.Pair != nil {
				if _, seen := subjectNets[m.Value]; !seen {
					subjectNets[m.Value] = *m.Pair
				}
			}
		case dialogue.EntityNumber:
			numbers = append(numbers, m.Value)
		default:
			key := string(m.Type)
			if _, seen := entities[key]; !seen {
				entities[key] = m.Value
			}
		}
	}

	if len(subjectNets) > 0 {
		entities[subjectNetsKey] = subjectNets
	}
	if len(numbers) > 0 {
		entities[string(dialogue.EntityNumber)] = numbers
	}
	return entities
}
