package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/catalog"
	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/repositories"
)

// Exam scoring model used for rough net estimates. A raw TYT/AYT score
// starts from the base and each net adds roughly the same increment.
const (
	baseExamScore    = 100.0
	pointsPerNet     = 4.0
	maxEstimatedNets = 120.0
)

// ScoreService answers placement questions from historical score records
// and computes exam net arithmetic.
type ScoreService struct {
	scores *repositories.ScoreRepository
	logger *logging.ChanneledLogger
}

func NewScoreService(scores *repositories.ScoreRepository, logger *logging.ChanneledLogger) *ScoreService {
	return &ScoreService{scores: scores, logger: logger}
}

// LookupLatest returns the newest score record for a placement. When
// scoreType is empty the newest record of any type wins. Returns nil
// without error when no data exists.
func (s *ScoreService) LookupLatest(ctx context.Context, university, department, scoreType string) (*catalog.ScoreRecord, error) {
	if scoreType != "" {
		return s.scores.FindLatest(ctx, university, department, strings.ToUpper(scoreType))
	}

	records, err := s.scores.FindByPlacement(ctx, university, department)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	latest := records[0]
	for _, rec := range records[1:] {
		if rec.Year > latest.Year {
			latest = rec
		}
	}
	return latest, nil
}

// History returns all records for a placement sorted newest first
func (s *ScoreService) History(ctx context.Context, university, department string) ([]*catalog.ScoreRecord, error) {
	records, err := s.scores.FindByPlacement(ctx, university, department)
	if err != nil {
		return nil, err
	}
	sorted := append([]*catalog.ScoreRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year > sorted[j].Year })
	return sorted, nil
}

// TotalNet sums per-subject nets. Each wrong answer cancels a quarter of
// a correct one.
func (s *ScoreService) TotalNet(nets map[string]dialogue.NetPair) float64 {
	var total float64
	for _, pair := range nets {
		total += pair.Net()
	}
	return total
}

// EstimateRequiredNets converts a minimum placement score into the rough
// total net count needed to reach it, clamped to the exam ceiling.
func (s *ScoreService) EstimateRequiredNets(minScore float64) float64 {
	if minScore <= baseExamScore {
		return 0
	}
	nets := (minScore - baseExamScore) / pointsPerNet
	if nets > maxEstimatedNets {
		return maxEstimatedNets
	}
	return nets
}

// EstimateScore converts a total net count into a rough exam score
func (s *ScoreService) EstimateScore(totalNet float64) float64 {
	if totalNet < 0 {
		totalNet = 0
	}
	return baseExamScore + totalNet*pointsPerNet
}

// FormatScore renders a score with the Turkish decimal comma
func FormatScore(score float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.2f", score), ".", ",")
}
