package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/manager"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/importer"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/performance"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/repositories"
	"github.com/tercihrehberi/tercihbot-go/pkg/config"
)

// ImportService runs catalog refreshes: scrape the configured score
// pages, upsert the records and drop the catalog cache.
type ImportService struct {
	scraper *importer.Scraper
	scores  *repositories.ScoreRepository
	cache   *manager.Manager
	logger  *logging.ChanneledLogger
	perf    *performance.Tracker
}

func NewImportService(
	scraper *importer.Scraper,
	scores *repositories.ScoreRepository,
	cache *manager.Manager,
	logger *logging.ChanneledLogger,
	perf *performance.Tracker,
) *ImportService {
	return &ImportService{
		scraper: scraper,
		scores:  scores,
		cache:   cache,
		logger:  logger,
		perf:    perf,
	}
}

// Run imports score records from the given URLs, falling back to the
// configured source list when none are passed. Returns how many records
// were written.
func (s *ImportService) Run(ctx context.Context, urls []string) (int, error) {
	marker := s.perf.StartOperation("import:run")
	defer marker.Complete()

	if len(urls) == 0 {
		if config.ImportSourceURL == "" {
			err := fmt.Errorf("no import URLs given and IMPORT_SOURCE_URL is not set")
			marker.SetError(err)
			return 0, err
		}
		urls = strings.Split(config.ImportSourceURL, ",")
	}

	start := time.Now()
	records, err := s.scraper.Run(ctx, urls)
	if err != nil {
		marker.SetError(err)
		return 0, err
	}

	written := 0
	for _, rec := range records {
		if err := s.scores.Upsert(ctx, rec); err != nil {
			marker.SetError(err)
			return written, err
		}
		written++
	}

	s.cache.Catalog().InvalidateAll()

	s.logger.Import().Info("Import run completed",
		slog.Int("urls", len(urls)),
		slog.Int("records", written),
		slog.Duration("duration", time.Since(start)))

	marker.SetSuccess(true)
	marker.AddMetadata("records", written)
	return written, nil
}
