// Package container wires the application together: infrastructure,
// caches, the dialogue engine and the services handed to transport.
package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tercihrehberi/tercihbot-go/internal/application/services"
	"github.com/tercihrehberi/tercihbot-go/internal/domain/nlu"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/cleanup"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/manager"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/importer"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/performance"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/database"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/persistence/repositories"
	"github.com/tercihrehberi/tercihbot-go/pkg/config"
)

// Container holds every long-lived dependency
type Container struct {
	Logger *logging.ChanneledLogger
	Perf   *performance.Tracker
	DB     *database.Database
	Cache  *manager.Manager

	Universities *repositories.UniversityRepository
	Departments  *repositories.DepartmentRepository
	Scores       *repositories.ScoreRepository
	Chats        *repositories.ChatRepository

	DialogueService *services.DialogueService
	ChatService     *services.ChatService
	ScoreService    *services.ScoreService
	ImportService   *services.ImportService

	cleanupWorker *cleanup.Worker
}

// NewContainer builds and starts the dependency graph: logging, database
// with schema and seed data, caches, the dialogue engine and services,
// plus the background cleanup worker.
func NewContainer(ctx context.Context) (*Container, error) {
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	perf := performance.NewTracker()

	db, err := database.NewDatabase(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.CreateTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	normalizer := nlu.NewNormalizer()
	cache := manager.NewManager(normalizer, logger)

	universities := repositories.NewUniversityRepository(db, cache.Catalog(), logger)
	departments := repositories.NewDepartmentRepository(db, cache.Catalog(), logger)
	scores := repositories.NewScoreRepository(db, cache.Catalog(), logger)
	chats := repositories.NewChatRepository(db, logger)

	seeder := repositories.NewSeeder(universities, departments, scores, logger)
	if err := seeder.SeedIfEmpty(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	dialogueService := services.NewDialogueService(
		normalizer,
		nlu.NewRegistry(normalizer),
		nlu.NewClassifier(),
		nlu.NewGenerator(config.MaxSuggestions),
		cache,
		logger,
		perf,
	)
	scoreService := services.NewScoreService(scores, logger)
	chatService := services.NewChatService(dialogueService, scoreService, chats, cache, logger, perf)

	scraper := importer.NewScraper(
		&http.Client{Timeout: config.ImportFetchTimeout},
		config.ImportConcurrency,
		logger,
	)
	importService := services.NewImportService(scraper, scores, cache, logger, perf)

	worker := cleanup.NewWorker(cache, logger, config.SweepInterval)
	worker.Start(ctx)

	logger.Startup().Info("Container initialized")

	return &Container{
		Logger:          logger,
		Perf:            perf,
		DB:              db,
		Cache:           cache,
		Universities:    universities,
		Departments:     departments,
		Scores:          scores,
		Chats:           chats,
		DialogueService: dialogueService,
		ChatService:     chatService,
		ScoreService:    scoreService,
		ImportService:   importService,
		cleanupWorker:   worker,
	}, nil
}

// Shutdown stops background work and releases resources in reverse
// dependency order.
func (c *Container) Shutdown() {
	c.Logger.Shutdown().Info("Container shutting down")
	c.cleanupWorker.Stop()
	if err := c.DB.Close(); err != nil {
		c.Logger.Shutdown().Error("Database close failed", "error", err)
	}
	c.Logger.Close()
}
