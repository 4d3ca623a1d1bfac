package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/flashcard-api/internal/config"
	"github.com/phrazzld/flashcard-api/internal/domain/srs"
	"github.com/phrazzld/flashcard-api/internal/events"
	"github.com/phrazzld/flashcard-api/internal/generation"
	"github.com/phrazzld/flashcard-api/internal/importer"
	"github.com/phrazzld/flashcard-api/internal/platform/gemini"
	"github.com/phrazzld/flashcard-api/internal/platform/postgres"
	"github.com/phrazzld/flashcard-api/internal/redact"
	"github.com/phrazzld/flashcard-api/internal/service"
	"github.com/phrazzld/flashcard-api/internal/service/auth"
	"github.com/phrazzld/flashcard-api/internal/task"
	"github.com/spf13/pflag"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	stores    service.Stores
	taskStore task.TaskStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	generator        generation.Generator

	userService      service.UserService
	deckService      service.DeckService
	cardService      service.CardService
	reviewService    service.ReviewService
	aiService        service.AIService
	highlightService service.HighlightService
	importService    service.ImportService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// runServe is the body of the serve command.
func runServe(ctx context.Context, flags *pflag.FlagSet) error {
	cfg, err := loadAppConfig(flags)
	if err != nil {
		return err
	}
	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}
	logConfig(logger, cfg)

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := ensureSchema(ctx, db, logger); err != nil {
		_ = db.Close()
		return err
	}

	generator, err := gemini.NewGeminiGenerator(ctx, logger.With(slog.String("component", "llm_generator")), cfg.LLM)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize LLM generator: %w", err)
	}

	app, err := newApplication(cfg, logger, db, generator)
	if err != nil {
		_ = db.Close()
		return err
	}
	if err := app.startTaskRunner(); err != nil {
		app.cleanup()
		return err
	}
	defer app.cleanup()

	return app.Run(ctx)
}

// ensureSchema applies pending migrations so a fresh database is usable.
func ensureSchema(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return executeMigration(ctx, db, migrateUp, logger.With(slog.String("component", "migrations")))
}

// newApplication wires stores, services and the background pipeline. The
// task runner is created but not started.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	generator generation.Generator,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		generator: generator,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.passwordVerifier = auth.NewBcryptVerifier()
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.stores = service.Stores{
		Users:       postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger),
		Collections: postgres.NewPostgresCollectionStore(db, logger),
		Decks:       postgres.NewPostgresDeckStore(db, logger),
		Notetypes:   postgres.NewPostgresNotetypeStore(db, logger),
		Notes:       postgres.NewPostgresNoteStore(db, logger),
		Cards:       postgres.NewPostgresCardStore(db, logger),
		RevLogs:     postgres.NewPostgresRevLogStore(db, logger),
		Highlights:  postgres.NewPostgresHighlightStore(db, logger),
	}
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	if err := app.setupServices(); err != nil {
		return nil, err
	}
	if err := app.setupHighlightPipeline(); err != nil {
		return nil, err
	}

	logger.Info("application initialized")
	return app, nil
}

func (app *application) setupServices() error {
	var err error
	db, stores, logger := app.db, app.stores, app.logger

	if app.userService, err = service.NewUserService(db, stores, logger); err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	if app.deckService, err = service.NewDeckService(db, stores, logger); err != nil {
		return fmt.Errorf("failed to create deck service: %w", err)
	}
	if app.cardService, err = service.NewCardService(db, stores, logger); err != nil {
		return fmt.Errorf("failed to create card service: %w", err)
	}
	if app.reviewService, err = service.NewReviewService(db, stores, srs.NewDefaultService(), logger); err != nil {
		return fmt.Errorf("failed to create review service: %w", err)
	}
	if app.aiService, err = service.NewAIService(app.deckService, app.cardService, app.generator, logger); err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	maxUpload := int64(app.config.Server.MaxUploadMB) << 20
	app.importService, err = service.NewImportService(
		importer.DefaultRegistry(),
		app.deckService,
		app.cardService,
		maxUpload,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create import service: %w", err)
	}
	return nil
}

// setupHighlightPipeline connects highlight submissions to background
// card generation: the highlight service emits an event, the event handler
// builds a task and the runner executes it.
func (app *application) setupHighlightPipeline() error {
	app.eventEmitter = events.NewInMemoryEventEmitter(app.logger)

	var err error
	app.highlightService, err = service.NewHighlightService(app.stores, app.eventEmitter, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create highlight service: %w", err)
	}

	factory := task.NewHighlightGenerationTaskFactory(
		app.highlightService,
		app.generator,
		app.cardService,
		app.logger,
	)
	registry := task.NewRegistry()
	factory.Register(registry)

	app.taskRunner = task.NewTaskRunner(app.taskStore, registry, task.TaskRunnerConfig{
		QueueSize:    app.config.Task.QueueSize,
		WorkerCount:  app.config.Task.WorkerCount,
		StuckTaskAge: time.Duration(app.config.Task.StuckTaskAgeMinutes) * time.Minute,
	}, app.logger)

	app.eventEmitter.RegisterHandler(task.NewTaskFactoryEventHandler(factory, app.taskRunner, app.logger))
	return nil
}

func (app *application) startTaskRunner() error {
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the task runner and closes the database.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", redact.Error(err)))
		}
	}
	app.logger.Info("application shutdown completed")
}
