package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lgrenier/vocable-api/internal/config"
	"github.com/lgrenier/vocable-api/internal/domain/srs"
	"github.com/lgrenier/vocable-api/internal/generation"
	"github.com/lgrenier/vocable-api/internal/platform/gemini"
	"github.com/lgrenier/vocable-api/internal/platform/postgres"
	"github.com/lgrenier/vocable-api/internal/service/importer"
	"github.com/lgrenier/vocable-api/internal/service/scheduler"
	"github.com/lgrenier/vocable-api/internal/store"
)

// application holds the shared application dependencies to simplify
// wiring and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	wordbookStore store.WordbookStore
	wordStore     store.WordStore
	cardStore     store.CardStore
	srsStateStore store.SRSStateStore
	reviewStore   store.ReviewStore
	exampleStore  store.ExampleStore
	importStore   store.ImportStore
	settingStore  store.SettingStore

	// Services
	schedulerService *scheduler.Service
	importerService  *importer.Service
	generator        generation.ExampleGenerator
}

// newApplication creates an application instance with all dependencies
// initialized. Configuration, logging and the database connection must
// already be established.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Stores
	app.wordbookStore = postgres.NewWordbookStore(db, logger)
	app.wordStore = postgres.NewWordStore(db, logger)
	app.cardStore = postgres.NewCardStore(db, logger)
	app.srsStateStore = postgres.NewSRSStateStore(db, logger)
	app.reviewStore = postgres.NewReviewStore(db, logger)
	app.exampleStore = postgres.NewExampleStore(db, logger)
	app.importStore = postgres.NewImportStore(db, logger)
	app.settingStore = postgres.NewSettingStore(db, logger)

	txRunner := store.NewSQLTxRunner(db)

	// Scheduler with the default algorithm registry and random tie
	// breaking.
	app.schedulerService = scheduler.NewService(
		txRunner,
		app.wordbookStore,
		app.cardStore,
		app.srsStateStore,
		app.reviewStore,
		srs.NewRegistry(),
		nil,
		logger,
	)

	app.importerService = importer.NewService(
		txRunner,
		app.wordbookStore,
		app.wordStore,
		app.cardStore,
		app.srsStateStore,
		app.importStore,
		logger,
	)

	// Example generation is optional; without an API key the endpoint
	// answers 501 and everything else works normally.
	gen, err := gemini.NewGenerator(ctx, cfg.LLM, logger)
	switch {
	case err == nil:
		app.generator = gen
		logger.Info("example generator initialized", "model", cfg.LLM.ModelName)
	case errors.Is(err, generation.ErrNotConfigured):
		logger.Info("no Gemini API key configured, example generation disabled")
	default:
		return nil, fmt.Errorf("failed to initialize example generator: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources on shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}
	app.logger.Info("application shutdown completed")
}
