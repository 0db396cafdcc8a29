// Package main implements the entry point for the Vocable API server,
// which schedules spaced-repetition vocabulary study and provides LLM
// integration for example sentences.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/lgrenier/vocable-api/internal/config"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run loads configuration, wires the application together, and serves
// until a shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"auto_migrate", cfg.Database.AutoMigrate,
		"llm_configured", cfg.LLM.GeminiAPIKey != "")

	ctx := context.Background()

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(db, appLogger); err != nil {
			closeDatabase(db, appLogger)
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		closeDatabase(db, appLogger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Run(ctx); err != nil {
		appLogger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	return nil
}
