package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lgrenier/vocable-api/internal/api"
	apiMiddleware "github.com/lgrenier/vocable-api/internal/api/middleware"
	"github.com/lgrenier/vocable-api/internal/store"
)

// setupRouter creates the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	txRunner := store.NewSQLTxRunner(app.db)

	studyHandler := api.NewStudyHandler(app.schedulerService, app.config.Study, app.logger)
	wordbookHandler := api.NewWordbookHandler(txRunner, app.wordbookStore, app.wordStore, app.logger)
	wordHandler := api.NewWordHandler(app.wordStore, app.wordbookStore, app.cardStore, app.logger)
	importHandler := api.NewImportHandler(app.importerService, app.importStore, app.logger)
	settingsHandler := api.NewSettingsHandler(app.settingStore, app.logger)
	exampleHandler := api.NewExampleHandler(
		app.generator, app.wordStore, app.cardStore, app.wordbookStore, app.exampleStore, app.logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Study scheduling
		r.Get("/study/next", studyHandler.BuildQueue)
		r.Post("/review", studyHandler.SubmitReview)
		r.Get("/study/stats", studyHandler.Stats)
		r.Get("/study/progress", studyHandler.Progress)
		r.Get("/study/due-forecast", studyHandler.DueForecast)

		// Wordbook management
		r.Post("/wordbooks", wordbookHandler.Create)
		r.Get("/wordbooks", wordbookHandler.List)
		r.Get("/wordbooks/active", wordbookHandler.GetActive)
		r.Get("/wordbooks/{id}", wordbookHandler.Get)
		r.Put("/wordbooks/{id}", wordbookHandler.Update)
		r.Delete("/wordbooks/{id}", wordbookHandler.Delete)
		r.Post("/wordbooks/{id}/activate", wordbookHandler.Activate)
		r.Get("/wordbooks/{id}/stats", wordbookHandler.Stats)
		r.Post("/wordbooks/{id}/export", wordbookHandler.Export)
		r.Get("/wordbooks/{id}/words", wordHandler.List)

		// Word browsing
		r.Get("/words/search", wordHandler.Search)
		r.Get("/words/suggest", wordHandler.Suggest)
		r.Get("/words/{id}", wordHandler.Get)
		r.Delete("/words/{id}", wordHandler.Delete)

		// Vocabulary imports
		r.Post("/imports/upload", importHandler.Upload)
		r.Get("/imports", importHandler.List)
		r.Get("/imports/{id}", importHandler.Get)

		// Example sentences
		r.Post("/words/{id}/examples/generate", exampleHandler.Generate)
		r.Get("/cards/{id}/examples", exampleHandler.List)
		r.Delete("/examples/{id}", exampleHandler.Delete)

		// Settings
		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings", settingsHandler.Update)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
