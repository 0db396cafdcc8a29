package api

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lgrenier/vocable-api/internal/api/shared"
	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/redact"
	"github.com/lgrenier/vocable-api/internal/store"
)

// exportWordLimit bounds how many words a single export returns.
const exportWordLimit = 10000

// WordbookHandler handles wordbook management HTTP requests.
type WordbookHandler struct {
	tx        store.TxRunner
	wordbooks store.WordbookStore
	words     store.WordStore
	logger    *slog.Logger
}

// NewWordbookHandler creates a new WordbookHandler.
func NewWordbookHandler(
	tx store.TxRunner,
	wordbooks store.WordbookStore,
	words store.WordStore,
	log *slog.Logger,
) *WordbookHandler {
	if tx == nil || wordbooks == nil || words == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tx, wordbooks and words cannot be nil for WordbookHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for WordbookHandler")
	}

	return &WordbookHandler{
		tx:        tx,
		wordbooks: wordbooks,
		words:     words,
		logger:    log.With(slog.String("component", "wordbook_handler")),
	}
}

// CreateWordbookRequest is the request body for creating a wordbook.
type CreateWordbookRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Language    string `json:"language"    validate:"required,max=50"`
	Author      string `json:"author"      validate:"max=200"`
	Version     string `json:"version"     validate:"max=50"`
}

// Create handles POST /wordbooks requests.
func (h *WordbookHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateWordbookRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	wordbook, err := domain.NewWordbook(req.Name, req.Description, req.Language)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid wordbook data", err)
		return
	}
	wordbook.Author = req.Author
	wordbook.Version = req.Version

	if err := h.wordbooks.Create(r.Context(), wordbook); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("wordbook created",
		slog.Int64("wordbook_id", wordbook.ID),
		slog.String("name", wordbook.Name))
	shared.RespondWithJSON(w, r, http.StatusCreated, wordbook)
}

// List handles GET /wordbooks requests.
func (h *WordbookHandler) List(w http.ResponseWriter, r *http.Request) {
	wordbooks, err := h.wordbooks.List(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, wordbooks)
}

// Get handles GET /wordbooks/{id} requests.
func (h *WordbookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	wordbook, err := h.wordbooks.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, wordbook)
}

// GetActive handles GET /wordbooks/active requests.
// It returns the currently active wordbook, 404 when none is active.
func (h *WordbookHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	wordbook, err := h.wordbooks.GetActive(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoActiveWordbook) {
			shared.RespondWithError(w, r, http.StatusNotFound, "No active wordbook")
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, wordbook)
}

// UpdateWordbookRequest is the request body for updating a wordbook.
// Absent fields keep their current value.
type UpdateWordbookRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Author      *string `json:"author"      validate:"omitempty,max=200"`
	Version     *string `json:"version"     validate:"omitempty,max=50"`
}

// Update handles PUT /wordbooks/{id} requests.
func (h *WordbookHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateWordbookRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	wordbook, err := h.wordbooks.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if req.Name != nil {
		wordbook.Name = *req.Name
	}
	if req.Description != nil {
		wordbook.Description = *req.Description
	}
	if req.Author != nil {
		wordbook.Author = *req.Author
	}
	if req.Version != nil {
		wordbook.Version = *req.Version
	}

	if err := h.wordbooks.Update(r.Context(), wordbook); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, wordbook)
}

// Activate handles POST /wordbooks/{id}/activate requests.
// It makes the wordbook the active one; any previously active wordbook
// is deactivated in the same transaction.
func (h *WordbookHandler) Activate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.tx.RunInTransaction(r.Context(), func(ctx context.Context, tx *sql.Tx) error {
		return h.wordbooks.WithTx(tx).Activate(ctx, id)
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	wordbook, err := h.wordbooks.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("wordbook activated", slog.Int64("wordbook_id", id))
	shared.RespondWithJSON(w, r, http.StatusOK, wordbook)
}

// Delete handles DELETE /wordbooks/{id} requests.
// The active wordbook cannot be deleted; words, cards and review
// history of deleted wordbooks are removed by cascade.
func (h *WordbookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	wordbook, err := h.wordbooks.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if wordbook.IsActive {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Cannot delete the active wordbook. Activate another wordbook first.")
		return
	}

	if err := h.wordbooks.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("wordbook deleted", slog.Int64("wordbook_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /wordbooks/{id}/stats requests.
func (h *WordbookHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// 404 for unknown wordbooks instead of empty stats.
	if _, err := h.wordbooks.Get(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	stats, err := h.wordbooks.Stats(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// WordbookExport is the response body of a wordbook export: the
// wordbook metadata plus every word it contains.
type WordbookExport struct {
	Wordbook *domain.Wordbook `json:"wordbook"`
	Words    []*domain.Word   `json:"words"`
}

// Export handles POST /wordbooks/{id}/export requests.
// The format query parameter selects the output: json (default) or csv.
func (h *WordbookHandler) Export(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Format must be json or csv")
		return
	}

	wordbook, err := h.wordbooks.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	words, _, err := h.words.List(r.Context(), id, store.WordFilter{Limit: exportWordLimit})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if format == "csv" {
		h.exportCSV(w, log, wordbook, words)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, WordbookExport{
		Wordbook: wordbook,
		Words:    words,
	})
}

// exportCSV streams the words as a CSV attachment with a header row.
func (h *WordbookHandler) exportCSV(w http.ResponseWriter, log *slog.Logger, wordbook *domain.Wordbook, words []*domain.Word) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", wordbook.Name+".csv"))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	record := []string{"lemma", "meaning", "pos", "gender", "ipa", "lesson", "cefr"}
	if err := cw.Write(record); err != nil {
		log.Error("failed to write export", slog.String("error", redact.Error(err)))
		return
	}
	for _, word := range words {
		record = []string{
			word.Lemma,
			word.Meaning,
			word.Pos,
			word.Gender,
			word.IPA,
			word.Lesson,
			word.CEFR,
		}
		if err := cw.Write(record); err != nil {
			log.Error("failed to write export", slog.String("error", redact.Error(err)))
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Error("failed to flush export", slog.String("error", redact.Error(err)))
	}
}

// pathID parses the {id} URL parameter, writing a 400 response and
// returning ok=false when it is missing or malformed.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "ID is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid ID format")
		return 0, false
	}
	return id, true
}
