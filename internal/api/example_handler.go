package api

import (
	"log/slog"
	"net/http"

	"github.com/lgrenier/vocable-api/internal/api/shared"
	"github.com/lgrenier/vocable-api/internal/generation"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// Example generation bounds.
const (
	defaultExampleCount = 3
	maxExampleCount     = 10
)

// ExampleHandler handles example sentence HTTP requests. The generator
// may be nil when no LLM is configured; generation then responds with
// 501 while stored examples remain readable.
type ExampleHandler struct {
	generator generation.ExampleGenerator
	words     store.WordStore
	cards     store.CardStore
	wordbooks store.WordbookStore
	examples  store.ExampleStore
	logger    *slog.Logger
}

// NewExampleHandler creates a new ExampleHandler.
func NewExampleHandler(
	generator generation.ExampleGenerator,
	words store.WordStore,
	cards store.CardStore,
	wordbooks store.WordbookStore,
	examples store.ExampleStore,
	log *slog.Logger,
) *ExampleHandler {
	if words == nil || cards == nil || wordbooks == nil || examples == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("words, cards, wordbooks and examples cannot be nil for ExampleHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ExampleHandler")
	}

	return &ExampleHandler{
		generator: generator,
		words:     words,
		cards:     cards,
		wordbooks: wordbooks,
		examples:  examples,
		logger:    log.With(slog.String("component", "example_handler")),
	}
}

// Generate handles POST /words/{id}/examples/generate requests.
// It asks the LLM for example sentences using the word and attaches the
// results to the word's card.
func (h *ExampleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	wordID, ok := pathID(w, r)
	if !ok {
		return
	}

	if h.generator == nil {
		err := generation.ErrNotConfigured
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	count := queryIntDefault(r, "count", defaultExampleCount)
	if count > maxExampleCount {
		count = maxExampleCount
	}

	word, err := h.words.Get(r.Context(), wordID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// Examples hang off the word's card. Every word gets one at import
	// time, but guard against orphans.
	studyCards, err := h.cards.ListByWord(r.Context(), wordID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if len(studyCards) == 0 {
		err := store.ErrCardNotFound
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	cardID := studyCards[0].Card.ID

	wordbook, err := h.wordbooks.Get(r.Context(), word.WordbookID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	generated, err := h.generator.GenerateExamples(r.Context(), cardID, word, wordbook.Language, count)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	for _, example := range generated {
		if err := h.examples.Create(r.Context(), example); err != nil {
			shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
	}

	log.Info("examples generated",
		slog.Int64("word_id", wordID),
		slog.Int64("card_id", cardID),
		slog.String("lemma", word.Lemma),
		slog.Int("count", len(generated)))
	shared.RespondWithJSON(w, r, http.StatusCreated, generated)
}

// List handles GET /cards/{id}/examples requests.
func (h *ExampleHandler) List(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r)
	if !ok {
		return
	}

	// 404 for unknown cards rather than an empty list.
	if _, err := h.cards.Get(r.Context(), cardID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	examples, err := h.examples.ListByCard(r.Context(), cardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, examples)
}

// Delete handles DELETE /examples/{id} requests.
func (h *ExampleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.examples.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("example deleted", slog.Int64("example_id", id))
	w.WriteHeader(http.StatusNoContent)
}
