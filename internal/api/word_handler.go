package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lgrenier/vocable-api/internal/api/shared"
	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// Search and listing bounds.
const (
	defaultWordPageSize = 50
	maxWordPageSize     = 200
	defaultSearchSize   = 20
	maxSearchSize       = 100
	defaultSuggestLimit = 10
	maxSuggestLimit     = 50
)

// WordHandler handles word browsing HTTP requests.
type WordHandler struct {
	words     store.WordStore
	wordbooks store.WordbookStore
	cards     store.CardStore
	logger    *slog.Logger
}

// NewWordHandler creates a new WordHandler.
func NewWordHandler(
	words store.WordStore,
	wordbooks store.WordbookStore,
	cards store.CardStore,
	log *slog.Logger,
) *WordHandler {
	if words == nil || wordbooks == nil || cards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("words, wordbooks and cards cannot be nil for WordHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for WordHandler")
	}

	return &WordHandler{
		words:     words,
		wordbooks: wordbooks,
		cards:     cards,
		logger:    log.With(slog.String("component", "word_handler")),
	}
}

// WordListResponse is a page of words plus the total match count.
type WordListResponse struct {
	Words  []*domain.Word `json:"words"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// List handles GET /wordbooks/{id}/words requests.
// Supports filtering by lesson, cefr and pos, plus limit/offset paging.
func (h *WordHandler) List(w http.ResponseWriter, r *http.Request) {
	wordbookID, ok := pathID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := store.WordFilter{
		Lesson: q.Get("lesson"),
		CEFR:   q.Get("cefr"),
		Pos:    q.Get("pos"),
		Limit:  queryIntDefault(r, "limit", defaultWordPageSize),
		Offset: 0,
	}
	if filter.Limit > maxWordPageSize {
		filter.Limit = maxWordPageSize
	}
	if offset := queryIntDefault(r, "offset", 0); offset > 0 {
		filter.Offset = offset
	}

	words, total, err := h.words.List(r.Context(), wordbookID, filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, WordListResponse{
		Words:  words,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// WordSearchResponse is a page of search results scoped to the active
// wordbook.
type WordSearchResponse struct {
	WordbookID int64          `json:"wordbook_id"`
	Words      []*domain.Word `json:"words"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
}

// Search handles GET /words/search requests.
// Results come from the active wordbook. Short queries fall back to
// substring matching; longer ones use ranked full-text search. Supports
// lesson/cefr/pos filters plus page/per_page paging.
func (h *WordHandler) Search(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	wordbook, ok := h.activeWordbook(w, r)
	if !ok {
		return
	}

	page := queryIntDefault(r, "page", 1)
	perPage := queryIntDefault(r, "per_page", defaultSearchSize)
	if perPage > maxSearchSize {
		perPage = maxSearchSize
	}

	q := r.URL.Query()
	filter := store.WordFilter{
		Lesson: q.Get("lesson"),
		CEFR:   q.Get("cefr"),
		Pos:    q.Get("pos"),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}

	words, total, err := h.words.Search(r.Context(), wordbook.ID, query, filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("word search",
		slog.Int64("wordbook_id", wordbook.ID),
		slog.Int("results", len(words)),
		slog.Int("total", total))
	shared.RespondWithJSON(w, r, http.StatusOK, WordSearchResponse{
		WordbookID: wordbook.ID,
		Words:      words,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
	})
}

// Suggest handles GET /words/suggest requests.
// It returns lemma prefix completions from the active wordbook for
// search-as-you-type.
func (h *WordHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))
	if prefix == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	wordbook, ok := h.activeWordbook(w, r)
	if !ok {
		return
	}

	limit := queryIntDefault(r, "limit", defaultSuggestLimit)
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	suggestions, err := h.words.Suggest(r.Context(), wordbook.ID, prefix, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, suggestions)
}

// WordCardDetail pairs a card with its scheduling state.
type WordCardDetail struct {
	Card  domain.Card     `json:"card"`
	State domain.SRSState `json:"state"`
}

// WordDetail is a word plus its cards and their scheduling state.
type WordDetail struct {
	Word  *domain.Word     `json:"word"`
	Cards []WordCardDetail `json:"cards"`
}

// Get handles GET /words/{id} requests.
// It returns the word together with its cards and their current
// scheduling state.
func (h *WordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	word, err := h.words.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	studyCards, err := h.cards.ListByWord(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	detail := WordDetail{Word: word, Cards: make([]WordCardDetail, 0, len(studyCards))}
	for _, sc := range studyCards {
		detail.Cards = append(detail.Cards, WordCardDetail{Card: sc.Card, State: sc.State})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// Delete handles DELETE /words/{id} requests.
// Cards and review history are removed by cascade.
func (h *WordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.words.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("word deleted", slog.Int64("word_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// activeWordbook resolves the active wordbook, writing a 400 response
// and returning ok=false when none is active.
func (h *WordHandler) activeWordbook(w http.ResponseWriter, r *http.Request) (*domain.Wordbook, bool) {
	wordbook, err := h.wordbooks.GetActive(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoActiveWordbook) {
			shared.RespondWithError(w, r, http.StatusBadRequest,
				"No active wordbook. Activate a wordbook first.")
			return nil, false
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return nil, false
	}
	return wordbook, true
}
