package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/store"
)

type fakeSearchWordStore struct {
	store.WordStore
	words map[int64]*domain.Word

	gotWordbookID int64
	gotQuery      string
	gotFilter     store.WordFilter
}

func (f *fakeSearchWordStore) Get(ctx context.Context, id int64) (*domain.Word, error) {
	word, ok := f.words[id]
	if !ok {
		return nil, store.ErrWordNotFound
	}
	return word, nil
}

func (f *fakeSearchWordStore) Search(ctx context.Context, wordbookID int64, query string, filter store.WordFilter) ([]*domain.Word, int, error) {
	f.gotWordbookID = wordbookID
	f.gotQuery = query
	f.gotFilter = filter

	var out []*domain.Word
	for _, word := range f.words {
		if word.WordbookID == wordbookID && strings.Contains(word.Lemma, query) {
			out = append(out, word)
		}
	}
	return out, len(out), nil
}

func (f *fakeSearchWordStore) Suggest(ctx context.Context, wordbookID int64, prefix string, limit int) ([]string, error) {
	f.gotWordbookID = wordbookID

	var out []string
	for _, word := range f.words {
		if word.WordbookID == wordbookID && strings.HasPrefix(word.Lemma, prefix) {
			out = append(out, word.Lemma)
		}
	}
	return out, nil
}

func newWordHandlerFixtures() (*fakeSearchWordStore, *fakeWordbookStore, *fakeExampleCardStore) {
	words := &fakeSearchWordStore{
		words: map[int64]*domain.Word{
			10: {ID: 10, WordbookID: 1, Lemma: "chien", Meaning: "dog"},
			11: {ID: 11, WordbookID: 1, Lemma: "chat", Meaning: "cat"},
			12: {ID: 12, WordbookID: 2, Lemma: "Hund", Meaning: "dog"},
		},
	}
	wordbooks := newFakeWordbookStore()
	wordbooks.wordbooks[1] = &domain.Wordbook{ID: 1, Name: "French A1", Language: "fr", IsActive: true}
	wordbooks.wordbooks[2] = &domain.Wordbook{ID: 2, Name: "German A1", Language: "de"}
	wordbooks.nextID = 3
	cards := &fakeExampleCardStore{
		studyCards: map[int64]*store.StudyCard{
			1: {
				Card: domain.Card{ID: 1, WordID: 10, Template: "basic"},
				Word: domain.Word{ID: 10, WordbookID: 1, Lemma: "chien", Meaning: "dog"},
				State: domain.SRSState{
					CardID: 1, Due: time.Now().UTC(), Interval: 4.0, Ease: 2.5, Reps: 2,
				},
			},
		},
	}
	return words, wordbooks, cards
}

func newTestWordHandler(words *fakeSearchWordStore, wordbooks *fakeWordbookStore, cards *fakeExampleCardStore) *WordHandler {
	return NewWordHandler(words, wordbooks, cards, slog.Default())
}

func TestSearchUsesActiveWordbook(t *testing.T) {
	words, wordbooks, cards := newWordHandlerFixtures()
	handler := newTestWordHandler(words, wordbooks, cards)

	req := httptest.NewRequest(http.MethodGet, "/words/search?q=chien", nil)
	rr := httptest.NewRecorder()
	handler.Search(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(1), words.gotWordbookID)
	assert.Equal(t, "chien", words.gotQuery)

	var resp WordSearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.WordbookID)
	require.Len(t, resp.Words, 1)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, defaultSearchSize, resp.PerPage)
}

func TestSearchPagingAndFilters(t *testing.T) {
	words, wordbooks, cards := newWordHandlerFixtures()
	handler := newTestWordHandler(words, wordbooks, cards)

	req := httptest.NewRequest(http.MethodGet,
		"/words/search?q=ch&page=3&per_page=10&lesson=3&cefr=A1&pos=noun", nil)
	rr := httptest.NewRecorder()
	handler.Search(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "3", words.gotFilter.Lesson)
	assert.Equal(t, "A1", words.gotFilter.CEFR)
	assert.Equal(t, "noun", words.gotFilter.Pos)
	assert.Equal(t, 10, words.gotFilter.Limit)
	assert.Equal(t, 20, words.gotFilter.Offset)
}

func TestSearchRequiresQuery(t *testing.T) {
	words, wordbooks, cards := newWordHandlerFixtures()
	handler := newTestWordHandler(words, wordbooks, cards)

	req := httptest.NewRequest(http.MethodGet, "/words/search", nil)
	rr := httptest.NewRecorder()
	handler.Search(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearchWithoutActiveWordbook(t *testing.T) {
	words, wordbooks, cards := newWordHandlerFixtures()
	wordbooks.wordbooks[1].IsActive = false
	handler := newTestWordHandler(words, wordbooks, cards)

	req := httptest.NewRequest(http.MethodGet, "/words/search?q=chien", nil)
	rr := httptest.NewRecorder()
	handler.Search(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSuggestCompletesPrefix(t *testing.T) {
	words, wordbooks, cards := newWordHandlerFixtures()
	handler := newTestWordHandler(words, wordbooks, cards)

	req := httptest.NewRequest(http.MethodGet, "/words/suggest?q=ch", nil)
	rr := httptest.NewRecorder()
	handler.Suggest(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(1), words.gotWordbookID)

	var out []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Len(t, out, 2)
}

func TestWordDetailIncludesCards(t *testing.T) {
	words, wordbooks, cards := newWordHandlerFixtures()
	handler := newTestWordHandler(words, wordbooks, cards)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/words/10", nil), "id", "10")
	rr := httptest.NewRecorder()
	handler.Get(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var detail WordDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, "chien", detail.Word.Lemma)
	require.Len(t, detail.Cards, 1)
	assert.Equal(t, int64(1), detail.Cards[0].Card.ID)
	assert.InDelta(t, 2.5, detail.Cards[0].State.Ease, 1e-9)
}

func TestWordDetailUnknownWord(t *testing.T) {
	words, wordbooks, cards := newWordHandlerFixtures()
	handler := newTestWordHandler(words, wordbooks, cards)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/words/99", nil), "id", "99")
	rr := httptest.NewRecorder()
	handler.Get(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
