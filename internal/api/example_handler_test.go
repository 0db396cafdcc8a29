package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/generation"
	"github.com/lgrenier/vocable-api/internal/store"
)

type fakeExampleCardStore struct {
	store.CardStore
	studyCards map[int64]*store.StudyCard
}

func (f *fakeExampleCardStore) Get(ctx context.Context, id int64) (*domain.Card, error) {
	sc, ok := f.studyCards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return &sc.Card, nil
}

func (f *fakeExampleCardStore) ListByWord(ctx context.Context, wordID int64) ([]*store.StudyCard, error) {
	var cards []*store.StudyCard
	for _, sc := range f.studyCards {
		if sc.Card.WordID == wordID {
			cards = append(cards, sc)
		}
	}
	return cards, nil
}

type fakeExampleWordStore struct {
	store.WordStore
	words map[int64]*domain.Word
}

func (f *fakeExampleWordStore) Get(ctx context.Context, id int64) (*domain.Word, error) {
	word, ok := f.words[id]
	if !ok {
		return nil, store.ErrWordNotFound
	}
	return word, nil
}

type fakeExampleWordbookStore struct {
	store.WordbookStore
	wordbooks map[int64]*domain.Wordbook
}

func (f *fakeExampleWordbookStore) Get(ctx context.Context, id int64) (*domain.Wordbook, error) {
	wb, ok := f.wordbooks[id]
	if !ok {
		return nil, store.ErrWordbookNotFound
	}
	return wb, nil
}

type fakeExampleStore struct {
	store.ExampleStore
	created  []*domain.Example
	examples map[int64][]*domain.Example
}

func (f *fakeExampleStore) Create(ctx context.Context, example *domain.Example) error {
	example.ID = int64(len(f.created) + 1)
	f.created = append(f.created, example)
	return nil
}

func (f *fakeExampleStore) ListByCard(ctx context.Context, cardID int64) ([]*domain.Example, error) {
	return f.examples[cardID], nil
}

type stubGenerator struct {
	examples []*domain.Example
	err      error

	gotLanguage string
	gotCount    int
}

func (s *stubGenerator) GenerateExamples(ctx context.Context, cardID int64, word *domain.Word, language string, count int) ([]*domain.Example, error) {
	s.gotLanguage = language
	s.gotCount = count
	return s.examples, s.err
}

func exampleTestFixtures() (*fakeExampleWordStore, *fakeExampleCardStore, *fakeExampleWordbookStore, *fakeExampleStore) {
	words := &fakeExampleWordStore{
		words: map[int64]*domain.Word{
			10: {ID: 10, WordbookID: 2, Lemma: "chien", Meaning: "dog"},
		},
	}
	cards := &fakeExampleCardStore{
		studyCards: map[int64]*store.StudyCard{
			1: {
				Card: domain.Card{ID: 1, WordID: 10},
				Word: domain.Word{ID: 10, WordbookID: 2, Lemma: "chien", Meaning: "dog"},
			},
		},
	}
	wordbooks := &fakeExampleWordbookStore{
		wordbooks: map[int64]*domain.Wordbook{
			2: {ID: 2, Name: "French A1", Language: "fr"},
		},
	}
	examples := &fakeExampleStore{examples: make(map[int64][]*domain.Example)}
	return words, cards, wordbooks, examples
}

func TestGenerateWithoutGeneratorReturns501(t *testing.T) {
	words, cards, wordbooks, examples := exampleTestFixtures()
	handler := NewExampleHandler(nil, words, cards, wordbooks, examples, slog.Default())

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/words/10/examples/generate", nil), "id", "10")
	rr := httptest.NewRecorder()
	handler.Generate(rr, req)

	assert.Equal(t, http.StatusNotImplemented, rr.Code)
}

func TestGeneratePersistsExamples(t *testing.T) {
	words, cards, wordbooks, examples := exampleTestFixtures()
	generator := &stubGenerator{
		examples: []*domain.Example{
			{CardID: 1, Text: "Le chien dort.", Translation: "The dog is sleeping.", Source: "gemini"},
			{CardID: 1, Text: "Mon chien court.", Translation: "My dog runs.", Source: "gemini"},
		},
	}
	handler := NewExampleHandler(generator, words, cards, wordbooks, examples, slog.Default())

	req := withURLParam(
		httptest.NewRequest(http.MethodPost, "/words/10/examples/generate?count=2", nil), "id", "10")
	rr := httptest.NewRecorder()
	handler.Generate(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "fr", generator.gotLanguage)
	assert.Equal(t, 2, generator.gotCount)
	require.Len(t, examples.created, 2)

	var out []*domain.Example
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "Le chien dort.", out[0].Text)
}

func TestGenerateUnknownWord(t *testing.T) {
	words, cards, wordbooks, examples := exampleTestFixtures()
	handler := NewExampleHandler(&stubGenerator{}, words, cards, wordbooks, examples, slog.Default())

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/words/99/examples/generate", nil), "id", "99")
	rr := httptest.NewRecorder()
	handler.Generate(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGenerateMapsBlockedContent(t *testing.T) {
	words, cards, wordbooks, examples := exampleTestFixtures()
	generator := &stubGenerator{err: generation.ErrContentBlocked}
	handler := NewExampleHandler(generator, words, cards, wordbooks, examples, slog.Default())

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/words/10/examples/generate", nil), "id", "10")
	rr := httptest.NewRecorder()
	handler.Generate(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestListExamplesForUnknownCard(t *testing.T) {
	words, cards, wordbooks, examples := exampleTestFixtures()
	handler := NewExampleHandler(nil, words, cards, wordbooks, examples, slog.Default())

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/cards/99/examples", nil), "id", "99")
	rr := httptest.NewRecorder()
	handler.List(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListExamples(t *testing.T) {
	words, cards, wordbooks, examples := exampleTestFixtures()
	examples.examples[1] = []*domain.Example{
		{ID: 1, CardID: 1, Text: "Le chien dort.", Translation: "The dog is sleeping."},
	}
	handler := NewExampleHandler(nil, words, cards, wordbooks, examples, slog.Default())

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/cards/1/examples", nil), "id", "1")
	rr := httptest.NewRecorder()
	handler.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var out []*domain.Example
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
}
