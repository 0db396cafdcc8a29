package store

import (
	"context"
	"database/sql"

	"github.com/lgrenier/vocable-api/internal/domain"
)

// WordFilter narrows List queries over the words of a wordbook. Zero
// values mean "no constraint" for the corresponding field.
type WordFilter struct {
	Lesson string
	CEFR   string
	Pos    string
	Limit  int
	Offset int
}

// WordStore defines operations for persisting and retrieving words.
type WordStore interface {
	// Create saves a new word. The word's ID is populated on success.
	Create(ctx context.Context, word *domain.Word) error

	// Get retrieves a word by its ID.
	// Returns ErrWordNotFound if no word exists with the given ID.
	Get(ctx context.Context, id int64) (*domain.Word, error)

	// List returns words in a wordbook matching the filter, ordered by
	// lesson then lemma, along with the total count before paging.
	List(ctx context.Context, wordbookID int64, filter WordFilter) ([]*domain.Word, int, error)

	// Search performs a ranked full-text search over lemma and meaning
	// within a wordbook, falling back to substring matching for short
	// queries. The filter narrows and pages the results; the returned
	// count is the total number of matches before paging.
	Search(ctx context.Context, wordbookID int64, query string, filter WordFilter) ([]*domain.Word, int, error)

	// Suggest returns lemma prefix completions within a wordbook.
	Suggest(ctx context.Context, wordbookID int64, prefix string, limit int) ([]string, error)

	// ExistsByLemmaMeaning reports whether a word with the same lemma
	// and meaning already exists in the wordbook. Used by the importer
	// to skip duplicate rows.
	ExistsByLemmaMeaning(ctx context.Context, wordbookID int64, lemma, meaning string) (bool, error)

	// Delete removes a word and, via cascade, its cards and review
	// history. Returns ErrWordNotFound if the word does not exist.
	Delete(ctx context.Context, id int64) error

	// CountByWordbook returns the number of words in a wordbook.
	CountByWordbook(ctx context.Context, wordbookID int64) (int, error)

	// WithTx returns a WordStore that uses the provided transaction.
	WithTx(tx *sql.Tx) WordStore
}
