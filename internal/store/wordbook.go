package store

import (
	"context"
	"database/sql"

	"github.com/lgrenier/vocable-api/internal/domain"
)

// WordbookStats summarizes the content of a wordbook grouped along the
// axes the stats endpoint reports on.
type WordbookStats struct {
	TotalWords int            `json:"total_words"`
	TotalCards int            `json:"total_cards"`
	ByCEFR     map[string]int `json:"by_cefr"`
	ByPos      map[string]int `json:"by_pos"`
	ByLesson   map[string]int `json:"by_lesson"`
}

// WordbookStore defines operations for persisting and retrieving wordbooks.
type WordbookStore interface {
	// Create saves a new wordbook. The wordbook's ID is populated on
	// success. Returns ErrWordbookNameExists if the name is taken.
	Create(ctx context.Context, wordbook *domain.Wordbook) error

	// Get retrieves a wordbook by its ID.
	// Returns ErrWordbookNotFound if no wordbook exists with the given ID.
	Get(ctx context.Context, id int64) (*domain.Wordbook, error)

	// GetActive retrieves the wordbook currently marked active.
	// Returns ErrNoActiveWordbook if none is active.
	GetActive(ctx context.Context) (*domain.Wordbook, error)

	// List returns all wordbooks ordered by creation time, newest first.
	List(ctx context.Context) ([]*domain.Wordbook, error)

	// Update modifies an existing wordbook's mutable fields.
	// Returns ErrWordbookNotFound if the wordbook does not exist.
	Update(ctx context.Context, wordbook *domain.Wordbook) error

	// Activate marks the given wordbook active and deactivates all
	// others. At most one wordbook is active at a time.
	// Returns ErrWordbookNotFound if the wordbook does not exist.
	Activate(ctx context.Context, id int64) error

	// Delete removes a wordbook and, via cascade, its words, cards and
	// review history. Returns ErrWordbookNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// Stats aggregates word and card counts for a wordbook.
	Stats(ctx context.Context, id int64) (*WordbookStats, error)

	// WithTx returns a WordbookStore that uses the provided transaction.
	WithTx(tx *sql.Tx) WordbookStore
}
