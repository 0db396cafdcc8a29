package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
)

// StudyCard is the read model the scheduler works with: a card joined
// with its word and current scheduling state.
type StudyCard struct {
	Card  domain.Card
	Word  domain.Word
	State domain.SRSState
}

// CardStore defines operations for persisting and retrieving cards,
// including the joined study queries the scheduler relies on.
type CardStore interface {
	// Create saves a new card. The card's ID is populated on success.
	Create(ctx context.Context, card *domain.Card) error

	// Get retrieves a card by its ID.
	// Returns ErrCardNotFound if no card exists with the given ID.
	Get(ctx context.Context, id int64) (*domain.Card, error)

	// GetStudyCard retrieves a card joined with its word and state.
	// Returns ErrCardNotFound if the card does not exist.
	GetStudyCard(ctx context.Context, id int64) (*StudyCard, error)

	// ListByWord returns a word's cards with their scheduling state,
	// oldest first.
	ListByWord(ctx context.Context, wordID int64) ([]*StudyCard, error)

	// ListDue returns cards in a wordbook whose state is due at or
	// before now, oldest due first, limited to limit rows. Imported
	// cards start out due, so never-reviewed cards are included.
	ListDue(ctx context.Context, wordbookID int64, now time.Time, limit int) ([]*StudyCard, error)

	// ListCreatedBetween returns cards in a wordbook created within
	// [from, to), oldest first. The scheduler uses it to find rolling
	// review candidates in each checkpoint window.
	ListCreatedBetween(ctx context.Context, wordbookID int64, from, to time.Time, limit int) ([]*StudyCard, error)

	// ListNew returns cards in a wordbook that have never been
	// reviewed, oldest created first, limited to limit rows.
	ListNew(ctx context.Context, wordbookID int64, limit int) ([]*StudyCard, error)

	// CountDue returns the number of cards due at or before the given
	// time in a wordbook.
	CountDue(ctx context.Context, wordbookID int64, now time.Time) (int, error)

	// CountDueBetween returns the number of cards whose due time falls
	// within [from, to) in a wordbook. Used by the due forecast.
	CountDueBetween(ctx context.Context, wordbookID int64, from, to time.Time) (int, error)

	// CountNew returns the number of never-reviewed cards in a wordbook.
	CountNew(ctx context.Context, wordbookID int64) (int, error)

	// CountByWordbook returns the total number of cards in a wordbook.
	CountByWordbook(ctx context.Context, wordbookID int64) (int, error)

	// UpdateTags replaces a card's tag list.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateTags(ctx context.Context, id int64, tags string) error

	// Delete removes a card. Returns ErrCardNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a CardStore that uses the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
