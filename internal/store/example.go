package store

import (
	"context"
	"database/sql"

	"github.com/lgrenier/vocable-api/internal/domain"
)

// ExampleStore defines operations for persisting example sentences.
type ExampleStore interface {
	// Create saves a new example. The example's ID is populated on
	// success.
	Create(ctx context.Context, example *domain.Example) error

	// ListByCard returns the examples attached to a card, oldest first.
	ListByCard(ctx context.Context, cardID int64) ([]*domain.Example, error)

	// Delete removes an example. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns an ExampleStore that uses the provided transaction.
	WithTx(tx *sql.Tx) ExampleStore
}
