package store

import (
	"context"
	"database/sql"

	"github.com/lgrenier/vocable-api/internal/domain"
)

// SRSStateStore defines operations for persisting per-card scheduling state.
type SRSStateStore interface {
	// Create saves initial scheduling state for a card.
	Create(ctx context.Context, state *domain.SRSState) error

	// Get retrieves the scheduling state for a card.
	// Returns ErrSRSStateNotFound if the card has no state row.
	Get(ctx context.Context, cardID int64) (*domain.SRSState, error)

	// GetForUpdate retrieves the scheduling state for a card with a
	// row-level lock, for use inside a transaction that will update it.
	// Returns ErrSRSStateNotFound if the card has no state row.
	GetForUpdate(ctx context.Context, cardID int64) (*domain.SRSState, error)

	// Update persists new scheduling state after a review.
	// Returns ErrSRSStateNotFound if the card has no state row.
	Update(ctx context.Context, state *domain.SRSState) error

	// WithTx returns an SRSStateStore that uses the provided transaction.
	WithTx(tx *sql.Tx) SRSStateStore
}
