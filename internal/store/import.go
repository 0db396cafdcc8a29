package store

import (
	"context"
	"database/sql"

	"github.com/lgrenier/vocable-api/internal/domain"
)

// ImportStore defines operations for tracking import runs.
type ImportStore interface {
	// Create saves a new import record. Its ID is populated on success.
	Create(ctx context.Context, record *domain.ImportRecord) error

	// Get retrieves an import record by its ID.
	// Returns ErrImportNotFound if no record exists with the given ID.
	Get(ctx context.Context, id int64) (*domain.ImportRecord, error)

	// List returns import records for a wordbook, newest first.
	List(ctx context.Context, wordbookID int64, limit int) ([]*domain.ImportRecord, error)

	// Update persists status and counters for an import record.
	// Returns ErrImportNotFound if the record does not exist.
	Update(ctx context.Context, record *domain.ImportRecord) error

	// WithTx returns an ImportStore that uses the provided transaction.
	WithTx(tx *sql.Tx) ImportStore
}
