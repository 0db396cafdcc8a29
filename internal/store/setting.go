package store

import (
	"context"
	"database/sql"

	"github.com/lgrenier/vocable-api/internal/domain"
)

// SettingStore defines operations for the key-value settings table.
type SettingStore interface {
	// Get retrieves the setting stored under key.
	// Returns ErrNotFound if the key has never been written.
	Get(ctx context.Context, key string) (*domain.Setting, error)

	// Put inserts or replaces the setting stored under key.
	Put(ctx context.Context, setting *domain.Setting) error

	// WithTx returns a SettingStore that uses the provided transaction.
	WithTx(tx *sql.Tx) SettingStore
}
