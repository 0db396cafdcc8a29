package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// SettingStore implements the store.SettingStore interface using a
// PostgreSQL database as the storage backend.
type SettingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSettingStore creates a new PostgreSQL implementation of the
// SettingStore interface. If logger is nil, a default logger will be
// used.
func NewSettingStore(db store.DBTX, log *slog.Logger) *SettingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &SettingStore{
		db:     db,
		logger: log.With(slog.String("component", "setting_store")),
	}
}

// Ensure SettingStore implements store.SettingStore interface
var _ store.SettingStore = (*SettingStore)(nil)

// Get implements store.SettingStore.Get.
func (s *SettingStore) Get(ctx context.Context, key string) (*domain.Setting, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var setting domain.Setting
	err := s.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM settings WHERE key = $1`, key).
		Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("setting not found", slog.String("key", key))
			return nil, fmt.Errorf("%w: setting %q", store.ErrNotFound, key)
		}
		log.Error("failed to get setting",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return nil, MapError(err)
	}

	return &setting, nil
}

// Put implements store.SettingStore.Put.
func (s *SettingStore) Put(ctx context.Context, setting *domain.Setting) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, setting.Key, setting.Value, setting.UpdatedAt)
	if err != nil {
		log.Error("failed to put setting",
			slog.String("error", err.Error()),
			slog.String("key", setting.Key))
		return MapError(err)
	}

	log.Debug("setting saved", slog.String("key", setting.Key))
	return nil
}

// WithTx implements store.SettingStore.WithTx.
func (s *SettingStore) WithTx(tx *sql.Tx) store.SettingStore {
	return &SettingStore{
		db:     tx,
		logger: s.logger,
	}
}
