package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// ImportStore implements the store.ImportStore interface using a
// PostgreSQL database as the storage backend.
type ImportStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewImportStore creates a new PostgreSQL implementation of the
// ImportStore interface. If logger is nil, a default logger will be
// used.
func NewImportStore(db store.DBTX, log *slog.Logger) *ImportStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ImportStore{
		db:     db,
		logger: log.With(slog.String("component", "import_store")),
	}
}

// Ensure ImportStore implements store.ImportStore interface
var _ store.ImportStore = (*ImportStore)(nil)

const importColumns = `id, wordbook_id, filename, started_at, finished_at, status, total, succeeded, failed, message`

func scanImport(row interface{ Scan(...any) error }) (*domain.ImportRecord, error) {
	var rec domain.ImportRecord
	err := row.Scan(
		&rec.ID,
		&rec.WordbookID,
		&rec.Filename,
		&rec.StartedAt,
		&rec.FinishedAt,
		&rec.Status,
		&rec.Total,
		&rec.Succeeded,
		&rec.Failed,
		&rec.Message,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create implements store.ImportStore.Create.
func (s *ImportStore) Create(ctx context.Context, record *domain.ImportRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO imports (wordbook_id, filename, started_at, finished_at, status, total, succeeded, failed, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		record.WordbookID,
		record.Filename,
		record.StartedAt,
		record.FinishedAt,
		record.Status,
		record.Total,
		record.Succeeded,
		record.Failed,
		record.Message,
	).Scan(&record.ID)
	if err != nil {
		log.Error("failed to create import record",
			slog.String("error", err.Error()),
			slog.String("filename", record.Filename))
		return MapError(err)
	}

	return nil
}

// Get implements store.ImportStore.Get.
func (s *ImportStore) Get(ctx context.Context, id int64) (*domain.ImportRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + importColumns + ` FROM imports WHERE id = $1`

	rec, err := scanImport(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("import record not found", slog.Int64("import_id", id))
			return nil, store.ErrImportNotFound
		}
		return nil, MapError(err)
	}

	return rec, nil
}

// List implements store.ImportStore.List.
func (s *ImportStore) List(ctx context.Context, wordbookID int64, limit int) ([]*domain.ImportRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + importColumns + ` FROM imports WHERE wordbook_id = $1 ORDER BY started_at DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, wordbookID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.ImportRecord
	for rows.Next() {
		rec, err := scanImport(rows)
		if err != nil {
			return nil, MapError(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}

// Update implements store.ImportStore.Update.
func (s *ImportStore) Update(ctx context.Context, record *domain.ImportRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE imports
		SET finished_at = $1, status = $2, total = $3, succeeded = $4, failed = $5, message = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		record.FinishedAt,
		record.Status,
		record.Total,
		record.Succeeded,
		record.Failed,
		record.Message,
		record.ID,
	)
	if err != nil {
		log.Error("failed to update import record",
			slog.String("error", err.Error()),
			slog.Int64("import_id", record.ID))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrImportNotFound)
}

// WithTx implements store.ImportStore.WithTx.
func (s *ImportStore) WithTx(tx *sql.Tx) store.ImportStore {
	return &ImportStore{
		db:     tx,
		logger: s.logger,
	}
}
