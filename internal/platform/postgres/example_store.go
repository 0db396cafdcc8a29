package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// ExampleStore implements the store.ExampleStore interface using a
// PostgreSQL database as the storage backend.
type ExampleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewExampleStore creates a new PostgreSQL implementation of the
// ExampleStore interface. If logger is nil, a default logger will be
// used.
func NewExampleStore(db store.DBTX, log *slog.Logger) *ExampleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ExampleStore{
		db:     db,
		logger: log.With(slog.String("component", "example_store")),
	}
}

// Ensure ExampleStore implements store.ExampleStore interface
var _ store.ExampleStore = (*ExampleStore)(nil)

// Create implements store.ExampleStore.Create.
func (s *ExampleStore) Create(ctx context.Context, example *domain.Example) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := example.Validate(); err != nil {
		log.Warn("example validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("card_id", example.CardID))
		return err
	}

	query := `
		INSERT INTO examples (card_id, text, translation, source, cefr, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		example.CardID,
		example.Text,
		example.Translation,
		example.Source,
		example.CEFR,
		example.CreatedAt,
	).Scan(&example.ID)
	if err != nil {
		log.Error("failed to create example",
			slog.String("error", err.Error()),
			slog.Int64("card_id", example.CardID))
		return MapError(err)
	}

	return nil
}

// ListByCard implements store.ExampleStore.ListByCard.
func (s *ExampleStore) ListByCard(ctx context.Context, cardID int64) ([]*domain.Example, error) {
	query := `
		SELECT id, card_id, text, translation, source, cefr, created_at
		FROM examples
		WHERE card_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var examples []*domain.Example
	for rows.Next() {
		var e domain.Example
		err := rows.Scan(&e.ID, &e.CardID, &e.Text, &e.Translation, &e.Source, &e.CEFR, &e.CreatedAt)
		if err != nil {
			return nil, MapError(err)
		}
		examples = append(examples, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return examples, nil
}

// Delete implements store.ExampleStore.Delete.
func (s *ExampleStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM examples WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, nil)
}

// WithTx implements store.ExampleStore.WithTx.
func (s *ExampleStore) WithTx(tx *sql.Tx) store.ExampleStore {
	return &ExampleStore{
		db:     tx,
		logger: s.logger,
	}
}
