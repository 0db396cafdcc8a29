package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// WordbookStore implements the store.WordbookStore interface using a
// PostgreSQL database as the storage backend.
type WordbookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewWordbookStore creates a new PostgreSQL implementation of the
// WordbookStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewWordbookStore(db store.DBTX, log *slog.Logger) *WordbookStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &WordbookStore{
		db:     db,
		logger: log.With(slog.String("component", "wordbook_store")),
	}
}

// Ensure WordbookStore implements store.WordbookStore interface
var _ store.WordbookStore = (*WordbookStore)(nil)

const wordbookColumns = `id, name, description, language, author, version, total_words, is_active, created_at, updated_at`

func scanWordbook(row interface{ Scan(...any) error }) (*domain.Wordbook, error) {
	var wb domain.Wordbook
	err := row.Scan(
		&wb.ID,
		&wb.Name,
		&wb.Description,
		&wb.Language,
		&wb.Author,
		&wb.Version,
		&wb.TotalWords,
		&wb.IsActive,
		&wb.CreatedAt,
		&wb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wb, nil
}

// Create implements store.WordbookStore.Create.
// Returns store.ErrWordbookNameExists if the name is already taken.
func (s *WordbookStore) Create(ctx context.Context, wordbook *domain.Wordbook) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := wordbook.Validate(); err != nil {
		log.Warn("wordbook validation failed during create",
			slog.String("error", err.Error()),
			slog.String("name", wordbook.Name))
		return err
	}

	query := `
		INSERT INTO wordbooks (name, description, language, author, version, total_words, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		wordbook.Name,
		wordbook.Description,
		wordbook.Language,
		wordbook.Author,
		wordbook.Version,
		wordbook.TotalWords,
		wordbook.IsActive,
		wordbook.CreatedAt,
		wordbook.UpdatedAt,
	).Scan(&wordbook.ID)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate wordbook name",
				slog.String("name", wordbook.Name))
			return fmt.Errorf("%w: %q", store.ErrWordbookNameExists, wordbook.Name)
		}
		log.Error("failed to create wordbook",
			slog.String("error", err.Error()),
			slog.String("name", wordbook.Name))
		return MapError(err)
	}

	log.Info("wordbook created",
		slog.Int64("wordbook_id", wordbook.ID),
		slog.String("name", wordbook.Name))
	return nil
}

// Get implements store.WordbookStore.Get.
func (s *WordbookStore) Get(ctx context.Context, id int64) (*domain.Wordbook, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + wordbookColumns + ` FROM wordbooks WHERE id = $1`

	wb, err := scanWordbook(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("wordbook not found", slog.Int64("wordbook_id", id))
			return nil, store.ErrWordbookNotFound
		}
		log.Error("failed to get wordbook",
			slog.String("error", err.Error()),
			slog.Int64("wordbook_id", id))
		return nil, MapError(err)
	}

	return wb, nil
}

// GetActive implements store.WordbookStore.GetActive.
func (s *WordbookStore) GetActive(ctx context.Context) (*domain.Wordbook, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + wordbookColumns + ` FROM wordbooks WHERE is_active LIMIT 1`

	wb, err := scanWordbook(s.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no active wordbook")
			return nil, store.ErrNoActiveWordbook
		}
		log.Error("failed to get active wordbook",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return wb, nil
}

// List implements store.WordbookStore.List.
func (s *WordbookStore) List(ctx context.Context) ([]*domain.Wordbook, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + wordbookColumns + ` FROM wordbooks ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list wordbooks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var wordbooks []*domain.Wordbook
	for rows.Next() {
		wb, err := scanWordbook(rows)
		if err != nil {
			return nil, MapError(err)
		}
		wordbooks = append(wordbooks, wb)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return wordbooks, nil
}

// Update implements store.WordbookStore.Update.
func (s *WordbookStore) Update(ctx context.Context, wordbook *domain.Wordbook) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := wordbook.Validate(); err != nil {
		return err
	}

	wordbook.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE wordbooks
		SET name = $1, description = $2, language = $3, author = $4,
		    version = $5, total_words = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		wordbook.Name,
		wordbook.Description,
		wordbook.Language,
		wordbook.Author,
		wordbook.Version,
		wordbook.TotalWords,
		wordbook.UpdatedAt,
		wordbook.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %q", store.ErrWordbookNameExists, wordbook.Name)
		}
		log.Error("failed to update wordbook",
			slog.String("error", err.Error()),
			slog.Int64("wordbook_id", wordbook.ID))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrWordbookNotFound)
}

// Activate implements store.WordbookStore.Activate. The caller is
// expected to run it inside a transaction so the deactivate and
// activate statements are atomic.
func (s *WordbookStore) Activate(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx,
		`UPDATE wordbooks SET is_active = FALSE, updated_at = NOW() WHERE is_active`); err != nil {
		log.Error("failed to deactivate wordbooks", slog.String("error", err.Error()))
		return MapError(err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE wordbooks SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to activate wordbook",
			slog.String("error", err.Error()),
			slog.Int64("wordbook_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrWordbookNotFound); err != nil {
		return err
	}

	log.Info("wordbook activated", slog.Int64("wordbook_id", id))
	return nil
}

// Delete implements store.WordbookStore.Delete. Words, cards and
// review history go with it via ON DELETE CASCADE.
func (s *WordbookStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM wordbooks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete wordbook",
			slog.String("error", err.Error()),
			slog.Int64("wordbook_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrWordbookNotFound); err != nil {
		return err
	}

	log.Info("wordbook deleted", slog.Int64("wordbook_id", id))
	return nil
}

// Stats implements store.WordbookStore.Stats.
func (s *WordbookStore) Stats(ctx context.Context, id int64) (*store.WordbookStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stats := &store.WordbookStats{
		ByCEFR:   make(map[string]int),
		ByPos:    make(map[string]int),
		ByLesson: make(map[string]int),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM words WHERE wordbook_id = $1),
			(SELECT COUNT(*) FROM cards c JOIN words w ON w.id = c.word_id WHERE w.wordbook_id = $1)
	`, id).Scan(&stats.TotalWords, &stats.TotalCards)
	if err != nil {
		log.Error("failed to count wordbook content",
			slog.String("error", err.Error()),
			slog.Int64("wordbook_id", id))
		return nil, MapError(err)
	}

	groups := []struct {
		column string
		dest   map[string]int
	}{
		{"cefr", stats.ByCEFR},
		{"pos", stats.ByPos},
		{"lesson", stats.ByLesson},
	}
	for _, g := range groups {
		query := fmt.Sprintf(`
			SELECT %s, COUNT(*) FROM words
			WHERE wordbook_id = $1 AND %s <> ''
			GROUP BY %s
		`, g.column, g.column, g.column)

		rows, err := s.db.QueryContext(ctx, query, id)
		if err != nil {
			return nil, MapError(err)
		}
		for rows.Next() {
			var key string
			var count int
			if err := rows.Scan(&key, &count); err != nil {
				_ = rows.Close()
				return nil, MapError(err)
			}
			g.dest[key] = count
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, MapError(err)
		}
		_ = rows.Close()
	}

	return stats, nil
}

// WithTx implements store.WordbookStore.WithTx.
func (s *WordbookStore) WithTx(tx *sql.Tx) store.WordbookStore {
	return &WordbookStore{
		db:     tx,
		logger: s.logger,
	}
}
