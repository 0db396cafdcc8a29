package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// Queries shorter than this use ILIKE substring matching instead of
// full-text search, which needs whole lexemes to be useful.
const minFullTextQueryLen = 3

// WordStore implements the store.WordStore interface using a
// PostgreSQL database as the storage backend.
type WordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewWordStore creates a new PostgreSQL implementation of the
// WordStore interface. If logger is nil, a default logger will be used.
func NewWordStore(db store.DBTX, log *slog.Logger) *WordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &WordStore{
		db:     db,
		logger: log.With(slog.String("component", "word_store")),
	}
}

// Ensure WordStore implements store.WordStore interface
var _ store.WordStore = (*WordStore)(nil)

const wordColumns = `id, wordbook_id, lemma, pos, gender, ipa, meaning, lesson, cefr, tags, created_at, updated_at`

func scanWord(row interface{ Scan(...any) error }) (*domain.Word, error) {
	var w domain.Word
	err := row.Scan(
		&w.ID,
		&w.WordbookID,
		&w.Lemma,
		&w.Pos,
		&w.Gender,
		&w.IPA,
		&w.Meaning,
		&w.Lesson,
		&w.CEFR,
		&w.Tags,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *WordStore) queryWords(ctx context.Context, query string, args ...any) ([]*domain.Word, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var words []*domain.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, MapError(err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return words, nil
}

// Create implements store.WordStore.Create.
// Returns store.ErrInvalidEntity if the wordbook doesn't exist.
func (s *WordStore) Create(ctx context.Context, word *domain.Word) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := word.Validate(); err != nil {
		log.Warn("word validation failed during create",
			slog.String("error", err.Error()),
			slog.String("lemma", word.Lemma))
		return err
	}

	query := `
		INSERT INTO words (wordbook_id, lemma, pos, gender, ipa, meaning, lesson, cefr, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		word.WordbookID,
		word.Lemma,
		word.Pos,
		word.Gender,
		word.IPA,
		word.Meaning,
		word.Lesson,
		word.CEFR,
		word.Tags,
		word.CreatedAt,
		word.UpdatedAt,
	).Scan(&word.ID)

	if err != nil {
		log.Error("failed to create word",
			slog.String("error", err.Error()),
			slog.String("lemma", word.Lemma),
			slog.Int64("wordbook_id", word.WordbookID))
		return MapError(err)
	}

	log.Debug("word created",
		slog.Int64("word_id", word.ID),
		slog.String("lemma", word.Lemma))
	return nil
}

// Get implements store.WordStore.Get.
func (s *WordStore) Get(ctx context.Context, id int64) (*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + wordColumns + ` FROM words WHERE id = $1`

	w, err := scanWord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("word not found", slog.Int64("word_id", id))
			return nil, store.ErrWordNotFound
		}
		log.Error("failed to get word",
			slog.String("error", err.Error()),
			slog.Int64("word_id", id))
		return nil, MapError(err)
	}

	return w, nil
}

// List implements store.WordStore.List.
func (s *WordStore) List(ctx context.Context, wordbookID int64, filter store.WordFilter) ([]*domain.Word, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where := []string{"wordbook_id = $1"}
	args := []any{wordbookID}
	if filter.Lesson != "" {
		args = append(args, filter.Lesson)
		where = append(where, "lesson = $"+strconv.Itoa(len(args)))
	}
	if filter.CEFR != "" {
		args = append(args, filter.CEFR)
		where = append(where, "cefr = $"+strconv.Itoa(len(args)))
	}
	if filter.Pos != "" {
		args = append(args, filter.Pos)
		where = append(where, "pos = $"+strconv.Itoa(len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM words WHERE ` + cond
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count words", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	query := `SELECT ` + wordColumns + ` FROM words WHERE ` + cond + ` ORDER BY lesson, lemma`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	words, err := s.queryWords(ctx, query, args...)
	if err != nil {
		log.Error("failed to list words", slog.String("error", err.Error()))
		return nil, 0, err
	}

	return words, total, nil
}

// Search implements store.WordStore.Search. Longer queries use the
// full-text index over lemma and meaning ranked by ts_rank; short
// queries fall back to ILIKE.
func (s *WordStore) Search(ctx context.Context, wordbookID int64, query string, filter store.WordFilter) ([]*domain.Word, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, nil
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	where := []string{"wordbook_id = $1"}
	args := []any{wordbookID}
	if filter.Lesson != "" {
		args = append(args, filter.Lesson)
		where = append(where, "lesson = $"+strconv.Itoa(len(args)))
	}
	if filter.CEFR != "" {
		args = append(args, filter.CEFR)
		where = append(where, "cefr = $"+strconv.Itoa(len(args)))
	}
	if filter.Pos != "" {
		args = append(args, filter.Pos)
		where = append(where, "pos = $"+strconv.Itoa(len(args)))
	}

	fullText := len([]rune(query)) >= minFullTextQueryLen
	orderBy := "lemma"
	from := "words"
	if fullText {
		args = append(args, query)
		q := "$" + strconv.Itoa(len(args))
		args = append(args, "%"+query+"%")
		like := "$" + strconv.Itoa(len(args))
		from = "words, websearch_to_tsquery('simple', " + q + ") AS q"
		where = append(where,
			"(to_tsvector('simple', lemma || ' ' || meaning) @@ q OR lemma ILIKE "+like+" OR meaning ILIKE "+like+")")
		orderBy = "ts_rank(to_tsvector('simple', lemma || ' ' || meaning), q) DESC, lemma"
	} else {
		args = append(args, "%"+query+"%")
		like := "$" + strconv.Itoa(len(args))
		where = append(where, "(lemma ILIKE "+like+" OR meaning ILIKE "+like+")")
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM ` + from + ` WHERE ` + cond
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count search matches",
			slog.String("error", err.Error()),
			slog.String("query", query))
		return nil, 0, MapError(err)
	}

	args = append(args, filter.Limit)
	sqlQuery := `SELECT ` + wordColumns + ` FROM ` + from + ` WHERE ` + cond +
		` ORDER BY ` + orderBy + ` LIMIT $` + strconv.Itoa(len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sqlQuery += " OFFSET $" + strconv.Itoa(len(args))
	}

	words, err := s.queryWords(ctx, sqlQuery, args...)
	if err != nil {
		log.Error("failed to search words",
			slog.String("error", err.Error()),
			slog.String("query", query))
		return nil, 0, err
	}
	return words, total, nil
}

// Suggest implements store.WordStore.Suggest.
func (s *WordStore) Suggest(ctx context.Context, wordbookID int64, prefix string, limit int) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT DISTINCT lemma FROM words
		WHERE wordbook_id = $1 AND lemma ILIKE $2
		ORDER BY lemma
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, wordbookID, prefix+"%", limit)
	if err != nil {
		log.Error("failed to suggest lemmas",
			slog.String("error", err.Error()),
			slog.String("prefix", prefix))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var lemmas []string
	for rows.Next() {
		var lemma string
		if err := rows.Scan(&lemma); err != nil {
			return nil, MapError(err)
		}
		lemmas = append(lemmas, lemma)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return lemmas, nil
}

// ExistsByLemmaMeaning implements store.WordStore.ExistsByLemmaMeaning.
func (s *WordStore) ExistsByLemmaMeaning(ctx context.Context, wordbookID int64, lemma, meaning string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM words
			WHERE wordbook_id = $1 AND lemma = $2 AND meaning = $3
		)
	`, wordbookID, lemma, meaning).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// Delete implements store.WordStore.Delete. Cards and review history
// go with the word via ON DELETE CASCADE.
func (s *WordStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM words WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete word",
			slog.String("error", err.Error()),
			slog.Int64("word_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrWordNotFound); err != nil {
		return err
	}

	log.Info("word deleted", slog.Int64("word_id", id))
	return nil
}

// CountByWordbook implements store.WordStore.CountByWordbook.
func (s *WordStore) CountByWordbook(ctx context.Context, wordbookID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM words WHERE wordbook_id = $1`, wordbookID).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// WithTx implements store.WordStore.WithTx.
func (s *WordStore) WithTx(tx *sql.Tx) store.WordStore {
	return &WordStore{
		db:     tx,
		logger: s.logger,
	}
}
