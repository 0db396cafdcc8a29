package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// CardStore implements the store.CardStore interface using a
// PostgreSQL database as the storage backend.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a new PostgreSQL implementation of the
// CardStore interface. If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, log *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &CardStore{
		db:     db,
		logger: log.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

const cardColumns = `id, word_id, template, hint, tags, created_at`

// studyCardQuery joins a card with its word and scheduling state. The
// trailing clauses (WHERE, ORDER BY, LIMIT) are appended per call.
const studyCardQuery = `
	SELECT
		c.id, c.word_id, c.template, c.hint, c.tags, c.created_at,
		w.id, w.wordbook_id, w.lemma, w.pos, w.gender, w.ipa, w.meaning, w.lesson, w.cefr, w.tags, w.created_at, w.updated_at,
		s.card_id, s.due, s.interval, s.ease, s.reps, s.lapses, s.algorithm, s.last_reviewed, s.created_at, s.updated_at
	FROM cards c
	JOIN words w ON w.id = c.word_id
	JOIN srs_state s ON s.card_id = c.id
`

func scanCard(row interface{ Scan(...any) error }) (*domain.Card, error) {
	var c domain.Card
	err := row.Scan(
		&c.ID,
		&c.WordID,
		&c.Template,
		&c.Hint,
		&c.Tags,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanStudyCard(row interface{ Scan(...any) error }) (*store.StudyCard, error) {
	var sc store.StudyCard
	err := row.Scan(
		&sc.Card.ID,
		&sc.Card.WordID,
		&sc.Card.Template,
		&sc.Card.Hint,
		&sc.Card.Tags,
		&sc.Card.CreatedAt,
		&sc.Word.ID,
		&sc.Word.WordbookID,
		&sc.Word.Lemma,
		&sc.Word.Pos,
		&sc.Word.Gender,
		&sc.Word.IPA,
		&sc.Word.Meaning,
		&sc.Word.Lesson,
		&sc.Word.CEFR,
		&sc.Word.Tags,
		&sc.Word.CreatedAt,
		&sc.Word.UpdatedAt,
		&sc.State.CardID,
		&sc.State.Due,
		&sc.State.Interval,
		&sc.State.Ease,
		&sc.State.Reps,
		&sc.State.Lapses,
		&sc.State.Algorithm,
		&sc.State.LastReviewed,
		&sc.State.CreatedAt,
		&sc.State.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *CardStore) queryStudyCards(ctx context.Context, query string, args ...any) ([]*store.StudyCard, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*store.StudyCard
	for rows.Next() {
		sc, err := scanStudyCard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return cards, nil
}

// Create implements store.CardStore.Create.
// Returns store.ErrInvalidEntity if the word doesn't exist.
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("word_id", card.WordID))
		return err
	}

	query := `
		INSERT INTO cards (word_id, template, hint, tags, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		card.WordID,
		card.Template,
		card.Hint,
		card.Tags,
		card.CreatedAt,
	).Scan(&card.ID)

	if err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.Int64("word_id", card.WordID))
		return MapError(err)
	}

	log.Debug("card created",
		slog.Int64("card_id", card.ID),
		slog.Int64("word_id", card.WordID))
	return nil
}

// Get implements store.CardStore.Get.
func (s *CardStore) Get(ctx context.Context, id int64) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	c, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.Int64("card_id", id))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card",
			slog.String("error", err.Error()),
			slog.Int64("card_id", id))
		return nil, MapError(err)
	}

	return c, nil
}

// GetStudyCard implements store.CardStore.GetStudyCard.
func (s *CardStore) GetStudyCard(ctx context.Context, id int64) (*store.StudyCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := studyCardQuery + ` WHERE c.id = $1`

	sc, err := scanStudyCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.Int64("card_id", id))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get study card",
			slog.String("error", err.Error()),
			slog.Int64("card_id", id))
		return nil, MapError(err)
	}

	return sc, nil
}

// ListByWord implements store.CardStore.ListByWord.
func (s *CardStore) ListByWord(ctx context.Context, wordID int64) ([]*store.StudyCard, error) {
	query := studyCardQuery + `
		WHERE c.word_id = $1
		ORDER BY c.created_at ASC
	`
	return s.queryStudyCards(ctx, query, wordID)
}

// ListDue implements store.CardStore.ListDue.
func (s *CardStore) ListDue(ctx context.Context, wordbookID int64, now time.Time, limit int) ([]*store.StudyCard, error) {
	query := studyCardQuery + `
		WHERE w.wordbook_id = $1 AND s.due <= $2
		ORDER BY s.due ASC
		LIMIT $3
	`
	return s.queryStudyCards(ctx, query, wordbookID, now, limit)
}

// ListCreatedBetween implements store.CardStore.ListCreatedBetween.
func (s *CardStore) ListCreatedBetween(ctx context.Context, wordbookID int64, from, to time.Time, limit int) ([]*store.StudyCard, error) {
	query := studyCardQuery + `
		WHERE w.wordbook_id = $1 AND c.created_at >= $2 AND c.created_at < $3
		ORDER BY c.created_at ASC
		LIMIT $4
	`
	return s.queryStudyCards(ctx, query, wordbookID, from, to, limit)
}

// ListNew implements store.CardStore.ListNew.
func (s *CardStore) ListNew(ctx context.Context, wordbookID int64, limit int) ([]*store.StudyCard, error) {
	query := studyCardQuery + `
		WHERE w.wordbook_id = $1 AND s.reps = 0
		ORDER BY c.created_at ASC
		LIMIT $2
	`
	return s.queryStudyCards(ctx, query, wordbookID, limit)
}

// CountDue implements store.CardStore.CountDue.
func (s *CardStore) CountDue(ctx context.Context, wordbookID int64, now time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM srs_state s
		JOIN cards c ON c.id = s.card_id
		JOIN words w ON w.id = c.word_id
		WHERE w.wordbook_id = $1 AND s.due <= $2
	`, wordbookID, now).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CountDueBetween implements store.CardStore.CountDueBetween.
func (s *CardStore) CountDueBetween(ctx context.Context, wordbookID int64, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM srs_state s
		JOIN cards c ON c.id = s.card_id
		JOIN words w ON w.id = c.word_id
		WHERE w.wordbook_id = $1 AND s.due >= $2 AND s.due < $3
	`, wordbookID, from, to).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CountNew implements store.CardStore.CountNew.
func (s *CardStore) CountNew(ctx context.Context, wordbookID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM srs_state s
		JOIN cards c ON c.id = s.card_id
		JOIN words w ON w.id = c.word_id
		WHERE w.wordbook_id = $1 AND s.reps = 0
	`, wordbookID).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CountByWordbook implements store.CardStore.CountByWordbook.
func (s *CardStore) CountByWordbook(ctx context.Context, wordbookID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM cards c
		JOIN words w ON w.id = c.word_id
		WHERE w.wordbook_id = $1
	`, wordbookID).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// UpdateTags implements store.CardStore.UpdateTags.
func (s *CardStore) UpdateTags(ctx context.Context, id int64, tags string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET tags = $1 WHERE id = $2`, tags, id)
	if err != nil {
		log.Error("failed to update card tags",
			slog.String("error", err.Error()),
			slog.Int64("card_id", id))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// Delete implements store.CardStore.Delete.
func (s *CardStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.Int64("card_id", id))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// WithTx implements store.CardStore.WithTx.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{
		db:     tx,
		logger: s.logger,
	}
}
