package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// ReviewStore implements the store.ReviewStore interface using a
// PostgreSQL database as the storage backend. Reviews are append-only;
// there is no update or delete.
type ReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewStore creates a new PostgreSQL implementation of the
// ReviewStore interface. If logger is nil, a default logger will be
// used.
func NewReviewStore(db store.DBTX, log *slog.Logger) *ReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ReviewStore{
		db:     db,
		logger: log.With(slog.String("component", "review_store")),
	}
}

// Ensure ReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*ReviewStore)(nil)

// Create implements store.ReviewStore.Create.
func (s *ReviewStore) Create(ctx context.Context, review *domain.Review) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO reviews (card_id, ts, grade, elapsed_ms)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		review.CardID,
		review.Timestamp,
		review.Grade,
		review.ElapsedMs,
	).Scan(&review.ID)
	if err != nil {
		log.Error("failed to create review",
			slog.String("error", err.Error()),
			slog.Int64("card_id", review.CardID))
		return MapError(err)
	}

	return nil
}

// ListByCard implements store.ReviewStore.ListByCard.
func (s *ReviewStore) ListByCard(ctx context.Context, cardID int64, limit int) ([]*domain.Review, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, card_id, ts, grade, elapsed_ms
		FROM reviews
		WHERE card_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, cardID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []*domain.Review
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(&r.ID, &r.CardID, &r.Timestamp, &r.Grade, &r.ElapsedMs); err != nil {
			return nil, MapError(err)
		}
		reviews = append(reviews, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return reviews, nil
}

// CountSince implements store.ReviewStore.CountSince.
func (s *ReviewStore) CountSince(ctx context.Context, wordbookID int64, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM reviews r
		JOIN cards c ON c.id = r.card_id
		JOIN words w ON w.id = c.word_id
		WHERE w.wordbook_id = $1 AND r.ts >= $2
	`, wordbookID, since).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CountByGradeSince implements store.ReviewStore.CountByGradeSince.
func (s *ReviewStore) CountByGradeSince(ctx context.Context, wordbookID int64, since time.Time) ([]store.GradeCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.grade, COUNT(*)
		FROM reviews r
		JOIN cards c ON c.id = r.card_id
		JOIN words w ON w.id = c.word_id
		WHERE w.wordbook_id = $1 AND r.ts >= $2
		GROUP BY r.grade
		ORDER BY r.grade
	`, wordbookID, since)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var counts []store.GradeCount
	for rows.Next() {
		var gc store.GradeCount
		if err := rows.Scan(&gc.Grade, &gc.Count); err != nil {
			return nil, MapError(err)
		}
		counts = append(counts, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return counts, nil
}

// DailyCounts implements store.ReviewStore.DailyCounts.
func (s *ReviewStore) DailyCounts(ctx context.Context, wordbookID int64, days int) ([]store.DailyReviewCount, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := s.db.QueryContext(ctx, `
		SELECT date_trunc('day', r.ts) AS day, COUNT(*), AVG(r.grade)
		FROM reviews r
		JOIN cards c ON c.id = r.card_id
		JOIN words w ON w.id = c.word_id
		WHERE w.wordbook_id = $1 AND r.ts >= $2
		GROUP BY day
		ORDER BY day
	`, wordbookID, since)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var counts []store.DailyReviewCount
	for rows.Next() {
		var dc store.DailyReviewCount
		if err := rows.Scan(&dc.Day, &dc.Count, &dc.AvgGrade); err != nil {
			return nil, MapError(err)
		}
		counts = append(counts, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return counts, nil
}

// WithTx implements store.ReviewStore.WithTx.
func (s *ReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &ReviewStore{
		db:     tx,
		logger: s.logger,
	}
}
