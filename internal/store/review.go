package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
)

// DailyReviewCount is one day of review activity. AvgGrade is the mean
// grade of that day's reviews, zero when the day has none.
type DailyReviewCount struct {
	Day      time.Time `json:"day"`
	Count    int       `json:"count"`
	AvgGrade float64   `json:"avg_grade"`
}

// GradeCount is the number of reviews recorded with a given grade.
type GradeCount struct {
	Grade domain.Grade `json:"grade"`
	Count int          `json:"count"`
}

// ReviewStore defines operations for the append-only review log.
type ReviewStore interface {
	// Create appends a review event. The review's ID is populated on
	// success.
	Create(ctx context.Context, review *domain.Review) error

	// ListByCard returns the reviews for a card, newest first.
	ListByCard(ctx context.Context, cardID int64, limit int) ([]*domain.Review, error)

	// CountSince returns the number of reviews in a wordbook recorded
	// at or after the given time.
	CountSince(ctx context.Context, wordbookID int64, since time.Time) (int, error)

	// CountByGradeSince returns per-grade review counts in a wordbook
	// recorded at or after the given time.
	CountByGradeSince(ctx context.Context, wordbookID int64, since time.Time) ([]GradeCount, error)

	// DailyCounts returns review counts per calendar day over the last
	// days days for a wordbook, oldest day first. Days without reviews
	// are omitted.
	DailyCounts(ctx context.Context, wordbookID int64, days int) ([]DailyReviewCount, error)

	// WithTx returns a ReviewStore that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewStore
}
