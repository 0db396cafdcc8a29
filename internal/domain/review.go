package domain

import (
	"errors"
	"time"
)

// Grade is the learner's self-assessment of a review.
type Grade int

// Grades follow the SM-2 convention: 0 forgets, 3 breezes through.
const (
	GradeAgain Grade = 0
	GradeHard  Grade = 1
	GradeGood  Grade = 2
	GradeEasy  Grade = 3
)

var (
	// ErrInvalidGrade is returned when a grade falls outside {0,1,2,3}.
	ErrInvalidGrade = errors.New("grade must be between 0 (again) and 3 (easy)")

	// ErrReviewCardIDEmpty is returned when a review is not attached to a card.
	ErrReviewCardIDEmpty = errors.New("review card ID cannot be empty")
)

// Valid reports whether the grade is one of the four defined values.
func (g Grade) Valid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// String returns the conventional name for the grade.
func (g Grade) String() string {
	switch g {
	case GradeAgain:
		return "again"
	case GradeHard:
		return "hard"
	case GradeGood:
		return "good"
	case GradeEasy:
		return "easy"
	default:
		return "invalid"
	}
}

// Review is an immutable, append-only record of a single graded review.
// Reviews are never updated or deleted in normal operation.
type Review struct {
	ID        int64     `json:"id"`
	CardID    int64     `json:"card_id"`
	Timestamp time.Time `json:"ts"`
	Grade     Grade     `json:"grade"`
	ElapsedMs *int      `json:"elapsed_ms,omitempty"`
}

// NewReview creates a review event for the given card at the given instant.
func NewReview(cardID int64, grade Grade, elapsedMs *int, now time.Time) (*Review, error) {
	if !grade.Valid() {
		return nil, ErrInvalidGrade
	}
	if cardID == 0 {
		return nil, ErrReviewCardIDEmpty
	}
	return &Review{
		CardID:    cardID,
		Timestamp: now,
		Grade:     grade,
		ElapsedMs: elapsedMs,
	}, nil
}
