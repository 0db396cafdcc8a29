package scheduler

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

// Leech handling thresholds. A card that has lapsed enough times gets
// tagged and, when the failing streak continues, pushed out a few days
// with a slightly reduced ease instead of coming straight back.
const (
	leechLapseThreshold = 8
	leechDeferDays      = 3
	leechEasePenalty    = 0.05
)

// ReviewOutcome is the result of processing one review submission.
type ReviewOutcome struct {
	CardID      int64        `json:"card_id"`
	Grade       domain.Grade `json:"grade"`
	NextDue     time.Time    `json:"next_due"`
	NewInterval float64      `json:"new_interval"`
	NewEase     float64      `json:"new_ease"`
	TotalReps   int          `json:"total_reps"`
	TotalLapses int          `json:"total_lapses"`
	ElapsedMs   *int         `json:"elapsed_ms,omitempty"`
	Leech       bool         `json:"leech"`
}

// SubmitReview processes a grade for a card: it runs the interval
// algorithm, applies leech handling, appends a review event, and
// persists the new scheduling state. All writes commit atomically; a
// row lock on the state serializes concurrent submissions for the same
// card.
func (s *Service) SubmitReview(ctx context.Context, cardID int64, grade domain.Grade, elapsedMs *int) (*ReviewOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := time.Now().UTC()

	if !grade.Valid() {
		log.Warn("invalid review grade",
			slog.Int64("card_id", cardID),
			slog.Int("grade", int(grade)))
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, int(grade))
	}

	var outcome *ReviewOutcome
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cards.WithTx(tx)
		states := s.states.WithTx(tx)
		reviews := s.reviews.WithTx(tx)

		card, err := cards.Get(ctx, cardID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: card %d", ErrCardNotFound, cardID)
			}
			return fmt.Errorf("failed to load card: %w", err)
		}

		state, err := states.GetForUpdate(ctx, cardID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: card %d", ErrStateNotFound, cardID)
			}
			return fmt.Errorf("failed to load scheduling state: %w", err)
		}

		result, err := s.registry.NextReview(grade, state, now)
		if err != nil {
			return fmt.Errorf("interval algorithm failed: %w", err)
		}

		state.Due = result.Due
		state.Interval = result.Interval
		state.Ease = result.Ease
		state.Reps = result.Reps
		state.Lapses = result.Lapses
		state.LastReviewed = &now
		state.UpdatedAt = now

		// Leech handling runs on the post-update lapse count. A card
		// that keeps failing gets breathing room rather than an
		// immediate re-review.
		leech := false
		if state.Lapses >= leechLapseThreshold {
			leech = true
			if card.AddTag(domain.TagLeech) {
				if err := cards.UpdateTags(ctx, card.ID, card.Tags); err != nil {
					return fmt.Errorf("failed to tag leech: %w", err)
				}
				log.Info("card tagged as leech",
					slog.Int64("card_id", cardID),
					slog.Int("lapses", state.Lapses))
			}
			if grade <= domain.GradeHard {
				state.Due = now.AddDate(0, 0, leechDeferDays)
				if e := state.Ease - leechEasePenalty; e >= domain.MinEase {
					state.Ease = e
				} else {
					state.Ease = domain.MinEase
				}
			}
		}

		review, err := domain.NewReview(cardID, grade, elapsedMs, now)
		if err != nil {
			return fmt.Errorf("failed to build review event: %w", err)
		}
		if err := reviews.Create(ctx, review); err != nil {
			return fmt.Errorf("failed to append review: %w", err)
		}

		if err := states.Update(ctx, state); err != nil {
			return fmt.Errorf("failed to persist scheduling state: %w", err)
		}

		outcome = &ReviewOutcome{
			CardID:      cardID,
			Grade:       grade,
			NextDue:     state.Due,
			NewInterval: state.Interval,
			NewEase:     state.Ease,
			TotalReps:   state.Reps,
			TotalLapses: state.Lapses,
			ElapsedMs:   elapsedMs,
			Leech:       leech,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) ||
			errors.Is(err, ErrStateNotFound) ||
			errors.Is(err, ErrInvalidGrade) {
			return nil, err
		}
		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.Int64("card_id", cardID))
		return nil, NewSubmitReviewError("transaction failed", err)
	}

	log.Debug("review processed",
		slog.Int64("card_id", cardID),
		slog.Int("grade", int(grade)),
		slog.Float64("new_interval", outcome.NewInterval),
		slog.Float64("new_ease", outcome.NewEase),
		slog.Time("next_due", outcome.NextDue))

	return outcome, nil
}
