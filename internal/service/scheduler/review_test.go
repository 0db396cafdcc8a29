package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReviewGoodOnFreshCard(t *testing.T) {
	now := time.Now().UTC()
	card := studyCard(1, 0, now, now)

	svc, _, states, reviews := newTestService(testWordbook(true), card)

	outcome, err := svc.SubmitReview(context.Background(), 1, domain.GradeGood, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), outcome.CardID)
	assert.InDelta(t, 1.0, outcome.NewInterval, 1e-9)
	assert.InDelta(t, 2.5, outcome.NewEase, 1e-9)
	assert.Equal(t, 1, outcome.TotalReps)
	assert.Equal(t, 0, outcome.TotalLapses)
	assert.False(t, outcome.Leech)
	assert.WithinDuration(t, now.Add(24*time.Hour), outcome.NextDue, 5*time.Second)

	// State persisted and review appended.
	state, err := states.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Reps)
	require.NotNil(t, state.LastReviewed)
	require.Len(t, reviews.reviews, 1)
	assert.Equal(t, domain.GradeGood, reviews.reviews[0].Grade)
}

func TestSubmitReviewAgainResetsAndLapses(t *testing.T) {
	now := time.Now().UTC()
	card := studyCard(1, 3, now.Add(-time.Hour), now.AddDate(0, 0, -30))
	card.State.Interval = 10.0

	svc, _, _, _ := newTestService(testWordbook(true), card)

	outcome, err := svc.SubmitReview(context.Background(), 1, domain.GradeAgain, nil)
	require.NoError(t, err)

	assert.InDelta(t, 10.0/1440.0, outcome.NewInterval, 1e-9)
	assert.InDelta(t, 2.3, outcome.NewEase, 1e-9)
	assert.Equal(t, 0, outcome.TotalReps)
	assert.Equal(t, 1, outcome.TotalLapses)
	assert.WithinDuration(t, now.Add(10*time.Minute), outcome.NextDue, 5*time.Second)
}

func TestSubmitReviewLeechDefersFailingCard(t *testing.T) {
	now := time.Now().UTC()
	card := studyCard(1, 5, now.Add(-time.Hour), now.AddDate(0, 0, -60))
	card.State.Lapses = 7

	svc, cards, _, _ := newTestService(testWordbook(true), card)

	outcome, err := svc.SubmitReview(context.Background(), 1, domain.GradeAgain, nil)
	require.NoError(t, err)

	assert.True(t, outcome.Leech)
	assert.Equal(t, 8, outcome.TotalLapses)
	// The algorithm drops ease to 2.3, then the leech penalty takes
	// another 0.05.
	assert.InDelta(t, 2.25, outcome.NewEase, 1e-9)
	assert.WithinDuration(t, now.AddDate(0, 0, 3), outcome.NextDue, 5*time.Second)

	stored, err := cards.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, stored.HasTag(domain.TagLeech))
}

func TestSubmitReviewLeechPassingGradeNotDeferred(t *testing.T) {
	now := time.Now().UTC()
	card := studyCard(1, 5, now.Add(-time.Hour), now.AddDate(0, 0, -60))
	card.State.Lapses = 9
	card.State.Interval = 6.0

	svc, cards, _, _ := newTestService(testWordbook(true), card)

	outcome, err := svc.SubmitReview(context.Background(), 1, domain.GradeGood, nil)
	require.NoError(t, err)

	assert.True(t, outcome.Leech)
	// Good keeps ease at 2.5 and grows the interval; no defer for a
	// passing grade even on a leech.
	assert.InDelta(t, 2.5, outcome.NewEase, 1e-9)
	assert.InDelta(t, 15.0, outcome.NewInterval, 1e-9)

	stored, err := cards.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, stored.HasTag(domain.TagLeech))
}

func TestSubmitReviewLeechEaseFloor(t *testing.T) {
	now := time.Now().UTC()
	card := studyCard(1, 5, now.Add(-time.Hour), now.AddDate(0, 0, -60))
	card.State.Lapses = 7
	card.State.Ease = 1.3

	svc, _, _, _ := newTestService(testWordbook(true), card)

	outcome, err := svc.SubmitReview(context.Background(), 1, domain.GradeAgain, nil)
	require.NoError(t, err)

	// Both the algorithm penalty and the leech penalty clamp at 1.3.
	assert.InDelta(t, 1.3, outcome.NewEase, 1e-9)
}

func TestSubmitReviewInvalidGrade(t *testing.T) {
	now := time.Now().UTC()
	card := studyCard(1, 0, now, now)

	svc, _, states, reviews := newTestService(testWordbook(true), card)

	for _, grade := range []domain.Grade{-1, 4, 100} {
		_, err := svc.SubmitReview(context.Background(), 1, grade, nil)
		assert.ErrorIs(t, err, ErrInvalidGrade)
	}

	// No state change and no review event on rejection.
	state, err := states.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Reps)
	assert.Empty(t, reviews.reviews)
}

func TestSubmitReviewUnknownCard(t *testing.T) {
	svc, _, _, _ := newTestService(testWordbook(true))

	_, err := svc.SubmitReview(context.Background(), 42, domain.GradeGood, nil)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestSubmitReviewMissingState(t *testing.T) {
	now := time.Now().UTC()
	card := studyCard(1, 0, now, now)

	svc, _, states, _ := newTestService(testWordbook(true), card)
	delete(states.states, 1)

	_, err := svc.SubmitReview(context.Background(), 1, domain.GradeGood, nil)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestSubmitReviewRecordsElapsed(t *testing.T) {
	now := time.Now().UTC()
	card := studyCard(1, 0, now, now)

	svc, _, _, reviews := newTestService(testWordbook(true), card)

	elapsed := 3500
	outcome, err := svc.SubmitReview(context.Background(), 1, domain.GradeEasy, &elapsed)
	require.NoError(t, err)

	require.NotNil(t, outcome.ElapsedMs)
	assert.Equal(t, 3500, *outcome.ElapsedMs)
	require.Len(t, reviews.reviews, 1)
	require.NotNil(t, reviews.reviews[0].ElapsedMs)
	assert.Equal(t, 3500, *reviews.reviews[0].ElapsedMs)
}
