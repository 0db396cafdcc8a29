package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/domain/srs"
	"github.com/lgrenier/vocable-api/internal/store"
)

// rollingCountFetchLimit bounds the per-window fetch when counting
// rolling-eligible cards for the stats snapshot.
const rollingCountFetchLimit = 500

// resolveWordbook maps wordbookID 0 to the active wordbook. ok is
// false when no wordbook is given and none is active.
func (s *Service) resolveWordbook(ctx context.Context, wordbookID int64) (int64, bool, error) {
	if wordbookID != 0 {
		return wordbookID, true, nil
	}
	active, err := s.wordbooks.GetActive(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoActiveWordbook) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to resolve active wordbook: %w", err)
	}
	return active.ID, true, nil
}

// Stats aggregates the counts the dashboard and the queue response
// share: total cards, due now, never reviewed, rolling-eligible, and
// reviews recorded since local midnight (UTC). Pass wordbookID 0 for
// the active wordbook; without one the snapshot comes back zeroed.
func (s *Service) Stats(ctx context.Context, wordbookID int64) (*StatsSnapshot, error) {
	wordbookID, ok, err := s.resolveWordbook(ctx, wordbookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &StatsSnapshot{}, nil
	}

	now := time.Now().UTC()

	total, err := s.cards.CountByWordbook(ctx, wordbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}

	due, err := s.cards.CountDue(ctx, wordbookID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count due cards: %w", err)
	}

	fresh, err := s.cards.CountNew(ctx, wordbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to count new cards: %w", err)
	}

	rolling := 0
	for _, checkpoint := range srs.RollingCheckpoints {
		from, to := rollingWindow(now, checkpoint)
		window, err := s.cards.ListCreatedBetween(ctx, wordbookID, from, to, rollingCountFetchLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to count rolling cards: %w", err)
		}
		rolling += len(window)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	reviewedToday, err := s.reviews.CountSince(ctx, wordbookID, midnight)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's reviews: %w", err)
	}

	return &StatsSnapshot{
		TotalCards:    total,
		DueCount:      due,
		NewCount:      fresh,
		RollingCount:  rolling,
		ReviewedToday: reviewedToday,
	}, nil
}

// StudyStats extends the snapshot with the recent grade distribution
// and recommendations for the learner.
type StudyStats struct {
	Snapshot        StatsSnapshot      `json:"snapshot"`
	GradeCounts     []store.GradeCount `json:"grade_counts"`
	SuccessRate     float64            `json:"success_rate"`
	Recommendation  string             `json:"recommendation"`
	Recommendations Recommendations    `json:"recommendations"`
}

// Recommendations are suggested session sizes derived from the current
// workload.
type Recommendations struct {
	SuggestedDailyNew     int     `json:"suggested_daily_new"`
	SuggestedDailyReviews int     `json:"suggested_daily_reviews"`
	EstimatedTimeMinutes  float64 `json:"estimated_time_minutes"`
}

// StudyStatsFor produces the dashboard statistics for a wordbook,
// looking back the given number of days for the grade distribution.
func (s *Service) StudyStatsFor(ctx context.Context, wordbookID int64, historyDays int) (*StudyStats, error) {
	wordbookID, ok, err := s.resolveWordbook(ctx, wordbookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		snapshot := &StatsSnapshot{}
		return &StudyStats{
			Snapshot:        *snapshot,
			Recommendation:  recommend(snapshot, 0, 0),
			Recommendations: recommendSessionSizes(snapshot),
		}, nil
	}

	snapshot, err := s.Stats(ctx, wordbookID)
	if err != nil {
		return nil, err
	}

	if historyDays <= 0 {
		historyDays = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -historyDays)
	grades, err := s.reviews.CountByGradeSince(ctx, wordbookID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate grades: %w", err)
	}

	total, passed := 0, 0
	for _, gc := range grades {
		total += gc.Count
		if gc.Grade >= domain.GradeGood {
			passed += gc.Count
		}
	}
	successRate := 0.0
	if total > 0 {
		successRate = float64(passed) / float64(total)
	}

	return &StudyStats{
		Snapshot:        *snapshot,
		GradeCounts:     grades,
		SuccessRate:     successRate,
		Recommendation:  recommend(snapshot, successRate, total),
		Recommendations: recommendSessionSizes(snapshot),
	}, nil
}

// recommendSessionSizes derives suggested daily session sizes from the
// current workload. Review time is estimated at thirty seconds per card.
func recommendSessionSizes(snapshot *StatsSnapshot) Recommendations {
	workload := snapshot.DueCount + snapshot.RollingCount

	suggestedNew := snapshot.NewCount
	if suggestedNew > 10 {
		suggestedNew = 10
	}
	suggestedReviews := workload
	if suggestedReviews > 30 {
		suggestedReviews = 30
	}

	return Recommendations{
		SuggestedDailyNew:     suggestedNew,
		SuggestedDailyReviews: suggestedReviews,
		EstimatedTimeMinutes:  float64(workload) * 0.5,
	}
}

// recommend maps the current workload and recent accuracy onto a short
// piece of advice.
func recommend(snapshot *StatsSnapshot, successRate float64, reviewCount int) string {
	switch {
	case snapshot.TotalCards == 0:
		return "Import a wordbook to start studying."
	case snapshot.DueCount > 2*snapshot.ReviewedToday && snapshot.DueCount > 20:
		return "A review backlog is building up. Focus on due cards before adding new ones."
	case reviewCount > 0 && successRate < 0.6:
		return "Accuracy has been low recently. Shorter, more frequent sessions may help."
	case snapshot.DueCount == 0 && snapshot.NewCount > 0:
		return "All caught up. A few new cards would keep the pipeline full."
	case snapshot.DueCount == 0 && snapshot.NewCount == 0:
		return "Nothing to study right now. Come back when cards fall due."
	default:
		return "Keep the current pace."
	}
}

// ProgressPoint is one day of review activity for the progress chart.
type ProgressPoint struct {
	Day      time.Time `json:"day"`
	Count    int       `json:"count"`
	AvgGrade float64   `json:"avg_grade"`
}

// Progress returns daily review counts over the trailing window.
func (s *Service) Progress(ctx context.Context, wordbookID int64, days int) ([]ProgressPoint, error) {
	wordbookID, ok, err := s.resolveWordbook(ctx, wordbookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []ProgressPoint{}, nil
	}

	counts, err := s.reviews.DailyCounts(ctx, wordbookID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily counts: %w", err)
	}

	points := make([]ProgressPoint, 0, len(counts))
	for _, dc := range counts {
		points = append(points, ProgressPoint{Day: dc.Day, Count: dc.Count, AvgGrade: dc.AvgGrade})
	}
	return points, nil
}

// ForecastPoint is the number of cards falling due on one future day.
type ForecastPoint struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// DueForecast returns per-day due counts for the coming days, starting
// today. Cards already overdue count toward the first day.
func (s *Service) DueForecast(ctx context.Context, wordbookID int64, days int) ([]ForecastPoint, error) {
	wordbookID, ok, err := s.resolveWordbook(ctx, wordbookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []ForecastPoint{}, nil
	}

	if days <= 0 {
		days = 7
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	points := make([]ForecastPoint, 0, days)
	for i := 0; i < days; i++ {
		from := dayStart.AddDate(0, 0, i)
		to := from.AddDate(0, 0, 1)
		if i == 0 {
			// Fold overdue cards into today.
			from = time.Time{}
		}
		count, err := s.cards.CountDueBetween(ctx, wordbookID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to count due cards: %w", err)
		}
		points = append(points, ForecastPoint{Day: dayStart.AddDate(0, 0, i), Count: count})
	}

	return points, nil
}
