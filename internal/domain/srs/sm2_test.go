package srs

import (
	"math"
	"testing"
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func stateWith(interval, ease float64, reps, lapses int) *domain.SRSState {
	return &domain.SRSState{
		CardID:    1,
		Due:       time.Now().UTC(),
		Interval:  interval,
		Ease:      ease,
		Reps:      reps,
		Lapses:    lapses,
		Algorithm: domain.AlgorithmSM2,
	}
}

func TestSM2NextReviewIntervals(t *testing.T) {
	t.Parallel()
	alg := NewSM2(DefaultParams())
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name         string
		grade        domain.Grade
		interval     float64
		ease         float64
		reps         int
		lapses       int
		wantInterval float64
		wantEase     float64
		wantReps     int
		wantLapses   int
	}{
		{
			name:         "again resets reps and schedules ten minutes out",
			grade:        domain.GradeAgain,
			interval:     12.0,
			ease:         2.5,
			reps:         5,
			lapses:       1,
			wantInterval: 10.0 / 1440.0,
			wantEase:     2.3,
			wantReps:     0,
			wantLapses:   2,
		},
		{
			name:         "again respects the ease floor",
			grade:        domain.GradeAgain,
			interval:     1.0,
			ease:         1.35,
			reps:         0,
			lapses:       7,
			wantInterval: 10.0 / 1440.0,
			wantEase:     1.3,
			wantReps:     0,
			wantLapses:   8,
		},
		{
			name:         "hard first review is one day",
			grade:        domain.GradeHard,
			interval:     1.0,
			ease:         2.5,
			reps:         0,
			lapses:       0,
			wantInterval: 1.0,
			wantEase:     2.3,
			wantReps:     1,
			wantLapses:   0,
		},
		{
			name:         "hard second review is six days",
			grade:        domain.GradeHard,
			interval:     1.0,
			ease:         2.5,
			reps:         1,
			lapses:       0,
			wantInterval: 6.0,
			wantEase:     2.3,
			wantReps:     2,
			wantLapses:   0,
		},
		{
			name:         "hard mature review uses the decremented ease with damping",
			grade:        domain.GradeHard,
			interval:     10.0,
			ease:         2.5,
			reps:         3,
			lapses:       0,
			wantInterval: 10.0 * 2.3 * 0.85,
			wantEase:     2.3,
			wantReps:     4,
			wantLapses:   0,
		},
		{
			name:         "good first review is one day and leaves ease alone",
			grade:        domain.GradeGood,
			interval:     1.0,
			ease:         2.5,
			reps:         0,
			lapses:       0,
			wantInterval: 1.0,
			wantEase:     2.5,
			wantReps:     1,
			wantLapses:   0,
		},
		{
			name:         "good second review is six days",
			grade:        domain.GradeGood,
			interval:     1.0,
			ease:         2.2,
			reps:         1,
			lapses:       0,
			wantInterval: 6.0,
			wantEase:     2.2,
			wantReps:     2,
			wantLapses:   0,
		},
		{
			name:         "good mature review multiplies by ease",
			grade:        domain.GradeGood,
			interval:     10.0,
			ease:         2.5,
			reps:         4,
			lapses:       2,
			wantInterval: 25.0,
			wantEase:     2.5,
			wantReps:     5,
			wantLapses:   2,
		},
		{
			name:         "easy first review is four days with an ease bonus",
			grade:        domain.GradeEasy,
			interval:     1.0,
			ease:         2.5,
			reps:         0,
			lapses:       0,
			wantInterval: 4.0,
			wantEase:     2.6,
			wantReps:     1,
			wantLapses:   0,
		},
		{
			name:         "easy second review is six days times the new ease",
			grade:        domain.GradeEasy,
			interval:     4.0,
			ease:         2.5,
			reps:         1,
			lapses:       0,
			wantInterval: 6.0 * 2.6,
			wantEase:     2.6,
			wantReps:     2,
			wantLapses:   0,
		},
		{
			name:         "easy mature review gets the extra multiplier",
			grade:        domain.GradeEasy,
			interval:     10.0,
			ease:         2.5,
			reps:         3,
			lapses:       0,
			wantInterval: 10.0 * 2.6 * 1.3,
			wantEase:     2.6,
			wantReps:     4,
			wantLapses:   0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := stateWith(tc.interval, tc.ease, tc.reps, tc.lapses)
			result, err := alg.NextReview(tc.grade, state, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !almostEqual(result.Interval, tc.wantInterval) {
				t.Errorf("interval: want %v, got %v", tc.wantInterval, result.Interval)
			}
			if !almostEqual(result.Ease, tc.wantEase) {
				t.Errorf("ease: want %v, got %v", tc.wantEase, result.Ease)
			}
			if result.Reps != tc.wantReps {
				t.Errorf("reps: want %d, got %d", tc.wantReps, result.Reps)
			}
			if result.Lapses != tc.wantLapses {
				t.Errorf("lapses: want %d, got %d", tc.wantLapses, result.Lapses)
			}

			wantDue := now.Add(time.Duration(tc.wantInterval * 24 * float64(time.Hour)))
			if diff := result.Due.Sub(wantDue); diff > time.Second || diff < -time.Second {
				t.Errorf("due: want %v, got %v", wantDue, result.Due)
			}
		})
	}
}

func TestSM2InvalidGrade(t *testing.T) {
	t.Parallel()
	alg := NewSM2(nil)
	now := time.Now().UTC()

	for _, grade := range []domain.Grade{-1, 4, 100} {
		if _, err := alg.NextReview(grade, stateWith(1, 2.5, 0, 0), now); err == nil {
			t.Errorf("grade %d: expected error, got none", grade)
		}
	}
}

func TestSM2NilState(t *testing.T) {
	t.Parallel()
	alg := NewSM2(nil)
	if _, err := alg.NextReview(domain.GradeGood, nil, time.Now().UTC()); err == nil {
		t.Fatal("expected error for nil state")
	}
}

// Ease must never drop below 1.3, whatever sequence of grades arrives.
func TestSM2EaseFloor(t *testing.T) {
	t.Parallel()
	alg := NewSM2(DefaultParams())
	now := time.Now().UTC()

	for _, grade := range []domain.Grade{
		domain.GradeAgain, domain.GradeHard, domain.GradeGood, domain.GradeEasy,
	} {
		state := stateWith(3.0, 1.3, 2, 0)
		result, err := alg.NextReview(grade, state, now)
		if err != nil {
			t.Fatalf("grade %v: unexpected error: %v", grade, err)
		}
		if result.Ease < 1.3 {
			t.Errorf("grade %v: ease %v fell below floor", grade, result.Ease)
		}
	}
}

// Lapses only ever grow, across any sequence of reviews.
func TestSM2LapsesMonotonic(t *testing.T) {
	t.Parallel()
	alg := NewSM2(DefaultParams())
	now := time.Now().UTC()

	state := stateWith(1.0, 2.5, 0, 0)
	grades := []domain.Grade{
		domain.GradeGood, domain.GradeAgain, domain.GradeHard,
		domain.GradeAgain, domain.GradeEasy, domain.GradeAgain,
	}

	prevLapses := 0
	for i, grade := range grades {
		result, err := alg.NextReview(grade, state, now)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if result.Lapses < prevLapses {
			t.Fatalf("step %d: lapses decreased from %d to %d", i, prevLapses, result.Lapses)
		}
		prevLapses = result.Lapses
		state.Interval = result.Interval
		state.Ease = result.Ease
		state.Reps = result.Reps
		state.Lapses = result.Lapses
	}

	// Three Again grades in the sequence.
	if prevLapses != 3 {
		t.Errorf("want 3 lapses after sequence, got %d", prevLapses)
	}
}

func TestRegistryDispatch(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	now := time.Now().UTC()

	state := stateWith(1.0, 2.5, 0, 0)
	result, err := registry.NextReview(domain.GradeGood, state, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(result.Interval, 1.0) {
		t.Errorf("want interval 1.0, got %v", result.Interval)
	}

	state.Algorithm = domain.AlgorithmFSRS
	if _, err := registry.NextReview(domain.GradeGood, state, now); err == nil {
		t.Fatal("expected error for unregistered algorithm")
	}
}
