package srs

import (
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
)

// SM2 is the default interval algorithm, a variant of SuperMemo-2.
type SM2 struct {
	params *Params
}

// NewSM2 creates the SM-2 algorithm with the given parameters.
func NewSM2(params *Params) *SM2 {
	if params == nil {
		params = DefaultParams()
	}
	return &SM2{params: params}
}

var _ Algorithm = (*SM2)(nil)

// NextReview implements Algorithm. The evaluation instant is an input so
// results are fully deterministic.
func (a *SM2) NextReview(
	grade domain.Grade,
	state *domain.SRSState,
	now time.Time,
) (Result, error) {
	if state == nil {
		return Result{}, ErrNilState
	}
	if !grade.Valid() {
		return Result{}, domain.ErrInvalidGrade
	}

	switch grade {
	case domain.GradeAgain:
		return a.again(state, now), nil
	case domain.GradeHard:
		return a.hard(state, now), nil
	case domain.GradeGood:
		return a.good(state, now), nil
	default:
		return a.easy(state, now), nil
	}
}

// again resets the card: back in ten minutes, reps cleared, one more lapse.
func (a *SM2) again(state *domain.SRSState, now time.Time) Result {
	interval := a.params.AgainMinutes / (24 * 60)
	return Result{
		Due:      addDays(now, interval),
		Interval: interval,
		Ease:     a.clampEase(state.Ease - a.params.EasePenalty),
		Reps:     0,
		Lapses:   state.Lapses + 1,
	}
}

// hard eases the card down and grows the interval with the damped factor.
// The damping multiplies the already-decremented ease, compounding the
// penalty; this matches the shipped behavior and is kept deliberately.
func (a *SM2) hard(state *domain.SRSState, now time.Time) Result {
	ease := a.clampEase(state.Ease - a.params.EasePenalty)

	var interval float64
	switch state.Reps {
	case 0:
		interval = a.params.FirstIntervalGood
	case 1:
		interval = a.params.SecondInterval
	default:
		interval = state.Interval * ease * (1 - a.params.HardDamping)
	}

	return Result{
		Due:      addDays(now, interval),
		Interval: interval,
		Ease:     ease,
		Reps:     state.Reps + 1,
		Lapses:   state.Lapses,
	}
}

// good grows the interval by the unchanged ease factor.
func (a *SM2) good(state *domain.SRSState, now time.Time) Result {
	var interval float64
	switch state.Reps {
	case 0:
		interval = a.params.FirstIntervalGood
	case 1:
		interval = a.params.SecondInterval
	default:
		interval = state.Interval * state.Ease
	}

	return Result{
		Due:      addDays(now, interval),
		Interval: interval,
		Ease:     state.Ease,
		Reps:     state.Reps + 1,
		Lapses:   state.Lapses,
	}
}

// easy raises ease and grows the interval with an extra multiplier.
func (a *SM2) easy(state *domain.SRSState, now time.Time) Result {
	ease := state.Ease + a.params.EaseBonus

	var interval float64
	switch state.Reps {
	case 0:
		interval = a.params.FirstIntervalEasy
	case 1:
		interval = a.params.SecondInterval * ease
	default:
		interval = state.Interval * ease * a.params.EasyMultiplier
	}

	return Result{
		Due:      addDays(now, interval),
		Interval: interval,
		Ease:     ease,
		Reps:     state.Reps + 1,
		Lapses:   state.Lapses,
	}
}

func (a *SM2) clampEase(ease float64) float64 {
	if ease < a.params.MinEase {
		return a.params.MinEase
	}
	return ease
}

// addDays advances now by a fractional number of days.
func addDays(now time.Time, days float64) time.Time {
	return now.Add(time.Duration(days * 24 * float64(time.Hour)))
}
