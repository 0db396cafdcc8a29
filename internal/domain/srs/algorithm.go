// Package srs implements the spaced-repetition scheduling algorithms:
// the SM-2 interval update, the rolling-review cadence for freshly
// imported cards, and the retention estimate used as a ranking signal.
package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
)

// Common errors
var (
	ErrNilState             = errors.New("srs state cannot be nil")
	ErrUnsupportedAlgorithm = errors.New("unsupported srs algorithm")
)

// Result holds the scheduling parameters produced by one graded review.
type Result struct {
	Due      time.Time
	Interval float64
	Ease     float64
	Reps     int
	Lapses   int
}

// Algorithm computes the next scheduling parameters for a graded review.
// Implementations must be pure: deterministic given the inputs and the
// evaluation instant, with no I/O or shared state.
type Algorithm interface {
	NextReview(grade domain.Grade, state *domain.SRSState, now time.Time) (Result, error)
}

// Registry dispatches a card's algorithm tag to the strategy that
// implements it. A second variant plugs in here without touching the
// queue builder or the review processor.
type Registry struct {
	algorithms map[domain.SRSAlgorithm]Algorithm
}

// NewRegistry returns a registry with the default SM-2 algorithm installed.
func NewRegistry() *Registry {
	return &Registry{
		algorithms: map[domain.SRSAlgorithm]Algorithm{
			domain.AlgorithmSM2: NewSM2(DefaultParams()),
		},
	}
}

// Register installs an algorithm under the given tag, replacing any
// previous registration.
func (r *Registry) Register(tag domain.SRSAlgorithm, alg Algorithm) {
	r.algorithms[tag] = alg
}

// NextReview dispatches to the algorithm named by the state's tag.
func (r *Registry) NextReview(
	grade domain.Grade,
	state *domain.SRSState,
	now time.Time,
) (Result, error) {
	if state == nil {
		return Result{}, ErrNilState
	}

	alg, ok := r.algorithms[state.Algorithm]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, state.Algorithm)
	}

	return alg.NextReview(grade, state, now)
}
