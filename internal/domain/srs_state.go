package domain

import (
	"errors"
	"time"
)

// SRSAlgorithm selects which interval algorithm variant governs a card.
type SRSAlgorithm string

// Known algorithm tags. Only SM-2 is implemented; FSRS is a reserved
// extension point.
const (
	AlgorithmSM2  SRSAlgorithm = "sm2"
	AlgorithmFSRS SRSAlgorithm = "fsrs"
)

// SM-2 defaults for freshly created state.
const (
	InitialInterval = 1.0
	InitialEase     = 2.5
	MinEase         = 1.3
)

// SRSState validation errors
var (
	// ErrStateCardIDEmpty is returned when state is not attached to a card.
	ErrStateCardIDEmpty = errors.New("srs state card ID cannot be empty")

	// ErrStateIntervalInvalid is returned when the interval is not positive.
	ErrStateIntervalInvalid = errors.New("srs state interval must be positive")

	// ErrStateEaseInvalid is returned when ease falls below the SM-2 floor.
	ErrStateEaseInvalid = errors.New("srs state ease cannot be below 1.3")

	// ErrStateCountsInvalid is returned when reps or lapses go negative.
	ErrStateCountsInvalid = errors.New("srs state reps and lapses cannot be negative")
)

// SRSState is the scheduling state attached 1:1 to a card. It is created
// atomically with its card and mutated only by the review processor.
// Interval is expressed in days and may be fractional (the Again branch
// schedules ten minutes out).
type SRSState struct {
	CardID       int64        `json:"card_id"`
	Due          time.Time    `json:"due"`
	Interval     float64      `json:"interval"`
	Ease         float64      `json:"ease"`
	Reps         int          `json:"reps"`
	Lapses       int          `json:"lapses"`
	Algorithm    SRSAlgorithm `json:"algorithm"`
	LastReviewed *time.Time   `json:"last_reviewed,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewSRSState creates the default state for a freshly imported card:
// due immediately, one-day interval, ease 2.5, no reviews yet.
func NewSRSState(cardID int64, now time.Time) (*SRSState, error) {
	state := &SRSState{
		CardID:    cardID,
		Due:       now,
		Interval:  InitialInterval,
		Ease:      InitialEase,
		Reps:      0,
		Lapses:    0,
		Algorithm: AlgorithmSM2,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the SRSState has valid data.
func (s *SRSState) Validate() error {
	if s.CardID == 0 {
		return ErrStateCardIDEmpty
	}
	if s.Interval <= 0 {
		return ErrStateIntervalInvalid
	}
	if s.Ease < MinEase {
		return ErrStateEaseInvalid
	}
	if s.Reps < 0 || s.Lapses < 0 {
		return ErrStateCountsInvalid
	}
	return nil
}
