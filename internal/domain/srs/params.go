package srs

// Params defines the tunable constants of the SM-2 variant.
type Params struct {
	// MinEase is the absolute ease floor. No branch may go below it.
	MinEase float64

	// EasePenalty is subtracted from ease on Again and Hard grades.
	EasePenalty float64

	// EaseBonus is added to ease on Easy grades.
	EaseBonus float64

	// HardDamping shortens the Hard-grade interval multiplier: the
	// growth factor becomes ease * (1 - HardDamping).
	HardDamping float64

	// AgainMinutes is how soon a forgotten card comes back.
	AgainMinutes float64

	// FirstInterval is the interval (days) after the first successful
	// review, per grade. Easy jumps further than Good/Hard.
	FirstIntervalGood float64
	FirstIntervalEasy float64

	// SecondInterval is the interval (days) after the second review.
	SecondInterval float64

	// EasyMultiplier is the extra growth applied on Easy grades past
	// the second review.
	EasyMultiplier float64
}

// DefaultParams returns the standard SM-2 constants.
func DefaultParams() *Params {
	return &Params{
		MinEase:           1.3,
		EasePenalty:       0.2,
		EaseBonus:         0.1,
		HardDamping:       0.15,
		AgainMinutes:      10,
		FirstIntervalGood: 1.0,
		FirstIntervalEasy: 4.0,
		SecondInterval:    6.0,
		EasyMultiplier:    1.3,
	}
}
