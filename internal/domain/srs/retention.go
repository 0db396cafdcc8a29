package srs

import "math"

// Retention estimates the probability a card is still remembered, as a
// rough Ebbinghaus decay with the ease factor as the time constant:
// exp(-interval/ease), clamped to [0,1]. It is a ranking signal only,
// never an eligibility test.
func Retention(ease, interval float64) float64 {
	if ease <= 0 {
		return 0
	}
	retention := math.Exp(-interval / ease)
	return math.Max(0, math.Min(1, retention))
}
