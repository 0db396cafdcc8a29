package scheduler

import "math/rand/v2"

// noiseAmplitude bounds the jitter added to queue scores. Small enough
// that it only reorders near-ties, so two sessions built from the same
// state don't present cards in exactly the same order.
const noiseAmplitude = 0.05

// Noise supplies the per-card score jitter. The production source is
// random; tests inject ZeroNoise for deterministic ordering.
type Noise interface {
	// Next returns a value in [-noiseAmplitude, noiseAmplitude].
	Next() float64
}

// RandNoise produces uniform jitter from the shared math/rand source.
type RandNoise struct{}

// Next implements Noise.
func (RandNoise) Next() float64 {
	return (rand.Float64()*2 - 1) * noiseAmplitude
}

// ZeroNoise always returns 0, leaving queue ordering fully determined
// by the scoring formula.
type ZeroNoise struct{}

// Next implements Noise.
func (ZeroNoise) Next() float64 { return 0 }
