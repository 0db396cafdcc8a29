package srs

import (
	"math"
	"testing"
)

func TestRetentionBounds(t *testing.T) {
	t.Parallel()

	for _, ease := range []float64{1.3, 2.0, 2.5, 3.5} {
		for _, interval := range []float64{0, 0.007, 1, 6, 30, 365, 10000} {
			r := Retention(ease, interval)
			if r < 0 || r > 1 {
				t.Errorf("Retention(%v, %v) = %v out of [0,1]", ease, interval, r)
			}
		}
	}
}

func TestRetentionZeroIntervalIsCertain(t *testing.T) {
	t.Parallel()
	if r := Retention(2.5, 0); r != 1.0 {
		t.Errorf("want exactly 1.0 at zero interval, got %v", r)
	}
}

func TestRetentionDecreasesWithInterval(t *testing.T) {
	t.Parallel()
	prev := math.Inf(1)
	for _, interval := range []float64{0, 1, 2, 6, 15, 30, 90} {
		r := Retention(2.5, interval)
		if r >= prev {
			t.Fatalf("retention not strictly decreasing at interval %v: %v >= %v",
				interval, r, prev)
		}
		prev = r
	}
}

func TestRetentionEasierCardsDecaySlower(t *testing.T) {
	t.Parallel()
	hard := Retention(1.3, 10)
	easy := Retention(2.8, 10)
	if easy <= hard {
		t.Errorf("higher ease should retain more: ease 2.8 gives %v, ease 1.3 gives %v",
			easy, hard)
	}
}

func TestRetentionDegenerateEase(t *testing.T) {
	t.Parallel()
	if r := Retention(0, 5); r != 0 {
		t.Errorf("non-positive ease should yield 0, got %v", r)
	}
}
