package srs

import "time"

// RollingCheckpoints are the fixed reinforcement offsets, in days since
// a card's creation. Every new card gets a light-touch review at each of
// them regardless of its SRS state.
var RollingCheckpoints = []int{1, 2, 4, 7}

// IsRollingDue reports whether the card's age lands exactly on a rolling
// checkpoint today. Age is the whole number of elapsed days.
func IsRollingDue(createdAt, now time.Time) bool {
	elapsed := daysSince(createdAt, now)
	for _, d := range RollingCheckpoints {
		if elapsed == d {
			return true
		}
	}
	return false
}

// NextRollingDate returns the first rolling review strictly after the
// card's current age, or false once all checkpoints are exhausted.
func NextRollingDate(createdAt, now time.Time) (time.Time, bool) {
	elapsed := daysSince(createdAt, now)
	for _, d := range RollingCheckpoints {
		if d > elapsed {
			return createdAt.AddDate(0, 0, d), true
		}
	}
	return time.Time{}, false
}

// RollingDates returns every rolling review date for a card.
func RollingDates(createdAt time.Time) []time.Time {
	dates := make([]time.Time, 0, len(RollingCheckpoints))
	for _, d := range RollingCheckpoints {
		dates = append(dates, createdAt.AddDate(0, 0, d))
	}
	return dates
}

func daysSince(createdAt, now time.Time) int {
	return int(now.Sub(createdAt).Hours() / 24)
}
