package srs

import (
	"testing"
	"time"
)

func TestIsRollingDue(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		ageDays int
		want    bool
	}{
		{"created today", 0, false},
		{"one day old", 1, true},
		{"two days old", 2, true},
		{"three days old", 3, false},
		{"four days old", 4, true},
		{"five days old", 5, false},
		{"seven days old", 7, true},
		{"eight days old", 8, false},
		{"a month old", 30, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			createdAt := now.AddDate(0, 0, -tc.ageDays)
			if got := IsRollingDue(createdAt, now); got != tc.want {
				t.Errorf("age %d days: want %v, got %v", tc.ageDays, tc.want, got)
			}
		})
	}
}

func TestIsRollingDuePartialDay(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)

	// 1.5 days old still counts as day 1.
	createdAt := now.Add(-36 * time.Hour)
	if !IsRollingDue(createdAt, now) {
		t.Error("36 hours of age should land on checkpoint 1")
	}

	// 23 hours old is still day 0.
	createdAt = now.Add(-23 * time.Hour)
	if IsRollingDue(createdAt, now) {
		t.Error("23 hours of age should not land on any checkpoint")
	}
}

func TestNextRollingDate(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		ageDays  int
		wantDays int // offset from creation; -1 means exhausted
	}{
		{"new card goes to day 1", 0, 1},
		{"day 1 goes to day 2", 1, 2},
		{"day 2 goes to day 4", 2, 4},
		{"day 3 goes to day 4", 3, 4},
		{"day 4 goes to day 7", 4, 7},
		{"day 6 goes to day 7", 6, 7},
		{"day 7 is the last checkpoint", 7, -1},
		{"day 30 is exhausted", 30, -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			createdAt := now.AddDate(0, 0, -tc.ageDays)
			next, ok := NextRollingDate(createdAt, now)

			if tc.wantDays < 0 {
				if ok {
					t.Fatalf("expected no next date, got %v", next)
				}
				return
			}

			if !ok {
				t.Fatal("expected a next date, got none")
			}
			want := createdAt.AddDate(0, 0, tc.wantDays)
			if !next.Equal(want) {
				t.Errorf("want %v, got %v", want, next)
			}
		})
	}
}

func TestRollingDates(t *testing.T) {
	t.Parallel()
	createdAt := time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC)

	dates := RollingDates(createdAt)
	if len(dates) != 4 {
		t.Fatalf("want 4 dates, got %d", len(dates))
	}
	for i, offset := range RollingCheckpoints {
		want := createdAt.AddDate(0, 0, offset)
		if !dates[i].Equal(want) {
			t.Errorf("date %d: want %v, got %v", i, want, dates[i])
		}
	}
}
