package service

import (
	"testing"
	"time"

	"dagplanner-api/modules/schedule/entity"
)

func testInterval(t *testing.T, startHour, startMin, endHour, endMin int) entity.Interval {
	t.Helper()
	day := func(h, m int) time.Time {
		return time.Date(2026, 9, 14, h, m, 0, 0, time.UTC)
	}
	return entity.Interval{Start: day(startHour, startMin), End: day(endHour, endMin)}
}

func TestFindConflicts(t *testing.T) {
	busy := entity.MergeIntervals([]entity.Interval{
		testInterval(t, 9, 0, 10, 0),
		testInterval(t, 11, 0, 12, 0),
		testInterval(t, 14, 0, 15, 30),
	})

	t.Run("no overlap", func(t *testing.T) {
		got := FindConflicts(testInterval(t, 10, 0, 11, 0), busy)
		if len(got) != 0 {
			t.Errorf("got %v, want no conflicts", got)
		}
	})

	t.Run("single overlap", func(t *testing.T) {
		got := FindConflicts(testInterval(t, 11, 30, 13, 0), busy)
		if len(got) != 1 {
			t.Fatalf("got %d conflicts, want 1", len(got))
		}
		if !got[0].Start.Equal(testInterval(t, 11, 0, 12, 0).Start) {
			t.Errorf("got conflict %v, want the 11:00 interval", got[0])
		}
	})

	t.Run("candidate spanning several busy intervals", func(t *testing.T) {
		got := FindConflicts(testInterval(t, 9, 30, 15, 0), busy)
		if len(got) != 3 {
			t.Errorf("got %d conflicts, want 3", len(got))
		}
	})

	t.Run("boundary touch is not a conflict", func(t *testing.T) {
		if got := FindConflicts(testInterval(t, 12, 0, 14, 0), busy); len(got) != 0 {
			t.Errorf("got %v, want no conflicts", got)
		}
	})

	t.Run("zero-length candidate", func(t *testing.T) {
		candidate := entity.Interval{
			Start: testInterval(t, 9, 30, 10, 0).Start,
			End:   testInterval(t, 9, 30, 10, 0).Start,
		}
		if got := FindConflicts(candidate, busy); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})

	t.Run("empty busy set", func(t *testing.T) {
		if got := FindConflicts(testInterval(t, 9, 0, 17, 0), nil); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})
}

func TestHasConflict(t *testing.T) {
	busy := entity.MergeIntervals([]entity.Interval{testInterval(t, 10, 0, 11, 0)})
	if !HasConflict(testInterval(t, 10, 30, 11, 30), busy) {
		t.Error("expected conflict")
	}
	if HasConflict(testInterval(t, 11, 0, 12, 0), busy) {
		t.Error("expected no conflict at boundary")
	}
}

func TestDescribeInterval(t *testing.T) {
	got := DescribeInterval(testInterval(t, 9, 5, 10, 30), time.UTC)
	if got != "09:05–10:30" {
		t.Errorf("got %q, want %q", got, "09:05–10:30")
	}
}
