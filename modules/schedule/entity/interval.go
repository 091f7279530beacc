package entity

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the interval
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// IsZero reports whether the interval has no extent
func (iv Interval) IsZero() bool {
	return !iv.End.After(iv.Start)
}

// Overlaps reports whether two half-open intervals intersect.
// Zero-length intervals never overlap anything, including themselves.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// MergeIntervals sorts the given intervals by start time and coalesces
// overlapping or adjacent ones. Zero-length intervals are dropped. The input
// slice is not modified.
func MergeIntervals(intervals []Interval) []Interval {
	work := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.IsZero() {
			work = append(work, iv)
		}
	}
	if len(work) == 0 {
		return nil
	}

	sort.Slice(work, func(i, j int) bool {
		return work[i].Start.Before(work[j].Start)
	})

	merged := []Interval{work[0]}
	for i := 1; i < len(work); i++ {
		last := &merged[len(merged)-1]
		current := work[i]

		// overlapping or adjacent, extend
		if !current.Start.After(last.End) {
			if current.End.After(last.End) {
				last.End = current.End
			}
		} else {
			merged = append(merged, current)
		}
	}

	return merged
}

// SubtractIntervals returns the free sub-intervals of window after removing
// every busy interval. Busy intervals are merged and sorted first.
func SubtractIntervals(window Interval, busy []Interval) []Interval {
	if window.IsZero() {
		return nil
	}

	merged := MergeIntervals(busy)

	var free []Interval
	cursor := window.Start
	for _, b := range merged {
		if !b.End.After(cursor) {
			continue
		}
		if !b.Start.Before(window.End) {
			break
		}
		if b.Start.After(cursor) {
			end := b.Start
			if end.After(window.End) {
				end = window.End
			}
			free = append(free, Interval{Start: cursor, End: end})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(window.End) {
		free = append(free, Interval{Start: cursor, End: window.End})
	}

	return free
}

// ClipInterval restricts iv to window. Returns false when nothing remains.
func ClipInterval(iv Interval, window Interval) (Interval, bool) {
	start := iv.Start
	if start.Before(window.Start) {
		start = window.Start
	}
	end := iv.End
	if end.After(window.End) {
		end = window.End
	}
	if !end.After(start) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}
