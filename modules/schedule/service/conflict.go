package service

import (
	"fmt"
	"sort"
	"time"

	"dagplanner-api/modules/schedule/entity"
)

// FindConflicts returns every busy interval that overlaps the candidate.
// busy must be merged and sorted by start time (entity.MergeIntervals); with
// that precondition the scan is binary-search-assisted rather than linear
// over the whole day. An empty result means no conflict.
func FindConflicts(candidate entity.Interval, busy []entity.Interval) []entity.Interval {
	if candidate.IsZero() || len(busy) == 0 {
		return nil
	}

	// Merged busy intervals are disjoint, so End is increasing along with
	// Start. Find the first interval that ends after the candidate starts.
	first := sort.Search(len(busy), func(i int) bool {
		return busy[i].End.After(candidate.Start)
	})

	var conflicts []entity.Interval
	for i := first; i < len(busy) && busy[i].Start.Before(candidate.End); i++ {
		if entity.Overlaps(candidate, busy[i]) {
			conflicts = append(conflicts, busy[i])
		}
	}
	return conflicts
}

// HasConflict reports whether the candidate overlaps any busy interval
func HasConflict(candidate entity.Interval, busy []entity.Interval) bool {
	return len(FindConflicts(candidate, busy)) > 0
}

// DescribeInterval renders a busy interval for user-facing conflict messages
func DescribeInterval(iv entity.Interval, loc *time.Location) string {
	return fmt.Sprintf("%s–%s",
		iv.Start.In(loc).Format("15:04"),
		iv.End.In(loc).Format("15:04"))
}
