package service

import (
	"fmt"
	"sort"
	"time"

	"dagplanner-api/modules/schedule/entity"

	"github.com/google/uuid"
)

// Unscheduled reasons surfaced in ScheduleResult
const (
	ReasonBelowMinimumBlockSize = "duration below minimum block size"
	ReasonDailyTaskLimit        = "daily task limit reached"
	ReasonInsufficientFreeTime  = "insufficient free time"
)

const breakBlockTitle = "Pauze"

// AllocatorOptions are the validated knobs for one allocation run
type AllocatorOptions struct {
	Window             entity.Interval // working hours on the target date
	BreakDuration      time.Duration
	MinimumBlockSize   time.Duration
	FocusTimePreferred bool
	MaxTasksPerDay     int
	ExistingTaskCount  int // task blocks already committed for this (user, date)
	Location           *time.Location
}

// UnscheduledEntry pairs an activity with the reason it was not placed
type UnscheduledEntry struct {
	Activity entity.Activity
	Reason   string
}

// AllocationResult is the allocator's full output for one day
type AllocationResult struct {
	Blocks      []entity.TimeBlock
	Unscheduled []UnscheduledEntry
	Conflicts   []string
	Suggestions []string
}

// Allocator places a prioritized activity list into the free time of a day.
// It is pure: same activities, busy set and options yield the same result.
type Allocator struct {
	opts AllocatorOptions
}

func NewAllocator(opts AllocatorOptions) *Allocator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Allocator{opts: opts}
}

// Allocate runs the greedy priority-first first-fit packing.
func (a *Allocator) Allocate(activities []entity.Activity, busy []entity.Interval, createdBy uuid.UUID) AllocationResult {
	var result AllocationResult

	mergedBusy := entity.MergeIntervals(busy)
	free := entity.SubtractIntervals(a.opts.Window, mergedBusy)

	if len(free) == 0 {
		for _, act := range sortActivities(activities) {
			result.Unscheduled = append(result.Unscheduled, UnscheduledEntry{Activity: act, Reason: ReasonInsufficientFreeTime})
		}
		if len(activities) > 0 {
			result.Suggestions = append(result.Suggestions, "no free time available, consider extending working hours")
		}
		return result
	}

	ordered := sortActivities(activities)

	tasksPlaced := a.opts.ExistingTaskCount
	sawInsufficient := false

	for _, act := range ordered {
		if tasksPlaced >= a.opts.MaxTasksPerDay {
			result.Unscheduled = append(result.Unscheduled, UnscheduledEntry{Activity: act, Reason: ReasonDailyTaskLimit})
			continue
		}

		required, ok := a.requiredDuration(act)
		if !ok {
			result.Unscheduled = append(result.Unscheduled, UnscheduledEntry{Activity: act, Reason: ReasonBelowMinimumBlockSize})
			continue
		}

		idx := a.pickInterval(free, required)
		if idx < 0 {
			result.Unscheduled = append(result.Unscheduled, UnscheduledEntry{Activity: act, Reason: ReasonInsufficientFreeTime})
			sawInsufficient = true
			if conflict := smallestBlockingInterval(mergedBusy, a.opts.Window); conflict != nil {
				result.Conflicts = append(result.Conflicts,
					fmt.Sprintf("'%s' (%d min) does not fit; busy interval %s would need to shrink",
						act.Title, int(required.Minutes()), DescribeInterval(*conflict, a.opts.Location)))
			}
			continue
		}

		taskBlock, breakBlock, remainder := a.place(free[idx], act, required, createdBy)
		result.Blocks = append(result.Blocks, taskBlock)
		if breakBlock != nil {
			result.Blocks = append(result.Blocks, *breakBlock)
		}
		tasksPlaced++

		if remainder.IsZero() {
			free = append(free[:idx], free[idx+1:]...)
		} else {
			free[idx] = remainder
		}
	}

	if sawInsufficient {
		result.Suggestions = append(result.Suggestions, "increase working hours")
		if a.opts.BreakDuration > 0 {
			result.Suggestions = append(result.Suggestions, "reduce break duration")
		}
	}

	return result
}

// sortActivities orders candidates by priority rank, then due date (earliest
// first, absent dates last within a tier), then original order as the final
// deterministic tie-break.
func sortActivities(activities []entity.Activity) []entity.Activity {
	ordered := make([]entity.Activity, len(activities))
	copy(ordered, activities)

	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := ordered[i].Priority.Rank(), ordered[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		di, dj := ordered[i].DueDate, ordered[j].DueDate
		switch {
		case di == nil && dj == nil:
			return false
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})

	return ordered
}

// requiredDuration resolves an activity's block length: the estimate when
// present, rounded up to the minimum block size.
func (a *Allocator) requiredDuration(act entity.Activity) (time.Duration, bool) {
	required := a.opts.MinimumBlockSize
	if act.EstimatedDuration != nil {
		required = time.Duration(*act.EstimatedDuration) * time.Minute
		if required < a.opts.MinimumBlockSize {
			required = a.opts.MinimumBlockSize
		}
	}
	if required < a.opts.MinimumBlockSize || required <= 0 {
		return 0, false
	}
	return required, true
}

// pickInterval chooses the free interval for a placement of the given
// duration, or -1 when none fits. Default is first-fit in chronological
// order. With the focus-time preference, and only when two or more intervals
// qualify, it chooses the interval that leaves the largest contiguous free
// span after placement, so long work gravitates to long open blocks instead
// of fragmenting the day. Ties go to the earliest interval.
func (a *Allocator) pickInterval(free []entity.Interval, required time.Duration) int {
	var candidates []int
	for i, iv := range free {
		if iv.Duration() >= required {
			if !a.opts.FocusTimePreferred {
				return i
			}
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	consumed := required + a.opts.BreakDuration
	best := candidates[0]
	bestSpan := a.largestSpanAfter(free, candidates[0], consumed)
	for _, c := range candidates[1:] {
		if span := a.largestSpanAfter(free, c, consumed); span > bestSpan {
			best = c
			bestSpan = span
		}
	}
	return best
}

// largestSpanAfter computes the largest contiguous free span that would
// remain if a placement consuming `consumed` took the front of interval idx.
func (a *Allocator) largestSpanAfter(free []entity.Interval, idx int, consumed time.Duration) time.Duration {
	var largest time.Duration
	for i, iv := range free {
		span := iv.Duration()
		if i == idx {
			span -= consumed
			if span < 0 {
				span = 0
			}
		}
		if span > largest {
			largest = span
		}
	}
	return largest
}

// place consumes the front of the chosen free interval: the task block, a
// synthetic break directly after it when free time remains, and the shrunk
// remainder.
func (a *Allocator) place(iv entity.Interval, act entity.Activity, required time.Duration, createdBy uuid.UUID) (entity.TimeBlock, *entity.TimeBlock, entity.Interval) {
	activityID := act.ID
	taskStart := iv.Start
	taskEnd := taskStart.Add(required)

	task := entity.TimeBlock{
		ActivityID:      &activityID,
		Title:           act.Title,
		StartTime:       taskStart,
		EndTime:         taskEnd,
		DurationMinutes: int(required.Minutes()),
		BlockType:       entity.BlockTypeTask,
		Priority:        act.Priority,
		CreatedBy:       createdBy,
		SyncStatus:      entity.SyncStatusNone,
	}

	// The break is only materialized when free time remains after it;
	// a break that would run to (or past) the interval end just consumes
	// the remainder without producing a block.
	cursor := taskEnd
	var breakBlock *entity.TimeBlock
	if a.opts.BreakDuration > 0 && cursor.Before(iv.End) {
		breakEnd := cursor.Add(a.opts.BreakDuration)
		if breakEnd.Before(iv.End) {
			breakBlock = &entity.TimeBlock{
				Title:           breakBlockTitle,
				StartTime:       cursor,
				EndTime:         breakEnd,
				DurationMinutes: int(a.opts.BreakDuration.Minutes()),
				BlockType:       entity.BlockTypeBreak,
				Priority:        entity.PriorityNormal,
				CreatedBy:       createdBy,
				SyncStatus:      entity.SyncStatusNone,
			}
			cursor = breakEnd
		} else {
			cursor = iv.End
		}
	}

	remainder := entity.Interval{Start: cursor, End: iv.End}
	if remainder.IsZero() {
		remainder = entity.Interval{}
	}
	return task, breakBlock, remainder
}

// smallestBlockingInterval returns the shortest busy interval inside the
// working-hours window, the one a user would most plausibly move to make
// room. Nil when the day has no busy intervals at all.
func smallestBlockingInterval(mergedBusy []entity.Interval, window entity.Interval) *entity.Interval {
	var smallest *entity.Interval
	for _, b := range mergedBusy {
		clipped, ok := entity.ClipInterval(b, window)
		if !ok {
			continue
		}
		if smallest == nil || clipped.Duration() < smallest.Duration() {
			c := clipped
			smallest = &c
		}
	}
	return smallest
}
