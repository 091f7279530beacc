package dto

import (
	"time"

	"dagplanner-api/modules/schedule/entity"
)

// ===================== Request DTOs =====================

// WorkingHours is a local time-of-day window, "HH:MM" inclusive start,
// exclusive end
type WorkingHours struct {
	Start string `json:"start" validate:"required"` // "09:00"
	End   string `json:"end" validate:"required"`   // "17:00"
}

// ScheduleOptions configures one scheduling run
type ScheduleOptions struct {
	WorkingHours       WorkingHours `json:"working_hours"`
	BreakDuration      int          `json:"break_duration"`      // minutes, >= 0
	MinimumBlockSize   int          `json:"minimum_block_size"`  // minutes, > 0
	FocusTimePreferred bool         `json:"focus_time_preferred"`
	MaxTasksPerDay     int          `json:"max_tasks_per_day"` // > 0
	Timezone           string       `json:"timezone,omitempty"`
}

// ScheduleRequest is the shared input shape of preview and confirm
type ScheduleRequest struct {
	ActivityIDs []string        `json:"activity_ids" validate:"required"`
	Date        string          `json:"date" validate:"required"` // YYYY-MM-DD
	Options     ScheduleOptions `json:"options"`
}

// CheckConflictsRequest carries candidate blocks from the manual block flow
type CheckConflictsRequest struct {
	TimeBlocks []CandidateBlock `json:"time_blocks" validate:"required"`
}

// CandidateBlock is an unsaved block the user is about to create manually
type CandidateBlock struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// CreateTimeBlockRequest creates a manual block outside the auto-scheduler
type CreateTimeBlockRequest struct {
	Title     string    `json:"title" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	BlockType string    `json:"block_type"`
	Priority  string    `json:"priority"`
}

// ===================== Response DTOs =====================

// UnscheduledActivity explains why an activity could not be placed
type UnscheduledActivity struct {
	ActivityID string `json:"activity_id"`
	Title      string `json:"title"`
	Reason     string `json:"reason"`
}

// ScheduleResult is returned by both preview and confirm. It is never
// persisted as such.
type ScheduleResult struct {
	Date                  string                `json:"date"`
	ScheduledBlocks       []entity.TimeBlock    `json:"scheduled_blocks"`
	UnscheduledActivities []UnscheduledActivity `json:"unscheduled_activities"`
	Conflicts             []string              `json:"conflicts"`
	Suggestions           []string              `json:"suggestions"`
}

// CheckConflictsResponse lists the candidate blocks that overlap existing
// busy intervals
type CheckConflictsResponse struct {
	Conflicts []BlockConflict `json:"conflicts"`
}

// BlockConflict pairs a candidate with the busy intervals it overlaps
type BlockConflict struct {
	Candidate CandidateBlock    `json:"candidate"`
	Overlaps  []entity.Interval `json:"overlaps"`
}

// TimeBlockListResponse is a day's blocks for the manual flow
type TimeBlockListResponse struct {
	Date   string             `json:"date"`
	Blocks []entity.TimeBlock `json:"blocks"`
}

// SyncRequest triggers an asynchronous calendar push
type SyncRequest struct {
	TimeBlockIDs []string `json:"time_block_ids" validate:"required"`
}

// SyncResponse acknowledges the enqueued push
type SyncResponse struct {
	Enqueued int `json:"enqueued"`
}
