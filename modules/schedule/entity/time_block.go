package entity

import (
	"time"

	"dagplanner-api/core/entity"

	"github.com/google/uuid"
)

// BlockType classifies a time block
type BlockType string

const (
	BlockTypeTask    BlockType = "task"
	BlockTypeBreak   BlockType = "break"
	BlockTypeMeeting BlockType = "meeting"
	BlockTypeFocus   BlockType = "focus"
)

// SyncStatus tracks mirroring of a block to the external calendar
type SyncStatus string

const (
	SyncStatusNone    SyncStatus = "none"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

// TimeBlock is the scheduler's persisted output. ActivityID is nil for
// synthetic break blocks.
type TimeBlock struct {
	entity.BaseEntity
	ActivityID      *uuid.UUID       `db:"activity_id" json:"activity_id,omitempty"`
	Title           string           `db:"title" json:"title"`
	StartTime       time.Time        `db:"start_time" json:"start_time"`
	EndTime         time.Time        `db:"end_time" json:"end_time"`
	DurationMinutes int              `db:"duration_minutes" json:"duration_minutes"`
	BlockType       BlockType        `db:"block_type" json:"block_type"`
	IsScheduled     bool             `db:"is_scheduled" json:"is_scheduled"`
	IsCompleted     bool             `db:"is_completed" json:"is_completed"`
	Priority        ActivityPriority `db:"priority" json:"priority"`
	CreatedBy       uuid.UUID        `db:"created_by" json:"created_by"`
	SyncStatus      SyncStatus       `db:"sync_status" json:"sync_status"`
	ExternalEventID *string          `db:"external_event_id" json:"external_event_id,omitempty"`
}

// TableName returns the table backing this entity
func (TimeBlock) TableName() string {
	return "time_blocks"
}

// Interval returns the block's occupied time range
func (b TimeBlock) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}
