package entity

import (
	"time"

	"github.com/google/uuid"
)

// ActivityPriority represents the urgency of an activity
type ActivityPriority string

const (
	PriorityUrgent ActivityPriority = "urgent"
	PriorityNormal ActivityPriority = "normal"
	PriorityLow    ActivityPriority = "low"
)

// Rank maps a priority to its sort order, urgent first. Unknown priorities
// sort after low.
func (p ActivityPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityNormal:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// ActivityStatus represents the lifecycle state of an activity
type ActivityStatus string

const (
	ActivityStatusOpen       ActivityStatus = "open"
	ActivityStatusInProgress ActivityStatus = "in_progress"
	ActivityStatusCompleted  ActivityStatus = "completed"
)

// Activity is the minimal projection of an activity the scheduler needs.
// Activities are owned by the surrounding CRUD application and read-only here.
type Activity struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	Title             string           `db:"title" json:"title"`
	Priority          ActivityPriority `db:"priority" json:"priority"`
	EstimatedDuration *int             `db:"estimated_duration" json:"estimated_duration,omitempty"` // minutes
	DueDate           *time.Time       `db:"due_date" json:"due_date,omitempty"`
	Status            ActivityStatus   `db:"status" json:"status"`
}

// Schedulable reports whether the activity may be placed into a time block
func (a Activity) Schedulable() bool {
	return a.Status != ActivityStatusCompleted
}
