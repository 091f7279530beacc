package sync

import (
	"dagplanner-api/core/logger"
	"dagplanner-api/core/queue"

	"github.com/google/uuid"
)

// Enqueuer submits sync tasks to the queue. It implements the schedule
// module's SyncEnqueuer port.
type Enqueuer struct{}

func NewEnqueuer() *Enqueuer {
	return &Enqueuer{}
}

// EnqueueBlocks queues a calendar push for the given blocks
func (e *Enqueuer) EnqueueBlocks(userID uuid.UUID, blockIDs []uuid.UUID) error {
	task, err := NewSyncBlocksTask(userID, blockIDs)
	if err != nil {
		return err
	}

	info, err := queue.Enqueue(task)
	if err != nil {
		return err
	}

	logger.Info("SyncEnqueuer:EnqueueBlocks", "task_id", info.ID, "user_id", userID, "blocks", len(blockIDs))
	return nil
}
