package sync

import (
	"encoding/json"

	"dagplanner-api/core/constants"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TypeSyncBlocks is the task type for mirroring committed blocks to the
// external calendar
const TypeSyncBlocks = "calendar:sync_blocks"

// SyncBlocksPayload identifies the blocks to push for one user
type SyncBlocksPayload struct {
	UserID       uuid.UUID   `json:"user_id"`
	TimeBlockIDs []uuid.UUID `json:"time_block_ids"`
}

// NewSyncBlocksTask builds the queue task with bounded retry
func NewSyncBlocksTask(userID uuid.UUID, blockIDs []uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(SyncBlocksPayload{UserID: userID, TimeBlockIDs: blockIDs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSyncBlocks, payload,
		asynq.MaxRetry(constants.SyncMaxRetry),
		asynq.Queue(constants.SyncTaskQueue),
	), nil
}
