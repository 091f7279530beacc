package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dagplanner-api/core/logger"
	calendarService "dagplanner-api/modules/calendar/service"
	"dagplanner-api/modules/schedule/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// BlockStore is the slice of the schedule repository the worker needs
type BlockStore interface {
	GetBlocksByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.TimeBlock, error)
	UpdateSyncResult(ctx context.Context, id uuid.UUID, status entity.SyncStatus, externalEventID *string) error
	ListStalePendingSync(ctx context.Context, olderThan time.Time) ([]entity.TimeBlock, error)
}

// CalendarPusher mirrors one block to the external calendar and returns the
// external event id
type CalendarPusher interface {
	PushBlock(ctx context.Context, userID uuid.UUID, block *entity.TimeBlock) (string, error)
}

// Worker pushes committed task blocks to the external calendar. Sync is
// best-effort: it runs after confirm has already returned and can never roll
// a committed schedule back.
type Worker struct {
	store  BlockStore
	pusher CalendarPusher
}

func NewWorker(store BlockStore, pusher CalendarPusher) *Worker {
	return &Worker{store: store, pusher: pusher}
}

// Register attaches the worker's handlers to the queue mux
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeSyncBlocks, w.HandleSyncBlocks)
}

// HandleSyncBlocks processes one sync task. Blocks that already carry an
// external event id are updated rather than re-created, so retries of a
// partially failed task never duplicate events. A failing push fails the
// whole task for asynq's retry; once retries are exhausted the remaining
// blocks are flagged sync-failed and the task is dropped.
func (w *Worker) HandleSyncBlocks(ctx context.Context, t *asynq.Task) error {
	var payload SyncBlocksPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// Malformed payloads never become valid; do not retry.
		logger.Error("SyncWorker:HandleSyncBlocks:Payload:Error", "error", err)
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	retried, retriedOK := asynq.GetRetryCount(ctx)
	maxRetry, maxOK := asynq.GetMaxRetry(ctx)
	lastAttempt := retriedOK && maxOK && retried >= maxRetry

	return w.process(ctx, payload, lastAttempt, retried)
}

// process pushes the payload's blocks. With lastAttempt set, push failures
// mark the block sync-failed instead of failing the task for another retry.
func (w *Worker) process(ctx context.Context, payload SyncBlocksPayload, lastAttempt bool, retried int) error {
	blocks, err := w.store.GetBlocksByIDs(ctx, payload.TimeBlockIDs)
	if err != nil {
		return fmt.Errorf("load blocks: %w", err)
	}

	var firstErr error
	for i := range blocks {
		block := blocks[i]
		if block.BlockType != entity.BlockTypeTask {
			continue
		}
		if block.SyncStatus == entity.SyncStatusSynced && block.ExternalEventID != nil {
			continue
		}

		eventID, err := w.pusher.PushBlock(ctx, payload.UserID, &block)
		if err != nil {
			if err == calendarService.ErrNoConnection {
				// Nothing to sync against; not a failure of the block.
				if updErr := w.store.UpdateSyncResult(ctx, block.ID, entity.SyncStatusNone, nil); updErr != nil {
					logger.Error("SyncWorker:HandleSyncBlocks:ClearStatus:Error", "error", updErr, "block_id", block.ID)
				}
				continue
			}

			logger.Error("SyncWorker:HandleSyncBlocks:Push:Error",
				"error", err, "block_id", block.ID, "user_id", payload.UserID, "retried", retried)

			if lastAttempt {
				if updErr := w.store.UpdateSyncResult(ctx, block.ID, entity.SyncStatusFailed, nil); updErr != nil {
					logger.Error("SyncWorker:HandleSyncBlocks:MarkFailed:Error", "error", updErr, "block_id", block.ID)
				}
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if err := w.store.UpdateSyncResult(ctx, block.ID, entity.SyncStatusSynced, &eventID); err != nil {
			logger.Error("SyncWorker:HandleSyncBlocks:SaveResult:Error", "error", err, "block_id", block.ID)
		}
	}

	if firstErr != nil {
		return fmt.Errorf("sync blocks: %w", firstErr)
	}
	return nil
}

// SweepStalePending re-enqueues task blocks stuck in pending sync, e.g.
// after a crash between a confirm commit and its enqueue. Run periodically.
func (w *Worker) SweepStalePending(ctx context.Context, enqueuer *Enqueuer, olderThan time.Duration) {
	blocks, err := w.store.ListStalePendingSync(ctx, time.Now().Add(-olderThan))
	if err != nil {
		logger.Error("SyncWorker:SweepStalePending:List:Error", "error", err)
		return
	}
	if len(blocks) == 0 {
		return
	}

	byUser := make(map[uuid.UUID][]uuid.UUID)
	for _, b := range blocks {
		byUser[b.CreatedBy] = append(byUser[b.CreatedBy], b.ID)
	}

	for userID, ids := range byUser {
		if err := enqueuer.EnqueueBlocks(userID, ids); err != nil {
			logger.Error("SyncWorker:SweepStalePending:Enqueue:Error", "error", err, "user_id", userID)
		}
	}

	logger.Info("SyncWorker:SweepStalePending", "blocks", len(blocks), "users", len(byUser))
}
