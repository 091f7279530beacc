package repository

import (
	"context"
	"time"

	"dagplanner-api/core/database"
	"dagplanner-api/core/logger"
	"dagplanner-api/modules/schedule/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const timeBlockColumns = `id, activity_id, title, start_time, end_time, duration_minutes,
		block_type, is_scheduled, is_completed, priority, created_by,
		sync_status, external_event_id, created_at, updated_at`

// ScheduleRepository handles time_blocks and the read-only activities
// projection
type ScheduleRepository struct {
	DB database.IDatabase
}

func NewScheduleRepository(db database.IDatabase) *ScheduleRepository {
	return &ScheduleRepository{DB: db}
}

// ScheduleRepositoryInterface defines the repository contract
type ScheduleRepositoryInterface interface {
	// Activities (read-only projection, owned by the CRUD application)
	GetSchedulableActivities(ctx context.Context, ids []uuid.UUID) ([]entity.Activity, error)

	// Time blocks
	ListBlocksByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]entity.TimeBlock, error)
	GetBlocksByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.TimeBlock, error)
	CreateBlock(ctx context.Context, block *entity.TimeBlock) (*entity.TimeBlock, error)
	DeleteBlock(ctx context.Context, id uuid.UUID, userID uuid.UUID) error

	// Calendar sync bookkeeping
	MarkSyncPending(ctx context.Context, ids []uuid.UUID) error
	UpdateSyncResult(ctx context.Context, id uuid.UUID, status entity.SyncStatus, externalEventID *string) error
	ListStalePendingSync(ctx context.Context, olderThan time.Time) ([]entity.TimeBlock, error)

	// Confirm transaction
	ConfirmSchedule(ctx context.Context, userID uuid.UUID, lockKey int64, dayStart, dayEnd time.Time, activityIDs []uuid.UUID,
		compute func(existing []entity.TimeBlock, activities []entity.Activity) []entity.TimeBlock) ([]entity.TimeBlock, error)
}

// ===================== Activities =====================

// GetSchedulableActivities loads the activities that may still be planned:
// not completed and not yet linked to a time block.
func (r *ScheduleRepository) GetSchedulableActivities(ctx context.Context, ids []uuid.UUID) ([]entity.Activity, error) {
	query := `
		SELECT a.id, a.title, a.priority, a.estimated_duration, a.due_date, a.status
		FROM activities a
		WHERE a.id = ANY($1)
		  AND a.status <> 'completed'
		  AND NOT EXISTS (
			SELECT 1 FROM time_blocks b WHERE b.activity_id = a.id
		  )
	`

	var activities []entity.Activity
	err := r.DB.SelectContext(ctx, &activities, query, pq.Array(ids))
	if err != nil {
		logger.Error("ScheduleRepository:GetSchedulableActivities", "error", err)
		return nil, err
	}

	return activities, nil
}

func selectSchedulableActivitiesTx(ctx context.Context, tx *sqlx.Tx, ids []uuid.UUID) ([]entity.Activity, error) {
	query := `
		SELECT a.id, a.title, a.priority, a.estimated_duration, a.due_date, a.status
		FROM activities a
		WHERE a.id = ANY($1)
		  AND a.status <> 'completed'
		  AND NOT EXISTS (
			SELECT 1 FROM time_blocks b WHERE b.activity_id = a.id
		  )
	`
	var activities []entity.Activity
	err := tx.SelectContext(ctx, &activities, query, pq.Array(ids))
	return activities, err
}

// ===================== Time blocks =====================

func (r *ScheduleRepository) ListBlocksByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]entity.TimeBlock, error) {
	query := `
		SELECT ` + timeBlockColumns + `
		FROM time_blocks
		WHERE created_by = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time ASC
	`

	var blocks []entity.TimeBlock
	err := r.DB.SelectContext(ctx, &blocks, query, userID, start, end)
	if err != nil {
		logger.Error("ScheduleRepository:ListBlocksByUserAndRange", "error", err)
		return nil, err
	}

	return blocks, nil
}

func (r *ScheduleRepository) GetBlocksByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.TimeBlock, error) {
	query := `
		SELECT ` + timeBlockColumns + `
		FROM time_blocks
		WHERE id = ANY($1)
		ORDER BY start_time ASC
	`

	var blocks []entity.TimeBlock
	err := r.DB.SelectContext(ctx, &blocks, query, pq.Array(ids))
	if err != nil {
		logger.Error("ScheduleRepository:GetBlocksByIDs", "error", err)
		return nil, err
	}

	return blocks, nil
}

func (r *ScheduleRepository) CreateBlock(ctx context.Context, block *entity.TimeBlock) (*entity.TimeBlock, error) {
	query := `
		INSERT INTO time_blocks (activity_id, title, start_time, end_time, duration_minutes,
			block_type, is_scheduled, is_completed, priority, created_by, sync_status, external_event_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + timeBlockColumns + `
	`

	var created entity.TimeBlock
	err := r.DB.GetContext(ctx, &created, query,
		block.ActivityID, block.Title, block.StartTime, block.EndTime, block.DurationMinutes,
		block.BlockType, block.IsScheduled, block.IsCompleted, block.Priority, block.CreatedBy,
		block.SyncStatus, block.ExternalEventID)

	if err != nil {
		logger.Error("ScheduleRepository:CreateBlock", "error", err)
		return nil, err
	}

	return &created, nil
}

func (r *ScheduleRepository) DeleteBlock(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	query := `DELETE FROM time_blocks WHERE id = $1 AND created_by = $2`

	err := r.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		logger.Error("ScheduleRepository:DeleteBlock", "error", err)
		return err
	}

	return nil
}

// ===================== Calendar sync bookkeeping =====================

func (r *ScheduleRepository) MarkSyncPending(ctx context.Context, ids []uuid.UUID) error {
	query := `
		UPDATE time_blocks
		SET sync_status = 'pending', updated_at = NOW()
		WHERE id = ANY($1) AND block_type = 'task'
	`

	err := r.DB.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		logger.Error("ScheduleRepository:MarkSyncPending", "error", err)
		return err
	}

	return nil
}

func (r *ScheduleRepository) UpdateSyncResult(ctx context.Context, id uuid.UUID, status entity.SyncStatus, externalEventID *string) error {
	query := `
		UPDATE time_blocks
		SET sync_status = $2, external_event_id = COALESCE($3, external_event_id), updated_at = NOW()
		WHERE id = $1
	`

	err := r.DB.ExecContext(ctx, query, id, status, externalEventID)
	if err != nil {
		logger.Error("ScheduleRepository:UpdateSyncResult", "error", err)
		return err
	}

	return nil
}

// ListStalePendingSync finds task blocks stuck in pending sync, e.g. after a
// crash between commit and enqueue.
func (r *ScheduleRepository) ListStalePendingSync(ctx context.Context, olderThan time.Time) ([]entity.TimeBlock, error) {
	query := `
		SELECT ` + timeBlockColumns + `
		FROM time_blocks
		WHERE sync_status = 'pending' AND block_type = 'task' AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT 100
	`

	var blocks []entity.TimeBlock
	err := r.DB.SelectContext(ctx, &blocks, query, olderThan)
	if err != nil {
		logger.Error("ScheduleRepository:ListStalePendingSync", "error", err)
		return nil, err
	}

	return blocks, nil
}

// ===================== Confirm transaction =====================

// ConfirmSchedule serializes confirm for one (user, day) with an advisory
// lock, re-reads the busy state and schedulable activities inside the
// transaction, lets compute produce the blocks and persists them atomically.
func (r *ScheduleRepository) ConfirmSchedule(ctx context.Context, userID uuid.UUID, lockKey int64, dayStart, dayEnd time.Time, activityIDs []uuid.UUID,
	compute func(existing []entity.TimeBlock, activities []entity.Activity) []entity.TimeBlock) ([]entity.TimeBlock, error) {

	var committed []entity.TimeBlock

	err := r.DB.WithTx(ctx, func(tx *sqlx.Tx) error {
		// Held until commit or rollback; guards against a second confirm for
		// the same user and day on another instance.
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
			return err
		}

		var existing []entity.TimeBlock
		listQuery := `
			SELECT ` + timeBlockColumns + `
			FROM time_blocks
			WHERE created_by = $1 AND start_time < $3 AND end_time > $2
			ORDER BY start_time ASC
		`
		if err := tx.SelectContext(ctx, &existing, listQuery, userID, dayStart, dayEnd); err != nil {
			return err
		}

		activities, err := selectSchedulableActivitiesTx(ctx, tx, activityIDs)
		if err != nil {
			return err
		}

		blocks := compute(existing, activities)

		insertQuery := `
			INSERT INTO time_blocks (activity_id, title, start_time, end_time, duration_minutes,
				block_type, is_scheduled, is_completed, priority, created_by, sync_status, external_event_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING ` + timeBlockColumns + `
		`
		for _, block := range blocks {
			var created entity.TimeBlock
			err := tx.GetContext(ctx, &created, insertQuery,
				block.ActivityID, block.Title, block.StartTime, block.EndTime, block.DurationMinutes,
				block.BlockType, block.IsScheduled, block.IsCompleted, block.Priority, block.CreatedBy,
				block.SyncStatus, block.ExternalEventID)
			if err != nil {
				return err
			}
			committed = append(committed, created)
		}

		return nil
	})

	if err != nil {
		logger.Error("ScheduleRepository:ConfirmSchedule", "error", err, "user_id", userID)
		return nil, err
	}

	return committed, nil
}
