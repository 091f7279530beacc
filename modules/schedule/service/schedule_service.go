package service

import (
	"context"
	"fmt"
	"time"

	"dagplanner-api/core/config"
	"dagplanner-api/core/errors"
	"dagplanner-api/core/logger"
	"dagplanner-api/modules/schedule/dto"
	"dagplanner-api/modules/schedule/entity"
	"dagplanner-api/modules/schedule/repository"

	"github.com/google/uuid"
)

const reasonNotSchedulable = "activity is completed or already planned"

// ExternalBusyProvider supplies the busy intervals of the user's external
// calendar. Implemented by the calendar module.
type ExternalBusyProvider interface {
	BusyIntervals(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]entity.Interval, error)
}

// SyncEnqueuer hands committed block IDs to the calendar sync worker.
// Implemented by the sync module.
type SyncEnqueuer interface {
	EnqueueBlocks(userID uuid.UUID, blockIDs []uuid.UUID) error
}

// ScheduleService orchestrates preview and confirm scheduling sessions
type ScheduleService struct {
	repo         repository.ScheduleRepositoryInterface
	busyProvider ExternalBusyProvider
	enqueuer     SyncEnqueuer
	confirmLocks *keyedMutex
}

// ScheduleServiceInterface defines the service contract
type ScheduleServiceInterface interface {
	Preview(ctx context.Context, userID uuid.UUID, req *dto.ScheduleRequest) (*dto.ScheduleResult, *errors.AppError)
	Confirm(ctx context.Context, userID uuid.UUID, req *dto.ScheduleRequest) (*dto.ScheduleResult, *errors.AppError)
	CheckConflicts(ctx context.Context, userID uuid.UUID, req *dto.CheckConflictsRequest) (*dto.CheckConflictsResponse, *errors.AppError)
	ListBlocks(ctx context.Context, userID uuid.UUID, date string) (*dto.TimeBlockListResponse, *errors.AppError)
	CreateManualBlock(ctx context.Context, userID uuid.UUID, req *dto.CreateTimeBlockRequest) (*entity.TimeBlock, *errors.AppError)
	DeleteBlock(ctx context.Context, userID uuid.UUID, blockID uuid.UUID) *errors.AppError
	RequestSync(ctx context.Context, userID uuid.UUID, req *dto.SyncRequest) (*dto.SyncResponse, *errors.AppError)
}

// NewScheduleService creates a new schedule service
func NewScheduleService(repo repository.ScheduleRepositoryInterface, busyProvider ExternalBusyProvider, enqueuer SyncEnqueuer) ScheduleServiceInterface {
	return &ScheduleService{
		repo:         repo,
		busyProvider: busyProvider,
		enqueuer:     enqueuer,
		confirmLocks: newKeyedMutex(),
	}
}

// sessionParams is the validated, timezone-resolved form of a request
type sessionParams struct {
	ActivityIDs []uuid.UUID
	Date        string
	DayStart    time.Time
	DayEnd      time.Time
	Alloc       AllocatorOptions
}

// Preview computes a proposed schedule without persisting anything. Repeated
// calls over unchanged data return the same result.
func (s *ScheduleService) Preview(ctx context.Context, userID uuid.UUID, req *dto.ScheduleRequest) (*dto.ScheduleResult, *errors.AppError) {
	params, appErr := s.resolveParams(req)
	if appErr != nil {
		return nil, appErr
	}

	activities, err := s.repo.GetSchedulableActivities(ctx, params.ActivityIDs)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load activities", err)
	}

	existing, err := s.repo.ListBlocksByUserAndRange(ctx, userID, params.DayStart, params.DayEnd)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load time blocks", err)
	}

	externalBusy := s.loadExternalBusy(ctx, userID, params)

	allocation := s.runAllocation(params, userID, activities, existing, externalBusy)
	return s.buildResult(params, req.ActivityIDs, activities, allocation), nil
}

// Confirm re-runs the preview computation inside one transaction and
// persists the placed blocks. Per-(user, date) confirms are serialized with
// an in-process lock plus a database advisory lock, so concurrent confirms
// cannot double-book the same free interval.
func (s *ScheduleService) Confirm(ctx context.Context, userID uuid.UUID, req *dto.ScheduleRequest) (*dto.ScheduleResult, *errors.AppError) {
	params, appErr := s.resolveParams(req)
	if appErr != nil {
		return nil, appErr
	}

	// External events live outside our store; fetched ahead of the
	// transaction to keep the lock window short.
	externalBusy := s.loadExternalBusy(ctx, userID, params)

	lockKey := fmt.Sprintf("%s|%s", userID, params.Date)
	unlock := s.confirmLocks.Lock(lockKey)
	defer unlock()

	var allocation AllocationResult
	var txActivities []entity.Activity

	committed, err := s.repo.ConfirmSchedule(ctx, userID, advisoryLockKey(lockKey), params.DayStart, params.DayEnd, params.ActivityIDs,
		func(existing []entity.TimeBlock, activities []entity.Activity) []entity.TimeBlock {
			// Recompute from scratch against the state read inside the
			// transaction; a stale preview is never trusted.
			txActivities = activities
			allocation = s.runAllocation(params, userID, activities, existing, externalBusy)

			blocks := make([]entity.TimeBlock, len(allocation.Blocks))
			for i, block := range allocation.Blocks {
				block.IsScheduled = true
				if block.BlockType == entity.BlockTypeTask {
					block.SyncStatus = entity.SyncStatusPending
				}
				blocks[i] = block
			}
			return blocks
		})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to commit schedule", err)
	}

	s.enqueueSyncAfterConfirm(userID, committed)

	allocation.Blocks = committed
	return s.buildResult(params, req.ActivityIDs, txActivities, allocation), nil
}

// CheckConflicts reports which candidate blocks of a manual flow overlap
// existing blocks or external calendar events.
func (s *ScheduleService) CheckConflicts(ctx context.Context, userID uuid.UUID, req *dto.CheckConflictsRequest) (*dto.CheckConflictsResponse, *errors.AppError) {
	if len(req.TimeBlocks) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "time_blocks must not be empty", nil)
	}

	span := entity.Interval{Start: req.TimeBlocks[0].StartTime, End: req.TimeBlocks[0].EndTime}
	for _, c := range req.TimeBlocks {
		if !c.EndTime.After(c.StartTime) {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "time_blocks: start_time must be before end_time", nil)
		}
		if c.StartTime.Before(span.Start) {
			span.Start = c.StartTime
		}
		if c.EndTime.After(span.End) {
			span.End = c.EndTime
		}
	}

	existing, err := s.repo.ListBlocksByUserAndRange(ctx, userID, span.Start, span.End)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load time blocks", err)
	}

	busy := make([]entity.Interval, 0, len(existing))
	for _, b := range existing {
		busy = append(busy, b.Interval())
	}
	if s.busyProvider != nil {
		external, err := s.busyProvider.BusyIntervals(ctx, userID, span.Start, span.End)
		if err != nil {
			logger.Warn("ScheduleService:CheckConflicts:ExternalBusy:Error", "error", err, "user_id", userID)
		} else {
			busy = append(busy, external...)
		}
	}
	merged := entity.MergeIntervals(busy)

	resp := &dto.CheckConflictsResponse{Conflicts: []dto.BlockConflict{}}
	for _, c := range req.TimeBlocks {
		overlaps := FindConflicts(entity.Interval{Start: c.StartTime, End: c.EndTime}, merged)
		if len(overlaps) > 0 {
			resp.Conflicts = append(resp.Conflicts, dto.BlockConflict{Candidate: c, Overlaps: overlaps})
		}
	}

	return resp, nil
}

// ListBlocks returns the day's blocks for the manual time-block flow
func (s *ScheduleService) ListBlocks(ctx context.Context, userID uuid.UUID, date string) (*dto.TimeBlockListResponse, *errors.AppError) {
	loc, appErr := s.location("")
	if appErr != nil {
		return nil, appErr
	}

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "date must be formatted YYYY-MM-DD", err)
	}

	blocks, err := s.repo.ListBlocksByUserAndRange(ctx, userID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load time blocks", err)
	}
	if blocks == nil {
		blocks = []entity.TimeBlock{}
	}

	return &dto.TimeBlockListResponse{Date: date, Blocks: blocks}, nil
}

// CreateManualBlock saves a block created outside the auto-scheduler. It is
// rejected when it overlaps an existing block; overlap with external events
// is only a warning, surfaced through CheckConflicts beforehand.
func (s *ScheduleService) CreateManualBlock(ctx context.Context, userID uuid.UUID, req *dto.CreateTimeBlockRequest) (*entity.TimeBlock, *errors.AppError) {
	if req.Title == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "title is required", nil)
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "start_time must be before end_time", nil)
	}

	blockType := entity.BlockType(req.BlockType)
	switch blockType {
	case "":
		blockType = entity.BlockTypeTask
	case entity.BlockTypeTask, entity.BlockTypeBreak, entity.BlockTypeMeeting, entity.BlockTypeFocus:
	default:
		return nil, errors.NewAppError(errors.ErrInvalidInput, "block_type must be one of task, break, meeting, focus", nil)
	}

	priority := entity.ActivityPriority(req.Priority)
	if priority == "" {
		priority = entity.PriorityNormal
	}

	existing, err := s.repo.ListBlocksByUserAndRange(ctx, userID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load time blocks", err)
	}
	candidate := entity.Interval{Start: req.StartTime, End: req.EndTime}
	for _, b := range existing {
		if entity.Overlaps(candidate, b.Interval()) {
			return nil, errors.NewAppError(errors.ErrScheduleConflict,
				fmt.Sprintf("Block overlaps existing block '%s'", b.Title), nil)
		}
	}

	block := &entity.TimeBlock{
		Title:           req.Title,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: int(req.EndTime.Sub(req.StartTime).Minutes()),
		BlockType:       blockType,
		IsScheduled:     true,
		Priority:        priority,
		CreatedBy:       userID,
		SyncStatus:      entity.SyncStatusNone,
	}

	created, err := s.repo.CreateBlock(ctx, block)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create time block", err)
	}

	return created, nil
}

// DeleteBlock removes a block the user explicitly deleted
func (s *ScheduleService) DeleteBlock(ctx context.Context, userID uuid.UUID, blockID uuid.UUID) *errors.AppError {
	if err := s.repo.DeleteBlock(ctx, blockID, userID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to delete time block", err)
	}
	return nil
}

// RequestSync marks the given task blocks for calendar sync and enqueues the
// background push. Fire-and-acknowledge.
func (s *ScheduleService) RequestSync(ctx context.Context, userID uuid.UUID, req *dto.SyncRequest) (*dto.SyncResponse, *errors.AppError) {
	ids, appErr := parseUUIDs(req.TimeBlockIDs, "time_block_ids")
	if appErr != nil {
		return nil, appErr
	}
	if len(ids) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "time_block_ids must not be empty", nil)
	}

	blocks, err := s.repo.GetBlocksByIDs(ctx, ids)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load time blocks", err)
	}

	var syncable []uuid.UUID
	for _, b := range blocks {
		if b.CreatedBy == userID && b.BlockType == entity.BlockTypeTask {
			syncable = append(syncable, b.ID)
		}
	}
	if len(syncable) == 0 {
		return &dto.SyncResponse{Enqueued: 0}, nil
	}

	if err := s.repo.MarkSyncPending(ctx, syncable); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to mark blocks for sync", err)
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueBlocks(userID, syncable); err != nil {
			// The pending-sync sweep picks these up later.
			logger.Error("ScheduleService:RequestSync:Enqueue:Error", "error", err, "user_id", userID)
		}
	}

	return &dto.SyncResponse{Enqueued: len(syncable)}, nil
}

// ===================== internals =====================

func (s *ScheduleService) location(override string) (*time.Location, *errors.AppError) {
	name := override
	if name == "" {
		if cfg, ok := config.GetSafe(); ok {
			name = cfg.Scheduler.Timezone
		} else {
			name = "UTC"
		}
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("unknown timezone %q", name), err)
	}
	return loc, nil
}

// resolveParams validates the request and resolves the working-hours window
// onto the target date. Structurally invalid input is the only hard failure
// of a scheduling session.
func (s *ScheduleService) resolveParams(req *dto.ScheduleRequest) (*sessionParams, *errors.AppError) {
	if len(req.ActivityIDs) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "activity_ids must not be empty", nil)
	}

	ids, appErr := parseUUIDs(req.ActivityIDs, "activity_ids")
	if appErr != nil {
		return nil, appErr
	}

	opts := req.Options
	applyOptionDefaults(&opts)

	if opts.MinimumBlockSize <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "options.minimum_block_size must be greater than zero", nil)
	}
	if opts.BreakDuration < 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "options.break_duration must not be negative", nil)
	}
	if opts.MaxTasksPerDay <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "options.max_tasks_per_day must be greater than zero", nil)
	}

	loc, appErr := s.location(opts.Timezone)
	if appErr != nil {
		return nil, appErr
	}

	day, err := time.ParseInLocation("2006-01-02", req.Date, loc)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "date must be formatted YYYY-MM-DD", err)
	}

	startH, startM, err := parseClock(opts.WorkingHours.Start)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "options.working_hours.start must be formatted HH:MM", err)
	}
	endH, endM, err := parseClock(opts.WorkingHours.End)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "options.working_hours.end must be formatted HH:MM", err)
	}

	windowStart := time.Date(day.Year(), day.Month(), day.Day(), startH, startM, 0, 0, loc)
	windowEnd := time.Date(day.Year(), day.Month(), day.Day(), endH, endM, 0, 0, loc)
	if !windowStart.Before(windowEnd) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "options.working_hours.start must be before options.working_hours.end", nil)
	}

	return &sessionParams{
		ActivityIDs: ids,
		Date:        req.Date,
		DayStart:    day,
		DayEnd:      day.AddDate(0, 0, 1),
		Alloc: AllocatorOptions{
			Window:             entity.Interval{Start: windowStart, End: windowEnd},
			BreakDuration:      time.Duration(opts.BreakDuration) * time.Minute,
			MinimumBlockSize:   time.Duration(opts.MinimumBlockSize) * time.Minute,
			FocusTimePreferred: opts.FocusTimePreferred,
			MaxTasksPerDay:     opts.MaxTasksPerDay,
			Location:           loc,
		},
	}, nil
}

func applyOptionDefaults(opts *dto.ScheduleOptions) {
	cfg, ok := config.GetSafe()
	if !ok {
		return
	}
	if opts.WorkingHours.Start == "" {
		opts.WorkingHours.Start = cfg.Scheduler.WorkingHoursStart
	}
	if opts.WorkingHours.End == "" {
		opts.WorkingHours.End = cfg.Scheduler.WorkingHoursEnd
	}
	if opts.MinimumBlockSize == 0 {
		opts.MinimumBlockSize = cfg.Scheduler.MinimumBlockSize
	}
	if opts.MaxTasksPerDay == 0 {
		opts.MaxTasksPerDay = cfg.Scheduler.MaxTasksPerDay
	}
}

func parseClock(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

func parseUUIDs(values []string, field string) ([]uuid.UUID, *errors.AppError) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("%s contains an invalid id: %s", field, v), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// loadExternalBusy fetches the external calendar's busy intervals. Scheduling
// degrades to internal blocks only when the provider is unreachable; the user
// still gets an actionable result.
func (s *ScheduleService) loadExternalBusy(ctx context.Context, userID uuid.UUID, params *sessionParams) []entity.Interval {
	if s.busyProvider == nil {
		return nil
	}
	busy, err := s.busyProvider.BusyIntervals(ctx, userID, params.DayStart, params.DayEnd)
	if err != nil {
		logger.Warn("ScheduleService:ExternalBusy:Error", "error", err, "user_id", userID, "date", params.Date)
		return nil
	}
	return busy
}

// runAllocation orders the loaded activities by the request order and runs
// the allocator against the union of internal blocks and external events.
func (s *ScheduleService) runAllocation(params *sessionParams, userID uuid.UUID, activities []entity.Activity, existing []entity.TimeBlock, externalBusy []entity.Interval) AllocationResult {
	ordered := orderByRequest(params.ActivityIDs, activities)

	busy := make([]entity.Interval, 0, len(existing)+len(externalBusy))
	existingTasks := 0
	for _, b := range existing {
		busy = append(busy, b.Interval())
		if b.BlockType == entity.BlockTypeTask && b.IsScheduled {
			existingTasks++
		}
	}
	busy = append(busy, externalBusy...)

	opts := params.Alloc
	opts.ExistingTaskCount = existingTasks

	return NewAllocator(opts).Allocate(ordered, busy, userID)
}

// orderByRequest restores the caller's insertion order, the allocator's
// final tie-break.
func orderByRequest(requested []uuid.UUID, activities []entity.Activity) []entity.Activity {
	byID := make(map[uuid.UUID]entity.Activity, len(activities))
	for _, a := range activities {
		byID[a.ID] = a
	}
	ordered := make([]entity.Activity, 0, len(activities))
	for _, id := range requested {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered
}

func (s *ScheduleService) buildResult(params *sessionParams, requestedIDs []string, loaded []entity.Activity, allocation AllocationResult) *dto.ScheduleResult {
	result := &dto.ScheduleResult{
		Date:                  params.Date,
		ScheduledBlocks:       allocation.Blocks,
		UnscheduledActivities: []dto.UnscheduledActivity{},
		Conflicts:             allocation.Conflicts,
		Suggestions:           allocation.Suggestions,
	}
	if result.ScheduledBlocks == nil {
		result.ScheduledBlocks = []entity.TimeBlock{}
	}
	if result.Conflicts == nil {
		result.Conflicts = []string{}
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}

	for _, entry := range allocation.Unscheduled {
		result.UnscheduledActivities = append(result.UnscheduledActivities, dto.UnscheduledActivity{
			ActivityID: entry.Activity.ID.String(),
			Title:      entry.Activity.Title,
			Reason:     entry.Reason,
		})
	}

	// Requested activities that were not schedulable at all get an
	// explanation too; nothing is silently dropped.
	known := make(map[string]bool, len(loaded))
	for _, a := range loaded {
		known[a.ID.String()] = true
	}
	for _, id := range requestedIDs {
		if !known[id] {
			result.UnscheduledActivities = append(result.UnscheduledActivities, dto.UnscheduledActivity{
				ActivityID: id,
				Reason:     reasonNotSchedulable,
			})
		}
	}

	return result
}

// enqueueSyncAfterConfirm hands the committed task blocks to the background
// sync worker. Failure here never affects the committed schedule.
func (s *ScheduleService) enqueueSyncAfterConfirm(userID uuid.UUID, committed []entity.TimeBlock) {
	if s.enqueuer == nil {
		return
	}
	var taskIDs []uuid.UUID
	for _, b := range committed {
		if b.BlockType == entity.BlockTypeTask {
			taskIDs = append(taskIDs, b.ID)
		}
	}
	if len(taskIDs) == 0 {
		return
	}
	if err := s.enqueuer.EnqueueBlocks(userID, taskIDs); err != nil {
		logger.Error("ScheduleService:Confirm:EnqueueSync:Error", "error", err, "user_id", userID)
	}
}
