package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"dagplanner-api/core/config"
	coreErrors "dagplanner-api/core/errors"
	"dagplanner-api/modules/schedule/dto"
	"dagplanner-api/modules/schedule/entity"

	"github.com/google/uuid"
)

// ===================== fakes =====================

type fakeScheduleRepo struct {
	activities map[uuid.UUID]entity.Activity
	blocks     []entity.TimeBlock

	createCalls  int
	confirmCalls int
	markedPend   []uuid.UUID
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{activities: make(map[uuid.UUID]entity.Activity)}
}

func (r *fakeScheduleRepo) addActivity(a entity.Activity) {
	r.activities[a.ID] = a
}

func (r *fakeScheduleRepo) schedulable(ids []uuid.UUID) []entity.Activity {
	planned := make(map[uuid.UUID]bool)
	for _, b := range r.blocks {
		if b.ActivityID != nil {
			planned[*b.ActivityID] = true
		}
	}
	var out []entity.Activity
	for _, id := range ids {
		a, ok := r.activities[id]
		if !ok || !a.Schedulable() || planned[id] {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (r *fakeScheduleRepo) GetSchedulableActivities(ctx context.Context, ids []uuid.UUID) ([]entity.Activity, error) {
	return r.schedulable(ids), nil
}

func (r *fakeScheduleRepo) ListBlocksByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]entity.TimeBlock, error) {
	var out []entity.TimeBlock
	for _, b := range r.blocks {
		if b.CreatedBy == userID && b.StartTime.Before(end) && b.EndTime.After(start) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) GetBlocksByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.TimeBlock, error) {
	var out []entity.TimeBlock
	for _, b := range r.blocks {
		for _, id := range ids {
			if b.ID == id {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) CreateBlock(ctx context.Context, block *entity.TimeBlock) (*entity.TimeBlock, error) {
	r.createCalls++
	created := *block
	created.ID = uuid.New()
	r.blocks = append(r.blocks, created)
	return &created, nil
}

func (r *fakeScheduleRepo) DeleteBlock(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	kept := r.blocks[:0]
	for _, b := range r.blocks {
		if !(b.ID == id && b.CreatedBy == userID) {
			kept = append(kept, b)
		}
	}
	r.blocks = kept
	return nil
}

func (r *fakeScheduleRepo) MarkSyncPending(ctx context.Context, ids []uuid.UUID) error {
	r.markedPend = append(r.markedPend, ids...)
	for i := range r.blocks {
		for _, id := range ids {
			if r.blocks[i].ID == id {
				r.blocks[i].SyncStatus = entity.SyncStatusPending
			}
		}
	}
	return nil
}

func (r *fakeScheduleRepo) UpdateSyncResult(ctx context.Context, id uuid.UUID, status entity.SyncStatus, externalEventID *string) error {
	for i := range r.blocks {
		if r.blocks[i].ID == id {
			r.blocks[i].SyncStatus = status
			if externalEventID != nil {
				r.blocks[i].ExternalEventID = externalEventID
			}
		}
	}
	return nil
}

func (r *fakeScheduleRepo) ListStalePendingSync(ctx context.Context, olderThan time.Time) ([]entity.TimeBlock, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) ConfirmSchedule(ctx context.Context, userID uuid.UUID, lockKey int64, dayStart, dayEnd time.Time, activityIDs []uuid.UUID,
	compute func(existing []entity.TimeBlock, activities []entity.Activity) []entity.TimeBlock) ([]entity.TimeBlock, error) {
	r.confirmCalls++

	existing, _ := r.ListBlocksByUserAndRange(ctx, userID, dayStart, dayEnd)
	activities := r.schedulable(activityIDs)

	newBlocks := compute(existing, activities)
	committed := make([]entity.TimeBlock, len(newBlocks))
	for i, b := range newBlocks {
		b.ID = uuid.New()
		r.blocks = append(r.blocks, b)
		committed[i] = b
	}
	return committed, nil
}

type fakeBusyProvider struct {
	intervals []entity.Interval
	err       error
	calls     int
}

func (p *fakeBusyProvider) BusyIntervals(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]entity.Interval, error) {
	p.calls++
	return p.intervals, p.err
}

type fakeEnqueuer struct {
	calls [][]uuid.UUID
	err   error
}

func (e *fakeEnqueuer) EnqueueBlocks(userID uuid.UUID, blockIDs []uuid.UUID) error {
	e.calls = append(e.calls, blockIDs)
	return e.err
}

// ===================== helpers =====================

func setTestConfig(t *testing.T) {
	t.Helper()
	config.Set(&config.Config{
		Scheduler: config.SchedulerConfig{
			Timezone:          "UTC",
			WorkingHoursStart: "09:00",
			WorkingHoursEnd:   "17:00",
			MinimumBlockSize:  30,
			BreakDuration:     15,
			MaxTasksPerDay:    8,
		},
	})
}

func morningRequest(t *testing.T, ids ...string) *dto.ScheduleRequest {
	t.Helper()
	return &dto.ScheduleRequest{
		ActivityIDs: ids,
		Date:        "2026-09-14",
		Options: dto.ScheduleOptions{
			WorkingHours:     dto.WorkingHours{Start: "09:00", End: "12:00"},
			BreakDuration:    15,
			MinimumBlockSize: 30,
			MaxTasksPerDay:   8,
			Timezone:         "UTC",
		},
	}
}

// ===================== tests =====================

func TestPreview(t *testing.T) {
	setTestConfig(t)
	userID := uuid.New()

	repo := newFakeScheduleRepo()
	a := testActivity(t, "A", entity.PriorityUrgent, 90)
	b := testActivity(t, "B", entity.PriorityNormal, 60)
	repo.addActivity(a)
	repo.addActivity(b)

	busyProvider := &fakeBusyProvider{}
	enqueuer := &fakeEnqueuer{}
	svc := NewScheduleService(repo, busyProvider, enqueuer)

	req := morningRequest(t, a.ID.String(), b.ID.String())

	result, appErr := svc.Preview(context.Background(), userID, req)
	if appErr != nil {
		t.Fatalf("Preview error: %v", appErr)
	}

	if len(result.ScheduledBlocks) != 3 {
		t.Fatalf("got %d blocks, want 3: %+v", len(result.ScheduledBlocks), result.ScheduledBlocks)
	}
	assertBlockAt(t, result.ScheduledBlocks[0], "A", testClock(t, 9, 0), testClock(t, 10, 30), entity.BlockTypeTask)
	assertBlockAt(t, result.ScheduledBlocks[1], "Pauze", testClock(t, 10, 30), testClock(t, 10, 45), entity.BlockTypeBreak)
	assertBlockAt(t, result.ScheduledBlocks[2], "B", testClock(t, 10, 45), testClock(t, 11, 45), entity.BlockTypeTask)

	t.Run("nothing persisted", func(t *testing.T) {
		if len(repo.blocks) != 0 || repo.confirmCalls != 0 {
			t.Errorf("preview wrote to the repository: %d blocks, %d confirms", len(repo.blocks), repo.confirmCalls)
		}
		for _, block := range result.ScheduledBlocks {
			if block.IsScheduled {
				t.Errorf("block %q marked scheduled in preview", block.Title)
			}
		}
		if len(enqueuer.calls) != 0 {
			t.Error("preview enqueued a sync task")
		}
	})

	t.Run("repeated preview is identical", func(t *testing.T) {
		again, appErr := svc.Preview(context.Background(), userID, req)
		if appErr != nil {
			t.Fatalf("Preview error: %v", appErr)
		}
		if !reflect.DeepEqual(result, again) {
			t.Errorf("previews differ:\nfirst:  %+v\nsecond: %+v", result, again)
		}
	})
}

func TestConfirm(t *testing.T) {
	setTestConfig(t)
	userID := uuid.New()

	repo := newFakeScheduleRepo()
	a := testActivity(t, "A", entity.PriorityUrgent, 90)
	b := testActivity(t, "B", entity.PriorityNormal, 60)
	repo.addActivity(a)
	repo.addActivity(b)

	enqueuer := &fakeEnqueuer{}
	svc := NewScheduleService(repo, &fakeBusyProvider{}, enqueuer)

	req := morningRequest(t, a.ID.String(), b.ID.String())

	preview, appErr := svc.Preview(context.Background(), userID, req)
	if appErr != nil {
		t.Fatalf("Preview error: %v", appErr)
	}

	result, appErr := svc.Confirm(context.Background(), userID, req)
	if appErr != nil {
		t.Fatalf("Confirm error: %v", appErr)
	}

	t.Run("blocks are committed as scheduled", func(t *testing.T) {
		if len(repo.blocks) != 3 {
			t.Fatalf("repository holds %d blocks, want 3", len(repo.blocks))
		}
		for _, block := range result.ScheduledBlocks {
			if !block.IsScheduled {
				t.Errorf("block %q not marked scheduled after confirm", block.Title)
			}
			if block.ID == uuid.Nil {
				t.Errorf("block %q committed without an id", block.Title)
			}
			wantStatus := entity.SyncStatusNone
			if block.BlockType == entity.BlockTypeTask {
				wantStatus = entity.SyncStatusPending
			}
			if block.SyncStatus != wantStatus {
				t.Errorf("block %q sync status = %q, want %q", block.Title, block.SyncStatus, wantStatus)
			}
		}
	})

	t.Run("confirm matches the preview placement", func(t *testing.T) {
		if len(result.ScheduledBlocks) != len(preview.ScheduledBlocks) {
			t.Fatalf("confirm placed %d blocks, preview %d", len(result.ScheduledBlocks), len(preview.ScheduledBlocks))
		}
		for i := range preview.ScheduledBlocks {
			p, c := preview.ScheduledBlocks[i], result.ScheduledBlocks[i]
			if p.Title != c.Title || !p.StartTime.Equal(c.StartTime) || !p.EndTime.Equal(c.EndTime) {
				t.Errorf("block %d: preview %q %v–%v, confirm %q %v–%v",
					i, p.Title, p.StartTime, p.EndTime, c.Title, c.StartTime, c.EndTime)
			}
		}
	})

	t.Run("task blocks are enqueued for sync", func(t *testing.T) {
		if len(enqueuer.calls) != 1 {
			t.Fatalf("got %d enqueue calls, want 1", len(enqueuer.calls))
		}
		if len(enqueuer.calls[0]) != 2 {
			t.Errorf("enqueued %d blocks, want the 2 task blocks", len(enqueuer.calls[0]))
		}
	})

	t.Run("second confirm sees the committed blocks", func(t *testing.T) {
		c := testActivity(t, "C", entity.PriorityNormal, 30)
		repo.addActivity(c)

		followUp := morningRequest(t, c.ID.String())
		followUp.Options.WorkingHours.End = "17:00"

		again, appErr := svc.Confirm(context.Background(), userID, followUp)
		if appErr != nil {
			t.Fatalf("Confirm error: %v", appErr)
		}
		if len(again.ScheduledBlocks) == 0 {
			t.Fatal("expected the follow-up activity to be placed")
		}
		for _, block := range again.ScheduledBlocks {
			for _, existing := range repo.blocks[:3] {
				if entity.Overlaps(block.Interval(), existing.Interval()) {
					t.Errorf("new block %q overlaps committed block %q", block.Title, existing.Title)
				}
			}
		}
	})
}

func TestConfirmSkipsUnschedulableActivities(t *testing.T) {
	setTestConfig(t)
	userID := uuid.New()

	repo := newFakeScheduleRepo()
	done := testActivity(t, "afgerond", entity.PriorityNormal, 30)
	done.Status = entity.ActivityStatusCompleted
	repo.addActivity(done)

	open := testActivity(t, "open", entity.PriorityNormal, 30)
	repo.addActivity(open)

	svc := NewScheduleService(repo, &fakeBusyProvider{}, &fakeEnqueuer{})

	result, appErr := svc.Confirm(context.Background(), userID, morningRequest(t, done.ID.String(), open.ID.String()))
	if appErr != nil {
		t.Fatalf("Confirm error: %v", appErr)
	}

	if len(result.ScheduledBlocks) == 0 || result.ScheduledBlocks[0].Title != "open" {
		t.Errorf("blocks = %+v, want only the open activity placed", result.ScheduledBlocks)
	}
	found := false
	for _, u := range result.UnscheduledActivities {
		if u.ActivityID == done.ID.String() {
			found = true
			if u.Reason != "activity is completed or already planned" {
				t.Errorf("reason = %q", u.Reason)
			}
		}
	}
	if !found {
		t.Error("completed activity missing from unscheduled explanations")
	}
}

func TestPreviewDegradesWhenCalendarUnavailable(t *testing.T) {
	setTestConfig(t)
	userID := uuid.New()

	repo := newFakeScheduleRepo()
	a := testActivity(t, "A", entity.PriorityNormal, 60)
	repo.addActivity(a)

	busyProvider := &fakeBusyProvider{err: context.DeadlineExceeded}
	svc := NewScheduleService(repo, busyProvider, &fakeEnqueuer{})

	result, appErr := svc.Preview(context.Background(), userID, morningRequest(t, a.ID.String()))
	if appErr != nil {
		t.Fatalf("Preview error: %v", appErr)
	}
	if len(result.ScheduledBlocks) == 0 {
		t.Error("expected a schedule despite the unreachable calendar")
	}
}

func TestPreviewRespectsExternalBusy(t *testing.T) {
	setTestConfig(t)
	userID := uuid.New()

	repo := newFakeScheduleRepo()
	a := testActivity(t, "A", entity.PriorityNormal, 120)
	repo.addActivity(a)

	busyProvider := &fakeBusyProvider{intervals: []entity.Interval{
		{Start: testClock(t, 9, 0), End: testClock(t, 10, 0)},
	}}
	svc := NewScheduleService(repo, busyProvider, &fakeEnqueuer{})

	result, appErr := svc.Preview(context.Background(), userID, morningRequest(t, a.ID.String()))
	if appErr != nil {
		t.Fatalf("Preview error: %v", appErr)
	}
	if len(result.ScheduledBlocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(result.ScheduledBlocks))
	}
	assertBlockAt(t, result.ScheduledBlocks[0], "A", testClock(t, 10, 0), testClock(t, 12, 0), entity.BlockTypeTask)
}

func TestResolveParamsValidation(t *testing.T) {
	setTestConfig(t)
	userID := uuid.New()
	repo := newFakeScheduleRepo()
	svc := NewScheduleService(repo, &fakeBusyProvider{}, &fakeEnqueuer{})

	valid := testActivity(t, "x", entity.PriorityNormal, 30)
	repo.addActivity(valid)

	tests := []struct {
		name   string
		mutate func(*dto.ScheduleRequest)
	}{
		{"empty activity ids", func(r *dto.ScheduleRequest) { r.ActivityIDs = nil }},
		{"malformed activity id", func(r *dto.ScheduleRequest) { r.ActivityIDs = []string{"not-a-uuid"} }},
		{"malformed date", func(r *dto.ScheduleRequest) { r.Date = "14-09-2026" }},
		{"inverted working hours", func(r *dto.ScheduleRequest) {
			r.Options.WorkingHours = dto.WorkingHours{Start: "17:00", End: "09:00"}
		}},
		{"malformed working hours", func(r *dto.ScheduleRequest) {
			r.Options.WorkingHours.Start = "9 uur"
		}},
		{"negative break duration", func(r *dto.ScheduleRequest) { r.Options.BreakDuration = -5 }},
		{"negative max tasks", func(r *dto.ScheduleRequest) { r.Options.MaxTasksPerDay = -1 }},
		{"unknown timezone", func(r *dto.ScheduleRequest) { r.Options.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := morningRequest(t, valid.ID.String())
			tt.mutate(req)
			_, appErr := svc.Preview(context.Background(), userID, req)
			if appErr == nil {
				t.Fatal("expected a validation error")
			}
			if appErr.Code != coreErrors.ErrInvalidInput {
				t.Errorf("error code = %q, want %q", appErr.Code, coreErrors.ErrInvalidInput)
			}
		})
	}
}

func TestCheckConflicts(t *testing.T) {
	setTestConfig(t)
	userID := uuid.New()

	repo := newFakeScheduleRepo()
	repo.blocks = append(repo.blocks, entity.TimeBlock{
		Title:     "bestaand blok",
		StartTime: testClock(t, 10, 0),
		EndTime:   testClock(t, 11, 0),
		BlockType: entity.BlockTypeTask,
		CreatedBy: userID,
	})

	busyProvider := &fakeBusyProvider{intervals: []entity.Interval{
		{Start: testClock(t, 14, 0), End: testClock(t, 15, 0)},
	}}
	svc := NewScheduleService(repo, busyProvider, &fakeEnqueuer{})

	req := &dto.CheckConflictsRequest{TimeBlocks: []dto.CandidateBlock{
		{Title: "vrij", StartTime: testClock(t, 11, 0), EndTime: testClock(t, 12, 0)},
		{Title: "botst met blok", StartTime: testClock(t, 10, 30), EndTime: testClock(t, 11, 30)},
		{Title: "botst met agenda", StartTime: testClock(t, 14, 30), EndTime: testClock(t, 15, 30)},
	}}

	resp, appErr := svc.CheckConflicts(context.Background(), userID, req)
	if appErr != nil {
		t.Fatalf("CheckConflicts error: %v", appErr)
	}
	if len(resp.Conflicts) != 2 {
		t.Fatalf("got %d conflicts, want 2: %+v", len(resp.Conflicts), resp.Conflicts)
	}
	if resp.Conflicts[0].Candidate.Title != "botst met blok" || resp.Conflicts[1].Candidate.Title != "botst met agenda" {
		t.Errorf("unexpected conflict set: %+v", resp.Conflicts)
	}

	t.Run("empty request rejected", func(t *testing.T) {
		_, appErr := svc.CheckConflicts(context.Background(), userID, &dto.CheckConflictsRequest{})
		if appErr == nil || appErr.Code != coreErrors.ErrInvalidInput {
			t.Errorf("got %v, want invalid input", appErr)
		}
	})
}

func TestCreateManualBlock(t *testing.T) {
	setTestConfig(t)
	userID := uuid.New()

	repo := newFakeScheduleRepo()
	svc := NewScheduleService(repo, &fakeBusyProvider{}, &fakeEnqueuer{})

	t.Run("creates a block", func(t *testing.T) {
		block, appErr := svc.CreateManualBlock(context.Background(), userID, &dto.CreateTimeBlockRequest{
			Title:     "lunchwandeling",
			StartTime: testClock(t, 12, 0),
			EndTime:   testClock(t, 12, 30),
			BlockType: "break",
		})
		if appErr != nil {
			t.Fatalf("CreateManualBlock error: %v", appErr)
		}
		if block.ID == uuid.Nil || block.DurationMinutes != 30 || block.BlockType != entity.BlockTypeBreak {
			t.Errorf("unexpected block: %+v", block)
		}
	})

	t.Run("overlap with an existing block is rejected", func(t *testing.T) {
		_, appErr := svc.CreateManualBlock(context.Background(), userID, &dto.CreateTimeBlockRequest{
			Title:     "dubbel",
			StartTime: testClock(t, 12, 15),
			EndTime:   testClock(t, 13, 0),
		})
		if appErr == nil || appErr.Code != coreErrors.ErrScheduleConflict {
			t.Errorf("got %v, want schedule conflict", appErr)
		}
	})

	t.Run("inverted times rejected", func(t *testing.T) {
		_, appErr := svc.CreateManualBlock(context.Background(), userID, &dto.CreateTimeBlockRequest{
			Title:     "achterstevoren",
			StartTime: testClock(t, 15, 0),
			EndTime:   testClock(t, 14, 0),
		})
		if appErr == nil || appErr.Code != coreErrors.ErrInvalidInput {
			t.Errorf("got %v, want invalid input", appErr)
		}
	})

	t.Run("unknown block type rejected", func(t *testing.T) {
		_, appErr := svc.CreateManualBlock(context.Background(), userID, &dto.CreateTimeBlockRequest{
			Title:     "raar",
			StartTime: testClock(t, 15, 0),
			EndTime:   testClock(t, 16, 0),
			BlockType: "vergadering",
		})
		if appErr == nil || appErr.Code != coreErrors.ErrInvalidInput {
			t.Errorf("got %v, want invalid input", appErr)
		}
	})
}

func TestRequestSync(t *testing.T) {
	setTestConfig(t)
	userID := uuid.New()
	otherUser := uuid.New()

	repo := newFakeScheduleRepo()
	ownTask := entity.TimeBlock{Title: "own task", StartTime: testClock(t, 9, 0), EndTime: testClock(t, 10, 0), BlockType: entity.BlockTypeTask, CreatedBy: userID}
	ownTask.ID = uuid.New()
	ownBreak := entity.TimeBlock{Title: "Pauze", StartTime: testClock(t, 10, 0), EndTime: testClock(t, 10, 15), BlockType: entity.BlockTypeBreak, CreatedBy: userID}
	ownBreak.ID = uuid.New()
	foreign := entity.TimeBlock{Title: "foreign", StartTime: testClock(t, 9, 0), EndTime: testClock(t, 10, 0), BlockType: entity.BlockTypeTask, CreatedBy: otherUser}
	foreign.ID = uuid.New()
	repo.blocks = append(repo.blocks, ownTask, ownBreak, foreign)

	enqueuer := &fakeEnqueuer{}
	svc := NewScheduleService(repo, &fakeBusyProvider{}, enqueuer)

	resp, appErr := svc.RequestSync(context.Background(), userID, &dto.SyncRequest{
		TimeBlockIDs: []string{ownTask.ID.String(), ownBreak.ID.String(), foreign.ID.String()},
	})
	if appErr != nil {
		t.Fatalf("RequestSync error: %v", appErr)
	}

	if resp.Enqueued != 1 {
		t.Errorf("enqueued = %d, want 1 (own task block only)", resp.Enqueued)
	}
	if len(enqueuer.calls) != 1 || len(enqueuer.calls[0]) != 1 || enqueuer.calls[0][0] != ownTask.ID {
		t.Errorf("enqueue calls = %+v, want only the own task block", enqueuer.calls)
	}
	if len(repo.markedPend) != 1 || repo.markedPend[0] != ownTask.ID {
		t.Errorf("marked pending = %v, want only the own task block", repo.markedPend)
	}

	t.Run("no syncable blocks", func(t *testing.T) {
		resp, appErr := svc.RequestSync(context.Background(), userID, &dto.SyncRequest{
			TimeBlockIDs: []string{foreign.ID.String()},
		})
		if appErr != nil {
			t.Fatalf("RequestSync error: %v", appErr)
		}
		if resp.Enqueued != 0 {
			t.Errorf("enqueued = %d, want 0", resp.Enqueued)
		}
	})

	t.Run("empty ids rejected", func(t *testing.T) {
		_, appErr := svc.RequestSync(context.Background(), userID, &dto.SyncRequest{})
		if appErr == nil || appErr.Code != coreErrors.ErrInvalidInput {
			t.Errorf("got %v, want invalid input", appErr)
		}
	})
}

func TestListBlocks(t *testing.T) {
	setTestConfig(t)
	userID := uuid.New()

	repo := newFakeScheduleRepo()
	inDay := entity.TimeBlock{Title: "vandaag", StartTime: testClock(t, 9, 0), EndTime: testClock(t, 10, 0), BlockType: entity.BlockTypeTask, CreatedBy: userID}
	inDay.ID = uuid.New()
	nextDay := entity.TimeBlock{Title: "morgen", StartTime: testClock(t, 9, 0).AddDate(0, 0, 1), EndTime: testClock(t, 10, 0).AddDate(0, 0, 1), BlockType: entity.BlockTypeTask, CreatedBy: userID}
	nextDay.ID = uuid.New()
	repo.blocks = append(repo.blocks, inDay, nextDay)

	svc := NewScheduleService(repo, &fakeBusyProvider{}, &fakeEnqueuer{})

	resp, appErr := svc.ListBlocks(context.Background(), userID, "2026-09-14")
	if appErr != nil {
		t.Fatalf("ListBlocks error: %v", appErr)
	}
	if len(resp.Blocks) != 1 || resp.Blocks[0].Title != "vandaag" {
		t.Errorf("blocks = %+v, want only today's block", resp.Blocks)
	}

	t.Run("malformed date", func(t *testing.T) {
		_, appErr := svc.ListBlocks(context.Background(), userID, "gisteren")
		if appErr == nil || appErr.Code != coreErrors.ErrInvalidInput {
			t.Errorf("got %v, want invalid input", appErr)
		}
	})
}
