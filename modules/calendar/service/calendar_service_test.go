package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dagplanner-api/core/config"
	"dagplanner-api/modules/calendar/entity"
	scheduleEntity "dagplanner-api/modules/schedule/entity"

	"github.com/google/uuid"
)

type fakeConnectionRepo struct {
	connection *entity.CalendarConnection
	updated    int
	err        error
}

func (r *fakeConnectionRepo) CreateConnection(ctx context.Context, conn *entity.CalendarConnection) (*entity.CalendarConnection, error) {
	created := *conn
	created.ID = uuid.New()
	r.connection = &created
	return &created, nil
}

func (r *fakeConnectionRepo) GetConnectionByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*entity.CalendarConnection, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.connection, nil
}

func (r *fakeConnectionRepo) GetConnectionsByUserID(ctx context.Context, userID uuid.UUID) ([]entity.CalendarConnection, error) {
	if r.connection == nil {
		return nil, nil
	}
	return []entity.CalendarConnection{*r.connection}, nil
}

func (r *fakeConnectionRepo) UpdateConnection(ctx context.Context, conn *entity.CalendarConnection) error {
	r.updated++
	r.connection = conn
	return nil
}

func (r *fakeConnectionRepo) DeleteConnection(ctx context.Context, userID uuid.UUID, provider string) error {
	r.connection = nil
	return nil
}

func validConnection(userID uuid.UUID) *entity.CalendarConnection {
	return &entity.CalendarConnection{
		UserID:         userID,
		Provider:       "google",
		AccessToken:    "valid-token",
		RefreshToken:   "refresh-token",
		TokenExpiresAt: time.Now().Add(time.Hour),
		CalendarEmail:  "d.devries@example.nl",
		IsActive:       true,
	}
}

func newTestService(repo *fakeConnectionRepo, apiBase string) *calendarService {
	return &calendarService{
		repo:       repo,
		httpClient: http.DefaultClient,
		apiBase:    apiBase,
	}
}

func TestBusyIntervals(t *testing.T) {
	config.Set(&config.Config{Scheduler: config.SchedulerConfig{Timezone: "UTC"}})
	userID := uuid.New()
	start := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	t.Run("no connection means no busy time", func(t *testing.T) {
		svc := newTestService(&fakeConnectionRepo{}, "http://unused.invalid")
		intervals, err := svc.BusyIntervals(context.Background(), userID, start, end)
		if err != nil {
			t.Fatalf("BusyIntervals error: %v", err)
		}
		if intervals != nil {
			t.Errorf("got %v, want nil", intervals)
		}
	})

	t.Run("busy periods are parsed from the provider", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/freeBusy" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer valid-token" {
				t.Errorf("authorization = %q", got)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"calendars": map[string]any{
					"d.devries@example.nl": map[string]any{
						"busy": []map[string]string{
							{"start": "2026-09-14T10:00:00Z", "end": "2026-09-14T11:00:00Z"},
						},
					},
				},
			})
		}))
		defer server.Close()

		repo := &fakeConnectionRepo{connection: validConnection(userID)}
		svc := newTestService(repo, server.URL)

		intervals, err := svc.BusyIntervals(context.Background(), userID, start, end)
		if err != nil {
			t.Fatalf("BusyIntervals error: %v", err)
		}
		if len(intervals) != 1 {
			t.Fatalf("got %d intervals, want 1", len(intervals))
		}
		want := scheduleEntity.Interval{
			Start: time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 9, 14, 11, 0, 0, 0, time.UTC),
		}
		if !intervals[0].Start.Equal(want.Start) || !intervals[0].End.Equal(want.End) {
			t.Errorf("got %v, want %v", intervals[0], want)
		}
	})

	t.Run("provider error is surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusForbidden)
		}))
		defer server.Close()

		repo := &fakeConnectionRepo{connection: validConnection(userID)}
		svc := newTestService(repo, server.URL)

		if _, err := svc.BusyIntervals(context.Background(), userID, start, end); err == nil {
			t.Error("expected an error from the provider")
		}
	})
}

func TestPushBlock(t *testing.T) {
	config.Set(&config.Config{Scheduler: config.SchedulerConfig{Timezone: "UTC"}})
	userID := uuid.New()

	block := &scheduleEntity.TimeBlock{
		Title:     "Rapport afronden",
		StartTime: time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC),
		BlockType: scheduleEntity.BlockTypeTask,
		CreatedBy: userID,
	}
	block.ID = uuid.New()

	t.Run("no connection", func(t *testing.T) {
		svc := newTestService(&fakeConnectionRepo{}, "http://unused.invalid")
		if _, err := svc.PushBlock(context.Background(), userID, block); !errors.Is(err, ErrNoConnection) {
			t.Errorf("got %v, want ErrNoConnection", err)
		}
	})

	t.Run("new block is created", func(t *testing.T) {
		var gotMethod, gotPath string
		var gotEvent map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod, gotPath = r.Method, r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotEvent)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "evt-42"})
		}))
		defer server.Close()

		repo := &fakeConnectionRepo{connection: validConnection(userID)}
		svc := newTestService(repo, server.URL)

		eventID, err := svc.PushBlock(context.Background(), userID, block)
		if err != nil {
			t.Fatalf("PushBlock error: %v", err)
		}
		if eventID != "evt-42" {
			t.Errorf("event id = %q, want evt-42", eventID)
		}
		if gotMethod != http.MethodPost || gotPath != "/calendars/primary/events" {
			t.Errorf("request = %s %s, want POST /calendars/primary/events", gotMethod, gotPath)
		}
		if gotEvent["summary"] != "Rapport afronden" {
			t.Errorf("summary = %v", gotEvent["summary"])
		}
	})

	t.Run("block with an event id is updated in place", func(t *testing.T) {
		evt := "evt-42"
		updated := *block
		updated.ExternalEventID = &evt

		var gotMethod, gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod, gotPath = r.Method, r.URL.Path
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "evt-42"})
		}))
		defer server.Close()

		repo := &fakeConnectionRepo{connection: validConnection(userID)}
		svc := newTestService(repo, server.URL)

		if _, err := svc.PushBlock(context.Background(), userID, &updated); err != nil {
			t.Fatalf("PushBlock error: %v", err)
		}
		if gotMethod != http.MethodPut || gotPath != "/calendars/primary/events/evt-42" {
			t.Errorf("request = %s %s, want PUT /calendars/primary/events/evt-42", gotMethod, gotPath)
		}
	})

	t.Run("provider rejection is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
		}))
		defer server.Close()

		repo := &fakeConnectionRepo{connection: validConnection(userID)}
		svc := newTestService(repo, server.URL)

		if _, err := svc.PushBlock(context.Background(), userID, block); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestSaveGoogleConnection(t *testing.T) {
	userID := uuid.New()

	t.Run("creates when absent", func(t *testing.T) {
		repo := &fakeConnectionRepo{}
		svc := newTestService(repo, "http://unused.invalid")

		conn, err := svc.SaveGoogleConnection(context.Background(), userID, "access", "refresh", time.Now().Add(time.Hour), "d.devries@example.nl")
		if err != nil {
			t.Fatalf("SaveGoogleConnection error: %v", err)
		}
		if conn.ID == uuid.Nil || !conn.IsActive {
			t.Errorf("unexpected connection: %+v", conn)
		}
	})

	t.Run("updates in place when present", func(t *testing.T) {
		repo := &fakeConnectionRepo{connection: validConnection(userID)}
		svc := newTestService(repo, "http://unused.invalid")

		conn, err := svc.SaveGoogleConnection(context.Background(), userID, "new-access", "new-refresh", time.Now().Add(time.Hour), "d.devries@example.nl")
		if err != nil {
			t.Fatalf("SaveGoogleConnection error: %v", err)
		}
		if repo.updated != 1 {
			t.Errorf("updated %d times, want 1", repo.updated)
		}
		if conn.AccessToken != "new-access" {
			t.Errorf("access token = %q", conn.AccessToken)
		}
	})
}
