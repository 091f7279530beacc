package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dagplanner-api/core/cache"
	"dagplanner-api/core/config"
	"dagplanner-api/core/constants"
	"dagplanner-api/core/errors"
	"dagplanner-api/core/logger"
	"dagplanner-api/modules/calendar/dto"
	"dagplanner-api/modules/calendar/entity"
	"dagplanner-api/modules/calendar/repository"
	scheduleEntity "dagplanner-api/modules/schedule/entity"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleCalendarAPIBase = "https://www.googleapis.com/calendar/v3"

// ErrNoConnection is returned by PushBlock when the user never connected a
// calendar. BusyIntervals treats it as an empty busy set instead.
var ErrNoConnection = fmt.Errorf("no active calendar connection")

type CalendarService interface {
	// Connection management
	SaveGoogleConnection(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiresAt time.Time, email string) (*entity.CalendarConnection, error)
	GetConnections(ctx context.Context, userID uuid.UUID) ([]dto.CalendarConnectionResponse, *errors.AppError)
	DisconnectCalendar(ctx context.Context, userID uuid.UUID, provider string) *errors.AppError

	// Busy set for the scheduler
	BusyIntervals(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]scheduleEntity.Interval, error)
	GetFreeBusy(ctx context.Context, userID uuid.UUID, start, end time.Time) (*dto.FreeBusyResponse, *errors.AppError)

	// Mirroring committed blocks
	PushBlock(ctx context.Context, userID uuid.UUID, block *scheduleEntity.TimeBlock) (string, error)
}

type calendarService struct {
	repo       repository.CalendarRepository
	cache      *cache.Cache
	httpClient *http.Client
	apiBase    string
}

func NewCalendarService(repo repository.CalendarRepository, c *cache.Cache) CalendarService {
	return &calendarService{
		repo:       repo,
		cache:      c,
		httpClient: &http.Client{Timeout: constants.GoogleAPITimeout},
		apiBase:    googleCalendarAPIBase,
	}
}

func (s *calendarService) freeBusyURL() string {
	return s.apiBase + "/freeBusy"
}

func (s *calendarService) eventsURL() string {
	return s.apiBase + "/calendars/primary/events"
}

// SaveGoogleConnection saves or updates a Google Calendar connection
func (s *calendarService) SaveGoogleConnection(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiresAt time.Time, email string) (*entity.CalendarConnection, error) {
	existing, err := s.repo.GetConnectionByUserAndProvider(ctx, userID, dto.ProviderGoogle)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.AccessToken = accessToken
		existing.RefreshToken = refreshToken
		existing.TokenExpiresAt = expiresAt
		existing.CalendarEmail = email
		existing.IsActive = true

		if err := s.repo.UpdateConnection(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	conn := &entity.CalendarConnection{
		UserID:         userID,
		Provider:       dto.ProviderGoogle,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: expiresAt,
		CalendarEmail:  email,
		IsActive:       true,
	}

	return s.repo.CreateConnection(ctx, conn)
}

// GetConnections returns all calendar connections for a user
func (s *calendarService) GetConnections(ctx context.Context, userID uuid.UUID) ([]dto.CalendarConnectionResponse, *errors.AppError) {
	connections, err := s.repo.GetConnectionsByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load calendar connections", err)
	}

	result := make([]dto.CalendarConnectionResponse, 0, len(connections))
	for _, conn := range connections {
		result = append(result, dto.CalendarConnectionResponse{
			ID:            conn.ID.String(),
			Provider:      conn.Provider,
			CalendarEmail: conn.CalendarEmail,
			IsActive:      conn.IsActive,
			ConnectedAt:   conn.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

// DisconnectCalendar disconnects a calendar provider
func (s *calendarService) DisconnectCalendar(ctx context.Context, userID uuid.UUID, provider string) *errors.AppError {
	if err := s.repo.DeleteConnection(ctx, userID, provider); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to disconnect calendar", err)
	}
	return nil
}

// BusyIntervals returns the user's external busy periods as scheduler
// intervals. A user without a connection simply has no external busy time.
// Responses are cached briefly so repeated previews while the user tweaks
// options do not hammer the provider.
func (s *calendarService) BusyIntervals(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]scheduleEntity.Interval, error) {
	cacheKey := fmt.Sprintf("%s%s:%d:%d", constants.RedisKeyFreeBusy, userID, start.Unix(), end.Unix())
	if s.cache != nil {
		var cached []scheduleEntity.Interval
		if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	conn, err := s.repo.GetConnectionByUserAndProvider(ctx, userID, dto.ProviderGoogle)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, nil
	}

	accessToken, err := s.ensureValidToken(ctx, conn)
	if err != nil {
		return nil, err
	}

	intervals, err := s.callGoogleFreeBusy(ctx, accessToken, conn.CalendarEmail, start, end)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, intervals, constants.FreeBusyCacheTTL); err != nil {
			logger.Warn("CalendarService:BusyIntervals:CacheSet:Error", "error", err)
		}
	}

	return intervals, nil
}

// GetFreeBusy is the HTTP-facing variant of BusyIntervals
func (s *calendarService) GetFreeBusy(ctx context.Context, userID uuid.UUID, start, end time.Time) (*dto.FreeBusyResponse, *errors.AppError) {
	intervals, err := s.BusyIntervals(ctx, userID, start, end)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to fetch free/busy information", err)
	}

	resp := &dto.FreeBusyResponse{
		Start: start.Format(time.RFC3339),
		End:   end.Format(time.RFC3339),
		Busy:  make([]dto.BusySlot, 0, len(intervals)),
	}
	for _, iv := range intervals {
		resp.Busy = append(resp.Busy, dto.BusySlot{
			Start: iv.Start.Format(time.RFC3339),
			End:   iv.End.Format(time.RFC3339),
		})
	}
	return resp, nil
}

// PushBlock mirrors a committed task block to the user's Google Calendar.
// A block that already carries an external event id is updated in place, so
// re-sending never duplicates events.
func (s *calendarService) PushBlock(ctx context.Context, userID uuid.UUID, block *scheduleEntity.TimeBlock) (string, error) {
	conn, err := s.repo.GetConnectionByUserAndProvider(ctx, userID, dto.ProviderGoogle)
	if err != nil {
		return "", err
	}
	if conn == nil {
		return "", ErrNoConnection
	}

	accessToken, err := s.ensureValidToken(ctx, conn)
	if err != nil {
		return "", err
	}

	timezone := constants.DefaultTimezone
	if cfg, ok := config.GetSafe(); ok {
		timezone = cfg.Scheduler.Timezone
	}

	event := map[string]interface{}{
		"summary": block.Title,
		"start": map[string]string{
			"dateTime": block.StartTime.Format(time.RFC3339),
			"timeZone": timezone,
		},
		"end": map[string]string{
			"dateTime": block.EndTime.Format(time.RFC3339),
			"timeZone": timezone,
		},
		"extendedProperties": map[string]interface{}{
			"private": map[string]string{
				"dagplannerBlockId": block.ID.String(),
				"dagplannerKey":     slug.Make(block.Title),
			},
		},
	}

	method := http.MethodPost
	apiURL := s.eventsURL()
	if block.ExternalEventID != nil && *block.ExternalEventID != "" {
		method = http.MethodPut
		apiURL = fmt.Sprintf("%s/%s", s.eventsURL(), *block.ExternalEventID)
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bytes.NewReader(eventJSON))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("google calendar API error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("google calendar API returned no event id")
	}

	return result.ID, nil
}

// ensureValidToken returns a usable access token, refreshing through the
// OAuth2 endpoint when the stored one is about to expire.
func (s *calendarService) ensureValidToken(ctx context.Context, conn *entity.CalendarConnection) (string, error) {
	if time.Now().Before(conn.TokenExpiresAt.Add(-5 * time.Minute)) {
		return conn.AccessToken, nil
	}

	logger.Info("CalendarService:ensureValidToken:Refreshing", "user_id", conn.UserID)

	cfg, ok := config.GetSafe()
	if !ok {
		return "", fmt.Errorf("config not initialized")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
	}

	source := oauthCfg.TokenSource(ctx, &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiresAt,
	})

	token, err := source.Token()
	if err != nil {
		logger.Error("CalendarService:ensureValidToken:Error", "error", err, "user_id", conn.UserID)
		return "", fmt.Errorf("google token refresh: %w", err)
	}

	conn.AccessToken = token.AccessToken
	conn.TokenExpiresAt = token.Expiry
	if token.RefreshToken != "" {
		conn.RefreshToken = token.RefreshToken
	}

	if err := s.repo.UpdateConnection(ctx, conn); err != nil {
		logger.Error("CalendarService:ensureValidToken:SaveToken:Error", "error", err)
	}

	return token.AccessToken, nil
}

// callGoogleFreeBusy calls the Google Calendar FreeBusy API
func (s *calendarService) callGoogleFreeBusy(ctx context.Context, accessToken, email string, start, end time.Time) ([]scheduleEntity.Interval, error) {
	payload := map[string]interface{}{
		"timeMin": start.Format(time.RFC3339),
		"timeMax": end.Format(time.RFC3339),
		"items": []map[string]string{
			{"id": email},
		},
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.freeBusyURL(), bytes.NewReader(payloadJSON))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google freeBusy API error %d: %s", resp.StatusCode, string(body))
	}

	var freeBusyResp struct {
		Calendars map[string]struct {
			Busy []struct {
				Start time.Time `json:"start"`
				End   time.Time `json:"end"`
			} `json:"busy"`
		} `json:"calendars"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&freeBusyResp); err != nil {
		return nil, err
	}

	var intervals []scheduleEntity.Interval
	for _, cal := range freeBusyResp.Calendars {
		for _, busy := range cal.Busy {
			intervals = append(intervals, scheduleEntity.Interval{Start: busy.Start, End: busy.End})
		}
	}

	return intervals, nil
}
