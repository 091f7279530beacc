package dto

// Provider constants
const (
	ProviderGoogle  = "google"
	ProviderOutlook = "outlook"
)

// ConnectGoogleRequest stores the tokens obtained by the OAuth flow
type ConnectGoogleRequest struct {
	AccessToken    string `json:"access_token" validate:"required"`
	RefreshToken   string `json:"refresh_token" validate:"required"`
	TokenExpiresAt string `json:"token_expires_at" validate:"required"` // RFC3339
	CalendarEmail  string `json:"calendar_email" validate:"required"`
}

// CalendarConnectionResponse represents a calendar connection
type CalendarConnectionResponse struct {
	ID            string `json:"id"`
	Provider      string `json:"provider"`
	CalendarEmail string `json:"calendar_email"`
	IsActive      bool   `json:"is_active"`
	ConnectedAt   string `json:"connected_at"`
}

// CalendarConnectionListResponse represents list of connections
type CalendarConnectionListResponse struct {
	Connections []CalendarConnectionResponse `json:"connections"`
}

// BusySlot is one external busy period, RFC3339 timestamps
type BusySlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FreeBusyResponse lists a user's external busy periods for a range
type FreeBusyResponse struct {
	Start string     `json:"start"`
	End   string     `json:"end"`
	Busy  []BusySlot `json:"busy"`
}
