package entity

import (
	"time"

	"dagplanner-api/core/entity"

	"github.com/google/uuid"
)

// CalendarConnection stores a user's external calendar provider connection.
// Tokens are obtained by the external auth flow; this module only consumes
// and refreshes them.
type CalendarConnection struct {
	entity.BaseEntity
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Provider       string    `db:"provider" json:"provider"` // "google" | "outlook"
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	CalendarEmail  string    `db:"calendar_email" json:"calendar_email"`
	IsActive       bool      `db:"is_active" json:"is_active"`
}

// TableName returns the table backing this entity
func (CalendarConnection) TableName() string {
	return "calendar_connections"
}
