package constants

import "time"

// Context keys
const (
	ContextTokenData = "token_data"
)

// Token scopes
const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
)

// Timeouts
const (
	DefaultTimeout     = 10 * time.Second
	GoogleAPITimeout   = 30 * time.Second
	ShutdownTimeout    = 15 * time.Second
	FreeBusyCacheTTL   = 2 * time.Minute
	ConfirmLockTimeout = 30 * time.Second
)

// Database pool settings
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Redis key prefixes
const (
	RedisKeyFreeBusy = "dagplanner:freebusy:"
)

// Scheduler defaults
const (
	DefaultTimezone          = "Europe/Amsterdam"
	DefaultWorkingHoursStart = "09:00"
	DefaultWorkingHoursEnd   = "17:00"
	DefaultMinimumBlockSize  = 30 // minutes
	DefaultBreakDuration     = 15 // minutes
	DefaultMaxTasksPerDay    = 8
)

// Calendar sync
const (
	SyncMaxRetry          = 5
	SyncTaskQueue         = "calendar"
	SyncWorkerConcurrency = 5
	PendingSyncSweep      = "*/10 * * * *" // every 10 minutes
	PendingSyncMaxAge     = 5 * time.Minute
)
