package config

import (
	"fmt"
	"sync"

	"dagplanner-api/core/constants"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host     string
	Port     int
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  int // minutes
	RefreshTokenTTL int // minutes
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

type SchedulerConfig struct {
	Timezone          string
	WorkingHoursStart string
	WorkingHoursEnd   string
	MinimumBlockSize  int
	BreakDuration     int
	MaxTasksPerDay    int
}

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Google    GoogleConfig
	Scheduler SchedulerConfig
}

var (
	instance *Config
	mu       sync.RWMutex
)

// Load reads configuration from environment (optionally a .env file) into the
// global config instance.
func Load() (*Config, error) {
	// .env is optional, environment variables win
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 7070)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "dagplanner")
	v.SetDefault("DB_SSLMODE", constants.DatabaseSSLMode)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 60)
	v.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)

	v.SetDefault("SCHEDULER_TIMEZONE", constants.DefaultTimezone)
	v.SetDefault("SCHEDULER_WORKING_HOURS_START", constants.DefaultWorkingHoursStart)
	v.SetDefault("SCHEDULER_WORKING_HOURS_END", constants.DefaultWorkingHoursEnd)
	v.SetDefault("SCHEDULER_MINIMUM_BLOCK_SIZE", constants.DefaultMinimumBlockSize)
	v.SetDefault("SCHEDULER_BREAK_DURATION", constants.DefaultBreakDuration)
	v.SetDefault("SCHEDULER_MAX_TASKS_PER_DAY", constants.DefaultMaxTasksPerDay)

	cfg := &Config{
		Server: ServerConfig{
			Host:     v.GetString("SERVER_HOST"),
			Port:     v.GetInt("SERVER_PORT"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessTokenTTL:  v.GetInt("JWT_ACCESS_TOKEN_TTL"),
			RefreshTokenTTL: v.GetInt("JWT_REFRESH_TOKEN_TTL"),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		},
		Scheduler: SchedulerConfig{
			Timezone:          v.GetString("SCHEDULER_TIMEZONE"),
			WorkingHoursStart: v.GetString("SCHEDULER_WORKING_HOURS_START"),
			WorkingHoursEnd:   v.GetString("SCHEDULER_WORKING_HOURS_END"),
			MinimumBlockSize:  v.GetInt("SCHEDULER_MINIMUM_BLOCK_SIZE"),
			BreakDuration:     v.GetInt("SCHEDULER_BREAK_DURATION"),
			MaxTasksPerDay:    v.GetInt("SCHEDULER_MAX_TASKS_PER_DAY"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()

	return cfg, nil
}

// Get returns the global config. Panics if Load was never called.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("config not initialized")
	}
	return instance
}

// GetSafe returns the global config and whether it has been initialized.
func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

// Set replaces the global config (test helper).
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}
