package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Slack    SlackConfig
	Tasks    TasksConfig
	Google   GoogleConfig
	Forecast ForecastConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// SlackConfig holds workspace messaging settings
type SlackConfig struct {
	BotToken         string
	PrimaryChannelID string
}

// TasksConfig holds settings for the scheduled background work
type TasksConfig struct {
	CronSecret       string
	DefaultEventTime string
	PublishInterval  time.Duration
	ReminderSendHour int
}

// GoogleConfig holds Google Calendar OAuth settings
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// ForecastConfig holds weather lookup coordinates
type ForecastConfig struct {
	Latitude  float64
	Longitude float64
	Timezone  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Env:          getEnv("SERVER_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "reginald"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Slack: SlackConfig{
			BotToken:         getEnv("SLACK_BOT_TOKEN", ""),
			PrimaryChannelID: getEnv("SLACK_CHANNEL_ID", ""),
		},
		Tasks: TasksConfig{
			CronSecret:       getEnv("CRON_SECRET", ""),
			DefaultEventTime: getEnv("DEFAULT_EVENT_TIME", "17:30"),
			PublishInterval:  getDurationEnv("PUBLISH_INTERVAL", time.Minute),
			ReminderSendHour: getIntEnv("REMINDER_SEND_HOUR", 9),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Forecast: ForecastConfig{
			Latitude:  getFloatEnv("FORECAST_LATITUDE", 0),
			Longitude: getFloatEnv("FORECAST_LONGITUDE", 0),
			Timezone:  getEnv("FORECAST_TIMEZONE", ""),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// Slack validation - the bot cannot post without a token
	if c.IsProduction() {
		if c.Slack.BotToken == "" {
			errs = append(errs, errors.New("SLACK_BOT_TOKEN is required in production"))
		}
		if c.Slack.PrimaryChannelID == "" {
			errs = append(errs, errors.New("SLACK_CHANNEL_ID is required in production"))
		}
		if c.Tasks.CronSecret == "" {
			errs = append(errs, errors.New("CRON_SECRET is required in production"))
		}
	}

	// Tasks validation
	if _, err := time.Parse("15:04", c.Tasks.DefaultEventTime); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_EVENT_TIME must be HH:MM, got '%s'", c.Tasks.DefaultEventTime))
	}
	if c.Tasks.PublishInterval <= 0 {
		errs = append(errs, errors.New("PUBLISH_INTERVAL must be positive"))
	}
	if c.Tasks.ReminderSendHour < 0 || c.Tasks.ReminderSendHour > 23 {
		errs = append(errs, errors.New("REMINDER_SEND_HOUR must be between 0 and 23"))
	}

	// Google OAuth validation - if any field is set, all are required
	if c.Google.IsConfigured() {
		if err := c.Google.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("Google OAuth: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// IsConfigured returns true if any Google OAuth field is set
func (g GoogleConfig) IsConfigured() bool {
	return g.ClientID != "" || g.ClientSecret != "" || g.RedirectURL != ""
}

// Validate checks that all required Google OAuth fields are present
func (g GoogleConfig) Validate() error {
	var missing []string
	if g.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if g.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if g.RedirectURL == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
