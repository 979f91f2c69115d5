package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken        string `validate:"required"`
	GoogleClientID       string `validate:"required"`
	GoogleClientSecret   string `validate:"required"`
	GoogleRedirectURI    string `validate:"required,url"`
	GoogleRefreshToken   string // Optional bootstrap token, seeded when the store is empty
	DatabaseURL          string // Empty means tokens are kept in memory only
	Port                 int    `validate:"min=1,max=65535"`
	WebhookPublicURL     string `validate:"omitempty,url"` // Empty means long polling
	WebhookSecret        string
	OwnerTelegramID      int64         `validate:"min=0"`
	Timezone             string        `validate:"required"`
	MeetingDuration      time.Duration `validate:"min=1m"`
	CalendarID           string        `validate:"required"`
	TaskListID           string        `validate:"required"`
	GoogleAPIRPS         float64       `validate:"gt=0"`
	DedupCapacity        int           `validate:"min=1"`
	DedupTTL             time.Duration `validate:"min=1s"`
	SendICS              bool
	LogLevel             string `validate:"oneof=trace debug info warn warning error fatal panic"`
	Environment          string
	CronSpecDedupSweep   string `validate:"required"` // Expired dedup entries
	CronSpecTokenRefresh string `validate:"required"` // Credential keep-alive
}

var validate = validator.New()

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{
		TelegramToken:        os.Getenv("TELEGRAM_TOKEN"),
		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:    os.Getenv("GOOGLE_REDIRECT_URI"),
		GoogleRefreshToken:   os.Getenv("GOOGLE_REFRESH_TOKEN"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		WebhookPublicURL:     strings.TrimRight(os.Getenv("WEBHOOK_PUBLIC_URL"), "/"),
		WebhookSecret:        os.Getenv("WEBHOOK_SECRET"),
		Timezone:             getEnv("TIMEZONE", "America/Lima"),
		CalendarID:           getEnv("CALENDAR_ID", "primary"),
		TaskListID:           getEnv("TASK_LIST_ID", "@default"),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:          strings.ToLower(getEnv("ENVIRONMENT", "development")),
		CronSpecDedupSweep:   getEnv("CRON_SPEC_DEDUP_SWEEP", "*/10 * * * *"),  // Default: every 10 minutes
		CronSpecTokenRefresh: getEnv("CRON_SPEC_TOKEN_REFRESH", "0 */6 * * *"), // Default: every 6 hours
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if v := os.Getenv("OWNER_TELEGRAM_ID"); v != "" {
		if cfg.OwnerTelegramID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid OWNER_TELEGRAM_ID: %w", err)
		}
	}
	if cfg.MeetingDuration, err = time.ParseDuration(getEnv("MEETING_DURATION", "60m")); err != nil {
		return nil, fmt.Errorf("invalid MEETING_DURATION: %w", err)
	}
	if cfg.GoogleAPIRPS, err = strconv.ParseFloat(getEnv("GOOGLE_API_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid GOOGLE_API_RPS: %w", err)
	}
	if cfg.DedupCapacity, err = strconv.Atoi(getEnv("DEDUP_CAPACITY", "1024")); err != nil {
		return nil, fmt.Errorf("invalid DEDUP_CAPACITY: %w", err)
	}
	if cfg.DedupTTL, err = time.ParseDuration(getEnv("DEDUP_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("invalid DEDUP_TTL: %w", err)
	}
	if cfg.SendICS, err = strconv.ParseBool(getEnv("SEND_ICS", "false")); err != nil {
		return nil, fmt.Errorf("invalid SEND_ICS: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// UseWebhook reports whether updates arrive through the HTTP webhook instead
// of long polling.
func (c *AppConfig) UseWebhook() bool {
	return c.WebhookPublicURL != ""
}

// WebhookURL is the URL registered with Telegram.
func (c *AppConfig) WebhookURL() string {
	return c.WebhookPublicURL + "/webhook"
}

// AuthURL is the public entry point of the OAuth consent flow.
func (c *AppConfig) AuthURL() string {
	if c.WebhookPublicURL != "" {
		return c.WebhookPublicURL + "/auth"
	}
	return fmt.Sprintf("http://localhost:%d/auth", c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
