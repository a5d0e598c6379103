package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL string // Consolidated DB Connection URL
	RedisURL    string
	HTTPPort    string `validate:"required,numeric"`

	CORSAllowOrigins []string `validate:"min=1,dive,required,eq=*|url"` // "*" allows any origin

	DataGovAPIKey     string
	DataGovBaseURL    string        `validate:"required,url"`
	DataGovResourceID string        `validate:"required"`
	RequestTimeout    time.Duration `validate:"gt=0"`
	PageSize          int           `validate:"gte=1,lte=1000"`
	RateLimit         float64       `validate:"gte=0"` // requests per second, 0 is unlimited
	BreakerThreshold  int           `validate:"gte=0"` // 0 disables the circuit breaker
	BreakerCooldown   time.Duration `validate:"gt=0"`

	StateName    string `validate:"required"` // upstream filter value, e.g. HARYANA
	StateDisplay string `validate:"required"` // stored on regions, e.g. Haryana

	SyncEnabled      bool
	SyncCronSchedule string        `validate:"required"`
	SyncTimeout      time.Duration `validate:"gt=0"`
	BackfillDelay    time.Duration `validate:"gte=0"`

	MaxRetries     int           `validate:"gte=0,lte=10"`
	RetryBaseDelay time.Duration `validate:"gte=0"`
	RetryMaxDelay  time.Duration `validate:"gtefield=RetryBaseDelay"`
	RetryMaxJitter time.Duration `validate:"gte=0"`

	LogLevel  string `validate:"oneof=trace debug info warn error"`
	LogFormat string `validate:"oneof=json console"`
}

// LoadConfig reads configuration from environment variables (.env file)
func LoadConfig() (*Config, error) {
	// Load .env file. In production, env variables are often set directly.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),

		CORSAllowOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DataGovAPIKey:     getEnv("DATA_GOV_API_KEY", ""),
		DataGovBaseURL:    getEnv("DATA_GOV_API_BASE_URL", "https://api.data.gov.in"),
		DataGovResourceID: getEnv("DATA_GOV_RESOURCE_ID", "ee03643a-ee4c-48c2-ac30-9f2ff26ab722"),
		RequestTimeout:    getEnvDuration("DATA_GOV_REQUEST_TIMEOUT", 15*time.Second),
		PageSize:          getEnvInt("DATA_GOV_PAGE_SIZE", 100),
		RateLimit:         getEnvFloat("DATA_GOV_RATE_LIMIT", 5),
		BreakerThreshold:  getEnvInt("DATA_GOV_BREAKER_THRESHOLD", 3),
		BreakerCooldown:   getEnvDuration("DATA_GOV_BREAKER_COOLDOWN", time.Minute),

		StateName:    getEnv("SYNC_STATE_NAME", "HARYANA"),
		StateDisplay: getEnv("SYNC_STATE_DISPLAY", "Haryana"),

		SyncEnabled:      getEnvBool("SYNC_ENABLED", false),
		SyncCronSchedule: getEnv("SYNC_CRON_SCHEDULE", "0 2 * * *"), // 2 AM daily
		SyncTimeout:      getEnvDuration("SYNC_TIMEOUT", 5*time.Minute),
		BackfillDelay:    getEnvDuration("SYNC_BACKFILL_DELAY", 2*time.Second),

		MaxRetries:     getEnvInt("SYNC_MAX_RETRIES", 3),
		RetryBaseDelay: getEnvDuration("SYNC_RETRY_BASE_DELAY", time.Second),
		RetryMaxDelay:  getEnvDuration("SYNC_RETRY_MAX_DELAY", 10*time.Second),
		RetryMaxJitter: getEnvDuration("SYNC_RETRY_MAX_JITTER", time.Second),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints declared in the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Helper function to get env var or return default
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvDuration accepts Go duration strings ("1500ms", "2s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
