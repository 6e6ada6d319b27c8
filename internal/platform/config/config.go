package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	LeaveAtomicAuto = "auto"
	LeaveAtomicOff  = "off"
)

type Config struct {
	Port                 string
	Environment          string
	LogLevel             string
	StoreDriver          string
	DatabaseURL          string
	SQLitePath           string
	RunMigrations        bool
	RunSeed              bool
	RedisAddr            string
	RedisUsername        string
	RedisPassword        string
	RedisDB              int
	PolicyCacheTTL       time.Duration
	PolicyReloadInterval time.Duration
	LeaveAtomicMutations string
	JWTSecret            string
	JobsQueueSize        int
	JobsWorkers          int
	EmailFrom            string
	EmailEnabled         bool
	SMTPHost             string
	SMTPPort             int
	SMTPUser             string
	SMTPPassword         string
	SMTPUseTLS           bool
	DefaultLocale        string
	CORSAllowedOrigins   []string
	MaxBodyBytes         int64
	RateLimitPerMinute   int
	MetricsEnabled       bool

	// Policy values used until the policy store has been read.
	DefaultOvertimeThresholdHours float64
	DefaultLunchMinutes           int
	DefaultDinnerThresholdHours   float64
	DefaultNightStart             string
	DefaultNightEnd               string
	LeaveMaxBalanceHours          float64
}

// Load reads an optional .env file, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn(".env not loaded", "err", err)
	}

	return Config{
		Port:                          getEnv("PORT", "8080"),
		Environment:                   getEnv("ENVIRONMENT", "development"),
		LogLevel:                      getEnv("LOG_LEVEL", "info"),
		StoreDriver:                   strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:                   getEnv("DATABASE_URL", ""),
		SQLitePath:                    getEnv("SQLITE_PATH", "hrportal.db"),
		RunMigrations:                 getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:                       getEnvBool("RUN_SEED", true),
		RedisAddr:                     getEnv("REDIS_ADDR", ""),
		RedisUsername:                 getEnv("REDIS_USERNAME", ""),
		RedisPassword:                 getEnv("REDIS_PASSWORD", ""),
		RedisDB:                       getEnvInt("REDIS_DB", 0),
		PolicyCacheTTL:                getEnvDuration("POLICY_CACHE_TTL", 5*time.Minute),
		PolicyReloadInterval:          getEnvDuration("POLICY_RELOAD_INTERVAL", 5*time.Minute),
		LeaveAtomicMutations:          strings.ToLower(getEnv("LEAVE_ATOMIC_MUTATIONS", LeaveAtomicAuto)),
		JWTSecret:                     getEnv("JWT_SECRET", ""),
		JobsQueueSize:                 getEnvInt("JOBS_QUEUE_SIZE", 128),
		JobsWorkers:                   getEnvInt("JOBS_WORKERS", 2),
		EmailFrom:                     getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:                  getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:                      getEnv("SMTP_HOST", ""),
		SMTPPort:                      getEnvInt("SMTP_PORT", 587),
		SMTPUser:                      getEnv("SMTP_USER", ""),
		SMTPPassword:                  getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:                    getEnvBool("SMTP_USE_TLS", true),
		DefaultLocale:                 getEnv("DEFAULT_LOCALE", "en"),
		CORSAllowedOrigins:            getEnvList("CORS_ALLOWED_ORIGINS"),
		MaxBodyBytes:                  int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:            getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		MetricsEnabled:                getEnvBool("METRICS_ENABLED", true),
		DefaultOvertimeThresholdHours: getEnvFloat("DEFAULT_OVERTIME_THRESHOLD_HOURS", 8),
		DefaultLunchMinutes:           getEnvInt("DEFAULT_LUNCH_MINUTES", 60),
		DefaultDinnerThresholdHours:   getEnvFloat("DEFAULT_DINNER_THRESHOLD_HOURS", 8),
		DefaultNightStart:             getEnv("DEFAULT_NIGHT_START", "22:00"),
		DefaultNightEnd:               getEnv("DEFAULT_NIGHT_END", "06:00"),
		LeaveMaxBalanceHours:          getEnvFloat("LEAVE_MAX_BALANCE_HOURS", 0),
	}
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// SlogLevel maps LOG_LEVEL onto a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or sqlite")
	}
	if c.LeaveAtomicMutations != LeaveAtomicAuto && c.LeaveAtomicMutations != LeaveAtomicOff {
		return fmt.Errorf("LEAVE_ATOMIC_MUTATIONS must be auto or off")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.JobsQueueSize <= 0 || c.JobsWorkers <= 0 {
		return fmt.Errorf("JOBS_QUEUE_SIZE and JOBS_WORKERS must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.DefaultOvertimeThresholdHours <= 0 || c.DefaultDinnerThresholdHours <= 0 {
		return fmt.Errorf("default overtime and dinner thresholds must be positive")
	}
	if c.LeaveMaxBalanceHours < 0 {
		return fmt.Errorf("LEAVE_MAX_BALANCE_HOURS must not be negative")
	}
	if _, err := ClockMinute(c.DefaultNightStart); err != nil {
		return fmt.Errorf("DEFAULT_NIGHT_START: %w", err)
	}
	if _, err := ClockMinute(c.DefaultNightEnd); err != nil {
		return fmt.Errorf("DEFAULT_NIGHT_END: %w", err)
	}
	return nil
}

// ClockMinute parses an HH:MM value into minutes after midnight.
func ClockMinute(value string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}
