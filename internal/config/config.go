package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

const defaultJWTSecret = "change-me-teamconstructor-jwt-secret"

// Config holds every runtime knob of the server and the CLI.
type Config struct {
	Port           string   `validate:"required,numeric"`
	GinMode        string   `validate:"oneof=debug release test"`
	DataDir        string   `validate:"required"`
	AllowedOrigins []string `validate:"dive,required"`

	RedisAddr          string
	RedisPassword      string
	RedisDB            int `validate:"gte=0"`
	RateLimitPerMinute int `validate:"gt=0"`

	CacheTTL       time.Duration `validate:"gte=0"`
	RequestTimeout time.Duration `validate:"gt=0"`

	JWTSecret     string `validate:"required,min=16"`
	AdminPassword string
	TokenTTL      time.Duration `validate:"gt=0"`
	RetentionDays int           `validate:"gte=0"`

	TestThreshold float64 `validate:"gte=0"`
	Diff          float64 `validate:"gte=0"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "release"),
		DataDir:        getEnvOrDefault("DATA_DIR", "./data"),
		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", defaultJWTSecret),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = intEnv("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}
	if cfg.RetentionDays, err = intEnv("RETENTION_DAYS", 365); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.TestThreshold, err = floatEnv("TEST_THRESHOLD", psychology.TestThreshold); err != nil {
		return nil, err
	}
	if cfg.Diff, err = floatEnv("PSYCHO_DIFF", psychology.DefaultDiff); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// AdminEnabled reports whether the admin endpoints can issue tokens.
func (c *Config) AdminEnabled() bool {
	return c.AdminPassword != ""
}

// UsesDefaultSecret is true when JWT_SECRET was left unset.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// Retention is the age after which stored results are purged. Zero disables purging.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func floatEnv(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
