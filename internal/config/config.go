package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultMaxUploadBytes = 25 << 20 // 25 MiB per request
	defaultWorkspaceTTL   = 30 * time.Minute
)

type Config struct {
	AppEnv        string
	Port          string
	SessionSecret string
	LogLevel      string
	LogFormat     string

	// MaxUploadBytes caps the multipart body of a single add request.
	MaxUploadBytes int64

	// WorkspaceTTL is how long an idle workspace survives before eviction.
	WorkspaceTTL time.Duration

	// AddDelay and FinalizeDelay give the UI time to show its busy states.
	// Both are presentation-only and default to zero.
	AddDelay      time.Duration
	FinalizeDelay time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	maxUpload, err := getEnvInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	if err != nil {
		return nil, err
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	cfg.MaxUploadBytes = maxUpload

	ttl, err := getEnvDuration("WORKSPACE_TTL", defaultWorkspaceTTL)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("WORKSPACE_TTL must be positive")
	}
	cfg.WorkspaceTTL = ttl

	if cfg.AddDelay, err = getEnvDuration("ADD_DELAY", 0); err != nil {
		return nil, err
	}
	if cfg.FinalizeDelay, err = getEnvDuration("FINALIZE_DELAY", 0); err != nil {
		return nil, err
	}
	if cfg.AddDelay < 0 || cfg.FinalizeDelay < 0 {
		return nil, fmt.Errorf("delays must not be negative")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 500ms or 30m: %w", key, err)
	}
	return d, nil
}
