package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET_KEY is required")

type Config struct {
	Env                 string        `json:"env"`
	ServerPort          int           `json:"server_port"`
	JWTSecretKey        string        `json:"-"`
	JWTIssuer           string        `json:"jwt_issuer"`
	AccessTokenTTL      time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL     time.Duration `json:"refresh_token_ttl"`
	DefaultRateLimit    int           `json:"default_rate_limit"`
	GlobalRateLimit     int           `json:"global_rate_limit"`
	AuthRateLimit       int           `json:"auth_rate_limit"`
	MaxRequestBodyBytes int64         `json:"max_request_body_bytes"`
	BcryptCost          int           `json:"bcrypt_cost"`
	Revocation          RevocationConfig
	Sweep               SweepConfig
}

// RevocationConfig selects and tunes the access-token blacklist backend
type RevocationConfig struct {
	Backend       string        `json:"backend"`
	LookupTimeout time.Duration `json:"lookup_timeout"`
	FailClosed    bool          `json:"fail_closed"`
	// Broadcast syncs memory backends of several instances over redis pub/sub
	Broadcast     bool          `json:"broadcast"`
}

// SweepConfig drives the expired refresh-token cleanup worker
type SweepConfig struct {
	Interval    time.Duration `json:"interval"`
	BatchSize   int           `json:"batch_size"`
	WorkerCount int           `json:"worker_count"`
	Archive     bool          `json:"archive"`
	MetricsAddr string        `json:"metrics_addr"`
}

// EventWorkerConfig drives the security event indexer
type EventWorkerConfig struct {
	WorkerCount  int           `json:"worker_count"`
	PollInterval time.Duration `json:"poll_interval"`
	MetricsAddr  string        `json:"metrics_addr"`
}

func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Interval:    getEnvDurationWithDefault("SWEEP_INTERVAL", 1*time.Hour),
		BatchSize:   getEnvIntWithDefault("SWEEP_BATCH_SIZE", 500),
		WorkerCount: getEnvIntWithDefault("SWEEP_WORKER_COUNT", 1),
		Archive:     getEnvBoolWithDefault("SWEEP_ARCHIVE", false),
		MetricsAddr: getEnvWithDefault("SWEEP_METRICS_ADDR", ":9101"),
	}
}

func DefaultEventWorkerConfig() EventWorkerConfig {
	return EventWorkerConfig{
		WorkerCount:  getEnvIntWithDefault("EVENT_WORKER_COUNT", 1),
		PollInterval: getEnvDurationWithDefault("EVENT_WORKER_POLL_INTERVAL", 5*time.Second),
		MetricsAddr:  getEnvWithDefault("EVENT_WORKER_METRICS_ADDR", ":9102"),
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                 getEnvWithDefault("APP_ENV", "development"),
		ServerPort:          getEnvIntWithDefault("SERVER_PORT", 10000),
		JWTSecretKey:        os.Getenv("JWT_SECRET_KEY"),
		JWTIssuer:           getEnvWithDefault("JWT_ISSUER", "tenant-auth-api"),
		AccessTokenTTL:      getEnvDurationWithDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:     getEnvDurationWithDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		DefaultRateLimit:    getEnvIntWithDefault("DEFAULT_RATE_LIMIT", 1000), // per tenant per minute
		GlobalRateLimit:     getEnvIntWithDefault("GLOBAL_RATE_LIMIT", 10000), // per IP per minute
		AuthRateLimit:       getEnvIntWithDefault("AUTH_RATE_LIMIT", 30),      // per IP per minute on /auth
		MaxRequestBodyBytes: int64(getEnvIntWithDefault("MAX_REQUEST_BODY_BYTES", 1<<20)),
		BcryptCost:          getEnvIntWithDefault("BCRYPT_COST", 12),
		Revocation: RevocationConfig{
			Backend:       strings.ToLower(getEnvWithDefault("REVOCATION_BACKEND", "redis")),
			LookupTimeout: getEnvDurationWithDefault("REVOCATION_LOOKUP_TIMEOUT", 250*time.Millisecond),
			FailClosed:    getEnvBoolWithDefault("REVOCATION_FAIL_CLOSED", false),
			Broadcast:     getEnvBoolWithDefault("REVOCATION_BROADCAST", false),
		},
		Sweep: DefaultSweepConfig(),
	}

	if cfg.JWTSecretKey == "" {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationWithDefault returns environment variable as duration or default if not set
func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
