package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Database  DatabaseConfig  `envconfig:"DB"`
	CORS      CORSConfig      `envconfig:"CORS"`
	Log       LogConfig       `envconfig:"LOG"`
	Ledger    LedgerConfig    `envconfig:"LEDGER"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Scheduler SchedulerConfig `envconfig:"SCHEDULER"`
	Internal  InternalConfig  `envconfig:"INTERNAL"`
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"5001"`
	Host string `envconfig:"HOST" default:"localhost"`
	Addr string `ignored:"true"` // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string `envconfig:"PATH" default:"./data/society_ledger.db"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost"`
}

// LogConfig selects the log level and output format ("json" or "console").
type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// LedgerConfig holds the configurable accounting rules.
type LedgerConfig struct {
	CompanyMembershipID string `envconfig:"COMPANY_MEMBERSHIP_ID" default:"2025-002"`
	SubtractWithdrawals bool   `envconfig:"SUBTRACT_WITHDRAWALS" default:"false"`
}

// RedisConfig configures the optional share price cache. An empty Addr
// disables it.
type RedisConfig struct {
	Addr string        `envconfig:"ADDR"`
	TTL  time.Duration `envconfig:"TTL" default:"10m"`
}

// SchedulerConfig holds cron specs for background jobs. Empty disables a job.
type SchedulerConfig struct {
	BalanceSweep string `envconfig:"BALANCE_SWEEP"`
}

// InternalConfig protects administrative endpoints.
type InternalConfig struct {
	APIKey string `envconfig:"API_KEY"`
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	PerMinute int `envconfig:"PER_MINUTE" default:"300"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "json", "console":
		cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: expected json or console", cfg.Log.Format)
	}
	if cfg.Ledger.CompanyMembershipID == "" {
		return nil, fmt.Errorf("LEDGER_COMPANY_MEMBERSHIP_ID must not be empty")
	}
	if cfg.RateLimit.PerMinute < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}

	cfg.Server.Addr = net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)

	return &cfg, nil
}
