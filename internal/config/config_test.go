package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Server.Addr != "localhost:5001" {
		t.Errorf("Expected default addr localhost:5001, got %s", cfg.Server.Addr)
	}
	if cfg.Ledger.CompanyMembershipID != "2025-002" {
		t.Errorf("Expected default company membership ID 2025-002, got %s", cfg.Ledger.CompanyMembershipID)
	}
	if cfg.Ledger.SubtractWithdrawals {
		t.Error("Expected withdrawals not to be subtracted by default")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("Expected 2 default CORS origins, got %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.TTL != 10*time.Minute {
		t.Errorf("Unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.Scheduler.BalanceSweep != "" {
		t.Errorf("Expected balance sweep disabled by default, got %q", cfg.Scheduler.BalanceSweep)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("DB_PATH", "/tmp/ledger.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example,https://c.example")
	t.Setenv("LOG_FORMAT", "Console")
	t.Setenv("LEDGER_COMPANY_MEMBERSHIP_ID", "2030-001")
	t.Setenv("LEDGER_SUBTRACT_WITHDRAWALS", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_TTL", "30s")
	t.Setenv("SCHEDULER_BALANCE_SWEEP", "0 2 * * *")
	t.Setenv("INTERNAL_API_KEY", "secret")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("Expected addr 0.0.0.0:8080, got %s", cfg.Server.Addr)
	}
	if cfg.Database.Path != "/tmp/ledger.db" {
		t.Errorf("Expected db path /tmp/ledger.db, got %s", cfg.Database.Path)
	}
	if len(cfg.CORS.AllowedOrigins) != 3 {
		t.Errorf("Expected 3 CORS origins, got %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("Expected normalized log format console, got %s", cfg.Log.Format)
	}
	if cfg.Ledger.CompanyMembershipID != "2030-001" || !cfg.Ledger.SubtractWithdrawals {
		t.Errorf("Unexpected ledger config: %+v", cfg.Ledger)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.TTL != 30*time.Second {
		t.Errorf("Unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Scheduler.BalanceSweep != "0 2 * * *" {
		t.Errorf("Unexpected sweep spec %q", cfg.Scheduler.BalanceSweep)
	}
	if cfg.Internal.APIKey != "secret" || cfg.RateLimit.PerMinute != 60 {
		t.Errorf("Unexpected internal/rate limit config: %+v %+v", cfg.Internal, cfg.RateLimit)
	}
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	if _, err := Load(); err == nil {
		t.Error("Expected error for unsupported log format")
	}
}
