package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_MissingJWTSecretIsFatal(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("Load without secret: got %v, want ErrMissingJWTSecret", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Auth.SessionTTL() != 7*24*time.Hour {
		t.Errorf("session TTL = %v, want 7 days", cfg.Auth.SessionTTL())
	}
	if cfg.App.Production() {
		t.Error("default env reported as production")
	}
	if cfg.RateLimit.LoginMax != 5 || cfg.RateLimit.CreateUserMax != 3 {
		t.Errorf("rate limit defaults = %+v", cfg.RateLimit)
	}
	if cfg.RateLimit.Window() != time.Minute {
		t.Errorf("rate limit window = %v, want 1m", cfg.RateLimit.Window())
	}
	if cfg.RateLimit.Backend != "memory" {
		t.Errorf("rate limit backend = %q, want memory", cfg.RateLimit.Backend)
	}
}

func TestLoad_ProductionFlag(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.App.Production() {
		t.Error("APP_ENV=production not reported as production")
	}
}
