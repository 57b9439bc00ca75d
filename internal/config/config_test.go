package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "jobdash")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JOBS_API_BASE_URL", "http://jobs.local/")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	for _, k := range []string{"APP_ENV", "JOBS_API_TIMEOUT_SECONDS", "SESSION_TTL_SECONDS", "SESSION_COOKIE", "REDIS_URL", "SWEEP_SPEC", "WS_PORT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.App.Environment != "development" {
		t.Fatalf("unexpected env %q", cfg.App.Environment)
	}
	if cfg.JobsAPI.BaseURL != "http://jobs.local" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.JobsAPI.BaseURL)
	}
	if cfg.JobsAPI.Timeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.JobsAPI.Timeout)
	}
	if cfg.Session.TTL != 24*time.Hour || cfg.Session.CookieName != "jobdash_sid" {
		t.Fatalf("unexpected session config %+v", cfg.Session)
	}
	if cfg.Redis.URL != "" || cfg.App.WSPort != "" {
		t.Fatalf("optional keys must stay empty")
	}
	if cfg.Schedule.SweepSpec != "@every 1m" {
		t.Fatalf("unexpected sweep spec %q", cfg.Schedule.SweepSpec)
	}
}

func TestLoad_MissingRequiredReportedTogether(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("APP_NAME", "")
	t.Setenv("JWT_ACCESS_SECRET", "")

	_, err := Load()
	if !errors.Is(err, errMissingRequiredEnv) {
		t.Fatalf("expected errMissingRequiredEnv, got %v", err)
	}
	if !strings.Contains(err.Error(), "APP_NAME") || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") {
		t.Fatalf("expected both keys named, got %v", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("SESSION_TTL_SECONDS", "soon")

	if _, err := Load(); !errors.Is(err, errInvalidEnv) {
		t.Fatalf("expected errInvalidEnv, got %v", err)
	}
}

func TestLoadAPI_OnlyNeedsBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_NAME", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JOBS_API_BASE_URL", "http://jobs.local")
	t.Setenv("JOBS_API_TIMEOUT_SECONDS", "3")

	cfg, err := LoadAPI()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.BaseURL != "http://jobs.local" || cfg.Timeout != 3*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
