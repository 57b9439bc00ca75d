package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	JobsAPI  JobsAPIConfig
	Auth     AuthConfig
	Session  SessionConfig
	Redis    RedisConfig
	Schedule ScheduleConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	WSPort      string
}

type JobsAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type SessionConfig struct {
	TTL        time.Duration
	CookieName string
}

type RedisConfig struct {
	URL string
}

type ScheduleConfig struct {
	SweepSpec string
}

const (
	defaultEnvironment   = "development"
	defaultAPITimeout    = 10 * time.Second
	defaultSessionTTL    = 24 * time.Hour
	defaultSessionCookie = "jobdash_sid"
	defaultSweepSpec     = "@every 1m"
	envFile              = ".env"
)

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

type reader struct {
	missing []string
	invalid []string
}

func (r *reader) req(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		r.missing = append(r.missing, key)
	}
	return v
}

func (r *reader) opt(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func (r *reader) seconds(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		r.invalid = append(r.invalid, key)
		return def
	}
	return time.Duration(n) * time.Second
}

func (r *reader) err() error {
	if len(r.missing) > 0 {
		return fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(r.missing, ", "))
	}
	if len(r.invalid) > 0 {
		return fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(r.invalid, ", "))
	}
	return nil
}

// loadDotEnv reads .env when present. Variables already set in the
// environment win.
func loadDotEnv() error {
	if _, err := os.Stat(envFile); err != nil {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	return nil
}

func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	r := &reader{}
	cfg := Config{}

	cfg.App = AppConfig{
		AppName:     r.req("APP_NAME"),
		Environment: r.opt("APP_ENV", defaultEnvironment),
		HTTPPort:    r.req("HTTP_PORT"),
		WSPort:      r.opt("WS_PORT", ""),
	}

	cfg.JobsAPI = readJobsAPI(r)

	cfg.Auth = AuthConfig{
		AccessSecret: r.req("JWT_ACCESS_SECRET"),
	}

	cfg.Session = SessionConfig{
		TTL:        r.seconds("SESSION_TTL_SECONDS", defaultSessionTTL),
		CookieName: r.opt("SESSION_COOKIE", defaultSessionCookie),
	}

	cfg.Redis = RedisConfig{
		URL: r.opt("REDIS_URL", ""),
	}

	cfg.Schedule = ScheduleConfig{
		SweepSpec: r.opt("SWEEP_SPEC", defaultSweepSpec),
	}

	if err := r.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadAPI reads only what a client of the jobs backend needs.
func LoadAPI() (JobsAPIConfig, error) {
	if err := loadDotEnv(); err != nil {
		return JobsAPIConfig{}, err
	}

	r := &reader{}
	cfg := readJobsAPI(r)
	if err := r.err(); err != nil {
		return JobsAPIConfig{}, err
	}
	return cfg, nil
}

func readJobsAPI(r *reader) JobsAPIConfig {
	return JobsAPIConfig{
		BaseURL: strings.TrimRight(r.req("JOBS_API_BASE_URL"), "/"),
		Timeout: r.seconds("JOBS_API_TIMEOUT_SECONDS", defaultAPITimeout),
	}
}
