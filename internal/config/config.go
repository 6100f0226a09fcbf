package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

func init() {
	// Auto-load .env file if present (don't override existing env vars)
	loadDotEnv(".env")
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		// Remove surrounding quotes
		if len(val) >= 2 && ((val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'')) {
			val = val[1 : len(val)-1]
		}
		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

const (
	defaultPort          = "8080"
	defaultEnvironment   = "development"
	defaultCalendarID    = "primary"
	defaultTimezone      = "America/Sao_Paulo"
	defaultPollInterval  = 10 * time.Second
	defaultOrgDomain     = "cardapioweb.com"
	defaultMigrationsDir = "migrations"
)

type CalendarConfig struct {
	ID           string
	ClientID     string
	ClientSecret string
	RefreshToken string
	BaseURL      string
	TokenURL     string
	Timezone     string
}

type Config struct {
	Port          string
	DatabaseURL   string
	Environment   string
	MigrationsDir string
	OrgDomain     string
	PollInterval  time.Duration
	PollCron      string
	Calendar      CalendarConfig
}

func Load() (Config, error) {
	cfg := Config{
		Port:        firstNonEmpty(strings.TrimSpace(os.Getenv("PORT")), defaultPort),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Environment: resolveEnvironment(),
		MigrationsDir: firstNonEmpty(
			strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
			defaultMigrationsDir,
		),
		OrgDomain: firstNonEmpty(
			strings.TrimSpace(os.Getenv("ORG_DOMAIN")),
			defaultOrgDomain,
		),
		PollCron: strings.TrimSpace(os.Getenv("POLL_CRON")),
		Calendar: CalendarConfig{
			ID: firstNonEmpty(
				strings.TrimSpace(os.Getenv("CALENDAR_ID")),
				defaultCalendarID,
			),
			ClientID:     strings.TrimSpace(os.Getenv("CALENDAR_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("CALENDAR_CLIENT_SECRET")),
			RefreshToken: strings.TrimSpace(os.Getenv("CALENDAR_REFRESH_TOKEN")),
			BaseURL:      strings.TrimSpace(os.Getenv("CALENDAR_API_BASE_URL")),
			TokenURL:     strings.TrimSpace(os.Getenv("CALENDAR_TOKEN_URL")),
			Timezone: firstNonEmpty(
				strings.TrimSpace(os.Getenv("CALENDAR_TIMEZONE")),
				defaultTimezone,
			),
		},
	}

	pollInterval, err := parseDuration("POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.PollInterval = pollInterval

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be greater than zero")
	}

	if c.Environment != "development" {
		if c.Calendar.ClientID == "" {
			return fmt.Errorf("CALENDAR_CLIENT_ID is required outside development")
		}
		if c.Calendar.ClientSecret == "" {
			return fmt.Errorf("CALENDAR_CLIENT_SECRET is required outside development")
		}
		if c.Calendar.RefreshToken == "" {
			return fmt.Errorf("CALENDAR_REFRESH_TOKEN is required outside development")
		}
	}

	return nil
}

func resolveEnvironment() string {
	for _, key := range []string{"APP_ENV", "ENVIRONMENT", "GO_ENV"} {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return strings.ToLower(value)
		}
	}
	return defaultEnvironment
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return value, nil
}
