package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/s1natex/taskboard-GO/internal/board"
	"github.com/s1natex/taskboard-GO/internal/mirror"
	"github.com/s1natex/taskboard-GO/internal/tasks"
	"github.com/s1natex/taskboard-GO/internal/telemetry"
)

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	Addr     string
	LogLevel string

	StoreDriver string
	StorePath   string
	StorageKey  string
	OwnerID     string

	// RemoteBaseURL empty disables the mirror.
	RemoteBaseURL string
	RemoteAPIKey  string
	LoadSource    board.LoadSource
	Location      *time.Location

	RateLimitRPS   float64
	RateLimitBurst int

	TracingExporter string
	OTLPEndpoint    string
}

// Load reads an optional .env file (variables already set win) and then
// builds the config from the environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Addr:            get("ADDR", ":8080"),
		LogLevel:        get("LOG_LEVEL", "info"),
		StoreDriver:     strings.ToLower(get("STORE_DRIVER", StoreSQLite)),
		StorePath:       get("STORE_PATH", "data/taskboard.db"),
		StorageKey:      get("STORAGE_KEY", tasks.DefaultStorageKey),
		OwnerID:         get("OWNER_ID", "user123"),
		RemoteBaseURL:   get("REMOTE_BASE_URL", mirror.DefaultBaseURL),
		RemoteAPIKey:    getenv("REMOTE_API_KEY"),
		TracingExporter: strings.ToLower(get("TRACING_EXPORTER", telemetry.ExporterNone)),
		OTLPEndpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	// REMOTE_BASE_URL=off disables the mirror
	if strings.EqualFold(cfg.RemoteBaseURL, "off") {
		cfg.RemoteBaseURL = ""
	}

	var errs []error

	switch cfg.StoreDriver {
	case StoreSQLite, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver))
	}

	src, err := board.ParseLoadSource(getenv("LOAD_SOURCE"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOAD_SOURCE: %w", err))
	}
	cfg.LoadSource = src

	cfg.Location = time.Local
	if tz := get("TIMEZONE", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
		} else {
			cfg.Location = loc
		}
	}

	if cfg.RateLimitRPS, err = strconv.ParseFloat(get("RATE_LIMIT_RPS", "0"), 64); err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS: %w", err))
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(get("RATE_LIMIT_BURST", "5")); err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST: %w", err))
	}

	switch cfg.TracingExporter {
	case telemetry.ExporterNone, telemetry.ExporterStdout, telemetry.ExporterOTLP:
	default:
		errs = append(errs, fmt.Errorf("TRACING_EXPORTER: unknown exporter %q", cfg.TracingExporter))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}
