package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/locvowork/export_generator/apigateway/internal/rowgen"
	"gopkg.in/yaml.v2"
)

// EnvConfig holds the process configuration.
type EnvConfig struct {
	APP_PORT         string
	LOG_FILE_PATH    string
	LOG_LEVEL        string
	SHUTDOWN_TIMEOUT time.Duration

	EXPORT_TOTAL_ROWS       int
	EXPORT_SHEET_COUNT      int
	EXPORT_WINDOW_SIZE      int
	EXPORT_WORKERS          int
	EXPORT_BUFFER_SIZE      int
	EXPORT_TIMESTAMP_SCOPE  string
	EXPORT_REMAINDER_POLICY string
	EXPORT_TMP_DIR          string
	EXPORT_PROFILE_PATH     string

	REFERENCE_DATASET_PATH string

	AUTH_ENABLED    bool
	AUTH_JWT_SECRET string
}

// DefaultEnvConfig is populated by LoadEnvConfig.
var DefaultEnvConfig = Defaults()

// Defaults returns the built-in configuration.
func Defaults() EnvConfig {
	return EnvConfig{
		APP_PORT:                "8080",
		LOG_LEVEL:               "info",
		SHUTDOWN_TIMEOUT:        30 * time.Second,
		EXPORT_TOTAL_ROWS:       100000,
		EXPORT_SHEET_COUNT:      5,
		EXPORT_WINDOW_SIZE:      100,
		EXPORT_WORKERS:          4,
		EXPORT_BUFFER_SIZE:      256,
		EXPORT_TIMESTAMP_SCOPE:  "sheet",
		EXPORT_REMAINDER_POLICY: string(rowgen.RemainderToLastSheet),
	}
}

// exportProfile is the YAML shape of EXPORT_PROFILE_PATH.
type exportProfile struct {
	Export struct {
		TotalRows       *int    `yaml:"total_rows"`
		SheetCount      *int    `yaml:"sheet_count"`
		WindowSize      *int    `yaml:"window_size"`
		Workers         *int    `yaml:"workers"`
		BufferSize      *int    `yaml:"buffer_size"`
		TimestampScope  *string `yaml:"timestamp_scope"`
		RemainderPolicy *string `yaml:"remainder_policy"`
	} `yaml:"export"`
}

// LoadEnvConfig reads .env (if present), the optional export profile and the
// process environment into DefaultEnvConfig.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := Load(os.LookupEnv)
	if err != nil {
		return err
	}
	DefaultEnvConfig = cfg
	return nil
}

// Load builds a validated EnvConfig from the given environment lookup.
func Load(lookup func(string) (string, bool)) (EnvConfig, error) {
	cfg := Defaults()

	if path, ok := lookup("EXPORT_PROFILE_PATH"); ok && path != "" {
		cfg.EXPORT_PROFILE_PATH = path
		if err := cfg.applyProfile(path); err != nil {
			return cfg, err
		}
	}

	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("APP_PORT", &cfg.APP_PORT)
	str("LOG_FILE_PATH", &cfg.LOG_FILE_PATH)
	str("LOG_LEVEL", &cfg.LOG_LEVEL)
	num("EXPORT_TOTAL_ROWS", &cfg.EXPORT_TOTAL_ROWS)
	num("EXPORT_SHEET_COUNT", &cfg.EXPORT_SHEET_COUNT)
	num("EXPORT_WINDOW_SIZE", &cfg.EXPORT_WINDOW_SIZE)
	num("EXPORT_WORKERS", &cfg.EXPORT_WORKERS)
	num("EXPORT_BUFFER_SIZE", &cfg.EXPORT_BUFFER_SIZE)
	str("EXPORT_TIMESTAMP_SCOPE", &cfg.EXPORT_TIMESTAMP_SCOPE)
	str("EXPORT_REMAINDER_POLICY", &cfg.EXPORT_REMAINDER_POLICY)
	str("EXPORT_TMP_DIR", &cfg.EXPORT_TMP_DIR)
	str("REFERENCE_DATASET_PATH", &cfg.REFERENCE_DATASET_PATH)
	str("AUTH_JWT_SECRET", &cfg.AUTH_JWT_SECRET)

	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
		} else {
			cfg.SHUTDOWN_TIMEOUT = d
		}
	}
	if v, ok := lookup("AUTH_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUTH_ENABLED: %w", err))
		} else {
			cfg.AUTH_ENABLED = b
		}
	}

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, cfg.Validate()
}

func (c *EnvConfig) applyProfile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read export profile: %w", err)
	}

	var p exportProfile
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return fmt.Errorf("failed to parse export profile %s: %w", path, err)
	}

	if p.Export.TotalRows != nil {
		c.EXPORT_TOTAL_ROWS = *p.Export.TotalRows
	}
	if p.Export.SheetCount != nil {
		c.EXPORT_SHEET_COUNT = *p.Export.SheetCount
	}
	if p.Export.WindowSize != nil {
		c.EXPORT_WINDOW_SIZE = *p.Export.WindowSize
	}
	if p.Export.Workers != nil {
		c.EXPORT_WORKERS = *p.Export.Workers
	}
	if p.Export.BufferSize != nil {
		c.EXPORT_BUFFER_SIZE = *p.Export.BufferSize
	}
	if p.Export.TimestampScope != nil {
		c.EXPORT_TIMESTAMP_SCOPE = *p.Export.TimestampScope
	}
	if p.Export.RemainderPolicy != nil {
		c.EXPORT_REMAINDER_POLICY = *p.Export.RemainderPolicy
	}
	return nil
}

// Validate checks the configuration for values the export cannot run with.
func (c EnvConfig) Validate() error {
	var errs []error

	if c.EXPORT_TOTAL_ROWS < 1 {
		errs = append(errs, fmt.Errorf("EXPORT_TOTAL_ROWS must be positive, got %d", c.EXPORT_TOTAL_ROWS))
	}
	if c.EXPORT_SHEET_COUNT < 1 {
		errs = append(errs, fmt.Errorf("EXPORT_SHEET_COUNT must be positive, got %d", c.EXPORT_SHEET_COUNT))
	}
	if c.EXPORT_WINDOW_SIZE < 1 {
		errs = append(errs, fmt.Errorf("EXPORT_WINDOW_SIZE must be positive, got %d", c.EXPORT_WINDOW_SIZE))
	}
	if c.EXPORT_WORKERS < 1 {
		errs = append(errs, fmt.Errorf("EXPORT_WORKERS must be positive, got %d", c.EXPORT_WORKERS))
	}
	if c.EXPORT_BUFFER_SIZE < 0 {
		errs = append(errs, fmt.Errorf("EXPORT_BUFFER_SIZE must not be negative, got %d", c.EXPORT_BUFFER_SIZE))
	}
	switch strings.ToLower(strings.TrimSpace(c.EXPORT_TIMESTAMP_SCOPE)) {
	case "sheet", "export", "":
	default:
		errs = append(errs, fmt.Errorf("EXPORT_TIMESTAMP_SCOPE must be sheet or export, got %q", c.EXPORT_TIMESTAMP_SCOPE))
	}
	if _, err := rowgen.ParseRemainderPolicy(c.EXPORT_REMAINDER_POLICY); err != nil {
		errs = append(errs, fmt.Errorf("EXPORT_REMAINDER_POLICY: %w", err))
	}
	if c.AUTH_ENABLED && c.AUTH_JWT_SECRET == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required when AUTH_ENABLED is true"))
	}
	if _, err := strconv.Atoi(c.APP_PORT); err != nil {
		errs = append(errs, fmt.Errorf("APP_PORT must be numeric, got %q", c.APP_PORT))
	}

	return errors.Join(errs...)
}
