// Package config defines converter configuration and its loading.
//
// Conventions:
//   - New() returns a Config holding every default.
//   - Load layers a YAML file and NBTSCORE_ environment variables on top.
//   - Errors wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log records.
	LogFormat string `koanf:"log_format"`

	// Timestamp, when set, is the RFC 3339 time stamped on every stats row.
	Timestamp string `koanf:"timestamp"`

	// MetricsFile receives a Prometheus textfile dump after each run.
	MetricsFile string `koanf:"metrics_file"`

	// Workers bounds parallel conversions in batch mode; 0 means one per CPU.
	Workers int `koanf:"workers"`

	CSV      CSV      `koanf:"csv"`
	Database Database `koanf:"database"`
}

// CSV configures the CSV sink.
type CSV struct {
	// DisplayName adds the display_name column.
	DisplayName bool `koanf:"display_name"`

	// Delimiter is a single character; defaults to a comma.
	Delimiter string `koanf:"delimiter"`

	// Wide writes one row per player and one column per objective.
	Wide bool `koanf:"wide"`
}

// Database configures the SQL sink.
type Database struct {
	// URL is a PostgreSQL connection string.
	URL string `koanf:"url"`

	// MaxConns caps the pgx pool; 0 keeps the pgx default.
	MaxConns int32 `koanf:"max_conns"`

	// ConnectTimeout bounds establishing the first connection.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`

	// Transactional runs all inserts of a file in one transaction.
	Transactional bool `koanf:"transactional"`

	// InitSchema creates the tables before writing.
	InitSchema bool `koanf:"init_schema"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Workers:   0,
		CSV: CSV{
			DisplayName: true,
			Delimiter:   ",",
		},
		Database: Database{
			ConnectTimeout: 10 * time.Second,
		},
	}
}

// Validate checks field values. It does not require a database URL; see
// RequireDatabase.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Comma(); err != nil {
		return err
	}
	if _, err := c.TimestampValue(); err != nil {
		return err
	}
	if c.Database.MaxConns < 0 {
		return fmt.Errorf("%w: database.max_conns must not be negative", ErrInvalidConfig)
	}
	if c.Database.ConnectTimeout < 0 {
		return fmt.Errorf("%w: database.connect_timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// RequireDatabase reports whether the SQL sink can be configured.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("%w: database.url is required", ErrInvalidConfig)
	}
	return nil
}

// Comma returns the CSV delimiter as a rune.
func (c *Config) Comma() (rune, error) {
	d := c.CSV.Delimiter
	if d == "" {
		return ',', nil
	}
	if d == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(d)
	if size != len(d) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("%w: csv.delimiter %q", ErrInvalidConfig, d)
	}
	return r, nil
}

// TimestampValue parses Timestamp. The zero time means none was set.
func (c *Config) TimestampValue() (time.Time, error) {
	if c.Timestamp == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, c.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp: %w", ErrInvalidConfig, err)
	}
	return ts, nil
}
