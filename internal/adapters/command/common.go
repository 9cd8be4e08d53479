// Package command builds the nbt_to_csv and nbt_to_sql command line
// applications.
package command

import (
	"context"
	"fmt"
	"os"

	service "github.com/okian/nbtscore/internal/app"
	"github.com/okian/nbtscore/internal/config"
	"github.com/okian/nbtscore/pkg/logger"
	"github.com/okian/nbtscore/pkg/metrics"
	"github.com/urfave/cli/v2"
)

// Flag names shared by both commands.
const (
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
	flagTimestamp   = "timestamp"
	flagMetricsFile = "metrics-file"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagLogLevel, Usage: "log verbosity: debug, info, warn or error"},
		&cli.StringFlag{Name: flagLogFormat, Usage: "log record format: text or json"},
		&cli.StringFlag{Name: flagTimestamp, Aliases: []string{"t"}, Usage: "RFC 3339 `TIME` stamped on every score"},
		&cli.StringFlag{Name: flagMetricsFile, Usage: "write Prometheus metrics to `FILE` after the run"},
	}
}

// setup loads the configuration from path, applies flags set on the command
// line and initializes logging on the app's error writer.
func setup(c *cli.Context, path string, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(c.Context, path)
	if err != nil {
		return nil, err
	}
	if c.IsSet(flagLogLevel) {
		cfg.LogLevel = c.String(flagLogLevel)
	}
	if c.IsSet(flagLogFormat) {
		cfg.LogFormat = c.String(flagLogFormat)
	}
	if c.IsSet(flagTimestamp) {
		cfg.Timestamp = c.String(flagTimestamp)
	}
	if c.IsSet(flagMetricsFile) {
		cfg.MetricsFile = c.String(flagMetricsFile)
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	err = logger.InitWith(
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithLevel(cfg.LogLevel),
		logger.WithWriter(c.App.ErrWriter),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return cfg, nil
}

func newService(cfg *config.Config) *service.Service {
	ts, _ := cfg.TimestampValue() // validated in setup
	return service.New(
		service.WithLogger(logger.Named("convert")),
		service.WithTimestamp(ts),
	)
}

// exportMetrics writes the textfile dump when one is configured. A failure
// is logged and does not change the run's outcome.
func exportMetrics(ctx context.Context, cfg *config.Config) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Get().Warn(ctx, "metrics export failed",
			logger.String("path", cfg.MetricsFile),
			logger.Error(err),
		)
	}
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	return data, nil
}
