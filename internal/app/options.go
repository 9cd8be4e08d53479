package service

import (
	"time"

	"github.com/okian/nbtscore/pkg/logger"
	"github.com/okian/nbtscore/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used to stamp entries when no explicit
// timestamp is configured.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimestamp stamps every entry with ts. Sinks persist explicit
// timestamps; without one the SQL store defaults the time column.
func WithTimestamp(ts time.Time) Option {
	return func(s *Service) {
		s.timestamp = ts
	}
}

// WithMetrics records run metrics on m instead of the process-wide manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}
