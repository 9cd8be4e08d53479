package sqlsink

import "github.com/okian/nbtscore/pkg/logger"

// Option applies a configuration option to the Sink.
type Option func(*Sink)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Sink) {
		if l != nil {
			s.log = l
		}
	}
}

// WithName overrides the name reported in logs and metrics.
func WithName(name string) Option {
	return func(s *Sink) {
		if name != "" {
			s.name = name
		}
	}
}
