// Package scoreboard extracts objectives and player scores from a decoded
// scoreboard.dat tag tree.
package scoreboard

import "time"

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithClock sets the clock used to stamp entries with the extraction time.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithTimestamp stamps every entry with ts and marks it explicit, so sinks
// persist it instead of letting the store default the time.
func WithTimestamp(ts time.Time) Option {
	return func(e *Extractor) {
		if !ts.IsZero() {
			e.timestamp = ts
		}
	}
}
