// Package dedupe tracks first-seen keys for order-preserving distinct
// projections.
package dedupe

// Option applies a configuration option to a Set.
type Option func(*Set)

// WithCapacity pre-sizes the set for n keys.
func WithCapacity(n int) Option {
	return func(s *Set) {
		if n > 0 {
			s.capacity = n
		}
	}
}
