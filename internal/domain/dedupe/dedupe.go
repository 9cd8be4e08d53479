// Package dedupe tracks first-seen keys for order-preserving distinct
// projections.
package dedupe

// Deduper records keys and reports whether they were seen before.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not.
	SeenAndRecord(key string) bool

	// Keys returns recorded keys in first-seen order.
	Keys() []string

	Size() int
}

// Set is an unbounded Deduper that remembers insertion order. It is not safe
// for concurrent use; each pipeline run owns its own Set.
type Set struct {
	seen     map[string]struct{}
	order    []string
	capacity int
}

var _ Deduper = (*Set)(nil)

// NewSet creates an empty set.
func NewSet(opts ...Option) *Set {
	s := &Set{}
	for _, opt := range opts {
		opt(s)
	}
	s.seen = make(map[string]struct{}, s.capacity)
	s.order = make([]string, 0, s.capacity)
	return s
}

// SeenAndRecord reports whether key was already recorded and records it if not.
func (s *Set) SeenAndRecord(key string) bool {
	if _, ok := s.seen[key]; ok {
		return true
	}
	s.seen[key] = struct{}{}
	s.order = append(s.order, key)
	return false
}

// Contains reports whether key was recorded.
func (s *Set) Contains(key string) bool {
	_, ok := s.seen[key]
	return ok
}

// Keys returns recorded keys in first-seen order.
func (s *Set) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Size returns the number of distinct keys.
func (s *Set) Size() int { return len(s.order) }
