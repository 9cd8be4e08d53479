package csvsink

// Option applies a configuration option to the Sink.
type Option func(*Sink)

// WithDisplayName toggles the trailing display_name column.
func WithDisplayName(enabled bool) Option {
	return func(s *Sink) {
		s.displayName = enabled
	}
}

// WithComma sets the field delimiter. Invalid delimiters are ignored.
func WithComma(r rune) Option {
	return func(s *Sink) {
		if validDelim(r) {
			s.comma = r
		}
	}
}

// WithWide switches to one row per player and one column per objective.
// Players and objectives are sorted by name, headers are display names and
// a missing score renders as 0. When a player has several scores for the
// same objective the first one wins.
func WithWide(enabled bool) Option {
	return func(s *Sink) {
		s.wide = enabled
	}
}
