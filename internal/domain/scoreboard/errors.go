package scoreboard

import "errors"

// Sentinel kinds for extraction errors.
var (
	// ErrSchemaMismatch is fatal: data or data.PlayerScores is absent or has
	// the wrong tag type.
	ErrSchemaMismatch = errors.New("scoreboard schema mismatch")

	// ErrMissingField marks a record that was dropped because a required
	// field was absent or mistyped. Extraction continues.
	ErrMissingField = errors.New("missing field")

	// ErrNoObjectives marks a file whose Objectives list is absent or
	// unusable. Extraction continues with zero objectives.
	ErrNoObjectives = errors.New("objectives unavailable")
)
