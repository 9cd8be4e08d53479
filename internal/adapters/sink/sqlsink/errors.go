package sqlsink

import "errors"

// Sentinel kinds for SQL sink failures.
var (
	// ErrReferentialViolation is returned when a stats row references a
	// player or objective the database does not hold. The run stops.
	ErrReferentialViolation = errors.New("referential violation")

	// ErrWrite wraps every other statement failure.
	ErrWrite = errors.New("sql write failed")
)
