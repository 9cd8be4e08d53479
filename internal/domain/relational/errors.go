package relational

import "errors"

// Mapping warnings. Neither stops a run.
var (
	// ErrDisplayNameConflict marks a repeated objective whose display name
	// differs from the first definition. The first definition is kept.
	ErrDisplayNameConflict = errors.New("conflicting display name")

	// ErrUnknownObjective marks entries that reference an objective with no
	// definition. Relational stores reject them on the foreign key.
	ErrUnknownObjective = errors.New("unknown objective")
)
