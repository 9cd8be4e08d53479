package csvsink

import "errors"

// ErrWrite wraps failures of the underlying writer.
var ErrWrite = errors.New("csv write failed")
