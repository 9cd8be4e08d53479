package command

import "errors"

// Sentinel kinds for command errors.
var (
	ErrUsage        = errors.New("usage")
	ErrInput        = errors.New("cannot read input")
	ErrOutput       = errors.New("cannot write output")
	ErrOutputExists = errors.New("output exists")
	ErrConnect      = errors.New("cannot connect to database")
	ErrBatch        = errors.New("batch failed")
)
