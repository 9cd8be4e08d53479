package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoSink = errors.New("no sink configured")
)
