package nbt

import "errors"

// Sentinel kinds for decode errors. Every error returned by Decode wraps
// exactly one of these, so callers can branch with errors.Is.
var (
	ErrTruncatedInput  = errors.New("truncated input")
	ErrMalformedFormat = errors.New("malformed nbt")
	ErrInvalidEncoding = errors.New("invalid string encoding")
	ErrUnexpectedEnd   = errors.New("unexpected end tag")
)
