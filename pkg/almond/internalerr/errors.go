package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNoParse      = errors.New("input does not match grammar")
	ErrUnknownUnit  = errors.New("unknown duration unit")
	ErrBadNumber    = errors.New("malformed numeric amount")
	ErrInvalidTime  = errors.New("time component out of range")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrPoolClosed   = errors.New("worker pool closed")
)
