package store

import "errors"

// ErrIndex reports corruption or I/O failure of the local index.
// Callers should use errors.Is(err, ErrIndex).
var ErrIndex = errors.New("index error")

// ErrNotOpen reports a call against a Store that failed to open or was
// already closed.
var ErrNotOpen = errors.New("store is not open")

// ErrInvalidArgument reports a caller-supplied value that violates an
// invariant (negative size, malformed sha256, etc).
var ErrInvalidArgument = errors.New("invalid argument")
