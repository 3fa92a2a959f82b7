package store

import "errors"

// ErrNotFound is returned when a row does not exist or, for belief updates,
// when the belief is inactive.
var ErrNotFound = errors.New("not found")
