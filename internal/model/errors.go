package model

import "errors"

// ErrNotFound is returned when a symbol is not part of the instrument set.
// It is a normal, non-fatal result; callers surface it together with the
// set of valid symbols.
var ErrNotFound = errors.New("symbol not found")
