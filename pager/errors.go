package pager

import "errors"

// ErrTableFull is returned when an operation would need a page number
// at or beyond TableMaxPages. There is no eviction, so this is a hard
// capacity ceiling.
var ErrTableFull = errors.New("Error: Table full.")
