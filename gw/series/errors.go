package series

import "errors"

var (
	// ErrEmpty is returned when an operation selects no samples.
	ErrEmpty = errors.New("series: empty selection")

	// ErrMismatch is returned when two series have different grids.
	ErrMismatch = errors.New("series: grid mismatch")
)
