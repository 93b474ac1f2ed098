package sampler

import "errors"

var (
	// ErrInitialization is returned when starting positions cannot be drawn
	// inside the sampling bounds.
	ErrInitialization = errors.New("sampler: cannot initialize walkers")
	// ErrConfig reports an unusable ensemble layout or option.
	ErrConfig = errors.New("sampler: invalid configuration")
	// ErrStoreNotEmpty is returned by Run when the backend already holds
	// iterations; use Resume to continue them.
	ErrStoreNotEmpty = errors.New("sampler: backing store is not empty")
)
