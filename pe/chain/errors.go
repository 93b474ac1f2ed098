package chain

import "errors"

var (
	// ErrPersistence wraps every failure to read or write a backing store.
	ErrPersistence = errors.New("chain: persistence failure")
	// ErrShape reports a step or store whose walker/dimension layout
	// disagrees with the chain it is combined with.
	ErrShape = errors.New("chain: shape mismatch")
)
