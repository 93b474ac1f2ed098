package chain

import "context"

// Backend persists a chain one iteration at a time. Implementations are
// written by a single coordinating goroutine.
type Backend interface {
	// Init fixes the ensemble layout. On a non-empty store the layout must
	// match what was recorded, which is how a run resumes.
	Init(ctx context.Context, walkers, dim int) error
	// Append stores one complete iteration atomically.
	Append(ctx context.Context, s Step) error
	// Len returns the number of complete iterations stored.
	Len(ctx context.Context) (int, error)
	// Last returns the most recent iteration.
	Last(ctx context.Context) (Step, error)
	// Load reads the whole chain.
	Load(ctx context.Context) (*Chain, error)
	Close() error
}
