package chain

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process [Backend].
type Memory struct {
	mu    sync.Mutex
	chain *Chain
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Init(_ context.Context, walkers, dim int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chain != nil {
		if m.chain.walkers != walkers || m.chain.dim != dim {
			return fmt.Errorf("%w: store holds %dx%d, want %dx%d", ErrShape, m.chain.walkers, m.chain.dim, walkers, dim)
		}
		return nil
	}
	c, err := New(walkers, dim)
	if err != nil {
		return err
	}
	m.chain = c
	return nil
}

func (m *Memory) Append(_ context.Context, s Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chain == nil {
		return fmt.Errorf("%w: append before init", ErrPersistence)
	}
	if s.Iteration != m.chain.Len() {
		return fmt.Errorf("%w: iteration %d, want %d", ErrShape, s.Iteration, m.chain.Len())
	}
	return m.chain.Append(s)
}

func (m *Memory) Len(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chain == nil {
		return 0, nil
	}
	return m.chain.Len(), nil
}

func (m *Memory) Last(context.Context) (Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chain == nil {
		return Step{}, fmt.Errorf("%w: empty store", ErrPersistence)
	}
	s, ok := m.chain.Last()
	if !ok {
		return Step{}, fmt.Errorf("%w: empty store", ErrPersistence)
	}
	return s.Clone(), nil
}

func (m *Memory) Load(context.Context) (*Chain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chain == nil {
		return nil, fmt.Errorf("%w: load before init", ErrPersistence)
	}
	return m.chain.derive(append([]Step(nil), m.chain.steps...)), nil
}

func (m *Memory) Close() error { return nil }
