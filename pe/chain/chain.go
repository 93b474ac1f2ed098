package chain

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-gwpe/pe/param"
)

// Step is the ensemble state after one iteration.
type Step struct {
	Iteration int
	Positions [][]float64 // walker x dim
	LogProb   []float64   // per walker
	Accepted  []bool      // per walker, whether this iteration's proposal was taken
}

// Walkers returns the ensemble size of s.
func (s Step) Walkers() int { return len(s.Positions) }

// Clone returns a deep copy of s.
func (s Step) Clone() Step {
	out := Step{
		Iteration: s.Iteration,
		Positions: make([][]float64, len(s.Positions)),
		LogProb:   slices.Clone(s.LogProb),
		Accepted:  slices.Clone(s.Accepted),
	}
	for i, p := range s.Positions {
		out.Positions[i] = slices.Clone(p)
	}
	return out
}

func (s Step) check(walkers, dim int) error {
	if len(s.Positions) != walkers || len(s.LogProb) != walkers || len(s.Accepted) != walkers {
		return fmt.Errorf("%w: step %d has %d/%d/%d walkers, want %d",
			ErrShape, s.Iteration, len(s.Positions), len(s.LogProb), len(s.Accepted), walkers)
	}
	for w, p := range s.Positions {
		if len(p) != dim {
			return fmt.Errorf("%w: step %d walker %d has dim %d, want %d", ErrShape, s.Iteration, w, len(p), dim)
		}
	}
	return nil
}

// Sample is one flattened posterior draw.
type Sample struct {
	Params  []float64
	LogPost float64
	Chain   int // walker index
	Draw    int // iteration index
}

// Vector converts the sample to a parameter vector.
func (s Sample) Vector() (param.Vector, error) {
	return param.FromSlice(s.Params)
}

// Chain is an append-only iteration by walker grid. Steps are stored in
// iteration order; the zero value is unusable, use [New].
type Chain struct {
	walkers int
	dim     int
	steps   []Step
}

// New returns an empty chain for the given ensemble layout.
func New(walkers, dim int) (*Chain, error) {
	if walkers <= 0 || dim <= 0 {
		return nil, fmt.Errorf("%w: walkers=%d dim=%d", ErrShape, walkers, dim)
	}
	return &Chain{walkers: walkers, dim: dim}, nil
}

// Walkers returns the ensemble size.
func (c *Chain) Walkers() int { return c.walkers }

// Dim returns the parameter dimension.
func (c *Chain) Dim() int { return c.dim }

// Len returns the number of stored iterations.
func (c *Chain) Len() int { return len(c.steps) }

// Steps returns the stored steps. Callers must not modify them.
func (c *Chain) Steps() []Step { return c.steps }

// Last returns the final step and false when the chain is empty.
func (c *Chain) Last() (Step, bool) {
	if len(c.steps) == 0 {
		return Step{}, false
	}
	return c.steps[len(c.steps)-1], true
}

// Append adds a deep copy of s. Iterations must increase strictly.
func (c *Chain) Append(s Step) error {
	if err := s.check(c.walkers, c.dim); err != nil {
		return err
	}
	if last, ok := c.Last(); ok && s.Iteration <= last.Iteration {
		return fmt.Errorf("%w: iteration %d after %d", ErrShape, s.Iteration, last.Iteration)
	}
	c.steps = append(c.steps, s.Clone())
	return nil
}

func (c *Chain) derive(steps []Step) *Chain {
	return &Chain{walkers: c.walkers, dim: c.dim, steps: steps}
}

// Discard drops every step with iteration index below burnIn.
// The returned chain shares step storage with c.
func (c *Chain) Discard(burnIn int) *Chain {
	i, _ := slices.BinarySearchFunc(c.steps, burnIn, func(s Step, it int) int {
		return s.Iteration - it
	})
	return c.derive(c.steps[i:])
}

// Thin keeps every k-th step, starting with the k-th, so that M steps
// thin to floor(M/k). k <= 1 returns c unchanged.
func (c *Chain) Thin(k int) *Chain {
	if k <= 1 {
		return c
	}
	out := make([]Step, 0, len(c.steps)/k)
	for i := k - 1; i < len(c.steps); i += k {
		out = append(out, c.steps[i])
	}
	return c.derive(out)
}

// Flatten merges the grid into one sample list, iteration-major.
func (c *Chain) Flatten() []Sample {
	out := make([]Sample, 0, len(c.steps)*c.walkers)
	for _, s := range c.steps {
		for w, p := range s.Positions {
			out = append(out, Sample{
				Params:  slices.Clone(p),
				LogPost: s.LogProb[w],
				Chain:   w,
				Draw:    s.Iteration,
			})
		}
	}
	return out
}

// Trace returns out[w][i], the value of parameter index across
// iterations for each walker.
func (c *Chain) Trace(index int) ([][]float64, error) {
	if index < 0 || index >= c.dim {
		return nil, fmt.Errorf("%w: parameter index %d outside [0,%d)", ErrShape, index, c.dim)
	}
	out := make([][]float64, c.walkers)
	for w := range out {
		out[w] = make([]float64, len(c.steps))
		for i, s := range c.steps {
			out[w][i] = s.Positions[w][index]
		}
	}
	return out, nil
}

// AcceptanceFraction returns the fraction of accepted proposals per walker.
func (c *Chain) AcceptanceFraction() []float64 {
	out := make([]float64, c.walkers)
	if len(c.steps) == 0 {
		return out
	}
	for _, s := range c.steps {
		for w, ok := range s.Accepted {
			if ok {
				out[w]++
			}
		}
	}
	n := float64(len(c.steps))
	for w := range out {
		out[w] /= n
	}
	return out
}
