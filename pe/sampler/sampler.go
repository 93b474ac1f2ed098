package sampler

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-gwpe/internal/logging"
	"github.com/cwbudde/algo-gwpe/pe/chain"
)

// LogProbFunc evaluates an unnormalized log density. It must be safe for
// concurrent use; NaN is treated as -Inf.
type LogProbFunc func(x []float64) float64

// Progress is reported after every persisted iteration.
type Progress struct {
	Iteration  int           // completed iteration index
	Total      int           // iterations requested
	Acceptance float64       // mean acceptance fraction of this iteration
	Elapsed    time.Duration // since Run or Resume started
}

// Option configures a [Sampler].
type Option func(*Sampler)

// WithMoves replaces the move mixture. Moves with non-positive weight
// are ignored.
func WithMoves(moves ...WeightedMove) Option {
	return func(s *Sampler) {
		var keep []WeightedMove
		for _, m := range moves {
			if m.Move != nil && m.Weight > 0 {
				keep = append(keep, m)
			}
		}
		if len(keep) > 0 {
			s.moves = keep
		}
	}
}

// WithSeed sets the base seed of the per-iteration random streams.
func WithSeed(seed uint64) Option {
	return func(s *Sampler) { s.seed = seed }
}

// WithWorkers bounds concurrent log-probability evaluations. Values <= 0
// select the logical CPU count.
func WithWorkers(n int) Option {
	return func(s *Sampler) { s.workers = n }
}

// WithLogger sets the progress logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sampler) { s.logger = l }
}

// WithLogEvery logs progress every n iterations; 0 disables it.
func WithLogEvery(n int) Option {
	return func(s *Sampler) { s.logEvery = max(n, 0) }
}

// WithProgress registers a callback invoked by the coordinator after each
// iteration is persisted.
func WithProgress(fn func(Progress)) Option {
	return func(s *Sampler) { s.progress = fn }
}

// Sampler drives an ensemble of walkers. It is not safe for concurrent
// use; one Sampler owns its backend for the duration of a run.
type Sampler struct {
	logProb LogProbFunc
	walkers int
	dim     int
	backend chain.Backend

	moves    []WeightedMove
	seed     uint64
	workers  int
	logger   *zap.Logger
	logEvery int
	progress func(Progress)
}

// New validates the ensemble layout and binds it to backend.
func New(logProb LogProbFunc, walkers, dim int, backend chain.Backend, opts ...Option) (*Sampler, error) {
	switch {
	case logProb == nil:
		return nil, fmt.Errorf("%w: nil log probability", ErrConfig)
	case backend == nil:
		return nil, fmt.Errorf("%w: nil backend", ErrConfig)
	case dim <= 0:
		return nil, fmt.Errorf("%w: dim=%d", ErrConfig, dim)
	case walkers < 4 || walkers < 2*dim:
		return nil, fmt.Errorf("%w: %d walkers, need at least max(4, 2*dim=%d)", ErrConfig, walkers, 2*dim)
	}

	s := &Sampler{
		logProb:  logProb,
		walkers:  walkers,
		dim:      dim,
		backend:  backend,
		moves:    DefaultMoves(dim),
		logEvery: 100,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = logging.OrNop(s.logger)

	if s.workers <= 0 {
		s.workers = defaultWorkers()
	}
	return s, nil
}

func defaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// Workers returns the evaluation concurrency.
func (s *Sampler) Workers() int { return s.workers }

// Run starts a fresh chain from initial positions (walkers x dim) and
// advances it to iterations. The backend must be empty.
func (s *Sampler) Run(ctx context.Context, initial [][]float64, iterations int) (*chain.Chain, error) {
	if len(initial) != s.walkers {
		return nil, fmt.Errorf("%w: %d initial positions for %d walkers", ErrConfig, len(initial), s.walkers)
	}
	for w, p := range initial {
		if len(p) != s.dim {
			return nil, fmt.Errorf("%w: initial walker %d has dim %d", ErrConfig, w, len(p))
		}
	}

	if err := s.backend.Init(ctx, s.walkers, s.dim); err != nil {
		return nil, err
	}
	n, err := s.backend.Len(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: %d iterations stored", ErrStoreNotEmpty, n)
	}

	pos := make([][]float64, s.walkers)
	for w, p := range initial {
		pos[w] = slices.Clone(p)
	}
	lp, err := s.evaluate(ctx, pos)
	if err != nil {
		return nil, err
	}
	return s.advance(ctx, pos, lp, 0, iterations)
}

// Resume continues the chain stored in the backend until it holds
// iterations steps. A complete store is returned unchanged.
func (s *Sampler) Resume(ctx context.Context, iterations int) (*chain.Chain, error) {
	if err := s.backend.Init(ctx, s.walkers, s.dim); err != nil {
		return nil, err
	}
	n, err := s.backend.Len(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: nothing to resume", chain.ErrPersistence)
	}

	last, err := s.backend.Last(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("resuming chain", zap.Int("iteration", n), zap.Int("target", iterations))
	return s.advance(ctx, last.Positions, last.LogProb, n, iterations)
}

func (s *Sampler) advance(ctx context.Context, pos [][]float64, lp []float64, from, to int) (*chain.Chain, error) {
	start := time.Now()
	s.logger.Info("sampling",
		zap.Int("walkers", s.walkers),
		zap.Int("dim", s.dim),
		zap.Int("from", from),
		zap.Int("to", to),
		zap.Int("workers", s.workers),
	)

	for it := from; it < to; it++ {
		if err := ctx.Err(); err != nil {
			s.logger.Info("sampling interrupted", zap.Int("completed", it))
			return nil, err
		}

		step, err := s.iterate(ctx, it, pos, lp)
		if err != nil {
			return nil, err
		}
		if err := s.backend.Append(ctx, step); err != nil {
			s.logger.Error("persisting iteration failed", zap.Int("iteration", it), zap.Error(err))
			return nil, err
		}
		pos, lp = step.Positions, step.LogProb

		acc := acceptance(step.Accepted)
		if s.progress != nil {
			s.progress(Progress{Iteration: it, Total: to, Acceptance: acc, Elapsed: time.Since(start)})
		}
		if s.logEvery > 0 && (it+1)%s.logEvery == 0 {
			s.logger.Info("sampler progress",
				zap.Int("iteration", it+1),
				zap.Int("total", to),
				zap.Float64("acceptance", acc),
				zap.Float64("max_log_prob", floats.Max(lp)),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}

	return s.backend.Load(ctx)
}

// iterate performs one red/blue ensemble update. pos and lp are not
// modified; the returned step holds the new state.
func (s *Sampler) iterate(ctx context.Context, it int, pos [][]float64, lp []float64) (chain.Step, error) {
	rng := rand.New(rand.NewPCG(s.seed, uint64(it)))

	step := chain.Step{
		Iteration: it,
		Positions: slices.Clone(pos),
		LogProb:   slices.Clone(lp),
		Accepted:  make([]bool, s.walkers),
	}
	move := pickMove(rng, s.moves)

	halves := split(rng.Perm(s.walkers))
	for h, active := range halves {
		other := halves[1-h]

		sPos := make([][]float64, len(active))
		for i, w := range active {
			sPos[i] = step.Positions[w]
		}
		cPos := make([][]float64, len(other))
		for i, w := range other {
			cPos[i] = step.Positions[w]
		}

		q, factor := move.Propose(rng, sPos, cPos)
		qlp, err := s.evaluate(ctx, q)
		if err != nil {
			return chain.Step{}, err
		}

		for i, w := range active {
			diff := factor[i] + qlp[i] - step.LogProb[w]
			if diff > math.Log(rng.Float64()) {
				step.Positions[w] = q[i]
				step.LogProb[w] = qlp[i]
				step.Accepted[w] = true
			}
		}
	}
	return step, nil
}

// split assigns a permutation alternately to two halves.
func split(perm []int) [2][]int {
	var out [2][]int
	for i, w := range perm {
		out[i%2] = append(out[i%2], w)
	}
	return out
}

// evaluate computes log probabilities concurrently and joins before
// returning. Results are indexed like xs, independent of scheduling.
func (s *Sampler) evaluate(ctx context.Context, xs [][]float64) ([]float64, error) {
	out := make([]float64, len(xs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, x := range xs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v := s.logProb(x)
			if math.IsNaN(v) {
				v = math.Inf(-1)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func acceptance(accepted []bool) float64 {
	if len(accepted) == 0 {
		return 0
	}
	var n int
	for _, ok := range accepted {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(accepted))
}
