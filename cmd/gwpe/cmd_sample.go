package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-gwpe/pe/chain"
	"github.com/cwbudde/algo-gwpe/pe/param"
	"github.com/cwbudde/algo-gwpe/pe/posterior"
	"github.com/cwbudde/algo-gwpe/pe/sampler"
)

func newSampleCmd(a *app) *cobra.Command {
	var (
		resume     bool
		iterations int
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Run or resume the ensemble sampler into the SQLite store",
		Long: `Draws from the posterior with an affine-invariant ensemble sampler mixing
stretch and differential-evolution moves. Every iteration is committed to
store.path before the next begins; --resume continues a stored chain with
the same random streams an uninterrupted run would have used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if iterations > 0 {
				a.cfg.Sampler.Iterations = iterations
			}
			return a.runSample(cmd, resume)
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "continue the chain stored in store.path")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "override sampler.iterations (total iterations, not additional)")
	return cmd
}

func (a *app) runSample(cmd *cobra.Command, resume bool) error {
	ctx := cmd.Context()
	sc := a.cfg.Sampler

	lk, err := a.likelihood(ctx)
	if err != nil {
		return err
	}
	post := posterior.FromLikelihood(lk)

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	s, err := sampler.New(post.LogProb, sc.Walkers, param.Dim, store,
		sampler.WithMoves(a.moves(param.Dim)...),
		sampler.WithSeed(sc.Seed),
		sampler.WithWorkers(sc.Workers),
		sampler.WithLogEvery(sc.LogEvery),
		sampler.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	var initial [][]float64
	if !resume {
		best, err := a.cfg.BestFit()
		if err != nil {
			return err
		}
		bounds, err := a.cfg.SamplingBounds()
		if err != nil {
			return err
		}
		// Initialization draws from its own stream; iteration streams use
		// sequence numbers 0..iterations-1.
		rng := rand.New(rand.NewPCG(sc.Seed, math.MaxUint64))
		initial, err = sampler.InitialPositions(best.Slice(), bounds[:], sc.Walkers, rng, sc.MaxInitRetries)
		if err != nil {
			return err
		}
	}

	a.logger.Info("sampler configured",
		zap.String("store", store.Path()),
		zap.Int("walkers", sc.Walkers),
		zap.Int("iterations", sc.Iterations),
		zap.Int("workers", s.Workers()),
		zap.Bool("resume", resume),
	)

	var c *chain.Chain
	if resume {
		c, err = s.Resume(ctx, sc.Iterations)
	} else {
		c, err = s.Run(ctx, initial, sc.Iterations)
	}
	switch {
	case errors.Is(err, sampler.ErrStoreNotEmpty):
		return fmt.Errorf("%w; use --resume or remove %s", err, store.Path())
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("sampling interrupted, continue with gwpe sample --resume: %w", err)
	case err != nil:
		return err
	}
	return a.reportChain(c.Len(), c.AcceptanceFraction())
}

func (a *app) reportChain(iterations int, acceptance []float64) error {
	mean := stat.Mean(acceptance, nil)
	_, err := fmt.Fprintf(a.out, "stored %d iterations of %d walkers in %s, mean acceptance %.3f\n",
		iterations, len(acceptance), a.cfg.Store.Path, mean)
	return err
}
