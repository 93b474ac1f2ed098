package main

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-gwpe/gw/strain"
	"github.com/cwbudde/algo-gwpe/gw/waveform"
	"github.com/cwbudde/algo-gwpe/pe/analysis"
	"github.com/cwbudde/algo-gwpe/pe/chain"
	"github.com/cwbudde/algo-gwpe/pe/posterior"
	"github.com/cwbudde/algo-gwpe/pe/sampler"
)

func (a *app) generator() waveform.Generator {
	return waveform.NewNewtonian()
}

// synthetic returns the noise source of gwpe inject, centred on the event.
func (a *app) synthetic() (strain.Synthetic, error) {
	sc := a.cfg.Data.Synthetic
	scale, err := a.cfg.NoiseScale()
	if err != nil {
		return strain.Synthetic{}, err
	}

	s := strain.Synthetic{
		Start:      a.cfg.Event.GPS - sc.Duration/2,
		Duration:   sc.Duration,
		SampleRate: sc.SampleRate,
		Seed:       sc.Seed,
		NoiseScale: scale,
	}
	if sc.Inject {
		p, err := a.cfg.InjectionParams()
		if err != nil {
			return strain.Synthetic{}, err
		}
		s.Injection = &strain.Injection{
			Generator: a.generator(),
			Params:    p,
			Reference: a.cfg.Event.GPS,
			FLower:    a.cfg.Likelihood.LowerCutoff,
		}
	}
	return s, nil
}

// analysisContext loads data.dir and prepares the likelihood data.
func (a *app) analysisContext(ctx context.Context) (*analysis.Context, error) {
	acfg, err := a.cfg.Analysis()
	if err != nil {
		return nil, err
	}
	ac, err := analysis.Build(ctx, strain.ParquetProvider{Dir: a.cfg.Data.Dir}, acfg, analysis.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("prepare analysis from %s (run gwpe inject first?): %w", a.cfg.Data.Dir, err)
	}
	return ac, nil
}

func (a *app) likelihood(ctx context.Context) (*posterior.Likelihood, error) {
	ac, err := a.analysisContext(ctx)
	if err != nil {
		return nil, err
	}
	return posterior.NewLikelihood(ac, a.generator(), posterior.WithLogger(a.logger)), nil
}

// moves returns the configured stretch/DE mixture, skipping zero weights.
func (a *app) moves(dim int) []sampler.WeightedMove {
	sc := a.cfg.Sampler
	var out []sampler.WeightedMove
	if sc.StretchWeight > 0 {
		out = append(out, sampler.WeightedMove{Move: sampler.StretchMove{A: sc.StretchScale}, Weight: sc.StretchWeight})
	}
	if sc.DEWeight > 0 {
		de := sampler.NewDEMove(dim)
		de.Sigma = sc.DESigma
		out = append(out, sampler.WeightedMove{Move: de, Weight: sc.DEWeight})
	}
	return out
}

func (a *app) openStore() (*chain.SQLite, error) {
	return chain.OpenSQLite(a.cfg.Store.Path, chain.WithLogger(a.logger))
}
