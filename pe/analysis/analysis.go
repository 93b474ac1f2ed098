// Package analysis assembles the immutable per-run data bundle consumed by
// the likelihood and the summary statistics.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/series"
	"github.com/cwbudde/algo-gwpe/gw/strain"
	"github.com/cwbudde/algo-gwpe/gw/waveform"
	"github.com/cwbudde/algo-gwpe/internal/logging"
	"github.com/cwbudde/algo-gwpe/pe/inner"
)

// ErrConfig is returned for unusable analysis settings.
var ErrConfig = errors.New("analysis: invalid configuration")

// Band is a bandpass applied to the likelihood data before cropping.
type Band struct {
	Low   float64 `yaml:"low"`
	High  float64 `yaml:"high"`
	Order int     `yaml:"order"`
}

// Config describes how to build a [Context].
type Config struct {
	Reference   float64             // GPS time of the event
	HalfWidth   float64             // analysis window is [Reference-HalfWidth, Reference+HalfWidth)
	Bandpass    *Band               // nil leaves the likelihood data unfiltered
	PSD         strain.PSDConfig    // Welch settings when the provider has no PSD
	LowerCutoff float64             // Hz
	Taper       float64             // Tukey fraction before every transform
	Included    []detector.Detector // detectors summed in the likelihood
}

// DefaultConfig mirrors the GW190521 analysis: a 4 s window, 25-90 Hz
// bandpass, 10 Hz cutoff, and H1+L1 in the likelihood.
func DefaultConfig(reference float64) Config {
	return Config{
		Reference:   reference,
		HalfWidth:   2,
		Bandpass:    &Band{Low: 25, High: 90, Order: 4},
		PSD:         strain.DefaultPSDConfig(),
		LowerCutoff: inner.DefaultLowerCutoff,
		Taper:       0.25,
		Included:    []detector.Detector{detector.H1, detector.L1},
	}
}

// Option configures [Build].
type Option func(*buildOptions)

type buildOptions struct {
	logger *zap.Logger
}

// WithLogger sets the logger used while building.
func WithLogger(l *zap.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// Context holds cropped strain, PSDs, precomputed data transforms and the
// analysis grid. It is never mutated after construction and may be shared
// between goroutines. Accessors return shared slices that callers must not
// modify.
type Context struct {
	reference float64
	fLower    float64
	engine    *inner.Engine
	included  []detector.Detector
	band      *Band

	raw     detector.Set[series.TimeSeries]
	data    detector.Set[series.TimeSeries]
	psd     detector.Set[series.Spectrum]
	dataF   detector.Set[series.FrequencySeries]
	weights detector.Set[inner.Weighting]
}

// Build loads every detector from p, estimates (or loads) PSDs from the
// uncropped strain, conditions and crops the likelihood data, and
// precomputes its transform.
func Build(ctx context.Context, p strain.Provider, cfg Config, opts ...Option) (*Context, error) {
	o := buildOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	logger := logging.OrNop(o.logger)

	strainSet, err := strain.LoadAll(ctx, p)
	if err != nil {
		return nil, err
	}

	var psd detector.Set[series.Spectrum]
	for _, d := range detector.All {
		if pp, ok := p.(strain.PSDProvider); ok {
			psd[d], err = pp.LoadPSD(ctx, d)
		} else {
			psd[d], err = strain.EstimatePSD(strainSet[d], cfg.PSD)
		}
		if err != nil {
			return nil, fmt.Errorf("analysis: psd %s: %w", d, err)
		}
		logger.Debug("psd ready", zap.Stringer("detector", d), zap.Int("bins", psd[d].Len()), zap.Float64("df", psd[d].Df))
	}

	return New(strainSet, psd, cfg, opts...)
}

// New builds a Context from already loaded strain and PSDs.
func New(strainSet detector.Set[series.TimeSeries], psd detector.Set[series.Spectrum], cfg Config, opts ...Option) (*Context, error) {
	o := buildOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	logger := logging.OrNop(o.logger)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Context{
		reference: cfg.Reference,
		fLower:    cfg.LowerCutoff,
		engine:    inner.New(inner.WithLowerCutoff(cfg.LowerCutoff), inner.WithTaper(cfg.Taper)),
		included:  slices.Clone(cfg.Included),
		psd:       psd,
	}
	if cfg.Bandpass != nil {
		b := *cfg.Bandpass
		c.band = &b
	}

	start, end := cfg.Reference-cfg.HalfWidth, cfg.Reference+cfg.HalfWidth
	for _, d := range detector.All {
		full := strainSet[d]

		raw, err := full.Crop(start, end)
		if err != nil {
			return nil, fmt.Errorf("analysis: crop %s: %w", d, err)
		}
		c.raw[d] = raw

		cond := full
		if cfg.Bandpass != nil {
			cond, err = full.Bandpass(cfg.Bandpass.Low, cfg.Bandpass.High, cfg.Bandpass.Order)
			if err != nil {
				return nil, fmt.Errorf("analysis: bandpass %s: %w", d, err)
			}
		}
		if c.data[d], err = cond.Crop(start, end); err != nil {
			return nil, fmt.Errorf("analysis: crop %s: %w", d, err)
		}

		if c.dataF[d], err = c.engine.Transform(c.data[d]); err != nil {
			return nil, fmt.Errorf("analysis: transform %s: %w", d, err)
		}
		if c.weights[d], err = c.engine.Weighting(c.dataF[d], psd[d]); err != nil {
			return nil, fmt.Errorf("analysis: weighting %s: %w", d, err)
		}

		if d > 0 && !c.data[d].SameGrid(c.data[0]) {
			return nil, fmt.Errorf("analysis: %s grid differs from %s: %w", d, detector.All[0], series.ErrMismatch)
		}

		logger.Info("detector prepared",
			zap.Stringer("detector", d),
			zap.Float64("t0", c.data[d].T0),
			zap.Int("samples", c.data[d].Len()),
			zap.Bool("in_likelihood", c.Includes(d)),
		)
	}

	return c, nil
}

func (cfg Config) validate() error {
	switch {
	case !(cfg.HalfWidth > 0):
		return fmt.Errorf("%w: half width %g", ErrConfig, cfg.HalfWidth)
	case cfg.LowerCutoff < 0:
		return fmt.Errorf("%w: lower cutoff %g", ErrConfig, cfg.LowerCutoff)
	case cfg.Taper < 0 || cfg.Taper > 1:
		return fmt.Errorf("%w: taper %g", ErrConfig, cfg.Taper)
	case len(cfg.Included) == 0:
		return fmt.Errorf("%w: no detectors in likelihood", ErrConfig)
	}
	for _, d := range cfg.Included {
		if !d.Valid() {
			return fmt.Errorf("%w: detector %v", ErrConfig, d)
		}
	}
	return nil
}

// Reference returns the event GPS time.
func (c *Context) Reference() float64 { return c.reference }

// Engine returns the inner-product engine shared by all consumers.
func (c *Context) Engine() *inner.Engine { return c.engine }

// WhiteningBand returns the frequency limits used when whitening for
// display: the bandpass edges if one is configured, otherwise the lower
// cutoff with no upper limit.
func (c *Context) WhiteningBand() (low, high float64) {
	if c.band == nil {
		return c.fLower, 0
	}
	return c.band.Low, c.band.High
}

// Frame returns the template grid matching the likelihood data.
func (c *Context) Frame() waveform.Frame {
	return waveform.FrameOf(c.data[0], c.reference, c.fLower)
}

// Included returns the detectors summed in the likelihood.
func (c *Context) Included() []detector.Detector {
	return slices.Clone(c.included)
}

// Includes reports whether d enters the likelihood.
func (c *Context) Includes(d detector.Detector) bool {
	return slices.Contains(c.included, d)
}

// Strain returns the conditioned, cropped likelihood data of d.
func (c *Context) Strain(d detector.Detector) series.TimeSeries { return c.data[d] }

// Raw returns the cropped but unfiltered strain of d.
func (c *Context) Raw(d detector.Detector) series.TimeSeries { return c.raw[d] }

// PSD returns the noise spectrum of d estimated from the uncropped strain.
func (c *Context) PSD(d detector.Detector) series.Spectrum { return c.psd[d] }

// DataFFT returns the cropped transform of the likelihood data of d.
func (c *Context) DataFFT(d detector.Detector) series.FrequencySeries { return c.dataF[d] }

// Weighting returns the PSD of d regridded onto the transform bins.
func (c *Context) Weighting(d detector.Detector) inner.Weighting { return c.weights[d] }
