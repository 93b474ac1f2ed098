package filter

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-gwpe/dsp/spectrum"
	"github.com/cwbudde/algo-gwpe/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

// WhitenOption configures [Whiten].
type WhitenOption func(*whitenConfig)

type whitenConfig struct {
	low, high float64
	alpha     float64
}

// WithBand zeroes bins outside [low, high] Hz. A zero high keeps
// everything above low.
func WithBand(low, high float64) WhitenOption {
	return func(c *whitenConfig) {
		c.low, c.high = low, high
	}
}

// WithTaper sets the Tukey taper fraction applied before the transform.
func WithTaper(alpha float64) WhitenOption {
	return func(c *whitenConfig) {
		if alpha >= 0 && alpha <= 1 {
			c.alpha = alpha
		}
	}
}

// Whiten divides the spectrum of x by the amplitude spectral density and
// transforms back. psd is sampled at psdFreqs (strictly increasing, Hz)
// and is linearly interpolated onto the bins of x. The output is scaled
// so that noise matching psd has unit variance.
func Whiten(x []float64, sampleRate float64, psd, psdFreqs []float64, opts ...WhitenOption) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("filter: sample rate must be > 0: %f", sampleRate)
	}
	if len(x) < 2 {
		return nil, errShortSignal
	}

	cfg := whitenConfig{alpha: window.DefaultTukeyAlpha}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	coeffs := window.Generate(window.TypeTukey, len(x), window.WithAlpha(cfg.alpha), window.WithPeriodic())
	tapered, err := window.ApplyCoefficients(x, coeffs)
	if err != nil {
		return nil, err
	}

	bins, err := spectrum.RealFFT(tapered)
	if err != nil {
		return nil, err
	}

	freqs := spectrum.BinFrequencies(len(x), sampleRate)
	onGrid, err := spectrum.InterpolateLinear(psdFreqs, psd, freqs)
	if err != nil {
		return nil, fmt.Errorf("filter: regrid psd: %w", err)
	}

	for k, f := range freqs {
		outside := f < cfg.low || (cfg.high > 0 && f > cfg.high)
		if outside || !(onGrid[k] > 0) || math.IsInf(onGrid[k], 0) {
			bins[k] = 0
			continue
		}
		bins[k] /= complex(math.Sqrt(onGrid[k]), 0)
	}

	out, err := spectrum.InverseReal(bins, len(x))
	if err != nil {
		return nil, err
	}

	vecmath.ScaleBlock(out, out, math.Sqrt(2/sampleRate))
	return out, nil
}
