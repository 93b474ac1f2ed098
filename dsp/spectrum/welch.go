package spectrum

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-gwpe/dsp/window"
	"github.com/mjibson/go-dsp/dsputils"
	"github.com/mjibson/go-dsp/spectral"
)

// ErrShortInput is returned when a PSD estimate has fewer samples than one segment.
var ErrShortInput = errors.New("spectrum: input shorter than one welch segment")

// WelchOption configures [Welch].
type WelchOption func(*welchConfig)

type welchConfig struct {
	segment int
	overlap int
	window  window.Type
	alpha   float64
}

// WithSegmentLength sets the segment length in samples.
func WithSegmentLength(n int) WelchOption {
	return func(c *welchConfig) {
		if n > 0 {
			c.segment = n
		}
	}
}

// WithOverlap sets the overlap between consecutive segments in samples.
func WithOverlap(n int) WelchOption {
	return func(c *welchConfig) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

// WithWindow selects the segment taper. alpha is used by Tukey windows.
func WithWindow(t window.Type, alpha float64) WelchOption {
	return func(c *welchConfig) {
		c.window = t
		c.alpha = alpha
	}
}

// Welch estimates the one-sided power spectral density of x (units^2/Hz)
// by averaging periodograms of overlapping tapered segments.
//
// Defaults: 4 s segments, 50 % overlap, Tukey(1/4) periodic taper. The
// returned slices hold the PSD and the bin frequencies; both have
// segment/2+1 entries.
func Welch(x []float64, sampleRate float64, opts ...WelchOption) (psd, freqs []float64, err error) {
	if sampleRate <= 0 {
		return nil, nil, fmt.Errorf("spectrum: sample rate must be > 0: %f", sampleRate)
	}

	cfg := welchConfig{
		segment: int(math.Round(4 * sampleRate)),
		window:  window.TypeTukey,
		alpha:   window.DefaultTukeyAlpha,
	}
	cfg.overlap = cfg.segment / 2
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.overlap >= cfg.segment {
		return nil, nil, fmt.Errorf("spectrum: overlap %d must be smaller than segment %d", cfg.overlap, cfg.segment)
	}
	if len(x) < cfg.segment {
		return nil, nil, fmt.Errorf("%w: %d < %d", ErrShortInput, len(x), cfg.segment)
	}

	coeffs := window.Generate(cfg.window, cfg.segment, window.WithAlpha(cfg.alpha), window.WithPeriodic())
	norm, err := window.SumOfSquares(coeffs)
	if err != nil {
		return nil, nil, err
	}

	bins := cfg.segment/2 + 1
	psd = make([]float64, bins)

	segments := spectral.Segment(x, cfg.segment, cfg.overlap)
	for _, seg := range segments {
		// Segments alias x and overlap each other, so taper a padded copy.
		buf, err := window.ApplyCoefficients(dsputils.ZeroPadF(seg, cfg.segment), coeffs)
		if err != nil {
			return nil, nil, err
		}

		spec, err := RealFFT(buf)
		if err != nil {
			return nil, nil, err
		}

		for k, p := range Power(spec) {
			psd[k] += p
		}
	}

	scale := 1 / (float64(len(segments)) * sampleRate * norm)
	for k := range psd {
		psd[k] *= scale
		if k > 0 && !(cfg.segment%2 == 0 && k == bins-1) {
			psd[k] *= 2
		}
	}

	return psd, BinFrequencies(cfg.segment, sampleRate), nil
}

// ASD returns the amplitude spectral density sqrt(psd).
func ASD(psd []float64) []float64 {
	out := make([]float64, len(psd))
	for i, p := range psd {
		out[i] = math.Sqrt(p)
	}
	return out
}
