package inner

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-gwpe/dsp/spectrum"
	"github.com/cwbudde/algo-gwpe/dsp/window"
	"github.com/cwbudde/algo-gwpe/gw/series"
)

// DefaultLowerCutoff is the lowest frequency (Hz) kept by [Engine.Transform].
const DefaultLowerCutoff = 10.0

// ErrDegenerateSpectrum reports an empty cropped band or a PSD that cannot
// weight the product.
var ErrDegenerateSpectrum = errors.New("inner: degenerate spectrum")

// Option configures an [Engine].
type Option func(*Engine)

// WithLowerCutoff sets the lower cutoff frequency in Hz.
func WithLowerCutoff(f float64) Option {
	return func(e *Engine) {
		if f >= 0 {
			e.lowCutoff = f
		}
	}
}

// WithTaper sets the Tukey taper fraction.
func WithTaper(alpha float64) Option {
	return func(e *Engine) {
		if alpha >= 0 && alpha <= 1 {
			e.taper = alpha
		}
	}
}

// Engine transforms series and evaluates inner products. It is immutable
// after construction and safe for concurrent use.
type Engine struct {
	lowCutoff float64
	taper     float64
}

// New returns an Engine with a 10 Hz cutoff and a Tukey(1/4) taper.
func New(opts ...Option) *Engine {
	e := &Engine{lowCutoff: DefaultLowerCutoff, taper: window.DefaultTukeyAlpha}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// LowerCutoff returns the cutoff frequency in Hz.
func (e *Engine) LowerCutoff() float64 { return e.lowCutoff }

// Taper returns the Tukey taper fraction.
func (e *Engine) Taper() float64 { return e.taper }

// Spectrum returns the tapered one-sided transform of ts over the full
// band. Bins are scaled by Dt (halved at DC), giving strain/Hz.
func (e *Engine) Spectrum(ts series.TimeSeries) (series.FrequencySeries, error) {
	if ts.Dt <= 0 || ts.Len() < 2 {
		return series.FrequencySeries{}, fmt.Errorf("%w: %d samples at dt=%g", ErrDegenerateSpectrum, ts.Len(), ts.Dt)
	}

	coeffs := window.Generate(window.TypeTukey, ts.Len(), window.WithAlpha(e.taper), window.WithPeriodic())
	tapered, err := window.ApplyCoefficients(ts.Data, coeffs)
	if err != nil {
		return series.FrequencySeries{}, err
	}

	bins, err := spectrum.RealFFT(tapered)
	if err != nil {
		return series.FrequencySeries{}, err
	}

	scale := complex(ts.Dt, 0)
	for k := range bins {
		bins[k] *= scale
	}
	bins[0] /= 2

	return series.FrequencySeries{Df: 1 / ts.Duration(), Data: bins}, nil
}

// Transform returns [Engine.Spectrum] cropped to f >= LowerCutoff.
func (e *Engine) Transform(ts series.TimeSeries) (series.FrequencySeries, error) {
	full, err := e.Spectrum(ts)
	if err != nil {
		return series.FrequencySeries{}, err
	}

	cropped, err := full.CropFrequency(e.lowCutoff, 0)
	if err != nil {
		return series.FrequencySeries{}, fmt.Errorf("%w: %v", ErrDegenerateSpectrum, err)
	}
	return cropped, nil
}

// Weighting is a PSD regridded onto a transform grid.
type Weighting struct {
	F0  float64
	Df  float64
	PSD []float64
}

// Weighting regrids psd onto the bins of grid. Every regridded value must
// be finite and positive.
func (e *Engine) Weighting(grid series.FrequencySeries, psd series.Spectrum) (Weighting, error) {
	if grid.Len() == 0 {
		return Weighting{}, fmt.Errorf("%w: empty grid", ErrDegenerateSpectrum)
	}

	onGrid, err := psd.Interpolate(grid.F0, grid.Df, grid.Len())
	if err != nil {
		return Weighting{}, fmt.Errorf("%w: %v", ErrDegenerateSpectrum, err)
	}

	for k, p := range onGrid.Data {
		if !(p > 0) || math.IsInf(p, 0) {
			return Weighting{}, fmt.Errorf("%w: psd=%g at %g Hz", ErrDegenerateSpectrum, p, grid.F0+float64(k)*grid.Df)
		}
	}

	return Weighting{F0: grid.F0, Df: grid.Df, PSD: onGrid.Data}, nil
}

// Product returns <a, b> under w. a and b must share w's grid.
func (w Weighting) Product(a, b series.FrequencySeries) (float64, error) {
	n := len(w.PSD)
	if a.Len() != n || b.Len() != n {
		return math.Inf(-1), fmt.Errorf("%w: %d/%d bins against %d psd bins", ErrDegenerateSpectrum, a.Len(), b.Len(), n)
	}

	var sum float64
	for k, p := range w.PSD {
		x, y := a.Data[k], b.Data[k]
		sum += (real(x)*real(y) + imag(x)*imag(y)) / p
	}

	out := 4 * sum * w.Df
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return math.Inf(-1), fmt.Errorf("%w: non-finite product", ErrDegenerateSpectrum)
	}
	return out, nil
}

// Inner transforms a and b and returns <a, b> weighted by psd. a and b
// must share start, step and length.
func (e *Engine) Inner(a, b series.TimeSeries, psd series.Spectrum) (float64, error) {
	if !a.SameGrid(b) {
		return math.Inf(-1), fmt.Errorf("inner: %w", series.ErrMismatch)
	}

	fa, err := e.Transform(a)
	if err != nil {
		return math.Inf(-1), err
	}
	fb, err := e.Transform(b)
	if err != nil {
		return math.Inf(-1), err
	}

	w, err := e.Weighting(fa, psd)
	if err != nil {
		return math.Inf(-1), err
	}
	return w.Product(fa, fb)
}
