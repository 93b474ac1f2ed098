package summary

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-gwpe/dsp/spectrum"
	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/series"
	"github.com/cwbudde/algo-gwpe/pe/analysis"
)

// SNRSeries is the matched-filter signal-to-noise ratio of one detector.
type SNRSeries struct {
	Detector detector.Detector
	Series   series.TimeSeries // |SNR|, on the analysis grid
	Peak     float64
	PeakTime float64 // GPS
	Sigma    float64 // sqrt(|<h,h>|)
}

// SNR filters the likelihood data of d with template h:
//
//	z(t) = 4 df sum_f s(f) conj(h(f)) / S(f) exp(2 pi i f t),  SNR = |z| / sigma
//
// z is the complex (analytic) filter output, so |z| is maximized over the
// template's coalescence phase; a template that differs from the data only
// by a constant phase still reaches SNR = sigma. A real inverse transform
// would report the Re z projection instead. Bins below the lower cutoff are
// excluded. The series is rolled forward by the template's peak sample so
// the zero-lag output lines up with the template peak.
func SNR(ac *analysis.Context, h series.TimeSeries, d detector.Detector) (SNRSeries, error) {
	data := ac.Strain(d)
	if !data.SameGrid(h) {
		return SNRSeries{}, fmt.Errorf("summary: snr %s: %w", d, series.ErrMismatch)
	}

	hf, err := ac.Engine().Transform(h)
	if err != nil {
		return SNRSeries{}, fmt.Errorf("summary: snr %s: %w", d, err)
	}
	sf := ac.DataFFT(d)
	w := ac.Weighting(d)

	sigmaSq, err := w.Product(hf, hf)
	if err != nil {
		return SNRSeries{}, fmt.Errorf("summary: snr %s: %w", d, err)
	}
	sigma := math.Sqrt(math.Abs(sigmaSq))
	if sigma == 0 {
		return SNRSeries{}, fmt.Errorf("summary: snr %s: template has no power above %g Hz", d, ac.Engine().LowerCutoff())
	}

	n := data.Len()
	offset := int(math.Round(hf.F0 / hf.Df))
	bins := make([]complex128, offset+hf.Len())
	for k, p := range w.PSD {
		bins[offset+k] = sf.Data[k] * cmplx.Conj(hf.Data[k]) / complex(p, 0)
	}

	z, err := spectrum.InverseComplex(bins, n)
	if err != nil {
		return SNRSeries{}, fmt.Errorf("summary: snr %s: %w", d, err)
	}

	mag := series.TimeSeries{T0: data.T0, Dt: data.Dt, Data: spectrum.Magnitude(z)}
	floats.Scale(4*hf.Df/sigma, mag.Data)
	mag = mag.Roll(h.ArgMax())

	peak := mag.ArgMax()
	return SNRSeries{
		Detector: d,
		Series:   mag,
		Peak:     mag.Data[peak],
		PeakTime: mag.T0 + float64(peak)*mag.Dt,
		Sigma:    sigma,
	}, nil
}

// Residual returns the whitened likelihood data of d minus template h,
// limited to the analysis whitening band.
func Residual(ac *analysis.Context, h series.TimeSeries, d detector.Detector) (series.TimeSeries, error) {
	diff, err := ac.Strain(d).Subtract(h)
	if err != nil {
		return series.TimeSeries{}, fmt.Errorf("summary: residual %s: %w", d, err)
	}
	low, high := ac.WhiteningBand()
	return diff.Whiten(ac.PSD(d), low, high)
}

// Whitened returns the whitened likelihood data of d and the equally
// whitened template h, for model-versus-data comparison.
func Whitened(ac *analysis.Context, h series.TimeSeries, d detector.Detector) (data, model series.TimeSeries, err error) {
	low, high := ac.WhiteningBand()
	if data, err = ac.Strain(d).Whiten(ac.PSD(d), low, high); err != nil {
		return series.TimeSeries{}, series.TimeSeries{}, fmt.Errorf("summary: whiten %s data: %w", d, err)
	}
	if model, err = h.Whiten(ac.PSD(d), low, high); err != nil {
		return series.TimeSeries{}, series.TimeSeries{}, fmt.Errorf("summary: whiten %s model: %w", d, err)
	}
	return data, model, nil
}
