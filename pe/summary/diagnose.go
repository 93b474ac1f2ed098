package summary

import (
	"fmt"

	"github.com/cwbudde/algo-gwpe/dsp/spectrum"
	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/series"
	"github.com/cwbudde/algo-gwpe/pe/analysis"
	"github.com/cwbudde/algo-gwpe/stats/frequency"
	timestats "github.com/cwbudde/algo-gwpe/stats/time"
)

// Diagnostic describes how well template h explains the data of one
// detector. Time-domain statistics are taken on whitened series; spectra
// are periodograms restricted to the whitening band.
type Diagnostic struct {
	Detector         detector.Detector
	SNR              SNRSeries
	Data             timestats.Stats
	Residual         timestats.Stats
	Template         frequency.Stats
	ResidualSpectrum frequency.Stats
}

// Diagnose computes the SNR, whitened data and residual statistics, and
// the spectral shape of the whitened template and residual.
func Diagnose(ac *analysis.Context, h series.TimeSeries, d detector.Detector) (Diagnostic, error) {
	z, err := SNR(ac, h, d)
	if err != nil {
		return Diagnostic{}, err
	}
	data, model, err := Whitened(ac, h, d)
	if err != nil {
		return Diagnostic{}, err
	}
	resid, err := Residual(ac, h, d)
	if err != nil {
		return Diagnostic{}, err
	}

	low, high := ac.WhiteningBand()
	tmplShape, err := bandShape(model, low, high)
	if err != nil {
		return Diagnostic{}, fmt.Errorf("summary: diagnose %s template: %w", d, err)
	}
	residShape, err := bandShape(resid, low, high)
	if err != nil {
		return Diagnostic{}, fmt.Errorf("summary: diagnose %s residual: %w", d, err)
	}

	return Diagnostic{
		Detector:         d,
		SNR:              z,
		Data:             timestats.Calculate(data.Data),
		Residual:         timestats.Calculate(resid.Data),
		Template:         tmplShape,
		ResidualSpectrum: residShape,
	}, nil
}

func bandShape(ts series.TimeSeries, low, high float64) (frequency.Stats, error) {
	bins, err := spectrum.RealFFT(ts.Data)
	if err != nil {
		return frequency.Stats{}, err
	}
	full := series.FrequencySeries{Df: 1 / ts.Duration(), Data: bins}
	band, err := full.CropFrequency(low, high)
	if err != nil {
		return frequency.Stats{}, err
	}
	return frequency.Calculate(spectrum.Power(band.Data), band.F0, band.Df), nil
}
