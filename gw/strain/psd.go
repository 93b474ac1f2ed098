package strain

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-gwpe/dsp/spectrum"
	"github.com/cwbudde/algo-gwpe/dsp/window"
	"github.com/cwbudde/algo-gwpe/gw/series"
)

// PSDConfig controls Welch estimation. Lengths are in seconds.
type PSDConfig struct {
	FFTLength float64 `yaml:"fft_length"`
	Overlap   float64 `yaml:"overlap"`
	Taper     float64 `yaml:"taper"`
	Window    string  `yaml:"window"`
}

// DefaultPSDConfig returns 4 s segments, 2 s overlap and a Tukey(1/4) taper.
func DefaultPSDConfig() PSDConfig {
	return PSDConfig{FFTLength: 4, Overlap: 2, Taper: window.DefaultTukeyAlpha, Window: "tukey"}
}

// EstimatePSD returns the one-sided Welch PSD of ts.
func EstimatePSD(ts series.TimeSeries, cfg PSDConfig) (series.Spectrum, error) {
	fs := ts.SampleRate()
	seg := int(math.Round(cfg.FFTLength * fs))
	overlap := int(math.Round(cfg.Overlap * fs))

	wt, err := windowType(cfg.Window)
	if err != nil {
		return series.Spectrum{}, err
	}

	psd, freqs, err := spectrum.Welch(ts.Data, fs,
		spectrum.WithSegmentLength(seg),
		spectrum.WithOverlap(overlap),
		spectrum.WithWindow(wt, cfg.Taper),
	)
	if err != nil {
		return series.Spectrum{}, fmt.Errorf("strain: estimate psd: %w", err)
	}
	return series.Spectrum{F0: freqs[0], Df: freqs[1] - freqs[0], Data: psd}, nil
}

func windowType(name string) (window.Type, error) {
	switch name {
	case "", "tukey":
		return window.TypeTukey, nil
	case "hann":
		return window.TypeHann, nil
	case "rectangular", "boxcar":
		return window.TypeRectangular, nil
	default:
		return 0, fmt.Errorf("strain: unknown window %q", name)
	}
}
