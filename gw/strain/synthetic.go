package strain

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-gwpe/dsp/spectrum"
	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/series"
	"github.com/cwbudde/algo-gwpe/gw/waveform"
	"github.com/cwbudde/algo-gwpe/pe/param"
)

// DesignPSD is an analytic advanced-detector sensitivity fit (1/Hz).
// Frequencies below 10 Hz are clamped to the 10 Hz value.
func DesignPSD(f float64) float64 {
	const (
		s0    = 1e-49
		knee  = 215.0
		floor = 10.0
	)
	x := math.Max(f, floor) / knee
	x2 := x * x
	return s0 * (math.Pow(x, -4.14) - 5/x2 + 111*(1-x2+x2*x2/2)/(1+x2/2))
}

// DefaultNoiseScale multiplies DesignPSD per detector; V1 is less sensitive.
var DefaultNoiseScale = detector.Set[float64]{detector.H1: 1, detector.L1: 1, detector.V1: 4}

// Injection adds a generated template to the noise.
type Injection struct {
	Generator waveform.Generator
	Params    param.Vector
	Reference float64
	FLower    float64
}

// Synthetic produces reproducible coloured Gaussian noise, optionally with
// an injected signal. Each detector draws from its own stream derived from
// Seed.
type Synthetic struct {
	Start      float64
	Duration   float64
	SampleRate float64
	Seed       uint64
	NoiseScale detector.Set[float64]
	Injection  *Injection
}

func (s Synthetic) samples() int {
	return int(math.Round(s.Duration * s.SampleRate))
}

func (s Synthetic) validate() error {
	if !(s.SampleRate > 0) || s.samples() < 2 {
		return fmt.Errorf("strain: synthetic needs positive rate and duration: fs=%g duration=%g", s.SampleRate, s.Duration)
	}
	return nil
}

// LoadStrain implements [Provider].
func (s Synthetic) LoadStrain(ctx context.Context, d detector.Detector) (series.TimeSeries, error) {
	if err := ctx.Err(); err != nil {
		return series.TimeSeries{}, err
	}
	if err := s.validate(); err != nil {
		return series.TimeSeries{}, err
	}

	ts, err := s.noise(d)
	if err != nil {
		return series.TimeSeries{}, err
	}
	if s.Injection == nil {
		return ts, nil
	}

	frame := waveform.FrameOf(ts, s.Injection.Reference, s.Injection.FLower)
	tmpl, err := s.Injection.Generator.Generate(s.Injection.Params, frame)
	if err != nil {
		return series.TimeSeries{}, fmt.Errorf("strain: injection: %w", err)
	}
	return ts.Add(tmpl[d])
}

// LoadPSD implements [PSDProvider] with the analytic noise spectrum.
func (s Synthetic) LoadPSD(_ context.Context, d detector.Detector) (series.Spectrum, error) {
	if err := s.validate(); err != nil {
		return series.Spectrum{}, err
	}

	n := s.samples()
	freqs := spectrum.BinFrequencies(n, s.SampleRate)
	data := make([]float64, len(freqs))
	for k, f := range freqs {
		data[k] = s.scale(d) * DesignPSD(f)
	}
	return series.Spectrum{Df: freqs[1], Data: data}, nil
}

func (s Synthetic) scale(d detector.Detector) float64 {
	if v := s.NoiseScale[d]; v > 0 {
		return v
	}
	return DefaultNoiseScale[d]
}

// noise colours white Gaussian bins so that E|X_k|^2 = N S(f_k) / (2 dt).
func (s Synthetic) noise(d detector.Detector) (series.TimeSeries, error) {
	n := s.samples()
	dt := 1 / s.SampleRate
	rng := rand.New(rand.NewPCG(s.Seed, uint64(d)+1))

	freqs := spectrum.BinFrequencies(n, s.SampleRate)
	bins := make([]complex128, len(freqs))
	for k, f := range freqs {
		sigma := math.Sqrt(float64(n) * s.scale(d) * DesignPSD(f) / (2 * dt))
		if k == 0 || (n%2 == 0 && k == len(freqs)-1) {
			bins[k] = complex(sigma*rng.NormFloat64(), 0)
			continue
		}
		bins[k] = complex(sigma*rng.NormFloat64()/math.Sqrt2, sigma*rng.NormFloat64()/math.Sqrt2)
	}

	data, err := spectrum.InverseReal(bins, n)
	if err != nil {
		return series.TimeSeries{}, err
	}
	return series.TimeSeries{T0: s.Start, Dt: dt, Data: data}, nil
}
