package waveform

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-gwpe/dsp/window"
	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/series"
	"github.com/cwbudde/algo-gwpe/pe/param"
)

const (
	solarMassSeconds = 4.925490947641267e-6 // G*Msun/c^3
	solarMassMetres  = 1476.6250385         // G*Msun/c^2
	megaparsec       = 3.085677581491367e22 // m

	// Remnant approximations for the ringdown tail.
	remnantMassFraction = 0.95
	remnantSpin         = 0.7
	ringdownDecades     = 3
)

// Newtonian generates quadrupole inspiral-ringdown templates.
//
// The inspiral follows the leading-order chirp from FLower to the ISCO
// frequency of the total mass. The ringdown continues the phase at the
// fundamental quasi-normal mode frequency of an approximate remnant and
// decays until the amplitude has dropped by three decades. The
// polarizations are Tukey tapered over their support and shifted
// cyclically so that the ISCO sample, taken as the merger time, lands at
// ReferenceTime + time shift plus each detector's delay from the geocentre.
type Newtonian struct {
	taper float64
}

// NewtonianOption configures [Newtonian].
type NewtonianOption func(*Newtonian)

// WithTaper sets the Tukey taper fraction applied to the polarizations.
func WithTaper(alpha float64) NewtonianOption {
	return func(n *Newtonian) {
		if alpha >= 0 && alpha <= 1 {
			n.taper = alpha
		}
	}
}

// NewNewtonian returns a generator with a Tukey(1/4) taper.
func NewNewtonian(opts ...NewtonianOption) *Newtonian {
	n := &Newtonian{taper: window.DefaultTukeyAlpha}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Generate implements [Generator].
func (n *Newtonian) Generate(p param.Vector, f Frame) (detector.Set[series.TimeSeries], error) {
	var out detector.Set[series.TimeSeries]

	if err := f.Validate(); err != nil {
		return out, err
	}
	if err := validateSource(p); err != nil {
		return out, err
	}

	pol, err := n.polarizations(p, f)
	if err != nil {
		return out, err
	}

	size := f.Samples()
	coalescence := f.ReferenceTime + p[param.TimeShift]

	for _, d := range detector.All {
		fp, fc := d.AntennaPattern(p[param.RightAscension], p[param.Declination], p[param.Polarization], coalescence)
		delay := d.TimeDelayFromEarthCenter(p[param.RightAscension], p[param.Declination], coalescence)

		h := make([]float64, size)
		for i := range pol.plus {
			h[i] = fp*pol.plus[i] + fc*pol.cross[i]
		}

		shift := (coalescence+delay-f.StartTime)/f.Dt - pol.peak
		placed, err := cyclicShift(h, shift)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrTemplate, err)
		}

		out[d] = series.TimeSeries{T0: f.StartTime, Dt: f.Dt, Data: placed}
	}

	return out, nil
}

func validateSource(p param.Vector) error {
	if !p.IsFinite() {
		return fmt.Errorf("%w: non-finite parameters %v", ErrTemplate, p)
	}
	if !(p[param.Mass] > 0) {
		return fmt.Errorf("%w: m1=%g", ErrTemplate, p[param.Mass])
	}
	if !(p[param.Ratio] > 0) || p[param.Ratio] > 1 {
		return fmt.Errorf("%w: q=%g", ErrTemplate, p[param.Ratio])
	}
	if !(p[param.Distance] > 0) {
		return fmt.Errorf("%w: distance=%g", ErrTemplate, p[param.Distance])
	}
	return nil
}

// polarizations holds h+ and hx zero-padded to the frame length. peak is
// the sample index of the merger within them.
type polarizations struct {
	plus, cross []float64
	peak        float64
}

func (n *Newtonian) polarizations(p param.Vector, f Frame) (polarizations, error) {
	m1 := p[param.Mass]
	m2 := p.SecondaryMass()
	total := m1 + m2
	chirp := math.Pow(m1*m2, 3.0/5) / math.Pow(total, 1.0/5)

	mcSec := chirp * solarMassSeconds
	mcMetres := chirp * solarMassMetres
	distance := p[param.Distance] * megaparsec

	fISCO := 1 / (math.Pow(6, 1.5) * math.Pi * total * solarMassSeconds)
	if f.FLower >= fISCO {
		return polarizations{}, fmt.Errorf("%w: f_lower %g Hz above isco %g Hz", ErrTemplate, f.FLower, fISCO)
	}

	tau := func(freq float64) float64 {
		return 5.0 / 256 * math.Pow(mcSec, -5.0/3) * math.Pow(math.Pi*freq, -8.0/3)
	}
	freqAt := func(t float64) float64 {
		return math.Pow(5/(256*t), 3.0/8) * math.Pow(mcSec, -5.0/8) / math.Pi
	}
	amplitude := func(freq float64) float64 {
		return 4 * mcMetres * math.Pow(math.Pi*freq*mcSec, 2.0/3) / distance
	}

	tauLow, tauISCO := tau(f.FLower), tau(fISCO)
	inspiral := int(math.Floor((tauLow-tauISCO)/f.Dt)) + 1

	remnant := remnantMassFraction * total * solarMassSeconds
	fRing := (1.5251 - 1.1568*math.Pow(1-remnantSpin, 0.1292)) / (2 * math.Pi * remnant)
	quality := 0.7 + 1.4187*math.Pow(1-remnantSpin, -0.4990)
	damping := quality / (math.Pi * fRing)
	ringdown := int(math.Ceil(ringdownDecades * math.Ln10 * damping / f.Dt))

	cosI := math.Cos(p[param.Inclination])
	plusFactor := (1 + cosI*cosI) / 2
	phic := p[param.Phase]

	length := inspiral + ringdown
	hp := make([]float64, length)
	hc := make([]float64, length)

	var endPhase float64
	for j := range inspiral {
		t := tauISCO + float64(inspiral-1-j)*f.Dt
		phase := -2*math.Pow(t/(5*mcSec), 5.0/8) + phic
		a := amplitude(freqAt(t))
		hp[j] = a * plusFactor * math.Cos(phase)
		hc[j] = a * cosI * math.Sin(phase)
		endPhase = phase
	}

	a0 := amplitude(fISCO)
	for j := range ringdown {
		t := float64(j+1) * f.Dt
		phase := endPhase + 2*math.Pi*fRing*t
		a := a0 * math.Exp(-t/damping)
		hp[inspiral+j] = a * plusFactor * math.Cos(phase)
		hc[inspiral+j] = a * cosI * math.Sin(phase)
	}

	coeffs := window.Generate(window.TypeTukey, length, window.WithAlpha(n.taper), window.WithPeriodic())
	hp, _ = window.ApplyCoefficients(hp, coeffs)
	hc, _ = window.ApplyCoefficients(hc, coeffs)

	peak := float64(inspiral - 1)

	size := f.Samples()
	if length > size {
		drop := length - size
		hp, hc = hp[drop:], hc[drop:]
		peak -= float64(drop)
	}

	plus := make([]float64, size)
	cross := make([]float64, size)
	copy(plus, hp)
	copy(cross, hc)

	return polarizations{plus: plus, cross: cross, peak: peak}, nil
}
