package posterior

import (
	"math"

	"github.com/cwbudde/algo-gwpe/pe/param"
)

// Mass-ratio limits accepted by the waveform generator.
const (
	MinRatio = 0.05
	MaxRatio = 0.97
)

// LogPrior returns the unnormalized log prior density of p: uniform in
// volume and isotropic in sky position and orientation within hard bounds.
func LogPrior(p param.Vector) float64 {
	inf := math.Inf(-1)

	if !(p[param.Mass] > 0) {
		return inf
	}
	if !(p[param.Ratio] >= MinRatio && p[param.Ratio] <= MaxRatio) {
		return inf
	}
	for _, i := range [...]int{param.RightAscension, param.Phase, param.Polarization} {
		if !(p[i] >= 0 && p[i] <= 2*math.Pi) {
			return inf
		}
	}
	if !(p[param.Distance] >= 0) {
		return inf
	}
	if !(p[param.Inclination] >= 0 && p[param.Inclination] <= math.Pi) {
		return inf
	}
	if !(p[param.Declination] >= -math.Pi/2 && p[param.Declination] <= math.Pi/2) {
		return inf
	}
	if math.IsNaN(p[param.TimeShift]) || math.IsInf(p[param.TimeShift], 0) {
		return inf
	}

	lp := math.Log(math.Cos(p[param.Declination])) +
		2*math.Log(p[param.Distance]) +
		math.Log(math.Sin(p[param.Inclination]))
	if math.IsNaN(lp) {
		return inf
	}
	return lp
}
