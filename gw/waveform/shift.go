package waveform

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-gwpe/dsp/spectrum"
)

// cyclicShift delays x by shift samples (fractional allowed), wrapping
// around the end. The shift is applied as a linear phase in the frequency
// domain.
func cyclicShift(x []float64, shift float64) ([]float64, error) {
	n := len(x)
	bins, err := spectrum.RealFFT(x)
	if err != nil {
		return nil, err
	}

	for k := range bins {
		bins[k] *= cmplx.Exp(complex(0, -2*math.Pi*float64(k)*shift/float64(n)))
	}

	return spectrum.InverseReal(bins, n)
}
