// Package time computes sample statistics of real time series. Applied to
// whitened strain they show how close the data is to unit-variance
// Gaussian noise.
package time

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats holds time-domain statistics of a signal.
type Stats struct {
	Length         int
	Mean           float64
	StdDev         float64 // unbiased
	RMS            float64
	Peak           float64 // max |x|
	CrestFactor    float64 // Peak / RMS
	Skewness       float64
	ExcessKurtosis float64 // 0 for a Gaussian
	ZeroCrossings  int
}

// Calculate computes all statistics of signal. An empty signal yields the
// zero value; fewer than four samples leave the higher moments NaN.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{}
	}

	s := Stats{
		Length:        n,
		RMS:           RMS(signal),
		Peak:          Peak(signal),
		ZeroCrossings: ZeroCrossings(signal),
		Skewness:      math.NaN(),
		StdDev:        math.NaN(),
	}
	s.CrestFactor = crest(s.Peak, s.RMS)
	s.ExcessKurtosis = math.NaN()

	if n == 1 {
		s.Mean = signal[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(signal, nil)
	if n >= 4 && s.StdDev > 0 {
		s.Skewness = stat.Skew(signal, nil)
		s.ExcessKurtosis = stat.ExKurtosis(signal, nil)
	}
	return s
}

// RMS returns the root mean square of signal, 0 when empty.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	var sum float64
	for _, v := range signal {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(signal)))
}

// Peak returns the largest absolute sample.
func Peak(signal []float64) float64 {
	var p float64
	for _, v := range signal {
		if a := math.Abs(v); a > p {
			p = a
		}
	}
	return p
}

// CrestFactor returns Peak/RMS, or 0 for a silent signal.
func CrestFactor(signal []float64) float64 {
	return crest(Peak(signal), RMS(signal))
}

func crest(peak, rms float64) float64 {
	if rms == 0 {
		return 0
	}
	return peak / rms
}

// ZeroCrossings counts sign changes between consecutive samples. Exact
// zeros do not count as a crossing on their own.
func ZeroCrossings(signal []float64) int {
	count := 0
	prev := 0.0
	for _, v := range signal {
		if v == 0 {
			continue
		}
		if prev != 0 && (v > 0) != (prev > 0) {
			count++
		}
		prev = v
	}
	return count
}
