// Package frequency computes shape descriptors of one-sided power spectra
// on a uniform frequency grid starting at F0 with spacing Df.
package frequency

import "math"

// DefaultRolloff is the energy fraction used by [Calculate].
const DefaultRolloff = 0.85

// Stats holds frequency-domain statistics of a power spectrum.
type Stats struct {
	BinCount      int
	Energy        float64 // sum(power) * Df
	PeakFrequency float64 // Hz
	Centroid      float64 // power-weighted mean frequency, Hz
	Spread        float64 // power-weighted standard deviation, Hz
	Flatness      float64 // geometric over arithmetic mean, 0..1
	Rolloff       float64 // frequency below which DefaultRolloff of the energy lies, Hz
}

// Calculate computes all statistics of power (linear, non-negative).
func Calculate(power []float64, f0, df float64) Stats {
	s := Stats{BinCount: len(power)}
	if len(power) == 0 {
		return s
	}

	var sum float64
	peak := 0
	for i, p := range power {
		sum += p
		if p > power[peak] {
			peak = i
		}
	}
	s.Energy = sum * df
	s.PeakFrequency = f0 + float64(peak)*df
	s.Centroid = Centroid(power, f0, df)
	s.Spread = spread(power, f0, df, s.Centroid, sum)
	s.Flatness = Flatness(power)
	s.Rolloff = Rolloff(power, f0, df, DefaultRolloff)
	return s
}

// Centroid returns the power-weighted mean frequency, or 0 for a spectrum
// without power.
func Centroid(power []float64, f0, df float64) float64 {
	var num, den float64
	for i, p := range power {
		num += p * (f0 + float64(i)*df)
		den += p
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func spread(power []float64, f0, df, centroid, sum float64) float64 {
	if sum == 0 {
		return 0
	}
	var acc float64
	for i, p := range power {
		d := f0 + float64(i)*df - centroid
		acc += p * d * d
	}
	return math.Sqrt(acc / sum)
}

// Flatness returns the spectral flatness (Wiener entropy) of power. It is
// 1 for a constant spectrum and 0 if any bin is empty. The raw periodogram
// of white Gaussian noise has an expected flatness of exp(-gamma), about
// 0.56.
func Flatness(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}

	var sumLin, sumLog float64
	for _, p := range power {
		if p <= 0 {
			return 0
		}
		sumLin += p
		sumLog += math.Log(p)
	}
	n := float64(len(power))
	return math.Exp(sumLog/n) / (sumLin / n)
}

// Rolloff returns the lowest bin frequency at which the cumulative power
// reaches fraction of the total.
func Rolloff(power []float64, f0, df, fraction float64) float64 {
	var total float64
	for _, p := range power {
		total += p
	}
	if total == 0 {
		return 0
	}

	threshold := fraction * total
	var cum float64
	for i, p := range power {
		cum += p
		if cum >= threshold {
			return f0 + float64(i)*df
		}
	}
	return f0 + float64(len(power)-1)*df
}
