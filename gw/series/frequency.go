package series

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-gwpe/dsp/spectrum"
)

// FrequencySeries is a complex one-sided spectrum starting at F0 with bin
// spacing Df.
type FrequencySeries struct {
	F0   float64
	Df   float64
	Data []complex128
}

// Len returns the number of bins.
func (fs FrequencySeries) Len() int { return len(fs.Data) }

// Frequencies returns the frequency of every bin.
func (fs FrequencySeries) Frequencies() []float64 {
	return grid(fs.F0, fs.Df, len(fs.Data))
}

// CropFrequency keeps bins with f >= low (and f <= high if high > 0).
func (fs FrequencySeries) CropFrequency(low, high float64) (FrequencySeries, error) {
	i0, i1 := cropBins(fs.F0, fs.Df, len(fs.Data), low, high)
	if i1 <= i0 {
		return FrequencySeries{}, fmt.Errorf("%w: no bins in [%g, %g] Hz", ErrEmpty, low, high)
	}
	return FrequencySeries{
		F0:   fs.F0 + float64(i0)*fs.Df,
		Df:   fs.Df,
		Data: append([]complex128(nil), fs.Data[i0:i1]...),
	}, nil
}

// Spectrum is a real frequency series such as a PSD or ASD.
type Spectrum struct {
	F0   float64
	Df   float64
	Data []float64
}

// Len returns the number of bins.
func (s Spectrum) Len() int { return len(s.Data) }

// Frequencies returns the frequency of every bin.
func (s Spectrum) Frequencies() []float64 {
	return grid(s.F0, s.Df, len(s.Data))
}

// Clone returns a deep copy.
func (s Spectrum) Clone() Spectrum {
	out := s
	out.Data = append([]float64(nil), s.Data...)
	return out
}

// Sqrt returns the element-wise square root (PSD to ASD).
func (s Spectrum) Sqrt() Spectrum {
	return Spectrum{F0: s.F0, Df: s.Df, Data: spectrum.ASD(s.Data)}
}

// CropFrequency keeps bins with f >= low (and f <= high if high > 0).
func (s Spectrum) CropFrequency(low, high float64) (Spectrum, error) {
	i0, i1 := cropBins(s.F0, s.Df, len(s.Data), low, high)
	if i1 <= i0 {
		return Spectrum{}, fmt.Errorf("%w: no bins in [%g, %g] Hz", ErrEmpty, low, high)
	}
	return Spectrum{
		F0:   s.F0 + float64(i0)*s.Df,
		Df:   s.Df,
		Data: append([]float64(nil), s.Data[i0:i1]...),
	}, nil
}

// Interpolate linearly resamples s onto a grid starting at f0 with spacing
// df and n bins. Points outside the source range take the end values.
func (s Spectrum) Interpolate(f0, df float64, n int) (Spectrum, error) {
	if n <= 0 || df <= 0 {
		return Spectrum{}, fmt.Errorf("%w: interpolate onto %d bins of %g Hz", ErrEmpty, n, df)
	}
	data, err := spectrum.InterpolateLinear(s.Frequencies(), s.Data, grid(f0, df, n))
	if err != nil {
		return Spectrum{}, err
	}
	return Spectrum{F0: f0, Df: df, Data: data}, nil
}

// At returns the linearly interpolated value at f.
func (s Spectrum) At(f float64) float64 {
	if len(s.Data) == 0 {
		return math.NaN()
	}
	v, err := spectrum.InterpolateLinear(s.Frequencies(), s.Data, []float64{f})
	if err != nil {
		return math.NaN()
	}
	return v[0]
}

func grid(f0, df float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f0 + float64(i)*df
	}
	return out
}

func cropBins(f0, df float64, n int, low, high float64) (int, int) {
	if df <= 0 {
		return 0, 0
	}
	i0 := max(int(math.Ceil((low-f0)/df-1e-9)), 0)
	i1 := n
	if high > 0 {
		i1 = min(int(math.Floor((high-f0)/df+1e-9))+1, n)
	}
	return i0, i1
}
