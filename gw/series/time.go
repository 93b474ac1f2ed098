package series

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-gwpe/dsp/filter"
	"github.com/cwbudde/algo-vecmath"
)

// TimeSeries is a real series sampled every Dt seconds from GPS time T0.
type TimeSeries struct {
	T0   float64
	Dt   float64
	Data []float64
}

// Len returns the number of samples.
func (ts TimeSeries) Len() int { return len(ts.Data) }

// Duration returns Len()*Dt.
func (ts TimeSeries) Duration() float64 { return float64(len(ts.Data)) * ts.Dt }

// SampleRate returns 1/Dt.
func (ts TimeSeries) SampleRate() float64 { return 1 / ts.Dt }

// End returns the time just past the last sample.
func (ts TimeSeries) End() float64 { return ts.T0 + ts.Duration() }

// Times returns the GPS time of every sample.
func (ts TimeSeries) Times() []float64 {
	out := make([]float64, len(ts.Data))
	for i := range out {
		out[i] = ts.T0 + float64(i)*ts.Dt
	}
	return out
}

// Clone returns a deep copy.
func (ts TimeSeries) Clone() TimeSeries {
	out := ts
	out.Data = append([]float64(nil), ts.Data...)
	return out
}

// Crop returns the samples with start <= t < end as a new series.
func (ts TimeSeries) Crop(start, end float64) (TimeSeries, error) {
	if ts.Dt <= 0 {
		return TimeSeries{}, fmt.Errorf("series: crop with dt=%g", ts.Dt)
	}

	i0 := int(math.Ceil((start - ts.T0) / ts.Dt - 1e-9))
	i1 := int(math.Ceil((end - ts.T0) / ts.Dt - 1e-9))
	i0 = max(i0, 0)
	i1 = min(i1, len(ts.Data))
	if i1 <= i0 {
		return TimeSeries{}, fmt.Errorf("%w: [%g, %g) outside [%g, %g)", ErrEmpty, start, end, ts.T0, ts.End())
	}

	return TimeSeries{
		T0:   ts.T0 + float64(i0)*ts.Dt,
		Dt:   ts.Dt,
		Data: append([]float64(nil), ts.Data[i0:i1]...),
	}, nil
}

// ArgMax returns the index of the largest sample (signed).
func (ts TimeSeries) ArgMax() int {
	best := 0
	for i, v := range ts.Data {
		if v > ts.Data[best] {
			best = i
		}
	}
	return best
}

// MaxAbs returns the largest absolute sample value.
func (ts TimeSeries) MaxAbs() float64 {
	m := 0.0
	for _, v := range ts.Data {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

// SameGrid reports whether both series share start, step and length.
func (ts TimeSeries) SameGrid(o TimeSeries) bool {
	return len(ts.Data) == len(o.Data) && ts.Dt == o.Dt && math.Abs(ts.T0-o.T0) < ts.Dt/2
}

// Subtract returns ts - o sample by sample.
func (ts TimeSeries) Subtract(o TimeSeries) (TimeSeries, error) {
	if !ts.SameGrid(o) {
		return TimeSeries{}, fmt.Errorf("%w: t0 %g/%g dt %g/%g n %d/%d",
			ErrMismatch, ts.T0, o.T0, ts.Dt, o.Dt, len(ts.Data), len(o.Data))
	}

	out := ts.Clone()
	for i := range out.Data {
		out.Data[i] -= o.Data[i]
	}
	return out, nil
}

// Add returns ts + o sample by sample.
func (ts TimeSeries) Add(o TimeSeries) (TimeSeries, error) {
	if !ts.SameGrid(o) {
		return TimeSeries{}, fmt.Errorf("%w: cannot add", ErrMismatch)
	}

	out := ts.Clone()
	vecmath.AddBlockInPlace(out.Data, o.Data)
	return out, nil
}

// Scale returns ts multiplied by f.
func (ts TimeSeries) Scale(f float64) TimeSeries {
	out := TimeSeries{T0: ts.T0, Dt: ts.Dt, Data: make([]float64, len(ts.Data))}
	vecmath.ScaleBlock(out.Data, ts.Data, f)
	return out
}

// Roll cyclically shifts the samples forward by n (negative n shifts back).
func (ts TimeSeries) Roll(n int) TimeSeries {
	out := ts
	out.Data = roll(ts.Data, n)
	return out
}

// Bandpass returns the zero-phase Butterworth bandpassed series.
func (ts TimeSeries) Bandpass(low, high float64, order int) (TimeSeries, error) {
	data, err := filter.Bandpass(ts.Data, ts.SampleRate(), low, high, order)
	if err != nil {
		return TimeSeries{}, err
	}
	return TimeSeries{T0: ts.T0, Dt: ts.Dt, Data: data}, nil
}

// Whiten divides ts by the amplitude spectral density psd. Bins outside
// [low, high] Hz are dropped; high <= 0 keeps all bins above low.
func (ts TimeSeries) Whiten(psd Spectrum, low, high float64) (TimeSeries, error) {
	data, err := filter.Whiten(ts.Data, ts.SampleRate(), psd.Data, psd.Frequencies(), filter.WithBand(low, high))
	if err != nil {
		return TimeSeries{}, err
	}
	return TimeSeries{T0: ts.T0, Dt: ts.Dt, Data: data}, nil
}

func roll[T any](in []T, n int) []T {
	size := len(in)
	out := make([]T, size)
	if size == 0 {
		return out
	}
	n %= size
	if n < 0 {
		n += size
	}
	copy(out[n:], in[:size-n])
	copy(out[:n], in[size-n:])
	return out
}
