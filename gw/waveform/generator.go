package waveform

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/series"
	"github.com/cwbudde/algo-gwpe/pe/param"
)

// ErrTemplate reports that no physical waveform exists for the inputs.
var ErrTemplate = errors.New("waveform: cannot generate template")

// Frame fixes the output grid shared by every detector.
type Frame struct {
	ReferenceTime float64 // GPS time the time shift is relative to
	Dt            float64 // sample interval, s
	Duration      float64 // output length, s
	StartTime     float64 // GPS time of the first output sample
	FLower        float64 // lowest modelled frequency, Hz
}

// Samples returns the number of output samples.
func (f Frame) Samples() int {
	if f.Dt <= 0 {
		return 0
	}
	return int(math.Round(f.Duration / f.Dt))
}

// Validate rejects frames that cannot hold a template.
func (f Frame) Validate() error {
	switch {
	case !(f.Dt > 0):
		return fmt.Errorf("%w: dt=%g", ErrTemplate, f.Dt)
	case f.Samples() < 2:
		return fmt.Errorf("%w: duration=%g", ErrTemplate, f.Duration)
	case !(f.FLower > 0):
		return fmt.Errorf("%w: f_lower=%g", ErrTemplate, f.FLower)
	case f.FLower >= 0.5/f.Dt:
		return fmt.Errorf("%w: f_lower=%g above nyquist", ErrTemplate, f.FLower)
	}
	return nil
}

// FrameOf returns a frame matching the grid of ts.
func FrameOf(ts series.TimeSeries, reference, fLower float64) Frame {
	return Frame{
		ReferenceTime: reference,
		Dt:            ts.Dt,
		Duration:      ts.Duration(),
		StartTime:     ts.T0,
		FLower:        fLower,
	}
}

// Generator maps a parameter vector to detector strain on a common frame.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(p param.Vector, f Frame) (detector.Set[series.TimeSeries], error)
}

// GeneratorFunc adapts a function to [Generator].
type GeneratorFunc func(p param.Vector, f Frame) (detector.Set[series.TimeSeries], error)

// Generate calls fn.
func (fn GeneratorFunc) Generate(p param.Vector, f Frame) (detector.Set[series.TimeSeries], error) {
	return fn(p, f)
}
