package summary

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-gwpe/pe/chain"
	"github.com/cwbudde/algo-gwpe/pe/param"
)

// ErrNoSamples is returned when a summary needs at least one sample.
var ErrNoSamples = errors.New("summary: no samples")

// Method records how a MAP point was obtained.
type Method string

const (
	MethodSamples      Method = "samples"
	MethodOptimization Method = "nelder-mead"
)

// DefaultLevels are the 1-sigma and 2-sigma equivalent central intervals.
var DefaultLevels = []float64{0.68, 0.95}

// Interval is a central credible interval of one parameter.
type Interval struct {
	Level float64
	Lo    float64
	Hi    float64
}

// Estimate is a point estimate with its marginal intervals. Intervals is
// indexed by parameter, then by level.
type Estimate struct {
	Method    Method
	Params    param.Vector
	LogPost   float64
	Intervals [param.Dim][]Interval
}

// MAPFromSamples returns the first sample with the largest log posterior.
// NaN log posteriors are skipped.
func MAPFromSamples(samples []chain.Sample) (Estimate, error) {
	best := -1
	for i, s := range samples {
		if math.IsNaN(s.LogPost) {
			continue
		}
		if best < 0 || s.LogPost > samples[best].LogPost {
			best = i
		}
	}
	if best < 0 {
		return Estimate{}, ErrNoSamples
	}

	v, err := samples[best].Vector()
	if err != nil {
		return Estimate{}, fmt.Errorf("summary: %w", err)
	}
	return Estimate{Method: MethodSamples, Params: v, LogPost: samples[best].LogPost}, nil
}

// CredibleIntervals returns, per parameter, the central interval
// [(1-l)/2, (1+l)/2] of the marginal empirical distribution for each
// level l in (0, 1).
func CredibleIntervals(samples []chain.Sample, levels []float64) ([][]Interval, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	for _, l := range levels {
		if !(l > 0 && l < 1) {
			return nil, fmt.Errorf("summary: credible level %g outside (0, 1)", l)
		}
	}

	dim := len(samples[0].Params)
	out := make([][]Interval, dim)
	col := make([]float64, len(samples))
	for i := range dim {
		for j, s := range samples {
			if len(s.Params) != dim {
				return nil, fmt.Errorf("summary: sample %d has %d parameters, want %d", j, len(s.Params), dim)
			}
			col[j] = s.Params[i]
		}
		sort.Float64s(col)

		out[i] = make([]Interval, len(levels))
		for k, l := range levels {
			out[i][k] = Interval{
				Level: l,
				Lo:    stat.Quantile((1-l)/2, stat.LinInterp, col, nil),
				Hi:    stat.Quantile((1+l)/2, stat.LinInterp, col, nil),
			}
		}
	}
	return out, nil
}

// Summarize discards burnIn iterations, thins by k, flattens, and returns
// the sample-based MAP with intervals at levels, plus the retained samples.
func Summarize(c *chain.Chain, burnIn, thin int, levels []float64) (Estimate, []chain.Sample, error) {
	samples := c.Discard(burnIn).Thin(thin).Flatten()

	est, err := MAPFromSamples(samples)
	if err != nil {
		return Estimate{}, nil, err
	}
	if err := est.attach(samples, levels); err != nil {
		return Estimate{}, nil, err
	}
	return est, samples, nil
}

func (e *Estimate) attach(samples []chain.Sample, levels []float64) error {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	iv, err := CredibleIntervals(samples, slices.Clone(levels))
	if err != nil {
		return err
	}
	if len(iv) != param.Dim {
		return fmt.Errorf("summary: %d-dimensional samples, want %d", len(iv), param.Dim)
	}
	copy(e.Intervals[:], iv)
	return nil
}

// WithIntervals returns e with intervals computed from samples.
func (e Estimate) WithIntervals(samples []chain.Sample, levels []float64) (Estimate, error) {
	if err := e.attach(samples, levels); err != nil {
		return Estimate{}, err
	}
	return e, nil
}

// Interval returns the interval of parameter index at level, if present.
func (e Estimate) Interval(index int, level float64) (Interval, bool) {
	if index < 0 || index >= param.Dim {
		return Interval{}, false
	}
	for _, iv := range e.Intervals[index] {
		if math.Abs(iv.Level-level) < 1e-9 {
			return iv, true
		}
	}
	return Interval{}, false
}
