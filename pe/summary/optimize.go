package summary

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/cwbudde/algo-gwpe/pe/param"
)

// rejected replaces -Inf log posteriors so the simplex stays comparable.
const rejected = 1e300

// OptimizeOption configures [MAPByOptimization].
type OptimizeOption func(*optimizeConfig)

type optimizeConfig struct {
	evaluations int
	simplex     float64
	tolerance   float64
}

// WithMaxEvaluations bounds the number of log-posterior evaluations.
func WithMaxEvaluations(n int) OptimizeOption {
	return func(c *optimizeConfig) {
		if n > 0 {
			c.evaluations = n
		}
	}
}

// WithSimplexSize sets the initial simplex edge along each axis as a
// fraction of max(|x|, 0.1) at the start point.
func WithSimplexSize(s float64) OptimizeOption {
	return func(c *optimizeConfig) {
		if s > 0 {
			c.simplex = s
		}
	}
}

// WithTolerance sets the absolute change in -log posterior treated as
// converged.
func WithTolerance(tol float64) OptimizeOption {
	return func(c *optimizeConfig) {
		if tol > 0 {
			c.tolerance = tol
		}
	}
}

// MAPByOptimization maximizes logPost with Nelder-Mead from start.
func MAPByOptimization(logPost func(param.Vector) float64, start param.Vector, opts ...OptimizeOption) (Estimate, error) {
	cfg := optimizeConfig{evaluations: 20000, simplex: 0.05, tolerance: 1e-9}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if v := logPost(start); math.IsInf(v, -1) || math.IsNaN(v) {
		return Estimate{}, fmt.Errorf("summary: start point has log posterior %g", v)
	}

	objective := func(x []float64) float64 {
		v, err := param.FromSlice(x)
		if err != nil {
			return rejected
		}
		lp := logPost(v)
		if math.IsNaN(lp) || math.IsInf(lp, -1) {
			return rejected
		}
		return -lp
	}
	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		FuncEvaluations: cfg.evaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.tolerance,
			Iterations: 200,
		},
	}

	vertices, values := simplex(objective, start.Slice(), cfg.simplex)
	method := &optimize.NelderMead{InitialVertices: vertices, InitialValues: values}

	res, err := optimize.Minimize(problem, start.Slice(), settings, method)
	if res == nil {
		return Estimate{}, fmt.Errorf("summary: nelder-mead: %w", err)
	}

	v, verr := param.FromSlice(res.X)
	if verr != nil {
		return Estimate{}, fmt.Errorf("summary: %w", verr)
	}
	if res.F >= rejected {
		return Estimate{}, fmt.Errorf("summary: nelder-mead ended outside the prior support (%v)", res.Status)
	}
	return Estimate{Method: MethodOptimization, Params: v, LogPost: -res.F}, nil
}

// simplex builds the start point plus one vertex per axis, each offset by
// size*max(|x_i|, 0.1).
func simplex(f func([]float64) float64, x0 []float64, size float64) ([][]float64, []float64) {
	vertices := make([][]float64, len(x0)+1)
	values := make([]float64, len(x0)+1)

	vertices[0] = append([]float64(nil), x0...)
	values[0] = f(vertices[0])
	for i := range x0 {
		v := append([]float64(nil), x0...)
		v[i] += size * math.Max(math.Abs(x0[i]), 0.1)
		vertices[i+1] = v
		values[i+1] = f(v)
	}
	return vertices, values
}
