package artifact

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-gwpe/internal/columnar"
	"github.com/cwbudde/algo-gwpe/pe/param"
	"github.com/cwbudde/algo-gwpe/pe/summary"
)

// Interval levels stored in the estimate table.
const (
	OneSigma = 0.68
	TwoSigma = 0.95
)

// EstimateRow is one parameter of a point estimate. Missing bounds are NaN.
type EstimateRow struct {
	Parameter    string  `parquet:"parameter"`
	MAP          float64 `parquet:"map"`
	Lo1Sigma     float64 `parquet:"lo_1sigma"`
	Hi1Sigma     float64 `parquet:"hi_1sigma"`
	Lo2Sigma     float64 `parquet:"lo_2sigma"`
	Hi2Sigma     float64 `parquet:"hi_2sigma"`
	Method       string  `parquet:"method"`
	LogPosterior float64 `parquet:"log_posterior"`
}

// EstimateRows flattens est into one row per parameter.
func EstimateRows(est summary.Estimate) []EstimateRow {
	rows := make([]EstimateRow, param.Dim)
	for i, name := range param.Names {
		one, ok1 := est.Interval(i, OneSigma)
		two, ok2 := est.Interval(i, TwoSigma)
		rows[i] = EstimateRow{
			Parameter:    name,
			MAP:          est.Params[i],
			Lo1Sigma:     bound(one.Lo, ok1),
			Hi1Sigma:     bound(one.Hi, ok1),
			Lo2Sigma:     bound(two.Lo, ok2),
			Hi2Sigma:     bound(two.Hi, ok2),
			Method:       string(est.Method),
			LogPosterior: est.LogPost,
		}
	}
	return rows
}

func bound(v float64, ok bool) float64 {
	if !ok {
		return math.NaN()
	}
	return v
}

// WriteEstimate writes est to a parquet file at path.
func WriteEstimate(path string, est summary.Estimate, opts ...Option) error {
	return columnar.WriteFile(path, EstimateRows(est), apply(opts).codec)
}

// ReadEstimate reads a table written by [WriteEstimate]. Rows may appear
// in any order but every parameter must be present exactly once.
func ReadEstimate(path string) (summary.Estimate, error) {
	rows, err := columnar.ReadFile[EstimateRow](path)
	if err != nil {
		return summary.Estimate{}, fmt.Errorf("artifact: %w", err)
	}

	var (
		est  summary.Estimate
		seen [param.Dim]bool
	)
	for _, r := range rows {
		i, err := param.Index(r.Parameter)
		if err != nil {
			return summary.Estimate{}, fmt.Errorf("artifact: %w", err)
		}
		if seen[i] {
			return summary.Estimate{}, fmt.Errorf("artifact: duplicate parameter %q", r.Parameter)
		}
		seen[i] = true

		est.Method = summary.Method(r.Method)
		est.LogPost = r.LogPosterior
		est.Params[i] = r.MAP
		for _, iv := range []summary.Interval{
			{Level: OneSigma, Lo: r.Lo1Sigma, Hi: r.Hi1Sigma},
			{Level: TwoSigma, Lo: r.Lo2Sigma, Hi: r.Hi2Sigma},
		} {
			if !math.IsNaN(iv.Lo) && !math.IsNaN(iv.Hi) {
				est.Intervals[i] = append(est.Intervals[i], iv)
			}
		}
	}
	for i, ok := range seen {
		if !ok {
			return summary.Estimate{}, fmt.Errorf("artifact: parameter %q missing", param.Names[i])
		}
	}
	return est, nil
}
