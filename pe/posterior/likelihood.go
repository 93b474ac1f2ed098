package posterior

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-gwpe/gw/detector"
	"github.com/cwbudde/algo-gwpe/gw/series"
	"github.com/cwbudde/algo-gwpe/gw/waveform"
	"github.com/cwbudde/algo-gwpe/internal/logging"
	"github.com/cwbudde/algo-gwpe/pe/analysis"
	"github.com/cwbudde/algo-gwpe/pe/param"
)

// Term holds the two inner products of one detector.
type Term struct {
	HH float64 // <h, h>
	HS float64 // <h, s>
}

// LogL returns <h,s> - <h,h>/2.
func (t Term) LogL() float64 {
	return t.HS - t.HH/2
}

// Option configures a [Likelihood].
type Option func(*Likelihood)

// WithLogger sets the logger that records absorbed failures at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(lk *Likelihood) { lk.logger = l }
}

// Likelihood is the Gaussian-noise matched-filter log likelihood over the
// detectors included in an analysis context.
type Likelihood struct {
	ac     *analysis.Context
	gen    waveform.Generator
	logger *zap.Logger
}

// NewLikelihood binds a generator to an analysis context.
func NewLikelihood(ac *analysis.Context, gen waveform.Generator, opts ...Option) *Likelihood {
	lk := &Likelihood{ac: ac, gen: gen}
	for _, opt := range opts {
		if opt != nil {
			opt(lk)
		}
	}
	lk.logger = logging.OrNop(lk.logger)
	return lk
}

// Context returns the analysis context.
func (lk *Likelihood) Context() *analysis.Context { return lk.ac }

// Generator returns the template generator.
func (lk *Likelihood) Generator() waveform.Generator { return lk.gen }

// LogLikelihood returns the summed log likelihood of p, or -Inf when the
// template or any inner product cannot be evaluated.
func (lk *Likelihood) LogLikelihood(p param.Vector) float64 {
	terms, err := lk.Terms(p)
	if err != nil {
		lk.logger.Debug("likelihood rejected", zap.Error(err))
		return math.Inf(-1)
	}

	var sum float64
	for _, d := range lk.ac.Included() {
		sum += terms[d].LogL()
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return math.Inf(-1)
	}
	return sum
}

// Terms returns the inner products of every included detector. Generator
// panics are returned as errors wrapping [waveform.ErrTemplate].
func (lk *Likelihood) Terms(p param.Vector) (detector.Set[Term], error) {
	var out detector.Set[Term]

	tmpl, err := lk.Template(p)
	if err != nil {
		return out, err
	}

	for _, d := range lk.ac.Included() {
		out[d], err = lk.term(d, tmpl[d])
		if err != nil {
			return out, fmt.Errorf("posterior: %s: %w", d, err)
		}
	}
	return out, nil
}

// Template generates the per-detector template of p on the analysis frame.
func (lk *Likelihood) Template(p param.Vector) (tmpl detector.Set[series.TimeSeries], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: generator panic: %v", waveform.ErrTemplate, r)
		}
	}()

	return lk.gen.Generate(p, lk.ac.Frame())
}

func (lk *Likelihood) term(d detector.Detector, h series.TimeSeries) (Term, error) {
	e := lk.ac.Engine()
	hf, err := e.Transform(h)
	if err != nil {
		return Term{}, err
	}

	w := lk.ac.Weighting(d)
	hh, err := w.Product(hf, hf)
	if err != nil {
		return Term{}, err
	}
	hs, err := w.Product(lk.ac.DataFFT(d), hf)
	if err != nil {
		return Term{}, err
	}
	return Term{HH: hh, HS: hs}, nil
}
