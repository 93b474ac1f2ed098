package posterior

import (
	"math"

	"github.com/cwbudde/algo-gwpe/pe/param"
)

// LogLikelihoodFunc evaluates a log likelihood.
type LogLikelihoodFunc func(param.Vector) float64

// Posterior combines [LogPrior] with a log likelihood.
type Posterior struct {
	prior      func(param.Vector) float64
	likelihood LogLikelihoodFunc
}

// New returns a posterior over likelihood with the default prior.
func New(likelihood LogLikelihoodFunc) *Posterior {
	return &Posterior{prior: LogPrior, likelihood: likelihood}
}

// FromLikelihood wraps a matched-filter likelihood.
func FromLikelihood(lk *Likelihood) *Posterior {
	return New(lk.LogLikelihood)
}

// LogPosterior returns log prior + log likelihood, evaluating the
// likelihood only when the prior is finite.
func (p *Posterior) LogPosterior(x param.Vector) float64 {
	lp := p.prior(x)
	if math.IsInf(lp, 0) || math.IsNaN(lp) {
		return math.Inf(-1)
	}

	ll := p.likelihood(x)
	if math.IsNaN(ll) {
		return math.Inf(-1)
	}
	return lp + ll
}

// LogProb adapts LogPosterior to flat slices; a wrong length yields -Inf.
func (p *Posterior) LogProb(x []float64) float64 {
	v, err := param.FromSlice(x)
	if err != nil {
		return math.Inf(-1)
	}
	return p.LogPosterior(v)
}
