package sampler

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-gwpe/pe/param"
)

// DefaultMaxRetries bounds the rejection loop per walker.
const DefaultMaxRetries = 10000

// InitialPositions jitters best with Gaussian noise of scale
// 1e-2*max(|x|, 0.1) per coordinate, redrawing any point outside bounds.
// It fails with [ErrInitialization] when a walker needs more than
// maxRetries draws.
func InitialPositions(best []float64, bounds []param.Range, walkers int, rng *rand.Rand, maxRetries int) ([][]float64, error) {
	if len(bounds) != len(best) {
		return nil, fmt.Errorf("%w: %d bounds for %d parameters", ErrInitialization, len(bounds), len(best))
	}
	if walkers <= 0 {
		return nil, fmt.Errorf("%w: walkers=%d", ErrInitialization, walkers)
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	scale := make([]float64, len(best))
	for i, x := range best {
		scale[i] = 1e-2 * math.Max(math.Abs(x), 0.1)
	}

	out := make([][]float64, walkers)
	for w := range out {
		p, ok := jitter(best, scale, bounds, rng, maxRetries)
		if !ok {
			return nil, fmt.Errorf("%w: walker %d outside bounds after %d draws", ErrInitialization, w, maxRetries)
		}
		out[w] = p
	}
	return out, nil
}

func jitter(best, scale []float64, bounds []param.Range, rng *rand.Rand, tries int) ([]float64, bool) {
	p := make([]float64, len(best))
	for range tries {
		inside := true
		for i := range p {
			p[i] = best[i] + rng.NormFloat64()*scale[i]
			if !bounds[i].Contains(p[i]) {
				inside = false
			}
		}
		if inside {
			return p, true
		}
	}
	return nil, false
}
