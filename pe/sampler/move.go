package sampler

import (
	"math"
	"math/rand/v2"
)

// Move proposes new positions for the walkers in s using the
// complementary half c. It returns the proposals and the log of the
// proposal-density ratio that enters the acceptance test.
type Move interface {
	Propose(rng *rand.Rand, s, c [][]float64) (q [][]float64, logFactor []float64)
}

// WeightedMove pairs a move with its selection weight.
type WeightedMove struct {
	Move   Move
	Weight float64
}

// DefaultMoves is the 0.8 stretch / 0.2 differential-evolution mixture.
func DefaultMoves(dim int) []WeightedMove {
	return []WeightedMove{
		{Move: StretchMove{A: 2}, Weight: 0.8},
		{Move: NewDEMove(dim), Weight: 0.2},
	}
}

// StretchMove is the Goodman and Weare affine-invariant stretch.
type StretchMove struct {
	A float64 // scale, > 1
}

func (m StretchMove) Propose(rng *rand.Rand, s, c [][]float64) ([][]float64, []float64) {
	a := m.A
	if !(a > 1) {
		a = 2
	}

	q := make([][]float64, len(s))
	factor := make([]float64, len(s))
	for k, x := range s {
		u := rng.Float64()
		z := (a - 1) * u
		z = (z + 1) * (z + 1) / a

		other := c[rng.IntN(len(c))]
		y := make([]float64, len(x))
		for i := range x {
			y[i] = other[i] + z*(x[i]-other[i])
		}
		q[k] = y
		factor[k] = float64(len(x)-1) * math.Log(z)
	}
	return q, factor
}

// DEMove is a differential-evolution move along the difference of two
// complementary walkers, scaled by Gamma0*(1 + Sigma*N(0,1)).
type DEMove struct {
	Sigma  float64
	Gamma0 float64
}

// NewDEMove returns the default DE move for dim parameters.
func NewDEMove(dim int) DEMove {
	return DEMove{Sigma: 1e-5, Gamma0: 2.38 / math.Sqrt(2*float64(dim))}
}

func (m DEMove) Propose(rng *rand.Rand, s, c [][]float64) ([][]float64, []float64) {
	q := make([][]float64, len(s))
	for k, x := range s {
		i := rng.IntN(len(c))
		j := rng.IntN(len(c) - 1)
		if j >= i {
			j++
		}

		gamma := m.Gamma0 * (1 + m.Sigma*rng.NormFloat64())
		y := make([]float64, len(x))
		for d := range x {
			y[d] = x[d] + gamma*(c[i][d]-c[j][d])
		}
		q[k] = y
	}
	return q, make([]float64, len(s))
}

func pickMove(rng *rand.Rand, moves []WeightedMove) Move {
	var total float64
	for _, m := range moves {
		total += m.Weight
	}
	r := rng.Float64() * total
	for _, m := range moves {
		if r < m.Weight {
			return m.Move
		}
		r -= m.Weight
	}
	return moves[len(moves)-1].Move
}
