// Package sampler runs an affine-invariant ensemble MCMC over a log
// probability.
//
// Each iteration splits the walkers into two halves and updates one half
// against the other with a move drawn from a weighted mixture (stretch and
// differential evolution by default). Log-probability evaluations within a
// half are independent and fan out over a bounded worker pool; the
// coordinator joins them, applies the acceptance rule and appends the
// iteration to a [chain.Backend] before starting the next one.
//
// All randomness of iteration i comes from a PCG stream seeded with
// (seed, i), so a run resumed from its backing store reproduces the
// uninterrupted run exactly.
package sampler
