// Package waveform produces per-detector template strain for a parameter
// vector.
//
// [Generator] is the contract consumed by the likelihood. [Newtonian] is a
// reference implementation: a leading-order inspiral chirp up to the
// innermost stable circular orbit followed by an exponentially damped
// ringdown, projected onto each detector with its antenna pattern and
// light travel delay.
package waveform
