// Package posterior evaluates the log prior, log likelihood and log
// posterior of a source parameter vector.
//
// Every numerical failure is absorbed as -Inf: a rejected prior, a
// generator error or panic, a degenerate spectrum, or a non-finite sum.
// The posterior never evaluates the likelihood when the prior rejects a
// point.
package posterior
