// Package chain stores ensemble MCMC output as an iteration by walker grid
// and replays burn-in, thinning and flattening over it.
//
// Backends persist one [Step] per iteration. [Memory] keeps steps in
// process; [SQLite] writes each iteration to a single transaction so a
// killed run can resume from the last complete iteration.
package chain
