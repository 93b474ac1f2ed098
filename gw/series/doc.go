// Package series holds uniformly sampled time and frequency series.
//
// Values are plain structs with a start coordinate, a step and data; methods
// return new series and never alias the receiver's data unless documented.
package series
