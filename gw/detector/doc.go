// Package detector identifies the interferometers of the analysis and
// models their geometry.
//
// [Detector] is a closed enumeration and [Set] a fixed-size array keyed by
// it, so per-detector data never goes through string-keyed maps. The
// geometry functions return antenna patterns and Earth-centre light travel
// times for a source at a given sky position and GPS time.
package detector
