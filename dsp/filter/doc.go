// Package filter provides IIR filtering and whitening for strain time series.
//
// Butterworth designs are cascades of second-order sections ([Coefficients])
// run in Direct Form II Transposed by [Section]. [FiltFilt] applies a
// cascade forward and backward for zero phase, which is how [Bandpass]
// conditions data before cropping. [Whiten] divides a tapered spectrum by
// the amplitude spectral density and returns to the time domain.
package filter
