// Package inner computes noise-weighted inner products of real time series.
//
// A series is tapered with a Tukey window, transformed with the one-sided
// FFT scaled to strain/Hz, and cropped below the lower cutoff frequency.
// The inner product of two transforms on the same grid is
//
//	<a, b> = 4 Re sum a(f) conj(b(f)) / S(f) df
//
// where S is the one-sided PSD regridded onto the transform bins.
// A cutoff above the available band, or a PSD that is zero, negative or
// non-finite on the grid, yields [ErrDegenerateSpectrum].
package inner
