// Package spectrum provides the Fourier-domain building blocks of the
// estimation pipeline: real and complex transforms, power-spectral-density
// estimation with Welch's method, and linear regridding of spectra.
//
// Power-of-two lengths are transformed with algo-fft; other lengths fall back
// to gonum's mixed-radix dsp/fourier. Plans are pooled per length, so the
// functions are safe for concurrent use by sampler workers.
//
// # Normalization
//
// [RealFFT] and [InverseComplex] are unnormalized on both backends. Callers
// that need a continuous-transform approximation scale by the sample
// interval themselves (see package pe/inner).
package spectrum
