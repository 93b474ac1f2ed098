// Package strain supplies detector strain and noise spectra.
//
// [Provider] loads the raw strain of one detector. [ParquetProvider] reads
// per-detector tables written by [WriteParquet]; [Synthetic] draws coloured
// Gaussian noise from an analytic sensitivity curve and can add an
// injected template. [EstimatePSD] computes the Welch PSD used to weight
// inner products.
package strain
