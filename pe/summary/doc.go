// Package summary turns a retained sample set into deliverable estimates:
// the MAP point (from the samples or by direct optimization), central
// credible intervals, matched-filter SNR series and whitened residuals.
package summary
