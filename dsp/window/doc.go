// Package window provides the taper functions applied to strain segments
// before Fourier transformation.
//
// Only the shapes used by the estimation pipeline are implemented:
//
//   - [TypeRectangular]: boxcar, used for PSD comparisons
//   - [TypeHann]:        raised cosine
//   - [TypeTukey]:       tapered cosine, the default with alpha = 1/4
//
// Windows are generated in symmetric form by default. [WithPeriodic] selects
// the periodic (DFT-even) form, which is what spectral estimators expect.
package window
