package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBand is returned for corner frequencies outside (0, Nyquist)
	// or with low >= high.
	ErrInvalidBand = errors.New("filter: invalid band")

	errShortSignal = errors.New("filter: signal too short")
)

func validateBand(low, high, sampleRate float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %f", ErrInvalidBand, sampleRate)
	}
	if low <= 0 || high >= sampleRate/2 || low >= high {
		return fmt.Errorf("%w: [%g, %g] Hz at %g Hz", ErrInvalidBand, low, high, sampleRate)
	}
	return nil
}
