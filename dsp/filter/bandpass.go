package filter

// DefaultOrder is the Butterworth order per band edge used by [Bandpass].
const DefaultOrder = 4

// Bandpass applies a zero-phase Butterworth bandpass between low and high
// (Hz) to x sampled at sampleRate. order <= 0 selects [DefaultOrder].
func Bandpass(x []float64, sampleRate, low, high float64, order int) ([]float64, error) {
	if err := validateBand(low, high, sampleRate); err != nil {
		return nil, err
	}
	if order <= 0 {
		order = DefaultOrder
	}

	c := NewCascade(ButterworthBP(low, high, order, sampleRate))
	return FiltFilt(c, x)
}
