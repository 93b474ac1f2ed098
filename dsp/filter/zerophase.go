package filter

// FiltFilt runs the cascade forward then backward over x and returns a new
// slice. The input is extended at both ends by odd reflection to limit edge
// transients. State is reset before each pass.
func FiltFilt(c *Cascade, x []float64) ([]float64, error) {
	pad := 3 * (2*len(c.sections) + 1)
	if pad > len(x)-1 {
		pad = len(x) - 1
	}
	if pad < 0 {
		return nil, errShortSignal
	}

	ext := oddExtend(x, pad)

	c.Reset()
	c.ProcessBlock(ext)
	reverse(ext)

	c.Reset()
	c.ProcessBlock(ext)
	reverse(ext)
	c.Reset()

	out := make([]float64, len(x))
	copy(out, ext[pad:pad+len(x)])
	return out, nil
}

// oddExtend returns 2*x[0]-x[pad..1], x, 2*x[n-1]-x[n-2..n-1-pad].
func oddExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*pad)

	for i := 0; i < pad; i++ {
		ext[i] = 2*x[0] - x[pad-i]
	}
	copy(ext[pad:], x)
	for i := 0; i < pad; i++ {
		ext[pad+n+i] = 2*x[n-1] - x[n-2-i]
	}
	return ext
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
