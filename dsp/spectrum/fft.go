package spectrum

import (
	"fmt"
	"math/bits"
	"math/cmplx"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	fastPlans    sync.Map // int -> *sync.Pool of *algofft.Plan[complex128]
	realPlans    sync.Map // int -> *sync.Pool of *fourier.FFT
	complexPlans sync.Map // int -> *sync.Pool of *fourier.CmplxFFT
)

func isPowerOf2(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

// fastPlan returns a pooled algo-fft plan for power-of-two lengths. Other
// lengths, or lengths the library refuses, return a nil plan and are
// served by gonum.
func fastPlan(n int) (*algofft.Plan[complex128], func()) {
	if !isPowerOf2(n) {
		return nil, nil
	}

	v, _ := fastPlans.LoadOrStore(n, &sync.Pool{
		New: func() any {
			plan, err := algofft.NewPlan64(n)
			if err != nil {
				return nil
			}
			return plan
		},
	})
	pool := v.(*sync.Pool)
	plan, _ := pool.Get().(*algofft.Plan[complex128])
	if plan == nil {
		return nil, nil
	}

	return plan, func() { pool.Put(plan) }
}

func realPlan(n int) (*fourier.FFT, func()) {
	v, _ := realPlans.LoadOrStore(n, &sync.Pool{
		New: func() any { return fourier.NewFFT(n) },
	})
	pool := v.(*sync.Pool)
	plan := pool.Get().(*fourier.FFT)

	return plan, func() { pool.Put(plan) }
}

func complexPlan(n int) (*fourier.CmplxFFT, func()) {
	v, _ := complexPlans.LoadOrStore(n, &sync.Pool{
		New: func() any { return fourier.NewCmplxFFT(n) },
	})
	pool := v.(*sync.Pool)
	plan := pool.Get().(*fourier.CmplxFFT)

	return plan, func() { pool.Put(plan) }
}

// RealFFT returns the one-sided DFT X[k] = sum x[n] exp(-2*pi*i*k*n/N) for
// k in [0, N/2]. The result has N/2+1 bins.
func RealFFT(x []float64) ([]complex128, error) {
	n := len(x)
	if n == 0 {
		return nil, fmt.Errorf("spectrum: fft of empty sequence")
	}

	if plan, release := fastPlan(n); plan != nil {
		defer release()

		buf := make([]complex128, n)
		for i, v := range x {
			buf[i] = complex(v, 0)
		}
		if err := plan.Forward(buf, buf); err != nil {
			return nil, fmt.Errorf("spectrum: forward fft: %w", err)
		}
		return buf[: n/2+1 : n/2+1], nil
	}

	plan, release := realPlan(n)
	defer release()

	return plan.Coefficients(nil, x), nil
}

// InverseReal reconstructs a length-n real sequence from one-sided bins.
// The result is normalized so that InverseReal(RealFFT(x), len(x)) == x.
func InverseReal(bins []complex128, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("spectrum: inverse length must be > 0: %d", n)
	}
	if len(bins) != n/2+1 {
		return nil, fmt.Errorf("spectrum: inverse expects %d bins, got %d", n/2+1, len(bins))
	}

	if plan, release := fastPlan(n); plan != nil {
		defer release()

		full := make([]complex128, n)
		copy(full, bins)
		for k := n/2 + 1; k < n; k++ {
			full[k] = cmplx.Conj(bins[n-k])
		}
		if err := plan.Inverse(full, full); err != nil {
			return nil, fmt.Errorf("spectrum: inverse fft: %w", err)
		}

		out := make([]float64, n)
		for i, c := range full {
			out[i] = real(c)
		}
		return out, nil
	}

	plan, release := realPlan(n)
	defer release()

	out := plan.Sequence(nil, bins)
	inv := 1 / float64(n)
	for i := range out {
		out[i] *= inv
	}

	return out, nil
}

// InverseComplex evaluates y[j] = sum_k X[k] exp(+2*pi*i*k*j/n) over a
// length-n grid, treating bins beyond len(X) as zero. Feeding one-sided bins
// yields the analytic (complex) signal used by matched filtering.
// The transform is unnormalized.
func InverseComplex(bins []complex128, n int) ([]complex128, error) {
	if n <= 0 {
		return nil, fmt.Errorf("spectrum: inverse length must be > 0: %d", n)
	}
	if len(bins) > n {
		return nil, fmt.Errorf("spectrum: %d bins exceed inverse length %d", len(bins), n)
	}

	full := make([]complex128, n)
	copy(full, bins)

	if plan, release := fastPlan(n); plan != nil {
		defer release()

		if err := plan.Inverse(full, full); err != nil {
			return nil, fmt.Errorf("spectrum: inverse fft: %w", err)
		}
		// algo-fft normalizes its inverse by 1/n.
		scale := complex(float64(n), 0)
		for i := range full {
			full[i] *= scale
		}
		return full, nil
	}

	plan, release := complexPlan(n)
	defer release()

	return plan.Sequence(nil, full), nil
}

// BinFrequencies returns the frequencies (Hz) of the one-sided bins of a
// length-n transform sampled at sampleRate.
func BinFrequencies(n int, sampleRate float64) []float64 {
	if n <= 0 || sampleRate <= 0 {
		return nil
	}

	out := make([]float64, n/2+1)
	df := sampleRate / float64(n)
	for i := range out {
		out[i] = float64(i) * df
	}

	return out
}
