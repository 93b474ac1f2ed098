package spectrum

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-gwpe/dsp/window"
	"github.com/cwbudde/algo-gwpe/internal/testutil"
)

func TestRealFFTSinePeak(t *testing.T) {
	const (
		n  = 256
		fs = 256.0
	)
	x := testutil.DeterministicSine(16, fs, 1, n)

	bins, err := RealFFT(x)
	if err != nil {
		t.Fatal(err)
	}
	if len(bins) != n/2+1 {
		t.Fatalf("bins=%d, want %d", len(bins), n/2+1)
	}

	mag := Magnitude(bins)
	peak := 0
	for k := range mag {
		if mag[k] > mag[peak] {
			peak = k
		}
	}
	if peak != 16 {
		t.Fatalf("peak bin=%d, want 16", peak)
	}
	if math.Abs(mag[16]-n/2) > 1e-9 {
		t.Fatalf("peak magnitude=%v, want %v", mag[16], n/2)
	}
}

func TestInverseRealRoundTrip(t *testing.T) {
	x := testutil.DeterministicNoise(7, 1, 100)

	bins, err := RealFFT(x)
	if err != nil {
		t.Fatal(err)
	}

	back, err := InverseReal(bins, len(x))
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, back, x, 1e-12)

	if _, err := InverseReal(bins, 10); err == nil {
		t.Fatal("expected bin count error")
	}
}

func naiveDFT(x []float64) []complex128 {
	n := len(x)
	out := make([]complex128, n/2+1)
	for k := range out {
		for j, v := range x {
			out[k] += complex(v, 0) * cmplx.Exp(complex(0, -2*math.Pi*float64(k*j)/float64(n)))
		}
	}
	return out
}

func TestTransformsAgreeAcrossLengths(t *testing.T) {
	// 64 and 256 take the power-of-two path, 48 and 100 the mixed-radix one.
	for _, n := range []int{48, 64, 100, 256} {
		x := testutil.DeterministicNoise(uint64(n), 1, n)

		bins, err := RealFFT(x)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		want := naiveDFT(x)
		for k := range want {
			if d := cmplx.Abs(bins[k] - want[k]); d > 1e-9 {
				t.Fatalf("n=%d bin %d: got %v, want %v", n, k, bins[k], want[k])
			}
		}

		back, err := InverseReal(bins, n)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		testutil.RequireSliceNearlyEqual(t, back, x, 1e-12)

		z, err := InverseComplex(bins, n)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		// Re(sum over one-sided bins) = (n*x[j] + X[0] + X[n/2]*(-1)^j)/2 for even n.
		for j := range z {
			nyq := real(bins[n/2])
			if j%2 == 1 {
				nyq = -nyq
			}
			wantRe := (float64(n)*x[j] + real(bins[0]) + nyq) / 2
			if math.Abs(real(z[j])-wantRe) > 1e-9 {
				t.Fatalf("n=%d: Re z[%d]=%v, want %v", n, j, real(z[j]), wantRe)
			}
		}
	}
}

func TestInverseComplexOfOneSidedIsAnalytic(t *testing.T) {
	const n = 64
	bins := make([]complex128, n/2+1)
	bins[4] = 1

	z, err := InverseComplex(bins, n)
	if err != nil {
		t.Fatal(err)
	}

	for j, v := range z {
		if math.Abs(cmplx.Abs(v)-1) > 1e-12 {
			t.Fatalf("|z[%d]|=%v, want 1", j, cmplx.Abs(v))
		}
	}

	if _, err := InverseComplex(make([]complex128, 10), 4); err == nil {
		t.Fatal("expected length error")
	}
}

func TestPowerAndMagnitude(t *testing.T) {
	in := []complex128{3 + 4i, 0, -1}
	testutil.RequireSliceNearlyEqual(t, Magnitude(in), []float64{5, 0, 1}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, Power(in), []float64{25, 0, 1}, 1e-12)

	if Power(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestInterpolateLinear(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{0, 10, 30}

	got, err := InterpolateLinear(x, y, []float64{-1, 0.5, 1, 1.5, 3})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{0, 5, 10, 20, 30}, 1e-12)

	if _, err := InterpolateLinear([]float64{0, 0}, []float64{1, 2}, nil); err == nil {
		t.Fatal("expected monotonic error")
	}
	if _, err := InterpolateLinear([]float64{0, 1}, []float64{1}, nil); err == nil {
		t.Fatal("expected length error")
	}
}

func TestWelchWhiteNoiseLevel(t *testing.T) {
	const (
		fs  = 256.0
		amp = 1.0
	)
	x := testutil.DeterministicNoise(42, amp, int(64*fs))

	psd, freqs, err := Welch(x, fs)
	if err != nil {
		t.Fatal(err)
	}
	if len(psd) != int(4*fs)/2+1 || len(freqs) != len(psd) {
		t.Fatalf("unexpected lengths psd=%d freqs=%d", len(psd), len(freqs))
	}
	if freqs[1] != 0.25 {
		t.Fatalf("df=%v, want 0.25", freqs[1])
	}

	// Uniform noise on [-amp, amp] has variance amp^2/3; one-sided level 2*var/fs.
	want := 2 * (amp * amp / 3) / fs
	mean := 0.0
	for _, p := range psd[1 : len(psd)-1] {
		mean += p
	}
	mean /= float64(len(psd) - 2)

	if math.Abs(mean-want)/want > 0.05 {
		t.Fatalf("mean psd=%g, want %g", mean, want)
	}
}

func TestWelchRectangularMatchesTukeyLevel(t *testing.T) {
	const fs = 128.0
	x := testutil.DeterministicNoise(3, 1, int(32*fs))

	tukey, _, err := Welch(x, fs)
	if err != nil {
		t.Fatal(err)
	}
	rect, _, err := Welch(x, fs, WithWindow(window.TypeRectangular, 0))
	if err != nil {
		t.Fatal(err)
	}

	var st, sr float64
	for k := 1; k < len(tukey)-1; k++ {
		st += tukey[k]
		sr += rect[k]
	}
	if math.Abs(st-sr)/sr > 0.1 {
		t.Fatalf("window normalization mismatch: tukey=%g rect=%g", st, sr)
	}
}

func TestWelchErrors(t *testing.T) {
	if _, _, err := Welch(make([]float64, 10), 16); !errors.Is(err, ErrShortInput) {
		t.Fatalf("expected ErrShortInput, got %v", err)
	}
	if _, _, err := Welch(make([]float64, 128), 0); err == nil {
		t.Fatal("expected sample rate error")
	}
	if _, _, err := Welch(make([]float64, 128), 16, WithOverlap(64)); err == nil {
		t.Fatal("expected overlap error")
	}
}

func TestASD(t *testing.T) {
	testutil.RequireSliceNearlyEqual(t, ASD([]float64{4, 9}), []float64{2, 3}, 0)
}
