package time

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-gwpe/internal/testutil"
)

func TestCalculateEmpty(t *testing.T) {
	if s := Calculate(nil); s != (Stats{}) {
		t.Fatalf("empty stats = %+v", s)
	}
}

func TestCalculateSingleSample(t *testing.T) {
	s := Calculate([]float64{-3})
	if s.Length != 1 || s.Mean != -3 || s.Peak != 3 || s.RMS != 3 || s.CrestFactor != 1 {
		t.Fatalf("stats = %+v", s)
	}
	if !math.IsNaN(s.StdDev) || !math.IsNaN(s.ExcessKurtosis) {
		t.Fatalf("moments should be undefined: %+v", s)
	}
}

func TestCalculateSine(t *testing.T) {
	x := testutil.DeterministicSine(25, 1000, 2, 4000)
	s := Calculate(x)

	testutil.RequireNearlyEqual(t, s.RMS, math.Sqrt2, 1e-9)
	testutil.RequireNearlyEqual(t, s.Peak, 2, 1e-9)
	testutil.RequireNearlyEqual(t, s.CrestFactor, math.Sqrt2, 1e-9)
	testutil.RequireNearlyEqual(t, s.Mean, 0, 1e-12)
	// A sinusoid is platykurtic: excess kurtosis -1.5.
	testutil.RequireNearlyEqual(t, s.ExcessKurtosis, -1.5, 1e-2)
	if s.ZeroCrossings < 198 || s.ZeroCrossings > 200 {
		t.Fatalf("zero crossings = %d, want ~199", s.ZeroCrossings)
	}
}

func TestCalculateGaussian(t *testing.T) {
	s := Calculate(testutil.GaussianNoise(5, 1, 1<<16))

	testutil.RequireNearlyEqual(t, s.StdDev, 1, 0.02)
	testutil.RequireNearlyEqual(t, s.Skewness, 0, 0.05)
	testutil.RequireNearlyEqual(t, s.ExcessKurtosis, 0, 0.1)
}

func TestZeroCrossingsSkipsZeros(t *testing.T) {
	tests := []struct {
		in   []float64
		want int
	}{
		{[]float64{1, 0, -1}, 1},
		{[]float64{1, 0, 1}, 0},
		{[]float64{0, 0, 0}, 0},
		{[]float64{-1, 2, -3, 4}, 3},
	}
	for _, tt := range tests {
		if got := ZeroCrossings(tt.in); got != tt.want {
			t.Errorf("ZeroCrossings(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCrestFactorSilence(t *testing.T) {
	if got := CrestFactor(make([]float64, 8)); got != 0 {
		t.Fatalf("crest of silence = %v", got)
	}
}
