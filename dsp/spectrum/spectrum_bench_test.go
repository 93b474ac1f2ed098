package spectrum

import (
	"testing"

	"github.com/cwbudde/algo-gwpe/internal/testutil"
)

func BenchmarkRealFFT(b *testing.B) {
	sizes := []struct {
		name string
		size int
	}{
		{"4K", 4096},
		{"16K", 16384},
	}

	for _, testCase := range sizes {
		b.Run(testCase.name, func(b *testing.B) {
			x := testutil.DeterministicNoise(1, 1, testCase.size)

			b.SetBytes(int64(testCase.size * 8))
			b.ResetTimer()

			for range b.N {
				_, _ = RealFFT(x)
			}
		})
	}
}

func BenchmarkWelch(b *testing.B) {
	x := testutil.DeterministicNoise(1, 1, 32*4096)
	b.ResetTimer()

	for range b.N {
		_, _, _ = Welch(x, 4096)
	}
}
