package spectrum_test

import (
	"fmt"

	"github.com/cwbudde/algo-gwpe/dsp/spectrum"
)

func ExampleMagnitude() {
	bins := []complex128{1 + 0i, 0 + 1i, -1 + 0i}
	mag := spectrum.Magnitude(bins)
	fmt.Printf("%.1f %.1f %.1f\n", mag[0], mag[1], mag[2])
	// Output:
	// 1.0 1.0 1.0
}

func ExampleBinFrequencies() {
	f := spectrum.BinFrequencies(8, 16)
	fmt.Println(f)
	// Output:
	// [0 2 4 6 8]
}
