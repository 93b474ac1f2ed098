package frequency_test

import (
	"fmt"

	frequencystats "github.com/cwbudde/algo-gwpe/stats/frequency"
)

func ExampleCalculate() {
	power := []float64{0, 1, 2, 1, 0}
	s := frequencystats.Calculate(power, 20, 10)
	fmt.Printf("peak=%.0f centroid=%.0f rolloff=%.0f\n", s.PeakFrequency, s.Centroid, s.Rolloff)

	// Output:
	// peak=40 centroid=40 rolloff=50
}

func ExampleFlatness() {
	flat := frequencystats.Flatness([]float64{2, 2, 2, 2})
	fmt.Printf("flatness=%.1f\n", flat)

	// Output:
	// flatness=1.0
}
