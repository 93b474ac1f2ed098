package filter_test

import (
	"fmt"

	"github.com/cwbudde/algo-gwpe/dsp/filter"
)

func ExampleButterworthBP() {
	c := filter.NewCascade(filter.ButterworthBP(25, 90, 4, 1024))
	fmt.Printf("order=%d\n", c.Order())
	fmt.Printf("%.2f dB at 25 Hz\n", filter.MagnitudeDB(c, 25, 1024))
	// Output:
	// order=8
	// -3.01 dB at 25 Hz
}
