package design_test

import (
	"fmt"

	"github.com/cwbudde/algo-nldsp/dsp/filter/design"
)

func ExampleBell() {
	c := design.Bell(1000, 1, 2, 48000)

	fmt.Printf("100 Hz:   %.2f dB\n", c.MagnitudeDB(100, 48000))
	fmt.Printf("1000 Hz:  %.2f dB\n", c.MagnitudeDB(1000, 48000))
	// Output:
	// 100 Hz:   0.13 dB
	// 1000 Hz:  6.02 dB
}
