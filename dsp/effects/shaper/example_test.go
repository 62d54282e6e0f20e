package shaper_test

import (
	"fmt"

	"github.com/cwbudde/algo-nldsp/dsp/effects/shaper"
)

func ExampleDoubleSoftClipper() {
	c, err := shaper.NewDoubleSoftClipper(shaper.WithUpperLimit(0.5))
	if err != nil {
		panic(err)
	}

	fmt.Printf("%.2f %.2f\n", c.Transfer(3), c.Transfer(-3))
	// Output: 0.50 -1.00
}
