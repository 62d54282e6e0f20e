package spectrum_test

import (
	"fmt"

	"github.com/cwbudde/algo-nldsp/dsp/spectrum"
)

func ExampleFIRResponse() {
	bins, err := spectrum.FIRResponse([]float64{0.5, 0.5}, 8, 8000)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("%.0f Hz: %.1f dB, %.0f Hz: %.1f dB\n", bins[0].Freq, bins[0].DB, bins[2].Freq, bins[2].DB)
	// Output:
	// 0 Hz: 0.0 dB, 2000 Hz: -3.0 dB
}
