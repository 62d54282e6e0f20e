package match_test

import (
	"fmt"

	"github.com/cwbudde/algo-nldsp/dsp/effects/match"
)

func ExampleCopyEQ() {
	eq, err := match.NewCopyEQ(44100, match.WithBaseOrder(8), match.WithLearnDuration(0.5))
	if err != nil {
		panic(err)
	}

	main := make([]float64, 44100)
	side := make([]float64, 44100)
	eq.Learn()
	eq.ProcessBlock(main, side)

	fmt.Println(eq.Order(), eq.Mode())
	// Output: 8 frozen
}
