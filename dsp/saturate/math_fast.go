//go:build fastmath

package saturate

import "github.com/meko-christian/algo-approx"

// tanhLimit is where tanh is 1 to double precision.
const tanhLimit = 19.0

// mathTanh computes tanh(x) = 1 - 2/(e^(2x)+1) using fast approximation.
func mathTanh(x float64) float64 {
	if x > tanhLimit {
		return 1
	}

	if x < -tanhLimit {
		return -1
	}

	return 1 - 2/(approx.FastExp(2*x)+1)
}

// mathExp computes e^x using fast approximation.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}
