//go:build !fastmath

package saturate

import "math"

func mathTanh(x float64) float64 {
	return math.Tanh(x)
}

func mathExp(x float64) float64 {
	return math.Exp(x)
}
