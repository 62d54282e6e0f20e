package stats

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// MSE returns the mean squared difference of a and b.
func MSE(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("stats: length mismatch: %d vs %d", len(a), len(b))
	}

	if len(a) == 0 {
		return 0, nil
	}

	d := floats.Distance(a, b, 2)

	return d * d / float64(len(a)), nil
}

// MeanSquare returns the mean of x[i]^2.
func MeanSquare(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return floats.Dot(x, x) / float64(len(x))
}

// BlockMSE splits an error signal into consecutive blocks of size block and
// returns the mean square of each. A trailing partial block is dropped.
func BlockMSE(err []float64, block int) []float64 {
	if block <= 0 {
		return nil
	}

	curve := make([]float64, 0, len(err)/block)
	for start := 0; start+block <= len(err); start += block {
		curve = append(curve, MeanSquare(err[start:start+block]))
	}

	return curve
}

// MovingAverage returns the running mean of curve over window points. The
// result has len(curve)-window+1 points.
func MovingAverage(curve []float64, window int) []float64 {
	if window <= 0 || window > len(curve) {
		return nil
	}

	out := make([]float64, len(curve)-window+1)
	sum := floats.Sum(curve[:window])
	out[0] = sum / float64(window)

	for i := window; i < len(curve); i++ {
		sum += curve[i] - curve[i-window]
		out[i-window+1] = sum / float64(window)
	}

	return out
}

// IsNonIncreasing reports whether every point of curve is at most its
// predecessor times (1+slack). It returns the index of the first violation,
// or -1.
func IsNonIncreasing(curve []float64, slack float64) (bool, int) {
	for i := 1; i < len(curve); i++ {
		if curve[i] > curve[i-1]*(1+slack) {
			return false, i
		}
	}

	return true, -1
}
