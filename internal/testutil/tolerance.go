package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t at the first index where got and want
// differ by more than eps, or if their lengths differ.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i, g := range got {
		if d := math.Abs(g - want[i]); d > eps {
			t.Fatalf("index %d: got %v, want %v (|diff| %g > %g)", i, g, want[i], d, eps)
		}
	}
}

// RequireFinite fails t at the first NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireBounded fails t at the first sample whose magnitude exceeds limit.
func RequireBounded(t *testing.T, data []float64, limit float64) {
	t.Helper()

	for i, v := range data {
		if math.Abs(v) > limit {
			t.Fatalf("index %d: |%v| exceeds %v", i, v, limit)
		}
	}
}

// MaxAbsDiff returns max |a[i]-b[i]|.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}

	worst := 0.0
	for i, x := range a {
		worst = max(worst, math.Abs(x-b[i]))
	}

	return worst, nil
}

// RMS returns the root mean square of data; 0 when empty.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range data {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(data)))
}
