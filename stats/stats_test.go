package stats

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-nldsp/internal/testutil"
)

func TestCalculateSquareWave(t *testing.T) {
	s := Calculate([]float64{1, -1, 1, -1})
	if s.RMS != 1 || s.Peak != 1 || s.DC != 0 {
		t.Fatalf("got %+v", s)
	}
	if s.ZeroCrossings != 3 {
		t.Fatalf("zero crossings = %d, want 3", s.ZeroCrossings)
	}
	if s.CrestFactor != 1 {
		t.Fatalf("crest factor = %v, want 1", s.CrestFactor)
	}
}

func TestCalculateEmpty(t *testing.T) {
	s := Calculate(nil)
	if s.Length != 0 || !math.IsInf(s.RMSdB, -1) {
		t.Fatalf("got %+v", s)
	}
}

func TestSineLevels(t *testing.T) {
	x := testutil.DeterministicSine(1000, 48000, 1, 48000)
	if got := RMS(x); math.Abs(got-1/math.Sqrt2) > 1e-6 {
		t.Fatalf("RMS = %v", got)
	}
	if got := Peak(x); math.Abs(got-1) > 1e-6 {
		t.Fatalf("Peak = %v", got)
	}
	// 1000 periods, two crossings each, minus the starting zero.
	if got := ZeroCrossings(x); got < 1998 || got > 2000 {
		t.Fatalf("ZeroCrossings = %d", got)
	}
}

func TestStreamingMatchesCalculate(t *testing.T) {
	x := testutil.DeterministicNoise(7, 1, 1000)
	var s Streaming
	s.Update(x[:300])
	s.Update(x[300:])

	got, want := s.Result(), Calculate(x)
	if got.Length != want.Length || got.ZeroCrossings != want.ZeroCrossings {
		t.Fatalf("streaming %+v, batch %+v", got, want)
	}
	for _, p := range [][2]float64{{got.RMS, want.RMS}, {got.Peak, want.Peak}, {got.DC, want.DC}, {got.Variance, want.Variance}} {
		if math.Abs(p[0]-p[1]) > 1e-12 {
			t.Fatalf("streaming %+v, batch %+v", got, want)
		}
	}

	s.Reset()
	if s.Result().Length != 0 {
		t.Fatal("reset did not clear")
	}
}

func TestMSE(t *testing.T) {
	got, err := MSE([]float64{1, 2, 3}, []float64{1, 0, 3})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-4.0/3) > 1e-12 {
		t.Fatalf("MSE = %v", got)
	}
	if _, err := MSE([]float64{1}, nil); err == nil {
		t.Fatal("expected length error")
	}
}

func TestBlockMSEAndMovingAverage(t *testing.T) {
	e := []float64{2, 2, 1, 1, 0, 0, 5}
	curve := BlockMSE(e, 2)
	testutil.RequireSliceNearlyEqual(t, curve, []float64{4, 1, 0}, 0)

	ma := MovingAverage([]float64{4, 2, 0, 2}, 2)
	testutil.RequireSliceNearlyEqual(t, ma, []float64{3, 1, 1}, 1e-15)

	if MovingAverage(curve, 10) != nil {
		t.Fatal("window longer than curve should return nil")
	}
}

func TestIsNonIncreasing(t *testing.T) {
	ok, _ := IsNonIncreasing([]float64{3, 2, 2, 1}, 0)
	if !ok {
		t.Fatal("expected non-increasing")
	}
	ok, idx := IsNonIncreasing([]float64{3, 2, 2.1}, 0.01)
	if ok || idx != 2 {
		t.Fatalf("got ok=%v idx=%d", ok, idx)
	}
	if ok, _ := IsNonIncreasing([]float64{3, 2, 2.01}, 0.01); !ok {
		t.Fatal("slack not honoured")
	}
}
