package biquad

import (
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-nldsp/internal/testutil"
)

func TestChainEqualsSectionsInSeries(t *testing.T) {
	c := resonant()
	ch := NewChain([]Coefficients{c, passthrough(), c}, WithGain(0.5))

	if ch.Len() != 3 {
		t.Fatalf("Len = %d, want 3", ch.Len())
	}

	in := testutil.DeterministicNoise(4, 1, 300)
	block := append([]float64(nil), in...)
	ch.ProcessBlock(block)

	a, b := NewSection(c), NewSection(c)
	for i, x := range in {
		want := b.ProcessSample(a.ProcessSample(0.5 * x))
		if !almostEqual(block[i], want, 1e-12) {
			t.Fatalf("sample %d: chain %v, series %v", i, block[i], want)
		}
	}
}

func TestChainSampleAndBlockAgree(t *testing.T) {
	in := testutil.DeterministicNoise(11, 1, 128)
	byBlock := NewChain([]Coefficients{resonant(), resonant()})
	bySample := NewChain([]Coefficients{resonant(), resonant()})

	block := append([]float64(nil), in...)
	byBlock.ProcessBlock(block)

	for i, x := range in {
		if y := bySample.ProcessSample(x); !almostEqual(y, block[i], 1e-12) {
			t.Fatalf("sample %d: %v vs %v", i, y, block[i])
		}
	}

	byBlock.Reset()
	again := append([]float64(nil), in...)
	byBlock.ProcessBlock(again)
	testutil.RequireSliceNearlyEqual(t, again, block, 0)
}

func TestChainResponse(t *testing.T) {
	c := resonant()
	ch := NewChain([]Coefficients{c, c}, WithGain(2))

	h := c.Response(500, 48000)
	if got, want := ch.Response(500, 48000), 2*h*h; cmplx.Abs(got-want) > 1e-12 {
		t.Fatalf("Response = %v, want %v", got, want)
	}

	if got := NewChain(nil).Response(500, 48000); got != 1 {
		t.Fatalf("empty chain response = %v, want 1", got)
	}
}
