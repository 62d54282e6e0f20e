// Package loudness measures programme loudness of rendered audio after
// ITU-R BS.1770: K-weighting, 400 ms blocks with 75 % overlap, absolute
// and relative gating.
package loudness

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-nldsp/dsp/filter/design"
)

const (
	shelfFreq   = 1500.0
	shelfGainDB = 4.0
	hpfFreq     = 38.0

	momentarySeconds = 0.4
	shortTermSeconds = 3.0
	stepSeconds      = 0.1

	absoluteGate = -70.0
	relativeGate = -10.0

	// lufsOffset is the K-weighting calibration constant.
	lufsOffset = -0.691
)

var errNoChannels = errors.New("loudness: no channels")

// Result holds the loudness of a signal in LUFS. Values are -Inf when the
// signal is shorter than one block or gated out entirely.
type Result struct {
	Integrated   float64
	MomentaryMax float64
	ShortTermMax float64
}

// Measure returns the loudness of channels, all of the same length, at
// sampleRate. Channels are weighted equally.
func Measure(channels [][]float64, sampleRate float64) (Result, error) {
	if err := core.ValidateSampleRate("loudness", sampleRate); err != nil {
		return Result{}, err
	}

	if len(channels) == 0 {
		return Result{}, errNoChannels
	}

	n := len(channels[0])
	for ch, x := range channels {
		if len(x) != n {
			return Result{}, fmt.Errorf("loudness: channel %d has %d samples, want %d", ch, len(x), n)
		}
	}

	// cum[i] is the K-weighted power summed over channels and samples [0, i).
	cum := make([]float64, n+1)
	buf := make([]float64, n)

	for _, x := range channels {
		kw := kWeighting(sampleRate)
		copy(buf, x)
		kw.ProcessBlock(buf)

		acc := 0.0
		for i, v := range buf {
			acc += v * v
			cum[i+1] += acc
		}
	}

	step := max(int(math.Round(stepSeconds*sampleRate)), 1)
	momentary := blockPowers(cum, int(math.Round(momentarySeconds*sampleRate)), step)
	shortTerm := blockPowers(cum, int(math.Round(shortTermSeconds*sampleRate)), step)

	return Result{
		Integrated:   gatedLoudness(momentary),
		MomentaryMax: maxLoudness(momentary),
		ShortTermMax: maxLoudness(shortTerm),
	}, nil
}

func kWeighting(sampleRate float64) *biquad.Chain {
	q := 1 / math.Sqrt2

	return biquad.NewChain([]biquad.Coefficients{
		design.HighShelf(shelfFreq, q, core.DBToLinear(shelfGainDB), sampleRate),
		design.Highpass(hpfFreq, q, sampleRate),
	})
}

// blockPowers returns the mean power of every window of size samples,
// advancing by step.
func blockPowers(cum []float64, size, step int) []float64 {
	n := len(cum) - 1
	if size < 1 || size > n {
		return nil
	}

	out := make([]float64, 0, (n-size)/step+1)
	for start := 0; start+size <= n; start += step {
		out = append(out, (cum[start+size]-cum[start])/float64(size))
	}

	return out
}

func gatedLoudness(blocks []float64) float64 {
	var sum float64

	count := 0

	for _, p := range blocks {
		if toLUFS(p) > absoluteGate {
			sum += p
			count++
		}
	}

	if count == 0 {
		return math.Inf(-1)
	}

	gate := toLUFS(sum/float64(count)) + relativeGate
	sum, count = 0, 0

	for _, p := range blocks {
		if l := toLUFS(p); l > absoluteGate && l > gate {
			sum += p
			count++
		}
	}

	if count == 0 {
		return math.Inf(-1)
	}

	return toLUFS(sum / float64(count))
}

func maxLoudness(blocks []float64) float64 {
	peak := math.Inf(-1)
	for _, p := range blocks {
		peak = max(peak, toLUFS(p))
	}

	return peak
}

func toLUFS(power float64) float64 {
	if power <= 0 {
		return math.Inf(-1)
	}

	return lufsOffset + 10*math.Log10(power)
}
