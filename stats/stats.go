package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds time-domain signal statistics.
type Stats struct {
	Length        int
	DC            float64 // mean
	RMS           float64
	RMSdB         float64
	Peak          float64 // max |x|
	PeakdB        float64
	CrestFactor   float64 // peak / RMS (linear)
	ZeroCrossings int
	Variance      float64 // population variance
	Skewness      float64
	Kurtosis      float64 // excess kurtosis
}

// AmpToDB converts an amplitude to decibels: 20*log10(|a|). Zero maps to -Inf.
func AmpToDB(a float64) float64 {
	a = math.Abs(a)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}

// Calculate computes all statistics of signal.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{RMSdB: math.Inf(-1), PeakdB: math.Inf(-1)}
	}

	mean, variance := stat.PopMeanVariance(signal, nil)
	rms := RMS(signal)
	peak := Peak(signal)

	s := Stats{
		Length:        n,
		DC:            mean,
		RMS:           rms,
		RMSdB:         AmpToDB(rms),
		Peak:          peak,
		PeakdB:        AmpToDB(peak),
		ZeroCrossings: ZeroCrossings(signal),
		Variance:      variance,
	}

	if rms > 0 {
		s.CrestFactor = peak / rms
	}

	if n > 3 && variance > 0 {
		s.Skewness = stat.Skew(signal, nil)
		s.Kurtosis = stat.ExKurtosis(signal, nil)
	}

	return s
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return floats.Norm(signal, 2) / math.Sqrt(float64(len(signal)))
}

// DC returns the mean (DC offset) of the signal.
func DC(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return stat.Mean(signal, nil)
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return floats.Norm(signal, math.Inf(1))
}

// ZeroCrossings returns the number of sign changes between consecutive
// non-zero samples. Exact zeros are skipped, so a sine sampled on its
// zeros still counts each crossing once.
func ZeroCrossings(signal []float64) int {
	count := 0
	prev := 0.0

	for _, x := range signal {
		if x == 0 {
			continue
		}

		if prev != 0 && (prev < 0) != (x < 0) {
			count++
		}

		prev = x
	}

	return count
}

// Streaming accumulates level statistics across blocks.
type Streaming struct {
	n      int
	sum    float64
	sumSq  float64
	peak   float64
	prev   float64
	zeroCr int
}

// Update adds a block of samples.
func (s *Streaming) Update(samples []float64) {
	for _, x := range samples {
		s.n++
		s.sum += x
		s.sumSq += x * x

		if a := math.Abs(x); a > s.peak {
			s.peak = a
		}

		if x != 0 {
			if s.prev != 0 && (s.prev < 0) != (x < 0) {
				s.zeroCr++
			}

			s.prev = x
		}
	}
}

// Reset clears the accumulator.
func (s *Streaming) Reset() { *s = Streaming{} }

// Result returns the statistics seen so far. Higher moments are not tracked.
func (s *Streaming) Result() Stats {
	if s.n == 0 {
		return Stats{RMSdB: math.Inf(-1), PeakdB: math.Inf(-1)}
	}

	nf := float64(s.n)
	mean := s.sum / nf
	rms := math.Sqrt(s.sumSq / nf)

	r := Stats{
		Length:        s.n,
		DC:            mean,
		RMS:           rms,
		RMSdB:         AmpToDB(rms),
		Peak:          s.peak,
		PeakdB:        AmpToDB(s.peak),
		ZeroCrossings: s.zeroCr,
		Variance:      math.Max(0, s.sumSq/nf-mean*mean),
	}

	if rms > 0 {
		r.CrestFactor = s.peak / rms
	}

	return r
}
