// Package oversample runs a processing callback at an integer multiple of
// the signal's sample rate. Whole signals are upsampled, handed to the
// callback at the higher rate, downsampled and trimmed back to their
// original length.
//
// Nonlinear effects generate harmonics above Nyquist; running them inside
// an oversampled region keeps those harmonics from aliasing. Processors
// see the higher rate only through the sample rate they are prepared with.
package oversample

import (
	"errors"
	"fmt"
	"strings"

	resampler "github.com/tphakala/go-audio-resampler"

	"github.com/cwbudde/algo-nldsp/dsp/core"
)

// ErrInvalidFactor is returned for factors other than 1, 2, 4, 8 or 16.
var ErrInvalidFactor = errors.New("oversample: factor must be 1, 2, 4, 8 or 16")

// Quality selects the resampling filter.
type Quality int

const (
	// Low uses short filters. Fastest.
	Low Quality = iota
	// Medium is suitable for most material.
	Medium
	// High uses the longest filters.
	High
)

var qualityNames = [...]string{"low", "medium", "high"}

func (q Quality) String() string {
	if q < Low || q > High {
		return fmt.Sprintf("Quality(%d)", int(q))
	}

	return qualityNames[q]
}

// ParseQuality maps a case-insensitive name to a Quality.
func ParseQuality(name string) (Quality, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range qualityNames {
		if s == n {
			return Quality(i), nil
		}
	}

	return Medium, fmt.Errorf("oversample quality is invalid: %q", name)
}

func (q Quality) preset() resampler.QualityPreset {
	switch q {
	case Low:
		return resampler.QualityLow
	case High:
		return resampler.QualityHigh
	default:
		return resampler.QualityMedium
	}
}

// Oversampler wraps a processing callback in an up/down resampling pair.
type Oversampler struct {
	sampleRate float64
	factor     int
	quality    Quality
}

// New returns an Oversampler for signals at sampleRate.
func New(sampleRate float64, factor int, quality Quality) (*Oversampler, error) {
	if err := core.ValidateSampleRate("oversample", sampleRate); err != nil {
		return nil, err
	}

	switch factor {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidFactor, factor)
	}

	if quality < Low || quality > High {
		return nil, fmt.Errorf("oversample quality is invalid: %d", int(quality))
	}

	return &Oversampler{sampleRate: sampleRate, factor: factor, quality: quality}, nil
}

// Factor returns the oversampling factor.
func (o *Oversampler) Factor() int { return o.factor }

// Rate returns the rate the callback runs at.
func (o *Oversampler) Rate() float64 { return o.sampleRate * float64(o.factor) }

// Run upsamples input, calls fn on the upsampled signal, and returns the
// downsampled result with len(input) samples. With factor 1, fn processes
// a copy of input directly.
func (o *Oversampler) Run(input []float64, fn func(up []float64, upRate float64)) ([]float64, error) {
	out, err := o.RunChannels([][]float64{input}, func(up [][]float64, upRate float64) {
		fn(up[0], upRate)
	})
	if err != nil {
		return nil, err
	}

	return out[0], nil
}

// RunChannels is Run for several channels. fn receives every upsampled
// channel at once, all of the same length.
func (o *Oversampler) RunChannels(inputs [][]float64, fn func(up [][]float64, upRate float64)) ([][]float64, error) {
	if o.factor == 1 {
		up := make([][]float64, len(inputs))
		for ch, in := range inputs {
			up[ch] = append([]float64(nil), in...)
		}

		fn(up, o.sampleRate)

		return up, nil
	}

	upRate := o.Rate()
	up := make([][]float64, len(inputs))
	upLen := 0

	for ch, in := range inputs {
		u, err := resampler.ResampleMono(in, o.sampleRate, upRate, o.quality.preset())
		if err != nil {
			return nil, fmt.Errorf("oversample: upsample channel %d: %w", ch, err)
		}

		up[ch] = u
		upLen = max(upLen, len(u))
	}

	for ch := range up {
		up[ch] = fit(up[ch], upLen)
	}

	fn(up, upRate)

	out := make([][]float64, len(inputs))
	for ch, u := range up {
		d, err := resampler.ResampleMono(u, upRate, o.sampleRate, o.quality.preset())
		if err != nil {
			return nil, fmt.Errorf("oversample: downsample channel %d: %w", ch, err)
		}

		out[ch] = fit(d, len(inputs[ch]))
	}

	return out, nil
}

// fit trims or zero-pads buf to n samples.
func fit(buf []float64, n int) []float64 {
	if len(buf) >= n {
		return buf[:n]
	}

	return append(buf, make([]float64, n-len(buf))...)
}
