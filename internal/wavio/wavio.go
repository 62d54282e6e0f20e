// Package wavio reads and writes PCM WAV files as per-channel float64
// slices in [-1, 1].
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-nldsp/dsp/dither"
)

// ErrUnsupportedFormat is returned for WAV files that are not 16, 24 or
// 32-bit integer PCM.
var ErrUnsupportedFormat = errors.New("unsupported wav format")

const pcmFormat = 1

// Audio is a decoded WAV file.
type Audio struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

// Frames returns the number of samples per channel.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}

	return len(a.Channels[0])
}

// Duration returns the length in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}

	return float64(a.Frames()) / float64(a.SampleRate)
}

// Mono returns the average of all channels.
func (a *Audio) Mono() []float64 {
	out := make([]float64, a.Frames())
	if len(a.Channels) == 0 {
		return out
	}

	scale := 1 / float64(len(a.Channels))
	for _, ch := range a.Channels {
		for i, v := range ch {
			out[i] += v * scale
		}
	}

	return out
}

// Read decodes the WAV file at path.
func Read(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wavio: open %s: %w", path, err)
	}
	defer f.Close()

	a, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("wavio: %s: %w", path, err)
	}

	return a, nil
}

// Decode reads a whole WAV stream.
func Decode(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}

	bitDepth := int(dec.BitDepth)
	if dec.WavAudioFormat != pcmFormat || fullScale(bitDepth) == 0 {
		return nil, fmt.Errorf("%w: format %d, %d bits", ErrUnsupportedFormat, dec.WavAudioFormat, bitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode pcm: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}

	frames := len(buf.Data) / channels
	inv := 1 / fullScale(bitDepth)

	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	for i := range frames {
		for ch := range channels {
			out[ch][i] = float64(buf.Data[i*channels+ch]) * inv
		}
	}

	return &Audio{SampleRate: buf.Format.SampleRate, BitDepth: bitDepth, Channels: out}, nil
}

// EncodeOption configures Encode and Write.
type EncodeOption func(*encodeConfig)

type encodeConfig struct {
	dither  dither.Kind
	shaping []float64
	seed    uint64
}

// WithDither adds dither noise of kind k before quantizing, seeded per
// channel from seed. shaping is passed to dither.WithShaping.
func WithDither(k dither.Kind, seed uint64, shaping []float64) EncodeOption {
	return func(cfg *encodeConfig) {
		cfg.dither = k
		cfg.seed = seed
		cfg.shaping = shaping
	}
}

// Write encodes a to a new WAV file at path.
func Write(path string, a *Audio, opts ...EncodeOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: create %s: %w", path, err)
	}

	err = Encode(f, a, opts...)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("wavio: %s: %w", path, err)
	}

	return f.Close()
}

// Encode writes a as integer PCM. Samples are clipped to [-1, 1]; NaN
// becomes 0. Without WithDither samples are rounded.
func Encode(w io.WriteSeeker, a *Audio, opts ...EncodeOption) error {
	if fullScale(a.BitDepth) == 0 {
		return fmt.Errorf("%w: %d bits", ErrUnsupportedFormat, a.BitDepth)
	}

	var cfg encodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	channels := len(a.Channels)
	if channels == 0 {
		return fmt.Errorf("%w: no channels", ErrUnsupportedFormat)
	}

	frames := a.Frames()
	data := make([]int, frames*channels)

	for ch, samples := range a.Channels {
		if len(samples) != frames {
			return fmt.Errorf("channel %d has %d frames, want %d", ch, len(samples), frames)
		}

		q, err := dither.New(a.BitDepth,
			dither.WithKind(cfg.dither),
			dither.WithSeed(cfg.seed+uint64(ch)),
			dither.WithShaping(cfg.shaping),
		)
		if err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}

		for i, v := range samples {
			data[i*channels+ch] = q.Quantize(v)
		}
	}

	enc := wav.NewEncoder(w, a.SampleRate, a.BitDepth, channels, pcmFormat)

	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: a.SampleRate},
		Data:           data,
		SourceBitDepth: a.BitDepth,
	})
	if err != nil {
		return fmt.Errorf("encode pcm: %w", err)
	}

	return enc.Close()
}

// fullScale returns the magnitude of the most negative code, or 0 for an
// unsupported depth.
func fullScale(bitDepth int) float64 {
	switch bitDepth {
	case 16, 24, 32:
		return math.Ldexp(1, bitDepth-1)
	default:
		return 0
	}
}
