package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-nldsp/dsp/effectchain"
	"github.com/cwbudde/algo-nldsp/dsp/oversample"
	"github.com/cwbudde/algo-nldsp/internal/wavio"
)

var errSampleRateMismatch = errors.New("sidechain sample rate differs from input")

// renderer runs audio through one effect chain per channel, optionally at
// an oversampled rate. Chains are kept across files and re-prepared for
// each one.
type renderer struct {
	graph     string
	factor    int
	quality   oversample.Quality
	blockSize int
	registry  *effectchain.Registry
	chains    []*effectchain.Chain
}

func newRenderer(graph string, factor int, quality oversample.Quality, blockSize int) (*renderer, error) {
	if blockSize < 1 {
		return nil, fmt.Errorf("block size must be >= 1: %d", blockSize)
	}

	r := &renderer{
		graph:     graph,
		factor:    factor,
		quality:   quality,
		blockSize: blockSize,
		registry:  effectchain.DefaultRegistry(),
	}

	// Validate the graph once so a bad chain file fails before any audio is read.
	probe := effectchain.New(effectchain.Context{SampleRate: 48000, BlockSize: blockSize}, r.registry)

	err := probe.LoadGraph(graph)
	if err != nil {
		return nil, err
	}

	if !probe.HasGraph() {
		return nil, errors.New("chain graph has no _input or _output node")
	}

	r.chains = append(r.chains, probe)

	return r, nil
}

func readGraph(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read chain: %w", err)
	}

	return string(data), nil
}

// prepare makes sure there is one chain per channel and resets all of them
// for the given context.
func (r *renderer) prepare(channels int, ctx effectchain.Context) error {
	for len(r.chains) < channels {
		c := effectchain.New(ctx, r.registry)

		err := c.LoadGraph(r.graph)
		if err != nil {
			return err
		}

		r.chains = append(r.chains, c)
	}

	for ch := range channels {
		err := r.chains[ch].Prepare(ctx)
		if err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
	}

	return nil
}

// Render processes in through the chain and returns a new Audio with the
// same layout. side may be nil; otherwise channel i of side feeds the
// sidechain of channel i, with the last side channel reused for any
// extra main channels. progress, if set, is called after every block with
// the upsampled block of channel 0.
func (r *renderer) Render(in, side *wavio.Audio, progress func(done, total int, block []float64)) (*wavio.Audio, error) {
	if in == nil || len(in.Channels) == 0 {
		return nil, errors.New("input has no channels")
	}

	if side != nil && side.SampleRate != in.SampleRate {
		return nil, fmt.Errorf("%w: %d vs %d", errSampleRateMismatch, side.SampleRate, in.SampleRate)
	}

	ovs, err := oversample.New(float64(in.SampleRate), r.factor, r.quality)
	if err != nil {
		return nil, err
	}

	nCh := len(in.Channels)
	frames := in.Frames()

	err = r.prepare(nCh, effectchain.Context{SampleRate: ovs.Rate(), BlockSize: r.blockSize * r.factor})
	if err != nil {
		return nil, err
	}

	inputs := make([][]float64, 0, 2*nCh)
	inputs = append(inputs, in.Channels...)

	if side != nil && len(side.Channels) > 0 {
		for ch := range nCh {
			src := side.Channels[min(ch, len(side.Channels)-1)]
			inputs = append(inputs, fitLength(src, frames))
		}
	}

	var procErr error

	out, err := ovs.RunChannels(inputs, func(up [][]float64, _ float64) {
		procErr = r.processChannels(up, nCh, progress)
	})
	if err != nil {
		return nil, err
	}

	if procErr != nil {
		return nil, procErr
	}

	for ch := range nCh {
		for i, v := range out[ch] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				out[ch][i] = 0
			}
		}
	}

	return &wavio.Audio{
		SampleRate: in.SampleRate,
		BitDepth:   in.BitDepth,
		Channels:   out[:nCh],
	}, nil
}

// processChannels runs the upsampled main channels (the first nCh entries
// of up) through their chains block by block. Remaining entries are the
// matching sidechains.
func (r *renderer) processChannels(up [][]float64, nCh int, progress func(done, total int, block []float64)) error {
	block := r.blockSize * r.factor
	total := len(up[0])

	for start := 0; start < total; start += block {
		end := min(start+block, total)

		for ch := range nCh {
			var side []float64
			if len(up) > nCh {
				side = up[nCh+ch][start:end]
			}

			if !r.chains[ch].ProcessWithSidechain(up[ch][start:end], side) {
				return fmt.Errorf("channel %d: chain has no valid graph", ch)
			}
		}

		if progress != nil {
			progress(end, total, up[0][start:end])
		}
	}

	return nil
}

// fitLength returns src trimmed or zero-padded to n samples.
func fitLength(src []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, src)

	return out
}
