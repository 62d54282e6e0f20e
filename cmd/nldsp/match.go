package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-nldsp/dsp/effects/match"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
	"github.com/cwbudde/algo-nldsp/dsp/spectrum"
	"github.com/cwbudde/algo-nldsp/internal/cli"
	"github.com/cwbudde/algo-nldsp/internal/wavio"
	"github.com/cwbudde/algo-nldsp/stats"
)

const (
	minResponseFFT = 4096
	trendWindow    = 5
	trendSlack     = 0.05
)

type matchCmd struct {
	Reference    string  `short:"r" required:"" type:"existingfile" help:"Reference WAV whose spectrum the input should match."`
	LearnSeconds float64 `default:"5" help:"Learning time in seconds."`
	Nabla        float64 `default:"0.3" help:"Learning rate in [0, 1]."`
	Rho          float64 `default:"0" help:"Frequency warping in [-1, 1]."`
	DriveDB      float64 `name:"drive" default:"0" help:"Pre-stage drive in dB."`
	Saturator    string  `default:"none" help:"Pre-stage saturator."`
	Block        int     `default:"512" help:"Processing block size."`
	Dither       string  `default:"tpdf" enum:"none,rpdf,tpdf" help:"Dither applied when writing (${enum})."`
	Output       string  `short:"o" type:"path" help:"Output WAV (default: <input>-matched.wav)."`
	Input        string  `arg:"" type:"existingfile" help:"WAV file to equalize."`
}

// matchResult is what a learning run produced.
type matchResult struct {
	Audio    *wavio.Audio
	Taps     []float64
	Error    []float64 // channel 0 adaptation error while learning
	Learned  int       // samples spent learning
	Response []float64 // dB at Freqs
	Freqs    []float64
}

func (c *matchCmd) Run(g *globals) error {
	kind, err := saturate.ParseKind(c.Saturator)
	if err != nil {
		return err
	}

	enc, err := encodeOptions(c.Dither, false)
	if err != nil {
		return err
	}

	in, err := wavio.Read(c.Input)
	if err != nil {
		return err
	}

	ref, err := wavio.Read(c.Reference)
	if err != nil {
		return err
	}

	params := match.DefaultParams()
	params.Nabla = c.Nabla
	params.Rho = c.Rho
	params.DriveDB = c.DriveDB
	params.Saturator = kind

	res, err := matchAudio(in, ref, params, c.LearnSeconds, c.Block)
	if err != nil {
		return err
	}

	out := c.Output
	if out == "" {
		ext := filepath.Ext(c.Input)
		out = strings.TrimSuffix(c.Input, ext) + "-matched" + ext
	}

	err = wavio.Write(out, res.Audio, enc...)
	if err != nil {
		return err
	}

	g.Logger.Info("matched",
		slog.String("input", c.Input),
		slog.String("reference", c.Reference),
		slog.String("output", out),
		slog.Int("learned_samples", res.Learned),
		slog.Int("taps", len(res.Taps)),
	)

	cli.PrintKV(g.Out, "output", out)
	cli.PrintKV(g.Out, "learned", fmt.Sprintf("%.2f s", float64(res.Learned)/float64(in.SampleRate)))

	printResponse(g.Out, res)

	printTrend(g.Out, res.Error, in.SampleRate/10)

	return nil
}

// matchAudio learns a matching EQ for in against ref and returns in
// filtered through the frozen result. Input and reference must share the
// sample rate; at most two channels are used.
func matchAudio(in, ref *wavio.Audio, params match.Params, learnSeconds float64, block int) (*matchResult, error) {
	if in.SampleRate != ref.SampleRate {
		return nil, fmt.Errorf("%w: %d vs %d", errSampleRateMismatch, ref.SampleRate, in.SampleRate)
	}

	if len(in.Channels) == 0 || len(ref.Channels) == 0 {
		return nil, errors.New("match: input and reference need at least one channel")
	}

	if len(in.Channels) > 2 {
		return nil, fmt.Errorf("match: at most two channels supported, got %d", len(in.Channels))
	}

	if block < 1 {
		return nil, fmt.Errorf("block size must be >= 1: %d", block)
	}

	fs := float64(in.SampleRate)

	p, err := match.NewProcessor(fs, match.WithLearnDuration(learnSeconds))
	if err != nil {
		return nil, err
	}

	err = p.SetParams(params)
	if err != nil {
		return nil, err
	}

	frames := in.Frames()
	nCh := len(in.Channels)

	side := make([][]float64, len(ref.Channels))
	for ch, src := range ref.Channels {
		side[ch] = fitLength(src, frames)
	}

	// Learning pass on a scratch copy.
	scratch := make([][]float64, nCh)
	for ch := range scratch {
		scratch[ch] = append([]float64(nil), in.Channels[ch]...)
	}

	errCurve := make([]float64, frames)
	learned := 0

	p.Learn()

	for start := 0; start < frames && p.Mode() == match.Learning; start += block {
		end := min(start+block, frames)
		remaining := p.Channel(0).LearnRemaining()

		p.ProcessWithError(sliceBlock(scratch, start, end), sliceBlock(side, start, end), [][]float64{errCurve[start:end]})

		learned = end
		if p.Mode() == match.Frozen {
			learned = start + min(remaining, end-start)
		}
	}

	p.Freeze()

	// Render the whole input with the frozen taps from a clean state.
	for ch := range nCh {
		p.Channel(ch).ResetState()
	}

	out := make([][]float64, nCh)
	for ch := range out {
		out[ch] = append([]float64(nil), in.Channels[ch]...)
	}

	for start := 0; start < frames; start += block {
		end := min(start+block, frames)
		p.Process(sliceBlock(out, start, end), nil)
	}

	taps := append([]float64(nil), p.Channel(0).Coefficients()...)

	freqs := spectrum.OctaveCenters(fs / 2)

	bins, err := spectrum.FIRResponse(taps, responseFFTSize(len(taps)), fs)
	if err != nil {
		return nil, err
	}

	response, err := spectrum.At(bins, freqs)
	if err != nil {
		return nil, err
	}

	return &matchResult{
		Audio:    &wavio.Audio{SampleRate: in.SampleRate, BitDepth: in.BitDepth, Channels: out},
		Taps:     taps,
		Error:    errCurve[:learned],
		Learned:  learned,
		Response: response,
		Freqs:    freqs,
	}, nil
}

func sliceBlock(chs [][]float64, start, end int) [][]float64 {
	out := make([][]float64, len(chs))
	for i, ch := range chs {
		out[i] = ch[start:end]
	}

	return out
}

// responseFFTSize is the smallest power of two >= max(4096, 2*taps).
func responseFFTSize(taps int) int {
	n := minResponseFFT
	for n < 2*taps {
		n <<= 1
	}

	return n
}

func printResponse(w io.Writer, res *matchResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Hz\tdB\t")

	for i, f := range res.Freqs {
		fmt.Fprintf(tw, "%.0f\t%+.2f\t\n", f, res.Response[i])
	}

	_ = tw.Flush()
}

// printTrend reports the smoothed learning error per block and whether it
// settled.
func printTrend(w io.Writer, errCurve []float64, block int) {
	curve := stats.MovingAverage(stats.BlockMSE(errCurve, block), trendWindow)
	if len(curve) == 0 {
		cli.PrintKV(w, "error trend", "too short to measure")
		return
	}

	ok, at := stats.IsNonIncreasing(curve, trendSlack)

	cli.PrintKV(w, "error start", fmt.Sprintf("%.1f dB", stats.AmpToDB(curve[0])/2))
	cli.PrintKV(w, "error end", fmt.Sprintf("%.1f dB", stats.AmpToDB(curve[len(curve)-1])/2))

	if !ok {
		cli.PrintKV(w, "error trend", fmt.Sprintf("rose at block %d", at))
		return
	}

	cli.PrintKV(w, "error trend", "non-increasing")
}
