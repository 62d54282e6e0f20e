package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/effectchain"
	"github.com/cwbudde/algo-nldsp/dsp/oversample"
	"github.com/cwbudde/algo-nldsp/dsp/spectrum"
	"github.com/cwbudde/algo-nldsp/internal/cli"
	"github.com/cwbudde/algo-nldsp/internal/wavio"
	"github.com/cwbudde/algo-nldsp/stats"
)

// thdSeconds is the rendered test tone length. Only the second half is
// analyzed so filters and envelopes have settled.
const thdSeconds = 2

var errChainOrEffect = errors.New("exactly one of --chain or --effect is required")

type thdCmd struct {
	Chain      string   `short:"c" type:"existingfile" help:"Chain graph JSON file."`
	Effect     string   `short:"e" help:"Single effect type to measure (see 'nldsp effects')."`
	Param      []string `short:"p" sep:"none" placeholder:"KEY=VALUE" help:"Effect parameter, repeatable."`
	Freq       float64  `default:"1000" help:"Test tone frequency in Hz."`
	Level      float64  `default:"-6" help:"Test tone level in dBFS."`
	Harmonics  int      `default:"5" help:"Number of harmonics to report, fundamental included."`
	SampleRate int      `default:"48000" help:"Sample rate of the test tone."`
	Oversample int      `short:"x" default:"1" enum:"1,2,4,8,16" help:"Oversampling factor (${enum})."`
	Quality    string   `short:"q" default:"medium" enum:"low,medium,high" help:"Resampler quality (${enum})."`
}

func (c *thdCmd) Run(g *globals) error {
	graph, err := c.graph()
	if err != nil {
		return err
	}

	quality, err := oversample.ParseQuality(c.Quality)
	if err != nil {
		return err
	}

	h, err := measureTHD(graph, c.Freq, c.Level, c.SampleRate, c.Harmonics, c.Oversample, quality)
	if err != nil {
		return err
	}

	printHarmonics(g.Out, h)

	return nil
}

// graph builds the chain JSON from --chain or from --effect and its params.
func (c *thdCmd) graph() (string, error) {
	if (c.Chain == "") == (c.Effect == "") {
		return "", errChainOrEffect
	}

	if c.Chain != "" {
		return readGraph(c.Chain)
	}

	params, err := parseParams(c.Param)
	if err != nil {
		return "", err
	}

	return effectchain.Serial(effectchain.Node{ID: "fx", Type: c.Effect, Params: params}).JSON()
}

// parseParams turns key=value pairs into node params. Numbers and
// booleans keep their type; anything else is a string.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return nil, fmt.Errorf("param must be key=value: %q", pair)
		}

		value = strings.TrimSpace(value)

		if f, err := strconv.ParseFloat(value, 64); err == nil {
			params[key] = f
			continue
		}

		if b, err := strconv.ParseBool(value); err == nil {
			params[key] = b
			continue
		}

		params[key] = value
	}

	return params, nil
}

// measureTHD renders a sine through graph and analyzes its harmonics.
func measureTHD(graph string, freq, levelDB float64, sampleRate, harmonics, factor int, quality oversample.Quality) (spectrum.Harmonics, error) {
	if freq <= 0 || freq >= float64(sampleRate)/2 {
		return spectrum.Harmonics{}, fmt.Errorf("test frequency must be in (0, %d): %g", sampleRate/2, freq)
	}

	r, err := newRenderer(graph, factor, quality, 512)
	if err != nil {
		return spectrum.Harmonics{}, err
	}

	amp := core.DBToLinear(levelDB)
	tone := make([]float64, thdSeconds*sampleRate)

	for i := range tone {
		tone[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}

	out, err := r.Render(&wavio.Audio{SampleRate: sampleRate, BitDepth: 32, Channels: [][]float64{tone}}, nil, nil)
	if err != nil {
		return spectrum.Harmonics{}, err
	}

	tail := out.Channels[0][len(tone)-sampleRate:]

	return spectrum.AnalyzeHarmonics(tail, freq, float64(sampleRate), harmonics)
}

func printHarmonics(w io.Writer, h spectrum.Harmonics) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "H\tHz\tdBFS\tdBc\t")

	for i, l := range h.Levels {
		fmt.Fprintf(tw, "%d\t%.0f\t%.1f\t%.1f\t\n", i+1, h.Fundamental*float64(i+1), dbOrFloor(l), h.DB(i+1))
	}

	_ = tw.Flush()

	cli.PrintKV(w, "THD", fmt.Sprintf("%.4f %% (%.1f dB)", 100*h.THD, dbOrFloor(h.THD)))
}

func dbOrFloor(a float64) float64 {
	return max(stats.AmpToDB(a), spectrum.FloorDB)
}
