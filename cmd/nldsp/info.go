package main

import (
	"fmt"
	"runtime"
	"text/tabwriter"

	"github.com/cwbudde/algo-nldsp/dsp/effectchain"
	"github.com/cwbudde/algo-nldsp/dsp/window"
	"github.com/cwbudde/algo-nldsp/internal/cli"
	"github.com/cwbudde/algo-nldsp/internal/cpu"
	"github.com/cwbudde/algo-nldsp/stats"
)

type effectsCmd struct{}

func (effectsCmd) Run(g *globals) error {
	for _, t := range effectchain.DefaultRegistry().Types() {
		fmt.Fprintln(g.Out, t)
	}

	return nil
}

type infoCmd struct{}

func (infoCmd) Run(g *globals) error {
	f := cpu.DetectFeatures()

	cli.PrintKV(g.Out, "version", version)
	cli.PrintKV(g.Out, "go", runtime.Version())
	cli.PrintKV(g.Out, "arch", f.Architecture)
	cli.PrintKV(g.Out, "simd", f.Extensions())
	cli.PrintKV(g.Out, "best", f.Best().String())
	cli.PrintKV(g.Out, "effects", fmt.Sprint(len(effectchain.DefaultRegistry().Types())))

	return nil
}

type windowsCmd struct {
	Size     int  `default:"1024" help:"Window length in samples."`
	Periodic bool `help:"Use the periodic (FFT) form instead of symmetric."`
}

func (c *windowsCmd) Run(g *globals) error {
	if c.Size < 1 {
		return fmt.Errorf("window size must be >= 1: %d", c.Size)
	}

	tw := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WINDOW\tCOHERENT GAIN\tGAIN dB")

	for t := window.Rectangular; t.Valid(); t++ {
		cg := window.CoherentGain(window.Generate(t, c.Size, c.Periodic))
		fmt.Fprintf(tw, "%s\t%.6f\t%.2f\n", t, cg, stats.AmpToDB(cg))
	}

	return tw.Flush()
}
