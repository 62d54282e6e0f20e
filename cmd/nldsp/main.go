// Command nldsp renders WAV files through nonlinear effect chains, learns
// matching EQ curves and measures harmonic distortion.
//
// Usage:
//
//	nldsp process --chain chain.json [--oversample 4] take1.wav take2.wav
//	nldsp match --reference ref.wav input.wav
//	nldsp thd --effect clipper -p slope=0.5
//	nldsp effects
//	nldsp info
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/cwbudde/algo-nldsp/internal/cli"
)

const description = "Nonlinear audio DSP: effect chains, matching EQ and distortion analysis"

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Version versionFlag `short:"V" help:"Show version information and exit."`
	Verbose bool        `short:"v" help:"Log progress details to stderr."`
	Debug   bool        `help:"Log debug details to stderr."`
	LogFile string      `type:"path" help:"Write logs to this file instead of stderr."`

	Process processCmd `cmd:"" help:"Render WAV files through an effect chain."`
	Match   matchCmd   `cmd:"" help:"Learn a matching EQ from a reference and apply it."`
	THD     thdCmd     `cmd:"" name:"thd" help:"Measure the harmonic distortion of a chain or effect."`
	Effects effectsCmd `cmd:"" help:"List the registered effect types."`
	Windows windowsCmd `cmd:"" help:"Print coherent gain of the analysis windows."`
	Info    infoCmd    `cmd:"" help:"Print build and CPU feature information."`
}

// globals is bound into every command's Run method.
type globals struct {
	Out    io.Writer
	Logger *slog.Logger
}

type versionFlag bool

func (versionFlag) BeforeApply(app *kong.Kong) error {
	cli.PrintVersion(app.Stdout, version)
	app.Exit(0)

	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var c CLI

	parser, err := kong.New(&c,
		kong.Name("nldsp"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(description)),
	)
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		cli.PrintError(err.Error())
		return 2
	}

	logger, closeLog, err := newLogger(c.Verbose, c.Debug, c.LogFile)
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}
	defer closeLog()

	err = ctx.Run(&globals{Out: os.Stdout, Logger: logger})
	if err != nil {
		logger.Error("command failed", slog.String("command", ctx.Command()), slog.Any("error", err))
		cli.PrintError(err.Error())

		return 1
	}

	return 0
}

// newLogger builds the text logger. Without --verbose or --debug only
// warnings and errors are logged.
func newLogger(verbose, debug bool, path string) (*slog.Logger, func(), error) {
	level := slog.LevelWarn

	switch {
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}

		w = f
		closeFn = func() { _ = f.Close() }
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}
