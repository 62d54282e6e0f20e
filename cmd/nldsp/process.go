package main

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cwbudde/algo-nldsp/dsp/dither"
	"github.com/cwbudde/algo-nldsp/dsp/oversample"
	"github.com/cwbudde/algo-nldsp/internal/cli"
	"github.com/cwbudde/algo-nldsp/internal/ui"
	"github.com/cwbudde/algo-nldsp/internal/wavio"
	"github.com/cwbudde/algo-nldsp/measure/loudness"
	"github.com/cwbudde/algo-nldsp/stats"
)

// progressStep is the minimum progress change between two UI updates.
const progressStep = 0.01

type processCmd struct {
	Chain      string   `short:"c" required:"" type:"existingfile" help:"Chain graph JSON file."`
	Sidechain  string   `short:"s" type:"existingfile" help:"WAV file feeding the chain's sidechain input."`
	Oversample int      `short:"x" default:"1" enum:"1,2,4,8,16" help:"Oversampling factor (${enum})."`
	Quality    string   `short:"q" default:"medium" enum:"low,medium,high" help:"Resampler quality (${enum})."`
	Block      int      `default:"512" help:"Processing block size at the file rate."`
	Dither     string   `default:"tpdf" enum:"none,rpdf,tpdf" help:"Dither applied when writing (${enum})."`
	Shape      bool     `help:"First-order noise shaping of the dither."`
	Plain      bool     `help:"Print one line per file instead of the interactive view."`
	Files      []string `arg:"" type:"existingfile" help:"WAV files to render."`
}

func (c *processCmd) Run(g *globals) error {
	quality, err := oversample.ParseQuality(c.Quality)
	if err != nil {
		return err
	}

	enc, err := encodeOptions(c.Dither, c.Shape)
	if err != nil {
		return err
	}

	graph, err := readGraph(c.Chain)
	if err != nil {
		return err
	}

	r, err := newRenderer(graph, c.Oversample, quality, c.Block)
	if err != nil {
		return err
	}

	var side *wavio.Audio
	if c.Sidechain != "" {
		side, err = wavio.Read(c.Sidechain)
		if err != nil {
			return err
		}
	}

	g.Logger.Info("rendering",
		slog.String("chain", c.Chain),
		slog.Int("files", len(c.Files)),
		slog.Int("oversample", c.Oversample),
		slog.String("quality", quality.String()),
	)

	var failed int

	if c.Plain {
		failed = renderFiles(r, c.Files, side, enc, g.Logger, plainSink(g))
	} else {
		failed, err = runInteractive(r, c.Files, side, enc, g.Logger)
		if err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(c.Files))
	}

	return nil
}

// runInteractive renders in a background goroutine while the bubbletea
// program shows progress.
func runInteractive(r *renderer, files []string, side *wavio.Audio, enc []wavio.EncodeOption, logger *slog.Logger) (int, error) {
	p := tea.NewProgram(ui.NewModel("nldsp process", files))
	done := make(chan int, 1)

	go func() {
		done <- renderFiles(r, files, side, enc, logger, p.Send)
	}()

	_, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("ui: %w", err)
	}

	return <-done, nil
}

// plainSink prints completed files as key/value lines.
func plainSink(g *globals) func(tea.Msg) {
	return func(msg tea.Msg) {
		m, ok := msg.(ui.FileCompleteMsg)
		if !ok {
			return
		}

		if m.Error != nil {
			cli.PrintError(m.Error.Error())
			return
		}

		cli.PrintKV(g.Out, m.OutputPath, fmt.Sprintf("%.1f LUFS -> %.1f LUFS", m.InputLUFS, m.OutputLUFS))
	}
}

// renderFiles processes every file, reporting through send, and returns
// the number of failures. A failing file does not stop the batch.
func renderFiles(r *renderer, files []string, side *wavio.Audio, enc []wavio.EncodeOption, logger *slog.Logger, send func(tea.Msg)) int {
	failed := 0

	for i, path := range files {
		send(ui.FileStartMsg{FileIndex: i, FileName: path})

		msg := renderFile(r, path, side, enc, send)
		msg.FileIndex = i

		if msg.Error != nil {
			failed++

			logger.Error("render failed", slog.String("file", path), slog.Any("error", msg.Error))
		} else {
			logger.Info("rendered",
				slog.String("file", path),
				slog.String("output", msg.OutputPath),
				slog.Float64("input_lufs", msg.InputLUFS),
				slog.Float64("output_lufs", msg.OutputLUFS),
			)
		}

		send(msg)
	}

	send(ui.AllCompleteMsg{})

	return failed
}

func renderFile(r *renderer, path string, side *wavio.Audio, enc []wavio.EncodeOption, send func(tea.Msg)) ui.FileCompleteMsg {
	in, err := wavio.Read(path)
	if err != nil {
		return ui.FileCompleteMsg{Error: err}
	}

	last := -1.0

	out, err := r.Render(in, side, func(done, total int, block []float64) {
		progress := float64(done) / float64(total)
		if progress-last < progressStep && done < total {
			return
		}

		last = progress
		send(ui.ProgressMsg{Progress: progress, PeakDB: stats.AmpToDB(stats.Peak(block))})
	})
	if err != nil {
		return ui.FileCompleteMsg{Error: fmt.Errorf("%s: %w", path, err)}
	}

	outPath := ui.OutputName(path)

	err = wavio.Write(outPath, out, enc...)
	if err != nil {
		return ui.FileCompleteMsg{Error: err}
	}

	inLUFS, err := integratedLUFS(in)
	if err != nil {
		return ui.FileCompleteMsg{Error: err}
	}

	outLUFS, err := integratedLUFS(out)
	if err != nil {
		return ui.FileCompleteMsg{Error: err}
	}

	return ui.FileCompleteMsg{
		OutputPath: outPath,
		InputLUFS:  inLUFS,
		OutputLUFS: outLUFS,
	}
}

// encodeOptions builds the WAV writer options for a dither name.
func encodeOptions(name string, shape bool) ([]wavio.EncodeOption, error) {
	kind, err := dither.ParseKind(name)
	if err != nil {
		return nil, err
	}

	var shaping []float64
	if shape {
		shaping = dither.FirstOrder
	}

	return []wavio.EncodeOption{wavio.WithDither(kind, 1, shaping)}, nil
}

func integratedLUFS(a *wavio.Audio) (float64, error) {
	res, err := loudness.Measure(a.Channels, float64(a.SampleRate))
	if err != nil {
		return 0, err
	}

	return res.Integrated, nil
}
