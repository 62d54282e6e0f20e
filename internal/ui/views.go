package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const boxWidth = 60

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E86AB"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	okIcon     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
	busyIcon   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F18F01")).Render("⚙")
	failIcon   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C73E1D")).Render("✗")
	queuedIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
)

func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Processing %d file(s)", len(m.Files))))
	b.WriteString("\n\n")

	for _, file := range m.Files {
		b.WriteString(renderFileEntry(file))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderOverallProgress(m))

	return b.String()
}

func renderFileEntry(file FileProgress) string {
	name := filepath.Base(file.InputPath)

	switch file.Status {
	case StatusComplete:
		return fmt.Sprintf(" %s %s → %s\n   In: %.1f LUFS | Out: %.1f LUFS",
			okIcon, name, filepath.Base(file.OutputPath), file.InputLUFS, file.OutputLUFS)
	case StatusProcessing:
		return fmt.Sprintf(" %s %s\n%s", busyIcon, name, renderFileDetails(file))
	case StatusError:
		return fmt.Sprintf(" %s %s\n   Error: %v", failIcon, name, file.Error)
	default:
		return fmt.Sprintf(" %s %s\n   Queued...", queuedIcon, name)
	}
}

func renderFileDetails(file FileProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#2E86AB")).
		Padding(0, 1).
		Width(boxWidth)

	var content strings.Builder

	content.WriteString(renderProgressBar(file.Progress, 40))
	content.WriteString("\n")

	elapsed := file.ElapsedTime.Seconds()

	var remaining float64
	if file.Progress > 0 {
		remaining = elapsed/file.Progress - elapsed
	}

	content.WriteString(fmt.Sprintf("Elapsed: %.1fs | Remaining: ~%.1fs | Peak: %.1f dBFS",
		elapsed, remaining, file.PeakDB))

	return box.Render(content.String())
}

func renderProgressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))

	return fmt.Sprintf("%s%s %d%%",
		strings.Repeat("█", filled), strings.Repeat("░", width-filled), int(progress*100))
}

func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1).
		Width(boxWidth)

	content := fmt.Sprintf("Overall: %d/%d complete", m.CompletedFiles, len(m.Files))
	if m.CurrentIndex >= 0 {
		content = fmt.Sprintf("Processing file %d of %d (%d complete)",
			m.CurrentIndex+1, len(m.Files), m.CompletedFiles)
	}

	return box.Render(content)
}

func renderCompletionSummary(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Processing complete"))
	b.WriteString("\n\n")

	for _, file := range m.Files {
		b.WriteString(renderFileEntry(file))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", boxWidth))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d rendered, %d failed\n", m.CompletedFiles, m.FailedFiles))

	return b.String()
}

// OutputName derives the output path for input: name-processed.wav next
// to the input.
func OutputName(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "-processed" + ext
}
