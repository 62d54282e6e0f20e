package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Italic(true)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(okColor).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// StyledHelpPrinter returns a kong help printer rendered with lipgloss.
// It lists the subcommands at the top level and the arguments and flags
// of the selected command.
func StyledHelpPrinter(description string) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		node := ctx.Selected()
		if node == nil {
			node = ctx.Model.Node
		}

		sb.WriteString(helpTitleStyle.Render(ctx.Model.Name))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render(description))
		sb.WriteString("\n")

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(node.Summary())
		sb.WriteString("\n")

		if node.Help != "" && node != ctx.Model.Node {
			sb.WriteString("\n  ")
			sb.WriteString(node.Help)
			sb.WriteString("\n")
		}

		writeSection(&sb, "Commands:", commandLines(node), helpArgStyle)
		writeSection(&sb, "Arguments:", argumentLines(node), helpArgStyle)
		writeSection(&sb, "Flags:", flagLines(node), helpFlagStyle)

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())

		return nil
	}
}

type helpLine struct {
	name       string
	help       string
	defaultVal string
}

func writeSection(sb *strings.Builder, title string, lines []helpLine, style lipgloss.Style) {
	if len(lines) == 0 {
		return
	}

	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")

	for _, l := range lines {
		sb.WriteString("  ")
		sb.WriteString(style.Render(l.name))

		if l.help != "" {
			sb.WriteString("  ")
			sb.WriteString(l.help)
		}

		if l.defaultVal != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render("(default: " + l.defaultVal + ")"))
		}

		sb.WriteString("\n")
	}
}

func commandLines(node *kong.Node) []helpLine {
	var lines []helpLine

	for _, child := range node.Children {
		if child.Hidden {
			continue
		}

		lines = append(lines, helpLine{name: child.Name, help: child.Help})
	}

	return lines
}

func argumentLines(node *kong.Node) []helpLine {
	var lines []helpLine

	for _, arg := range node.Positional {
		lines = append(lines, helpLine{name: arg.Summary(), help: arg.Help})
	}

	return lines
}

func flagLines(node *kong.Node) []helpLine {
	lines := []helpLine{{name: "-h, --help", help: "Show context-sensitive help."}}

	for _, group := range node.AllFlags(true) {
		for _, f := range group {
			if f.Name == "help" {
				continue
			}

			name := "--" + f.Name
			if f.Short != 0 {
				name = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
			}

			if !f.IsBool() && f.PlaceHolder != "" {
				name += "=" + strings.ToUpper(f.PlaceHolder)
			}

			lines = append(lines, helpLine{name: name, help: f.Help, defaultVal: f.Default})
		}
	}

	return lines
}
