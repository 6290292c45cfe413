package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	sectionStyle = lipgloss.NewStyle().Underline(true)
)

// SetColor applies the --color mode. auto keeps styling only on terminals.
func SetColor(mode string, isTerminal bool) error {
	switch mode {
	case "on":
		lipgloss.SetColorProfile(termenv.ANSI256)
	case "off":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "auto":
		if !isTerminal {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	default:
		return fmt.Errorf("invalid color mode %q (want auto, on or off)", mode)
	}
	return nil
}

func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case "error":
		return errStyle
	case "warning":
		return warnStyle
	}
	return faintStyle
}

func stateStyle(state string) lipgloss.Style {
	switch state {
	case "ok":
		return okStyle
	case "warn":
		return warnStyle
	case "error", "broken":
		return errStyle
	}
	return faintStyle
}
