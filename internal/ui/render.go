package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// FileLine prints the per-file verdict of a check, e.g. "ok    maths.swift".
func FileLine(w io.Writer, state, path string, cached bool) {
	line := pad(stateStyle(state).Render(state), state, 6) + path
	if cached {
		line += " " + faintStyle.Render("(cached)")
	}
	fmt.Fprintln(w, line)
}

// Diagnostic prints one finding in the path:line:col form editors understand.
func Diagnostic(w io.Writer, path string, line, col int, severity, code, message string) {
	fmt.Fprintf(w, "  %s:%d:%d: %s[%s]: %s\n",
		path, line, col, severityStyle(severity).Render(severity), codeStyle.Render(code), message)
}

func SummaryLine(w io.Writer, files, functions, errors, warnings int) {
	fmt.Fprintf(w, "checked %d %s, %d %s: %d %s, %d %s\n",
		files, plural(files, "file", "files"),
		functions, plural(functions, "function", "functions"),
		errors, plural(errors, "error", "errors"),
		warnings, plural(warnings, "warning", "warnings"))
}

func TruncatedLine(w io.Writer, hidden int) {
	fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf("  ... %d more diagnostics not shown", hidden)))
}

// pad appends the spaces plain needs to fill width columns.
func pad(rendered, plain string, width int) string {
	if n := width - runewidth.StringWidth(plain); n > 0 {
		return rendered + strings.Repeat(" ", n)
	}
	return rendered
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Widths returns the display width of the widest cell in each column.
func Widths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	return widths
}

// ListRow prints cells padded to widths. The state column is styled.
func ListRow(w io.Writer, cells []string, widths []int, stateCol int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		rendered := cell
		if i == stateCol {
			rendered = stateStyle(cell).Render(cell)
		}
		if i < len(cells)-1 {
			rendered = pad(rendered, cell, widths[i])
		}
		parts[i] = rendered
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}

func ShowHeader(w io.Writer, name, path string) {
	fmt.Fprintf(w, "%s  %s\n", headerStyle.Render(name), faintStyle.Render(path))
}

func ShowState(w io.Writer, state string) {
	fmt.Fprintf(w, "State: %s\n", stateStyle(state).Render(state))
}

func ShowSection(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionStyle.Render(title))
}

// ShowText prints a possibly multi-line value indented under a section.
func ShowText(w io.Writer, text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

func ShowParam(w io.Writer, label, name, typ, description string) {
	head := name
	if label != "" {
		head = label + " " + name
	}
	line := fmt.Sprintf("  %s: %s", head, codeStyle.Render(typ))
	if description != "" {
		line += "  " + description
	}
	fmt.Fprintln(w, line)
}

func CountLine(w io.Writer, key string, count int) {
	fmt.Fprintf(w, "  %s: %d\n", key, count)
}
