// Package output provides consistent CLI output formatting.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// Summary describes a finished indexing run for display.
type Summary struct {
	Domains  int
	Entities int
	Files    int
	Output   string
	Duration time.Duration
	DryRun   bool
}

// Writer provides formatted output for the CLI.
type Writer struct {
	out      io.Writer
	useColor bool
	styles   Styles
}

// New creates a Writer. Color is used only when out is a terminal and
// NO_COLOR is unset.
func New(out io.Writer) *Writer {
	return NewWithColor(out, IsTTY(out) && !DetectNoColor())
}

// NewWithColor creates a Writer with color explicitly enabled or disabled.
func NewWithColor(out io.Writer, useColor bool) *Writer {
	return &Writer{
		out:      out,
		useColor: useColor,
		styles:   GetStyles(!useColor),
	}
}

// UseColor reports whether the writer emits styled output.
func (w *Writer) UseColor() bool {
	return w.useColor
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "  %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status(w.styles.Success.Render("✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.styles.Warning.Render("!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.styles.Error.Render("✗"), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Summary prints the result line of an indexing run followed by the
// output location.
func (w *Writer) Summary(s Summary) {
	counts := fmt.Sprintf("%s domains, %s entities, %s files",
		w.styles.Value.Render(fmt.Sprint(s.Domains)),
		w.styles.Value.Render(fmt.Sprint(s.Entities)),
		w.styles.Value.Render(fmt.Sprint(s.Files)))

	verb := "Indexed"
	if s.DryRun {
		verb = "Dry run:"
	}
	w.Successf("%s %s %s", verb, counts,
		w.styles.Dim.Render(fmt.Sprintf("(%s)", s.Duration.Round(time.Millisecond))))

	label := "wrote"
	if s.DryRun {
		label = "would write"
	}
	w.Status("", w.styles.Label.Render(label+" ")+s.Output)
}

// DiffLines prints index entries prefixed with + or -.
func (w *Writer) DiffLines(added, removed []string, limit int) {
	emit := func(style func(...string) string, prefix string, entries []string) {
		for i, e := range entries {
			if limit > 0 && i == limit {
				w.Status("", w.styles.Dim.Render(fmt.Sprintf("%s ... %d more", prefix, len(entries)-limit)))
				return
			}
			w.Status("", style(prefix+" "+e))
		}
	}
	emit(w.styles.Added.Render, "+", added)
	emit(w.styles.Removed.Render, "-", removed)
}

// Code prints a block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
