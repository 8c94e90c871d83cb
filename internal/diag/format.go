package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"abigen/internal/source"
)

// PrettyOpts controls Fprint output.
type PrettyOpts struct {
	Color     bool
	WithNotes bool
	Context   bool // print the source line with a caret marker
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	caretColor   = color.New(color.FgGreen, color.Bold)
)

func severityColor(sev Severity) *color.Color {
	switch sev {
	case SevError:
		return errorColor
	case SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

// Fprint renders one diagnostic:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// optionally followed by the source line and a ^~~ marker under the span.
func Fprint(w io.Writer, fs *source.FileSet, d *Diagnostic, opts PrettyOpts) {
	sev := d.Severity.String()
	if opts.Color {
		sev = severityColor(d.Severity).Sprint(sev)
	}
	fmt.Fprintf(w, "%s: %s %s: %s\n", location(fs, d.Primary), sev, d.Code.ID(), d.Message)
	if opts.Context {
		printContext(w, fs, d.Primary, opts.Color)
	}
	if opts.WithNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s: note: %s\n", location(fs, n.Span), n.Msg)
		}
	}
}

// FprintBag renders every diagnostic of the bag in its current order.
func FprintBag(w io.Writer, fs *source.FileSet, bag *Bag, opts PrettyOpts) {
	if bag == nil {
		return
	}
	for i := range bag.items {
		Fprint(w, fs, &bag.items[i], opts)
	}
}

// FormatShort renders a diagnostic on a single uncolored line.
func FormatShort(fs *source.FileSet, d *Diagnostic) string {
	return fmt.Sprintf("%s: %s %s: %s", location(fs, d.Primary), d.Severity, d.Code.ID(), d.Message)
}

func location(fs *source.FileSet, sp source.Span) string {
	if fs == nil || fs.Get(sp.File) == nil {
		return "<input>"
	}
	return fs.Position(sp)
}

func printContext(w io.Writer, fs *source.FileSet, sp source.Span, colored bool) {
	if fs == nil {
		return
	}
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(sp)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		width = int(end.Col - start.Col)
	}
	pad := strings.Map(func(r rune) rune {
		if r == '\t' {
			return '\t'
		}
		return ' '
	}, line[:min(int(start.Col-1), len(line))])
	marker := "^" + strings.Repeat("~", width-1)
	if colored {
		marker = caretColor.Sprint(marker)
	}
	fmt.Fprintf(w, "    %s\n    %s%s\n", line, pad, marker)
}
