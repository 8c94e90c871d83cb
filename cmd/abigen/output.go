package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"abigen/internal/abifmt"
	"abigen/internal/diag"
	"abigen/internal/driver"
)

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on", "always":
		return colorOn, nil
	case "off", "never":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

var useColor bool

// applyColorFlag resolves --color once for the whole process.
func applyColorFlag(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := readColorMode(value)
	if err != nil {
		return err
	}
	switch mode {
	case colorOn:
		useColor = true
	case colorOff:
		useColor = false
	default:
		useColor = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""
	}
	color.NoColor = !useColor
	return nil
}

func renderOptions() abifmt.Options {
	return abifmt.Options{Color: useColor}
}

type globalFlags struct {
	quiet          bool
	timings        bool
	maxDiagnostics int
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	var g globalFlags
	var err error
	flags := cmd.Root().PersistentFlags()
	if g.quiet, err = flags.GetBool("quiet"); err != nil {
		return g, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = flags.GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return g, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return g, nil
}

// printDiagnostics writes the bag of a result sorted and deduplicated.
func printDiagnostics(w io.Writer, res *driver.DiagnoseResult) {
	res.Bag.Sort()
	res.Bag.Dedup()
	diag.FprintBag(w, res.FileSet, res.Bag, diag.PrettyOpts{
		Color:     useColor,
		WithNotes: true,
		Context:   true,
	})
}

func printTimings(w io.Writer, res *driver.DiagnoseResult) {
	if res.Timing == nil {
		return
	}
	if err := res.Timing.Fprint(w, "timings: "+res.Path); err != nil {
		fmt.Fprintf(os.Stderr, "timings: %v\n", err)
	}
}

func formatShort(res *driver.DiagnoseResult, d diag.Diagnostic) string {
	return diag.FormatShort(res.FileSet, &d)
}

var errCheckFailed = errors.New("check failed")
