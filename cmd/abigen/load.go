package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"abigen/internal/driver"
)

// loadModel runs the whole pipeline over one file for the inspection
// commands. Diagnostics go to stderr; a failed check is an error.
func loadModel(cmd *cobra.Command, path string) (*driver.DiagnoseResult, error) {
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return nil, err
	}
	opts := driver.DiagnoseOptions{
		Stage:          driver.DiagnoseStageAll,
		MaxDiagnostics: g.maxDiagnostics,
		EnableTimings:  g.timings,
	}
	if manifest, ok, err := loadProjectManifest("."); err != nil {
		return nil, err
	} else if ok {
		manifest.apply(&opts)
	}
	res, err := driver.Diagnose(cmd.Context(), path, opts)
	if err != nil {
		return nil, err
	}
	if !g.quiet || res.Failed() {
		printDiagnostics(os.Stderr, res)
	}
	if g.timings {
		printTimings(os.Stderr, res)
	}
	if res.Failed() {
		dumpTrace(cmd)
		return nil, fmt.Errorf("%s: %w", path, errCheckFailed)
	}
	return res, nil
}
