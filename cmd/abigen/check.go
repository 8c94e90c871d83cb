package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"abigen/internal/abifmt"
	"abigen/internal/diag"
	"abigen/internal/diagfmt"
	"abigen/internal/driver"
	"abigen/internal/source"
	"abigen/internal/ui"
	"abigen/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.abi|directory]...",
	Short: "Check ABI specification files",
	Long: `Check reads, parses and lays out every given specification. Directories
are searched for *.abi and *.itf files. Without arguments the files listed
in abigen.toml are checked.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("stage", "all", "last stage to run (read|parse|links|all)")
	checkCmd.Flags().Bool("require-docs", false, "treat missing documentation as an error")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("cache", false, "reuse results of files already checked cleanly")
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().String("paths", "asis", "how paths are printed in json and sarif output (asis|absolute|basename)")
	checkCmd.Flags().String("ui", "off", "progress view (auto|on|off)")
}

type checkReport struct {
	Path        string                   `json:"path"`
	OK          bool                     `json:"ok"`
	Cached      bool                     `json:"cached,omitempty"`
	Diagnostics []diagfmt.DiagnosticJSON `json:"diagnostics,omitempty"`
	Summary     *abifmt.Summary          `json:"summary,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	stageStr, err := cmd.Flags().GetString("stage")
	if err != nil {
		return fmt.Errorf("failed to get stage flag: %w", err)
	}
	stage, err := driver.ParseStage(stageStr)
	if err != nil {
		return err
	}
	requireDocs, err := cmd.Flags().GetBool("require-docs")
	if err != nil {
		return fmt.Errorf("failed to get require-docs flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "short", "json", "sarif":
	default:
		return fmt.Errorf("unknown format %q (expected pretty|short|json|sarif)", format)
	}
	pathsStr, err := cmd.Flags().GetString("paths")
	if err != nil {
		return fmt.Errorf("failed to get paths flag: %w", err)
	}
	pathMode, err := diagfmt.ParsePathMode(pathsStr)
	if err != nil {
		return err
	}
	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiStr)
	if err != nil {
		return err
	}

	opts := driver.DiagnoseOptions{
		Stage:            stage,
		MaxDiagnostics:   g.maxDiagnostics,
		WarningsAsErrors: warningsAsErrors,
		RequireDocs:      requireDocs,
		EnableTimings:    g.timings,
	}

	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	manifest.apply(&opts)
	if manifest != nil {
		if !cmd.Flags().Changed("jobs") && manifest.Config.Check.Jobs > 0 {
			jobs = manifest.Config.Check.Jobs
		}
		if !cmd.Flags().Changed("cache") {
			useCache = manifest.Config.Check.Cache
		}
	}

	files, err := collectFiles(args, manifest)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no specification files to check")
	}

	if useCache {
		cache, err := driver.OpenDiskCache("abigen")
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		opts.Cache = cache
	}

	var results []*driver.DiagnoseResult
	if shouldUseTUI(mode) && format == "pretty" {
		results, err = checkWithProgress(cmd, files, opts, jobs)
	} else {
		results, err = driver.CheckFiles(cmd.Context(), files, opts, jobs)
	}
	if err != nil {
		return err
	}

	failed := false
	for _, res := range results {
		res.Bag.Sort()
		res.Bag.Dedup()
		if res.Failed() {
			failed = true
		}
	}
	if err := writeResults(cmd, results, format, pathMode, g); err != nil {
		return err
	}
	if failed {
		dumpTrace(cmd)
		return errCheckFailed
	}
	return nil
}

func writeResults(cmd *cobra.Command, results []*driver.DiagnoseResult, format string, pathMode diagfmt.PathMode, g globalFlags) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		reports := make([]checkReport, 0, len(results))
		for _, res := range results {
			diags := diagfmt.BuildDiagnosticsOutput(res.Bag, res.FileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				PathMode:         pathMode,
				IncludeNotes:     true,
			})
			reports = append(reports, checkReport{
				Path:        res.Path,
				OK:          !res.Failed(),
				Cached:      res.Cached,
				Diagnostics: diags.Diagnostics,
				Summary:     res.Summary,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "sarif":
		bags := make([]*diag.Bag, len(results))
		sets := make([]*source.FileSet, len(results))
		for i, res := range results {
			bags[i], sets[i] = res.Bag, res.FileSet
		}
		return diagfmt.Sarif(out, bags, sets, diagfmt.SarifRunMeta{
			ToolName:    "abigen",
			ToolVersion: version.Version,
			PathMode:    pathMode,
		})
	}

	for _, res := range results {
		if !g.quiet || res.Failed() {
			if format == "short" {
				for _, d := range res.Bag.Items() {
					fmt.Fprintln(os.Stderr, formatShort(res, d))
				}
			} else {
				printDiagnostics(os.Stderr, res)
			}
		}
		if g.timings {
			printTimings(os.Stderr, res)
		}
		if !g.quiet {
			status := "ok"
			switch {
			case res.Failed():
				status = "FAILED"
			case res.Cached:
				status = "ok (cached)"
			}
			fmt.Fprintf(out, "%s: %s\n", res.Path, status)
		}
	}
	return nil
}

// collectFiles expands the arguments, falling back to the manifest.
func collectFiles(args []string, manifest *projectManifest) ([]string, error) {
	if len(args) == 0 {
		if manifest == nil {
			return nil, fmt.Errorf("no files given and no %s found", manifestName)
		}
		files, err := manifest.specFiles()
		if err != nil {
			return nil, err
		}
		for i, f := range files {
			files[i] = source.NormalizePath(f)
		}
		return files, nil
	}
	seen := make(map[string]struct{})
	var files []string
	for _, arg := range args {
		expanded, err := expandPath(arg)
		if err != nil {
			// unreadable files are reported by the check itself
			expanded = []string{arg}
		}
		for _, f := range expanded {
			f = source.NormalizePath(f)
			if _, dup := seen[f]; !dup {
				seen[f] = struct{}{}
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func checkWithProgress(cmd *cobra.Command, files []string, opts driver.DiagnoseOptions, jobs int) ([]*driver.DiagnoseResult, error) {
	events := make(chan driver.PhaseEvent, 64)
	opts.Observer = func(ev driver.PhaseEvent) { events <- ev }

	type outcome struct {
		results []*driver.DiagnoseResult
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		results, err := driver.CheckFiles(cmd.Context(), files, opts, jobs)
		close(events)
		done <- outcome{results, err}
	}()
	uiErr := ui.RunProgress(cmd.ErrOrStderr(), "abigen check", files, events)
	// the view may quit early; workers must never block on events
	for range events {
	}
	out := <-done
	if uiErr != nil {
		return nil, uiErr
	}
	return out.results, out.err
}
