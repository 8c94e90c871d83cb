package diagfmt

import (
	"fmt"
	"strings"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAsIs prints paths the way the file set stores them.
	PathModeAsIs PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeBasename
)

// ParsePathMode reads a --paths flag value.
func ParsePathMode(s string) (PathMode, error) {
	switch strings.ToLower(s) {
	case "", "asis":
		return PathModeAsIs, nil
	case "absolute":
		return PathModeAbsolute, nil
	case "basename":
		return PathModeBasename, nil
	}
	return PathModeAsIs, fmt.Errorf("invalid path mode %q (expected asis|absolute|basename)", s)
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName    string
	ToolVersion string
	PathMode    PathMode
}
