package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"abigen/internal/driver"
)

const manifestName = "abigen.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Project projectSection `toml:"project"`
	Check   checkSection   `toml:"check"`
}

type projectSection struct {
	Name string `toml:"name"`
}

type checkSection struct {
	// Files are paths, directories or glob patterns relative to the manifest.
	Files            []string `toml:"files"`
	RequireDocs      bool     `toml:"require_docs"`
	WarningsAsErrors bool     `toml:"warnings_as_errors"`
	Jobs             int      `toml:"jobs"`
	Cache            bool     `toml:"cache"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return projectConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("project") {
		return projectConfig{}, fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [project].name", path)
	}
	if cfg.Check.Jobs < 0 {
		return projectConfig{}, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	return cfg, nil
}

// apply copies the manifest defaults into opts. Flags given on the command
// line are applied afterwards and win.
func (m *projectManifest) apply(opts *driver.DiagnoseOptions) {
	if m == nil {
		return
	}
	opts.RequireDocs = opts.RequireDocs || m.Config.Check.RequireDocs
	opts.WarningsAsErrors = opts.WarningsAsErrors || m.Config.Check.WarningsAsErrors
}

// specFiles expands [check].files into a sorted list of files.
func (m *projectManifest) specFiles() ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	for _, entry := range m.Config.Check.Files {
		pattern := filepath.Join(m.Root, filepath.FromSlash(entry))
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: bad pattern %q: %w", m.Path, entry, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: [check].files entry matches nothing: %s", m.Path, entry)
		}
		for _, match := range matches {
			files, err := expandPath(match)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// expandPath turns a directory into the specification files below it.
func expandPath(p string) ([]string, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return driver.ListSpecFiles(p)
	}
	return []string{p}, nil
}
