package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"abigen/internal/diag"
	"abigen/internal/source"
	"abigen/internal/trace"
)

// SpecExtensions are the file suffixes picked up when a directory is checked.
var SpecExtensions = []string{".abi", ".itf"}

// ListSpecFiles возвращает отсортированный список файлов спецификаций в директории
func ListSpecFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, ext := range SpecExtensions {
			if strings.HasSuffix(path, ext) {
				files = append(files, source.NormalizePath(path))
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CheckFiles checks several specification files concurrently, at most jobs
// at a time (0 means GOMAXPROCS). Results come back in the order of paths.
// A file that cannot be read yields a result with an IO diagnostic; the
// returned error is only set when ctx is cancelled.
func CheckFiles(ctx context.Context, paths []string, opts DiagnoseOptions, jobs int) ([]*DiagnoseResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check_files", trace.ParentFrom(ctx)).
		WithExtra("files", fmt.Sprint(len(paths)))
	defer span.End("")
	ctx = trace.WithParent(ctx, span.ID())

	results := make([]*DiagnoseResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = checkOne(gctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkOne(ctx context.Context, path string, opts DiagnoseOptions) *DiagnoseResult {
	fset := source.NewFileSet()
	id, err := fset.Load(path)
	if err != nil {
		bag := diag.NewBag(opts.MaxDiagnostics)
		de := diag.Errorf(diag.IOLoadFile, source.Span{}, "cannot read %s: %v", path, err)
		bag.Add(de.Diagnostic)
		res := &DiagnoseResult{Path: source.NormalizePath(path), FileSet: fset, Bag: bag, Fatal: de}
		opts.Observer.finish(res, 0)
		return res
	}
	file := fset.Get(id)

	var key Digest
	if opts.Cache != nil && opts.Stage.reaches(DiagnoseStageAll) {
		key = cacheKey(file.Hash, opts)
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err == nil && hit {
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache_hit", path)
			res := &DiagnoseResult{
				Path:    file.Path,
				FileSet: fset,
				FileID:  id,
				Summary: payload.Summary,
				Bag:     diag.NewBag(opts.MaxDiagnostics),
				Cached:  true,
			}
			for _, d := range payload.Warnings {
				res.Bag.Add(rebase(d, id))
			}
			opts.Observer.finish(res, 0)
			return res
		}
		res := run(ctx, fset, id, opts)
		// stored before the cache's own warnings are added
		warnings := append([]diag.Diagnostic(nil), res.Bag.Items()...)
		if err != nil {
			diag.ReportWarning(diag.BagReporter{Bag: res.Bag}, diag.IOCacheFailure, source.Span{},
				fmt.Sprintf("cache read failed: %v", err)).Emit()
		}
		if res.Summary != nil && !res.Failed() {
			if err := opts.Cache.Put(key, &DiskPayload{
				Path:        file.Path,
				ContentHash: file.Hash,
				Warnings:    warnings,
				Summary:     res.Summary,
			}); err != nil {
				diag.ReportWarning(diag.BagReporter{Bag: res.Bag}, diag.IOCacheFailure, source.Span{},
					fmt.Sprintf("cache write failed: %v", err)).Emit()
			}
		}
		return res
	}
	return run(ctx, fset, id, opts)
}

// rebase points the spans of a cached diagnostic at the freshly loaded file.
func rebase(d diag.Diagnostic, id source.FileID) diag.Diagnostic {
	d.Primary.File = id
	notes := make([]diag.Note, len(d.Notes))
	for i, n := range d.Notes {
		n.Span.File = id
		notes[i] = n
	}
	d.Notes = notes
	return d
}
