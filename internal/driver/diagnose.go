package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"abigen/internal/abi"
	"abigen/internal/abifmt"
	"abigen/internal/diag"
	"abigen/internal/itf"
	"abigen/internal/observ"
	"abigen/internal/parser"
	"abigen/internal/source"
	"abigen/internal/trace"
)

// DiagnoseStage определяет, до какой фазы доходит проверка
type DiagnoseStage string

const (
	DiagnoseStageRead  DiagnoseStage = "read"  // indented tree only
	DiagnoseStageParse DiagnoseStage = "parse" // model construction
	DiagnoseStageLinks DiagnoseStage = "links" // documentation cross-references
	DiagnoseStageAll   DiagnoseStage = "all"   // emission order and layout summary
)

// ParseStage validates a --stage flag value.
func ParseStage(s string) (DiagnoseStage, error) {
	switch DiagnoseStage(s) {
	case DiagnoseStageRead, DiagnoseStageParse, DiagnoseStageLinks, DiagnoseStageAll:
		return DiagnoseStage(s), nil
	case "":
		return DiagnoseStageAll, nil
	}
	return "", fmt.Errorf("invalid stage %q (expected read|parse|links|all)", s)
}

func (s DiagnoseStage) reaches(other DiagnoseStage) bool {
	rank := map[DiagnoseStage]int{
		DiagnoseStageRead:  0,
		DiagnoseStageParse: 1,
		DiagnoseStageLinks: 2,
		DiagnoseStageAll:   3,
	}
	if s == "" {
		s = DiagnoseStageAll
	}
	return rank[s] >= rank[other]
}

// DiagnoseOptions содержит опции для проверки одного файла
type DiagnoseOptions struct {
	Stage            DiagnoseStage
	MaxDiagnostics   int
	WarningsAsErrors bool
	RequireDocs      bool
	EnableTimings    bool
	// Cache, when set, lets CheckFiles skip files whose content was already
	// checked cleanly.
	Cache    *DiskCache
	Observer PhaseObserver
}

// DiagnoseResult is everything one run produced. ABI is nil when a fatal
// diagnostic stopped the pipeline or the result came from the cache.
type DiagnoseResult struct {
	Path    string
	FileSet *source.FileSet
	FileID  source.FileID
	Nodes   []*itf.Node
	ABI     *abi.ABI
	Order   []abi.Type
	Summary *abifmt.Summary
	Bag     *diag.Bag
	Fatal   *diag.Error
	Timing  *observ.Report
	Cached  bool
}

// Failed reports whether the run produced an error diagnostic.
func (r *DiagnoseResult) Failed() bool {
	return r.Fatal != nil || r.Bag.HasErrors()
}

// Diagnose loads a specification file and runs the pipeline up to
// opts.Stage. Only failing to read the file is returned as an error;
// everything about the content ends up in the result's bag.
func Diagnose(ctx context.Context, path string, opts DiagnoseOptions) (*DiagnoseResult, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return run(ctx, fs, id, opts), nil
}

// DiagnoseSource runs the pipeline over in-memory content.
func DiagnoseSource(ctx context.Context, name string, content []byte, opts DiagnoseOptions) *DiagnoseResult {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, content)
	return run(ctx, fs, id, opts)
}

func run(ctx context.Context, fs *source.FileSet, id source.FileID, opts DiagnoseOptions) *DiagnoseResult {
	tracer := trace.FromContext(ctx)
	file := fs.Get(id)
	res := &DiagnoseResult{
		Path:    file.Path,
		FileSet: fs,
		FileID:  id,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}
	fileSpan := trace.Begin(tracer, trace.ScopeFile, "file:"+file.Path, trace.ParentFrom(ctx))
	began := time.Now()
	defer func() {
		opts.Observer.finish(res, time.Since(began))
		detail := "ok"
		if res.Failed() {
			detail = "failed"
		}
		fileSpan.WithExtra("diagnostics", fmt.Sprint(res.Bag.Len())).End(detail)
	}()

	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}
	var passID uint64
	phase := func(name string, fn func() error) error {
		span := trace.Begin(tracer, trace.ScopePass, name, fileSpan.ID())
		passID = span.ID()
		idx := timer.Begin(name)
		start := time.Now()
		opts.Observer.notify(PhaseEvent{File: file.Path, Name: name, Status: PhaseStart})
		err := fn()
		elapsed := time.Since(start)
		timer.End(idx, "")
		opts.Observer.notify(PhaseEvent{File: file.Path, Name: name, Status: PhaseEnd, Elapsed: elapsed})
		if err != nil {
			span.End(err.Error())
		} else {
			span.End("")
		}
		return err
	}

	err := phase("read", func() (err error) {
		res.Nodes, err = itf.Read(fs, id)
		return err
	})
	if err == nil && opts.Stage.reaches(DiagnoseStageParse) {
		err = phase("parse", func() (err error) {
			res.ABI, err = parser.Parse(res.Nodes, parser.Options{
				Reporter:    diag.BagReporter{Bag: res.Bag},
				RequireDocs: opts.RequireDocs,
				Tracer:      tracer,
				Parent:      passID,
			})
			return err
		})
	}
	if err == nil && opts.Stage.reaches(DiagnoseStageLinks) {
		err = phase("links", func() error { return checkLinks(res.ABI, res.Bag) })
	}
	if err == nil && opts.Stage.reaches(DiagnoseStageAll) {
		err = phase("layout", func() (err error) {
			res.Order, err = res.ABI.Order()
			if err != nil {
				return cycleError(err)
			}
			res.Summary = abifmt.Summarize(res.ABI, res.Order)
			return nil
		})
	}
	if err != nil {
		res.fail(err)
	}

	if opts.WarningsAsErrors {
		res.Bag.Promote()
	}
	if timer != nil {
		report := timer.Report()
		res.Timing = &report
	}
	return res
}

// fail records the fatal error of the run.
func (r *DiagnoseResult) fail(err error) {
	de, ok := diag.AsError(err)
	if !ok {
		de = diag.Errorf(diag.IOInfo, source.Span{}, "%v", err)
	}
	r.Fatal = de
	r.ABI = nil
	// link errors are already in the bag
	if !diag.HasCode(err, diag.SemaUnresolvedLink) {
		r.Bag.Add(de.Diagnostic)
	}
}

// checkLinks reports every unresolved documentation link and fails with the
// first one.
func checkLinks(a *abi.ABI, bag *diag.Bag) error {
	errs := a.CheckDocLinks()
	if len(errs) == 0 {
		return nil
	}
	var first *diag.Error
	for _, le := range errs {
		de := diag.Errorf(diag.SemaUnresolvedLink, le.Span, "%s", le.Error())
		bag.Add(de.Diagnostic)
		if first == nil {
			first = de
		}
	}
	return first
}

func cycleError(err error) error {
	var ce *abi.CycleError
	if !errors.As(err, &ce) || len(ce.Stuck) == 0 {
		return diag.Errorf(diag.SemaDependencyCycle, source.Span{}, "%v", err)
	}
	var sp source.Span
	if nt, ok := ce.Stuck[0].(abi.NamedType); ok {
		sp = nt.Pos()
	}
	return diag.Errorf(diag.SemaDependencyCycle, sp, "%v", err)
}
