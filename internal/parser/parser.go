package parser

import (
	"errors"
	"fmt"

	"abigen/internal/abi"
	"abigen/internal/diag"
	"abigen/internal/itf"
	"abigen/internal/layout"
	"abigen/internal/source"
	"abigen/internal/trace"
)

type Options struct {
	// Reporter receives warnings; nil drops them.
	Reporter diag.Reporter
	// RequireDocs turns missing documentation into a fatal error.
	RequireDocs bool
	// Tracer gets one span per top-level declaration, parented to Parent.
	Tracer trace.Tracer
	Parent uint64
}

// Parser хранит состояние разбора одного дерева спецификации
type Parser struct {
	b    *abi.Builder
	opts Options
	// spans of declarations by name, for "previous declaration" notes
	typeSpans    map[string]source.Span
	syscallSpans map[string]source.Span
}

// Parse builds the ABI model from the top-level nodes of an indented tree.
// The first violated rule stops the parse and is returned as a *diag.Error;
// warnings go to opts.Reporter.
func Parse(nodes []*itf.Node, opts Options) (*abi.ABI, error) {
	p := &Parser{
		b:            abi.NewBuilder(),
		opts:         opts,
		typeSpans:    make(map[string]source.Span),
		syscallSpans: make(map[string]source.Span),
	}
	if p.opts.Reporter == nil {
		p.opts.Reporter = diag.NopReporter{}
	}

	top := newCursor(nodes)
	doc, _, err := p.popDoc(&top)
	if err != nil {
		return nil, err
	}
	p.b.SetDoc(doc)

	for !top.done() {
		n := top.next()
		span := trace.Begin(p.opts.Tracer, trace.ScopeDecl, n.Text, p.opts.Parent)
		err := p.parseTopLevel(n)
		if err != nil {
			span.End(err.Error())
			return nil, err
		}
		span.End("")
	}
	return p.b.Build(), nil
}

// parseTopLevel dispatches on the first word of a declaration.
func (p *Parser) parseTopLevel(n *itf.Node) error {
	d := tokenize(n)
	keyword := d.word(0)
	_, intLike := abi.IntLikeKeyword(keyword)
	switch {
	case intLike, keyword == "struct", keyword == "function", keyword == "syscall":
	default:
		p.warn(diag.SynUnknownTopLevel, n.Span, fmt.Sprintf("invalid top level declaration: %s", n.Text))
		return nil
	}

	body := newCursor(n.Children)
	doc, err := p.requireDoc(&body, n)
	if err != nil {
		return err
	}

	if kind, ok := abi.IntLikeKeyword(keyword); ok {
		t, err := p.parseIntLike(d, kind, body)
		if err != nil {
			return err
		}
		t.Doc = doc
		return p.addType(t, d)
	}
	switch keyword {
	case "struct":
		t, err := p.parseStruct(d, body)
		if err != nil {
			return err
		}
		t.Doc = doc
		return p.addType(t, d)
	case "function":
		t, err := p.parseFunction(d, body)
		if err != nil {
			return err
		}
		t.Doc = doc
		return p.addType(t, d)
	case "syscall":
		s, err := p.parseSyscall(d, body)
		if err != nil {
			return err
		}
		s.Doc = doc
		if err := p.b.AddSyscall(s); err != nil {
			return diag.Errorf(diag.SemaDuplicateSys, n.Span, "duplicate syscall name: %s", s.Name)
		}
		p.syscallSpans[s.Name] = n.Span
	}
	return nil
}

// checkTypeName fails if name is already taken in the type namespace.
func (p *Parser) checkTypeName(d decl, name string) error {
	if _, dup := p.b.LookupType(name); dup {
		return diag.Errorf(diag.SemaDuplicateType, d.span(len(d.toks)-1), "duplicate definition of %s", name).
			Note(p.typeSpans[name], "previous definition")
	}
	return nil
}

func (p *Parser) addType(t abi.NamedType, d decl) error {
	if err := p.checkTypeName(d, t.Ident()); err != nil {
		return err
	}
	if err := p.b.AddType(t); err != nil {
		return diag.Errorf(diag.SemaDuplicateType, d.node.Span, "%v", err)
	}
	p.typeSpans[t.Ident()] = d.node.Span
	return nil
}

func (p *Parser) warn(code diag.Code, sp source.Span, msg string) {
	diag.ReportWarning(p.opts.Reporter, code, sp, msg).Emit()
}

// modelError maps a model construction failure onto a diagnostic.
func modelError(err error, sp source.Span, what string) error {
	code := diag.SemaInfo
	var lerr *layout.LayoutError
	switch {
	case errors.Is(err, abi.ErrDuplicateMember):
		code = diag.SemaDuplicateMember
	case errors.Is(err, abi.ErrRangeOfUnsized):
		code = diag.SemaRangeOfVoid
	case errors.Is(err, abi.ErrBadVariantTag):
		code = diag.SemaBadVariantTag
	case errors.As(err, &lerr):
		code = diag.LayoutError
	}
	return diag.Errorf(code, sp, "%s: %v", what, err)
}
