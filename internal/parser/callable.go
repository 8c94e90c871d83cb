package parser

import (
	"fmt"

	"abigen/internal/abi"
	"abigen/internal/diag"
)

// parseFunction handles `function <name>` with optional `in` and `out`
// sections, in that order.
func (p *Parser) parseFunction(d decl, body cursor) (*abi.FunctionType, error) {
	if d.len() != 2 {
		return nil, diag.Errorf(diag.SynInvalidDecl, d.node.Span, "invalid function declaration: %s", d.node.Text)
	}
	name := d.word(1)
	if err := p.checkTypeName(d, name); err != nil {
		return nil, err
	}

	params, err := p.parseSection(&body, "in")
	if err != nil {
		return nil, err
	}

	var (
		ret       abi.Type
		returnDoc string
	)
	if body.at("out") {
		out := body.next()
		outBody := newCursor(out.Children)
		returnDoc, err = p.requireDocFor(&outBody, out, fmt.Sprintf("return value of %s", name))
		if err != nil {
			return nil, err
		}
		rest := outBody.rest()
		if len(rest) != 1 {
			return nil, diag.Errorf(diag.SynInvalidSection, out.Span, "expected a single return type in `out' section of function %s", name)
		}
		rd := tokenize(rest[0])
		if !rest[0].Leaf() {
			return nil, diag.Errorf(diag.SynUnexpectedChild, rest[0].Children[0].Span, "unexpected node inside %s: %s", rest[0].Text, rest[0].Children[0].Text)
		}
		if ret, err = p.parseType(rd, rd.toks); err != nil {
			return nil, err
		}
	}
	if n := body.peek(); n != nil {
		return nil, diag.Errorf(diag.SynUnexpectedChild, n.Span, "invalid node under function: %s", n.Text)
	}

	f := abi.NewFunction(name, params, ret)
	f.ReturnDoc = returnDoc
	f.Span = d.node.Span
	return f, nil
}

// parseSyscall handles `syscall <name>` with an optional `in` section
// followed by either `out` or `noreturn`.
func (p *Parser) parseSyscall(d decl, body cursor) (*abi.Syscall, error) {
	if d.len() != 2 {
		return nil, diag.Errorf(diag.SynInvalidDecl, d.node.Span, "invalid declaration: %s", d.node.Text)
	}
	name := d.word(1)
	if _, dup := p.b.LookupSyscall(name); dup {
		return nil, diag.Errorf(diag.SemaDuplicateSys, d.span(1), "duplicate syscall name: %s", name).
			Note(p.syscallSpans[name], "previous definition")
	}

	input, err := p.parseSection(&body, "in")
	if err != nil {
		return nil, err
	}
	var (
		output   *abi.StructType
		noReturn bool
	)
	switch {
	case body.at("out"):
		if output, err = p.parseSection(&body, "out"); err != nil {
			return nil, err
		}
	case body.at("noreturn"):
		n := body.next()
		if !n.Leaf() {
			return nil, diag.Errorf(diag.SynUnexpectedChild, n.Children[0].Span, "unexpected node inside noreturn: %s", n.Children[0].Text)
		}
		noReturn = true
	}
	if n := body.peek(); n != nil {
		return nil, diag.Errorf(diag.SynUnexpectedChild, n.Span, "invalid node under syscall: %s", n.Text)
	}

	s := abi.NewSyscall(name, input, output, noReturn)
	s.Span = d.node.Span
	return s, nil
}

// parseSection consumes an optional section node named keyword whose
// children form an anonymous struct. It returns nil when absent.
func (p *Parser) parseSection(body *cursor, keyword string) (*abi.StructType, error) {
	if !body.at(keyword) {
		return nil, nil
	}
	n := body.next()
	return p.buildStruct("", n, n.Children)
}
