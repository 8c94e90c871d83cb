package parser

import (
	"abigen/internal/abi"
	"abigen/internal/diag"
)

// parseType resolves a type expression that must use every token.
func (p *Parser) parseType(d decl, toks []token) (abi.Type, error) {
	t, rest, err := p.parseTypePrefix(d, toks)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, diag.Errorf(diag.SynInvalidType, spanOf(toks, d.node.Span), "invalid type: %s", joinTokens(toks))
	}
	return t, nil
}

// parseTypePrefix reads the longest type expression at the start of toks:
// any number of `array N`, `ptr`, `cptr` and `atomic` prefixes followed by
// exactly one type name. The unread tokens are returned.
func (p *Parser) parseTypePrefix(d decl, toks []token) (abi.Type, []token, error) {
	if len(toks) == 0 {
		return nil, nil, diag.Errorf(diag.SynInvalidType, d.node.Span, "missing type in %s", d.node.Text)
	}
	head := toks[0]
	switch head.text {
	case "array":
		if len(toks) < 3 {
			return nil, nil, diag.Errorf(diag.SynInvalidType, spanOf(toks, d.node.Span), "invalid type: %s", joinTokens(toks))
		}
		count, err := parseCount(toks[1])
		if err != nil {
			return nil, nil, err
		}
		elem, rest, err := p.parseTypePrefix(d, toks[2:])
		if err != nil {
			return nil, nil, err
		}
		arr, err := abi.NewArray(count, elem)
		if err != nil {
			return nil, nil, modelError(err, head.span.Cover(toks[1].span), "invalid array")
		}
		return arr, rest, nil
	case "ptr", "cptr":
		if len(toks) < 2 {
			return nil, nil, diag.Errorf(diag.SynInvalidType, head.span, "invalid type: %s", head.text)
		}
		target, rest, err := p.parseTypePrefix(d, toks[1:])
		if err != nil {
			return nil, nil, err
		}
		return &abi.PointerType{Target: target, Const: head.text == "cptr"}, rest, nil
	case "atomic":
		if len(toks) < 2 {
			return nil, nil, diag.Errorf(diag.SynInvalidType, head.span, "invalid type: %s", head.text)
		}
		target, rest, err := p.parseTypePrefix(d, toks[1:])
		if err != nil {
			return nil, nil, err
		}
		return &abi.AtomicType{Target: target}, rest, nil
	}
	t, err := p.lookupType(head)
	if err != nil {
		return nil, nil, err
	}
	return t, toks[1:], nil
}

// lookupType resolves a single type name. Only types declared earlier in
// the file are visible.
func (p *Parser) lookupType(tok token) (abi.Type, error) {
	if tok.text == "void" {
		return abi.Void, nil
	}
	if t, ok := abi.LookupPrimitive(tok.text); ok {
		return t, nil
	}
	if t, ok := p.b.LookupType(tok.text); ok {
		return t, nil
	}
	return nil, diag.Errorf(diag.SemaUnknownType, tok.span, "unknown type %s", tok.text)
}
