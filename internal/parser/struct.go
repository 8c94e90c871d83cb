package parser

import (
	"abigen/internal/abi"
	"abigen/internal/diag"
	"abigen/internal/itf"
)

func (p *Parser) parseStruct(d decl, body cursor) (*abi.StructType, error) {
	if d.len() != 2 {
		return nil, diag.Errorf(diag.SynInvalidDecl, d.node.Span, "invalid struct declaration: %s", d.node.Text)
	}
	name := d.word(1)
	if err := p.checkTypeName(d, name); err != nil {
		return nil, err
	}
	return p.buildStruct(name, d.node, body.rest())
}

// buildStruct parses a struct body and lays it out.
func (p *Parser) buildStruct(name string, owner *itf.Node, nodes []*itf.Node) (*abi.StructType, error) {
	members, err := p.parseMembers(nodes)
	if err != nil {
		return nil, err
	}
	s, err := abi.NewStruct(name, members)
	if err != nil {
		return nil, modelError(err, owner.Span, "invalid members in "+owner.Text)
	}
	s.Span = owner.Span
	return s, nil
}

// parseMembers parses a struct body. Struct declarations, function `in`
// sections, syscall sections and variant arms share it.
func (p *Parser) parseMembers(nodes []*itf.Node) ([]abi.StructMember, error) {
	var members []abi.StructMember
	for _, n := range nodes {
		d := tokenize(n)
		var (
			m   abi.StructMember
			err error
		)
		switch {
		case d.word(0) == "variant" && d.len() == 2:
			m, err = p.parseVariant(d, members)
		case d.word(0) == "range" || d.word(0) == "crange":
			m, err = p.parseRange(d)
		default:
			m, err = p.parseSimpleMember(d)
		}
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// parseRange handles `range|crange <type> [<base> <len>] <name>`.
func (p *Parser) parseRange(d decl) (*abi.RangeMember, error) {
	body := newCursor(d.node.Children)
	doc, err := p.requireDoc(&body, d.node)
	if err != nil {
		return nil, err
	}
	if err := expectNoChildren(&body, d.node); err != nil {
		return nil, err
	}
	if d.len() < 3 {
		return nil, diag.Errorf(diag.SynInvalidRange, d.node.Span, "invalid range: %s", d.node.Text)
	}
	target, rest, err := p.parseTypePrefix(d, d.toks[1:])
	if err != nil {
		return nil, err
	}
	var name, base, length string
	switch len(rest) {
	case 1:
		name = rest[0].text
	case 3:
		base, length, name = rest[0].text, rest[1].text, rest[2].text
	default:
		return nil, diag.Errorf(diag.SynInvalidRange, d.node.Span, "invalid range: %s", d.node.Text)
	}
	r, err := abi.NewRangeMember(name, base, length, d.word(0) == "crange", target)
	if err != nil {
		return nil, modelError(err, d.node.Span, "invalid range "+name)
	}
	r.Doc = doc
	r.Span = d.node.Span
	rb, rl := r.Raw()
	rb.Doc = doc
	rb.Span = d.node.Span
	rl.Span = d.node.Span
	return r, nil
}

// parseSimpleMember handles `<type> <name>`. Members of int-like type may
// list special values of that type as children.
func (p *Parser) parseSimpleMember(d decl) (*abi.SimpleMember, error) {
	if d.len() < 2 {
		return nil, diag.Errorf(diag.SynInvalidDecl, d.node.Span, "invalid member: %s", d.node.Text)
	}
	typ, err := p.parseType(d, d.toks[:d.len()-1])
	if err != nil {
		return nil, err
	}
	m := &abi.SimpleMember{Name: d.word(d.len() - 1), Type: typ, Span: d.node.Span}
	body := newCursor(d.node.Children)

	il, intLike := typ.(*abi.IntLikeType)
	if !intLike {
		if m.Doc, err = p.requireDoc(&body, d.node); err != nil {
			return nil, err
		}
		return m, expectNoChildren(&body, d.node)
	}

	if m.Doc, _, err = p.popDoc(&body); err != nil {
		return nil, err
	}
	for !body.done() {
		n := body.next()
		v, ok := il.Value(n.Text)
		if !ok {
			return nil, diag.Errorf(diag.SemaUnknownValue, n.Span, "struct member type %s has no value %s", il.Name, n.Text)
		}
		sv := &abi.Value{Name: v.Name, Value: v.Value, Negative: v.Negative, Span: n.Span}
		inner := newCursor(n.Children)
		if sv.Doc, err = p.requireDoc(&inner, n); err != nil {
			return nil, err
		}
		if err := expectNoChildren(&inner, n); err != nil {
			return nil, err
		}
		m.SpecialValues = append(m.SpecialValues, sv)
	}
	return m, nil
}

// parseVariant handles `variant <tag>`. The tag must be an earlier member of
// the same struct with enum or alias type.
func (p *Parser) parseVariant(d decl, prior []abi.StructMember) (*abi.VariantMember, error) {
	tagName := d.word(1)
	var tag *abi.SimpleMember
	for _, m := range prior {
		if m.Ident() != tagName {
			continue
		}
		sm, ok := m.(*abi.SimpleMember)
		if !ok || (sm.Type.Kind() != abi.KindEnum && sm.Type.Kind() != abi.KindAlias) {
			return nil, diag.Errorf(diag.SemaBadVariantTag, d.span(1), "variant tag (%s) must be an enum or an alias type", tagName)
		}
		tag = sm
		break
	}
	if tag == nil {
		return nil, diag.Errorf(diag.SemaNoSuchMember, d.span(1), "no such member to use as variant tag: %s", tagName)
	}
	tagType := tag.Type.(*abi.IntLikeType)

	body := newCursor(d.node.Children)
	if _, _, err := p.popDoc(&body); err != nil {
		return nil, err
	}
	var arms []*abi.VariantArm
	for !body.done() {
		arm, err := p.parseArm(body.next(), tagType)
		if err != nil {
			return nil, err
		}
		arms = append(arms, arm)
	}

	v, err := abi.NewVariant(tag, arms)
	if err != nil {
		return nil, modelError(err, d.node.Span, "invalid variant")
	}
	v.Span = d.node.Span
	return v, nil
}

// parseArm handles one `<value...>` arm with a single `struct <name>` or
// anonymous member child.
func (p *Parser) parseArm(n *itf.Node, tagType *abi.IntLikeType) (*abi.VariantArm, error) {
	d := tokenize(n)
	arm := &abi.VariantArm{Span: n.Span}
	for _, tok := range d.toks {
		v, ok := tagType.Value(tok.text)
		if !ok {
			return nil, diag.Errorf(diag.SemaUnknownValue, tok.span, "variant tag type %s has no value %s", tagType.Name, tok.text)
		}
		arm.TagValues = append(arm.TagValues, v)
	}
	if len(n.Children) != 1 {
		return nil, diag.Errorf(diag.SynUnexpectedChild, n.Span, "expected a single member in variant arm `%s'", n.Text)
	}

	child := n.Children[0]
	cd := tokenize(child)
	owner, nodes := n, n.Children
	if cd.len() == 2 && cd.word(0) == "struct" {
		arm.Name = cd.word(1)
		body := newCursor(child.Children)
		doc, _, err := p.popDoc(&body)
		if err != nil {
			return nil, err
		}
		arm.Doc = doc
		owner, nodes = child, body.rest()
	}
	st, err := p.buildStruct("", owner, nodes)
	if err != nil {
		return nil, err
	}
	arm.Type = st
	return arm, nil
}
