package parser

import (
	"abigen/internal/abi"
	"abigen/internal/diag"
)

// parseIntLike handles `alias|opaque|enum|flags <int> <name>` and its values.
func (p *Parser) parseIntLike(d decl, kind abi.Kind, body cursor) (*abi.IntLikeType, error) {
	if d.len() != 3 {
		return nil, diag.Errorf(diag.SynInvalidDecl, d.node.Span, "invalid %s declaration: %s", d.word(0), d.node.Text)
	}
	name := d.word(2)
	if err := p.checkTypeName(d, name); err != nil {
		return nil, err
	}
	base, ok := abi.LookupPrimitive(d.word(1))
	if !ok {
		return nil, diag.Errorf(diag.SynInvalidType, d.span(1), "invalid int type: %s", d.word(1))
	}

	var (
		values  []*abi.Value
		cprefix *string
		seen    = make(map[string]struct{})
	)
	for !body.done() {
		n := body.next()
		vd := tokenize(n)
		switch {
		case vd.word(0) == "@cprefix" && vd.len() <= 2:
			if !n.Leaf() {
				return nil, diag.Errorf(diag.SynUnexpectedChild, n.Children[0].Span, "unexpected node inside %s: %s", n.Text, n.Children[0].Text)
			}
			prefix := vd.word(1)
			cprefix = &prefix
		case vd.len() == 2:
			v, err := parseValue(vd, base)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[v.Name]; dup {
				return nil, diag.Errorf(diag.SemaDuplicateMember, vd.span(1), "duplicate value %s in %s", v.Name, name)
			}
			seen[v.Name] = struct{}{}
			inner := newCursor(n.Children)
			if v.Doc, err = p.requireDoc(&inner, n); err != nil {
				return nil, err
			}
			if err := expectNoChildren(&inner, n); err != nil {
				return nil, err
			}
			values = append(values, v)
		default:
			return nil, diag.Errorf(diag.SynInvalidValue, n.Span, "invalid value: %s", n.Text)
		}
	}

	t := abi.NewIntLike(name, kind, base, values, cprefix)
	t.Span = d.node.Span
	return t, nil
}
