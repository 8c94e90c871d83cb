package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"abigen/internal/itf"
	"abigen/internal/source"
)

type token struct {
	text string
	span source.Span
}

// decl is the whitespace-separated words of one node.
type decl struct {
	node *itf.Node
	toks []token
}

func tokenize(n *itf.Node) decl {
	d := decl{node: n}
	text := n.Text
	i := 0
	for i < len(text) {
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		start := i
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		if start == i {
			break
		}
		d.toks = append(d.toks, token{text: text[start:i], span: subSpan(n.Span, start, i)})
	}
	return d
}

func subSpan(sp source.Span, from, to int) source.Span {
	f, err := safecast.Conv[uint32](from)
	if err != nil {
		return sp
	}
	t, err := safecast.Conv[uint32](to)
	if err != nil {
		return sp
	}
	return sp.Sub(f, t)
}

func (d decl) len() int { return len(d.toks) }

// word returns the i-th word, or "" past the end.
func (d decl) word(i int) string {
	if i < 0 || i >= len(d.toks) {
		return ""
	}
	return d.toks[i].text
}

// span returns the span of the i-th word, or of the whole line past the end.
func (d decl) span(i int) source.Span {
	if i < 0 || i >= len(d.toks) {
		return d.node.Span
	}
	return d.toks[i].span
}

// spanOf covers a run of tokens.
func spanOf(toks []token, fallback source.Span) source.Span {
	if len(toks) == 0 {
		return fallback
	}
	return toks[0].span.Cover(toks[len(toks)-1].span)
}

func joinTokens(toks []token) string {
	words := make([]string, len(toks))
	for i, t := range toks {
		words[i] = t.text
	}
	return strings.Join(words, " ")
}
