package parser

import (
	"strings"

	"abigen/internal/diag"
	"abigen/internal/itf"
)

// cursor walks a child list without modifying it.
type cursor struct {
	nodes []*itf.Node
	pos   int
}

func newCursor(nodes []*itf.Node) cursor {
	return cursor{nodes: nodes}
}

func (c *cursor) done() bool { return c.pos >= len(c.nodes) }

func (c *cursor) peek() *itf.Node {
	if c.done() {
		return nil
	}
	return c.nodes[c.pos]
}

func (c *cursor) next() *itf.Node {
	n := c.peek()
	if n != nil {
		c.pos++
	}
	return n
}

// rest returns the nodes not consumed yet.
func (c *cursor) rest() []*itf.Node {
	return c.nodes[c.pos:]
}

// at reports whether the next node is exactly text.
func (c *cursor) at(text string) bool {
	n := c.peek()
	return n != nil && n.Text == text
}

func isDocLine(n *itf.Node) bool {
	return n.Text == "|" || strings.HasPrefix(n.Text, "| ")
}

// popDoc consumes leading documentation lines. found is false when there
// were none.
func (p *Parser) popDoc(c *cursor) (doc string, found bool, err error) {
	var lines []string
	for n := c.peek(); n != nil && isDocLine(n); n = c.peek() {
		c.next()
		if !n.Leaf() {
			return "", false, diag.Errorf(diag.SynInvalidDocNode, n.Children[0].Span,
				"documentation nodes should not have children")
		}
		lines = append(lines, strings.TrimPrefix(strings.TrimPrefix(n.Text, "|"), " "))
	}
	return strings.Join(lines, "\n"), len(lines) > 0, nil
}

// requireDoc pops documentation and reports its absence on owner.
func (p *Parser) requireDoc(c *cursor, owner *itf.Node) (string, error) {
	return p.requireDocFor(c, owner, owner.Text)
}

// requireDocFor is requireDoc with a custom description of the owner.
func (p *Parser) requireDocFor(c *cursor, owner *itf.Node, what string) (string, error) {
	doc, found, err := p.popDoc(c)
	if err != nil || found {
		return doc, err
	}
	msg := "missing documentation for: " + what
	if p.opts.RequireDocs {
		return "", diag.Errorf(diag.SemaMissingDoc, owner.Span, "%s", msg)
	}
	p.warn(diag.SemaMissingDoc, owner.Span, msg)
	return "", nil
}

// expectNoChildren fails if the cursor has anything left.
func expectNoChildren(c *cursor, owner *itf.Node) error {
	if n := c.peek(); n != nil {
		return diag.Errorf(diag.SynUnexpectedChild, n.Span, "unexpected node inside %s: %s", owner.Text, n.Text)
	}
	return nil
}
