// Package itf reads the indented tree format: every substantive line is a
// node, and leading whitespace decides which node it belongs to.
//
//	foo
//	  bar
//	  baz
//	quux
//	  1 2 3
//	    4 5 6
//
// yields two roots, foo (children bar, baz) and quux (child "1 2 3", which in
// turn has child "4 5 6"). Blank lines and lines starting with '#' after the
// indentation are skipped.
package itf

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"fortio.org/safecast"

	"abigen/internal/diag"
	"abigen/internal/source"
)

// Node is one line of the tree.
type Node struct {
	Text     string      // line without surrounding whitespace
	Span     source.Span // bytes of Text in the file
	Line     uint32      // 1-based
	Children []*Node
}

// Leaf reports whether the node has no children.
func (n *Node) Leaf() bool {
	return len(n.Children) == 0
}

// Dump writes the node and its subtree using unit as one indentation level.
func (n *Node) Dump(w io.Writer, unit string, depth int) error {
	if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat(unit, depth), n.Text); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Dump(w, unit, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// DumpAll writes a forest with canonical indentation.
func DumpAll(w io.Writer, nodes []*Node, unit string) error {
	for _, n := range nodes {
		if err := n.Dump(w, unit, 0); err != nil {
			return err
		}
	}
	return nil
}

// frame is one indentation level: the nodes collected at that level and the
// node of the level above that will own them.
type frame struct {
	indent string
	owner  *Node
	nodes  []*Node
}

// Read parses the file with the given id into a forest of nodes.
func Read(fs *source.FileSet, id source.FileID) ([]*Node, error) {
	f := fs.Get(id)
	if f == nil {
		return nil, diag.Errorf(diag.IOLoadFile, source.Span{File: id}, "unknown file #%d", id)
	}

	stack := []*frame{{indent: ""}}
	popStack := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		top.owner.Children = append(top.owner.Children, top.nodes...)
	}

	content := string(f.Content)
	var offset uint32
	var lineNum uint32
	for len(content) > 0 {
		line := content
		next := len(content)
		if i := strings.IndexByte(content, '\n'); i >= 0 {
			line = content[:i]
			next = i + 1
		}
		content = content[next:]
		lineStart := offset
		adv, err := safecast.Conv[uint32](next)
		if err != nil {
			return nil, diag.Errorf(diag.IOLoadFile, source.Span{File: id}, "%s: file too large", f.Path)
		}
		offset += adv
		lineNum++

		text := strings.TrimSpace(line)
		if text == "" || text[0] == '#' {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
		textStart, err := safecast.Conv[uint32](len(indent))
		if err != nil {
			return nil, err
		}
		textLen, err := safecast.Conv[uint32](len(text))
		if err != nil {
			return nil, err
		}
		span := source.Span{File: id, Start: lineStart + textStart, End: lineStart + textStart + textLen}
		bad := func() error {
			return diag.Errorf(diag.ItfInvalidIndent, span, "%s:%d: invalid indentation", f.Path, lineNum)
		}

		top := stack[len(stack)-1]
		if len(indent) > len(top.indent) && strings.HasPrefix(indent, top.indent) {
			// We have to go deeper.
			if len(top.nodes) == 0 {
				return nil, bad()
			}
			stack = append(stack, &frame{indent: indent, owner: top.nodes[len(top.nodes)-1]})
		} else {
			for indent != stack[len(stack)-1].indent {
				if !strings.HasPrefix(stack[len(stack)-1].indent, indent) {
					return nil, bad()
				}
				popStack()
			}
		}

		top = stack[len(stack)-1]
		top.nodes = append(top.nodes, &Node{Text: text, Span: span, Line: lineNum})
	}

	for len(stack) > 1 {
		popStack()
	}
	return stack[0].nodes, nil
}

// ReadString parses in-memory text registered under name in a fresh FileSet.
func ReadString(name, text string) ([]*Node, *source.FileSet, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(text))
	nodes, err := Read(fs, id)
	return nodes, fs, err
}
