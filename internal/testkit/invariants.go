// Package testkit holds checks shared by tests of several packages.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"abigen/internal/itf"
	"abigen/internal/source"
)

// CheckTreeSpans verifies the spans of a forest read from sf:
// 1) every span belongs to sf and is non-empty and within the content
// 2) a node's Text is exactly the bytes under its span
// 3) lines increase strictly in preorder
// 4) children start after their parent ends
func CheckTreeSpans(nodes []*itf.Node, sf *source.File) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	var lastLine uint32
	var walk func(n, parent *itf.Node) error
	walk = func(n, parent *itf.Node) error {
		if n == nil {
			return fmt.Errorf("nil node")
		}
		sp := n.Span
		if sp.File != sf.ID {
			return fmt.Errorf("line %d: span file mismatch: got=%d want=%d", n.Line, sp.File, sf.ID)
		}
		if sp.End <= sp.Start {
			return fmt.Errorf("line %d: empty span %v", n.Line, sp)
		}
		if sp.End > lenContent {
			return fmt.Errorf("line %d: span end beyond content: %d > %d", n.Line, sp.End, lenContent)
		}
		if got := string(sf.Content[sp.Start:sp.End]); got != n.Text {
			return fmt.Errorf("line %d: span covers %q, text is %q", n.Line, got, n.Text)
		}
		if n.Line <= lastLine {
			return fmt.Errorf("line %d follows line %d", n.Line, lastLine)
		}
		lastLine = n.Line
		if parent != nil && sp.Start < parent.Span.End {
			return fmt.Errorf("line %d: child starts inside its parent %v", n.Line, parent.Span)
		}
		for _, c := range n.Children {
			if err := walk(c, n); err != nil {
				return err
			}
		}
		return nil
	}
	for _, n := range nodes {
		if err := walk(n, nil); err != nil {
			return err
		}
	}
	return nil
}
