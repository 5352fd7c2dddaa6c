// Package ignore finds the regions of a template that the formatter must
// leave untouched.
package ignore

import (
	"fmt"
	"strings"

	"github.com/gnolang/canvasfmt/internal/ast"
)

const (
	directivePrefix = "canvasfmt-ignore"
	startDirective  = directivePrefix + "-start"
	endDirective    = directivePrefix + "-end"
)

// Manager holds the ignored ranges of one tree.
type Manager struct {
	scopes []scope
}

// scope is a byte range whose nodes are printed as written.
type scope struct {
	start int
	end   int
}

type directive int

const (
	directiveNone directive = iota
	directiveStart
	directiveEnd
)

// ParseComments collects the ignore ranges opened and closed by
// `<!-- canvasfmt-ignore-start -->` and `<!-- canvasfmt-ignore-end -->`
// comments, or their `{# #}` forms. A start without an end runs to the end
// of its parent.
func ParseComments(tree *ast.Tree) *Manager {
	m := &Manager{}
	tree.Walk(tree.Root, func(id, _ ast.NodeID, slot ast.Slot) bool {
		if slot == ast.Attributes || slot == ast.Value || slot == ast.NameParts {
			return false
		}
		m.collect(tree, id)
		return true
	})
	return m
}

// collect pairs the directives among the children of id.
func (m *Manager) collect(tree *ast.Tree, id ast.NodeID) {
	n := tree.Node(id)
	open := -1
	for _, c := range n.Children {
		d, err := parseDirective(tree.Node(c))
		if err != nil {
			// not a directive
			continue
		}
		switch d {
		case directiveStart:
			if open < 0 {
				open = tree.Node(c).Position.End
			}
		case directiveEnd:
			if open >= 0 {
				m.scopes = append(m.scopes, scope{start: open, end: tree.Node(c).Position.Start})
				open = -1
			}
		}
	}
	if open >= 0 {
		end := n.Position.End
		if n.BlockEndPosition.Start >= 0 {
			end = n.BlockEndPosition.Start
		}
		m.scopes = append(m.scopes, scope{start: open, end: end})
	}
}

// parseDirective reads the directive carried by a comment node.
func parseDirective(n *ast.Node) (directive, error) {
	var text string
	switch {
	case n.Kind == ast.HtmlComment:
		text = n.Text
	case n.Kind == ast.CanvasTag && n.Name == "#":
		text = n.Text
	default:
		return directiveNone, fmt.Errorf("%s is not a comment", n.Kind)
	}
	switch strings.TrimSpace(text) {
	case startDirective:
		return directiveStart, nil
	case endDirective:
		return directiveEnd, nil
	}
	return directiveNone, fmt.Errorf("invalid ignore comment")
}

// IsIgnored reports whether span lies inside an ignored range.
func (m *Manager) IsIgnored(span ast.Span) bool {
	if m == nil {
		return false
	}
	for _, s := range m.scopes {
		if span.Start >= s.start && span.End <= s.end {
			return true
		}
	}
	return false
}

// Len returns the number of ignored ranges.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.scopes)
}
