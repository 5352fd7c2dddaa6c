package printer

import (
	"strings"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/doc"
)

// A node that may not get whitespace next to an HTML tag takes the tag's
// marker instead, so the line break lands inside the tag:
//
//	123<p
//	   ^^
//	>

func (p *printer) needsToBorrowPrevClosingTagEndMarker(id ast.NodeID) bool {
	prev := p.prev(id)
	return !p.isCanvas(id) && p.isHTML(prev) && p.lackOfLeadingWhitespace(id)
}

func (p *printer) needsToBorrowLastChildClosingTagEndMarker(id ast.NodeID) bool {
	if !p.isHTML(id) || p.isDanglingOpen(id) {
		return false
	}
	last := p.last(id)
	return last != ast.NoNode &&
		p.lackOfTrailingWhitespace(last) &&
		p.isHTML(p.lastDescendant(last)) &&
		!p.isPreLike(id)
}

func (p *printer) needsToBorrowParentClosingTagStartMarker(id ast.NodeID) bool {
	parent := p.parent(id)
	if !p.isHTML(parent) || p.isDanglingOpen(parent) {
		return false
	}
	desc := p.lastDescendant(id)
	return p.next(id) == ast.NoNode &&
		p.lackOfTrailingWhitespace(id) &&
		!p.isCanvas(id) &&
		(p.isText(desc) || p.isCanvas(desc))
}

func (p *printer) needsToBorrowNextOpeningTagStartMarker(id ast.NodeID) bool {
	return p.isHTML(p.next(id)) && p.isText(id) && p.lackOfTrailingWhitespace(id)
}

func (p *printer) needsToBorrowParentOpeningTagEndMarker(id ast.NodeID) bool {
	return p.isHTML(p.parent(id)) &&
		p.prev(id) == ast.NoNode &&
		p.lackOfLeadingWhitespace(id) &&
		!p.isCanvas(id)
}

// compoundName renders an HTML name whose parts may be outputs.
func (p *printer) compoundName(id ast.NodeID) string {
	n := p.node(id)
	if len(n.NameParts) == 0 {
		return n.Name
	}
	var sb strings.Builder
	for _, part := range n.NameParts {
		pn := p.node(part)
		if pn.Kind == ast.CanvasVariableOutput {
			sb.WriteString("{{ " + strings.TrimSpace(pn.Markup) + " }}")
			continue
		}
		sb.WriteString(p.tree.SourceText(part))
	}
	return sb.String()
}

func (p *printer) openingTagStartMarker(id ast.NodeID) string {
	switch p.kind(id) {
	case ast.HtmlComment:
		return "<!--"
	case ast.HtmlElement, ast.HtmlSelfClosingElement, ast.HtmlVoidElement, ast.HtmlRawNode:
		return "<" + p.compoundName(id)
	case ast.HtmlDanglingMarkerClose:
		return "</" + p.compoundName(id)
	}
	return ""
}

func (p *printer) openingTagEndMarker(id ast.NodeID) string {
	switch p.kind(id) {
	case ast.HtmlSelfClosingElement, ast.HtmlVoidElement:
		// printed as the closing end marker
		return ""
	case ast.HtmlElement, ast.HtmlDanglingMarkerClose, ast.HtmlRawNode:
		return ">"
	}
	return ""
}

func (p *printer) closingTagStartMarker(id ast.NodeID) string {
	switch p.kind(id) {
	case ast.HtmlElement:
		if p.isDanglingOpen(id) {
			return ""
		}
		return "</" + p.compoundName(id)
	case ast.HtmlRawNode:
		return "</" + p.compoundName(id)
	}
	return ""
}

func (p *printer) closingTagEndMarker(id ast.NodeID) string {
	switch p.kind(id) {
	case ast.HtmlComment:
		return "-->"
	case ast.HtmlSelfClosingElement:
		return "/>"
	case ast.HtmlElement:
		if p.isDanglingOpen(id) {
			return ""
		}
		return ">"
	case ast.HtmlVoidElement, ast.HtmlDanglingMarkerClose, ast.HtmlRawNode:
		return ">"
	}
	return ""
}

// openingTagPrefix prints the marker borrowed from the parent or the
// previous sibling.
func (p *printer) openingTagPrefix(id ast.NodeID) string {
	switch {
	case p.needsToBorrowParentOpeningTagEndMarker(id):
		return p.openingTagEndMarker(p.parent(id))
	case p.needsToBorrowPrevClosingTagEndMarker(id):
		return p.closingTagEndMarker(p.prev(id))
	}
	return ""
}

// closingTagSuffix prints the marker borrowed from the parent or the next
// sibling.
func (p *printer) closingTagSuffix(id ast.NodeID) string {
	switch {
	case p.needsToBorrowParentClosingTagStartMarker(id):
		return p.closingTagStartMarker(p.parent(id))
	case p.needsToBorrowNextOpeningTagStartMarker(id):
		return p.openingTagStartMarker(p.next(id))
	}
	return ""
}

func (p *printer) closingTagPrefix(id ast.NodeID) string {
	if p.needsToBorrowLastChildClosingTagEndMarker(id) {
		return p.closingTagEndMarker(p.last(id))
	}
	return ""
}

func (p *printer) openingTagStart(id ast.NodeID) doc.Doc {
	if prev := p.prev(id); prev != ast.NoNode && p.needsToBorrowNextOpeningTagStartMarker(prev) {
		return doc.Empty
	}
	return doc.Text(p.openingTagPrefix(id) + p.openingTagStartMarker(id))
}

func (p *printer) openingTagEnd(id ast.NodeID) doc.Doc {
	if first := p.first(id); first != ast.NoNode && p.needsToBorrowParentOpeningTagEndMarker(first) {
		return doc.Empty
	}
	return doc.Text(p.openingTagEndMarker(id))
}

func (p *printer) openingTag(id ast.NodeID) doc.Doc {
	end := doc.Empty
	if !p.hasNoChildren(id) {
		end = p.openingTagEnd(id)
	}
	return doc.Concat(p.openingTagStart(id), p.printAttributes(id), end)
}

func (p *printer) closingTagStart(id ast.NodeID) doc.Doc {
	if last := p.last(id); last != ast.NoNode && p.needsToBorrowParentClosingTagStartMarker(last) {
		return doc.Empty
	}
	return doc.Text(p.closingTagPrefix(id) + p.closingTagStartMarker(id))
}

// closingTagBorrowed reports whether the closing end marker of id is
// printed by a neighbor.
func (p *printer) closingTagBorrowed(id ast.NodeID) bool {
	if next := p.next(id); next != ast.NoNode {
		return p.needsToBorrowPrevClosingTagEndMarker(next)
	}
	parent := p.parent(id)
	return parent != ast.NoNode && p.needsToBorrowLastChildClosingTagEndMarker(parent)
}

func (p *printer) closingTagEnd(id ast.NodeID) doc.Doc {
	if p.closingTagBorrowed(id) {
		return doc.Empty
	}
	return doc.Text(p.closingTagEndMarker(id) + p.closingTagSuffix(id))
}

func (p *printer) closingTag(id ast.NodeID) doc.Doc {
	start := doc.Empty
	if !p.hasNoCloseMarker(id) {
		start = p.closingTagStart(id)
	}
	return doc.Concat(start, p.closingTagEnd(id))
}
