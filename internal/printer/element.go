package printer

import (
	"strings"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/doc"
)

func (p *printer) printElement(id ast.NodeID, a args) doc.Doc {
	n := p.node(id)
	attrGroup := doc.NewID("element-attr-group")
	elementGroup := doc.NewID("element-group")

	if n.Kind == ast.HtmlRawNode {
		body := doc.Empty
		switch {
		case p.isPreLike(id):
			body = literal(p.node(n.Body).Text)
		case strings.TrimSpace(p.tree.SourceText(n.Body)) != "":
			body = p.print(n.Body, a)
		}
		return doc.Concat(
			doc.Group(p.openingTag(id), doc.WithID(attrGroup)),
			body,
			p.closingTag(id),
		)
	}

	if p.hasNoChildren(id) {
		return doc.Concat(
			doc.Group(p.openingTag(id), doc.WithID(attrGroup)),
			p.closingTag(id),
		)
	}

	if p.isPreLike(id) && len(n.Children) > 0 {
		return doc.Concat(
			doc.Group(p.openingTag(id), doc.WithID(attrGroup)),
			literal(p.preservedContent(id)),
			p.closingTag(id),
		)
	}

	lineBreakBeforeAttr := len(n.Attributes) > 0 &&
		p.hasLineBreakInRange(n.Position.Start, p.node(n.Attributes[0]).Position.Start)
	printTag := func(body doc.Doc) doc.Doc {
		return doc.Group(doc.Concat(
			doc.Group(p.openingTag(id), doc.WithID(attrGroup), doc.ShouldBreak(lineBreakBeforeAttr)),
			body,
			p.closingTag(id),
		), doc.WithID(elementGroup))
	}

	if len(n.Children) == 0 {
		f := p.flags(id)
		if f.HasDanglingWhitespace && f.IsDanglingWhitespaceSensitive && !n.HasZeroWidthEnd() {
			return printTag(doc.Line)
		}
		return printTag(doc.Empty)
	}

	var breakContent doc.Doc
	if p.forceBreakContent(id) {
		breakContent = doc.BreakParent
	}
	return printTag(doc.Concat(
		breakContent,
		doc.Indent(
			p.lineBeforeChildren(id),
			p.printChildren(id, args{
				leading:  []doc.ID{elementGroup},
				trailing: []doc.ID{elementGroup},
				truncate: a.truncate,
			}),
		),
		p.lineAfterChildren(id),
	))
}

func (p *printer) lineBeforeChildren(id ast.NodeID) doc.Doc {
	first := p.first(id)
	ff := p.flags(first)
	if ff.HasLeadingWhitespace && ff.IsLeadingWhitespaceSensitive {
		return doc.Line
	}
	f := p.flags(id)
	if p.isText(first) && f.IsWhitespaceSensitive && f.IsIndentationSensitive {
		return doc.DedentToRoot(doc.SoftLine)
	}
	return doc.SoftLine
}

func (p *printer) lineAfterChildren(id ast.NodeID) doc.Doc {
	if p.node(id).HasZeroWidthEnd() {
		return doc.Empty
	}
	lf := p.flags(p.last(id))
	trailing := lf.HasTrailingWhitespace && lf.IsTrailingWhitespaceSensitive
	if p.closingTagBorrowed(id) {
		if trailing {
			return doc.Text(" ")
		}
		return doc.Empty
	}
	if trailing {
		return doc.Line
	}
	return doc.SoftLine
}

// preservedContent is the source between the tags of id, including the
// markers its children borrow.
func (p *printer) preservedContent(id ast.NodeID) string {
	n := p.node(id)
	start, end := n.BlockStartPosition.End, n.BlockEndPosition.Start
	if first := p.first(id); first != ast.NoNode && p.needsToBorrowParentOpeningTagEndMarker(first) {
		start -= len(p.openingTagEndMarker(id))
	}
	if last := p.last(id); last != ast.NoNode && p.needsToBorrowParentClosingTagStartMarker(last) {
		end += len(p.closingTagStartMarker(id))
	}
	return p.tree.Slice(ast.Span{Start: start, End: end})
}

func (p *printer) printAttributes(id ast.NodeID) doc.Doc {
	n := p.node(id)
	selfClosing := n.Kind == ast.HtmlSelfClosingElement
	if n.Kind == ast.HtmlComment || n.Kind == ast.HtmlDanglingMarkerClose {
		return doc.Empty
	}
	if len(n.Attributes) == 0 {
		if selfClosing {
			return doc.Text(" ")
		}
		return doc.Empty
	}

	attrs := make([]doc.Doc, len(n.Attributes))
	for i, attr := range n.Attributes {
		attrs[i] = p.print(attr, args{})
	}

	lineBreakBefore := p.hasLineBreakInRange(n.Position.Start, p.node(n.Attributes[0]).Position.Start)
	hasBody := n.Kind == ast.HtmlRawNode && strings.TrimSpace(p.tree.SourceText(n.Body)) != ""
	forceNotBreak := len(n.Attributes) == 1 && !lineBreakBefore &&
		(n.Kind == ast.HtmlVoidElement || selfClosing || len(n.Children) > 0 || hasBody)

	attrLine := doc.Line
	if p.opts.SingleAttributePerLine && len(n.Attributes) > 1 {
		attrLine = doc.HardLine
	}
	lead := doc.Line
	if forceNotBreak {
		lead = doc.Text(" ")
	}
	parts := []doc.Doc{doc.Indent(lead, doc.Join(attrLine, attrs))}

	sameLine := doc.Empty
	if selfClosing {
		sameLine = doc.Text(" ")
	}
	first := p.first(id)
	parent := p.parent(id)
	switch {
	case first != ast.NoNode && p.needsToBorrowParentOpeningTagEndMarker(first),
		selfClosing && parent != ast.NoNode && p.needsToBorrowLastChildClosingTagEndMarker(parent),
		forceNotBreak:
		parts = append(parts, sameLine)
	case p.opts.BracketSameLine:
		parts = append(parts, sameLine)
	case selfClosing:
		parts = append(parts, doc.Line)
	default:
		parts = append(parts, doc.SoftLine)
	}
	return doc.Concat(parts...)
}

// printAttributeName keeps outputs inside a name on one line.
func (p *printer) printAttributeName(id ast.NodeID) doc.Doc {
	n := p.node(id)
	if len(n.NameParts) == 0 {
		return doc.Text(n.Name)
	}
	parts := make([]doc.Doc, len(n.NameParts))
	for i, part := range n.NameParts {
		if p.kind(part) == ast.CanvasVariableOutput {
			parts[i] = doc.RemoveLines(p.print(part, args{}))
			continue
		}
		parts[i] = doc.Text(p.tree.SourceText(part))
	}
	return doc.Concat(parts...)
}

func (p *printer) printAttribute(id ast.NodeID) doc.Doc {
	n := p.node(id)
	span := n.BlockStartPosition
	value := p.tree.Slice(span)

	preferred, opposite := `"`, `'`
	if p.opts.SingleQuote {
		preferred, opposite = opposite, preferred
	}
	quote := preferred
	for _, v := range n.Value {
		if p.isText(v) && strings.Contains(p.tree.SourceText(v), preferred) {
			quote = opposite
			break
		}
	}

	var printed doc.Doc = doc.Text(value)
	if p.hasLineBreakInRange(span.Start, span.End) {
		printed = doc.Group(doc.Concat(
			doc.Indent(doc.SoftLine, joinLines(contentLines(value))),
			doc.SoftLine,
		), doc.WithID(doc.NewID("attr-group")))
	}
	return doc.Concat(p.printAttributeName(id), doc.Text("="+quote), printed, doc.Text(quote))
}
