package printer

import (
	"strings"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/doc"
	"github.com/gnolang/canvasfmt/internal/expr"
)

// markupLines splits trimmed markup into lines.
func markupLines(markup string) []string {
	return lineBreak.Split(strings.TrimSpace(markup), -1)
}

func trimmedLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimSpace(l)
	}
	return out
}

// breaksDelimiters reports markup whose delimiters go on their own lines
// when it does not fit.
func breaksDelimiters(e expr.Node) bool {
	switch e := e.(type) {
	case *expr.Variable:
		if len(e.Filters) > 0 {
			return true
		}
		_, call := e.Expression.(*expr.Function)
		return call
	case *expr.Set:
		return e.Value != nil && len(e.Value.Filters) > 0
	}
	return false
}

func (p *printer) printOutput(id ast.NodeID, a args) doc.Doc {
	n := p.node(id)
	start := whitespaceTrim(n.TrimStart, p.lackOfLeadingWhitespace(id), a.leading)
	end := whitespaceTrim(n.TrimEnd, p.lackOfTrailingWhitespace(id), a.trailing)

	if n.Expr != nil {
		ws := doc.Text(" ")
		if breaksDelimiters(n.Expr) {
			ws = doc.Line
		}
		return doc.Group(doc.Concat(
			doc.Text("{{"), start,
			doc.Indent(ws, p.printExpr(n.Expr, a)),
			ws, end,
			doc.Text("}}"),
		))
	}

	markup := strings.TrimSpace(n.Markup)
	if markup == "" {
		return doc.Group(doc.Concat(doc.Text("{{"), start, doc.Text(" "), end, doc.Text("}}")))
	}
	if lines := markupLines(markup); len(lines) > 1 {
		return doc.Group(doc.Concat(
			doc.Text("{{"), start,
			doc.Indent(doc.HardLine, joinLines(trimmedLines(lines))),
			doc.HardLine, end,
			doc.Text("}}"),
		))
	}
	return doc.Group(doc.Concat(doc.Text("{{"), start, doc.Text(" "+markup+" "), end, doc.Text("}}")))
}

func (p *printer) needsBlockStartLeadingStrip(id ast.NodeID) bool {
	n := p.node(id)
	if n.Kind == ast.CanvasBranch {
		return !p.isAttribute(p.parent(id)) && p.lackOfLeadingWhitespace(id)
	}
	return !p.isAttribute(id) && p.lackOfLeadingWhitespace(id)
}

func (p *printer) needsBlockStartTrailingStrip(id ast.NodeID) bool {
	n := p.node(id)
	if n.Kind == ast.CanvasBranch {
		if p.isAttribute(p.parent(id)) {
			return false
		}
		if first := p.first(id); first != ast.NoNode {
			return p.lackOfLeadingWhitespace(first)
		}
		return p.lackOfDanglingWhitespace(id)
	}
	switch {
	case p.isAttribute(id):
		return false
	case ast.IsBranchingTag(n.Name) && n.Block:
		if first := p.first(id); first != ast.NoNode {
			return p.lackOfLeadingWhitespace(first)
		}
		return false
	case !n.Block:
		return p.lackOfTrailingWhitespace(id)
	case len(n.Children) == 0:
		return p.lackOfDanglingWhitespace(id)
	}
	return p.lackOfLeadingWhitespace(p.first(id))
}

func (p *printer) needsBlockEndLeadingStrip(id ast.NodeID) bool {
	n := p.node(id)
	if p.isAttribute(id) {
		return false
	}
	if len(n.Children) == 0 {
		return p.lackOfDanglingWhitespace(id)
	}
	return p.lackOfTrailingWhitespace(p.last(id))
}

// printBlockStart prints the opening delimiter of a tag or branch.
func (p *printer) printBlockStart(id ast.NodeID, a args) doc.Doc {
	n := p.node(id)
	if n.Name == "" {
		return doc.Empty
	}
	start := whitespaceTrim(n.TrimStart, p.needsBlockStartLeadingStrip(id), a.leading)
	end := whitespaceTrim(n.TrimEnd, p.needsBlockStartTrailingStrip(id), a.trailing)

	if n.Expr != nil {
		ws := doc.Text(" ")
		if breaksDelimiters(n.Expr) {
			ws = doc.Line
		}
		return doc.Group(doc.Concat(
			doc.Text("{%"), start,
			doc.Text(" "+n.Name+" "),
			doc.Indent(p.printExpr(n.Expr, a)),
			ws, end,
			doc.Text("%}"),
		))
	}

	markup := strings.TrimSpace(n.Markup)
	if lines := markupLines(markup); len(lines) > 1 {
		return doc.Group(doc.Concat(
			doc.Text("{%"), start,
			doc.Indent(doc.HardLine, doc.Text(n.Name+" "), joinLines(trimmedLines(lines))),
			doc.HardLine, end,
			doc.Text("%}"),
		))
	}
	head := " " + n.Name
	if markup != "" {
		head += " " + markup
	}
	return doc.Group(doc.Concat(doc.Text("{%"), start, doc.Text(head+" "), end, doc.Text("%}")))
}

// printBlockEnd prints the closing delimiter of a block tag.
func (p *printer) printBlockEnd(id ast.NodeID, a args) doc.Doc {
	n := p.node(id)
	if !n.Block || n.BlockEndPosition == ast.Unset || n.HasZeroWidthEnd() {
		return doc.Empty
	}
	start := whitespaceTrim(n.DelimiterTrimStart, p.needsBlockEndLeadingStrip(id), a.leading)
	end := whitespaceTrim(n.DelimiterTrimEnd, p.lackOfTrailingWhitespace(id), a.trailing)
	return doc.Group(doc.Concat(doc.Text("{%"), start, doc.Text(" end"+n.Name+" "), end, doc.Text("%}")))
}

// innerLeading is the whitespace after the opening delimiter of a block.
func (p *printer) innerLeading(id ast.NodeID) doc.Doc {
	first := p.first(id)
	if first == ast.NoNode {
		f := p.flags(id)
		if f.IsDanglingWhitespaceSensitive && f.HasDanglingWhitespace {
			return doc.Line
		}
		return doc.Empty
	}
	f := p.flags(first)
	if f.HasLeadingWhitespace && f.IsLeadingWhitespaceSensitive {
		return doc.Line
	}
	return doc.SoftLine
}

// innerTrailing is the whitespace before the closing delimiter of a block.
func (p *printer) innerTrailing(id ast.NodeID) doc.Doc {
	n := p.node(id)
	if n.Kind == ast.CanvasBranch || n.BlockEndPosition == ast.Unset {
		return doc.Empty
	}
	last := p.last(id)
	if last == ast.NoNode {
		f := p.flags(id)
		if f.IsDanglingWhitespaceSensitive && f.HasDanglingWhitespace {
			return doc.Line
		}
		return doc.Empty
	}
	f := p.flags(last)
	if f.HasTrailingWhitespace && f.IsTrailingWhitespaceSensitive {
		return doc.Line
	}
	return doc.SoftLine
}

func (p *printer) printTag(id ast.NodeID, a args) doc.Doc {
	n := p.node(id)
	if n.Name == "#" {
		return literal(p.tree.SourceText(id))
	}
	if !n.Block || n.BlockEndPosition == ast.Unset {
		return p.printBlockStart(id, a)
	}

	tagGroup := doc.NewID("tag-group")
	blockStart := p.printBlockStart(id, args{leading: a.leading, trailing: []doc.ID{tagGroup}, truncate: a.truncate})
	blockEnd := p.printBlockEnd(id, args{leading: []doc.ID{tagGroup}, trailing: a.trailing, truncate: a.truncate})
	inner := args{leading: []doc.ID{tagGroup}, trailing: []doc.ID{tagGroup}, truncate: a.truncate}

	body := doc.Empty
	switch {
	case ast.IsBranchingTag(n.Name):
		branches := make([]doc.Doc, 0, len(n.Children))
		for _, c := range n.Children {
			branches = append(branches, p.print(c, inner))
		}
		body = doc.Concat(branches...)
	case len(n.Children) > 0:
		body = doc.Indent(p.innerLeading(id), p.printChildren(id, inner))
	}

	shouldBreak := p.isAttribute(id) ||
		p.hasLineBreakInRange(n.Position.Start, n.Position.End)
	return doc.Group(
		doc.Concat(blockStart, body, p.innerTrailing(id), blockEnd),
		doc.WithID(tagGroup),
		doc.ShouldBreak(shouldBreak),
	)
}

func (p *printer) printBranch(id ast.NodeID, a args) doc.Doc {
	n := p.node(id)
	children := doc.Indent(p.innerLeading(id), p.printChildren(id, a))
	if n.Name == "" {
		return children
	}

	// an empty previous branch already printed the whitespace
	prev := p.prev(id)
	collapse := prev != ast.NoNode &&
		len(p.node(prev).Children) == 0 &&
		!p.lackOfDanglingWhitespace(prev)
	outer := doc.SoftLine
	if f := p.flags(id); f.HasLeadingWhitespace && f.IsLeadingWhitespaceSensitive && !collapse {
		outer = doc.Line
	}
	return doc.Concat(outer, p.printBlockStart(id, a), children)
}

func (p *printer) printRawTag(id ast.NodeID, a args) doc.Doc {
	n := p.node(id)
	start := whitespaceTrim(n.TrimStart, p.lackOfLeadingWhitespace(id), a.leading)
	end := whitespaceTrim(n.TrimEnd, false, nil)
	head := " " + n.Name
	if markup := strings.TrimSpace(n.Markup); markup != "" {
		head += " " + markup
	}
	blockStart := doc.Concat(doc.Text("{%"), start, doc.Text(head+" "), end, doc.Text("%}"))

	closeStart := whitespaceTrim(n.DelimiterTrimStart, false, nil)
	closeEnd := whitespaceTrim(n.DelimiterTrimEnd, p.lackOfTrailingWhitespace(id), a.trailing)
	blockEnd := doc.Concat(doc.Text("{%"), closeStart, doc.Text(" end"+n.Name+" "), closeEnd, doc.Text("%}"))

	inner := ast.Span{Start: n.BlockStartPosition.End, End: n.BlockEndPosition.Start}
	var body doc.Doc
	switch {
	case p.flags(id).IsIndentationSensitive || !p.hasLineBreakInRange(inner.Start, inner.End):
		body = literal(p.tree.Slice(inner))
	case strings.TrimSpace(p.tree.Slice(inner)) == "":
		body = doc.HardLine
	default:
		body = p.print(n.Body, a)
	}
	return doc.Concat(blockStart, body, blockEnd)
}
