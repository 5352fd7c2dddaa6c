package printer

import (
	"fmt"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/doc"
)

// spacing is the whitespace printed between two siblings.
type spacing int

const (
	spaceNone spacing = iota
	spaceSoft
	spaceLine
	spaceHard
)

func (s spacing) doc() doc.Doc {
	switch s {
	case spaceSoft:
		return doc.SoftLine
	case spaceLine:
		return doc.Line
	case spaceHard:
		return doc.HardLine
	}
	return doc.Empty
}

// betweenLine decides the whitespace between prev and next.
func (p *printer) betweenLine(prev, next ast.NodeID) spacing {
	if prev == ast.NoNode || next == ast.NoNode {
		return spaceNone
	}

	handledElsewhere := (p.needsToBorrowNextOpeningTagStartMarker(prev) &&
		(p.hasPrettierIgnore(next) ||
			p.first(next) != ast.NoNode ||
			p.hasNoChildren(next) ||
			(p.kind(next) == ast.HtmlElement && len(p.node(next).Attributes) > 0))) ||
		(p.kind(prev) == ast.HtmlElement &&
			p.hasNoCloseMarker(prev) &&
			p.needsToBorrowPrevClosingTagEndMarker(next))
	if handledElsewhere {
		return spaceNone
	}

	lastChild := p.last(prev)
	useHardline := !p.flags(next).IsLeadingWhitespaceSensitive ||
		p.preferHardlineAsLeadingSpaces(next) ||
		(p.needsToBorrowPrevClosingTagEndMarker(next) &&
			lastChild != ast.NoNode &&
			p.needsToBorrowParentClosingTagStartMarker(lastChild) &&
			p.last(lastChild) != ast.NoNode &&
			p.needsToBorrowParentClosingTagStartMarker(p.last(lastChild)))
	if useHardline {
		return spaceHard
	}
	if p.flags(next).HasLeadingWhitespace {
		return spaceLine
	}
	return spaceSoft
}

// item is a child, or a run of children printed as written.
type item struct {
	first, last ast.NodeID
	verbatim    bool
}

func (it item) isText(p *printer) bool {
	return it.first == it.last && p.isText(it.first)
}

// items groups the children of id. Consecutive children inside one ignored
// range become a single verbatim item.
func (p *printer) items(id ast.NodeID) []item {
	children := p.node(id).Children
	out := make([]item, 0, len(children))
	for i := 0; i < len(children); i++ {
		c := children[i]
		if p.ignore.IsIgnored(p.node(c).Position) {
			j := i
			for j+1 < len(children) && p.ignore.IsIgnored(p.node(children[j+1]).Position) {
				j++
			}
			out = append(out, item{first: c, last: children[j], verbatim: true})
			i = j
			continue
		}
		out = append(out, item{first: c, last: c, verbatim: p.hasPrettierIgnore(c) && !p.isPrettierIgnore(c)})
	}
	return out
}

// whitespaceAround is the whitespace printed around one item.
type whitespaceAround struct {
	// leadingHardlines do not break the content.
	leadingHardlines []doc.Doc
	// leadingWhitespace breaks first if the content does not fit.
	leadingWhitespace []doc.Doc
	// leadingDependent breaks along with the trailing whitespace.
	leadingDependent []doc.Doc
	// trailingWhitespace breaks when the content breaks.
	trailingWhitespace []doc.Doc
	// trailingHardlines do not break the content.
	trailingHardlines []doc.Doc
}

func (p *printer) printChildren(id ast.NodeID, a args) doc.Doc {
	items := p.items(id)
	if len(items) == 0 {
		return doc.Empty
	}

	if p.forceBreakChildren(id) {
		parts := []doc.Doc{doc.BreakParent}
		for i, it := range items {
			if i > 0 {
				prev := items[i-1].last
				if between := p.betweenLine(prev, it.first); between != spaceNone {
					parts = append(parts, between.doc())
					if p.forceNextEmptyLine(prev) {
						parts = append(parts, doc.HardLine)
					}
				}
			}
			parts = append(parts, p.printItem(it, args{
				leading:  []doc.ID{forceBreak},
				trailing: []doc.ID{forceBreak},
				truncate: a.truncate,
			}))
		}
		return doc.Concat(parts...)
	}

	leadingIDs := make([]doc.ID, len(items))
	trailingIDs := make([]doc.ID, len(items))
	for i := range items {
		leadingIDs[i] = doc.NewID(fmt.Sprintf("leading-%d", i))
		trailingIDs[i] = doc.NewID(fmt.Sprintf("trailing-%d", i))
	}

	ws := make([]whitespaceAround, len(items))
	for i, it := range items {
		if it.isText(p) {
			continue
		}
		w := &ws[i]

		prevBetween, nextBetween := spaceNone, spaceNone
		var prev, next ast.NodeID = ast.NoNode, ast.NoNode
		if i > 0 {
			prev = items[i-1].last
			prevBetween = p.betweenLine(prev, it.first)
		}
		if i < len(items)-1 {
			next = items[i+1].first
			nextBetween = p.betweenLine(it.last, next)
		}

		switch {
		case prevBetween == spaceNone:
		case p.forceNextEmptyLine(prev):
			w.leadingHardlines = append(w.leadingHardlines, doc.HardLine, doc.HardLine)
		case prevBetween == spaceHard:
			w.leadingHardlines = append(w.leadingHardlines, doc.HardLine)
		case p.isText(prev):
			if p.isCanvas(it.first) && prevBetween == spaceSoft {
				w.leadingDependent = append(w.leadingDependent, prevBetween.doc())
			} else {
				w.leadingWhitespace = append(w.leadingWhitespace, prevBetween.doc())
			}
		default:
			w.leadingWhitespace = append(w.leadingWhitespace, doc.IfBreak(doc.Empty, doc.SoftLine, trailingIDs[i-1]))
		}

		switch {
		case nextBetween == spaceNone:
		case p.forceNextEmptyLine(it.last):
			if p.isText(next) {
				w.trailingHardlines = append(w.trailingHardlines, doc.HardLine, doc.HardLine)
			}
		case nextBetween == spaceHard:
			// a hard line before a non-text sibling is printed as its
			// leading whitespace
			if p.isText(next) {
				w.trailingHardlines = append(w.trailingHardlines, doc.HardLine)
			}
		default:
			w.trailingWhitespace = append(w.trailingWhitespace, nextBetween.doc())
		}
	}

	leadingGroupIDs := func(i int) []doc.ID {
		if i == 0 {
			return a.leading
		}
		prev, curr := ws[i-1], ws[i]
		if len(prev.trailingHardlines) > 0 || len(curr.leadingHardlines) > 0 {
			return []doc.ID{forceBreak}
		}
		var ids []doc.ID
		if len(prev.trailingWhitespace) > 0 {
			ids = append(ids, trailingIDs[i-1])
		}
		if len(curr.leadingWhitespace) > 0 {
			ids = append(ids, leadingIDs[i])
		}
		if len(curr.leadingDependent) > 0 {
			ids = append(ids, trailingIDs[i])
		}
		if len(ids) == 0 {
			ids = append(ids, forceFlat)
		}
		return ids
	}
	trailingGroupIDs := func(i int) []doc.ID {
		if i == len(items)-1 {
			return a.trailing
		}
		curr, next := ws[i], ws[i+1]
		if len(curr.trailingHardlines) > 0 || len(next.leadingHardlines) > 0 {
			return []doc.ID{forceBreak}
		}
		if len(curr.trailingWhitespace) > 0 {
			return []doc.ID{trailingIDs[i]}
		}
		return []doc.ID{forceFlat}
	}

	parts := make([]doc.Doc, 0, len(items))
	for i, it := range items {
		w := ws[i]
		printed := p.printItem(it, args{
			leading:  leadingGroupIDs(i),
			trailing: trailingGroupIDs(i),
			truncate: a.truncate,
		})

		inner := make([]doc.Doc, 0, len(w.leadingDependent)+len(w.trailingWhitespace)+1)
		inner = append(inner, w.leadingDependent...)
		inner = append(inner, printed)
		inner = append(inner, w.trailingWhitespace...)

		outer := make([]doc.Doc, 0, len(w.leadingWhitespace)+1)
		outer = append(outer, w.leadingWhitespace...)
		outer = append(outer, doc.Group(doc.Concat(inner...), doc.WithID(trailingIDs[i])))

		parts = append(parts, w.leadingHardlines...)
		parts = append(parts, doc.Group(doc.Concat(outer...), doc.WithID(leadingIDs[i])))
		parts = append(parts, w.trailingHardlines...)
	}
	return doc.Concat(parts...)
}

func (p *printer) printItem(it item, a args) doc.Doc {
	if !it.verbatim {
		return p.print(it.first, a)
	}

	start := p.node(it.first).Position.Start
	if prev := p.prev(it.first); prev != ast.NoNode && p.needsToBorrowNextOpeningTagStartMarker(prev) {
		start += len(p.openingTagStartMarker(it.first))
	}
	end := p.node(it.last).Position.End
	if next := p.next(it.last); next != ast.NoNode && p.needsToBorrowPrevClosingTagEndMarker(next) {
		end -= len(p.closingTagEndMarker(it.last))
	}
	return doc.Concat(
		doc.Text(p.openingTagPrefix(it.first)),
		literal(p.tree.Slice(ast.Span{Start: start, End: end})),
		doc.Text(p.closingTagSuffix(it.last)),
	)
}
