package printer

import (
	"math"
	"regexp"
	"strings"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/doc"
	"github.com/gnolang/canvasfmt/internal/whitespace"
)

var (
	// FORCE_BREAK and FORCE_FLAT stand in for groups whose mode is known
	// while printing.
	forceBreak = doc.NewID("force-break")
	forceFlat  = doc.NewID("force-flat")

	prettierIgnore = regexp.MustCompile(`(?m)^\s*prettier-ignore(\s|$)`)
	lineBreak      = regexp.MustCompile(`\r?\n`)
	leadingBlank   = regexp.MustCompile(`^(?:[ \t]*\r?\n)+`)
	firstLineText  = regexp.MustCompile(`^[^\r\n]*\S`)
)

func (p *printer) node(id ast.NodeID) *ast.Node {
	return p.tree.Node(id)
}

func (p *printer) flags(id ast.NodeID) *whitespace.Flags {
	return p.info.Of(id)
}

func (p *printer) parent(id ast.NodeID) ast.NodeID { return p.family.Parent(id) }
func (p *printer) prev(id ast.NodeID) ast.NodeID   { return p.family.Prev(id) }
func (p *printer) next(id ast.NodeID) ast.NodeID   { return p.family.Next(id) }
func (p *printer) first(id ast.NodeID) ast.NodeID  { return p.family.FirstChild(id) }
func (p *printer) last(id ast.NodeID) ast.NodeID   { return p.family.LastChild(id) }

func (p *printer) kind(id ast.NodeID) ast.Kind {
	if id == ast.NoNode {
		return -1
	}
	return p.node(id).Kind
}

func (p *printer) isText(id ast.NodeID) bool {
	return p.kind(id) == ast.TextNode
}

func (p *printer) isCanvas(id ast.NodeID) bool {
	switch p.kind(id) {
	case ast.CanvasTag, ast.CanvasVariableOutput, ast.CanvasBranch:
		return true
	}
	return false
}

func (p *printer) isHTML(id ast.NodeID) bool {
	return id != ast.NoNode && p.node(id).Kind.IsHTMLTag()
}

func (p *printer) isAttribute(id ast.NodeID) bool {
	return p.family.Slot(id) == ast.Attributes
}

// hasNoChildren reports the node kinds that are printed as a single tag.
func (p *printer) hasNoChildren(id ast.NodeID) bool {
	switch p.kind(id) {
	case ast.HtmlSelfClosingElement, ast.HtmlVoidElement, ast.HtmlComment, ast.HtmlDanglingMarkerClose:
		return true
	}
	return false
}

func (p *printer) isDanglingOpen(id ast.NodeID) bool {
	return id != ast.NoNode && p.node(id).IsDanglingOpen()
}

// hasNoCloseMarker reports nodes that print no closing tag of their own.
func (p *printer) hasNoCloseMarker(id ast.NodeID) bool {
	return p.hasNoChildren(id) || p.isDanglingOpen(id)
}

func (p *printer) lackOfLeadingWhitespace(id ast.NodeID) bool {
	f := p.flags(id)
	return f.IsLeadingWhitespaceSensitive && !f.HasLeadingWhitespace
}

func (p *printer) lackOfTrailingWhitespace(id ast.NodeID) bool {
	f := p.flags(id)
	return f.IsTrailingWhitespaceSensitive && !f.HasTrailingWhitespace
}

func (p *printer) lackOfDanglingWhitespace(id ast.NodeID) bool {
	f := p.flags(id)
	return f.IsDanglingWhitespaceSensitive && !f.HasDanglingWhitespace
}

func (p *printer) lastDescendant(id ast.NodeID) ast.NodeID {
	for {
		last := p.last(id)
		if last == ast.NoNode {
			return id
		}
		id = last
	}
}

// tagName returns the lowercase name of an HTML node whose name is plain
// text.
func (p *printer) tagName(id ast.NodeID) string {
	if !p.isHTML(id) {
		return ""
	}
	n := p.node(id)
	switch len(n.NameParts) {
	case 0:
		return strings.ToLower(n.Name)
	case 1:
		if p.isText(n.NameParts[0]) {
			return strings.ToLower(p.tree.SourceText(n.NameParts[0]))
		}
	}
	return ""
}

func (p *printer) isTagNamed(id ast.NodeID, names ...string) bool {
	name := p.tagName(id)
	if name == "" {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func (p *printer) isPreLike(id ast.NodeID) bool {
	return strings.HasPrefix(p.flags(id).WhiteSpace, "pre")
}

func (p *printer) hasNonTextChild(id ast.NodeID) bool {
	for _, c := range p.node(id).Children {
		if !p.isText(c) {
			return true
		}
	}
	return false
}

// forceBreakContent reports elements whose children always go on their
// own lines.
func (p *printer) forceBreakContent(id ast.NodeID) bool {
	if p.forceBreakChildren(id) {
		return true
	}
	n := p.node(id)
	if n.Kind == ast.HtmlElement && len(n.Children) > 0 {
		if p.isTagNamed(id, "body", "script", "style") {
			return true
		}
		for _, c := range n.Children {
			if p.hasNonTextChild(c) {
				return true
			}
		}
	}
	first, last := p.first(id), p.last(id)
	return first != ast.NoNode && first == last && !p.isText(first) &&
		p.hasLeadingLineBreak(first) &&
		(!p.flags(last).IsTrailingWhitespaceSensitive || p.hasTrailingLineBreak(last))
}

// forceBreakChildren reports elements that put every child on its own line.
func (p *printer) forceBreakChildren(id ast.NodeID) bool {
	n := p.node(id)
	if n.Kind != ast.HtmlElement || len(n.Children) == 0 {
		return false
	}
	if p.isTagNamed(id, "html", "head", "ul", "ol", "select") {
		return true
	}
	display := p.flags(id).Display
	return strings.HasPrefix(display, "table") && display != "table-cell"
}

func (p *printer) preferHardlineAsSurroundingSpaces(id ast.NodeID) bool {
	n := p.node(id)
	switch n.Kind {
	case ast.HtmlComment:
		return true
	case ast.HtmlElement, ast.HtmlRawNode:
		return p.isTagNamed(id, "script", "select")
	case ast.CanvasTag:
		if p.isText(p.prev(id)) || p.isText(p.next(id)) {
			return false
		}
		return n.Block && len(n.Children) > 0
	}
	return false
}

func (p *printer) preferHardlineAsLeadingSpaces(id ast.NodeID) bool {
	prev := p.prev(id)
	return p.preferHardlineAsSurroundingSpaces(id) ||
		(p.isCanvas(id) && p.isCanvas(prev)) ||
		(prev != ast.NoNode && p.preferHardlineAsTrailingSpaces(prev)) ||
		p.hasSurroundingLineBreak(id)
}

func (p *printer) preferHardlineAsTrailingSpaces(id ast.NodeID) bool {
	next := p.next(id)
	return p.preferHardlineAsSurroundingSpaces(id) ||
		(p.isCanvas(id) && (p.isCanvas(next) || p.isHTML(next))) ||
		p.isTagNamed(id, "br") ||
		p.hasSurroundingLineBreak(id)
}

func (p *printer) hasSurroundingLineBreak(id ast.NodeID) bool {
	return p.hasLeadingLineBreak(id) && p.hasTrailingLineBreak(id)
}

func (p *printer) hasLeadingLineBreak(id ast.NodeID) bool {
	n := p.node(id)
	if n.Kind == ast.Document || !p.flags(id).HasLeadingWhitespace {
		return false
	}
	var from int
	if prev := p.prev(id); prev != ast.NoNode {
		from = p.node(prev).Position.End
	} else {
		from = p.innerStart(p.parent(id))
	}
	return p.hasLineBreakInRange(from, n.Position.Start)
}

func (p *printer) hasTrailingLineBreak(id ast.NodeID) bool {
	n := p.node(id)
	if n.Kind == ast.Document || !p.flags(id).HasTrailingWhitespace {
		return false
	}
	var to int
	if next := p.next(id); next != ast.NoNode {
		to = p.node(next).Position.Start
	} else {
		to = p.innerEnd(p.parent(id))
	}
	return p.hasLineBreakInRange(n.Position.End, to)
}

// innerStart is the offset where the content of a parent begins.
func (p *printer) innerStart(id ast.NodeID) int {
	if id == ast.NoNode {
		return 0
	}
	n := p.node(id)
	if n.BlockStartPosition.End >= 0 {
		return n.BlockStartPosition.End
	}
	return n.Position.Start
}

// innerEnd is the offset where the content of a parent ends.
func (p *printer) innerEnd(id ast.NodeID) int {
	if id == ast.NoNode {
		return len(p.tree.Source)
	}
	n := p.node(id)
	if n.BlockEndPosition.Start >= 0 {
		return n.BlockEndPosition.Start
	}
	return n.Position.End
}

func (p *printer) hasLineBreakInRange(start, end int) bool {
	if start < 0 || start >= len(p.tree.Source) || end <= start {
		return false
	}
	if end > len(p.tree.Source) {
		end = len(p.tree.Source)
	}
	return strings.IndexByte(p.tree.Source[start:end], '\n') >= 0
}

// forceNextEmptyLine reports an empty line between a node and its next
// sibling.
func (p *printer) forceNextEmptyLine(id ast.NodeID) bool {
	if id == ast.NoNode {
		return false
	}
	next := p.next(id)
	if next == ast.NoNode {
		return false
	}
	src := p.tree.Source
	end, start := p.node(id).Position.End, p.node(next).Position.Start
	if end < 0 || start > len(src) || start <= end {
		return false
	}
	return strings.Count(src[end:start], "\n") >= 2
}

func (p *printer) isPrettierIgnore(id ast.NodeID) bool {
	if id == ast.NoNode {
		return false
	}
	n := p.node(id)
	switch {
	case n.Kind == ast.HtmlComment:
		return prettierIgnore.MatchString(n.Text)
	case n.Kind == ast.CanvasTag && n.Name == "#":
		return prettierIgnore.MatchString(n.Text)
	}
	return false
}

// hasPrettierIgnore reports a node that is, or follows, an ignore comment.
func (p *printer) hasPrettierIgnore(id ast.NodeID) bool {
	return p.isPrettierIgnore(id) || p.isPrettierIgnore(p.prev(id))
}

// isVerbatim reports children that are printed as written.
func (p *printer) isVerbatim(id ast.NodeID) bool {
	return p.hasPrettierIgnore(id) || p.ignore.IsIgnored(p.node(id).Position)
}

// bodyLines trims the whitespace around s and splits it into lines.
func bodyLines(s string) []string {
	return lineBreak.Split(strings.TrimSpace(s), -1)
}

// blockLines splits s into lines without the blank lines around it. The
// first line keeps its indentation.
func blockLines(s string) []string {
	s = leadingBlank.ReplaceAllString(s, "")
	s = strings.TrimRight(s, " \t\r\n\f\v")
	return lineBreak.Split(s, -1)
}

// contentLines splits the body of a delimited construct into reindented
// lines. Text on the line of the opening delimiter does not count toward
// the common indentation.
func contentLines(s string) []string {
	if firstLineText.MatchString(s) {
		return reindent(bodyLines(s), true)
	}
	return reindent(blockLines(s), false)
}

// reindent strips the common indentation of lines, ignoring the first line
// when skipFirst is set, and trims trailing whitespace.
func reindent(lines []string, skipFirst bool) []string {
	minIndent := math.MaxInt
	for i, line := range lines {
		if (skipFirst && i == 0) || strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t\r\n\f\v"))
		if indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent == math.MaxInt {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		strip := minIndent
		lead := len(line) - len(strings.TrimLeft(line, " \t\r\n\f\v"))
		if lead < strip {
			strip = lead
		}
		out[i] = strings.TrimRight(line[strip:], " \t\r\n\f\v")
	}
	return out
}

// joinLines joins lines with hard line breaks.
func joinLines(lines []string) doc.Doc {
	docs := make([]doc.Doc, len(lines))
	for i, l := range lines {
		docs[i] = doc.Text(l)
	}
	return doc.Join(doc.HardLine, docs)
}

// literal prints s as written, keeping its own indentation.
func literal(s string) doc.Doc {
	lines := lineBreak.Split(s, -1)
	docs := make([]doc.Doc, len(lines))
	for i, l := range lines {
		docs[i] = doc.Text(l)
	}
	return doc.Join(doc.LiteralLine, docs)
}

// whitespaceTrim prints the trim marker of a delimiter: `-` when the author
// wrote one, and also when strip is set and one of the groups in ids
// breaks.
func whitespaceTrim(trim, strip bool, ids []doc.ID) doc.Doc {
	flat := ""
	if trim {
		flat = "-"
	}
	broken := flat
	if strip {
		broken = "-"
	}
	if broken == flat {
		return doc.Text(flat)
	}
	return ifBreakChain(doc.Text(broken), doc.Text(flat), ids)
}

// ifBreakChain prints breakContents when any group of ids breaks.
func ifBreakChain(breakContents, flatContents doc.Doc, ids []doc.ID) doc.Doc {
	if len(ids) == 0 {
		// the enclosing group
		return doc.IfBreak(breakContents, flatContents, nil)
	}
	for _, id := range ids {
		if id == forceBreak {
			return breakContents
		}
	}
	for _, id := range ids {
		if id == forceFlat {
			return flatContents
		}
	}
	out := flatContents
	for _, id := range ids {
		out = doc.IfBreak(breakContents, out, id)
	}
	return out
}
