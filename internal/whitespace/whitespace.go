// Package whitespace classifies the CSS display and white-space of every
// node and decides which node boundaries are whitespace sensitive.
package whitespace

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/augment"
)

// Mode is the HTML whitespace sensitivity setting.
type Mode string

const (
	// CSS follows the display of each element.
	CSS Mode = "css"
	// Strict treats every element as inline.
	Strict Mode = "strict"
	// Ignore treats every element as block.
	Ignore Mode = "ignore"
)

// ParseMode validates a sensitivity name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case "":
		return CSS, nil
	case CSS, Strict, Ignore:
		return m, nil
	}
	return CSS, fmt.Errorf("unknown html whitespace sensitivity %q", s)
}

// Flags holds the classification of one node.
type Flags struct {
	Display    string
	WhiteSpace string

	IsDanglingWhitespaceSensitive bool
	IsIndentationSensitive        bool
	IsWhitespaceSensitive         bool
	IsLeadingWhitespaceSensitive  bool
	IsTrailingWhitespaceSensitive bool

	HasLeadingWhitespace  bool
	HasTrailingWhitespace bool
	HasDanglingWhitespace bool
}

// Info holds the Flags of every node of a tree.
type Info struct {
	tree   *ast.Tree
	family *augment.Family
	flags  []Flags
}

var (
	displayComment    = regexp.MustCompile(`^\s*display:\s*([a-z-]+)\s*$`)
	whiteSpaceComment = regexp.MustCompile(`^\s*white-?space:\s*([a-z-]+)\s*$`)
)

// Analyze classifies every node of tree.
func Analyze(tree *ast.Tree, family *augment.Family, mode Mode) *Info {
	info := &Info{
		tree:   tree,
		family: family,
		flags:  make([]Flags, tree.Len()),
	}
	for id := range info.flags {
		f := &info.flags[id]
		f.Display = info.display(ast.NodeID(id), mode)
		f.WhiteSpace = info.whiteSpace(ast.NodeID(id))
	}
	for i := range info.flags {
		id := ast.NodeID(i)
		f := &info.flags[i]
		prev, next := family.Prev(id), family.Next(id)

		f.IsIndentationSensitive = isPreLike(f.WhiteSpace)
		f.IsWhitespaceSensitive = f.IsIndentationSensitive
		f.IsDanglingWhitespaceSensitive = info.isDanglingSensitive(id)
		f.IsLeadingWhitespaceSensitive = info.leadingSensitive(id) &&
			(prev == ast.NoNode || info.trailingSensitive(prev))
		f.IsTrailingWhitespaceSensitive = info.trailingSensitive(id) &&
			(next == ast.NoNode || info.leadingSensitive(next))
		f.HasLeadingWhitespace = info.hasLeadingWhitespace(id)
		f.HasTrailingWhitespace = info.hasTrailingWhitespace(id)
		f.HasDanglingWhitespace = info.hasDanglingWhitespace(id)
	}
	return info
}

// Of returns the flags of id.
func (info *Info) Of(id ast.NodeID) *Flags {
	return &info.flags[id]
}

func (info *Info) node(id ast.NodeID) *ast.Node {
	return info.tree.Node(id)
}

// simpleName returns the lowercase name of an HTML node whose name has no
// template parts.
func (info *Info) simpleName(id ast.NodeID) (string, bool) {
	n := info.node(id)
	switch len(n.NameParts) {
	case 0:
		return strings.ToLower(n.Name), n.Name != ""
	case 1:
		if info.node(n.NameParts[0]).Kind == ast.TextNode {
			return strings.ToLower(info.tree.SourceText(n.NameParts[0])), true
		}
	}
	return "", false
}

// commentHint returns the value a preceding `<!-- property: value -->`
// comment assigns.
func (info *Info) commentHint(id ast.NodeID, re *regexp.Regexp) string {
	prev := info.family.Prev(id)
	if prev == ast.NoNode || info.node(prev).Kind != ast.HtmlComment {
		return ""
	}
	if m := re.FindStringSubmatch(info.node(prev).Text); m != nil {
		return m[1]
	}
	return ""
}

func (info *Info) display(id ast.NodeID, mode Mode) string {
	if hint := info.commentHint(id, displayComment); hint != "" {
		return hint
	}
	n := info.node(id)
	switch n.Kind {
	case ast.HtmlElement, ast.HtmlDanglingMarkerClose, ast.HtmlSelfClosingElement,
		ast.HtmlVoidElement, ast.HtmlRawNode:
		switch mode {
		case Strict:
			return "inline"
		case Ignore:
			return "block"
		}
		if name, ok := info.simpleName(id); ok {
			if d, ok := displayTags[name]; ok {
				return d
			}
		}
		return defaultDisplay
	case ast.CanvasTag, ast.CanvasRawTag:
		if d, ok := canvasDisplayTags[n.Name]; ok {
			return d
		}
		return defaultCanvasDisplay
	case ast.HtmlDoctype, ast.HtmlComment, ast.Document:
		return "block"
	}
	return "inline"
}

func (info *Info) whiteSpace(id ast.NodeID) string {
	if hint := info.commentHint(id, whiteSpaceComment); hint != "" {
		return hint
	}
	n := info.node(id)
	switch n.Kind {
	case ast.HtmlElement, ast.HtmlDanglingMarkerClose, ast.HtmlSelfClosingElement,
		ast.HtmlVoidElement, ast.HtmlRawNode:
		if name, ok := info.simpleName(id); ok {
			if ws, ok := whiteSpaceTags[name]; ok {
				return ws
			}
		}
	case ast.RawMarkup, ast.CanvasRawTag:
		return "pre"
	case ast.CanvasTag:
		if ws, ok := canvasWhiteSpaceTags[n.Name]; ok {
			return ws
		}
	}
	return defaultWhiteSpace
}

func isPreLike(whiteSpace string) bool {
	return strings.HasPrefix(whiteSpace, "pre")
}

func (info *Info) isPreLikeNode(id ast.NodeID) bool {
	return isPreLike(info.flags[id].WhiteSpace)
}

// IsScriptLike reports whether a node holds an opaque body.
func (info *Info) IsScriptLike(id ast.NodeID) bool {
	switch info.node(id).Kind {
	case ast.HtmlRawNode, ast.CanvasRawTag:
		return true
	}
	return false
}

// TrimsOuterLeft reports `{{-`, `{%-` on the node's opening delimiter.
func (info *Info) TrimsOuterLeft(id ast.NodeID) bool {
	if id == ast.NoNode {
		return false
	}
	n := info.node(id)
	switch n.Kind {
	case ast.CanvasRawTag, ast.CanvasTag, ast.CanvasBranch, ast.CanvasVariableOutput:
		return n.TrimStart
	}
	return false
}

// TrimsOuterRight reports a `-}}` or `-%}` that strips whitespace after the
// node.
func (info *Info) TrimsOuterRight(id ast.NodeID) bool {
	if id == ast.NoNode {
		return false
	}
	n := info.node(id)
	switch n.Kind {
	case ast.CanvasRawTag:
		return n.DelimiterTrimEnd
	case ast.CanvasTag:
		if n.Block {
			return n.DelimiterTrimEnd
		}
		return n.TrimEnd
	case ast.CanvasVariableOutput:
		return n.TrimEnd
	}
	return false
}

// TrimsInnerLeft reports a trim marker that strips whitespace at the start
// of the node's body.
func (info *Info) TrimsInnerLeft(id ast.NodeID) bool {
	if id == ast.NoNode {
		return false
	}
	n := info.node(id)
	switch n.Kind {
	case ast.CanvasRawTag:
		return n.TrimEnd
	case ast.CanvasTag:
		return n.Block && n.TrimEnd
	case ast.CanvasBranch:
		parent := info.family.Parent(id)
		if parent == ast.NoNode || info.node(parent).Kind != ast.CanvasTag {
			return false
		}
		if info.family.Prev(id) == ast.NoNode {
			return info.node(parent).TrimEnd
		}
		return n.TrimEnd
	}
	return false
}

// TrimsInnerRight reports a trim marker that strips whitespace at the end
// of the node's body.
func (info *Info) TrimsInnerRight(id ast.NodeID) bool {
	if id == ast.NoNode {
		return false
	}
	n := info.node(id)
	switch n.Kind {
	case ast.CanvasRawTag:
		return n.DelimiterTrimStart
	case ast.CanvasTag:
		return n.Block && n.DelimiterTrimStart
	case ast.CanvasBranch:
		parent := info.family.Parent(id)
		if parent == ast.NoNode || info.node(parent).Kind != ast.CanvasTag {
			return false
		}
		next := info.family.Next(id)
		if next == ast.NoNode {
			return info.TrimsInnerRight(parent)
		}
		return info.TrimsOuterLeft(next)
	}
	return false
}

// inAttributeList reports whether id sits in the attribute list of an
// element, directly or inside a tag placed there.
func (info *Info) inAttributeList(id ast.NodeID) bool {
	for id != ast.NoNode {
		if info.family.Slot(id) == ast.Attributes {
			return true
		}
		id = info.family.Parent(id)
	}
	return false
}

func (info *Info) isDanglingSensitive(id ast.NodeID) bool {
	return isDanglingSensitiveDisplay(info.flags[id].Display) &&
		!info.IsScriptLike(id) &&
		!info.TrimsInnerLeft(id) &&
		!info.TrimsInnerRight(id)
}

func (info *Info) leadingSensitive(id ast.NodeID) bool {
	n := info.node(id)
	switch info.family.Slot(id) {
	case ast.NameParts, ast.Value:
		return n.Kind == ast.CanvasVariableOutput
	}
	if info.inAttributeList(id) {
		return false
	}

	prev := info.family.Prev(id)
	if n.Kind == ast.CanvasBranch {
		if prev == ast.NoNode {
			if first := info.family.FirstChild(id); first != ast.NoNode {
				return info.leadingSensitive(first)
			}
			return info.isDanglingSensitive(id)
		}
		if n.TrimStart {
			return false
		}
		if last := info.family.LastChild(prev); last != ast.NoNode {
			return info.trailingSensitive(last)
		}
		return info.isDanglingSensitive(prev)
	}

	if info.TrimsOuterLeft(id) || info.TrimsOuterRight(prev) {
		return false
	}
	parent := info.family.Parent(id)
	if parent == ast.NoNode || info.flags[parent].Display == "none" {
		return false
	}
	if info.isPreLikeNode(parent) {
		return true
	}
	if info.IsScriptLike(id) {
		return false
	}
	if prev == ast.NoNode &&
		(info.node(parent).Kind == ast.Document ||
			info.isPreLikeNode(id) ||
			info.IsScriptLike(parent) ||
			!isInnerLeftSensitive(info.flags[parent].Display) ||
			info.TrimsInnerLeft(parent)) {
		return false
	}
	if prev != ast.NoNode && !isOuterRightSensitive(info.flags[prev].Display) {
		return false
	}
	return isOuterLeftSensitive(info.flags[id].Display)
}

func (info *Info) trailingSensitive(id ast.NodeID) bool {
	n := info.node(id)
	if n.IsDanglingOpen() {
		last := info.family.LastChild(id)
		if last == ast.NoNode {
			return isInnerLeftSensitive(info.flags[id].Display)
		}
		return createsInlineFormattingContext(info.flags[id].Display) && info.trailingSensitive(last)
	}
	if info.TrimsOuterRight(id) {
		return false
	}
	switch info.family.Slot(id) {
	case ast.NameParts, ast.Value:
		return n.Kind == ast.CanvasVariableOutput
	}
	if info.inAttributeList(id) {
		return false
	}

	next := info.family.Next(id)
	if info.TrimsOuterLeft(next) {
		return false
	}
	if n.Kind == ast.CanvasBranch {
		if last := info.family.LastChild(id); last != ast.NoNode {
			return info.trailingSensitive(last)
		}
		return info.isDanglingSensitive(id)
	}

	parent := info.family.Parent(id)
	if parent == ast.NoNode || info.flags[parent].Display == "none" {
		return false
	}
	if info.isPreLikeNode(parent) {
		return true
	}
	if info.IsScriptLike(id) {
		return false
	}
	if n.Kind.IsHTMLTag() {
		if name, ok := info.simpleName(id); ok && name == "br" {
			return false
		}
	}
	if next == ast.NoNode &&
		(info.node(parent).Kind == ast.Document ||
			info.isPreLikeNode(id) ||
			info.IsScriptLike(parent) ||
			(!info.node(parent).IsDanglingOpen() && !isInnerRightSensitive(info.flags[parent].Display)) ||
			info.TrimsInnerRight(parent)) {
		return false
	}
	if next != ast.NoNode && !isOuterLeftSensitive(info.flags[next].Display) {
		return false
	}
	return isOuterRightSensitive(info.flags[id].Display)
}

func (info *Info) isWhitespaceAt(offset int) bool {
	src := info.tree.Source
	if offset < 0 || offset >= len(src) {
		return false
	}
	switch src[offset] {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// holdsChildren reports whether a node kind has a children list.
func holdsChildren(n *ast.Node) bool {
	switch n.Kind {
	case ast.Document, ast.HtmlElement, ast.CanvasBranch:
		return true
	case ast.CanvasTag:
		return n.Block
	}
	return false
}

func (info *Info) hasDanglingWhitespace(id ast.NodeID) bool {
	n := info.node(id)
	switch {
	case !holdsChildren(n):
		return false
	case n.Kind == ast.Document:
		return len(n.Children) == 0 && len(info.tree.Source) > 0
	case n.Kind == ast.CanvasTag && ast.IsBranchingTag(n.Name) && len(n.Children) == 1:
		return info.hasDanglingWhitespace(n.Children[0])
	case len(n.Children) > 0:
		return false
	}
	return info.isWhitespaceAt(n.BlockStartPosition.End)
}

func (info *Info) hasLeadingWhitespace(id ast.NodeID) bool {
	n := info.node(id)
	if n.Kind == ast.CanvasBranch && info.family.Prev(id) == ast.NoNode {
		if first := info.family.FirstChild(id); first != ast.NoNode {
			return info.hasLeadingWhitespace(first)
		}
		return info.hasDanglingWhitespace(id)
	}
	return info.isWhitespaceAt(n.Position.Start - 1)
}

func (info *Info) hasTrailingWhitespace(id ast.NodeID) bool {
	n := info.node(id)
	if n.Kind == ast.CanvasBranch || n.IsDanglingOpen() {
		if last := info.family.LastChild(id); last != ast.NoNode {
			return info.hasTrailingWhitespace(last)
		}
		return info.hasDanglingWhitespace(id)
	}
	return info.isWhitespaceAt(n.Position.End)
}
