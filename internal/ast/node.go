// Package ast holds the Canvas syntax tree. Nodes live in an arena owned by
// a Tree and are addressed by NodeID.
package ast

import (
	"fmt"
	"strings"

	"github.com/gnolang/canvasfmt/internal/expr"
	"github.com/gnolang/canvasfmt/internal/syntax"
)

// NodeID addresses a node in its Tree.
type NodeID int

// NoNode is the absent node.
const NoNode NodeID = -1

// Span is a byte range in the source.
type Span = syntax.Span

// Unset is the block end of a node that has not been closed yet.
var Unset = Span{Start: -1, End: -1}

type Kind int

const (
	Document Kind = iota
	HtmlElement
	HtmlVoidElement
	HtmlSelfClosingElement
	HtmlDanglingMarkerClose
	HtmlRawNode
	HtmlDoctype
	HtmlComment
	CanvasTag
	CanvasBranch
	CanvasRawTag
	CanvasVariableOutput
	AttrDoubleQuoted
	AttrSingleQuoted
	AttrUnquoted
	AttrEmpty
	TextNode
	RawMarkup
)

var kindNames = [...]string{
	Document:                "Document",
	HtmlElement:             "HtmlElement",
	HtmlVoidElement:         "HtmlVoidElement",
	HtmlSelfClosingElement:  "HtmlSelfClosingElement",
	HtmlDanglingMarkerClose: "HtmlDanglingMarkerClose",
	HtmlRawNode:             "HtmlRawNode",
	HtmlDoctype:             "HtmlDoctype",
	HtmlComment:             "HtmlComment",
	CanvasTag:               "CanvasTag",
	CanvasBranch:            "CanvasBranch",
	CanvasRawTag:            "CanvasRawTag",
	CanvasVariableOutput:    "CanvasVariableOutput",
	AttrDoubleQuoted:        "AttrDoubleQuoted",
	AttrSingleQuoted:        "AttrSingleQuoted",
	AttrUnquoted:            "AttrUnquoted",
	AttrEmpty:               "AttrEmpty",
	TextNode:                "TextNode",
	RawMarkup:               "RawMarkup",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsAttribute reports whether k is one of the attribute kinds.
func (k Kind) IsAttribute() bool {
	return k >= AttrDoubleQuoted && k <= AttrEmpty
}

// IsHTMLTag reports whether k is a node printed with HTML tag markers.
func (k Kind) IsHTMLTag() bool {
	switch k {
	case HtmlElement, HtmlVoidElement, HtmlSelfClosingElement, HtmlDanglingMarkerClose, HtmlRawNode:
		return true
	}
	return false
}

// Slot names the node list of a parent that holds a child.
type Slot int

const (
	NoSlot Slot = iota
	Children
	Attributes
	NameParts
	Value
)

func (s Slot) String() string {
	switch s {
	case Children:
		return "children"
	case Attributes:
		return "attributes"
	case NameParts:
		return "name"
	case Value:
		return "value"
	}
	return "none"
}

// Node is the universal tree element. Fields beyond Kind and Position are
// only meaningful for the kinds that carry them.
type Node struct {
	Kind     Kind
	Position Span

	// BlockStartPosition and BlockEndPosition locate the opening and closing
	// markup of block nodes. A zero-width block end was synthesized while
	// building and has no markup of its own.
	BlockStartPosition Span
	BlockEndPosition   Span

	// Name is the canvas tag or branch name, or the written HTML name.
	Name string

	NameParts  []NodeID
	Attributes []NodeID
	Value      []NodeID
	Children   []NodeID

	// Markup is the trimmed tag markup; Expr is its parsed form when the
	// markup parsed.
	Markup string
	Expr   expr.Node

	// Body is the RawMarkup node of raw tags.
	Body    NodeID
	RawKind syntax.RawKind

	// Text is the value of text, comment, doctype and raw markup nodes.
	Text string

	TrimStart          bool
	TrimEnd            bool
	DelimiterTrimStart bool
	DelimiterTrimEnd   bool

	// Block is set on canvas tags that own a body.
	Block bool
}

// Tree is an arena of nodes built from one source.
type Tree struct {
	Source string
	Nodes  []Node
	Root   NodeID
}

// Node returns the node addressed by id.
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

func (t *Tree) add(n Node) NodeID {
	if n.Body == 0 {
		n.Body = NoNode
	}
	t.Nodes = append(t.Nodes, n)
	return NodeID(len(t.Nodes) - 1)
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.Nodes) }

// Slice returns the source text covered by s.
func (t *Tree) Slice(s Span) string {
	if s.Start < 0 || s.End < s.Start || s.End > len(t.Source) {
		return ""
	}
	return t.Source[s.Start:s.End]
}

// SourceText returns the source text of a node.
func (t *Tree) SourceText(id NodeID) string {
	return t.Slice(t.Nodes[id].Position)
}

// HTMLName renders the possibly compound name of an HTML node or attribute.
func (t *Tree) HTMLName(id NodeID) string {
	n := &t.Nodes[id]
	if len(n.NameParts) == 0 {
		return n.Name
	}
	var sb strings.Builder
	for _, p := range n.NameParts {
		sb.WriteString(t.SourceText(p))
	}
	return sb.String()
}

// List returns the node list of id held in slot.
func (t *Tree) List(id NodeID, slot Slot) []NodeID {
	n := &t.Nodes[id]
	switch slot {
	case Children:
		return n.Children
	case Attributes:
		return n.Attributes
	case NameParts:
		return n.NameParts
	case Value:
		return n.Value
	}
	return nil
}

// Slots lists the slots walked by Walk, in source order.
var Slots = []Slot{NameParts, Attributes, Value, Children}

// Walk visits id and its descendants depth first, parents before children.
// A false return from fn skips the node's descendants.
func (t *Tree) Walk(id NodeID, fn func(id, parent NodeID, slot Slot) bool) {
	t.walk(id, NoNode, NoSlot, fn)
}

func (t *Tree) walk(id, parent NodeID, slot Slot, fn func(id, parent NodeID, slot Slot) bool) {
	if !fn(id, parent, slot) {
		return
	}
	for _, s := range Slots {
		for _, c := range t.List(id, s) {
			t.walk(c, id, s, fn)
		}
	}
	if body := t.Nodes[id].Body; body != NoNode {
		t.walk(body, id, NoSlot, fn)
	}
}

// HasZeroWidthEnd reports whether a block node was closed implicitly.
func (n *Node) HasZeroWidthEnd() bool {
	return n.BlockEndPosition.Start >= 0 && n.BlockEndPosition.Start == n.BlockEndPosition.End
}

// IsDanglingOpen reports whether an element's close lives in another
// branch.
func (n *Node) IsDanglingOpen() bool {
	return n.Kind == HtmlElement && n.HasZeroWidthEnd()
}
