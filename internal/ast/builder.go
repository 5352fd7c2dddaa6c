package ast

import (
	"strings"

	"github.com/gnolang/canvasfmt/internal/syntax"
)

// Block tags whose bodies are split into branches.
var branchingTags = map[string]bool{
	"if":  true,
	"for": true,
}

// IsBranchingTag reports whether a block tag holds branches.
func IsBranchingTag(name string) bool {
	return branchingTags[name]
}

// frame is one entry of the cursor: the node list new nodes are appended to.
type frame struct {
	owner NodeID
	slot  Slot
}

// Builder turns a token stream into a Tree.
type Builder struct {
	tree  *Tree
	mode  syntax.Mode
	stack []frame
	// base is the index of the frame the current token list started on.
	base int
}

// Build builds the tree of source from its tokens.
func Build(source string, tokens []syntax.Token, mode syntax.Mode) (*Tree, error) {
	b := NewBuilder(source, mode)
	if err := b.AddAll(tokens); err != nil {
		return nil, err
	}
	return b.Finish()
}

// NewBuilder returns a builder positioned in an empty document.
func NewBuilder(source string, mode syntax.Mode) *Builder {
	t := &Tree{Source: source}
	t.Root = t.add(Node{
		Kind:               Document,
		Name:               "#document",
		Position:           Span{Start: 0, End: len(source)},
		BlockStartPosition: Span{Start: 0, End: 0},
		BlockEndPosition:   Span{Start: len(source), End: len(source)},
	})
	return &Builder{
		tree:  t,
		mode:  mode,
		stack: []frame{{owner: t.Root, slot: Children}},
	}
}

// AddAll adds tokens in order at the cursor.
func (b *Builder) AddAll(tokens []syntax.Token) error {
	for i := range tokens {
		if err := b.Add(&tokens[i]); err != nil {
			return err
		}
	}
	return nil
}

// Add adds one token at the cursor.
func (b *Builder) Add(tok *syntax.Token) error {
	switch tok.Kind {
	case syntax.TextNode:
		b.Push(b.leaf(tok))
	case syntax.CanvasVariableOutput:
		b.Push(b.output(tok))
	case syntax.HtmlComment:
		b.Push(b.tree.add(Node{
			Kind:     HtmlComment,
			Position: tok.Span(),
			Text:     tok.Body,
		}))
	case syntax.HtmlDoctype:
		b.Push(b.tree.add(Node{
			Kind:     HtmlDoctype,
			Position: tok.Span(),
			Text:     tok.Doctype,
		}))
	case syntax.HtmlTagOpen:
		id, err := b.element(tok, HtmlElement)
		if err != nil {
			return err
		}
		b.Open(id)
	case syntax.HtmlVoidElement, syntax.HtmlSelfClosingElement:
		kind := HtmlVoidElement
		if tok.Kind == syntax.HtmlSelfClosingElement {
			kind = HtmlSelfClosingElement
		}
		id, err := b.element(tok, kind)
		if err != nil {
			return err
		}
		n := b.tree.Node(id)
		n.BlockEndPosition = Span{Start: tok.End, End: tok.End}
		b.Push(id)
	case syntax.HtmlRawTag:
		id, err := b.element(tok, HtmlRawNode)
		if err != nil {
			return err
		}
		b.withBody(id, tok)
		b.Push(id)
	case syntax.HtmlTagClose:
		return b.closeElement(tok)
	case syntax.CanvasRawTag:
		id := b.tree.add(Node{
			Kind:               CanvasRawTag,
			Name:               tok.Name,
			Markup:             tok.Markup,
			Position:           tok.Span(),
			TrimStart:          tok.TrimStart,
			TrimEnd:            tok.TrimEnd,
			DelimiterTrimStart: tok.DelimiterTrimStart,
			DelimiterTrimEnd:   tok.DelimiterTrimEnd,
		})
		b.withBody(id, tok)
		b.Push(id)
	case syntax.CanvasTag:
		if syntax.IsBranchName(tok.Name) {
			return b.continueBranch(tok)
		}
		b.Push(b.tag(tok, false))
	case syntax.CanvasTagOpen:
		id := b.tag(tok, true)
		b.Open(id)
		if IsBranchingTag(tok.Name) {
			b.Open(b.tree.add(Node{
				Kind:               CanvasBranch,
				Position:           Span{Start: tok.End, End: -1},
				BlockStartPosition: Span{Start: tok.End, End: tok.End},
				BlockEndPosition:   Unset,
			}))
		}
	case syntax.CanvasTagClose:
		return b.closeTag(tok)
	case syntax.AttrDoubleQuoted, syntax.AttrSingleQuoted, syntax.AttrUnquoted, syntax.AttrEmpty:
		id, err := b.attribute(tok)
		if err != nil {
			return err
		}
		b.Push(id)
	}
	return nil
}

// Open appends id at the cursor and descends into its children.
func (b *Builder) Open(id NodeID) {
	b.Push(id)
	b.stack = append(b.stack, frame{owner: id, slot: Children})
}

// Push appends id at the cursor.
func (b *Builder) Push(id NodeID) {
	f := b.stack[len(b.stack)-1]
	n := b.tree.Node(f.owner)
	switch f.slot {
	case Children:
		n.Children = append(n.Children, id)
	case Attributes:
		n.Attributes = append(n.Attributes, id)
	case NameParts:
		n.NameParts = append(n.NameParts, id)
	case Value:
		n.Value = append(n.Value, id)
	}
}

func (b *Builder) top() *Node {
	return b.tree.Node(b.stack[len(b.stack)-1].owner)
}

func (b *Builder) pop() {
	b.stack = b.stack[:len(b.stack)-1]
}

// Finish closes the document and returns the tree.
func (b *Builder) Finish() (*Tree, error) {
	if err := b.closeRemaining(len(b.tree.Source)); err != nil {
		return nil, err
	}
	return b.tree, nil
}

// closeRemaining checks that the frames above base are all closed. In
// completion mode they are closed at offset instead.
func (b *Builder) closeRemaining(offset int) error {
	for len(b.stack)-1 > b.base {
		n := b.top()
		if b.mode != syntax.Completion {
			return &StructuralError{
				Reason: Unclosed,
				Span:   n.BlockStartPosition,
				Name:   b.describe(b.stack[len(b.stack)-1].owner),
			}
		}
		b.closeAt(n, offset)
		b.pop()
	}
	return nil
}

// closeAt closes n with a zero-width block end.
func (b *Builder) closeAt(n *Node, offset int) {
	n.BlockEndPosition = Span{Start: offset, End: offset}
	n.Position.End = offset
}

// buildList builds tokens into the slot of owner, then restores the cursor.
func (b *Builder) buildList(owner NodeID, slot Slot, tokens []syntax.Token, end int) error {
	if len(tokens) == 0 {
		return nil
	}
	savedBase := b.base
	b.stack = append(b.stack, frame{owner: owner, slot: slot})
	b.base = len(b.stack) - 1
	defer func() {
		b.stack = b.stack[:b.base]
		b.base = savedBase
	}()

	if err := b.AddAll(tokens); err != nil {
		return err
	}
	return b.closeRemaining(end)
}

func (b *Builder) leaf(tok *syntax.Token) NodeID {
	return b.tree.add(Node{
		Kind:     TextNode,
		Position: tok.Span(),
		Text:     b.tree.Source[tok.Start:tok.End],
	})
}

func (b *Builder) output(tok *syntax.Token) NodeID {
	return b.tree.add(Node{
		Kind:      CanvasVariableOutput,
		Position:  tok.Span(),
		Markup:    tok.Markup,
		Expr:      tok.Expr,
		TrimStart: tok.TrimStart,
		TrimEnd:   tok.TrimEnd,
	})
}

func (b *Builder) tag(tok *syntax.Token, block bool) NodeID {
	n := Node{
		Kind:               CanvasTag,
		Name:               tok.Name,
		Markup:             tok.Markup,
		Expr:               tok.Expr,
		Position:           tok.Span(),
		BlockStartPosition: tok.Span(),
		BlockEndPosition:   Unset,
		TrimStart:          tok.TrimStart,
		TrimEnd:            tok.TrimEnd,
		Block:              block,
	}
	if tok.Name == "#" {
		n.Text = tok.Body
	}
	if block {
		n.Position.End = -1
	}
	return b.tree.add(n)
}

func (b *Builder) names(owner NodeID, tok *syntax.Token) {
	for i := range tok.NameParts {
		p := &tok.NameParts[i]
		var id NodeID
		if p.Kind == syntax.CanvasVariableOutput {
			id = b.output(p)
		} else {
			id = b.leaf(p)
		}
		n := b.tree.Node(owner)
		n.NameParts = append(n.NameParts, id)
	}
}

func (b *Builder) element(tok *syntax.Token, kind Kind) (NodeID, error) {
	id := b.tree.add(Node{
		Kind:               kind,
		Name:               tok.Name,
		Position:           tok.Span(),
		BlockStartPosition: tok.Span(),
		BlockEndPosition:   Unset,
	})
	if kind == HtmlElement {
		b.tree.Node(id).Position.End = -1
	}
	end := tok.End
	if kind == HtmlRawNode {
		end = tok.BlockStart.End
	}
	b.names(id, tok)
	if err := b.buildList(id, Attributes, tok.Attributes, end); err != nil {
		return NoNode, err
	}
	return id, nil
}

func (b *Builder) attribute(tok *syntax.Token) (NodeID, error) {
	var kind Kind
	switch tok.Kind {
	case syntax.AttrDoubleQuoted:
		kind = AttrDoubleQuoted
	case syntax.AttrSingleQuoted:
		kind = AttrSingleQuoted
	case syntax.AttrUnquoted:
		kind = AttrUnquoted
	default:
		kind = AttrEmpty
	}
	id := b.tree.add(Node{
		Kind:               kind,
		Name:               tok.Name,
		Position:           tok.Span(),
		BlockStartPosition: tok.ValueSpan,
	})
	b.names(id, tok)
	if err := b.buildList(id, Value, tok.Value, tok.ValueSpan.End); err != nil {
		return NoNode, err
	}
	return id, nil
}

func (b *Builder) withBody(id NodeID, tok *syntax.Token) {
	body := b.tree.add(Node{
		Kind:     RawMarkup,
		Position: tok.BodySpan,
		Text:     tok.Body,
		RawKind:  tok.RawKind,
	})
	n := b.tree.Node(id)
	n.Body = body
	n.RawKind = tok.RawKind
	n.BlockStartPosition = tok.BlockStart
	n.BlockEndPosition = tok.BlockEnd
}

// continueBranch closes the nearest enclosing branch, stepping over open
// elements, and opens the branch introduced by tok.
func (b *Builder) continueBranch(tok *syntax.Token) error {
	at := -1
	for i := len(b.stack) - 1; i > b.base; i-- {
		n := b.tree.Node(b.stack[i].owner)
		if n.Kind == HtmlElement {
			continue
		}
		if n.Kind == CanvasBranch {
			at = i
		}
		break
	}
	if at < 0 {
		return &StructuralError{
			Reason: BranchOutsideBlock,
			Span:   tok.Span(),
			Name:   describe(CanvasBranch, tok.Name),
		}
	}
	for len(b.stack)-1 >= at {
		b.closeAt(b.top(), tok.Start)
		b.pop()
	}
	b.Open(b.tree.add(Node{
		Kind:               CanvasBranch,
		Name:               tok.Name,
		Markup:             tok.Markup,
		Expr:               tok.Expr,
		Position:           Span{Start: tok.Start, End: -1},
		BlockStartPosition: tok.Span(),
		BlockEndPosition:   Unset,
		TrimStart:          tok.TrimStart,
		TrimEnd:            tok.TrimEnd,
	}))
	return nil
}

// closeTag closes the block tag named by tok. Elements left open inside a
// branch are closed at the branch boundary.
func (b *Builder) closeTag(tok *syntax.Token) error {
	i := len(b.stack) - 1
	for i > b.base && b.tree.Node(b.stack[i].owner).Kind == HtmlElement {
		i--
	}
	if i > b.base && i < len(b.stack)-1 && b.tree.Node(b.stack[i].owner).Kind == CanvasBranch {
		for len(b.stack)-1 > i {
			b.closeAt(b.top(), tok.Start)
			b.pop()
		}
	}
	if len(b.stack)-1 > b.base && b.top().Kind == CanvasBranch {
		b.closeAt(b.top(), tok.Start)
		b.pop()
	}

	name := describe(CanvasTag, tok.Name)
	if len(b.stack)-1 <= b.base {
		return &StructuralError{Reason: ClosedBeforeOpened, Span: tok.Span(), Name: name}
	}
	n := b.top()
	if n.Kind != CanvasTag || n.Name != tok.Name {
		return b.mismatch(tok, name, func(m *Node) bool {
			return m.Kind == CanvasTag && m.Name == tok.Name
		})
	}
	n.BlockEndPosition = tok.Span()
	n.Position.End = tok.End
	n.DelimiterTrimStart = tok.TrimStart
	n.DelimiterTrimEnd = tok.TrimEnd
	b.pop()
	return nil
}

// closeElement closes the element named by tok. A close tag directly
// inside a branch of a branching tag is kept as a dangling close marker.
func (b *Builder) closeElement(tok *syntax.Token) error {
	name := describe(HtmlElement, tok.HTMLName(b.tree.Source))
	if len(b.stack)-1 > b.base {
		n := b.top()
		if n.Kind == HtmlElement && sameName(b.tree.HTMLName(b.stack[len(b.stack)-1].owner), tok.HTMLName(b.tree.Source)) {
			n.BlockEndPosition = tok.Span()
			n.Position.End = tok.End
			b.pop()
			return nil
		}
		if b.inBranch() {
			id := b.tree.add(Node{
				Kind:               HtmlDanglingMarkerClose,
				Name:               tok.Name,
				Position:           tok.Span(),
				BlockStartPosition: tok.Span(),
				BlockEndPosition:   Span{Start: tok.End, End: tok.End},
			})
			b.names(id, tok)
			b.Push(id)
			return nil
		}
	}
	want := tok.HTMLName(b.tree.Source)
	return b.mismatch(tok, name, func(m *Node) bool {
		return m.Kind == HtmlElement && sameName(m.Name, want)
	})
}

// inBranch reports whether the cursor sits directly in a branch of a
// branching block tag.
func (b *Builder) inBranch() bool {
	if len(b.stack)-2 <= b.base {
		return false
	}
	parent := b.top()
	grandparent := b.tree.Node(b.stack[len(b.stack)-2].owner)
	return parent.Kind == CanvasBranch && grandparent.Kind == CanvasTag && IsBranchingTag(grandparent.Name)
}

// mismatch builds the error for a close that does not match the cursor.
func (b *Builder) mismatch(tok *syntax.Token, name string, matches func(*Node) bool) error {
	for i := len(b.stack) - 1; i > b.base; i-- {
		if matches(b.tree.Node(b.stack[i].owner)) {
			return &StructuralError{
				Reason:   ClosedOutOfOrder,
				Span:     tok.Span(),
				Name:     name,
				Blocking: b.describe(b.stack[len(b.stack)-1].owner),
			}
		}
	}
	return &StructuralError{Reason: ClosedBeforeOpened, Span: tok.Span(), Name: name}
}

func (b *Builder) describe(id NodeID) string {
	n := b.tree.Node(id)
	switch n.Kind {
	case HtmlElement:
		return describe(n.Kind, b.tree.HTMLName(id))
	case CanvasBranch:
		if n.Name == "" {
			return describe(n.Kind, "unnamed")
		}
	}
	return describe(n.Kind, n.Name)
}

func sameName(a, b string) bool {
	return strings.EqualFold(a, b)
}
