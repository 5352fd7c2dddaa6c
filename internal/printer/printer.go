// Package printer compiles a Canvas syntax tree into layout instructions.
//
// The compiler follows the whitespace flags computed by package whitespace:
// a boundary that is whitespace sensitive is never given whitespace the
// author did not write. When a layout decision would add whitespace at such
// a boundary the printer either borrows the neighboring markup marker
// (`>`, `<tag`, `/>`, `</tag`) so the line break falls inside a tag, or it
// adds a `-` trim marker to the template delimiter on the condition that
// the group deciding that break is broken.
package printer

import (
	"fmt"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/augment"
	"github.com/gnolang/canvasfmt/internal/doc"
	"github.com/gnolang/canvasfmt/internal/ignore"
	"github.com/gnolang/canvasfmt/internal/whitespace"
)

// Options are the layout settings that change what is printed. Line
// fitting options are passed to doc.Print separately.
type Options struct {
	// SingleQuote prefers single quotes around attribute values.
	SingleQuote bool
	// CanvasSingleQuote prefers single quotes for strings inside template
	// markup.
	CanvasSingleQuote bool
	// SingleAttributePerLine puts every attribute on its own line when an
	// element has more than one.
	SingleAttributePerLine bool
	// BracketSameLine keeps the `>` of a broken opening tag on the last
	// attribute line.
	BracketSameLine bool
}

// DefaultOptions returns the default layout settings.
func DefaultOptions() Options {
	return Options{CanvasSingleQuote: true}
}

// args carries the group ids that decide the whitespace around a node.
type args struct {
	leading  []doc.ID
	trailing []doc.ID
	// truncate drops the fractional part of numbers.
	truncate bool
}

type printer struct {
	tree   *ast.Tree
	family *augment.Family
	info   *whitespace.Info
	opts   Options
	ignore *ignore.Manager
	err    error
}

// Print compiles tree into a document.
func Print(tree *ast.Tree, family *augment.Family, info *whitespace.Info, opts Options) (doc.Doc, error) {
	p := &printer{
		tree:   tree,
		family: family,
		info:   info,
		opts:   opts,
		ignore: ignore.ParseComments(tree),
	}
	d := p.print(tree.Root, args{})
	if p.err != nil {
		return nil, p.err
	}
	return d, nil
}

func (p *printer) print(id ast.NodeID, a args) doc.Doc {
	n := p.node(id)
	switch n.Kind {
	case ast.Document:
		if len(n.Children) == 0 {
			return doc.Empty
		}
		return doc.Concat(p.printChildren(id, a), doc.HardLine)
	case ast.HtmlElement, ast.HtmlDanglingMarkerClose, ast.HtmlVoidElement,
		ast.HtmlSelfClosingElement, ast.HtmlRawNode:
		return p.printElement(id, a)
	case ast.RawMarkup:
		return p.printRawMarkup(id)
	case ast.CanvasVariableOutput:
		return p.printOutput(id, a)
	case ast.CanvasRawTag:
		return p.printRawTag(id, a)
	case ast.CanvasTag:
		return p.printTag(id, a)
	case ast.CanvasBranch:
		return p.printBranch(id, a)
	case ast.AttrEmpty:
		return p.printAttributeName(id)
	case ast.AttrDoubleQuoted, ast.AttrSingleQuoted, ast.AttrUnquoted:
		return p.printAttribute(id)
	case ast.HtmlDoctype:
		return p.printDoctype(id)
	case ast.HtmlComment:
		return p.printComment(id)
	case ast.TextNode:
		return p.printText(id)
	}
	if p.err == nil {
		p.err = fmt.Errorf("cannot print %s node at offset %d", n.Kind, n.Position.Start)
	}
	return doc.Empty
}
