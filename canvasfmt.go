// Package canvasfmt formats Canvas templates: HTML interleaved with
// {% %} tags, {{ }} outputs and {# #} comments.
//
//	out, err := canvasfmt.Format(src, canvasfmt.DefaultOptions())
package canvasfmt

import (
	"fmt"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/augment"
	"github.com/gnolang/canvasfmt/internal/config"
	"github.com/gnolang/canvasfmt/internal/doc"
	"github.com/gnolang/canvasfmt/internal/printer"
	"github.com/gnolang/canvasfmt/internal/syntax"
	"github.com/gnolang/canvasfmt/internal/whitespace"
)

// LanguageInfo describes the formatted language.
type LanguageInfo struct {
	Name       string
	Parser     string
	Extensions []string
}

// Language is the Canvas language description.
var Language = LanguageInfo{
	Name:       "Canvas",
	Parser:     "canvas",
	Extensions: []string{".canvas", ".html"},
}

// HasExtension reports whether path ends in one of the Canvas extensions.
func HasExtension(path string) bool {
	for _, ext := range Language.Extensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// Options control the layout.
type Options = config.Options

// DefaultOptions returns the default layout options.
func DefaultOptions() Options {
	return config.Default()
}

// Mode selects the grammar variant used by ParseMode.
type Mode = syntax.Mode

const (
	Tolerant   = syntax.Tolerant
	Strict     = syntax.Strict
	Completion = syntax.Completion
)

// Document is a parsed template.
type Document struct {
	Source string
	Tree   *ast.Tree
	Family *augment.Family
}

// Parse parses source in tolerant mode.
func Parse(source string) (*Document, error) {
	return ParseMode(source, syntax.Tolerant)
}

// ParseMode parses source with the given grammar variant.
func ParseMode(source string, mode Mode) (*Document, error) {
	tokens, err := syntax.Tokenize(source, mode)
	if err != nil {
		return nil, fmt.Errorf("tokenizing: %w", err)
	}
	tree, err := ast.Build(source, tokens, mode)
	if err != nil {
		return nil, fmt.Errorf("building tree: %w", err)
	}
	return &Document{Source: source, Tree: tree, Family: augment.Build(tree)}, nil
}

// Layout is a compiled document ready to be rendered.
type Layout struct {
	Doc  doc.Doc
	opts Options
}

// String renders the layout at the configured width.
func (l *Layout) String() string {
	return doc.Print(l.Doc, doc.Options{PrintWidth: l.opts.PrintWidth, TabWidth: l.opts.TabWidth})
}

// Debug renders the layout instructions.
func (l *Layout) Debug() string {
	return doc.Debug(l.Doc)
}

// Print compiles d into a layout.
func Print(d *Document, opts Options) (*Layout, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	mode, err := whitespace.ParseMode(string(opts.HTMLWhitespaceSensitivity))
	if err != nil {
		return nil, err
	}
	info := whitespace.Analyze(d.Tree, d.Family, mode)
	out, err := printer.Print(d.Tree, d.Family, info, printer.Options{
		SingleQuote:            opts.SingleQuote,
		CanvasSingleQuote:      opts.CanvasSingleQuote,
		SingleAttributePerLine: opts.SingleAttributePerLine,
		BracketSameLine:        opts.BracketSameLine,
	})
	if err != nil {
		return nil, fmt.Errorf("printing: %w", err)
	}
	return &Layout{Doc: out, opts: opts}, nil
}

// Format parses and prints source.
func Format(source string, opts Options) (string, error) {
	d, err := Parse(source)
	if err != nil {
		return "", err
	}
	l, err := Print(d, opts)
	if err != nil {
		return "", err
	}
	return l.String(), nil
}
