// Package syntax tokenizes Canvas templates into a flat stream of typed,
// positioned concrete tokens.
package syntax

import (
	"fmt"
	"strings"

	"github.com/gnolang/canvasfmt/internal/expr"
)

// Kind discriminates tokens.
type Kind int

const (
	HtmlDoctype Kind = iota
	HtmlComment
	HtmlRawTag
	HtmlVoidElement
	HtmlSelfClosingElement
	HtmlTagOpen
	HtmlTagClose
	CanvasVariableOutput
	CanvasRawTag
	CanvasTag
	CanvasTagOpen
	CanvasTagClose
	AttrSingleQuoted
	AttrDoubleQuoted
	AttrUnquoted
	AttrEmpty
	TextNode
)

var kindNames = [...]string{
	HtmlDoctype:            "HtmlDoctype",
	HtmlComment:            "HtmlComment",
	HtmlRawTag:             "HtmlRawTag",
	HtmlVoidElement:        "HtmlVoidElement",
	HtmlSelfClosingElement: "HtmlSelfClosingElement",
	HtmlTagOpen:            "HtmlTagOpen",
	HtmlTagClose:           "HtmlTagClose",
	CanvasVariableOutput:   "CanvasVariableOutput",
	CanvasRawTag:           "CanvasRawTag",
	CanvasTag:              "CanvasTag",
	CanvasTagOpen:          "CanvasTagOpen",
	CanvasTagClose:         "CanvasTagClose",
	AttrSingleQuoted:       "AttrSingleQuoted",
	AttrDoubleQuoted:       "AttrDoubleQuoted",
	AttrUnquoted:           "AttrUnquoted",
	AttrEmpty:              "AttrEmpty",
	TextNode:               "TextNode",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Span is a byte range in the source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Token is a concrete syntax node. Fields beyond Kind and the span are only
// set for the kinds that carry them.
type Token struct {
	Kind  Kind
	Start int
	End   int

	// Name is the tag name of canvas tags and raw tags, or the text of a
	// simple HTML name.
	Name string
	// NameParts holds TextNode and CanvasVariableOutput parts of HTML tag
	// and attribute names.
	NameParts []Token
	// Attributes of HTML tags, including canvas tags and outputs placed in
	// the attribute list.
	Attributes []Token
	// Value parts of quoted and unquoted attributes.
	Value []Token
	// ValueSpan is the span of an attribute value without quotes.
	ValueSpan Span

	// Markup is the trimmed markup of canvas tags and outputs.
	Markup string
	// MarkupSpan locates Markup in the source.
	MarkupSpan Span
	// Expr is the parsed markup, nil when the markup is kept as a string.
	Expr expr.Node

	// Body of comments and raw tags.
	Body     string
	BodySpan Span
	// RawKind classifies the body of raw tags.
	RawKind RawKind

	// BlockStart and BlockEnd are the opening and closing delimiters of raw
	// tags.
	BlockStart Span
	BlockEnd   Span

	TrimStart          bool
	TrimEnd            bool
	DelimiterTrimStart bool
	DelimiterTrimEnd   bool

	// Doctype holds the text after `<!doctype`.
	Doctype string
}

// Span returns the token's source range.
func (t *Token) Span() Span {
	return Span{t.Start, t.End}
}

// HTMLName renders a compound HTML name the way it was written.
func (t *Token) HTMLName(source string) string {
	if len(t.NameParts) == 0 {
		return t.Name
	}
	var sb strings.Builder
	for _, p := range t.NameParts {
		sb.WriteString(source[p.Start:p.End])
	}
	return sb.String()
}

// RawKind classifies the body of raw tags.
type RawKind int

const (
	RawText RawKind = iota
	RawJavaScript
	RawCSS
	RawJSON
	RawVerbatim
)

func (k RawKind) String() string {
	switch k {
	case RawJavaScript:
		return "javascript"
	case RawCSS:
		return "css"
	case RawJSON:
		return "json"
	case RawVerbatim:
		return "verbatim"
	}
	return "text"
}

// Mode selects the grammar variant.
type Mode int

const (
	// Tolerant falls back to raw markup when tag markup does not parse.
	Tolerant Mode = iota
	// Strict reports markup that does not parse as a syntax error.
	Strict
	// Completion is tolerant, accepts the completion placeholder in
	// identifiers and leaves unclosed constructs open at end of input.
	Completion
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Completion:
		return "completion"
	}
	return "tolerant"
}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "tolerant":
		return Tolerant, nil
	case "strict":
		return Strict, nil
	case "completion":
		return Completion, nil
	}
	return Tolerant, fmt.Errorf("unknown parse mode %q", s)
}

// SyntaxError reports input that cannot be tokenized.
type SyntaxError struct {
	Message string
	Offset  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}
