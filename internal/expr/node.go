// Package expr defines the expression sub-grammar used inside Canvas tag
// markup and output tags, together with its lexer and parser.
package expr

// Kind discriminates expression nodes.
type Kind int

const (
	KindVariable Kind = iota
	KindFilter
	KindNamedArgument
	KindString
	KindNumber
	KindLiteral
	KindRange
	KindSequence
	KindMapping
	KindFunction
	KindArrowFunction
	KindComparison
	KindConcatenation
	KindLookup
	KindLogical
	KindNot
	KindInclude
	KindSet
)

var kindNames = [...]string{
	KindVariable:      "CanvasVariable",
	KindFilter:        "CanvasFilter",
	KindNamedArgument: "NamedArgument",
	KindString:        "String",
	KindNumber:        "Number",
	KindLiteral:       "CanvasLiteral",
	KindRange:         "Range",
	KindSequence:      "Sequence",
	KindMapping:       "Mapping",
	KindFunction:      "Function",
	KindArrowFunction: "ArrowFunction",
	KindComparison:    "Comparison",
	KindConcatenation: "Concatenation",
	KindLookup:        "VariableLookup",
	KindLogical:       "LogicalExpression",
	KindNot:           "Not",
	KindInclude:       "IncludeMarkup",
	KindSet:           "SetMarkup",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Span is a byte range in the template source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Node is an expression node.
type Node interface {
	Kind() Kind
	Pos() Span
}

type base struct {
	Position Span `json:"position"`
}

func (b base) Pos() Span { return b.Position }

// Variable is an expression followed by a filter chain.
type Variable struct {
	base
	Expression Node      `json:"expression"`
	Filters    []*Filter `json:"filters"`
	RawSource  string    `json:"rawSource"`
}

// Filter is `| name(args)`.
type Filter struct {
	base
	Name string `json:"name"`
	Args []Node `json:"args"`
}

// NamedArgument is `name: value` (also written `name = value`).
type NamedArgument struct {
	base
	Name  Node `json:"name"`
	Value Node `json:"value"`
}

// String is a quoted string literal.
type String struct {
	base
	Value  string `json:"value"`
	Single bool   `json:"single"`
}

// Number keeps the literal as written.
type Number struct {
	base
	Value string `json:"value"`
}

// Literal is one of true, false or null.
type Literal struct {
	base
	Keyword string `json:"keyword"`
}

// Range is `(start..end)`.
type Range struct {
	base
	Start Node `json:"start"`
	End   Node `json:"end"`
}

// Sequence is `[a, b]`.
type Sequence struct {
	base
	Args []Node `json:"args"`
}

// Mapping is `{k: v}`; Args are NamedArguments.
type Mapping struct {
	base
	Args []Node `json:"args"`
}

// Function is a call `name(args)`. Name may be a dotted path.
type Function struct {
	base
	Name string `json:"name"`
	Args []Node `json:"args"`
}

// ArrowFunction is `(a, b) => expression`.
type ArrowFunction struct {
	base
	Args       []Node `json:"args"`
	Expression Node   `json:"expression"`
}

// Comparison is `left comparator right`.
type Comparison struct {
	base
	Comparator string `json:"comparator"`
	Left       Node   `json:"left"`
	Right      Node   `json:"right"`
}

// Concatenation is `start ~ end`.
type Concatenation struct {
	base
	Start Node `json:"start"`
	End   Node `json:"end"`
}

// Lookup is a variable with property and index accesses. Name is empty
// when the lookup starts with an index, as in `['key']`.
type Lookup struct {
	base
	Name    string `json:"name"`
	Lookups []Node `json:"lookups"`
}

// Logical is `left and right` or `left or right`.
type Logical struct {
	base
	Relation string `json:"relation"`
	Left     Node   `json:"left"`
	Right    Node   `json:"right"`
}

// Not is `not operand`.
type Not struct {
	base
	Operand Node `json:"operand"`
}

// Include is the markup of `{% include %}`.
type Include struct {
	base
	Snippet       Node `json:"snippet"`
	IgnoreMissing bool `json:"ignoreMissing"`
	With          Node `json:"with,omitempty"`
	Only          bool `json:"only"`
}

// Set is the markup of `{% set name = value %}`.
type Set struct {
	base
	Name  string    `json:"name"`
	Value *Variable `json:"value"`
}

func (*Variable) Kind() Kind      { return KindVariable }
func (*Filter) Kind() Kind        { return KindFilter }
func (*NamedArgument) Kind() Kind { return KindNamedArgument }
func (*String) Kind() Kind        { return KindString }
func (*Number) Kind() Kind        { return KindNumber }
func (*Literal) Kind() Kind       { return KindLiteral }
func (*Range) Kind() Kind         { return KindRange }
func (*Sequence) Kind() Kind      { return KindSequence }
func (*Mapping) Kind() Kind       { return KindMapping }
func (*Function) Kind() Kind      { return KindFunction }
func (*ArrowFunction) Kind() Kind { return KindArrowFunction }
func (*Comparison) Kind() Kind    { return KindComparison }
func (*Concatenation) Kind() Kind { return KindConcatenation }
func (*Lookup) Kind() Kind        { return KindLookup }
func (*Logical) Kind() Kind       { return KindLogical }
func (*Not) Kind() Kind           { return KindNot }
func (*Include) Kind() Kind       { return KindInclude }
func (*Set) Kind() Kind           { return KindSet }

// HasFilters reports whether n is a variable with a filter chain.
func HasFilters(n Node) bool {
	v, ok := n.(*Variable)
	return ok && len(v.Filters) > 0
}
