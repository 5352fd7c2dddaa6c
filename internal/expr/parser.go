package expr

import (
	"fmt"
	"strings"
)

// Error is a markup parse failure at an absolute source offset.
type Error struct {
	Offset  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Message)
}

// Options configures a parse.
type Options struct {
	// Offset is the absolute source offset of the markup's first byte.
	Offset int
	// Placeholder accepts the completion placeholder inside identifiers.
	Placeholder bool
}

// Tags whose markup is parsed. Other tags keep their markup as a string.
var namedTags = map[string]bool{
	"do":      true,
	"if":      true,
	"elseif":  true,
	"include": true,
	"set":     true,
}

// IsNamedTag reports whether the markup of tag name is parsed.
func IsNamedTag(name string) bool {
	return namedTags[name]
}

// ParseMarkup parses the markup of tag name.
func ParseMarkup(name, markup string, opts Options) (Node, error) {
	switch name {
	case "do":
		return ParseVariable(markup, opts)
	case "if", "elseif":
		return ParseCondition(markup, opts)
	case "include":
		return ParseInclude(markup, opts)
	case "set":
		return ParseSet(markup, opts)
	}
	return nil, &Error{Offset: opts.Offset, Message: fmt.Sprintf("tag %q has no markup grammar", name)}
}

// ParseVariable parses `expression | filter(args) | ...`.
func ParseVariable(markup string, opts Options) (*Variable, error) {
	p, err := newParser(markup, opts)
	if err != nil {
		return nil, err
	}
	v, err := p.parseVariable()
	if err != nil {
		return nil, err
	}
	return v, p.expectEOF()
}

// ParseCondition parses a boolean condition.
func ParseCondition(markup string, opts Options) (Node, error) {
	p, err := newParser(markup, opts)
	if err != nil {
		return nil, err
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	return n, p.expectEOF()
}

// ParseInclude parses `snippet [ignore missing] [with expr] [only]`.
func ParseInclude(markup string, opts Options) (*Include, error) {
	p, err := newParser(markup, opts)
	if err != nil {
		return nil, err
	}
	start := p.peek().start
	snippet, err := p.parseConcatenation()
	if err != nil {
		return nil, err
	}
	inc := &Include{Snippet: snippet}
	if p.peekIdent("ignore") {
		p.next()
		if !p.peekIdent("missing") {
			return nil, p.errorf("expected 'missing' after 'ignore'")
		}
		p.next()
		inc.IgnoreMissing = true
	}
	if p.peekIdent("with") {
		p.next()
		with, err := p.parseConcatenation()
		if err != nil {
			return nil, err
		}
		inc.With = with
	}
	if p.peekIdent("only") {
		p.next()
		inc.Only = true
	}
	inc.Position = Span{start, p.lastEnd}
	return inc, p.expectEOF()
}

// ParseSet parses `name = value`.
func ParseSet(markup string, opts Options) (*Set, error) {
	p, err := newParser(markup, opts)
	if err != nil {
		return nil, err
	}
	name := p.next()
	if name.typ != tokIdent {
		return nil, p.errorAt(name, "expected variable name")
	}
	if !p.peekPunct("=") {
		return nil, p.errorf("expected '='")
	}
	p.next()
	value, err := p.parseVariable()
	if err != nil {
		return nil, err
	}
	set := &Set{Name: name.value, Value: value}
	set.Position = Span{name.start, p.lastEnd}
	return set, p.expectEOF()
}

type parser struct {
	markup  string
	offset  int
	tokens  []token
	pos     int
	lastEnd int
}

func newParser(markup string, opts Options) (*parser, error) {
	tokens, err := newLexer(markup, opts.Offset, opts.Placeholder).tokenize()
	if err != nil {
		return nil, err
	}
	return &parser{markup: markup, offset: opts.Offset, tokens: tokens, lastEnd: opts.Offset}, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(n int) token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.typ != tokEOF {
		p.pos++
		p.lastEnd = t.end
	}
	return t
}

func (p *parser) peekPunct(v string) bool {
	t := p.peek()
	return t.typ == tokPunct && t.value == v
}

func (p *parser) peekIdent(v string) bool {
	t := p.peek()
	return t.typ == tokIdent && t.value == v
}

func (p *parser) expectPunct(v string) error {
	if !p.peekPunct(v) {
		return p.errorf("expected %q", v)
	}
	p.next()
	return nil
}

func (p *parser) expectEOF() error {
	if t := p.peek(); t.typ != tokEOF {
		return p.errorAt(t, fmt.Sprintf("unexpected %q", t.value))
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return p.errorAt(p.peek(), fmt.Sprintf(format, args...))
}

func (p *parser) errorAt(t token, msg string) error {
	if t.typ == tokEOF {
		msg += " at end of markup"
	}
	return &Error{Offset: t.start, Message: msg}
}

func (p *parser) source(start, end int) string {
	return p.markup[start-p.offset : end-p.offset]
}

func (p *parser) parseVariable() (*Variable, error) {
	start := p.peek().start
	e, err := p.parseConcatenation()
	if err != nil {
		return nil, err
	}
	v := &Variable{Expression: e}
	for p.peekPunct("|") {
		f, err := p.parseFilter()
		if err != nil {
			return nil, err
		}
		v.Filters = append(v.Filters, f)
	}
	v.Position = Span{start, p.lastEnd}
	v.RawSource = p.source(start, p.lastEnd)
	return v, nil
}

func (p *parser) parseFilter() (*Filter, error) {
	bar := p.next()
	name := p.next()
	if name.typ != tokIdent {
		return nil, p.errorAt(name, "expected filter name")
	}
	f := &Filter{Name: name.value}
	if p.peekPunct("(") {
		p.next()
		args, err := p.parseArguments(")")
		if err != nil {
			return nil, err
		}
		f.Args = args
	}
	f.Position = Span{bar.start, p.lastEnd}
	return f, nil
}

// parseArguments parses a comma separated list up to and including the
// closing punctuation. Arguments may be named.
func (p *parser) parseArguments(closing string) ([]Node, error) {
	var args []Node
	for !p.peekPunct(closing) {
		if len(args) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
			// trailing comma
			if p.peekPunct(closing) {
				break
			}
		}
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.next()
	return args, nil
}

func (p *parser) parseArgument() (Node, error) {
	t := p.peek()
	sep := p.peekAt(1)
	if (t.typ == tokIdent || t.typ == tokString) && sep.typ == tokPunct && (sep.value == ":" || sep.value == "=") {
		return p.parseNamedArgument()
	}
	return p.parseOr()
}

func (p *parser) parseNamedArgument() (Node, error) {
	t := p.next()
	var name Node
	if t.typ == tokString {
		name = newString(t)
	} else {
		name = &Lookup{base: base{Span{t.start, t.end}}, Name: t.value}
	}
	p.next()
	value, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	return &NamedArgument{base: base{Span{t.start, p.lastEnd}}, Name: name, Value: value}, nil
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peekIdent("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Logical{base: base{Span{left.Pos().Start, p.lastEnd}}, Relation: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peekIdent("and") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Logical{base: base{Span{left.Pos().Start, p.lastEnd}}, Relation: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.peekIdent("not") {
		t := p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Not{base: base{Span{t.start, p.lastEnd}}, Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseConcatenation()
	if err != nil {
		return nil, err
	}
	cmp, ok := p.comparator()
	if !ok {
		return left, nil
	}
	right, err := p.parseConcatenation()
	if err != nil {
		return nil, err
	}
	return &Comparison{base: base{Span{left.Pos().Start, p.lastEnd}}, Comparator: cmp, Left: left, Right: right}, nil
}

// comparator consumes a comparison operator, including the two-word ones.
func (p *parser) comparator() (string, bool) {
	t := p.peek()
	if t.typ == tokPunct {
		switch t.value {
		case "==", "!=", "<", ">", "<=", ">=":
			p.next()
			return t.value, true
		}
		return "", false
	}
	if t.typ != tokIdent {
		return "", false
	}
	follow := p.peekAt(1)
	switch t.value {
	case "in", "matches":
		p.next()
		return t.value, true
	case "is":
		p.next()
		if follow.typ == tokIdent && follow.value == "not" {
			p.next()
			return "is not", true
		}
		return "is", true
	case "not":
		if follow.typ == tokIdent && follow.value == "in" {
			p.next()
			p.next()
			return "not in", true
		}
	case "starts", "ends":
		if follow.typ == tokIdent && follow.value == "with" {
			p.next()
			p.next()
			return t.value + " with", true
		}
	}
	return "", false
}

func (p *parser) parseConcatenation() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peekPunct("~") {
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &Concatenation{base: base{Span{left.Pos().Start, p.lastEnd}}, Start: left, End: right}
	}
	return left, nil
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.peek()
	switch t.typ {
	case tokString:
		p.next()
		return newString(t), nil
	case tokNumber:
		p.next()
		return &Number{base: base{Span{t.start, t.end}}, Value: t.value}, nil
	case tokIdent:
		switch t.value {
		case "true", "false", "null":
			p.next()
			return &Literal{base: base{Span{t.start, t.end}}, Keyword: t.value}, nil
		}
		return p.parseLookupOrCall()
	case tokPunct:
		switch t.value {
		case "(":
			return p.parseParenthesized()
		case "[":
			if p.isIndexLookup() {
				return p.parseLookupOrCall()
			}
			p.next()
			args, err := p.parseArguments("]")
			if err != nil {
				return nil, err
			}
			return &Sequence{base: base{Span{t.start, p.lastEnd}}, Args: args}, nil
		case "{":
			p.next()
			args, err := p.parseArguments("}")
			if err != nil {
				return nil, err
			}
			for _, a := range args {
				if a.Kind() != KindNamedArgument {
					return nil, &Error{Offset: a.Pos().Start, Message: "mapping entries must be key: value pairs"}
				}
			}
			return &Mapping{base: base{Span{t.start, p.lastEnd}}, Args: args}, nil
		}
	}
	return nil, p.errorAt(t, fmt.Sprintf("unexpected %q", t.value))
}

// isIndexLookup reports whether `[` starts `['key']` followed by an access.
func (p *parser) isIndexLookup() bool {
	a, b, c := p.peekAt(1), p.peekAt(2), p.peekAt(3)
	return a.typ == tokString && b.typ == tokPunct && b.value == "]" &&
		c.typ == tokPunct && (c.value == "." || c.value == "[")
}

// parseParenthesized handles ranges `(a..b)` and arrow functions
// `(a, b) => expr`.
func (p *parser) parseParenthesized() (Node, error) {
	open := p.next()
	if p.isArrowAhead() {
		args, err := p.parseArguments(")")
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("=>"); err != nil {
			return nil, err
		}
		body, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		return &ArrowFunction{base: base{Span{open.start, p.lastEnd}}, Args: args, Expression: body}, nil
	}

	start, err := p.parseConcatenation()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(".."); err != nil {
		return nil, err
	}
	end, err := p.parseConcatenation()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return &Range{base: base{Span{open.start, p.lastEnd}}, Start: start, End: end}, nil
}

func (p *parser) isArrowAhead() bool {
	depth := 1
	for i := p.pos; i < len(p.tokens); i++ {
		t := p.tokens[i]
		if t.typ != tokPunct {
			continue
		}
		switch t.value {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				next := p.peekAt(i - p.pos + 1)
				return next.typ == tokPunct && next.value == "=>"
			}
		}
	}
	return false
}

func (p *parser) parseLookupOrCall() (Node, error) {
	start := p.peek()
	l := &Lookup{}
	if start.typ == tokIdent {
		p.next()
		l.Name = start.value
	}
	path := []string{l.Name}
	dotted := l.Name != ""

	for {
		switch {
		case p.peekPunct("."):
			p.next()
			key := p.next()
			if key.typ != tokIdent {
				return nil, p.errorAt(key, "expected property name")
			}
			value := key.value
			if p.peekPunct("?") && p.peek().start == key.end {
				p.next()
				value += "?"
				dotted = false
			}
			l.Lookups = append(l.Lookups, &String{base: base{Span{key.start, p.lastEnd}}, Value: value, Single: true})
			path = append(path, key.value)
		case p.peekPunct("["):
			p.next()
			key, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			l.Lookups = append(l.Lookups, key)
			dotted = false
		case p.peekPunct("(") && dotted:
			p.next()
			args, err := p.parseArguments(")")
			if err != nil {
				return nil, err
			}
			return &Function{base: base{Span{start.start, p.lastEnd}}, Name: strings.Join(path, "."), Args: args}, nil
		default:
			l.Position = Span{start.start, p.lastEnd}
			return l, nil
		}
	}
}

func newString(t token) *String {
	return &String{
		base:   base{Span{t.start, t.end}},
		Value:  t.value[1 : len(t.value)-1],
		Single: t.value[0] == '\'',
	}
}
