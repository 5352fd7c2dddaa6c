package syntax

import (
	"fmt"
	"strings"

	"github.com/gnolang/canvasfmt/internal/expr"
)

// Tokenize turns source into a flat token stream. Whitespace between
// constructs produces no tokens; text tokens exclude their surrounding
// whitespace.
func Tokenize(source string, mode Mode) ([]Token, error) {
	t := &tokenizer{src: source, mode: mode}
	tokens, err := t.scanContent()
	if err != nil {
		return nil, err
	}
	classifyBlocks(tokens)
	return tokens, nil
}

type tokenizer struct {
	src  string
	pos  int
	mode Mode
}

func (t *tokenizer) errorf(offset int, format string, args ...any) error {
	return &SyntaxError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func (t *tokenizer) hasPrefix(p string) bool {
	return strings.HasPrefix(t.src[t.pos:], p)
}

func (t *tokenizer) scanContent() ([]Token, error) {
	var tokens []Token
	for t.pos < len(t.src) {
		tok, ok, err := t.scanConstruct()
		if err != nil {
			return nil, err
		}
		if ok {
			tokens = append(tokens, tok)
			continue
		}
		if text, ok := t.scanText(); ok {
			tokens = append(tokens, text)
		}
	}
	return tokens, nil
}

func (t *tokenizer) scanConstruct() (Token, bool, error) {
	switch {
	case t.hasPrefix("{{"):
		tok, err := t.scanOutput()
		return tok, true, err
	case t.hasPrefix("{%"):
		tok, err := t.scanTag()
		return tok, true, err
	case t.hasPrefix("{#"):
		tok, err := t.scanCanvasComment()
		return tok, true, err
	case t.hasPrefix("<!--"):
		tok, err := t.scanComment()
		return tok, true, err
	case len(t.src)-t.pos >= 9 && strings.EqualFold(t.src[t.pos:t.pos+9], "<!doctype"):
		tok, err := t.scanDoctype()
		return tok, true, err
	case t.hasPrefix("</") && t.isNameStart(t.pos+2):
		tok, err := t.scanCloseTag()
		return tok, true, err
	case t.hasPrefix("<") && t.isNameStart(t.pos+1):
		tok, err := t.scanOpenTag()
		return tok, true, err
	}
	return Token{}, false, nil
}

func (t *tokenizer) isNameStart(i int) bool {
	if i >= len(t.src) {
		return false
	}
	c := t.src[i]
	return isLetter(c) || strings.HasPrefix(t.src[i:], "{{")
}

// atConstruct reports whether a construct starts at the current position.
func (t *tokenizer) atConstruct() bool {
	if t.pos >= len(t.src) {
		return false
	}
	switch t.src[t.pos] {
	case '{':
		return t.hasPrefix("{{") || t.hasPrefix("{%") || t.hasPrefix("{#")
	case '<':
		return t.hasPrefix("<!") || (t.hasPrefix("</") && t.isNameStart(t.pos+2)) || t.isNameStart(t.pos+1)
	}
	return false
}

func (t *tokenizer) scanText() (Token, bool) {
	start := t.pos
	t.pos++
	for t.pos < len(t.src) && !t.atConstruct() {
		t.pos++
	}
	s, e := trimSpan(t.src, start, t.pos)
	if s >= e {
		return Token{}, false
	}
	return Token{Kind: TextNode, Start: s, End: e}, true
}

// findClose returns the offset of closing, skipping quoted strings when
// quoted is set. It returns -1 when closing does not occur.
func (t *tokenizer) findClose(from int, closing string, quoted bool) int {
	if quoted {
		for i := from; i < len(t.src); i++ {
			c := t.src[i]
			if c == '"' || c == '\'' {
				j := strings.IndexByte(t.src[i+1:], c)
				if j < 0 {
					break
				}
				i += j + 1
				continue
			}
			if strings.HasPrefix(t.src[i:], closing) {
				return i
			}
		}
	}
	if i := strings.Index(t.src[from:], closing); i >= 0 {
		return from + i
	}
	return -1
}

// delimited describes a `{{ }}`, `{% %}` or `{# #}` construct.
type delimited struct {
	start, end           int
	innerStart, innerEnd int
	trimStart, trimEnd   bool
}

func (t *tokenizer) scanDelimited(open, closing string, quoted bool) (delimited, error) {
	d := delimited{start: t.pos, innerStart: t.pos + len(open)}
	closeAt := t.findClose(d.innerStart, closing, quoted)
	if closeAt < 0 {
		return d, t.errorf(t.pos, "unterminated %q, expected %q", open, closing)
	}
	d.innerEnd = closeAt
	d.end = closeAt + len(closing)
	if d.innerStart < d.innerEnd && t.src[d.innerStart] == '-' {
		d.trimStart = true
		d.innerStart++
	}
	if d.innerStart < d.innerEnd && t.src[d.innerEnd-1] == '-' {
		d.trimEnd = true
		d.innerEnd--
	}
	t.pos = d.end
	return d, nil
}

func (t *tokenizer) scanOutput() (Token, error) {
	d, err := t.scanDelimited("{{", "}}", true)
	if err != nil {
		return Token{}, err
	}
	tok := Token{
		Kind:      CanvasVariableOutput,
		Start:     d.start,
		End:       d.end,
		TrimStart: d.trimStart,
		TrimEnd:   d.trimEnd,
	}
	ms, me := trimSpan(t.src, d.innerStart, d.innerEnd)
	if ms > me {
		ms = me
	}
	tok.Markup = t.src[ms:me]
	tok.MarkupSpan = Span{ms, me}
	if tok.Markup == "" {
		return tok, nil
	}
	v, err := expr.ParseVariable(tok.Markup, t.exprOptions(ms))
	if err != nil {
		if t.mode == Strict {
			return Token{}, t.markupError(err)
		}
		return tok, nil
	}
	tok.Expr = v
	return tok, nil
}

func (t *tokenizer) exprOptions(offset int) expr.Options {
	return expr.Options{Offset: offset, Placeholder: t.mode == Completion}
}

func (t *tokenizer) markupError(err error) error {
	if perr, ok := err.(*expr.Error); ok {
		return &SyntaxError{Offset: perr.Offset, Message: perr.Message}
	}
	return err
}

func (t *tokenizer) scanTag() (Token, error) {
	d, err := t.scanDelimited("{%", "%}", true)
	if err != nil {
		return Token{}, err
	}
	nameStart, _ := trimSpan(t.src, d.innerStart, d.innerEnd)
	nameEnd := nameStart
	for nameEnd < d.innerEnd && isIdentChar(t.src[nameEnd]) {
		nameEnd++
	}
	name := t.src[nameStart:nameEnd]
	if name == "" {
		return Token{}, t.errorf(d.start, "missing tag name")
	}
	ms, me := trimSpan(t.src, nameEnd, d.innerEnd)
	if ms > me {
		ms = me
	}

	tok := Token{
		Kind:       CanvasTag,
		Start:      d.start,
		End:        d.end,
		Name:       name,
		Markup:     t.src[ms:me],
		MarkupSpan: Span{ms, me},
		TrimStart:  d.trimStart,
		TrimEnd:    d.trimEnd,
	}

	switch {
	case name == "verbatim":
		return t.scanVerbatim(tok)
	case strings.HasPrefix(name, "end") && len(name) > 3:
		tok.Kind = CanvasTagClose
		tok.Name = name[3:]
		tok.Markup = ""
		return tok, nil
	case name == "else":
		tok.Markup = ""
		return tok, nil
	}

	if !expr.IsNamedTag(name) || tok.Markup == "" {
		return tok, nil
	}
	// `{% set name %}...{% endset %}` captures a body and has no value
	if name == "set" && !strings.Contains(tok.Markup, "=") {
		return tok, nil
	}
	n, err := expr.ParseMarkup(name, tok.Markup, t.exprOptions(ms))
	if err != nil {
		if t.mode == Strict {
			return Token{}, t.markupError(err)
		}
		return tok, nil
	}
	tok.Expr = n
	return tok, nil
}

func (t *tokenizer) scanVerbatim(tok Token) (Token, error) {
	loc := verbatimEnd.FindStringSubmatchIndex(t.src[tok.End:])
	if loc == nil {
		return Token{}, t.errorf(tok.Start, "unclosed verbatim tag, expected {%% endverbatim %%}")
	}
	closeStart := tok.End + loc[0]
	closeEnd := tok.End + loc[1]

	tok.Kind = CanvasRawTag
	tok.RawKind = RawVerbatim
	tok.BlockStart = Span{tok.Start, tok.End}
	tok.BlockEnd = Span{closeStart, closeEnd}
	tok.Body = t.src[tok.End:closeStart]
	tok.BodySpan = Span{tok.End, closeStart}
	tok.DelimiterTrimStart = loc[3] > loc[2]
	tok.DelimiterTrimEnd = loc[5] > loc[4]
	tok.End = closeEnd
	t.pos = closeEnd
	return tok, nil
}

func (t *tokenizer) scanCanvasComment() (Token, error) {
	d, err := t.scanDelimited("{#", "#}", false)
	if err != nil {
		return Token{}, err
	}
	ms, me := trimSpan(t.src, d.innerStart, d.innerEnd)
	if ms > me {
		ms = me
	}
	return Token{
		Kind:       CanvasTag,
		Start:      d.start,
		End:        d.end,
		Name:       "#",
		Markup:     t.src[ms:me],
		MarkupSpan: Span{ms, me},
		Body:       t.src[d.innerStart:d.innerEnd],
		BodySpan:   Span{d.innerStart, d.innerEnd},
		TrimStart:  d.trimStart,
		TrimEnd:    d.trimEnd,
	}, nil
}

func (t *tokenizer) scanComment() (Token, error) {
	start := t.pos
	end := strings.Index(t.src[start+4:], "-->")
	if end < 0 {
		return Token{}, t.errorf(start, "unterminated comment, expected \"-->\"")
	}
	bodyEnd := start + 4 + end
	t.pos = bodyEnd + 3
	return Token{
		Kind:     HtmlComment,
		Start:    start,
		End:      t.pos,
		Body:     t.src[start+4 : bodyEnd],
		BodySpan: Span{start + 4, bodyEnd},
	}, nil
}

func (t *tokenizer) scanDoctype() (Token, error) {
	start := t.pos
	end := strings.IndexByte(t.src[start:], '>')
	if end < 0 {
		return Token{}, t.errorf(start, "unterminated doctype")
	}
	t.pos = start + end + 1
	return Token{
		Kind:    HtmlDoctype,
		Start:   start,
		End:     t.pos,
		Doctype: strings.TrimSpace(t.src[start+9 : start+end]),
	}, nil
}

func (t *tokenizer) scanCloseTag() (Token, error) {
	start := t.pos
	t.pos += 2
	nameStart := t.pos
	parts, err := t.scanName(isTagNameChar)
	if err != nil {
		return Token{}, err
	}
	nameEnd := t.pos
	t.skipSpace()
	if !t.hasPrefix(">") {
		return Token{}, t.errorf(t.pos, "expected '>' to end closing tag </%s", t.src[nameStart:nameEnd])
	}
	t.pos++
	return Token{
		Kind:      HtmlTagClose,
		Start:     start,
		End:       t.pos,
		Name:      t.src[nameStart:nameEnd],
		NameParts: parts,
	}, nil
}

// scanName scans a compound name made of text runs and outputs.
func (t *tokenizer) scanName(isNameChar func(byte) bool) ([]Token, error) {
	var parts []Token
	for t.pos < len(t.src) {
		if t.hasPrefix("{{") {
			out, err := t.scanOutput()
			if err != nil {
				return nil, err
			}
			parts = append(parts, out)
			continue
		}
		start := t.pos
		for t.pos < len(t.src) && isNameChar(t.src[t.pos]) && !t.hasPrefix("{{") && !t.hasPrefix("{%") {
			t.pos++
		}
		if t.pos == start {
			break
		}
		parts = append(parts, Token{Kind: TextNode, Start: start, End: t.pos})
	}
	return parts, nil
}

func (t *tokenizer) scanOpenTag() (Token, error) {
	start := t.pos
	t.pos++
	nameStart := t.pos
	parts, err := t.scanName(isTagNameChar)
	if err != nil {
		return Token{}, err
	}
	name := t.src[nameStart:t.pos]
	attrs, selfClosing, err := t.scanAttributes(start)
	if err != nil {
		return Token{}, err
	}

	tok := Token{
		Kind:       HtmlTagOpen,
		Start:      start,
		End:        t.pos,
		Name:       name,
		NameParts:  parts,
		Attributes: attrs,
	}
	lower := strings.ToLower(name)
	switch {
	case selfClosing:
		tok.Kind = HtmlSelfClosingElement
	case voidElements[lower]:
		tok.Kind = HtmlVoidElement
	default:
		if kind, ok := rawElements[lower]; ok {
			return t.scanRawElement(tok, lower, kind)
		}
	}
	return tok, nil
}

func (t *tokenizer) scanRawElement(tok Token, name string, kind RawKind) (Token, error) {
	loc := rawCloseTags[name].FindStringIndex(t.src[tok.End:])
	if loc == nil {
		return Token{}, t.errorf(tok.Start, "unclosed <%s>, expected </%s>", tok.Name, tok.Name)
	}
	closeStart := tok.End + loc[0]
	closeEnd := tok.End + loc[1]

	if name == "script" {
		kind = scriptKind(t.src, tok.Attributes)
	}
	tok.Kind = HtmlRawTag
	tok.RawKind = kind
	tok.BlockStart = Span{tok.Start, tok.End}
	tok.BlockEnd = Span{closeStart, closeEnd}
	tok.Body = t.src[tok.End:closeStart]
	tok.BodySpan = Span{tok.End, closeStart}
	tok.End = closeEnd
	t.pos = closeEnd
	return tok, nil
}

// scanAttributes scans up to and including the end of an opening tag.
func (t *tokenizer) scanAttributes(tagStart int) ([]Token, bool, error) {
	var attrs []Token
	for {
		t.skipSpace()
		if t.pos >= len(t.src) {
			return nil, false, t.errorf(tagStart, "unterminated tag")
		}
		switch {
		case t.hasPrefix("/>"):
			t.pos += 2
			return attrs, true, nil
		case t.hasPrefix(">"):
			t.pos++
			return attrs, false, nil
		case t.hasPrefix("{{"):
			tok, err := t.scanOutput()
			if err != nil {
				return nil, false, err
			}
			attrs = append(attrs, tok)
		case t.hasPrefix("{%"):
			tok, err := t.scanTag()
			if err != nil {
				return nil, false, err
			}
			attrs = append(attrs, tok)
		case t.hasPrefix("{#"):
			tok, err := t.scanCanvasComment()
			if err != nil {
				return nil, false, err
			}
			attrs = append(attrs, tok)
		default:
			attr, err := t.scanAttribute()
			if err != nil {
				return nil, false, err
			}
			attrs = append(attrs, attr)
		}
	}
}

func (t *tokenizer) scanAttribute() (Token, error) {
	start := t.pos
	parts, err := t.scanName(isAttrNameChar)
	if err != nil {
		return Token{}, err
	}
	if len(parts) == 0 {
		return Token{}, t.errorf(t.pos, "unexpected %q in tag", t.src[t.pos])
	}
	attr := Token{
		Kind:      AttrEmpty,
		Start:     start,
		End:       t.pos,
		Name:      t.src[start:t.pos],
		NameParts: parts,
	}

	save := t.pos
	t.skipSpace()
	if !t.hasPrefix("=") {
		t.pos = save
		return attr, nil
	}
	t.pos++
	t.skipSpace()
	if t.pos >= len(t.src) {
		return Token{}, t.errorf(start, "missing attribute value")
	}

	switch q := t.src[t.pos]; q {
	case '"', '\'':
		t.pos++
		valueStart := t.pos
		value, err := t.scanQuotedValue(q)
		if err != nil {
			return Token{}, err
		}
		attr.Kind = AttrDoubleQuoted
		if q == '\'' {
			attr.Kind = AttrSingleQuoted
		}
		attr.Value = value
		attr.ValueSpan = Span{valueStart, t.pos}
		t.pos++
	default:
		valueStart := t.pos
		value, err := t.scanUnquotedValue()
		if err != nil {
			return Token{}, err
		}
		if t.pos == valueStart {
			return Token{}, t.errorf(t.pos, "missing attribute value")
		}
		attr.Kind = AttrUnquoted
		attr.Value = value
		attr.ValueSpan = Span{valueStart, t.pos}
	}
	attr.End = t.pos
	return attr, nil
}

// scanQuotedValue scans value parts up to, not including, the closing quote.
func (t *tokenizer) scanQuotedValue(quote byte) ([]Token, error) {
	start := t.pos
	var parts []Token
	for {
		if t.pos >= len(t.src) {
			return nil, t.errorf(start-1, "unterminated attribute value")
		}
		if t.src[t.pos] == quote {
			return parts, nil
		}
		tok, ok, err := t.scanValueConstruct()
		if err != nil {
			return nil, err
		}
		if ok {
			parts = append(parts, tok)
			continue
		}
		textStart := t.pos
		for t.pos < len(t.src) && t.src[t.pos] != quote && !t.atCanvasConstruct() {
			t.pos++
		}
		parts = append(parts, Token{Kind: TextNode, Start: textStart, End: t.pos})
	}
}

func (t *tokenizer) scanUnquotedValue() ([]Token, error) {
	var parts []Token
	for t.pos < len(t.src) && !isSpace(t.src[t.pos]) && t.src[t.pos] != '>' {
		tok, ok, err := t.scanValueConstruct()
		if err != nil {
			return nil, err
		}
		if ok {
			parts = append(parts, tok)
			continue
		}
		textStart := t.pos
		for t.pos < len(t.src) && !isSpace(t.src[t.pos]) && t.src[t.pos] != '>' && !t.atCanvasConstruct() {
			t.pos++
		}
		parts = append(parts, Token{Kind: TextNode, Start: textStart, End: t.pos})
	}
	return parts, nil
}

func (t *tokenizer) atCanvasConstruct() bool {
	return t.hasPrefix("{{") || t.hasPrefix("{%") || t.hasPrefix("{#")
}

func (t *tokenizer) scanValueConstruct() (Token, bool, error) {
	switch {
	case t.hasPrefix("{{"):
		tok, err := t.scanOutput()
		return tok, true, err
	case t.hasPrefix("{%"):
		tok, err := t.scanTag()
		return tok, true, err
	case t.hasPrefix("{#"):
		tok, err := t.scanCanvasComment()
		return tok, true, err
	}
	return Token{}, false, nil
}

func (t *tokenizer) skipSpace() {
	for t.pos < len(t.src) && isSpace(t.src[t.pos]) {
		t.pos++
	}
}

// classifyBlocks decides which canvas tags open a body. Tags that always
// own a body are opened; others are opened only when an unpaired
// `{% endname %}` follows them in the same list.
func classifyBlocks(tokens []Token) {
	pending := make(map[string]int)
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := &tokens[i]
		switch tok.Kind {
		case CanvasTagClose:
			pending[tok.Name]++
		case CanvasTag:
			switch {
			case tok.Name == "#" || IsBranchName(tok.Name):
			case tok.Name == "set" && strings.Contains(tok.Markup, "="):
			case alwaysBlockTags[tok.Name]:
				tok.Kind = CanvasTagOpen
				if pending[tok.Name] > 0 {
					pending[tok.Name]--
				}
			case pending[tok.Name] > 0:
				tok.Kind = CanvasTagOpen
				pending[tok.Name]--
			}
		}
		if len(tok.Attributes) > 0 {
			classifyBlocks(tok.Attributes)
			for j := range tok.Attributes {
				classifyBlocks(tok.Attributes[j].Value)
			}
		}
	}
}

func trimSpan(s string, start, end int) (int, int) {
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return start, end
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isTagNameChar(c byte) bool {
	return isIdentChar(c) || c == '-' || c == ':' || c == '.'
}

func isAttrNameChar(c byte) bool {
	switch c {
	case '=', '>', '/', '"', '\'', '<':
		return false
	}
	return !isSpace(c)
}
