package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/canvasfmt/internal/expr"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeDocumentShape(t *testing.T) {
	t.Parallel()

	src := `<!DOCTYPE html>
<!-- note -->
<div class="a {{ b }}" hidden>
  hello {{ name | upper }}
  <br>
  <img src="x" />
</div>`
	tokens, err := Tokenize(src, Tolerant)
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		HtmlDoctype,
		HtmlComment,
		HtmlTagOpen,
		TextNode,
		CanvasVariableOutput,
		HtmlVoidElement,
		HtmlSelfClosingElement,
		HtmlTagClose,
	}, kinds(tokens))

	assert.Equal(t, "html", tokens[0].Doctype)
	assert.Equal(t, " note ", tokens[1].Body)

	div := tokens[2]
	assert.Equal(t, "div", div.Name)
	require.Len(t, div.Attributes, 2)
	assert.Equal(t, AttrDoubleQuoted, div.Attributes[0].Kind)
	assert.Equal(t, "class", div.Attributes[0].HTMLName(src))
	assert.Equal(t, []Kind{TextNode, CanvasVariableOutput}, kinds(div.Attributes[0].Value))
	assert.Equal(t, AttrEmpty, div.Attributes[1].Kind)

	assert.Equal(t, "hello", src[tokens[3].Start:tokens[3].End])
	assert.Equal(t, "name | upper", tokens[4].Markup)
	require.NotNil(t, tokens[4].Expr)
}

func TestTokenizeTextIsTrimmed(t *testing.T) {
	t.Parallel()

	tokens, err := Tokenize("  \n hello world \n  ", Tolerant)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, Span{4, 15}, tokens[0].Span())

	tokens, err = Tokenize(" \n\t ", Tolerant)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTokenizeCanvasTags(t *testing.T) {
	t.Parallel()

	src := `{%- if a -%}x{% elseif b %}y{% else %}z{% endif %}{% include 'h' %}{# c #}`
	tokens, err := Tokenize(src, Tolerant)
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		CanvasTagOpen, TextNode, CanvasTag, TextNode, CanvasTag, TextNode, CanvasTagClose, CanvasTag, CanvasTag,
	}, kinds(tokens))

	assert.True(t, tokens[0].TrimStart)
	assert.True(t, tokens[0].TrimEnd)
	assert.Equal(t, "if", tokens[0].Name)
	assert.Equal(t, "a", tokens[0].Markup)
	assert.NotNil(t, tokens[0].Expr)

	assert.Equal(t, "elseif", tokens[2].Name)
	assert.Equal(t, "else", tokens[4].Name)
	assert.Equal(t, "if", tokens[6].Name)

	inc, ok := tokens[7].Expr.(*expr.Include)
	require.True(t, ok)
	assert.Equal(t, "h", inc.Snippet.(*expr.String).Value)

	assert.Equal(t, "#", tokens[8].Name)
	assert.Equal(t, "c", tokens[8].Markup)
}

func TestTokenizeOptionalBlocks(t *testing.T) {
	t.Parallel()

	src := `{% block a %}{% block b %}{% endblock %}{% set x = 1 %}{% set y %}v{% endset %}`
	tokens, err := Tokenize(src, Tolerant)
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		CanvasTag, CanvasTagOpen, CanvasTagClose, CanvasTag, CanvasTagOpen, TextNode, CanvasTagClose,
	}, kinds(tokens))
	assert.IsType(t, &expr.Set{}, tokens[3].Expr)
	assert.Nil(t, tokens[4].Expr)
}

func TestTokenizeRawTags(t *testing.T) {
	t.Parallel()

	src := "<script type=\"application/json\">{\"a\": \"</div>\"}</script>" +
		"<style>a{}</style>" +
		"{% verbatim -%} {{ x }} {%- endverbatim %}"
	tokens, err := Tokenize(src, Tolerant)
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	assert.Equal(t, HtmlRawTag, tokens[0].Kind)
	assert.Equal(t, RawJSON, tokens[0].RawKind)
	assert.Equal(t, `{"a": "</div>"}`, tokens[0].Body)

	assert.Equal(t, RawCSS, tokens[1].RawKind)

	v := tokens[2]
	assert.Equal(t, CanvasRawTag, v.Kind)
	assert.Equal(t, RawVerbatim, v.RawKind)
	assert.Equal(t, " {{ x }} ", v.Body)
	assert.True(t, v.TrimEnd)
	assert.True(t, v.DelimiterTrimStart)
	assert.False(t, v.DelimiterTrimEnd)
	assert.Equal(t, len(src), v.End)
}

func TestTokenizeCompoundNames(t *testing.T) {
	t.Parallel()

	src := `<h{{ level }} data-{{ k }}={{ v }}>x</h{{ level }}>`
	tokens, err := Tokenize(src, Tolerant)
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	open := tokens[0]
	assert.Equal(t, []Kind{TextNode, CanvasVariableOutput}, kinds(open.NameParts))
	require.Len(t, open.Attributes, 1)
	attr := open.Attributes[0]
	assert.Equal(t, AttrUnquoted, attr.Kind)
	assert.Equal(t, "data-{{ k }}", attr.HTMLName(src))
	assert.Equal(t, []Kind{CanvasVariableOutput}, kinds(attr.Value))

	assert.Equal(t, HtmlTagClose, tokens[2].Kind)
	assert.Equal(t, "h{{ level }}", tokens[2].HTMLName(src))
}

func TestTokenizeTagsInAttributes(t *testing.T) {
	t.Parallel()

	src := `<a {% if x %}href="{% if y %}1{% endif %}"{% endif %}>`
	tokens, err := Tokenize(src, Tolerant)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	attrs := tokens[0].Attributes
	assert.Equal(t, []Kind{CanvasTagOpen, AttrDoubleQuoted, CanvasTagClose}, kinds(attrs))
	assert.Equal(t, []Kind{CanvasTagOpen, TextNode, CanvasTagClose}, kinds(attrs[1].Value))
}

func TestTokenizeModes(t *testing.T) {
	t.Parallel()

	src := "{{ a | }}"
	tokens, err := Tokenize(src, Tolerant)
	require.NoError(t, err)
	assert.Nil(t, tokens[0].Expr)
	assert.Equal(t, "a |", tokens[0].Markup)

	_, err = Tokenize(src, Strict)
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)

	tokens, err = Tokenize("{{ product.ti"+expr.Placeholder+" }}", Completion)
	require.NoError(t, err)
	assert.NotNil(t, tokens[0].Expr)
}

func TestTokenizeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"unterminated output", "{{ a"},
		{"unterminated tag", "{% if a"},
		{"unterminated comment", "<!-- x"},
		{"unterminated element", `<div class="x`},
		{"unclosed script", "<script>x"},
		{"unclosed verbatim", "{% verbatim %}x"},
		{"missing tag name", "{% %}"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for _, mode := range []Mode{Tolerant, Strict, Completion} {
				_, err := Tokenize(tt.src, mode)
				var serr *SyntaxError
				assert.ErrorAs(t, err, &serr, mode.String())
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, m := range []Mode{Tolerant, Strict, Completion} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("lenient")
	assert.Error(t, err)
}
