package whitespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/augment"
	"github.com/gnolang/canvasfmt/internal/syntax"
)

func analyze(t *testing.T, src string, mode Mode) (*ast.Tree, *Info) {
	t.Helper()
	tokens, err := syntax.Tokenize(src, syntax.Tolerant)
	require.NoError(t, err)
	tree, err := ast.Build(src, tokens, syntax.Tolerant)
	require.NoError(t, err)
	return tree, Analyze(tree, augment.Build(tree), mode)
}

// find returns the first node, in source order, whose source text starts
// with prefix and has the given kind.
func find(t *testing.T, tree *ast.Tree, kind ast.Kind, prefix string) ast.NodeID {
	t.Helper()
	found := ast.NoNode
	tree.Walk(tree.Root, func(id, _ ast.NodeID, _ ast.Slot) bool {
		if found != ast.NoNode {
			return false
		}
		n := tree.Node(id)
		text := tree.SourceText(id)
		if n.Kind == kind && len(text) >= len(prefix) && text[:len(prefix)] == prefix {
			found = id
			return false
		}
		return true
	})
	require.NotEqual(t, ast.NoNode, found, "no %s starting with %q", kind, prefix)
	return found
}

func TestDisplayFromComment(t *testing.T) {
	t.Parallel()

	tree, info := analyze(t, `<div><!-- display: block --><span>x</span><span>y</span></div>`, CSS)
	spans := tree.Node(find(t, tree, ast.HtmlElement, "<div")).Children
	require.Len(t, spans, 3)
	assert.Equal(t, "block", info.Of(spans[1]).Display)
	assert.Equal(t, "inline", info.Of(spans[2]).Display)
}

func TestWhiteSpaceFromComment(t *testing.T) {
	t.Parallel()

	tree, info := analyze(t, `<!-- white-space: pre --><div> x </div>`, CSS)
	div := find(t, tree, ast.HtmlElement, "<div")
	assert.Equal(t, "pre", info.Of(div).WhiteSpace)
	assert.True(t, info.Of(div).IsIndentationSensitive)
}

func TestDisplayModes(t *testing.T) {
	t.Parallel()

	src := `<div><span>x</span></div>{% if a %}{% endif %}{% set b = 1 %}{% block c %}{% endblock %}`
	tests := []struct {
		mode Mode
		div  string
		span string
	}{
		{CSS, "block", "inline"},
		{Strict, "inline", "inline"},
		{Ignore, "block", "block"},
	}
	for _, tt := range tests {
		tree, info := analyze(t, src, tt.mode)
		assert.Equal(t, tt.div, info.Of(find(t, tree, ast.HtmlElement, "<div")).Display, tt.mode)
		assert.Equal(t, tt.span, info.Of(find(t, tree, ast.HtmlElement, "<span")).Display, tt.mode)
		assert.Equal(t, "inline", info.Of(find(t, tree, ast.CanvasTag, "{% if")).Display)
		assert.Equal(t, "none", info.Of(find(t, tree, ast.CanvasTag, "{% set")).Display)
		assert.Equal(t, "block", info.Of(find(t, tree, ast.CanvasTag, "{% block")).Display)
	}
}

func TestInlineSiblingSensitivity(t *testing.T) {
	t.Parallel()

	tree, info := analyze(t, `<div><span>a</span> <b>c</b></div>`, CSS)
	span := find(t, tree, ast.HtmlElement, "<span")
	b := find(t, tree, ast.HtmlElement, "<b")

	assert.False(t, info.Of(span).IsLeadingWhitespaceSensitive)
	assert.True(t, info.Of(span).IsTrailingWhitespaceSensitive)
	assert.True(t, info.Of(span).HasTrailingWhitespace)
	assert.True(t, info.Of(b).IsLeadingWhitespaceSensitive)
	assert.False(t, info.Of(b).IsTrailingWhitespaceSensitive)

	a := find(t, tree, ast.TextNode, "a")
	assert.True(t, info.Of(a).IsLeadingWhitespaceSensitive)
	assert.True(t, info.Of(a).IsTrailingWhitespaceSensitive)
	assert.False(t, info.Of(a).HasLeadingWhitespace)
}

func TestBlockNeighborsAreNotSensitive(t *testing.T) {
	t.Parallel()

	tree, info := analyze(t, `<span>a</span><div>b</div>`, CSS)
	span := find(t, tree, ast.HtmlElement, "<span")
	assert.False(t, info.Of(span).IsTrailingWhitespaceSensitive)
	assert.False(t, info.Of(span).IsLeadingWhitespaceSensitive)
}

func TestTrimMarkers(t *testing.T) {
	t.Parallel()

	tree, info := analyze(t, `<span>{{ a -}} b {{- c }}</span>`, CSS)
	a := find(t, tree, ast.CanvasVariableOutput, "{{ a")
	b := find(t, tree, ast.TextNode, "b")
	c := find(t, tree, ast.CanvasVariableOutput, "{{- c")

	assert.True(t, info.TrimsOuterRight(a))
	assert.False(t, info.Of(a).IsTrailingWhitespaceSensitive)
	assert.False(t, info.Of(b).IsLeadingWhitespaceSensitive)
	assert.False(t, info.Of(b).IsTrailingWhitespaceSensitive)
	assert.True(t, info.TrimsOuterLeft(c))
	assert.False(t, info.Of(c).IsLeadingWhitespaceSensitive)
}

func TestPreIsSensitive(t *testing.T) {
	t.Parallel()

	tree, info := analyze(t, `<pre> x </pre>`, CSS)
	x := find(t, tree, ast.TextNode, "x")
	assert.True(t, info.Of(x).IsLeadingWhitespaceSensitive)
	assert.True(t, info.Of(x).IsTrailingWhitespaceSensitive)
	assert.True(t, info.Of(find(t, tree, ast.HtmlElement, "<pre")).IsWhitespaceSensitive)
}

func TestBranchDelegation(t *testing.T) {
	t.Parallel()

	tree, info := analyze(t, `<span>{% if a %} x{% else %}y {% endif %}</span>`, CSS)
	ifTag := tree.Node(find(t, tree, ast.CanvasTag, "{% if"))
	require.Len(t, ifTag.Children, 2)
	first, second := ifTag.Children[0], ifTag.Children[1]

	assert.True(t, info.Of(first).HasLeadingWhitespace)
	assert.False(t, info.Of(first).HasTrailingWhitespace)
	assert.True(t, info.Of(first).IsLeadingWhitespaceSensitive)
	assert.False(t, info.Of(second).HasLeadingWhitespace)
	assert.True(t, info.Of(second).HasTrailingWhitespace)
	assert.True(t, info.Of(second).IsTrailingWhitespaceSensitive)
}

func TestBranchTrimming(t *testing.T) {
	t.Parallel()

	tree, info := analyze(t, `{% if a -%}x{%- else -%}y{%- endif %}`, CSS)
	ifID := find(t, tree, ast.CanvasTag, "{% if")
	ifTag := tree.Node(ifID)
	first, second := ifTag.Children[0], ifTag.Children[1]

	assert.True(t, info.TrimsInnerLeft(first))
	assert.True(t, info.TrimsInnerRight(first))
	assert.True(t, info.TrimsInnerLeft(second))
	assert.True(t, info.TrimsInnerRight(second))
	assert.True(t, info.TrimsInnerRight(ifID))
	assert.False(t, info.Of(second).IsLeadingWhitespaceSensitive)
}

func TestAttributeListNodes(t *testing.T) {
	t.Parallel()

	tree, info := analyze(t, `<a {{ x }} href="{{ y }}">z</a>`, CSS)
	x := find(t, tree, ast.CanvasVariableOutput, "{{ x")
	y := find(t, tree, ast.CanvasVariableOutput, "{{ y")
	href := find(t, tree, ast.AttrDoubleQuoted, "href")

	assert.False(t, info.Of(x).IsLeadingWhitespaceSensitive)
	assert.False(t, info.Of(href).IsTrailingWhitespaceSensitive)
	assert.True(t, info.Of(y).IsLeadingWhitespaceSensitive)
	assert.True(t, info.Of(y).IsTrailingWhitespaceSensitive)
}

func TestScriptLikeAndBreaks(t *testing.T) {
	t.Parallel()

	tree, info := analyze(t, `<span><script>x</script>a<br>b</span>`, CSS)
	script := find(t, tree, ast.HtmlRawNode, "<script")
	br := find(t, tree, ast.HtmlVoidElement, "<br")

	assert.False(t, info.Of(script).IsLeadingWhitespaceSensitive)
	assert.False(t, info.Of(script).IsDanglingWhitespaceSensitive)
	assert.False(t, info.Of(br).IsTrailingWhitespaceSensitive)
}

func TestDanglingWhitespace(t *testing.T) {
	t.Parallel()

	tree, info := analyze(t, `<span> </span><i></i>{% if a %} {% endif %}`, CSS)
	assert.True(t, info.Of(find(t, tree, ast.HtmlElement, "<span")).HasDanglingWhitespace)
	assert.False(t, info.Of(find(t, tree, ast.HtmlElement, "<i")).HasDanglingWhitespace)
	assert.True(t, info.Of(find(t, tree, ast.CanvasTag, "{% if")).HasDanglingWhitespace)
	assert.True(t, info.Of(find(t, tree, ast.HtmlElement, "<span")).IsDanglingWhitespaceSensitive)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("IGNORE")
	require.NoError(t, err)
	assert.Equal(t, Ignore, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, CSS, m)
	_, err = ParseMode("loose")
	assert.Error(t, err)
}
