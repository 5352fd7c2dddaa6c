package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/canvasfmt/internal/syntax"
)

func build(t *testing.T, src string, mode syntax.Mode) (*Tree, error) {
	t.Helper()
	tokens, err := syntax.Tokenize(src, mode)
	require.NoError(t, err)
	return Build(src, tokens, mode)
}

func mustBuild(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := build(t, src, syntax.Tolerant)
	require.NoError(t, err)
	return tree
}

func TestBuildElementsAndText(t *testing.T) {
	t.Parallel()

	src := `<div class="a"><p>hi <b>there</b></p><br></div>`
	tree := mustBuild(t, src)

	root := tree.Node(tree.Root)
	require.Len(t, root.Children, 1)
	div := tree.Node(root.Children[0])
	assert.Equal(t, HtmlElement, div.Kind)
	assert.Equal(t, Span{Start: 0, End: len(src)}, div.Position)
	assert.Equal(t, "</div>", tree.Slice(div.BlockEndPosition))
	require.Len(t, div.Attributes, 1)
	assert.Equal(t, "class", tree.HTMLName(div.Attributes[0]))

	require.Len(t, div.Children, 2)
	p := tree.Node(div.Children[0])
	assert.Equal(t, "p", p.Name)
	assert.Len(t, p.Children, 2)
	assert.Equal(t, HtmlVoidElement, tree.Node(div.Children[1]).Kind)
}

func TestBuildDanglingOpenAcrossBranches(t *testing.T) {
	t.Parallel()

	src := `<div>{% if A %}<span>{% else %}<b>{% endif %}</div>`
	tree := mustBuild(t, src)

	div := tree.Node(tree.Node(tree.Root).Children[0])
	require.Len(t, div.Children, 1)
	ifTag := tree.Node(div.Children[0])
	assert.Equal(t, CanvasTag, ifTag.Kind)
	require.Len(t, ifTag.Children, 2)

	first := tree.Node(ifTag.Children[0])
	assert.Equal(t, CanvasBranch, first.Kind)
	assert.Equal(t, "", first.Name)
	span := tree.Node(first.Children[0])
	assert.True(t, span.IsDanglingOpen())
	elseAt := indexOf(src, "{% else %}")
	assert.Equal(t, Span{Start: elseAt, End: elseAt}, span.BlockEndPosition)

	second := tree.Node(ifTag.Children[1])
	assert.Equal(t, "else", second.Name)
	bold := tree.Node(second.Children[0])
	assert.True(t, bold.IsDanglingOpen())
	endifAt := indexOf(src, "{% endif %}")
	assert.Equal(t, endifAt, bold.BlockEndPosition.Start)
	assert.Equal(t, "{% endif %}", tree.Slice(ifTag.BlockEndPosition))
}

func TestBuildDanglingCloseMarker(t *testing.T) {
	t.Parallel()

	for _, tag := range []string{"if", "for"} {
		src := `{% ` + tag + ` x %}</div>{% else %}</section>{% end` + tag + ` %}`
		tree := mustBuild(t, src)

		tagNode := tree.Node(tree.Node(tree.Root).Children[0])
		require.Len(t, tagNode.Children, 2, tag)
		for _, branch := range tagNode.Children {
			children := tree.Node(branch).Children
			require.Len(t, children, 1)
			assert.Equal(t, HtmlDanglingMarkerClose, tree.Node(children[0]).Kind)
		}
	}
}

func TestBuildElseIfChain(t *testing.T) {
	t.Parallel()

	src := `{%- if a -%}A{% elseif b %}B{% else %}C{%- endif -%}`
	tree := mustBuild(t, src)

	ifTag := tree.Node(tree.Node(tree.Root).Children[0])
	require.Len(t, ifTag.Children, 3)
	names := []string{}
	for _, b := range ifTag.Children {
		names = append(names, tree.Node(b).Name)
	}
	assert.Equal(t, []string{"", "elseif", "else"}, names)
	assert.NotNil(t, tree.Node(ifTag.Children[1]).Expr)
	assert.True(t, ifTag.TrimStart)
	assert.True(t, ifTag.DelimiterTrimStart)
	assert.True(t, ifTag.DelimiterTrimEnd)
}

func TestBuildStructuralErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		reason   Reason
		message  string
		blocking string
	}{
		{
			name:    "close before open",
			src:     `<div></span></div>`,
			reason:  ClosedBeforeOpened,
			message: "attempting to close HtmlElement 'span' before it was opened",
		},
		{
			name:    "stray close at top level",
			src:     `</a>`,
			reason:  ClosedBeforeOpened,
			message: "attempting to close HtmlElement 'a' before it was opened",
		},
		{
			name:     "out of order",
			src:      `<div><span></div></span>`,
			reason:   ClosedOutOfOrder,
			blocking: "HtmlElement 'span'",
		},
		{
			name:     "element left open in block",
			src:      `{% block a %}<div>{% endblock %}`,
			reason:   ClosedOutOfOrder,
			blocking: "HtmlElement 'div'",
		},
		{
			name:   "branch outside block",
			src:    `<div>{% else %}</div>`,
			reason: BranchOutsideBlock,
		},
		{
			name:   "unclosed element",
			src:    `<div>`,
			reason: Unclosed,
		},
		{
			name:   "unclosed tag",
			src:    `{% if a %}x`,
			reason: Unclosed,
		},
		{
			name:   "endtag without open",
			src:    `{% endif %}`,
			reason: ClosedBeforeOpened,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := build(t, tt.src, syntax.Tolerant)
			var serr *StructuralError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.reason, serr.Reason)
			if tt.message != "" {
				assert.Equal(t, tt.message, serr.Error())
			}
			if tt.blocking != "" {
				assert.Equal(t, tt.blocking, serr.Blocking)
			}
		})
	}
}

func TestBuildCompletionClosesAtEnd(t *testing.T) {
	t.Parallel()

	src := `<div>{% if a %}<p>x`
	tree, err := build(t, src, syntax.Completion)
	require.NoError(t, err)

	div := tree.Node(tree.Node(tree.Root).Children[0])
	assert.Equal(t, Span{Start: len(src), End: len(src)}, div.BlockEndPosition)
	assert.Equal(t, len(src), div.Position.End)
}

func TestBuildAttributeConditionals(t *testing.T) {
	t.Parallel()

	src := `<a {% if x %}href="{{ u }}"{% else %}disabled{% endif %} data-{{ k }}="v">x</a>`
	tree := mustBuild(t, src)

	a := tree.Node(tree.Node(tree.Root).Children[0])
	require.Len(t, a.Attributes, 2)
	ifTag := tree.Node(a.Attributes[0])
	assert.Equal(t, CanvasTag, ifTag.Kind)
	require.Len(t, ifTag.Children, 2)
	href := tree.Node(tree.Node(ifTag.Children[0]).Children[0])
	assert.Equal(t, AttrDoubleQuoted, href.Kind)
	require.Len(t, href.Value, 1)
	assert.Equal(t, CanvasVariableOutput, tree.Node(href.Value[0]).Kind)

	data := a.Attributes[1]
	assert.Equal(t, "data-{{ k }}", tree.HTMLName(data))
}

func TestBuildRawNodes(t *testing.T) {
	t.Parallel()

	src := "<script>let a = 1</script>{% verbatim %}{{ x }}{% endverbatim %}"
	tree := mustBuild(t, src)

	root := tree.Node(tree.Root)
	require.Len(t, root.Children, 2)
	script := tree.Node(root.Children[0])
	assert.Equal(t, HtmlRawNode, script.Kind)
	assert.Equal(t, "let a = 1", tree.Node(script.Body).Text)
	assert.Equal(t, "</script>", tree.Slice(script.BlockEndPosition))

	verbatim := tree.Node(root.Children[1])
	assert.Equal(t, CanvasRawTag, verbatim.Kind)
	assert.Equal(t, "{{ x }}", tree.Node(verbatim.Body).Text)
}

func TestBuildEmptyInput(t *testing.T) {
	t.Parallel()

	tree := mustBuild(t, "")
	assert.Empty(t, tree.Node(tree.Root).Children)
	assert.Equal(t, Span{Start: 0, End: 0}, tree.Node(tree.Root).Position)
}

func TestSpanCoverage(t *testing.T) {
	t.Parallel()

	sources := []string{
		`<div>{% if A %}<span>{% else %}<b>{% endif %}</div>`,
		`<ul>{% for i in xs %}<li class="{{ i }}">{{ i | upper }}</li>{% else %}<li>none</li>{% endfor %}</ul>`,
		`<a {% if x %}href="{{ u }}"{% endif %}>x</a><!-- c --><br/>`,
	}
	for _, src := range sources {
		tree := mustBuild(t, src)
		tree.Walk(tree.Root, func(id, parent NodeID, _ Slot) bool {
			n := tree.Node(id)
			assert.LessOrEqual(t, 0, n.Position.Start, src)
			assert.LessOrEqual(t, n.Position.Start, n.Position.End, src)
			assert.LessOrEqual(t, n.Position.End, len(src), src)
			if parent != NoNode {
				p := tree.Node(parent)
				assert.LessOrEqual(t, p.Position.Start, n.Position.Start, src)
				assert.LessOrEqual(t, n.Position.End, p.Position.End, src)
			}
			return true
		})
	}
}

func TestBranchExclusivity(t *testing.T) {
	t.Parallel()

	src := `{% if a %}1{% elseif b %}<p>{% else %}3{% endif %}{% for x in y %}{{ x }}{% endfor %}`
	tree := mustBuild(t, src)

	tree.Walk(tree.Root, func(id, _ NodeID, _ Slot) bool {
		n := tree.Node(id)
		if n.Kind != CanvasTag || !IsBranchingTag(n.Name) {
			return true
		}
		prevEnd := n.BlockStartPosition.End
		for _, c := range n.Children {
			branch := tree.Node(c)
			require.Equal(t, CanvasBranch, branch.Kind)
			assert.Equal(t, prevEnd, branch.Position.Start)
			prevEnd = branch.Position.End
		}
		assert.Equal(t, n.BlockEndPosition.Start, prevEnd)
		return true
	})
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
