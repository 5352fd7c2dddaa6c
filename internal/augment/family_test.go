package augment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/syntax"
)

func TestFamilyLinks(t *testing.T) {
	t.Parallel()

	src := `<div id="a" hidden><p>x</p>{{ y }}<br></div>`
	tokens, err := syntax.Tokenize(src, syntax.Tolerant)
	require.NoError(t, err)
	tree, err := ast.Build(src, tokens, syntax.Tolerant)
	require.NoError(t, err)

	f := Build(tree)
	root := tree.Root
	div := tree.Node(root).Children[0]

	assert.Equal(t, ast.NoNode, f.Parent(root))
	assert.Equal(t, root, f.Parent(div))
	assert.Equal(t, ast.Children, f.Slot(div))
	assert.Equal(t, div, f.FirstChild(root))
	assert.Equal(t, div, f.LastChild(root))

	children := tree.Node(div).Children
	require.Len(t, children, 3)
	p, out, br := children[0], children[1], children[2]
	assert.Equal(t, ast.NoNode, f.Prev(p))
	assert.Equal(t, out, f.Next(p))
	assert.Equal(t, p, f.Prev(out))
	assert.Equal(t, br, f.Next(out))
	assert.Equal(t, ast.NoNode, f.Next(br))
	assert.Equal(t, p, f.FirstChild(div))
	assert.Equal(t, br, f.LastChild(div))

	attrs := tree.Node(div).Attributes
	require.Len(t, attrs, 2)
	assert.Equal(t, div, f.Parent(attrs[0]))
	assert.Equal(t, ast.Attributes, f.Slot(attrs[0]))
	assert.Equal(t, attrs[1], f.Next(attrs[0]))
	assert.Equal(t, ast.NoNode, f.Next(attrs[1]))

	// attributes are not children
	assert.Equal(t, ast.NoNode, f.Prev(p))
	assert.Equal(t, ast.NoNode, f.FirstChild(br))
	assert.Equal(t, ast.NoNode, f.Parent(ast.NoNode))
}
