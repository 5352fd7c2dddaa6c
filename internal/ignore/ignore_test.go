package ignore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/syntax"
)

func parse(t *testing.T, src string) *ast.Tree {
	t.Helper()
	tokens, err := syntax.Tokenize(src, syntax.Tolerant)
	require.NoError(t, err)
	tree, err := ast.Build(src, tokens, syntax.Tolerant)
	require.NoError(t, err)
	return tree
}

func spanOf(src, sub string) ast.Span {
	i := strings.Index(src, sub)
	return ast.Span{Start: i, End: i + len(sub)}
}

func TestParseComments(t *testing.T) {
	t.Parallel()

	src := `<div>
<!-- canvasfmt-ignore-start -->
<p   class=x>kept</p>
<!-- canvasfmt-ignore-end -->
<p>formatted</p>
</div>`
	m := ParseComments(parse(t, src))
	require.Equal(t, 1, m.Len())

	assert.True(t, m.IsIgnored(spanOf(src, `<p   class=x>kept</p>`)))
	assert.False(t, m.IsIgnored(spanOf(src, `<p>formatted</p>`)))
	assert.False(t, m.IsIgnored(spanOf(src, `<!-- canvasfmt-ignore-start -->`)))
}

func TestCanvasCommentDirectives(t *testing.T) {
	t.Parallel()

	src := `{# canvasfmt-ignore-start #}{{  a  }}{# canvasfmt-ignore-end #}{{ b }}`
	m := ParseComments(parse(t, src))
	require.Equal(t, 1, m.Len())
	assert.True(t, m.IsIgnored(spanOf(src, `{{  a  }}`)))
	assert.False(t, m.IsIgnored(spanOf(src, `{{ b }}`)))
}

func TestUnterminatedStartRunsToParentEnd(t *testing.T) {
	t.Parallel()

	src := `<div><!-- canvasfmt-ignore-start --><b>x</b></div><i>y</i>`
	m := ParseComments(parse(t, src))
	assert.True(t, m.IsIgnored(spanOf(src, `<b>x</b>`)))
	assert.False(t, m.IsIgnored(spanOf(src, `<i>y</i>`)))
}

func TestOtherCommentsAreNotDirectives(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"plain comment", `<!-- hello --><b>x</b>`},
		{"end without start", `<!-- canvasfmt-ignore-end --><b>x</b>`},
		{"prefix only", `<!-- canvasfmt-ignore --><b>x</b>`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := ParseComments(parse(t, tt.src))
			assert.Equal(t, 0, m.Len())
			assert.False(t, m.IsIgnored(spanOf(tt.src, `<b>x</b>`)))
		})
	}
}

func TestNilManager(t *testing.T) {
	t.Parallel()

	var m *Manager
	assert.False(t, m.IsIgnored(ast.Span{Start: 0, End: 1}))
	assert.Equal(t, 0, m.Len())
}
