package canvasfmt

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/syntax"
	"github.com/gnolang/canvasfmt/internal/whitespace"
)

func TestFormatEmpty(t *testing.T) {
	t.Parallel()

	out, err := Format("", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestFormatIdempotent(t *testing.T) {
	t.Parallel()

	sources := []string{
		"<!DOCTYPE html><html><head><title>{{ title }}</title></head><body>{% block body %}{% endblock %}</body></html>",
		"{% for item in items %}<li class=\"{{ item.class }}\">{{ item.name | upper }}</li>{% else %}<li>none</li>{% endfor %}",
		"<div {% if a %}class=\"x\"{% endif %}>{% if b %}<span>{% else %}<span class=b>{% endif %}text{% if b %}</span>{% else %}</span>{% endif %}</div>",
		"<p>Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.</p>",
		"{% set x = { a: 1, b: [1, 2, 3], c: 'str' } %}{{ x | json_encode(pretty = true) }}",
		"<script>\n  const a = 1;\n</script>\n<style>\n.a { color: red }\n</style>",
		"<div><textarea>\n  a\n b</textarea></div>\n<!--\n  hello world\n-->",
	}
	for _, mode := range []whitespace.Mode{whitespace.CSS, whitespace.Strict, whitespace.Ignore} {
		opts := DefaultOptions()
		opts.HTMLWhitespaceSensitivity = mode
		for i, src := range sources {
			first, err := Format(src, opts)
			require.NoError(t, err, "%s source %d", mode, i)
			second, err := Format(first, opts)
			require.NoError(t, err)
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("%s source %d not idempotent (-first +second):\n%s", mode, i, diff)
			}
		}
	}
}

func TestFormatExamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		want  string
		width int
	}{
		{
			name: "range",
			src:  "{{ ( 0 .. 1 ) }}",
			want: "{{ (0..1) }}\n",
		},
		{
			name: "filters break at narrow widths",
			src:  "{% set z = x | filter1 | filter2 %}",
			want: "{% set z = x\n  | filter1\n  | filter2\n%}\n",
			width: 1,
		},
		{
			name: "branches",
			src:  "{% if a %}<b>x</b>{% elseif b %}y{% else %}z{% endif %}",
			want: "{% if a %}<b>x</b>{% elseif b %}y{% else %}z{% endif %}\n",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := DefaultOptions()
			if tt.width > 0 {
				opts.PrintWidth = tt.width
			}
			got, err := Format(tt.src, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatErrors(t *testing.T) {
	t.Parallel()

	_, err := Format("{{ a", DefaultOptions())
	var syntaxErr *syntax.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))

	_, err = Format("<div></span>", DefaultOptions())
	var structErr *ast.StructuralError
	require.True(t, errors.As(err, &structErr))

	_, err = Format("{% if a %}", DefaultOptions())
	require.True(t, errors.As(err, &structErr))
	assert.Equal(t, ast.Unclosed, structErr.Reason)
}

func TestParseModeCompletion(t *testing.T) {
	t.Parallel()

	_, err := ParseMode("{% if a %}<div>", Strict)
	assert.Error(t, err)

	d, err := ParseMode("{% if a %}<div>", Completion)
	require.NoError(t, err)
	assert.NotNil(t, d.Tree)
}

func TestPrintOptions(t *testing.T) {
	t.Parallel()

	d, err := Parse("<div a=\"1\" b=\"2\"></div>")
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.PrintWidth = 10
	opts.SingleQuote = true
	l, err := Print(d, opts)
	require.NoError(t, err)
	assert.Equal(t, "<div\n  a='1'\n  b='2'\n></div>\n", l.String())
	assert.True(t, strings.Contains(l.Debug(), "group"))

	opts.TabWidth = 0
	_, err = Print(d, opts)
	assert.Error(t, err)
}

func TestHasExtension(t *testing.T) {
	t.Parallel()

	assert.True(t, HasExtension("a/b.canvas"))
	assert.True(t, HasExtension("index.html"))
	assert.False(t, HasExtension("main.go"))
	assert.Equal(t, "canvas", Language.Parser)
}
