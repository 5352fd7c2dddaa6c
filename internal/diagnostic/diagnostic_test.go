package diagnostic

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/syntax"
)

func TestPosition(t *testing.T) {
	t.Parallel()

	src := NewSource("ab\ncd")
	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{Offset: 0, Line: 1, Column: 1}},
		{1, Position{Offset: 1, Line: 1, Column: 2}},
		{3, Position{Offset: 3, Line: 2, Column: 1}},
		{4, Position{Offset: 4, Line: 2, Column: 2}},
		{99, Position{Offset: 5, Line: 2, Column: 3}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprint(tt.offset), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, src.Position(tt.offset))
		})
	}
}

func TestFromError(t *testing.T) {
	t.Parallel()

	src := NewSource("<div>\n  {% if a %}\n</div>\n")

	d := FromError("a.canvas", src, fmt.Errorf("tokenizing: %w", &syntax.SyntaxError{Message: "unterminated tag", Offset: 8}))
	assert.Equal(t, CodeSyntax, d.Code)
	assert.Equal(t, "unterminated tag", d.Message)
	assert.Equal(t, 2, d.Start.Line)
	assert.Equal(t, 3, d.Start.Column)

	d = FromError("a.canvas", src, &ast.StructuralError{
		Reason:   ast.ClosedOutOfOrder,
		Span:     ast.Span{Start: 19, End: 25},
		Name:     "HtmlElement 'div'",
		Blocking: "CanvasTag 'if'",
	})
	assert.Equal(t, CodeStructure, d.Code)
	assert.Equal(t, 3, d.Start.Line)
	assert.Equal(t, 1, d.Start.Column)
	assert.Equal(t, 6, d.End.Column)
	assert.Contains(t, d.Message, "before CanvasTag 'if' was closed")

	d = FromError("a.canvas", src, fmt.Errorf("boom"))
	assert.Equal(t, CodeInternal, d.Code)
	assert.Equal(t, 1, d.Start.Line)
}

func TestUnformatted(t *testing.T) {
	t.Parallel()

	src := NewSource("<div>\n<p>x</p>\n</div>\n")
	d := Unformatted("a.html", src, "<div>\n  <p>x</p>\n</div>\n")
	assert.Equal(t, CodeUnformatted, d.Code)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Equal(t, 2, d.Start.Line)
	assert.Equal(t, "expected: <p>x</p>", d.Note)
}

func TestRender(t *testing.T) {
	t.Parallel()

	src := NewSource("<div>\n  <p>{{ a </p>\n</div>\n")
	ds := []Diagnostic{{
		Code:     CodeSyntax,
		Severity: SeverityError,
		Filename: "test.canvas",
		Start:    Position{Line: 2, Column: 6},
		End:      Position{Line: 2, Column: 6},
		Message:  "unterminated output",
	}}

	expected := `error: syntax-error
 --> test.canvas:2:6
  |
2 | <p>{{ a </p>
  |    ^
  = unterminated output

`
	assert.Equal(t, expected, Render(ds, src))
}

func TestRenderWithNote(t *testing.T) {
	t.Parallel()

	src := NewSource("{% if a %}\n")
	ds := []Diagnostic{{
		Code:     CodeStructure,
		Severity: SeverityError,
		Filename: "x.canvas",
		Start:    Position{Line: 1, Column: 1},
		End:      Position{Line: 1, Column: 10},
		Message:  "attempting to end parsing before CanvasTag 'if' was closed",
		Note:     "close it",
	}}

	got := Render(ds, src)
	assert.Contains(t, got, "1 | {% if a %}\n")
	assert.Contains(t, got, "  | ^^^^^^^^^^\n")
	assert.Contains(t, got, "note: close it\n")
}

func TestSort(t *testing.T) {
	t.Parallel()

	ds := []Diagnostic{
		{Filename: "b", Start: Position{Line: 1}},
		{Filename: "a", Start: Position{Line: 3}},
		{Filename: "a", Start: Position{Line: 1, Column: 4}},
		{Filename: "a", Start: Position{Line: 1, Column: 2}},
	}
	Sort(ds)
	got := make([]string, len(ds))
	for i, d := range ds {
		got[i] = fmt.Sprintf("%s:%d:%d", d.Filename, d.Start.Line, d.Start.Column)
	}
	assert.Equal(t, []string{"a:1:2", "a:1:4", "a:3:0", "b:1:0"}, got)
}
