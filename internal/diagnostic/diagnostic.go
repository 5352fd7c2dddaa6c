// Package diagnostic renders formatter failures and unformatted files as
// annotated source snippets.
package diagnostic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/syntax"
)

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	}
	return "UNKNOWN"
}

// Codes identify the kind of a diagnostic.
const (
	CodeSyntax      = "syntax-error"
	CodeStructure   = "structural-error"
	CodeUnformatted = "unformatted"
	CodeInternal    = "internal-error"
)

// Position is a 1-based line and byte column.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Diagnostic is one reportable finding in a file.
type Diagnostic struct {
	Code     string
	Severity Severity
	Filename string
	Start    Position
	End      Position
	Message  string
	Note     string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Filename, d.Start.Line, d.Start.Column, d.Message)
}

// Source holds the lines of a file.
type Source struct {
	Text  string
	Lines []string
}

// NewSource splits text into lines.
func NewSource(text string) *Source {
	return &Source{Text: text, Lines: strings.Split(text, "\n")}
}

// Position converts a byte offset to a line and column.
func (s *Source) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.Text) {
		offset = len(s.Text)
	}
	line := strings.Count(s.Text[:offset], "\n") + 1
	col := offset - strings.LastIndexByte(s.Text[:offset], '\n')
	return Position{Offset: offset, Line: line, Column: col}
}

// FromError describes err, as returned while formatting filename. Errors
// that carry no location point at the start of the file.
func FromError(filename string, src *Source, err error) Diagnostic {
	d := Diagnostic{
		Code:     CodeInternal,
		Severity: SeverityError,
		Filename: filename,
		Start:    src.Position(0),
		End:      src.Position(0),
		Message:  err.Error(),
	}

	var syntaxErr *syntax.SyntaxError
	var structErr *ast.StructuralError
	switch {
	case errors.As(err, &syntaxErr):
		d.Code = CodeSyntax
		d.Message = syntaxErr.Message
		d.Start = src.Position(syntaxErr.Offset)
		d.End = d.Start
	case errors.As(err, &structErr):
		d.Code = CodeStructure
		d.Message = structErr.Error()
		d.Start = src.Position(structErr.Span.Start)
		d.End = src.Position(structErr.Span.End)
		if d.End.Offset > d.Start.Offset {
			d.End = src.Position(d.End.Offset - 1)
		}
		if structErr.Reason == ast.Unclosed {
			d.Note = "close it, or format with completion mode"
		}
	}
	return d
}

// Unformatted reports the first line where formatted differs from src.
func Unformatted(filename string, src *Source, formatted string) Diagnostic {
	want := strings.Split(formatted, "\n")
	line := 1
	for i := range src.Lines {
		if i >= len(want) || src.Lines[i] != want[i] {
			line = i + 1
			break
		}
		line = i + 2
	}
	if line > len(src.Lines) {
		line = len(src.Lines)
	}
	d := Diagnostic{
		Code:     CodeUnformatted,
		Severity: SeverityWarning,
		Filename: filename,
		Start:    Position{Line: line, Column: 1},
		End:      Position{Line: line, Column: len(src.Lines[line-1])},
		Message:  "file is not formatted",
	}
	if line-1 < len(want) {
		d.Note = "expected: " + strings.TrimSpace(want[line-1])
	}
	return d
}

// Sort orders diagnostics by file and position.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Filename != ds[j].Filename {
			return ds[i].Filename < ds[j].Filename
		}
		if ds[i].Start.Line != ds[j].Start.Line {
			return ds[i].Start.Line < ds[j].Start.Line
		}
		return ds[i].Start.Column < ds[j].Start.Column
	})
}
