package diagnostic

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"
)

const tabWidth = 8

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	infoStyle    = color.New(color.FgHiBlue, color.Bold)
	codeStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgGreen, color.Bold)
)

const diagnosticTemplate = `{{header .Code .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underline .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent}}
{{- if .Note }}
{{note .Note}}
{{- end }}
`

var tmpl = template.Must(template.New("diagnostic").Funcs(template.FuncMap{
	"header":    header,
	"snippet":   snippet,
	"underline": underline,
	"note":      note,
}).Parse(diagnosticTemplate))

type data struct {
	Code            string
	Severity        string
	Filename        string
	Padding         string
	StartLine       int
	StartColumn     int
	EndLine         int
	EndColumn       int
	MaxLineNumWidth int
	Message         string
	Note            string
	SnippetLines    []string
	CommonIndent    string
}

// Render formats diagnostics of a single file as annotated snippets.
func Render(ds []Diagnostic, src *Source) string {
	var b strings.Builder
	for _, d := range ds {
		b.WriteString(render(d, src))
	}
	return b.String()
}

func render(d Diagnostic, src *Source) string {
	startLine, endLine := d.Start.Line, d.End.Line
	if endLine < startLine {
		endLine = startLine
	}
	width := len(fmt.Sprintf("%d", endLine))

	var commonIndent string
	if startLine > 0 && endLine <= len(src.Lines) {
		commonIndent = findCommonIndent(src.Lines[startLine-1 : endLine])
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data{
		Code:            d.Code,
		Severity:        d.Severity.String(),
		Filename:        d.Filename,
		Padding:         strings.Repeat(" ", width+1),
		StartLine:       startLine,
		StartColumn:     d.Start.Column,
		EndLine:         endLine,
		EndColumn:       d.End.Column,
		MaxLineNumWidth: width,
		Message:         d.Message,
		Note:            d.Note,
		SnippetLines:    src.Lines,
		CommonIndent:    commonIndent,
	})
	if err != nil {
		return fmt.Sprintf("error formatting diagnostic: %v\n", err)
	}
	return buf.String()
}

func header(code, severity string, width int, filename string, line, column int) string {
	var s string
	switch severity {
	case "ERROR":
		s = errorStyle.Sprint("error: ")
	case "WARNING":
		s = warningStyle.Sprint("warning: ")
	default:
		s = infoStyle.Sprint("info: ")
	}
	s += codeStyle.Sprintf("%s\n", code)
	s += lineStyle.Sprintf("%s--> ", strings.Repeat(" ", width))
	s += fileStyle.Sprintf("%s:%d:%d\n", filename, line, column)
	return s
}

func snippet(lines []string, startLine, endLine, width int, commonIndent, padding string) string {
	s := lineStyle.Sprintf("%s|\n", padding)
	for i := startLine; i <= endLine; i++ {
		if i-1 < 0 || i-1 >= len(lines) {
			continue
		}
		line := strings.TrimPrefix(lines[i-1], commonIndent)
		s += lineStyle.Sprintf("%*d | ", width, i) + line + "\n"
	}
	return s
}

func underline(message, padding string, startLine, endLine, startColumn, endColumn int, lines []string, commonIndent string) string {
	s := lineStyle.Sprintf("%s| ", padding)
	if startLine <= 0 || startLine > endLine || endLine > len(lines) {
		return s + messageStyle.Sprintf("%s\n", message)
	}

	indent := visualColumn(commonIndent, len(commonIndent)+1)
	start := visualColumn(lines[startLine-1], startColumn) - indent
	if start < 0 {
		start = 0
	}
	end := visualColumn(lines[endLine-1], endColumn) - indent
	length := end - start + 1
	if endLine > startLine || length < 1 {
		length = 1
	}

	s += strings.Repeat(" ", start)
	s += messageStyle.Sprintf("%s\n", strings.Repeat("^", length))
	s += lineStyle.Sprintf("%s= ", padding)
	s += messageStyle.Sprintf("%s\n", message)
	return s
}

func note(n string) string {
	return noteStyle.Sprint("note: ") + n + "\n"
}

// visualColumn is the display column of the byte column in line, with
// tabs expanded.
func visualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	col := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			col += tabWidth - (col % tabWidth)
		} else {
			col++
		}
	}
	return col
}

func findCommonIndent(lines []string) string {
	var common []rune
	found := false
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		indent := []rune(line[:len(line)-len(trimmed)])
		if !found {
			common, found = indent, true
			continue
		}
		common = commonPrefix(common, indent)
		if len(common) == 0 {
			break
		}
	}
	return string(common)
}

func commonPrefix(a, b []rune) []rune {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
