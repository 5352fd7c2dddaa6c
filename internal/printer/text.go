package printer

import (
	"regexp"
	"strings"

	"github.com/gnolang/canvasfmt/internal/ast"
	"github.com/gnolang/canvasfmt/internal/doc"
	"github.com/gnolang/canvasfmt/internal/syntax"
)

var (
	paragraphBreak     = regexp.MustCompile(`(?:\r?\n[ \t]*){2,}`)
	conditionalComment = regexp.MustCompile(`(?s)^(<!--\[if[^\]]*\]>)(.*)(<!\[endif\]-->)$`)
)

func (p *printer) printText(id ast.NodeID) doc.Doc {
	text := strings.TrimSpace(p.node(id).Text)
	if text == "" {
		return doc.Empty
	}

	var paragraphs []doc.Doc
	for _, para := range paragraphBreak.Split(text, -1) {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		parts := make([]doc.Doc, 0, 2*len(words)-1)
		for i, w := range words {
			if i > 0 {
				parts = append(parts, doc.Line)
			}
			parts = append(parts, doc.Text(w))
		}
		paragraphs = append(paragraphs, doc.Fill(parts...))
	}
	return doc.Concat(
		doc.Text(p.openingTagPrefix(id)),
		doc.Join(doc.HardLine, paragraphs),
		doc.Text(p.closingTagSuffix(id)),
	)
}

func (p *printer) printComment(id ast.NodeID) doc.Doc {
	n := p.node(id)
	source := p.tree.SourceText(id)
	prefix := doc.Text(p.openingTagPrefix(id))
	suffix := doc.Text(p.closingTagSuffix(id))

	if m := conditionalComment.FindStringSubmatch(source); m != nil {
		body := doc.Empty
		if strings.TrimSpace(m[2]) != "" {
			body = doc.Group(doc.Concat(
				doc.Indent(doc.Line, joinLines(contentLines(m[2]))),
				doc.Line,
			))
		}
		return doc.Concat(prefix, doc.Text(m[1]), body, doc.Text(m[3]), suffix)
	}

	if strings.Contains(n.Text, "prettier-ignore") ||
		strings.Contains(n.Text, "canvasfmt-ignore") ||
		strings.Contains(n.Text, "display:") ||
		strings.Contains(n.Text, "white-space:") {
		return doc.Concat(prefix, literal(source), suffix)
	}

	if strings.TrimSpace(n.Text) == "" {
		return doc.Concat(prefix, doc.Text("<!---->"), suffix)
	}
	return doc.Concat(
		prefix,
		doc.Text("<!--"),
		doc.Group(doc.Concat(
			doc.Indent(doc.Line, joinLines(contentLines(n.Text))),
			doc.Line,
		)),
		doc.Text("-->"),
		suffix,
	)
}

func (p *printer) printDoctype(id ast.NodeID) doc.Doc {
	fields := strings.Join(strings.Fields(p.node(id).Text), " ")
	if strings.EqualFold(fields, "html") {
		return doc.Text("<!doctype html>")
	}
	return doc.Text("<!DOCTYPE " + fields + ">")
}

func (p *printer) printRawMarkup(id ast.NodeID) doc.Doc {
	n := p.node(id)
	if n.RawKind == syntax.RawJavaScript && strings.Contains(n.Text, "`") {
		// template literals keep their indentation
		return doc.Concat(literal(strings.TrimRight(n.Text, " \t\r\n")), doc.HardLine)
	}

	var body doc.Doc = doc.SoftLine
	if strings.TrimSpace(n.Text) != "" {
		body = joinLines(contentLines(n.Text))
	}
	return doc.Concat(doc.Indent(doc.HardLine, body), doc.HardLine)
}
