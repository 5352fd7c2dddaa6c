package printer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gnolang/canvasfmt/internal/doc"
	"github.com/gnolang/canvasfmt/internal/expr"
)

var (
	fraction       = regexp.MustCompile(`\.\d+$`)
	nonDigitStart  = regexp.MustCompile(`^\D`)
	propertyLookup = regexp.MustCompile(`(?i)^[a-z0-9_]+\??$`)
)

var separator = doc.Concat(doc.Text(","), doc.Line)

func (p *printer) printExprs(nodes []expr.Node, a args) []doc.Doc {
	out := make([]doc.Doc, len(nodes))
	for i, n := range nodes {
		out[i] = p.printExpr(n, a)
	}
	return out
}

func (p *printer) quote(preferSingle bool, value string) string {
	q, other := `"`, `'`
	if preferSingle {
		q, other = other, q
	}
	if strings.Contains(value, q) {
		return other
	}
	return q
}

func (p *printer) printExpr(n expr.Node, a args) doc.Doc {
	switch n := n.(type) {
	case *expr.Variable:
		parts := []doc.Doc{p.printExpr(n.Expression, a)}
		if len(n.Filters) > 0 {
			filters := make([]doc.Doc, len(n.Filters))
			for i, f := range n.Filters {
				filters[i] = p.printExpr(f, a)
			}
			parts = append(parts, doc.Line, doc.Join(doc.Line, filters))
		}
		return doc.Concat(parts...)

	case *expr.Filter:
		if len(n.Args) == 0 {
			return doc.Group(doc.Text("| " + n.Name))
		}
		return doc.Group(doc.Concat(
			doc.Text("| "+n.Name+"("),
			doc.Indent(doc.Align(2, doc.SoftLine, doc.Join(separator, p.printExprs(n.Args, a)))),
			doc.Align(2, doc.SoftLine, doc.Text(")")),
		))

	case *expr.NamedArgument:
		return doc.Concat(p.printExpr(n.Name, a), doc.Text(": "), p.printExpr(n.Value, a))

	case *expr.String:
		q := p.quote(p.opts.CanvasSingleQuote, n.Value)
		return doc.Text(q + n.Value + q)

	case *expr.Number:
		if a.truncate {
			return doc.Text(fraction.ReplaceAllString(n.Value, ""))
		}
		return doc.Text(n.Value)

	case *expr.Literal:
		return doc.Text(n.Keyword)

	case *expr.Range:
		t := args{truncate: true}
		return doc.Concat(
			doc.Text("("), p.printExpr(n.Start, t),
			doc.Text(".."), p.printExpr(n.End, t),
			doc.Text(")"),
		)

	case *expr.Concatenation:
		t := args{truncate: true}
		return doc.Concat(p.printExpr(n.Start, t), doc.Text(" ~ "), p.printExpr(n.End, t))

	case *expr.Sequence:
		if len(n.Args) == 0 {
			return doc.Text("[]")
		}
		return doc.Group(doc.Concat(
			doc.Text("["),
			doc.SoftLine,
			doc.Join(separator, p.printExprs(n.Args, a)),
			doc.Dedent(doc.SoftLine, doc.Text("]")),
		))

	case *expr.Mapping:
		if len(n.Args) == 0 {
			return doc.Text("{}")
		}
		return doc.Group(doc.Concat(
			doc.Text("{"),
			doc.Indent(doc.Line, doc.Join(separator, p.printExprs(n.Args, a))),
			doc.Line,
			doc.Text("}"),
		))

	case *expr.Function:
		var params []doc.Doc
		if len(n.Args) > 0 {
			printed := p.printExprs(n.Args, a)
			if _, hug := n.Args[0].(*expr.Mapping); hug && len(n.Args) == 1 {
				params = printed
			} else {
				params = []doc.Doc{doc.Indent(doc.SoftLine, doc.Join(separator, printed)), doc.SoftLine}
			}
		}
		parts := append([]doc.Doc{doc.Text(n.Name + "(")}, params...)
		return doc.Group(doc.Concat(append(parts, doc.Text(")"))...))

	case *expr.ArrowFunction:
		var params []doc.Doc
		if len(n.Args) > 0 {
			printed := p.printExprs(n.Args, a)
			if _, named := n.Args[0].(*expr.NamedArgument); named {
				params = []doc.Doc{doc.Join(doc.Text(", "), printed)}
			} else {
				params = []doc.Doc{printed[0]}
				if len(printed) > 1 {
					params = append(params, doc.Indent(separator, doc.Join(separator, printed[1:])))
				}
			}
		}
		parts := append([]doc.Doc{doc.Text("(")}, params...)
		parts = append(parts, doc.Text(") => "), p.printExpr(n.Expression, a))
		return doc.Group(doc.Concat(parts...))

	case *expr.Lookup:
		parts := make([]doc.Doc, 0, len(n.Lookups)+1)
		if n.Name != "" {
			parts = append(parts, doc.Text(n.Name))
		}
		for i, l := range n.Lookups {
			s, ok := l.(*expr.String)
			global := i == 0 && n.Name == ""
			if ok && !global && nonDigitStart.MatchString(s.Value) && propertyLookup.MatchString(s.Value) {
				parts = append(parts, doc.Text("."+s.Value))
				continue
			}
			parts = append(parts, doc.Text("["), p.printExpr(l, a), doc.Text("]"))
		}
		return doc.Concat(parts...)

	case *expr.Comparison:
		return doc.Group(doc.Concat(
			p.printExpr(n.Left, a),
			doc.Indent(doc.Line, doc.Text(n.Comparator+" "), p.printExpr(n.Right, a)),
		))

	case *expr.Logical:
		return doc.Group(doc.Concat(
			p.printExpr(n.Left, a),
			doc.Indent(doc.Line, doc.Text(n.Relation+" "), p.printExpr(n.Right, a)),
		))

	case *expr.Not:
		return doc.Concat(doc.Text("not "), p.printExpr(n.Operand, a))

	case *expr.Include:
		parts := []doc.Doc{p.printExpr(n.Snippet, a)}
		if n.IgnoreMissing {
			parts = append(parts, doc.Text(" ignore missing"))
		}
		if n.With != nil {
			parts = append(parts, doc.Text(" with "), p.printExpr(n.With, a))
		}
		if n.Only {
			parts = append(parts, doc.Text(" only"))
		}
		return doc.Concat(parts...)

	case *expr.Set:
		return doc.Concat(doc.Text(n.Name+" = "), p.printExpr(n.Value, a))
	}

	if p.err == nil {
		p.err = fmt.Errorf("cannot print %T expression", n)
	}
	return doc.Empty
}
