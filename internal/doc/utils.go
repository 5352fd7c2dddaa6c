package doc

import (
	"fmt"
	"strconv"
	"strings"
)

// RemoveLines flattens d: soft and regular lines become "" and " ", groups
// lose their break and conditional contents resolve to the flat variant.
// Hard lines are kept.
func RemoveLines(d Doc) Doc {
	switch d := d.(type) {
	case line:
		if d.hard {
			return d
		}
		if d.soft {
			return text("")
		}
		return text(" ")
	case concat:
		out := make(concat, len(d))
		for i, p := range d {
			out[i] = RemoveLines(p)
		}
		return out
	case fill:
		parts := make([]Doc, len(d.parts))
		for i, p := range d.parts {
			parts[i] = RemoveLines(p)
		}
		return fill{parts: parts}
	case *group:
		return RemoveLines(d.contents)
	case ifBreak:
		if d.flatContents == nil {
			return text("")
		}
		return RemoveLines(d.flatContents)
	case indent:
		return indent{contents: RemoveLines(d.contents)}
	case align:
		return align{kind: d.kind, n: d.n, contents: RemoveLines(d.contents)}
	}
	return d
}

// Debug renders d as a builder expression, one node per call, for
// inspecting the output of the layout compiler.
func Debug(d Doc) string {
	var sb strings.Builder
	writeDebug(&sb, d, 0)
	return sb.String()
}

func writeDebug(sb *strings.Builder, d Doc, depth int) {
	pad := strings.Repeat("  ", depth)
	switch d := d.(type) {
	case nil:
		sb.WriteString("nil")
	case text:
		sb.WriteString(strconv.Quote(string(d)))
	case concat:
		if len(d) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteString("[\n")
		for _, p := range d {
			sb.WriteString(pad + "  ")
			writeDebug(sb, p, depth+1)
			sb.WriteString(",\n")
		}
		sb.WriteString(pad + "]")
	case *group:
		sb.WriteString("group(")
		writeDebug(sb, d.contents, depth)
		var opts []string
		if d.id != nil {
			opts = append(opts, "id: "+strconv.Quote(d.id.Name))
		}
		if d.broken {
			opts = append(opts, "shouldBreak: true")
		}
		if len(opts) > 0 {
			sb.WriteString(", { " + strings.Join(opts, ", ") + " }")
		}
		sb.WriteString(")")
	case fill:
		sb.WriteString("fill(")
		writeDebug(sb, concat(d.parts), depth)
		sb.WriteString(")")
	case ifBreak:
		sb.WriteString("ifBreak(")
		writeDebug(sb, d.breakContents, depth)
		sb.WriteString(", ")
		writeDebug(sb, d.flatContents, depth)
		if d.groupID != nil {
			sb.WriteString(", { groupId: " + strconv.Quote(d.groupID.Name) + " }")
		}
		sb.WriteString(")")
	case indent:
		sb.WriteString("indent(")
		writeDebug(sb, d.contents, depth)
		sb.WriteString(")")
	case align:
		switch d.kind {
		case alignDedent:
			sb.WriteString("dedent(")
		case alignRoot:
			sb.WriteString("dedentToRoot(")
		case alignMarkRoot:
			sb.WriteString("markAsRoot(")
		default:
			fmt.Fprintf(sb, "align(%d, ", d.n)
		}
		writeDebug(sb, d.contents, depth)
		sb.WriteString(")")
	case line:
		switch {
		case d.literal:
			sb.WriteString("literalline")
		case d.hard:
			sb.WriteString("hardlineWithoutBreakParent")
		case d.soft:
			sb.WriteString("softline")
		default:
			sb.WriteString("line")
		}
	case breakParent:
		sb.WriteString("breakParent")
	}
}
