// Package doc implements the layout algebra used by the Canvas printer.
//
// A Doc is a tree of layout instructions: literal text, concatenations,
// groups that are printed flat when they fit on the current line and broken
// otherwise, indentation, line breaks of three strengths, paragraph fills
// and conditional contents keyed on the mode of a group. Print resolves the
// line breaks of the whole tree in a single pass.
package doc

// Doc is a layout instruction.
type Doc interface {
	isDoc()
}

// ID identifies a group so that IfBreak can depend on its mode.
// Identity is the pointer value; the name only shows up in Debug output.
type ID = *Symbol

// Symbol backs a group identifier.
type Symbol struct {
	Name string
}

// NewID returns a fresh group identifier.
func NewID(name string) ID {
	return &Symbol{Name: name}
}

type (
	text   string
	concat []Doc

	group struct {
		id       ID
		contents Doc
		broken   bool
	}

	fill struct {
		parts []Doc
	}

	ifBreak struct {
		breakContents Doc
		flatContents  Doc
		groupID       ID
	}

	indent struct {
		contents Doc
	}

	alignKind int

	align struct {
		kind     alignKind
		n        int
		contents Doc
	}

	line struct {
		hard    bool
		soft    bool
		literal bool
	}

	breakParent struct{}
)

const (
	alignSpaces alignKind = iota
	alignDedent
	alignRoot
	alignMarkRoot
)

func (text) isDoc()        {}
func (concat) isDoc()      {}
func (*group) isDoc()      {}
func (fill) isDoc()        {}
func (ifBreak) isDoc()     {}
func (indent) isDoc()      {}
func (align) isDoc()       {}
func (line) isDoc()        {}
func (breakParent) isDoc() {}

var (
	// Line is a space when flat and a newline when broken.
	Line Doc = line{}
	// SoftLine is nothing when flat and a newline when broken.
	SoftLine Doc = line{soft: true}
	// HardLine always breaks and breaks every enclosing group.
	HardLine Doc = concat{line{hard: true}, breakParent{}}
	// LiteralLine always breaks and resets indentation to the root.
	LiteralLine Doc = concat{line{hard: true, literal: true}, breakParent{}}
	// BreakParent forces every enclosing group to break.
	BreakParent Doc = breakParent{}
	// Empty prints nothing.
	Empty Doc = text("")
)

// Text is a literal string. It must not contain newlines.
func Text(s string) Doc {
	return text(s)
}

// Concat joins parts in order. Nil parts are skipped.
func Concat(parts ...Doc) Doc {
	out := make(concat, 0, len(parts))
	for _, p := range parts {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// GroupOption configures a group.
type GroupOption func(*group)

// WithID names the group so that IfBreak can refer to it.
func WithID(id ID) GroupOption {
	return func(g *group) { g.id = id }
}

// ShouldBreak forces the group to break when set.
func ShouldBreak(b bool) GroupOption {
	return func(g *group) { g.broken = g.broken || b }
}

// Group tries to print contents on one line and breaks them otherwise.
func Group(contents Doc, opts ...GroupOption) Doc {
	g := &group{contents: contents}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Fill breaks separators only where the next content does not fit.
// Parts alternate between content and separator.
func Fill(parts ...Doc) Doc {
	return fill{parts: parts}
}

// IfBreak prints breakContents when the group (the enclosing one, or the
// one named by groupID) is broken and flatContents otherwise. A nil groupID
// refers to the enclosing group.
func IfBreak(breakContents, flatContents Doc, groupID ID) Doc {
	return ifBreak{breakContents: breakContents, flatContents: flatContents, groupID: groupID}
}

// Indent increases the indentation of contents by one level.
func Indent(contents ...Doc) Doc {
	return indent{contents: Concat(contents...)}
}

// Align increases the indentation of contents by n spaces.
func Align(n int, contents ...Doc) Doc {
	return align{kind: alignSpaces, n: n, contents: Concat(contents...)}
}

// Dedent removes the innermost indentation level from contents.
func Dedent(contents ...Doc) Doc {
	return align{kind: alignDedent, contents: Concat(contents...)}
}

// DedentToRoot resets the indentation of contents to the root.
func DedentToRoot(contents ...Doc) Doc {
	return align{kind: alignRoot, contents: Concat(contents...)}
}

// MarkAsRoot makes the current indentation the root for DedentToRoot and
// LiteralLine inside contents.
func MarkAsRoot(contents ...Doc) Doc {
	return align{kind: alignMarkRoot, contents: Concat(contents...)}
}

// Join places sep between every pair of docs.
func Join(sep Doc, docs []Doc) Doc {
	out := make(concat, 0, 2*len(docs))
	for i, d := range docs {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, d)
	}
	return out
}

// IsEmpty reports whether d prints nothing in every mode.
func IsEmpty(d Doc) bool {
	switch d := d.(type) {
	case nil:
		return true
	case text:
		return d == ""
	case concat:
		for _, p := range d {
			if !IsEmpty(p) {
				return false
			}
		}
		return true
	}
	return false
}
