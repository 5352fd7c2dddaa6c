package doc

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Options controls line fitting.
type Options struct {
	PrintWidth int
	TabWidth   int
}

type mode int

const (
	modeBreak mode = iota
	modeFlat
)

type indentKind int

const (
	indentLevel indentKind = iota
	indentAlign
)

type indentPart struct {
	kind indentKind
	n    int
}

type indentation struct {
	value  string
	length int
	queue  []indentPart
	root   *indentation
}

type command struct {
	ind  *indentation
	mode mode
	doc  Doc
}

type printer struct {
	opts       Options
	groupModes map[ID]mode
	out        []byte
	pos        int
	remeasure  bool
}

// Print resolves the line breaks of d and returns the rendered text.
func Print(d Doc, opts Options) string {
	if opts.TabWidth <= 0 {
		opts.TabWidth = 2
	}
	propagateBreaks(d)

	p := &printer{
		opts:       opts,
		groupModes: make(map[ID]mode),
	}
	p.run(d)
	return string(p.out)
}

func (p *printer) run(d Doc) {
	cmds := []command{{ind: &indentation{}, mode: modeBreak, doc: d}}

	for len(cmds) > 0 {
		c := cmds[len(cmds)-1]
		cmds = cmds[:len(cmds)-1]

		switch d := c.doc.(type) {
		case text:
			p.out = append(p.out, d...)
			if len(cmds) > 0 {
				p.pos += runewidth.StringWidth(string(d))
			}

		case concat:
			for i := len(d) - 1; i >= 0; i-- {
				cmds = append(cmds, command{c.ind, c.mode, d[i]})
			}

		case indent:
			cmds = append(cmds, command{p.makeIndent(c.ind), c.mode, d.contents})

		case align:
			cmds = append(cmds, command{p.makeAlign(c.ind, d), c.mode, d.contents})

		case *group:
			if c.mode == modeFlat && !p.remeasure {
				m := modeFlat
				if d.broken {
					m = modeBreak
				}
				cmds = append(cmds, command{c.ind, m, d.contents})
			} else {
				p.remeasure = false
				next := command{c.ind, modeFlat, d.contents}
				if !d.broken && p.fits(next, cmds, p.opts.PrintWidth-p.pos, false) {
					cmds = append(cmds, next)
				} else {
					cmds = append(cmds, command{c.ind, modeBreak, d.contents})
				}
			}
			if d.id != nil {
				p.groupModes[d.id] = cmds[len(cmds)-1].mode
			}

		case fill:
			cmds = p.fill(c, d, cmds)

		case ifBreak:
			m := c.mode
			if d.groupID != nil {
				// a group that has not been printed yet counts as flat
				m = modeFlat
				if gm, ok := p.groupModes[d.groupID]; ok {
					m = gm
				}
			}
			contents := d.flatContents
			if m == modeBreak {
				contents = d.breakContents
			}
			if contents != nil {
				cmds = append(cmds, command{c.ind, c.mode, contents})
			}

		case line:
			if c.mode == modeFlat && !d.hard {
				if !d.soft {
					p.out = append(p.out, ' ')
					p.pos++
				}
				break
			}
			if c.mode == modeFlat {
				p.remeasure = true
			}
			if d.literal {
				if c.ind.root != nil {
					p.out = append(p.out, '\n')
					p.out = append(p.out, c.ind.root.value...)
					p.pos = c.ind.root.length
				} else {
					p.out = append(p.out, '\n')
					p.pos = 0
				}
			} else {
				p.trim()
				p.out = append(p.out, '\n')
				p.out = append(p.out, c.ind.value...)
				p.pos = c.ind.length
			}

		case breakParent:
		}
	}
}

func (p *printer) fill(c command, d fill, cmds []command) []command {
	if len(d.parts) == 0 {
		return cmds
	}
	rem := p.opts.PrintWidth - p.pos
	content := d.parts[0]
	contentFlat := command{c.ind, modeFlat, content}
	contentBreak := command{c.ind, modeBreak, content}
	contentFits := p.fits(contentFlat, nil, rem, true)

	if len(d.parts) == 1 {
		if contentFits {
			return append(cmds, contentFlat)
		}
		return append(cmds, contentBreak)
	}

	whitespace := d.parts[1]
	whitespaceFlat := command{c.ind, modeFlat, whitespace}
	whitespaceBreak := command{c.ind, modeBreak, whitespace}

	if len(d.parts) == 2 {
		if contentFits {
			return append(cmds, whitespaceFlat, contentFlat)
		}
		return append(cmds, whitespaceBreak, contentBreak)
	}

	remaining := command{c.ind, c.mode, fill{parts: d.parts[2:]}}
	pair := command{c.ind, modeFlat, concat{content, whitespace, d.parts[2]}}

	switch {
	case p.fits(pair, nil, rem, true):
		return append(cmds, remaining, whitespaceFlat, contentFlat)
	case contentFits:
		return append(cmds, remaining, whitespaceBreak, contentFlat)
	default:
		return append(cmds, remaining, whitespaceBreak, contentBreak)
	}
}

// fits reports whether next, followed by the rest of the commands up to the
// first line break, fits in width columns.
func (p *printer) fits(next command, rest []command, width int, mustBeFlat bool) bool {
	restIdx := len(rest)
	cmds := []command{next}

	for width >= 0 {
		if len(cmds) == 0 {
			if restIdx == 0 {
				return true
			}
			restIdx--
			cmds = append(cmds, rest[restIdx])
			continue
		}
		c := cmds[len(cmds)-1]
		cmds = cmds[:len(cmds)-1]

		switch d := c.doc.(type) {
		case text:
			width -= runewidth.StringWidth(string(d))
		case concat:
			for i := len(d) - 1; i >= 0; i-- {
				cmds = append(cmds, command{c.ind, c.mode, d[i]})
			}
		case fill:
			for i := len(d.parts) - 1; i >= 0; i-- {
				cmds = append(cmds, command{c.ind, c.mode, d.parts[i]})
			}
		case indent:
			cmds = append(cmds, command{c.ind, c.mode, d.contents})
		case align:
			cmds = append(cmds, command{c.ind, c.mode, d.contents})
		case *group:
			if mustBeFlat && d.broken {
				return false
			}
			m := c.mode
			if d.broken {
				m = modeBreak
			}
			cmds = append(cmds, command{c.ind, m, d.contents})
		case ifBreak:
			m := c.mode
			if d.groupID != nil {
				m = modeFlat
				if gm, ok := p.groupModes[d.groupID]; ok {
					m = gm
				}
			}
			contents := d.flatContents
			if m == modeBreak {
				contents = d.breakContents
			}
			if contents != nil {
				cmds = append(cmds, command{c.ind, c.mode, contents})
			}
		case line:
			if c.mode == modeBreak || d.hard {
				return true
			}
			if !d.soft {
				width--
			}
		}
	}
	return false
}

// trim drops trailing spaces and tabs from the output.
func (p *printer) trim() {
	n := len(p.out)
	for n > 0 && (p.out[n-1] == ' ' || p.out[n-1] == '\t') {
		n--
	}
	p.pos -= len(p.out) - n
	p.out = p.out[:n]
}

func (p *printer) makeIndent(ind *indentation) *indentation {
	return p.generate(ind, append(cloneQueue(ind.queue), indentPart{kind: indentLevel}))
}

func (p *printer) makeAlign(ind *indentation, a align) *indentation {
	switch a.kind {
	case alignRoot:
		if ind.root != nil {
			return ind.root
		}
		return &indentation{}
	case alignDedent:
		if len(ind.queue) == 0 {
			return ind
		}
		return p.generate(ind, cloneQueue(ind.queue[:len(ind.queue)-1]))
	case alignMarkRoot:
		marked := *ind
		marked.root = ind
		return &marked
	}
	if a.n == 0 {
		return ind
	}
	return p.generate(ind, append(cloneQueue(ind.queue), indentPart{kind: indentAlign, n: a.n}))
}

func (p *printer) generate(ind *indentation, queue []indentPart) *indentation {
	var sb strings.Builder
	for _, part := range queue {
		switch part.kind {
		case indentLevel:
			sb.WriteString(strings.Repeat(" ", p.opts.TabWidth))
		case indentAlign:
			sb.WriteString(strings.Repeat(" ", part.n))
		}
	}
	value := sb.String()
	return &indentation{value: value, length: len(value), queue: queue, root: ind.root}
}

func cloneQueue(q []indentPart) []indentPart {
	out := make([]indentPart, len(q), len(q)+1)
	copy(out, q)
	return out
}

// propagateBreaks marks every group that contains a forced break as broken.
func propagateBreaks(d Doc) {
	visited := make(map[*group]bool)
	var walk func(d Doc) bool
	walk = func(d Doc) bool {
		switch d := d.(type) {
		case breakParent:
			return true
		case concat:
			found := false
			for _, part := range d {
				if walk(part) {
					found = true
				}
			}
			return found
		case fill:
			found := false
			for _, part := range d.parts {
				if walk(part) {
					found = true
				}
			}
			return found
		case ifBreak:
			b := d.breakContents != nil && walk(d.breakContents)
			f := d.flatContents != nil && walk(d.flatContents)
			return b || f
		case indent:
			return walk(d.contents)
		case align:
			return walk(d.contents)
		case *group:
			if visited[d] {
				return d.broken
			}
			visited[d] = true
			if walk(d.contents) {
				d.broken = true
			}
			return d.broken
		}
		return false
	}
	walk(d)
}
