package project

import (
	"slices"
	"strings"
)

// indentStep is added per nesting level when no sibling shows the indent.
const indentStep = "  "

func newWhitespace(d *Document, s string) *Node {
	return &Node{kind: KindWhitespace, doc: d, raw: s, text: s}
}

func (n *Node) setWhitespace(s string) {
	n.raw = s
	n.text = s
}

func (d *Document) newline() string {
	if d.format.Newline == "" {
		return "\n"
	}
	return d.format.Newline
}

// leadingIndent returns the text after the last line break of the whitespace
// fragment directly before el. ok is false when there is no such break.
func leadingIndent(el *Node) (indent string, ok bool) {
	p := el.parent
	if p == nil {
		return "", false
	}
	i := p.indexOf(el)
	if i <= 0 {
		return "", false
	}
	prev := p.children[i-1]
	if prev.kind != KindWhitespace {
		return "", false
	}
	j := strings.LastIndexAny(prev.raw, "\r\n")
	if j < 0 {
		return "", false
	}
	return prev.raw[j+1:], true
}

// indentOf returns the indent el sits at. The project element and detached
// nodes sit at the empty indent.
func indentOf(el *Node) string {
	if el.parent == nil {
		return ""
	}
	if s, ok := leadingIndent(el); ok {
		return s
	}
	return indentOf(el.parent) + indentStep
}

// childIndent picks the indent for a child inserted at pos: that of the
// nearest preceding element sibling, else one step inside the parent.
func childIndent(parent *Node, pos int) string {
	for i := pos - 1; i >= 0; i-- {
		if c := parent.children[i]; c.IsElement() {
			return indentOf(c)
		}
	}
	return indentOf(parent) + indentStep
}

// open turns a self-closing element into an open/close pair so it can take
// children.
func (n *Node) open() {
	if !n.selfClosing {
		return
	}
	n.selfClosing = false
	if n.rawStart != "" && !n.startDirty {
		s := strings.TrimSuffix(n.rawStart, "/>")
		n.rawStart = strings.TrimRight(s, " \t\r\n") + ">"
	}
}

// insertAt places child at position pos of parent's children, preceded by a
// line break and the computed indent. The child's own subtree is re-indented
// from the indent it was built or last attached at.
func insertAt(parent *Node, pos int, child *Node) {
	d := parent.doc
	nl := d.newline()
	indent := childIndent(parent, pos)
	parent.open()

	attach(parent, child)
	parent.children = slices.Insert(parent.children, pos, newWhitespace(d, nl+indent), child)
	reindent(child, child.baseIndent, indent)
	child.baseIndent = ""

	next := pos + 2
	switch {
	case next == len(parent.children):
		parent.children = append(parent.children, newWhitespace(d, nl+indentOf(parent)))
	case parent.children[next].IsElement():
		parent.children = slices.Insert(parent.children, next, newWhitespace(d, nl+indent))
	}
}

// insertBefore places child directly before ref, ahead of ref's leading
// whitespace.
func insertBefore(parent, child, ref *Node) {
	pos := parent.indexOf(ref)
	if pos > 0 && parent.children[pos-1].kind == KindWhitespace {
		pos--
	}
	insertAt(parent, pos, child)
}

// insertAfter places child directly after ref.
func insertAfter(parent, child, ref *Node) {
	insertAt(parent, parent.indexOf(ref)+1, child)
}

// appendChild places child after the last non-whitespace child of parent.
func appendChild(parent, child *Node) {
	pos := 0
	for i := len(parent.children) - 1; i >= 0; i-- {
		if parent.children[i].kind != KindWhitespace {
			pos = i + 1
			break
		}
	}
	insertAt(parent, pos, child)
}

// expand gives a childless element separate open and close lines.
func expand(el *Node) {
	if len(el.children) > 0 {
		return
	}
	el.open()
	el.children = append(el.children, newWhitespace(el.doc, el.doc.newline()+indentOf(el)))
}

// attach links child under parent and decides the variant of every element
// in the subtree from its new position.
func attach(parent, child *Node) {
	child.parent = parent
	reclassify(parent.kind, child)
}

func reclassify(parent Kind, n *Node) {
	if !n.IsElement() {
		return
	}
	n.kind = classify(parent, n.name)
	for _, c := range n.children {
		reclassify(n.kind, c)
	}
}

// detach unlinks n from its parent and repairs the whitespace it leaves.
//
// Whitespace fragments before n are walked backwards with trailing blanks
// trimmed. The first line break met is cut off together with whatever
// follows it, and the walk stops, so at most one line goes with the node.
// Fragments left empty are dropped and neighbouring fragments merged.
func detach(n *Node) {
	p := n.parent
	n.baseIndent = indentOf(n)
	i := p.indexOf(n)
	p.children = slices.Delete(p.children, i, i+1)
	n.parent = nil

	for j := i - 1; j >= 0 && p.children[j].kind == KindWhitespace; j-- {
		ws := p.children[j]
		s := strings.TrimRight(ws.raw, " \t")
		k := strings.LastIndexAny(s, "\r\n")
		if k >= 0 {
			if s[k] == '\n' && k > 0 && s[k-1] == '\r' {
				k--
			}
			s = s[:k]
		}
		ws.setWhitespace(s)
		if s == "" {
			p.children = slices.Delete(p.children, j, j+1)
		}
		if k >= 0 {
			break
		}
	}
	mergeWhitespace(p)
}

func mergeWhitespace(p *Node) {
	out := p.children[:0]
	for _, c := range p.children {
		if last := len(out) - 1; last >= 0 && c.kind == KindWhitespace && out[last].kind == KindWhitespace {
			out[last].setWhitespace(out[last].raw + c.raw)
			continue
		}
		out = append(out, c)
	}
	clear(p.children[len(out):])
	p.children = out
}

// reindent rewrites the whitespace inside n's subtree so lines indented at
// from are indented at to. Text, comments and tags are left alone.
func reindent(n *Node, from, to string) {
	if from == to {
		return
	}
	for _, c := range n.children {
		if c.kind == KindWhitespace {
			c.setWhitespace(shiftLines(c.raw, from, to))
			continue
		}
		reindent(c, from, to)
	}
}

func shiftLines(s, from, to string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		b.WriteByte(c)
		i++
		if c == '\n' || (c == '\r' && (i == len(s) || s[i] != '\n')) {
			if strings.HasPrefix(s[i:], from) {
				b.WriteString(to)
				i += len(from)
			}
		}
	}
	return b.String()
}
