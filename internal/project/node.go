package project

import (
	"iter"
	"slices"
	"strings"
)

// Attr is one attribute of an element, with its decoded value.
type Attr struct {
	Name  string
	Value string
}

// Node is one element or fragment of a document tree.
//
// Elements carry a tag name, ordered attributes and an ordered child list.
// Fragments (whitespace, text, comments, processing instructions,
// directives) carry only the exact text they were read from. The parent and
// document pointers are back-references used for identity checks; ownership
// runs strictly from Document down.
type Node struct {
	kind     Kind
	name     string
	attrs    []Attr
	children []*Node
	parent   *Node
	doc      *Document

	// Element serialization state. rawStart and rawEnd hold the tags exactly
	// as read; startDirty means the attributes or name changed and the start
	// tag must be regenerated.
	rawStart    string
	rawEnd      string
	selfClosing bool
	startDirty  bool

	// Fragment content: raw is the source text, text the decoded characters.
	raw  string
	text string

	// baseIndent is the indent the subtree's whitespace was written for
	// while the node is detached.
	baseIndent string

	// sourceID is the correlation id handed to the evaluation engine.
	sourceID string
}

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the tag name of an element, or "" for fragments.
func (n *Node) Name() string { return n.name }

// Parent returns the parent element, or nil for the project element and for
// detached nodes.
func (n *Node) Parent() *Node { return n.parent }

// Document returns the document that owns n.
func (n *Node) Document() *Document { return n.doc }

// IsElement reports whether n is an element rather than a fragment.
func (n *Node) IsElement() bool { return n.kind.IsElement() }

// Raw returns the source text of a fragment.
func (n *Node) Raw() string { return n.raw }

// Children returns a copy of the child sequence, fragments included.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Elements yields the element children of n in document order.
// The sequence reads the live child list; it is not a snapshot.
func (n *Node) Elements() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, c := range n.children {
			if c.IsElement() && !yield(c) {
				return
			}
		}
	}
}

// ElementsOfKind yields the element children of n with the given kind.
func (n *Node) ElementsOfKind(k Kind) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, c := range n.children {
			if c.kind == k && !yield(c) {
				return
			}
		}
	}
}

// Child returns the first element child with the given tag name.
func (n *Node) Child(name string) *Node {
	for c := range n.Elements() {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns a copy of the attributes in their current order.
func (n *Node) Attrs() []Attr {
	return slices.Clone(n.attrs)
}

// Condition returns the Condition attribute, or "" when unconditional.
func (n *Node) Condition() string {
	v, _ := n.Attr("Condition")
	return v
}

// Label returns the Label attribute.
func (n *Node) Label() string {
	v, _ := n.Attr("Label")
	return v
}

// Include returns the Include attribute of an item.
func (n *Node) Include() string {
	v, _ := n.Attr("Include")
	return v
}

// Value returns the text content of an element: the decoded character data
// of its children, with nested elements contributing their markup.
func (n *Node) Value() string {
	if !n.IsElement() {
		return n.text
	}
	var b strings.Builder
	for _, c := range n.children {
		switch c.kind {
		case KindText, KindWhitespace:
			b.WriteString(c.text)
		case KindComment, KindProcInst, KindDirective:
		default:
			writeNode(&b, c, nil)
		}
	}
	return b.String()
}

// Metadata returns the value of the named metadata on an item, looking at
// child elements first and falling back to attributes.
func (n *Node) Metadata(name string) (string, bool) {
	if m := n.Child(name); m != nil {
		return m.Value(), true
	}
	if isReservedItemAttr(name) {
		return "", false
	}
	return n.Attr(name)
}

// String returns the serialized markup of n and its subtree.
func (n *Node) String() string {
	var b strings.Builder
	writeNode(&b, n, nil)
	return b.String()
}

// indexOf returns the position of child in n.children, or -1.
func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.children, child)
}

// attached reports whether n hangs off its document's project element.
func (n *Node) attached() bool {
	if n.doc == nil {
		return false
	}
	root := &n.doc.Node
	for p := n; p != nil; p = p.parent {
		if p == root {
			return true
		}
	}
	return false
}

// ancestorOf reports whether n is m or one of m's ancestors.
func (n *Node) ancestorOf(m *Node) bool {
	for p := m; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// walk calls fn for n and every descendant in document order.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

func isReservedItemAttr(name string) bool {
	switch name {
	case "Include", "Exclude", "Remove", "Update", "Condition", "Label",
		"KeepMetadata", "RemoveMetadata", "KeepDuplicates", CorrelationAttribute:
		return true
	}
	return false
}
