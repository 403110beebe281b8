package project

import (
	"strings"
	"unicode"
)

// newElement builds a detached element owned by d. It writes as an empty
// self-closing tag until children are added.
func (d *Document) newElement(kind Kind, name string, attrs ...Attr) *Node {
	n := &Node{kind: kind, name: name, doc: d, selfClosing: true, startDirty: true}
	for _, a := range attrs {
		if a.Value != "" {
			n.setAttr(a.Name, a.Value)
		}
	}
	return n
}

// CreatePropertyGroup returns a new detached property group.
func (d *Document) CreatePropertyGroup() *Node {
	return d.newElement(KindPropertyGroup, TagPropertyGroup)
}

// CreateItemGroup returns a new detached item group.
func (d *Document) CreateItemGroup() *Node {
	return d.newElement(KindItemGroup, TagItemGroup)
}

// CreateImportGroup returns a new detached import group.
func (d *Document) CreateImportGroup() *Node {
	return d.newElement(KindImportGroup, TagImportGroup)
}

// CreateImport returns a new detached import of the given project.
func (d *Document) CreateImport(project string) *Node {
	return d.newElement(KindImport, TagImport, Attr{Name: "Project", Value: project})
}

// CreateTarget returns a new detached target.
func (d *Document) CreateTarget(name string) *Node {
	return d.newElement(KindTarget, TagTarget, Attr{Name: "Name", Value: name})
}

// CreateItem returns a new detached item.
func (d *Document) CreateItem(itemType, include string) *Node {
	return d.newElement(KindItem, itemType, Attr{Name: "Include", Value: include})
}

// CreateProperty returns a new detached property holding value.
func (d *Document) CreateProperty(name, value string) *Node {
	n := d.newElement(KindProperty, name)
	n.setValue(value)
	return n
}

// CreateElement returns a new detached element with an arbitrary tag. Its
// variant is decided when it is inserted.
func (d *Document) CreateElement(name string) *Node {
	return d.newElement(KindPassthrough, name)
}

// validName reports whether s can be used as a tag name.
func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r), r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.' || r == ':'):
		default:
			return false
		}
	}
	return true
}

// checkInsert validates attaching child under n.
func (n *Node) checkInsert(op string, child *Node) error {
	switch {
	case n == nil || child == nil || !n.IsElement() || !child.IsElement():
		return invalidState(op, ErrWrongKind)
	case child.doc != n.doc:
		return invalidState(op, ErrForeignNode)
	case child.kind == KindDocument:
		return invalidState(op, ErrRootElement)
	case child.parent != nil:
		return invalidState(op, ErrAttached)
	case child.ancestorOf(n):
		return invalidState(op, ErrCycle)
	}
	return nil
}

func (n *Node) checkRef(op string, ref *Node) error {
	if ref == nil || ref.parent != n || !ref.IsElement() {
		return invalidState(op, ErrNotChild)
	}
	return nil
}

// AppendChild attaches child as the last element of n, indented like its
// siblings. child must be a detached element of the same document.
func (n *Node) AppendChild(child *Node) error {
	if err := n.checkInsert("AppendChild", child); err != nil {
		return err
	}
	return n.doc.mutate("AppendChild", func() error {
		appendChild(n, child)
		return nil
	})
}

// InsertBefore attaches child directly before ref, an element child of n.
func (n *Node) InsertBefore(child, ref *Node) error {
	if err := n.checkInsert("InsertBefore", child); err != nil {
		return err
	}
	if err := n.checkRef("InsertBefore", ref); err != nil {
		return err
	}
	return n.doc.mutate("InsertBefore", func() error {
		insertBefore(n, child, ref)
		return nil
	})
}

// InsertAfter attaches child directly after ref, an element child of n.
func (n *Node) InsertAfter(child, ref *Node) error {
	if err := n.checkInsert("InsertAfter", child); err != nil {
		return err
	}
	if err := n.checkRef("InsertAfter", ref); err != nil {
		return err
	}
	return n.doc.mutate("InsertAfter", func() error {
		insertAfter(n, child, ref)
		return nil
	})
}

func (n *Node) checkRemove(op string) error {
	switch {
	case n == nil || !n.IsElement():
		return invalidState(op, ErrWrongKind)
	case n.kind == KindDocument:
		return invalidState(op, ErrRootElement)
	case n.parent == nil:
		return invalidState(op, ErrDetached)
	}
	return nil
}

// Remove detaches n from its parent and repairs the surrounding whitespace.
// The node stays owned by its document and may be inserted again.
func (n *Node) Remove() error {
	if err := n.checkRemove("Remove"); err != nil {
		return err
	}
	return n.doc.mutate("Remove", func() error {
		detach(n)
		n.doc.pruneBestGroups()
		return nil
	})
}

// Rename changes the tag name of an element. The variant is re-decided from
// the new name.
func (n *Node) Rename(name string) error {
	switch {
	case n == nil || !n.IsElement():
		return invalidState("Rename", ErrWrongKind)
	case n.kind == KindDocument:
		return invalidState("Rename", ErrRootElement)
	case !validName(name):
		return invalidState("Rename", ErrInvalidName)
	}
	return n.doc.mutate("Rename", func() error {
		n.name = name
		n.startDirty = true
		n.rawEnd = ""
		if n.parent != nil {
			reclassify(n.parent.kind, n)
		}
		n.doc.pruneBestGroups()
		return nil
	})
}

// SetValue replaces the content of an element with escaped text.
func (n *Node) SetValue(value string) error {
	if n == nil || !n.IsElement() || n.kind == KindDocument {
		return invalidState("SetValue", ErrWrongKind)
	}
	return n.doc.mutate("SetValue", func() error {
		n.setValue(value)
		return nil
	})
}

func (n *Node) setValue(value string) {
	clear(n.children)
	n.children = n.children[:0]
	if value == "" {
		return
	}
	n.open()
	t := &Node{kind: KindText, doc: n.doc, parent: n, raw: textEscaper.Replace(value), text: value}
	if isWhitespace(value) {
		t.kind = KindWhitespace
	}
	n.children = append(n.children, t)
}

// Metadata is a name/value pair attached to an item.
type Metadata struct {
	Name  string
	Value string
}

// SetMetadata sets metadata on an item. An existing metadata element or
// attribute is updated in place; otherwise a new element is appended.
func (n *Node) SetMetadata(name, value string) error {
	if n == nil || n.kind != KindItem {
		return invalidState("SetMetadata", ErrWrongKind)
	}
	if !validName(name) || isReservedItemAttr(name) {
		return invalidState("SetMetadata", ErrInvalidName)
	}
	return n.doc.mutate("SetMetadata", func() error {
		n.setMetadata(name, value)
		return nil
	})
}

func (n *Node) setMetadata(name, value string) {
	if m := n.Child(name); m != nil {
		m.setValue(value)
		return
	}
	if _, ok := n.Attr(name); ok {
		n.setAttr(name, value)
		return
	}
	appendChild(n, n.doc.CreateProperty(name, value))
}

// RemoveMetadata removes the named metadata element or attribute from an
// item. Removing absent metadata is not an error.
func (n *Node) RemoveMetadata(name string) error {
	if n == nil || n.kind != KindItem {
		return invalidState("RemoveMetadata", ErrWrongKind)
	}
	return n.doc.mutate("RemoveMetadata", func() error {
		if m := n.Child(name); m != nil {
			detach(m)
			if onlyWhitespace(n.children) {
				n.children = n.children[:0]
				n.selfClosing = true
				n.startDirty = true
			}
			return nil
		}
		if !isReservedItemAttr(name) {
			n.removeAttr(name)
		}
		return nil
	})
}

func onlyWhitespace(nodes []*Node) bool {
	for _, c := range nodes {
		if c.kind != KindWhitespace {
			return false
		}
	}
	return true
}

func (d *Document) checkMove(op string, n, ref *Node) error {
	if err := n.checkRemove(op); err != nil {
		return err
	}
	switch {
	case ref == nil || !ref.IsElement() || ref.parent == nil:
		return invalidState(op, ErrNotChild)
	case n.doc != d || ref.doc != d:
		return invalidState(op, ErrForeignNode)
	case n.ancestorOf(ref):
		return invalidState(op, ErrCycle)
	}
	return nil
}

// MoveBefore moves n so it directly precedes ref, re-indenting n's subtree
// for its new depth.
func (d *Document) MoveBefore(n, ref *Node) error {
	if err := d.checkMove("MoveBefore", n, ref); err != nil {
		return err
	}
	return d.mutate("MoveBefore", func() error {
		detach(n)
		insertBefore(ref.parent, n, ref)
		d.pruneBestGroups()
		return nil
	})
}

// MoveAfter moves n so it directly follows ref.
func (d *Document) MoveAfter(n, ref *Node) error {
	if err := d.checkMove("MoveAfter", n, ref); err != nil {
		return err
	}
	return d.mutate("MoveAfter", func() error {
		detach(n)
		insertAfter(ref.parent, n, ref)
		d.pruneBestGroups()
		return nil
	})
}

// Describe renders an element as its tag name plus its first identifying
// attribute, e.g. Compile[Include=a.cs], for logs and messages.
func (n *Node) Describe() string {
	var b strings.Builder
	b.WriteString(n.name)
	for _, key := range []string{"Include", "Name", "Project", "Condition"} {
		if v, ok := n.Attr(key); ok {
			b.WriteString("[" + key + "=" + v + "]")
			break
		}
	}
	return b.String()
}
