package project

import "strings"

// Extension sections hold markup owned by other tools. Each section is a
// child element of ProjectExtensions whose content is stored and returned
// as an uninterpreted fragment.

func (d *Document) extensionsElement() *Node {
	for n := range d.ElementsOfKind(KindProjectExtensions) {
		return n
	}
	return nil
}

func (d *Document) extensionSection(section string) *Node {
	ext := d.extensionsElement()
	if ext == nil {
		return nil
	}
	return ext.Child(section)
}

// Extension returns the markup stored under section.
func (d *Document) Extension(section string) (string, bool) {
	sec := d.extensionSection(section)
	if sec == nil {
		return "", false
	}
	var b strings.Builder
	for _, c := range sec.children {
		writeNode(&b, c, nil)
	}
	return b.String(), true
}

// ExtensionSections returns the section names in document order.
func (d *Document) ExtensionSections() []string {
	ext := d.extensionsElement()
	if ext == nil {
		return nil
	}
	var names []string
	for sec := range ext.Elements() {
		names = append(names, sec.name)
	}
	return names
}

// SetExtension stores fragment under section, replacing what was there.
// The fragment must be well-formed markup on its own; it is kept exactly as
// given. ProjectExtensions is created at the end of the project on first use.
func (d *Document) SetExtension(section, fragment string) error {
	if !validName(section) {
		return invalidState("SetExtension", ErrInvalidName)
	}
	nodes, err := parseFragment(d, fragment)
	if err != nil {
		return &MalformedDocumentError{Path: d.path, Err: err}
	}
	return d.mutate("SetExtension", func() error {
		ext := d.extensionsElement()
		if ext == nil {
			ext = d.newElement(KindProjectExtensions, TagProjectExtensions)
			appendChild(&d.Node, ext)
		}
		sec := ext.Child(section)
		if sec == nil {
			sec = d.newElement(KindPassthrough, section)
			appendChild(ext, sec)
		}
		clear(sec.children)
		sec.children = sec.children[:0]
		if len(nodes) > 0 {
			sec.open()
		}
		for _, n := range nodes {
			attach(sec, n)
			sec.children = append(sec.children, n)
		}
		return nil
	})
}

// RemoveExtension removes section and reports whether it existed. The
// ProjectExtensions element goes with its last section.
func (d *Document) RemoveExtension(section string) (bool, error) {
	sec := d.extensionSection(section)
	if sec == nil {
		return false, nil
	}
	err := d.mutate("RemoveExtension", func() error {
		ext := sec.parent
		detach(sec)
		if isEmptyGroup(ext) {
			detach(ext)
		}
		return nil
	})
	return err == nil, err
}
