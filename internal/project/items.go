package project

import "iter"

// descendants yields every element below n in document order.
func descendants(n *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		var visit func(*Node) bool
		visit = func(p *Node) bool {
			for _, c := range p.children {
				if !c.IsElement() {
					continue
				}
				if !yield(c) || !visit(c) {
					return false
				}
			}
			return true
		}
		visit(n)
	}
}

// Items yields the items of the given type anywhere in the project, in
// document order. An empty type yields every item.
func (d *Document) Items(itemType string) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := range descendants(&d.Node) {
			if n.kind == KindItem && (itemType == "" || n.name == itemType) && !yield(n) {
				return
			}
		}
	}
}

// FindItem returns the first item with the given type and Include, or nil.
func (d *Document) FindItem(itemType, include string) *Node {
	for it := range d.Items(itemType) {
		if it.Include() == include {
			return it
		}
	}
	return nil
}

// AddItem adds an item to the best group for its type, creating the group
// when needed. Items of one type stay together: the new item follows the
// last item of the same type in the group.
func (d *Document) AddItem(itemType, include string, metadata ...Metadata) (*Node, error) {
	if !validName(itemType) {
		return nil, invalidState("AddItem", ErrInvalidName)
	}
	for _, m := range metadata {
		if !validName(m.Name) || isReservedItemAttr(m.Name) {
			return nil, invalidState("AddItem", ErrInvalidName)
		}
	}
	item := d.CreateItem(itemType, include)
	err := d.mutate("AddItem", func() error {
		g, _ := d.bestItemGroup(itemType)
		var last *Node
		for it := range g.ElementsOfKind(KindItem) {
			if it.name == itemType {
				last = it
			}
		}
		if last != nil {
			insertAfter(g, item, last)
		} else {
			appendChild(g, item)
		}
		for _, m := range metadata {
			item.setMetadata(m.Name, m.Value)
		}
		d.bestGroups[itemType] = g
		delete(d.reserved, itemType)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem removes an item. With removeEmptyGroup, a group left without
// elements is removed as well, leaving no blank line behind.
func (d *Document) RemoveItem(item *Node, removeEmptyGroup bool) error {
	if item == nil || item.kind != KindItem {
		return invalidState("RemoveItem", ErrWrongKind)
	}
	if item.doc != d {
		return invalidState("RemoveItem", ErrForeignNode)
	}
	if item.parent == nil {
		return invalidState("RemoveItem", ErrDetached)
	}
	return d.mutate("RemoveItem", func() error {
		group := item.parent
		detach(item)
		if removeEmptyGroup && group.parent != nil && isEmptyGroup(group) {
			detach(group)
		}
		d.pruneBestGroups()
		return nil
	})
}

func isEmptyGroup(g *Node) bool {
	for range g.Elements() {
		return false
	}
	return true
}

// Property returns the element of the named property in the global
// property group, or nil.
func (d *Document) Property(name string) *Node {
	g := d.GlobalPropertyGroup()
	if g == nil {
		return nil
	}
	var found *Node
	for p := range g.ElementsOfKind(KindProperty) {
		if p.name == name {
			found = p
		}
	}
	return found
}

// SetProperty sets a property in the global property group. A missing
// property is appended; a missing global group is created first.
func (d *Document) SetProperty(name, value string) (*Node, error) {
	if !validName(name) {
		return nil, invalidState("SetProperty", ErrInvalidName)
	}
	var p *Node
	err := d.mutate("SetProperty", func() error {
		if p = d.Property(name); p != nil {
			p.setValue(value)
			return nil
		}
		g := d.GlobalPropertyGroup()
		if g == nil {
			g = d.CreatePropertyGroup()
			d.placePropertyGroup(g)
		}
		p = d.CreateProperty(name, value)
		appendChild(g, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveProperty removes the named property from the global property group.
// It reports whether a property was removed.
func (d *Document) RemoveProperty(name string) (bool, error) {
	p := d.Property(name)
	if p == nil {
		return false, nil
	}
	err := d.mutate("RemoveProperty", func() error {
		detach(p)
		return nil
	})
	return err == nil, err
}

// add places a new detached node as one edit.
func (d *Document) add(op string, n *Node, place func(*Node)) (*Node, error) {
	err := d.mutate(op, func() error {
		place(n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// placePropertyGroup inserts a new top-level property group after the last
// one, else at the top of the project.
func (d *Document) placePropertyGroup(g *Node) {
	if after := d.lastTopLevel(KindPropertyGroup); after != nil {
		insertAfter(&d.Node, g, after)
		return
	}
	d.placeAtTop(g)
}

func (d *Document) placeAtTop(n *Node) {
	if first := d.firstElement(); first != nil {
		insertBefore(&d.Node, n, first)
		return
	}
	appendChild(&d.Node, n)
}

// placeImport inserts a new top-level import or import group after the last
// one, else at the top of the project.
func (d *Document) placeImport(n *Node) {
	if after := d.lastTopLevel(KindImport, KindImportGroup); after != nil {
		insertAfter(&d.Node, n, after)
		return
	}
	d.placeAtTop(n)
}

// AddPropertyGroup adds a property group with the given condition after the
// last property group.
func (d *Document) AddPropertyGroup(condition string) (*Node, error) {
	g := d.newElement(KindPropertyGroup, TagPropertyGroup, Attr{Name: "Condition", Value: condition})
	return d.add("AddPropertyGroup", g, d.placePropertyGroup)
}

// AddItemGroup adds an item group with the given condition after the last
// item group.
func (d *Document) AddItemGroup(condition string) (*Node, error) {
	g := d.newElement(KindItemGroup, TagItemGroup, Attr{Name: "Condition", Value: condition})
	return d.add("AddItemGroup", g, d.placeItemGroup)
}

// AddImportGroup adds an import group with the given condition after the
// last import or import group.
func (d *Document) AddImportGroup(condition string) (*Node, error) {
	g := d.newElement(KindImportGroup, TagImportGroup, Attr{Name: "Condition", Value: condition})
	return d.add("AddImportGroup", g, d.placeImport)
}

// AddImport adds an import after the last top-level import or import group.
// With neither present it goes to the top of the project.
func (d *Document) AddImport(project, condition string) (*Node, error) {
	imp := d.newElement(KindImport, TagImport,
		Attr{Name: "Project", Value: project}, Attr{Name: "Condition", Value: condition})
	return d.add("AddImport", imp, d.placeImport)
}

// RemoveImport removes an import that is a direct child of the project
// element. Imports nested in an import group are refused with
// ErrNotDirectChild; remove those through the group.
func (d *Document) RemoveImport(imp *Node) error {
	switch {
	case imp == nil || imp.kind != KindImport:
		return invalidState("RemoveImport", ErrWrongKind)
	case imp.doc != d:
		return invalidState("RemoveImport", ErrForeignNode)
	case imp.parent != &d.Node:
		return invalidState("RemoveImport", ErrNotDirectChild)
	}
	return d.mutate("RemoveImport", func() error {
		detach(imp)
		return nil
	})
}

// AddTarget adds a target at the end of the project, ahead of any
// ProjectExtensions element. The target opens and closes on separate lines.
func (d *Document) AddTarget(name string) (*Node, error) {
	if name == "" {
		return nil, invalidState("AddTarget", ErrInvalidName)
	}
	return d.add("AddTarget", d.CreateTarget(name), func(t *Node) {
		if ext := d.extensionsElement(); ext != nil {
			insertBefore(&d.Node, t, ext)
		} else {
			appendChild(&d.Node, t)
		}
		expand(t)
	})
}

// Target returns the last target with the given name, or nil. Later
// definitions override earlier ones.
func (d *Document) Target(name string) *Node {
	var found *Node
	for t := range d.Targets() {
		if v, _ := t.Attr("Name"); v == name {
			found = t
		}
	}
	return found
}

// RemoveTarget removes every target with the given name and reports whether
// any was removed.
func (d *Document) RemoveTarget(name string) (bool, error) {
	var doomed []*Node
	for t := range d.Targets() {
		if v, _ := t.Attr("Name"); v == name {
			doomed = append(doomed, t)
		}
	}
	if len(doomed) == 0 {
		return false, nil
	}
	err := d.mutate("RemoveTarget", func() error {
		for _, t := range doomed {
			detach(t)
		}
		d.pruneBestGroups()
		return nil
	})
	return err == nil, err
}

// RemoveGroup removes a property group, item group, import group, Choose or
// target along with its contents.
func (d *Document) RemoveGroup(g *Node) error {
	if g == nil {
		return invalidState("RemoveGroup", ErrWrongKind)
	}
	switch g.kind {
	case KindPropertyGroup, KindItemGroup, KindImportGroup, KindChoose, KindTarget:
	default:
		return invalidState("RemoveGroup", ErrWrongKind)
	}
	if g.doc != d {
		return invalidState("RemoveGroup", ErrForeignNode)
	}
	if g.parent == nil {
		return invalidState("RemoveGroup", ErrDetached)
	}
	return d.mutate("RemoveGroup", func() error {
		detach(g)
		d.pruneBestGroups()
		return nil
	})
}
