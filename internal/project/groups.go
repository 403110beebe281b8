package project

import "iter"

// The typed views below read the live child list of the project element.
// They never cache and always reflect the current tree.

// PropertyGroups yields the top-level property groups.
func (d *Document) PropertyGroups() iter.Seq[*Node] { return d.ElementsOfKind(KindPropertyGroup) }

// ItemGroups yields the top-level item groups.
func (d *Document) ItemGroups() iter.Seq[*Node] { return d.ElementsOfKind(KindItemGroup) }

// ImportGroups yields the top-level import groups.
func (d *Document) ImportGroups() iter.Seq[*Node] { return d.ElementsOfKind(KindImportGroup) }

// Targets yields the targets.
func (d *Document) Targets() iter.Seq[*Node] { return d.ElementsOfKind(KindTarget) }

// Chooses yields the top-level Choose elements.
func (d *Document) Chooses() iter.Seq[*Node] { return d.ElementsOfKind(KindChoose) }

// Imports yields the imports of the project, including those nested in
// import groups, in document order.
func (d *Document) Imports() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for c := range d.Elements() {
			switch c.kind {
			case KindImport:
				if !yield(c) {
					return
				}
			case KindImportGroup:
				for imp := range c.ElementsOfKind(KindImport) {
					if !yield(imp) {
						return
					}
				}
			}
		}
	}
}

// GlobalPropertyGroup returns the first top-level property group without a
// condition, or nil.
func (d *Document) GlobalPropertyGroup() *Node {
	for g := range d.PropertyGroups() {
		if g.Condition() == "" {
			return g
		}
	}
	return nil
}

// lastTopLevel returns the last top-level element of any of the given kinds.
func (d *Document) lastTopLevel(kinds ...Kind) *Node {
	var last *Node
	for c := range d.Elements() {
		for _, k := range kinds {
			if c.kind == k {
				last = c
			}
		}
	}
	return last
}

func (d *Document) firstElement() *Node {
	for c := range d.Elements() {
		return c
	}
	return nil
}

// hasItem reports whether group directly holds an item of the given type.
func hasItem(group *Node, itemType string) bool {
	for it := range group.ElementsOfKind(KindItem) {
		if it.name == itemType {
			return true
		}
	}
	return false
}

// cachedBestGroup returns the memoized group for itemType if it is still a
// top-level group holding such an item.
func (d *Document) cachedBestGroup(itemType string) *Node {
	g, ok := d.bestGroups[itemType]
	if !ok {
		return nil
	}
	if g.parent != &d.Node || g.kind != KindItemGroup || !hasItem(g, itemType) {
		delete(d.bestGroups, itemType)
		return nil
	}
	return g
}

// findBestGroup returns the group items of itemType belong in without
// creating one.
func (d *Document) findBestGroup(itemType string) *Node {
	if g := d.cachedBestGroup(itemType); g != nil {
		return g
	}
	for g := range d.ItemGroups() {
		if hasItem(g, itemType) {
			d.bestGroups[itemType] = g
			return g
		}
	}
	return d.reservedGroup(itemType)
}

// reservedGroup returns the empty group BestItemGroup created for itemType
// if it is still a top-level item group.
func (d *Document) reservedGroup(itemType string) *Node {
	g, ok := d.reserved[itemType]
	if !ok {
		return nil
	}
	if g.parent != &d.Node || g.kind != KindItemGroup {
		delete(d.reserved, itemType)
		return nil
	}
	return g
}

// placeItemGroup inserts a new top-level item group after the last item
// group, else after the last property group, else at the end.
func (d *Document) placeItemGroup(g *Node) {
	if after := d.lastTopLevel(KindItemGroup); after != nil {
		insertAfter(&d.Node, g, after)
		return
	}
	if after := d.lastTopLevel(KindPropertyGroup); after != nil {
		insertAfter(&d.Node, g, after)
		return
	}
	appendChild(&d.Node, g)
}

// bestItemGroup returns the group for itemType, creating and placing an
// empty one when none holds such an item.
func (d *Document) bestItemGroup(itemType string) (g *Node, created bool) {
	if g := d.findBestGroup(itemType); g != nil {
		return g, false
	}
	g = d.CreateItemGroup()
	d.placeItemGroup(g)
	d.reserved[itemType] = g
	return g, true
}

// BestItemGroup returns the first item group already holding an item of
// itemType. When there is none, a new empty group is created and placed,
// which counts as an edit. The new group is reserved for itemType: later
// calls and AddItem reuse it while it stays in the document, but it enters
// the memo only once it holds an item.
func (d *Document) BestItemGroup(itemType string) (*Node, error) {
	if g := d.findBestGroup(itemType); g != nil {
		return g, nil
	}
	var g *Node
	err := d.mutate("BestItemGroup", func() error {
		g, _ = d.bestItemGroup(itemType)
		return nil
	})
	return g, err
}

// pruneBestGroups drops memoized groups that were removed or no longer hold
// an item of their type. Only managed removals call it; editing the tree
// through unmanaged paths can leave entries stale until the next lookup.
func (d *Document) pruneBestGroups() {
	for itemType := range d.bestGroups {
		d.cachedBestGroup(itemType)
	}
	for itemType := range d.reserved {
		d.reservedGroup(itemType)
	}
}
