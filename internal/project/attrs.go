package project

import "slices"

// knownAttrs lists, per element kind, the attributes with a fixed position.
// A new known attribute goes ahead of the first attribute that is unknown or
// ranks after it; unknown ones are appended in the order they are set.
var knownAttrs = map[Kind][]string{
	KindDocument:      {"Sdk", "DefaultTargets", "InitialTargets", "ToolsVersion", "TreatAsLocalProperty", "xmlns"},
	KindPropertyGroup: {"Label", "Condition"},
	KindItemGroup:     {"Label", "Condition"},
	KindImportGroup:   {"Label", "Condition"},
	KindImport:        {"Project", "Sdk", "Version", "MinimumVersion", "Condition", "Label"},
	KindTarget: {"Name", "DependsOnTargets", "BeforeTargets", "AfterTargets", "Inputs", "Outputs",
		"Returns", "KeepDuplicateOutputs", "Condition", "Label"},
	KindItem: {"Include", "Exclude", "Remove", "Update", "KeepMetadata", "RemoveMetadata",
		"KeepDuplicates", "Condition", "Label"},
	KindProperty:     {"Condition", "Label"},
	KindChooseOption: {"Condition"},
}

func attrRank(k Kind, name string) int {
	return slices.Index(knownAttrs[k], name)
}

// setAttr sets or inserts an attribute without touching the version.
func (n *Node) setAttr(name, value string) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			if n.attrs[i].Value != value {
				n.attrs[i].Value = value
				n.startDirty = true
			}
			return
		}
	}
	n.startDirty = true
	rank := attrRank(n.kind, name)
	if rank >= 0 {
		for i, a := range n.attrs {
			if r := attrRank(n.kind, a.Name); r < 0 || r > rank {
				n.attrs = slices.Insert(n.attrs, i, Attr{Name: name, Value: value})
				return
			}
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

// removeAttr drops an attribute without touching the version.
func (n *Node) removeAttr(name string) bool {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = slices.Delete(n.attrs, i, i+1)
			n.startDirty = true
			return true
		}
	}
	return false
}

// SetAttr sets the named attribute, inserting it if absent.
func (n *Node) SetAttr(name, value string) error {
	if !n.IsElement() {
		return invalidState("SetAttr", ErrWrongKind)
	}
	if !validName(name) {
		return invalidState("SetAttr", ErrInvalidName)
	}
	return n.doc.mutate("SetAttr", func() error {
		n.setAttr(name, value)
		return nil
	})
}

// RemoveAttr removes the named attribute. Removing an absent attribute is
// not an error.
func (n *Node) RemoveAttr(name string) error {
	if !n.IsElement() {
		return invalidState("RemoveAttr", ErrWrongKind)
	}
	if !validName(name) {
		return invalidState("RemoveAttr", ErrInvalidName)
	}
	return n.doc.mutate("RemoveAttr", func() error {
		n.removeAttr(name)
		return nil
	})
}

// SetCondition sets the Condition attribute; an empty condition removes it.
func (n *Node) SetCondition(cond string) error {
	if !n.IsElement() {
		return invalidState("SetCondition", ErrWrongKind)
	}
	return n.doc.mutate("SetCondition", func() error {
		if cond == "" {
			n.removeAttr("Condition")
		} else {
			n.setAttr("Condition", cond)
		}
		return nil
	})
}

// SetLabel sets the Label attribute; an empty label removes it.
func (n *Node) SetLabel(label string) error {
	if !n.IsElement() {
		return invalidState("SetLabel", ErrWrongKind)
	}
	return n.doc.mutate("SetLabel", func() error {
		if label == "" {
			n.removeAttr("Label")
		} else {
			n.setAttr("Label", label)
		}
		return nil
	})
}

// SetInclude sets the Include attribute of an item.
func (n *Node) SetInclude(include string) error {
	if n.kind != KindItem {
		return invalidState("SetInclude", ErrWrongKind)
	}
	return n.doc.mutate("SetInclude", func() error {
		n.setAttr("Include", include)
		return nil
	})
}
