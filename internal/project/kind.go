package project

// Kind identifies the variant of a Node.
type Kind int

const (
	// KindDocument is the root <Project> element.
	KindDocument Kind = iota
	KindPropertyGroup
	KindItemGroup
	KindImportGroup
	KindImport
	KindTarget
	KindChoose
	// KindChooseOption is a <When> or <Otherwise> branch of a Choose.
	KindChooseOption
	KindProjectExtensions
	KindItem
	// KindProperty is a property inside a property group, or a metadata
	// element inside an item.
	KindProperty
	// KindPassthrough is any element this package does not model. Its whole
	// subtree is kept as read.
	KindPassthrough

	// KindWhitespace is character data made only of whitespace.
	KindWhitespace
	// KindText is any other character data, including CDATA sections.
	KindText
	KindComment
	KindProcInst
	KindDirective
)

var kindNames = [...]string{
	KindDocument:          "Document",
	KindPropertyGroup:     "PropertyGroup",
	KindItemGroup:         "ItemGroup",
	KindImportGroup:       "ImportGroup",
	KindImport:            "Import",
	KindTarget:            "Target",
	KindChoose:            "Choose",
	KindChooseOption:      "ChooseOption",
	KindProjectExtensions: "ProjectExtensions",
	KindItem:              "Item",
	KindProperty:          "Property",
	KindPassthrough:       "Passthrough",
	KindWhitespace:        "Whitespace",
	KindText:              "Text",
	KindComment:           "Comment",
	KindProcInst:          "ProcInst",
	KindDirective:         "Directive",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsElement reports whether k is an element variant rather than a fragment.
func (k Kind) IsElement() bool {
	return k <= KindPassthrough
}

// Tag names of the modelled elements.
const (
	TagProject           = "Project"
	TagPropertyGroup     = "PropertyGroup"
	TagItemGroup         = "ItemGroup"
	TagImportGroup       = "ImportGroup"
	TagImport            = "Import"
	TagTarget            = "Target"
	TagChoose            = "Choose"
	TagWhen              = "When"
	TagOtherwise         = "Otherwise"
	TagProjectExtensions = "ProjectExtensions"
)

// classify maps a tag appearing under a parent of the given kind to the node
// variant it becomes. It is the only place element variants are decided;
// anything unrecognised is passthrough.
func classify(parent Kind, tag string) Kind {
	switch parent {
	case KindDocument:
		switch tag {
		case TagPropertyGroup:
			return KindPropertyGroup
		case TagItemGroup:
			return KindItemGroup
		case TagImportGroup:
			return KindImportGroup
		case TagImport:
			return KindImport
		case TagTarget:
			return KindTarget
		case TagChoose:
			return KindChoose
		case TagProjectExtensions:
			return KindProjectExtensions
		}
	case KindPropertyGroup:
		return KindProperty
	case KindItemGroup:
		return KindItem
	case KindItem:
		return KindProperty
	case KindImportGroup:
		if tag == TagImport {
			return KindImport
		}
	case KindTarget:
		switch tag {
		case TagPropertyGroup:
			return KindPropertyGroup
		case TagItemGroup:
			return KindItemGroup
		}
	case KindChoose:
		if tag == TagWhen || tag == TagOtherwise {
			return KindChooseOption
		}
	case KindChooseOption:
		switch tag {
		case TagPropertyGroup:
			return KindPropertyGroup
		case TagItemGroup:
			return KindItemGroup
		case TagChoose:
			return KindChoose
		}
	}
	return KindPassthrough
}
