package project

import (
	"io"
	"os"
	"strings"

	"github.com/roach88/projdoc/internal/textformat"
)

// CorrelationAttribute is the attribute carrying an item's correlation id in
// text serialized for evaluation. It never appears in saved text.
const CorrelationAttribute = "projdoc-source-id"

// writeOptions alters serialization. A nil *writeOptions writes the tree as
// it is.
type writeOptions struct {
	// sourceID returns the correlation id of an item; when set, every item
	// start tag is regenerated with the id attached.
	sourceID func(*Node) string
}

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;",
	)
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// writeNode appends the markup of n and its subtree to b. Fragments and
// unchanged tags are copied verbatim.
func writeNode(b *strings.Builder, n *Node, opts *writeOptions) {
	if !n.IsElement() {
		b.WriteString(n.raw)
		return
	}
	var extra *Attr
	if opts != nil && opts.sourceID != nil && n.kind == KindItem {
		extra = &Attr{Name: CorrelationAttribute, Value: opts.sourceID(n)}
	}
	empty := n.selfClosing && len(n.children) == 0
	switch {
	case n.startDirty || n.rawStart == "" || extra != nil:
		writeStartTag(b, n, extra, empty)
	default:
		b.WriteString(n.rawStart)
	}
	if empty {
		return
	}
	for _, c := range n.children {
		writeNode(b, c, opts)
	}
	if n.rawEnd != "" {
		b.WriteString(n.rawEnd)
	} else {
		b.WriteString("</" + n.name + ">")
	}
}

func writeStartTag(b *strings.Builder, n *Node, extra *Attr, empty bool) {
	b.WriteByte('<')
	b.WriteString(n.name)
	for _, a := range n.attrs {
		writeAttr(b, a)
	}
	if extra != nil {
		writeAttr(b, *extra)
	}
	if empty {
		b.WriteString(" />")
	} else {
		b.WriteByte('>')
	}
}

func writeAttr(b *strings.Builder, a Attr) {
	b.WriteByte(' ')
	b.WriteString(a.Name)
	b.WriteString(`="`)
	attrEscaper.WriteString(b, a.Value)
	b.WriteByte('"')
}

// String returns the whole document as text: prolog, project element and
// epilog. The byte-order mark and encoding are applied by Write.
func (d *Document) String() string {
	return d.text(nil)
}

func (d *Document) text(opts *writeOptions) string {
	var b strings.Builder
	for _, n := range d.prolog {
		b.WriteString(n.raw)
	}
	writeNode(&b, &d.Node, opts)
	for _, n := range d.epilog {
		b.WriteString(n.raw)
	}
	return b.String()
}

// Write serializes the document in its text format. An unmodified document
// writes back exactly the bytes it was parsed from.
func (d *Document) Write() ([]byte, error) {
	return textformat.Encode([]byte(d.String()), d.format)
}

// WriteTo writes the serialized document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := d.Write()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Save writes the document to path, or to its own path when path is empty.
// Saving under a new path makes that path the document identity.
func (d *Document) Save(path string) error {
	if path == "" {
		path = d.path
	}
	if path == "" {
		return invalidState("Save", ErrNoPath)
	}
	data, err := d.Write()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	if path != d.path {
		d.SetPath(path)
	}
	return nil
}
