package project

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/projdoc/internal/textformat"
)

// Parse reads a project document from raw bytes.
//
// The text format (byte-order mark, encoding, newline style) comes from
// WithTextFormat, or from textformat.Detect when no format is given. Text that
// is not well-formed, or whose root is not a Project element, fails with
// MalformedDocumentError and yields no document.
func Parse(data []byte, opts ...Option) (*Document, error) {
	c := newConfig(opts)
	f := textformat.Detect(data)
	if c.format != nil {
		f = *c.format
	}
	text, err := textformat.Decode(data, f)
	if err != nil {
		return nil, &MalformedDocumentError{Path: c.path, Err: err}
	}
	return parseText(string(text), c, f)
}

// Load reads and parses the project file at path. The path becomes the
// document identity.
func Load(path string, opts ...Option) (*Document, error) {
	text, f, err := textformat.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := newConfig(append([]Option{WithPath(path)}, opts...))
	if c.format != nil {
		f = *c.format
	}
	return parseText(string(text), c, f)
}

func parseText(text string, c *config, f textformat.Format) (*Document, error) {
	d := newDocument(c)
	d.format = f
	p := newParser(text)
	if err := p.document(d); err != nil {
		return nil, &MalformedDocumentError{Path: c.path, Line: p.line(err), Err: err}
	}
	return d, nil
}

// parser turns a token stream into nodes. It uses the decoder's raw token
// mode for structure and slices every token's exact source text out of the
// input by offset, so nothing is re-encoded on the way back out.
type parser struct {
	src   string
	dec   *xml.Decoder
	stack []*Node
	last  int64
}

func newParser(src string) *parser {
	dec := xml.NewDecoder(strings.NewReader(src))
	dec.Strict = true
	// Input is already UTF-8; a declared encoding only describes the file.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	return &parser{src: src, dec: dec}
}

// next returns the next token and its exact source text.
func (p *parser) next() (xml.Token, string, error) {
	tok, err := p.dec.RawToken()
	if err != nil {
		return nil, "", err
	}
	end := p.dec.InputOffset()
	raw := p.src[p.last:end]
	p.last = end
	return xml.CopyToken(tok), raw, nil
}

func (p *parser) line(err error) int {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return se.Line
	}
	line, _ := p.dec.InputPos()
	return line
}

func (p *parser) top() *Node {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

// document parses a whole document into d.
func (p *parser) document(d *Document) error {
	seenRoot := false
	for {
		tok, raw, err := p.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		parent := p.top()

		if parent == nil {
			if se, ok := tok.(xml.StartElement); ok {
				if seenRoot {
					return fmt.Errorf("multiple root elements")
				}
				if se.Name.Local != TagProject {
					return fmt.Errorf("root element is %q, want %q", qualifiedName(se.Name), TagProject)
				}
				seenRoot = true
				root := &d.Node
				fillElement(root, se, raw)
				p.stack = append(p.stack, root)
				continue
			}
			frag, err := p.fragment(tok, raw, d)
			if err != nil {
				return err
			}
			if frag.kind == KindText {
				return fmt.Errorf("character data outside the root element")
			}
			if frag.kind == KindProcInst && !seenRoot && len(d.prolog) == 0 {
				if pi := tok.(xml.ProcInst); pi.Target == "xml" {
					d.hasDecl = true
				}
			}
			if seenRoot {
				d.epilog = append(d.epilog, frag)
			} else {
				d.prolog = append(d.prolog, frag)
			}
			continue
		}

		if err := p.content(tok, raw, parent, d); err != nil {
			return err
		}
	}
	if len(p.stack) > 0 {
		return fmt.Errorf("unexpected end of input: <%s> is not closed", p.top().name)
	}
	if !seenRoot {
		return fmt.Errorf("no root element")
	}
	return nil
}

// content handles one token inside an open element.
func (p *parser) content(tok xml.Token, raw string, parent *Node, d *Document) error {
	switch t := tok.(type) {
	case xml.StartElement:
		el := &Node{doc: d, parent: parent}
		fillElement(el, t, raw)
		el.kind = classify(parent.kind, el.name)
		parent.children = append(parent.children, el)
		p.stack = append(p.stack, el)
	case xml.EndElement:
		if name := qualifiedName(t.Name); name != parent.name {
			return fmt.Errorf("element <%s> closed by </%s>", parent.name, name)
		}
		if raw == "" {
			parent.selfClosing = true
		} else {
			parent.rawEnd = raw
		}
		p.stack = p.stack[:len(p.stack)-1]
	default:
		frag, err := p.fragment(tok, raw, d)
		if err != nil {
			return err
		}
		frag.parent = parent
		parent.children = append(parent.children, frag)
	}
	return nil
}

// fragment builds a non-element node from a token.
func (p *parser) fragment(tok xml.Token, raw string, d *Document) (*Node, error) {
	n := &Node{doc: d, raw: raw}
	switch t := tok.(type) {
	case xml.CharData:
		n.text = string(t)
		if isWhitespace(raw) {
			n.kind = KindWhitespace
		} else {
			n.kind = KindText
		}
	case xml.Comment:
		n.kind = KindComment
	case xml.ProcInst:
		n.kind = KindProcInst
	case xml.Directive:
		n.kind = KindDirective
	default:
		return nil, fmt.Errorf("unexpected token %T", tok)
	}
	return n, nil
}

func fillElement(el *Node, se xml.StartElement, raw string) {
	el.name = qualifiedName(se.Name)
	el.rawStart = raw
	el.attrs = make([]Attr, len(se.Attr))
	for i, a := range se.Attr {
		el.attrs[i] = Attr{Name: qualifiedName(a.Name), Value: a.Value}
	}
}

// qualifiedName renders a raw token name as it appeared in the source.
func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func isWhitespace(s string) bool {
	return s != "" && strings.Trim(s, " \t\r\n") == ""
}

// parseFragment parses a markup fragment (zero or more sibling nodes) into
// passthrough nodes owned by d.
func parseFragment(d *Document, fragment string) ([]*Node, error) {
	const open, closeTag = "<_fragment>", "</_fragment>"
	p := newParser(open + fragment + closeTag)
	holder := &Node{kind: KindPassthrough, doc: d}

	tok, _, err := p.next()
	if err != nil {
		return nil, err
	}
	if _, ok := tok.(xml.StartElement); !ok {
		return nil, fmt.Errorf("unexpected token %T", tok)
	}
	holder.name = "_fragment"
	p.stack = append(p.stack, holder)
	for len(p.stack) > 0 {
		tok, raw, err := p.next()
		if err == io.EOF {
			return nil, fmt.Errorf("unexpected end of fragment")
		}
		if err != nil {
			return nil, err
		}
		if err := p.content(tok, raw, p.top(), d); err != nil {
			return nil, err
		}
	}
	if _, _, err := p.next(); err != io.EOF {
		return nil, fmt.Errorf("fragment is not balanced")
	}
	for _, c := range holder.children {
		c.parent = nil
	}
	return holder.children, nil
}
