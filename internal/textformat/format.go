package textformat

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Newline conventions.
const (
	LF   = "\n"
	CRLF = "\r\n"
	CR   = "\r"
)

// Encoding identifies the character encoding of a document on disk.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF16LE
	UTF16BE
)

// String returns the encoding label used in XML declarations.
func (e Encoding) String() string {
	switch e {
	case UTF16LE, UTF16BE:
		return "utf-16"
	default:
		return "utf-8"
	}
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Format is the set of text conventions detected for a document.
type Format struct {
	// Newline is the line break used for text inserted by edits.
	// Existing text keeps whatever line breaks it already had.
	Newline string

	// BOM reports whether the document starts with a byte-order mark.
	BOM bool

	Encoding Encoding
}

// Default is the format given to documents created from scratch.
var Default = Format{Newline: LF, Encoding: UTF8}

// Detect inspects raw document bytes and reports their format.
// Input without a recognisable line break is reported as LF.
func Detect(data []byte) Format {
	f := Format{Newline: LF, Encoding: UTF8}
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		f.BOM = true
	case bytes.HasPrefix(data, bomUTF16LE):
		f.BOM = true
		f.Encoding = UTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		f.BOM = true
		f.Encoding = UTF16BE
	}

	text := data
	if f.Encoding != UTF8 {
		decoded, err := f.codec().NewDecoder().Bytes(data)
		if err != nil {
			return f
		}
		text = decoded
	}
	f.Newline = detectNewline(text)
	return f
}

// detectNewline reports the first line break found in text.
func detectNewline(text []byte) string {
	i := bytes.IndexAny(text, "\r\n")
	if i < 0 {
		return LF
	}
	if text[i] == '\n' {
		return LF
	}
	if i+1 < len(text) && text[i+1] == '\n' {
		return CRLF
	}
	return CR
}

// codec returns the x/text encoding matching f.
func (f Format) codec() encoding.Encoding {
	bom := unicode.IgnoreBOM
	if f.BOM {
		bom = unicode.UseBOM
	}
	switch f.Encoding {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, bom)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, bom)
	}
	if f.BOM {
		return unicode.UTF8BOM
	}
	return unicode.UTF8
}

// Decode converts raw document bytes in format f into UTF-8 text without a
// byte-order mark.
func Decode(data []byte, f Format) ([]byte, error) {
	if f.Encoding == UTF8 {
		return bytes.TrimPrefix(data, bomUTF8), nil
	}
	text, err := f.codec().NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Encoding, err)
	}
	return bytes.TrimPrefix(text, bomUTF8), nil
}

// Encode converts UTF-8 text into raw bytes in format f, adding a byte-order
// mark when f has one.
func Encode(text []byte, f Format) ([]byte, error) {
	if f.Encoding == UTF8 {
		if !f.BOM {
			return text, nil
		}
		out := make([]byte, 0, len(bomUTF8)+len(text))
		out = append(out, bomUTF8...)
		return append(out, text...), nil
	}
	data, err := f.codec().NewEncoder().Bytes(text)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Encoding, err)
	}
	return data, nil
}

// ReadFile reads the file at path and returns its decoded UTF-8 text together
// with the detected format.
func ReadFile(path string) ([]byte, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Format{}, err
	}
	f := Detect(data)
	text, err := Decode(data, f)
	if err != nil {
		return nil, Format{}, fmt.Errorf("%s: %w", path, err)
	}
	return text, f, nil
}
