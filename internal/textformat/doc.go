// Package textformat detects and applies the on-disk text conventions of a
// project document: byte-order mark, character encoding and newline style.
//
// The project package never inspects raw bytes for these properties itself.
// It asks this package for a Format when loading and hands the Format back
// when writing, so a document that was not edited is written with exactly the
// bytes it was read from.
//
// Supported encodings are UTF-8 (with or without BOM) and UTF-16 in either byte
// order. UTF-16 input is decoded to UTF-8 for parsing and encoded back on write.
package textformat
