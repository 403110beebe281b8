package engine

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/projdoc/internal/ir"
)

// Reserved property names. They are computed from file locations, cannot be
// set by the document and are not listed among the evaluated properties.
const (
	PropProjectDirectory  = "MSBuildProjectDirectory"
	PropProjectFile       = "MSBuildProjectFile"
	PropProjectName       = "MSBuildProjectName"
	PropThisFileDirectory = "MSBuildThisFileDirectory"
	PropThisFile          = "MSBuildThisFile"
)

// propertyTable holds property values during one evaluation. Names are
// case-insensitive; the spelling of the first definition is kept.
type propertyTable struct {
	index    map[string]int // folded name → position in list
	list     []ir.Property
	global   map[string]bool
	reserved map[string]string
}

func newPropertyTable(identity string, globals map[string]string) *propertyTable {
	t := &propertyTable{
		index:    make(map[string]int),
		global:   make(map[string]bool),
		reserved: make(map[string]string),
	}
	if identity != "" {
		base := filepath.Base(identity)
		t.reserved[fold(PropProjectDirectory)] = filepath.Dir(identity)
		t.reserved[fold(PropProjectFile)] = base
		t.reserved[fold(PropProjectName)] = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, name := range slices.Sorted(maps.Keys(globals)) {
		t.define(name, globals[name])
		t.global[fold(name)] = true
	}
	return t
}

func fold(name string) string { return strings.ToLower(name) }

// enterFile points the this-file properties at path.
func (t *propertyTable) enterFile(path string) {
	if path == "" {
		delete(t.reserved, fold(PropThisFileDirectory))
		delete(t.reserved, fold(PropThisFile))
		return
	}
	t.reserved[fold(PropThisFileDirectory)] = filepath.Dir(path) + string(filepath.Separator)
	t.reserved[fold(PropThisFile)] = filepath.Base(path)
}

func (t *propertyTable) get(name string) (string, bool) {
	key := fold(name)
	if v, ok := t.reserved[key]; ok {
		return v, true
	}
	if i, ok := t.index[key]; ok {
		return t.list[i].Value, true
	}
	return "", false
}

// set assigns a property from the document. Global and reserved properties
// keep their value; set reports whether the assignment took effect.
func (t *propertyTable) set(name, value string) bool {
	key := fold(name)
	if t.global[key] {
		return false
	}
	if _, ok := t.reserved[key]; ok {
		return false
	}
	t.define(name, value)
	return true
}

func (t *propertyTable) define(name, value string) {
	key := fold(name)
	if i, ok := t.index[key]; ok {
		t.list[i].Value = value
		return
	}
	t.index[key] = len(t.list)
	t.list = append(t.list, ir.Property{Name: name, Value: value})
}

// expand replaces $(Name) references with property values. Undefined
// properties expand to "". References that are not plain names, such as
// property functions, and item or metadata references are left as written.
func (t *propertyTable) expand(text string) string {
	if !strings.Contains(text, "$(") {
		return text
	}
	var b strings.Builder
	for {
		start := strings.Index(text, "$(")
		if start < 0 {
			b.WriteString(text)
			return b.String()
		}
		end := strings.IndexByte(text[start+2:], ')')
		if end < 0 {
			b.WriteString(text)
			return b.String()
		}
		name := strings.TrimSpace(text[start+2 : start+2+end])
		b.WriteString(text[:start])
		if isPropertyName(name) {
			v, _ := t.get(name)
			b.WriteString(v)
		} else {
			b.WriteString(text[start : start+3+end])
		}
		text = text[start+3+end:]
	}
}

func isPropertyName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}

// properties returns a copy of the evaluated properties in definition order.
func (t *propertyTable) properties() []ir.Property {
	out := make([]ir.Property, len(t.list))
	copy(out, t.list)
	return out
}
