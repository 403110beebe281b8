package project

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/roach88/projdoc/internal/textformat"
)

// Namespace is the schema identifier of project documents. It is a
// process-wide constant and needs no synchronization.
const Namespace = "http://schemas.microsoft.com/developer/msbuild/2003"

// DefaultToolsVersion is written on documents created with New.
const DefaultToolsVersion = "4.0"

// Document is a parsed or newly created project document.
//
// Document embeds the project element itself, so the Node methods apply to
// the root. The prolog (declaration, comments and whitespace before the root)
// and epilog (whatever follows it) are kept as fragments.
type Document struct {
	Node

	prolog  []*Node
	epilog  []*Node
	hasDecl bool
	format  textformat.Format
	path    string

	changes ChangeTracker

	sharedMu sync.RWMutex
	isWriter func() bool

	bestGroups map[string]*Node
	reserved   map[string]*Node

	logger *slog.Logger
	gate   *gate
	closed atomic.Bool
}

// Option configures a Document.
type Option func(*config)

type config struct {
	format    *textformat.Format
	path      string
	logger    *slog.Logger
	factory   EngineFactory
	borrowed  map[EngineKind]Engine
	kind      EngineKind
	ids       IDGenerator
	correlate bool
}

// WithTextFormat sets the text format instead of detecting it.
func WithTextFormat(f textformat.Format) Option {
	return func(c *config) { c.format = &f }
}

// WithPath sets the identity the document is loaded and evaluated under.
func WithPath(path string) Option {
	return func(c *config) { c.path = path }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithEngineFactory supplies a constructor for engines the document will own
// privately and dispose of on Close.
func WithEngineFactory(f EngineFactory) Option {
	return func(c *config) { c.factory = f }
}

// WithEngine lends the document a shared engine for the given kind. Borrowed
// engines are never closed by the document; their handles are only unloaded.
func WithEngine(kind EngineKind, e Engine) Option {
	return func(c *config) {
		if c.borrowed == nil {
			c.borrowed = make(map[EngineKind]Engine)
		}
		c.borrowed[kind] = e
	}
}

// WithEngineKind selects the engine used for evaluation. The default is
// FullEngine.
func WithEngineKind(kind EngineKind) Option {
	return func(c *config) { c.kind = kind }
}

// WithIDGenerator sets the generator for item correlation ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *config) { c.ids = g }
}

// WithCorrelation controls whether items are tagged with correlation ids
// when serialized for evaluation. It is on by default.
func WithCorrelation(on bool) Option {
	return func(c *config) { c.correlate = on }
}

func newConfig(opts []Option) *config {
	c := &config{kind: FullEngine, correlate: true}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.ids == nil {
		c.ids = UUIDv7Generator{}
	}
	return c
}

func newDocument(c *config) *Document {
	d := &Document{
		path:       c.path,
		format:     textformat.Default,
		bestGroups: make(map[string]*Node),
		reserved:   make(map[string]*Node),
		logger:     c.logger,
	}
	if c.format != nil {
		d.format = *c.format
	}
	d.Node.kind = KindDocument
	d.Node.name = TagProject
	d.Node.doc = d
	d.gate = newGate(d, c)
	return d
}

// New creates an empty document: a declaration, a namespaced project element
// and one empty property group.
func New(opts ...Option) *Document {
	c := newConfig(opts)
	f := textformat.Default
	if c.format != nil {
		f = *c.format
	}
	nl := f.Newline
	text := `<?xml version="1.0" encoding="utf-8"?>` + nl +
		`<Project ToolsVersion="` + DefaultToolsVersion + `" xmlns="` + Namespace + `">` + nl +
		indentStep + `<PropertyGroup />` + nl +
		`</Project>` + nl
	d, err := parseText(text, c, f)
	if err != nil {
		panic(fmt.Sprintf("project: synthesized document does not parse: %v", err))
	}
	return d
}

// Path returns the identity of the document.
func (d *Document) Path() string { return d.path }

// SetPath changes the identity of the document. It is not an edit and does
// not bump the version, but the next evaluation is keyed by the new path.
func (d *Document) SetPath(path string) {
	d.gate.mu.Lock()
	defer d.gate.mu.Unlock()
	d.path = path
	d.gate.invalidate()
}

// Format returns the text format the document is written in.
func (d *Document) Format() textformat.Format { return d.format }

// HasDeclaration reports whether the document starts with an XML declaration.
func (d *Document) HasDeclaration() bool { return d.hasDecl }

// Prolog returns the text preceding the project element, declaration included.
func (d *Document) Prolog() string {
	var b strings.Builder
	for _, n := range d.prolog {
		b.WriteString(n.raw)
	}
	return b.String()
}

// Version returns the change version. It increases by one with every edit.
func (d *Document) Version() int64 { return d.changes.Current() }

// DefaultTargets returns the DefaultTargets attribute of the project.
func (d *Document) DefaultTargets() string {
	v, _ := d.Attr("DefaultTargets")
	return v
}

// SetDefaultTargets sets the DefaultTargets attribute; "" removes it.
func (d *Document) SetDefaultTargets(targets string) error {
	return d.mutate("SetDefaultTargets", func() error {
		d.setOrRemoveRootAttr("DefaultTargets", targets)
		return nil
	})
}

// ToolsVersion returns the ToolsVersion attribute of the project.
func (d *Document) ToolsVersion() string {
	v, _ := d.Attr("ToolsVersion")
	return v
}

// SetToolsVersion sets the ToolsVersion attribute; "" removes it.
func (d *Document) SetToolsVersion(version string) error {
	return d.mutate("SetToolsVersion", func() error {
		d.setOrRemoveRootAttr("ToolsVersion", version)
		return nil
	})
}

func (d *Document) setOrRemoveRootAttr(name, value string) {
	if value == "" {
		d.Node.removeAttr(name)
		return
	}
	d.Node.setAttr(name, value)
}

// MarkShared marks the document as shared between goroutines. From then on
// every mutating call must satisfy isWriter, the predicate identifying the
// designated writer context, or it fails with ConcurrencyViolationError.
// Passing nil unmarks the document. Once shared, only the current writer may
// replace or clear the predicate.
func (d *Document) MarkShared(isWriter func() bool) error {
	d.sharedMu.Lock()
	defer d.sharedMu.Unlock()
	if d.isWriter != nil && !d.isWriter() {
		return &ConcurrencyViolationError{Op: "MarkShared"}
	}
	d.isWriter = isWriter
	return nil
}

// IsShared reports whether MarkShared is in effect.
func (d *Document) IsShared() bool {
	d.sharedMu.RLock()
	defer d.sharedMu.RUnlock()
	return d.isWriter != nil
}

func (d *Document) checkWriter(op string) error {
	d.sharedMu.RLock()
	isWriter := d.isWriter
	d.sharedMu.RUnlock()
	if isWriter != nil && !isWriter() {
		return &ConcurrencyViolationError{Op: op}
	}
	return nil
}

// mutate runs fn as one edit: it checks the writer, runs fn and bumps the
// version once if fn succeeds. fn must validate before it changes anything.
func (d *Document) mutate(op string, fn func() error) error {
	if d == nil {
		return invalidState(op, ErrDetached)
	}
	if err := d.checkWriter(op); err != nil {
		return err
	}
	if d.closed.Load() {
		return invalidState(op, ErrClosed)
	}
	if err := fn(); err != nil {
		return err
	}
	d.changes.Next()
	return nil
}

// Close releases the evaluation gate: the cached evaluated view is unloaded
// and engines the document owns are closed. Further edits fail.
func (d *Document) Close() error {
	if err := d.checkWriter("Close"); err != nil {
		return err
	}
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	return d.gate.close()
}
