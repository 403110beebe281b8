package project

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/projdoc/internal/ir"
)

// EngineKind identifies one of the interchangeable evaluation engines.
type EngineKind string

const (
	// LegacyEngine evaluates the document on its own, ignoring imports.
	LegacyEngine EngineKind = "legacy"

	// FullEngine evaluates the document together with its imports.
	FullEngine EngineKind = "full"
)

// Engine builds evaluated views from serialized project text.
type Engine interface {
	// Load evaluates text under the given identity (a file path, used to
	// resolve relative imports).
	Load(ctx context.Context, identity string, text []byte) (Evaluation, error)

	// Unload releases a view produced by Load.
	Unload(ev Evaluation)

	// Close disposes of the engine.
	Close() error
}

// Evaluation is an evaluated view: properties expanded, conditions resolved.
// The unfiltered variants include items and targets whose condition was
// false.
type Evaluation interface {
	Properties() []ir.Property
	Items() []ir.Item
	AllItems() []ir.Item
	Targets() []ir.Target
	AllTargets() []ir.Target

	// Occurrences counts the evaluated items that came from the source item
	// with the given correlation id.
	Occurrences(sourceID string) int

	Snapshot() ir.Snapshot
}

// EngineFactory creates an engine of the given kind for a document to own.
type EngineFactory func(kind EngineKind) (Engine, error)

// gate caches the evaluated view of a document.
//
// The state is either empty or built at (version, kind, path). A build is
// reused while all three match the document. Concurrent callers that find
// it stale share a single rebuild and its outcome, failure included.
type gate struct {
	doc    *Document
	logger *slog.Logger
	flight singleflight.Group

	mu        sync.Mutex
	kind      EngineKind
	factory   EngineFactory
	borrowed  map[EngineKind]Engine
	owned     map[EngineKind]Engine
	ids       IDGenerator
	correlate bool

	handle       Evaluation
	handleEngine Engine
	builtVersion int64
	builtKind    EngineKind
	builtPath    string
}

func newGate(d *Document, c *config) *gate {
	return &gate{
		doc:       d,
		logger:    c.logger,
		kind:      c.kind,
		factory:   c.factory,
		borrowed:  c.borrowed,
		owned:     make(map[EngineKind]Engine),
		ids:       c.ids,
		correlate: c.correlate,
	}
}

func (g *gate) fresh() bool {
	return g.handle != nil &&
		g.builtVersion == g.doc.Version() &&
		g.builtKind == g.kind &&
		g.builtPath == g.doc.path
}

// acquire returns the cached view, rebuilding it when stale. The build runs
// detached from the cancellation of whichever caller started it, since every
// concurrent caller shares its outcome; ctx values still reach the engine.
func (g *gate) acquire(ctx context.Context) (Evaluation, error) {
	build := context.WithoutCancel(ctx)
	v, err, _ := g.flight.Do("acquire", func() (any, error) {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.doc.closed.Load() {
			return nil, invalidState("Evaluate", ErrClosed)
		}
		if g.fresh() {
			return g.handle, nil
		}
		return g.rebuild(build)
	})
	if err != nil {
		return nil, err
	}
	return v.(Evaluation), nil
}

// rebuild replaces the cached view. On failure the gate is left empty.
// Callers hold g.mu.
func (g *gate) rebuild(ctx context.Context) (Evaluation, error) {
	d := g.doc
	g.invalidate()

	version := d.Version()
	fail := func(err error) error {
		g.logger.Warn("evaluation failed",
			"path", d.path,
			"version", version,
			"engine", g.kind,
			"error", err,
		)
		return &EvaluationError{Path: d.path, Engine: g.kind, Version: version, Err: err}
	}

	eng, err := g.engine(g.kind)
	if err != nil {
		return nil, fail(err)
	}

	var opts *writeOptions
	if g.correlate {
		opts = &writeOptions{sourceID: g.sourceID}
	}
	text := d.text(opts)

	g.logger.Debug("rebuilding evaluation",
		"path", d.path,
		"version", version,
		"engine", g.kind,
	)
	ev, err := eng.Load(ctx, d.path, []byte(text))
	if err != nil {
		return nil, fail(err)
	}
	g.handle = ev
	g.handleEngine = eng
	g.builtVersion = version
	g.builtKind = g.kind
	g.builtPath = d.path
	return ev, nil
}

// engine returns the engine for kind: a borrowed one, else one the gate
// already owns, else a new one from the factory.
func (g *gate) engine(kind EngineKind) (Engine, error) {
	if e, ok := g.borrowed[kind]; ok {
		return e, nil
	}
	if e, ok := g.owned[kind]; ok {
		return e, nil
	}
	if g.factory == nil {
		return nil, ErrNoEngine
	}
	e, err := g.factory(kind)
	if err != nil {
		return nil, err
	}
	g.owned[kind] = e
	return e, nil
}

func (g *gate) sourceID(item *Node) string {
	if item.sourceID == "" {
		item.sourceID = g.ids.Generate()
	}
	return item.sourceID
}

// invalidate unloads the cached view. Callers hold g.mu.
func (g *gate) invalidate() {
	if g.handle == nil {
		return
	}
	g.handleEngine.Unload(g.handle)
	g.handle = nil
	g.handleEngine = nil
}

// close unloads the cached view and disposes of owned engines. Borrowed
// engines are left running.
func (g *gate) close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.invalidate()
	var errs []error
	for kind, e := range g.owned {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(g.owned, kind)
	}
	return errors.Join(errs...)
}

// Evaluate returns the evaluated view of the document, building it when the
// document changed since the last build or the engine selection did.
// Without a change in between, repeated calls return the same view.
func (d *Document) Evaluate(ctx context.Context) (Evaluation, error) {
	return d.gate.acquire(ctx)
}

// EngineKind returns the selected evaluation engine.
func (d *Document) EngineKind() EngineKind {
	d.gate.mu.Lock()
	defer d.gate.mu.Unlock()
	return d.gate.kind
}

// SetEngineKind selects the evaluation engine. It is not an edit, but the
// next Evaluate rebuilds with the new engine.
func (d *Document) SetEngineKind(kind EngineKind) error {
	if err := d.checkWriter("SetEngineKind"); err != nil {
		return err
	}
	d.gate.mu.Lock()
	defer d.gate.mu.Unlock()
	d.gate.kind = kind
	return nil
}

// SourceID returns the correlation id item was tagged with when the
// document was last serialized for evaluation, or "" if it never was.
func (d *Document) SourceID(item *Node) string {
	d.gate.mu.Lock()
	defer d.gate.mu.Unlock()
	return item.sourceID
}
