package engine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/roach88/projdoc/internal/compiler"
	"github.com/roach88/projdoc/internal/project"
)

var (
	_ project.Engine     = (*Engine)(nil)
	_ project.Evaluation = (*Evaluation)(nil)
)

// Engine evaluates project text into Evaluations.
//
// Thread-safety model:
//   - Load, Unload, Live and Close: safe from any goroutine
//   - Each Load runs on the caller's goroutine with its own state; only the
//     set of live evaluations is shared
type Engine struct {
	kind     project.EngineKind
	backend  compiler.Evaluator
	logger   *slog.Logger
	globals  map[string]string
	readFile func(path string) ([]byte, error)
	exists   func(path string) bool

	mu     sync.Mutex
	live   map[*Evaluation]struct{}
	closed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithGlobalProperties sets properties that are defined before evaluation
// starts and that the document cannot override.
func WithGlobalProperties(props map[string]string) Option {
	return func(e *Engine) {
		e.globals = maps.Clone(props)
	}
}

// WithFileReader sets how imported files are read. The default is
// os.ReadFile.
func WithFileReader(read func(path string) ([]byte, error)) Option {
	return func(e *Engine) { e.readFile = read }
}

// WithExists sets how Exists() in conditions checks paths. The default
// stats the file system.
func WithExists(exists func(path string) bool) Option {
	return func(e *Engine) { e.exists = exists }
}

// WithBackend replaces the condition backend picked for the engine kind.
func WithBackend(b compiler.Evaluator) Option {
	return func(e *Engine) { e.backend = b }
}

// New creates an engine of the given kind. The legacy engine resolves
// conditions with expr-lang; the full engine uses CUE.
func New(kind project.EngineKind, opts ...Option) (*Engine, error) {
	e := &Engine{
		kind:     kind,
		logger:   slog.Default(),
		readFile: os.ReadFile,
		exists:   statExists,
		live:     make(map[*Evaluation]struct{}),
	}
	switch kind {
	case project.LegacyEngine:
		e.backend = compiler.NewExpr()
	case project.FullEngine:
		e.backend = compiler.NewCUE()
	default:
		return nil, fmt.Errorf("engine: unknown kind %q", kind)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewFactory returns a factory that creates engines with opts, for a
// document to own.
func NewFactory(opts ...Option) project.EngineFactory {
	return func(kind project.EngineKind) (project.Engine, error) {
		e, err := New(kind, opts...)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

func statExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Kind returns the engine kind.
func (e *Engine) Kind() project.EngineKind { return e.kind }

// Load parses and evaluates text. identity is the path of the document; the
// full engine resolves relative imports against it.
func (e *Engine) Load(ctx context.Context, identity string, text []byte) (project.Evaluation, error) {
	ev, err := e.load(ctx, identity, text)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// LoadEvaluation is Load returning the concrete type.
func (e *Engine) LoadEvaluation(ctx context.Context, identity string, text []byte) (*Evaluation, error) {
	return e.load(ctx, identity, text)
}

func (e *Engine) load(ctx context.Context, identity string, text []byte) (*Evaluation, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := project.Parse(text, project.WithPath(identity), project.WithLogger(e.logger))
	if err != nil {
		return nil, &EvalError{Code: ErrCodeParse, Message: "document does not parse", Path: identity, Err: err}
	}
	ev, err := e.evaluate(ctx, identity, doc)
	if err != nil {
		e.logger.Debug("evaluation failed", "path", identity, "engine", e.kind, "error", err)
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	e.live[ev] = struct{}{}

	e.logger.Debug("document evaluated",
		"path", identity,
		"engine", e.kind,
		"properties", len(ev.properties),
		"items", len(ev.items),
		"targets", len(ev.targets),
		"imports", len(ev.imports),
	)
	return ev, nil
}

// Unload releases an evaluation produced by this engine. Unknown or
// already released evaluations are ignored.
func (e *Engine) Unload(ev project.Evaluation) {
	concrete, ok := ev.(*Evaluation)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.live, concrete)
}

// Live returns the number of loaded evaluations not yet unloaded.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.live)
}

// Close releases every live evaluation. Later loads fail with ErrClosed.
// Closing twice is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	clear(e.live)
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
