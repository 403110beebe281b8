package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/projdoc/internal/engine"
	"github.com/roach88/projdoc/internal/ir"
	"github.com/roach88/projdoc/internal/project"
	"github.com/roach88/projdoc/internal/store"
	"github.com/roach88/projdoc/internal/testutil"
)

// Harness applies edit scripts to documents and checks the outcome.
//
// Correlation ids come from a sequence generator, so evaluated views are the
// same on every run. When a store is attached, every intermediate state is
// recorded as a revision.
type Harness struct {
	logger     *slog.Logger
	engineOpts []engine.Option
	store      *store.Store
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger for the harness and the engines it creates.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithEngineOptions passes options to every engine the harness creates.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(h *Harness) { h.engineOpts = append(h.engineOpts, opts...) }
}

// WithStore records revisions and evaluations in st.
func WithStore(st *store.Store) Option {
	return func(h *Harness) { h.store = st }
}

// New creates a Harness. Logs are discarded unless WithLogger is given.
func New(opts ...Option) *Harness {
	h := &Harness{}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h
}

// Run executes a script against a fresh in-memory store and returns the
// result.
func Run(s *Script) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	return New(WithStore(st)).Run(context.Background(), s)
}

// Run executes s. A step that fails is an error; expectations that do not
// hold are reported in Result.Errors.
func (h *Harness) Run(ctx context.Context, s *Script) (*Result, error) {
	d, err := h.open(s)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	result := NewResult()
	if err := h.record(ctx, d, result); err != nil {
		return nil, err
	}
	for i, step := range s.Steps {
		if err := applyStep(d, step); err != nil {
			return nil, fmt.Errorf("steps[%d] %s: %w", i, step.Op, err)
		}
		if err := h.record(ctx, d, result); err != nil {
			return nil, err
		}
		h.logger.Debug("step applied", "script", s.Name, "step", i, "op", step.Op, "version", d.Version())
	}

	result.Text = d.String()
	result.Version = d.Version()

	if s.Expect != nil {
		var ev project.Evaluation
		if needsEvaluation(s.Expect) {
			ev, err = d.Evaluate(ctx)
			if err != nil {
				return nil, fmt.Errorf("evaluate: %w", err)
			}
			snap := ev.Snapshot()
			result.Snapshot = &snap
			if err := h.recordEvaluation(ctx, d, snap, result); err != nil {
				return nil, err
			}
		}
		for _, msg := range CheckExpect(result, s.Expect, ev) {
			result.AddError(msg)
		}
	}

	h.logger.Info("script completed", "script", s.Name, "steps", len(s.Steps), "pass", result.Pass)
	return result, nil
}

func (h *Harness) open(s *Script) (*project.Document, error) {
	kind := project.LegacyEngine
	if s.Engine != "" {
		kind = project.EngineKind(s.Engine)
	}
	engineOpts := append([]engine.Option{engine.WithLogger(h.logger)}, h.engineOpts...)
	opts := []project.Option{
		project.WithLogger(h.logger),
		project.WithEngineFactory(engine.NewFactory(engineOpts...)),
		project.WithEngineKind(kind),
		project.WithIDGenerator(testutil.NewSequenceGenerator("src")),
	}
	if s.File != "" {
		d, err := project.Load(s.File, opts...)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s.File, err)
		}
		return d, nil
	}
	opts = append(opts, project.WithPath(s.Name+".proj"))
	d, err := project.Parse([]byte(s.Document), opts...)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return d, nil
}

func (h *Harness) record(ctx context.Context, d *project.Document, result *Result) error {
	if h.store == nil {
		return nil
	}
	rev, err := ir.NewRevision(d.Path(), d.Version(), []byte(d.String()))
	if err != nil {
		return err
	}
	rev, err = h.store.WriteRevision(ctx, rev)
	if err != nil {
		return fmt.Errorf("record revision: %w", err)
	}
	result.Revisions = append(result.Revisions, rev)
	return nil
}

func (h *Harness) recordEvaluation(ctx context.Context, d *project.Document, snap ir.Snapshot, result *Result) error {
	if h.store == nil || len(result.Revisions) == 0 {
		return nil
	}
	last := result.Revisions[len(result.Revisions)-1]
	rec, err := ir.NewEvaluationRecord(last.ID, string(d.EngineKind()), snap)
	if err != nil {
		return err
	}
	if err := h.store.WriteEvaluation(ctx, rec); err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}
	return nil
}

func needsEvaluation(e *Expect) bool {
	return len(e.Properties) > 0 || len(e.Items) > 0
}

// Apply runs steps against d in order and stops at the first failure.
func Apply(d *project.Document, steps []Step) error {
	for i, step := range steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		if err := applyStep(d, step); err != nil {
			return fmt.Errorf("steps[%d] %s: %w", i, step.Op, err)
		}
	}
	return nil
}

func applyStep(d *project.Document, step Step) error {
	switch step.Op {
	case OpSetProperty:
		_, err := d.SetProperty(step.Name, step.Value)
		return err
	case OpRemoveProperty:
		_, err := d.RemoveProperty(step.Name)
		return err
	case OpAddItem:
		var md []project.Metadata
		for _, name := range slices.Sorted(maps.Keys(step.Metadata)) {
			md = append(md, project.Metadata{Name: name, Value: step.Metadata[name]})
		}
		_, err := d.AddItem(step.Type, step.Include, md...)
		return err
	case OpRemoveItem:
		item := d.FindItem(step.Type, step.Include)
		if item == nil {
			return fmt.Errorf("no %s item %q", step.Type, step.Include)
		}
		return d.RemoveItem(item, step.RemoveEmptyGroup)
	case OpSetMetadata:
		n, err := resolve(d, step.Select)
		if err != nil {
			return err
		}
		return n.SetMetadata(step.Name, step.Value)
	case OpAddImport:
		_, err := d.AddImport(step.Project, step.Condition)
		return err
	case OpRemoveImport:
		imp := findImport(d, step.Project)
		if imp == nil {
			return fmt.Errorf("no import of %q", step.Project)
		}
		return d.RemoveImport(imp)
	case OpAddPropertyGroup:
		_, err := d.AddPropertyGroup(step.Condition)
		return err
	case OpAddItemGroup:
		_, err := d.AddItemGroup(step.Condition)
		return err
	case OpAddTarget:
		_, err := d.AddTarget(step.Name)
		return err
	case OpRemoveTarget:
		ok, err := d.RemoveTarget(step.Name)
		if err == nil && !ok {
			err = fmt.Errorf("no target %q", step.Name)
		}
		return err
	case OpSetAttr:
		n, err := resolve(d, step.Select)
		if err != nil {
			return err
		}
		return n.SetAttr(step.Name, step.Value)
	case OpSetCondition:
		n, err := resolve(d, step.Select)
		if err != nil {
			return err
		}
		return n.SetCondition(step.Condition)
	case OpSetExtension:
		return d.SetExtension(step.Name, step.Fragment)
	case OpRemoveExtension:
		ok, err := d.RemoveExtension(step.Name)
		if err == nil && !ok {
			err = fmt.Errorf("no extension section %q", step.Name)
		}
		return err
	case OpSetDefaultTargets:
		return d.SetDefaultTargets(step.Value)
	case OpSetToolsVersion:
		return d.SetToolsVersion(step.Value)
	}
	return fmt.Errorf("unknown op %q", step.Op)
}

// resolve finds the node a selector addresses:
//
//	project                 the root element
//	property:<name>         the last definition of a property
//	item:<type>:<include>   the first matching item
//	target:<name>           a target
//	import:<project>        an import
//	property_group:<n>      the n-th top-level property group, from 0
//	item_group:<n>          the n-th top-level item group, from 0
func resolve(d *project.Document, sel string) (*project.Node, error) {
	kind, arg, _ := strings.Cut(sel, ":")
	var n *project.Node
	switch kind {
	case "project":
		n = &d.Node
	case "property":
		n = d.Property(arg)
	case "item":
		itemType, include, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, fmt.Errorf("selector %q: want item:<type>:<include>", sel)
		}
		n = d.FindItem(itemType, include)
	case "target":
		n = d.Target(arg)
	case "import":
		n = findImport(d, arg)
	case "property_group", "item_group":
		var idx int
		if _, err := fmt.Sscanf(arg, "%d", &idx); err != nil {
			return nil, fmt.Errorf("selector %q: bad index", sel)
		}
		groups := d.PropertyGroups()
		if kind == "item_group" {
			groups = d.ItemGroups()
		}
		i := 0
		for g := range groups {
			if i == idx {
				n = g
				break
			}
			i++
		}
	default:
		return nil, fmt.Errorf("unknown selector %q", sel)
	}
	if n == nil {
		return nil, fmt.Errorf("selector %q matches nothing", sel)
	}
	return n, nil
}

func findImport(d *project.Document, target string) *project.Node {
	for imp := range d.Imports() {
		if p, _ := imp.Attr("Project"); strings.EqualFold(p, target) {
			return imp
		}
	}
	return nil
}
