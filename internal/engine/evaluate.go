package engine

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/roach88/projdoc/internal/compiler"
	"github.com/roach88/projdoc/internal/ir"
	"github.com/roach88/projdoc/internal/project"
)

// deferred is an element left for the item pass, with the file it came from.
type deferred struct {
	node *project.Node
	file string
}

// evaluator holds the state of one Load.
type evaluator struct {
	ctx      context.Context
	engine   *Engine
	identity string
	props    *propertyTable
	chain    *importChain
	deferred []deferred
	imports  []string

	items       []ir.Item
	allItems    []ir.Item
	targets     []ir.Target
	allTargets  []ir.Target
	occurrences map[string]int
}

func (e *Engine) evaluate(ctx context.Context, identity string, doc *project.Document) (*Evaluation, error) {
	ev := &evaluator{
		ctx:         ctx,
		engine:      e,
		identity:    identity,
		props:       newPropertyTable(identity, e.globals),
		chain:       newImportChain(),
		occurrences: make(map[string]int),
	}
	ev.chain.enter(identity)
	ev.props.enterFile(identity)

	if err := ev.propertyPass(doc, identity); err != nil {
		return nil, err
	}
	if err := ev.itemPass(); err != nil {
		return nil, err
	}

	return &Evaluation{
		identity:    identity,
		engine:      string(e.kind),
		properties:  ev.props.properties(),
		items:       ev.items,
		allItems:    ev.allItems,
		targets:     lastDefinitions(ev.targets),
		allTargets:  ev.allTargets,
		occurrences: ev.occurrences,
		imports:     ev.imports,
	}, nil
}

// propertyPass applies property groups, Choose branches and imports of doc
// in document order and queues item groups and targets for the item pass.
func (ev *evaluator) propertyPass(doc *project.Document, file string) error {
	for el := range doc.Elements() {
		if err := ev.ctx.Err(); err != nil {
			return err
		}
		var err error
		switch el.Kind() {
		case project.KindPropertyGroup:
			err = ev.propertyGroup(el, file)
		case project.KindChoose:
			err = ev.choose(el, file)
		case project.KindImport:
			err = ev.importProject(el, file)
		case project.KindImportGroup:
			err = ev.importGroup(el, file)
		case project.KindItemGroup, project.KindTarget:
			ev.deferred = append(ev.deferred, deferred{node: el, file: file})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) propertyGroup(g *project.Node, file string) error {
	ok, err := ev.condition(g, file)
	if err != nil || !ok {
		return err
	}
	for p := range g.ElementsOfKind(project.KindProperty) {
		ok, err := ev.condition(p, file)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		value := ev.props.expand(strings.TrimSpace(p.Value()))
		if !ev.props.set(p.Name(), value) {
			ev.engine.logger.Debug("property not overridden",
				"path", file,
				"property", p.Name(),
			)
		}
	}
	return nil
}

// choose applies the first When whose condition holds, else the Otherwise.
func (ev *evaluator) choose(c *project.Node, file string) error {
	for opt := range c.ElementsOfKind(project.KindChooseOption) {
		if opt.Name() == project.TagOtherwise {
			return ev.branch(opt, file)
		}
		ok, err := ev.condition(opt, file)
		if err != nil {
			return err
		}
		if ok {
			return ev.branch(opt, file)
		}
	}
	return nil
}

func (ev *evaluator) branch(opt *project.Node, file string) error {
	for el := range opt.Elements() {
		var err error
		switch el.Kind() {
		case project.KindPropertyGroup:
			err = ev.propertyGroup(el, file)
		case project.KindChoose:
			err = ev.choose(el, file)
		case project.KindItemGroup:
			ev.deferred = append(ev.deferred, deferred{node: el, file: file})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) importGroup(g *project.Node, file string) error {
	ok, err := ev.condition(g, file)
	if err != nil || !ok {
		return err
	}
	for imp := range g.ElementsOfKind(project.KindImport) {
		if err := ev.importProject(imp, file); err != nil {
			return err
		}
	}
	return nil
}

// importProject evaluates the files an Import names, relative to the file
// that contains it. The legacy engine ignores imports.
func (ev *evaluator) importProject(imp *project.Node, file string) error {
	if ev.engine.kind == project.LegacyEngine {
		return nil
	}
	if sdk, ok := imp.Attr("Sdk"); ok {
		ev.engine.logger.Debug("skipping sdk import", "path", file, "sdk", sdk)
		return nil
	}
	ok, err := ev.condition(imp, file)
	if err != nil || !ok {
		return err
	}

	spec, _ := imp.Attr("Project")
	for _, rel := range splitList(ev.props.expand(spec)) {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(file), rel)
		}
		if ev.chain.wouldCycle(path) {
			return &EvalError{
				Code:    ErrCodeImportCycle,
				Message: "import cycle: " + ev.chain.describe(path),
				Path:    file,
			}
		}
		data, err := ev.engine.readFile(path)
		if err != nil {
			return &EvalError{
				Code:    ErrCodeImportNotFound,
				Message: fmt.Sprintf("cannot read import %q", rel),
				Path:    file,
				Err:     err,
			}
		}
		sub, err := project.Parse(data, project.WithPath(path), project.WithLogger(ev.engine.logger))
		if err != nil {
			return &EvalError{Code: ErrCodeParse, Message: "imported document does not parse", Path: path, Err: err}
		}

		ev.imports = append(ev.imports, path)
		ev.chain.enter(path)
		ev.props.enterFile(path)
		err = ev.propertyPass(sub, path)
		ev.chain.leave()
		ev.props.enterFile(file)
		if err != nil {
			return err
		}
	}
	return nil
}

// itemPass evaluates the queued item groups and targets.
func (ev *evaluator) itemPass() error {
	for _, d := range ev.deferred {
		if err := ev.ctx.Err(); err != nil {
			return err
		}
		ev.props.enterFile(d.file)
		var err error
		switch d.node.Kind() {
		case project.KindItemGroup:
			err = ev.itemGroup(d.node, d.file)
		case project.KindTarget:
			err = ev.target(d.node, d.file)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) itemGroup(g *project.Node, file string) error {
	groupCond := ev.props.expand(g.Condition())
	groupOK, err := ev.test(groupCond, file)
	if err != nil {
		return err
	}
	for item := range g.ElementsOfKind(project.KindItem) {
		if err := ev.item(item, file, groupCond, groupOK); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) item(n *project.Node, file, groupCond string, groupOK bool) error {
	cond := ev.props.expand(n.Condition())
	ok := groupOK
	if ok {
		var err error
		if ok, err = ev.test(cond, file); err != nil {
			return err
		}
	}
	itemType := n.Name()

	if remove, has := n.Attr("Remove"); has {
		if ok {
			ev.removeItems(itemType, splitList(ev.props.expand(remove)))
		}
		return nil
	}
	md, err := ev.metadata(n, file)
	if err != nil {
		return err
	}
	if update, has := n.Attr("Update"); has {
		if ok {
			ev.updateItems(itemType, splitList(ev.props.expand(update)), md)
		}
		return nil
	}

	excluded := make(map[string]bool)
	if exclude, has := n.Attr("Exclude"); has {
		for _, x := range splitList(ev.props.expand(exclude)) {
			excluded[fold(x)] = true
		}
	}
	sourceID, _ := n.Attr(project.CorrelationAttribute)
	combined := joinConditions(groupCond, cond)

	for _, include := range splitList(ev.props.expand(n.Include())) {
		if excluded[fold(include)] {
			continue
		}
		it := ir.Item{
			Type:      itemType,
			Include:   include,
			Metadata:  maps.Clone(md),
			SourceID:  sourceID,
			Condition: combined,
		}
		ev.allItems = append(ev.allItems, it)
		if !ok {
			continue
		}
		it.Metadata = maps.Clone(md)
		ev.items = append(ev.items, it)
		if sourceID != "" {
			ev.occurrences[sourceID]++
		}
	}
	return nil
}

var reservedItemAttrs = map[string]bool{
	"Include": true, "Exclude": true, "Remove": true, "Update": true,
	"Condition": true, "Label": true, "KeepMetadata": true,
	"RemoveMetadata": true, "KeepDuplicates": true,
	project.CorrelationAttribute: true,
}

// metadata collects an item's metadata: attributes first, then child
// elements whose conditions hold. Returns nil when there is none.
func (ev *evaluator) metadata(n *project.Node, file string) (map[string]string, error) {
	md := make(map[string]string)
	for _, a := range n.Attrs() {
		if !reservedItemAttrs[a.Name] {
			md[a.Name] = ev.props.expand(a.Value)
		}
	}
	for m := range n.ElementsOfKind(project.KindProperty) {
		ok, err := ev.condition(m, file)
		if err != nil {
			return nil, err
		}
		if ok {
			md[m.Name()] = ev.props.expand(strings.TrimSpace(m.Value()))
		}
	}
	if len(md) == 0 {
		return nil, nil
	}
	return md, nil
}

func (ev *evaluator) removeItems(itemType string, values []string) {
	drop := make(map[string]bool, len(values))
	for _, v := range values {
		drop[fold(v)] = true
	}
	kept := ev.items[:0]
	for _, it := range ev.items {
		if strings.EqualFold(it.Type, itemType) && drop[fold(it.Include)] {
			if it.SourceID != "" {
				ev.occurrences[it.SourceID]--
			}
			continue
		}
		kept = append(kept, it)
	}
	ev.items = kept
}

func (ev *evaluator) updateItems(itemType string, values []string, md map[string]string) {
	if len(md) == 0 {
		return
	}
	match := make(map[string]bool, len(values))
	for _, v := range values {
		match[fold(v)] = true
	}
	for i := range ev.items {
		it := &ev.items[i]
		if !strings.EqualFold(it.Type, itemType) || !match[fold(it.Include)] {
			continue
		}
		if it.Metadata == nil {
			it.Metadata = make(map[string]string, len(md))
		}
		maps.Copy(it.Metadata, md)
	}
}

func (ev *evaluator) target(n *project.Node, file string) error {
	name, _ := n.Attr("Name")
	deps, _ := n.Attr("DependsOnTargets")
	t := ir.Target{
		Name:             name,
		DependsOnTargets: ev.props.expand(deps),
		Condition:        ev.props.expand(n.Condition()),
	}
	ev.allTargets = append(ev.allTargets, t)
	ok, err := ev.test(t.Condition, file)
	if err != nil {
		return err
	}
	if ok {
		ev.targets = append(ev.targets, t)
	}
	return nil
}

// condition expands and tests the Condition attribute of n.
func (ev *evaluator) condition(n *project.Node, file string) (bool, error) {
	return ev.test(ev.props.expand(n.Condition()), file)
}

// test evaluates an expanded condition with the engine's backend.
func (ev *evaluator) test(cond, file string) (bool, error) {
	ok, err := compiler.Evaluate(ev.engine.backend, cond, ev.funcs())
	if err != nil {
		return false, &EvalError{Code: ErrCodeBadCondition, Message: err.Error(), Path: file, Err: err}
	}
	return ok, nil
}

// funcs resolves relative Exists paths against the project directory.
func (ev *evaluator) funcs() compiler.Funcs {
	dir := filepath.Dir(ev.identity)
	return compiler.Funcs{
		Exists: func(path string) bool {
			if path == "" {
				return false
			}
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			return ev.engine.exists(path)
		},
	}
}

// splitList splits a ';'-separated list, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinConditions(outer, inner string) string {
	switch {
	case outer == "":
		return inner
	case inner == "":
		return outer
	}
	return "(" + outer + ") and (" + inner + ")"
}

// lastDefinitions keeps the last definition of each target name, at the
// position of that definition.
func lastDefinitions(targets []ir.Target) []ir.Target {
	last := make(map[string]int, len(targets))
	for i, t := range targets {
		last[fold(t.Name)] = i
	}
	out := make([]ir.Target, 0, len(last))
	for i, t := range targets {
		if last[fold(t.Name)] == i {
			out = append(out, t)
		}
	}
	return out
}
