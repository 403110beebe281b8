package engine

import (
	"maps"
	"slices"

	"github.com/roach88/projdoc/internal/ir"
)

// Evaluation is the evaluated view produced by one Load. It is immutable
// and safe for concurrent reads.
type Evaluation struct {
	identity    string
	engine      string
	properties  []ir.Property
	items       []ir.Item
	allItems    []ir.Item
	targets     []ir.Target
	allTargets  []ir.Target
	occurrences map[string]int
	imports     []string
}

// Properties returns the evaluated properties in definition order.
func (ev *Evaluation) Properties() []ir.Property { return slices.Clone(ev.properties) }

// Items returns the items whose conditions hold.
func (ev *Evaluation) Items() []ir.Item { return cloneItems(ev.items) }

// AllItems returns every item declaration, conditions ignored.
func (ev *Evaluation) AllItems() []ir.Item { return cloneItems(ev.allItems) }

// Targets returns the targets whose conditions hold. A later definition of
// a target replaces an earlier one.
func (ev *Evaluation) Targets() []ir.Target { return slices.Clone(ev.targets) }

// AllTargets returns every target definition, conditions ignored.
func (ev *Evaluation) AllTargets() []ir.Target { return slices.Clone(ev.allTargets) }

// Occurrences counts the evaluated items produced by the source item with
// the given correlation id.
func (ev *Evaluation) Occurrences(sourceID string) int { return ev.occurrences[sourceID] }

// Imports returns the files the evaluation read besides the document
// itself, in the order they were entered.
func (ev *Evaluation) Imports() []string { return slices.Clone(ev.imports) }

// Snapshot returns the condition-filtered view.
func (ev *Evaluation) Snapshot() ir.Snapshot {
	return ir.Snapshot{
		Identity:   ev.identity,
		Engine:     ev.engine,
		Properties: ev.Properties(),
		Items:      ev.Items(),
		Targets:    ev.Targets(),
	}
}

func cloneItems(items []ir.Item) []ir.Item {
	out := make([]ir.Item, len(items))
	for i, it := range items {
		out[i] = it
		out[i].Metadata = maps.Clone(it.Metadata)
	}
	return out
}
