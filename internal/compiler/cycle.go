package compiler

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// CycleWarning reports targets whose DependsOnTargets chains loop back on
// themselves.
//
// Cycles are warnings, not errors: a build that never asks for a target in
// the loop runs fine.
type CycleWarning struct {
	Path    []string `json:"path"` // first target repeated at the end: ["A", "B", "A"]
	Message string   `json:"message"`
}

// targetGraph maps a target to the targets it depends on. Names that only
// appear as dependencies are leaves.
type targetGraph map[string][]string

// AnalyzeTargetCycles finds dependency cycles among targets.
//
// deps maps each target to the targets named in its DependsOnTargets. Every
// strongly connected component with more than one target, and every target
// that depends on itself, is reported once, ordered by the alphabetically
// first target of the loop.
func AnalyzeTargetCycles(deps map[string][]string) []CycleWarning {
	g := targetGraph(deps)

	var warnings []CycleWarning
	for _, component := range g.components() {
		switch {
		case len(component) > 1:
			path := g.cycleThrough(component)
			warnings = append(warnings, CycleWarning{
				Path:    path,
				Message: "target dependency cycle: " + strings.Join(path, " → "),
			})
		case slices.Contains(g[component[0]], component[0]):
			name := component[0]
			warnings = append(warnings, CycleWarning{
				Path:    []string{name, name},
				Message: fmt.Sprintf("target depends on itself: %s → %s", name, name),
			})
		}
	}
	slices.SortFunc(warnings, func(a, b CycleWarning) int {
		return strings.Compare(a.Path[0], b.Path[0])
	})
	return warnings
}

// sccFinder is one run of Tarjan's strongly connected components search.
type sccFinder struct {
	graph   targetGraph
	counter int
	index   map[string]int
	low     map[string]int
	stack   []string
	onStack map[string]bool
	found   [][]string
}

// components returns the strongly connected components of g, each sorted.
// Roots are visited in name order so the result is deterministic.
func (g targetGraph) components() [][]string {
	f := &sccFinder{
		graph:   g,
		index:   make(map[string]int),
		low:     make(map[string]int),
		onStack: make(map[string]bool),
	}
	for _, name := range slices.Sorted(maps.Keys(g)) {
		if _, seen := f.index[name]; !seen {
			f.visit(name)
		}
	}
	return f.found
}

func (f *sccFinder) visit(v string) {
	f.index[v], f.low[v] = f.counter, f.counter
	f.counter++
	f.stack = append(f.stack, v)
	f.onStack[v] = true

	for _, w := range f.graph[v] {
		if _, seen := f.index[w]; !seen {
			f.visit(w)
			f.low[v] = min(f.low[v], f.low[w])
		} else if f.onStack[w] {
			f.low[v] = min(f.low[v], f.index[w])
		}
	}
	if f.low[v] != f.index[v] {
		return
	}

	var component []string
	for {
		top := f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]
		f.onStack[top] = false
		component = append(component, top)
		if top == v {
			break
		}
	}
	slices.Sort(component)
	f.found = append(f.found, component)
}

// cycleThrough walks dependency edges inside component from its first
// member until the walk returns there or gets stuck.
func (g targetGraph) cycleThrough(component []string) []string {
	start := component[0]
	path := []string{start}
	visited := map[string]bool{start: true}

	for at := start; ; {
		next, ok := "", false
		for _, dep := range g[at] {
			if !slices.Contains(component, dep) {
				continue
			}
			if dep == start || !visited[dep] {
				next, ok = dep, true
				break
			}
		}
		if !ok {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		visited[next] = true
		at = next
	}
}
