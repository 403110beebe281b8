package engine

import (
	"path/filepath"
	"strings"
)

// importChain tracks the files currently being evaluated, outermost first,
// to stop import loops.
//
// Example cycle:
//
//	app.proj imports common.props → common.props imports app.proj
//	→ app.proj is already on the chain ← CYCLE DETECTED
//
// Importing the same file twice from different places is not a cycle; only
// a file importing one of its own importers is.
//
// An importChain belongs to a single Load and is not safe for concurrent
// use.
type importChain struct {
	active map[string]bool // keyed by cleaned, case-folded path
	order  []string
}

func newImportChain() *importChain {
	return &importChain{active: make(map[string]bool)}
}

func chainKey(path string) string {
	return strings.ToLower(filepath.Clean(path))
}

// wouldCycle reports whether entering path would revisit a file already on
// the chain.
func (c *importChain) wouldCycle(path string) bool {
	return c.active[chainKey(path)]
}

// enter pushes path onto the chain.
func (c *importChain) enter(path string) {
	c.active[chainKey(path)] = true
	c.order = append(c.order, path)
}

// leave pops the innermost file.
func (c *importChain) leave() {
	if len(c.order) == 0 {
		return
	}
	last := c.order[len(c.order)-1]
	c.order = c.order[:len(c.order)-1]
	delete(c.active, chainKey(last))
}

// current returns the innermost file, or "".
func (c *importChain) current() string {
	if len(c.order) == 0 {
		return ""
	}
	return c.order[len(c.order)-1]
}

// describe renders the chain closed by path, e.g. "a.proj → b.props → a.proj".
func (c *importChain) describe(path string) string {
	parts := make([]string, 0, len(c.order)+1)
	for _, p := range c.order {
		parts = append(parts, filepath.Base(p))
	}
	parts = append(parts, filepath.Base(path))
	return strings.Join(parts, " → ")
}

// depth returns the number of files on the chain.
func (c *importChain) depth() int { return len(c.order) }
