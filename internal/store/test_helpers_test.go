package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/projdoc/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRevision builds a revision of text for path at version.
func createTestRevision(t *testing.T, path string, version int64, text string) ir.Revision {
	t.Helper()
	rev, err := ir.NewRevision(path, version, []byte(text))
	if err != nil {
		t.Fatalf("NewRevision() failed: %v", err)
	}
	return rev
}

// createTestSnapshot builds a small evaluated view.
func createTestSnapshot(identity string) ir.Snapshot {
	return ir.Snapshot{
		Identity:   identity,
		Engine:     "full",
		Properties: []ir.Property{{Name: "Configuration", Value: "Debug"}},
		Items: []ir.Item{
			{Type: "Compile", Include: "a.cs", SourceID: "src-1"},
			{Type: "Compile", Include: "b.cs", Metadata: map[string]string{"Link": `shared\b.cs`}, SourceID: "src-2"},
		},
		Targets: []ir.Target{{Name: "Build", DependsOnTargets: "Compile"}},
	}
}
