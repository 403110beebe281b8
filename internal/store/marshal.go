package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/projdoc/internal/ir"
)

// marshalSnapshot converts a snapshot to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so equal snapshots store identical text.
func marshalSnapshot(snap ir.Snapshot) (string, error) {
	data, err := ir.MarshalCanonical(snap.Value())
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}

// unmarshalSnapshot parses stored snapshot JSON. The canonical keys match
// the json tags of ir.Snapshot.
func unmarshalSnapshot(data string) (ir.Snapshot, error) {
	var snap ir.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return ir.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snap.Properties == nil {
		snap.Properties = []ir.Property{}
	}
	if snap.Items == nil {
		snap.Items = []ir.Item{}
	}
	if snap.Targets == nil {
		snap.Targets = []ir.Target{}
	}
	return snap, nil
}
