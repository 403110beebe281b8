package ir

import "fmt"

// NOTE: These are store-layer records. Seq is assigned by the store for
// ordering and takes no part in any hash.

// Revision is one saved state of a document.
type Revision struct {
	ID          string `json:"id"` // RevisionID(path, version, content hash)
	Path        string `json:"path"`
	Version     int64  `json:"version"`
	Seq         int64  `json:"seq"`
	ContentHash string `json:"content_hash"`
	Text        string `json:"text"`
}

// EvaluationRecord is an evaluated view stored against a revision.
type EvaluationRecord struct {
	RevisionID   string   `json:"revision_id"`
	EngineKind   string   `json:"engine_kind"`
	Snapshot     Snapshot `json:"snapshot"`
	SnapshotHash string   `json:"snapshot_hash"`
}

// NewRevision builds a Revision of text with its content hash and id filled
// in. Seq is left for the store.
func NewRevision(path string, version int64, text []byte) (Revision, error) {
	contentHash := ContentHash(text)
	id, err := RevisionID(path, version, contentHash)
	if err != nil {
		return Revision{}, fmt.Errorf("new revision: %w", err)
	}
	return Revision{
		ID:          id,
		Path:        path,
		Version:     version,
		ContentHash: contentHash,
		Text:        string(text),
	}, nil
}

// NewEvaluationRecord builds an EvaluationRecord for snap with its hash
// filled in.
func NewEvaluationRecord(revisionID, engineKind string, snap Snapshot) (EvaluationRecord, error) {
	h, err := SnapshotHash(snap)
	if err != nil {
		return EvaluationRecord{}, fmt.Errorf("new evaluation record: %w", err)
	}
	return EvaluationRecord{
		RevisionID:   revisionID,
		EngineKind:   engineKind,
		Snapshot:     snap,
		SnapshotHash: h,
	}, nil
}
