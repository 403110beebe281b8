package store

import (
	"context"
	"fmt"

	"github.com/roach88/projdoc/internal/ir"
)

// WriteRevision inserts a revision and returns it with its seq.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the same
// revision again returns the stored one unchanged.
func (s *Store) WriteRevision(ctx context.Context, rev ir.Revision) (ir.Revision, error) {
	if rev.ID == "" {
		return ir.Revision{}, fmt.Errorf("write revision: missing id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revisions (id, path, version, seq, content_hash, text)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM revisions), ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rev.ID,
		rev.Path,
		rev.Version,
		rev.ContentHash,
		rev.Text,
	)
	if err != nil {
		return ir.Revision{}, fmt.Errorf("write revision: %w", err)
	}

	stored, found, err := s.ReadRevision(ctx, rev.ID)
	if err != nil {
		return ir.Revision{}, fmt.Errorf("write revision: %w", err)
	}
	if !found {
		return ir.Revision{}, fmt.Errorf("write revision: %s not found after insert", rev.ID)
	}
	return stored, nil
}

// WriteEvaluation stores an evaluated view against a revision.
// Uses ON CONFLICT DO NOTHING - one evaluation per (revision, engine kind);
// later writes for the same pair are silently ignored.
//
// Note: The revision must exist (foreign key constraint).
func (s *Store) WriteEvaluation(ctx context.Context, rec ir.EvaluationRecord) error {
	snapshotJSON, err := marshalSnapshot(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	hash := rec.SnapshotHash
	if hash == "" {
		if hash, err = ir.SnapshotHash(rec.Snapshot); err != nil {
			return fmt.Errorf("write evaluation: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (revision_id, engine_kind, snapshot, snapshot_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		rec.RevisionID,
		rec.EngineKind,
		snapshotJSON,
		hash,
	)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	return nil
}
