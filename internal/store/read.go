package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/projdoc/internal/ir"
)

// ReadRevision returns the revision with the given id.
// found is false when there is none.
func (s *Store) ReadRevision(ctx context.Context, id string) (rev ir.Revision, found bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, version, seq, content_hash, text
		FROM revisions
		WHERE id = ?
	`, id)
	rev, err = scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Revision{}, false, nil
	}
	if err != nil {
		return ir.Revision{}, false, fmt.Errorf("read revision: %w", err)
	}
	return rev, true, nil
}

// ListRevisions returns the revisions recorded for path, or for every path
// when path is empty. Results are ordered by seq ASC.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRevisions(ctx context.Context, path string) ([]ir.Revision, error) {
	query := `
		SELECT id, path, version, seq, content_hash, text
		FROM revisions
		ORDER BY seq ASC
	`
	var args []any
	if path != "" {
		query = `
			SELECT id, path, version, seq, content_hash, text
			FROM revisions
			WHERE path = ?
			ORDER BY seq ASC
		`
		args = append(args, path)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	revisions := []ir.Revision{}
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return revisions, nil
}

// LatestRevision returns the most recent revision for path.
// found is false when the path has no history.
func (s *Store) LatestRevision(ctx context.Context, path string) (rev ir.Revision, found bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, version, seq, content_hash, text
		FROM revisions
		WHERE path = ?
		ORDER BY seq DESC
		LIMIT 1
	`, path)
	rev, err = scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Revision{}, false, nil
	}
	if err != nil {
		return ir.Revision{}, false, fmt.Errorf("latest revision: %w", err)
	}
	return rev, true, nil
}

// ReadEvaluation returns the evaluation stored for a revision and engine
// kind. found is false when there is none.
func (s *Store) ReadEvaluation(ctx context.Context, revisionID, engineKind string) (rec ir.EvaluationRecord, found bool, err error) {
	var snapshotJSON string
	err = s.db.QueryRowContext(ctx, `
		SELECT revision_id, engine_kind, snapshot, snapshot_hash
		FROM evaluations
		WHERE revision_id = ? AND engine_kind = ?
	`, revisionID, engineKind).Scan(&rec.RevisionID, &rec.EngineKind, &snapshotJSON, &rec.SnapshotHash)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.EvaluationRecord{}, false, nil
	}
	if err != nil {
		return ir.EvaluationRecord{}, false, fmt.Errorf("read evaluation: %w", err)
	}
	rec.Snapshot, err = unmarshalSnapshot(snapshotJSON)
	if err != nil {
		return ir.EvaluationRecord{}, false, fmt.Errorf("read evaluation: %w", err)
	}
	return rec, true, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(row rowScanner) (ir.Revision, error) {
	var rev ir.Revision
	err := row.Scan(&rev.ID, &rev.Path, &rev.Version, &rev.Seq, &rev.ContentHash, &rev.Text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Revision{}, err
		}
		return ir.Revision{}, fmt.Errorf("scan revision: %w", err)
	}
	return rev, nil
}
