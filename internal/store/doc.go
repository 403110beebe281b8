// Package store provides SQLite-backed history for project documents.
//
// The store keeps two append-only tables:
//   - revisions: the serialized text of a document at a version
//   - evaluations: evaluated views recorded against a revision, one per
//     engine kind
//
// # Patterns
//
// Content-Addressed Identity
//   - Revision ids are ir.RevisionID(path, version, content hash)
//   - Snapshots are stored as canonical JSON with their ir.SnapshotHash
//   - Writing the same record twice is a no-op (ON CONFLICT DO NOTHING)
//
// Deterministic Ordering
//   - Revisions get a store-assigned seq, never a timestamp
//   - All listing queries ORDER BY seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - foreign_keys=ON: evaluations must reference a revision
package store
