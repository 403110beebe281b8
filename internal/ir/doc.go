// Package ir provides the value types of an evaluated project view and their
// canonical encoding.
//
// An evaluation engine turns a serialized project document into a Snapshot:
// the properties, items and targets that remain after conditions are applied
// and property references are expanded. Snapshots are plain data. They are
// compared, hashed and stored without reference to the document they came from.
//
// This package imports nothing internal; project, engine and store all build
// on it.
//
// Key design constraints:
//   - Canonical JSON (RFC 8785 key order, NFC strings, no floats) is the only
//     encoding used for hashing
//   - Hashes are SHA-256 with a versioned domain prefix
//   - Snapshot ordering is document order, never map order
package ir
