// Package project is the in-memory model of a build project document.
//
// A Document is an ordered tree of typed nodes (property groups, item groups,
// imports, targets, choices) interleaved with the whitespace and comment
// fragments that sat between them in the source text. Loading a document and
// writing it back without edits reproduces the input byte for byte. Edits made
// through this package touch only the region they change: new nodes are
// indented like their neighbours and removed nodes take their line with them.
//
// # Components
//
//   - Serializer (parse.go, write.go): markup text <-> node tree
//   - Node tree (node.go, edit.go): ordered, parented nodes and fragments
//   - Whitespace formatter (whitespace.go): indentation repair on edits
//   - Group index (groups.go): typed views and best-group-for-item memo
//   - Change tracker (changes.go): monotonic version counter
//   - Evaluation gate (gate.go): cached evaluated view from an external engine
//
// # Versions
//
// Every call that mutates structure or attributes increments Document.Version
// by exactly one. Read-only calls never change it. The evaluation gate uses
// the version as its cache key.
//
// # Concurrency
//
// Tree edits are not locked. Callers serialize mutations themselves, or mark a
// document shared with MarkShared, after which every mutating call verifies it
// runs on the designated writer and fails with ConcurrencyViolationError when it
// does not. Read-only calls may run anywhere. Only the evaluation gate locks
// internally.
//
// Mutating the tree while an evaluation rebuild is serializing it is not
// detected. Callers must not interleave the two.
package project
