// Package engine evaluates project documents.
//
// An Engine turns serialized project text into an Evaluation: properties
// expanded, conditions resolved, items split into one entry per Include
// value. Two kinds exist:
//
//   - legacy: evaluates the document on its own, ignoring imports, and
//     resolves conditions with expr-lang
//   - full: follows <Import> elements relative to the document identity and
//     resolves conditions with CUE
//
// EVALUATION ORDER:
//
// Evaluation runs in two passes over the document in document order.
// The property pass processes property groups, Choose branches and imports.
// The item pass then processes item groups and targets, so item and target
// conditions see final property values. A Choose picks its branch once, in
// the property pass, and the item pass reuses that choice.
//
// Engines are safe for concurrent use. Each Load builds an independent
// Evaluation.
package engine
