// Package compiler turns project conditions into boolean expressions and
// evaluates them.
//
// Conditions arrive with property references already expanded, e.g.
// 'Debug'=='Debug' and !Exists('obj'). Translate parses one into a small
// neutral expression language (double-quoted strings, float literals,
// comparisons, &&, || and !) that both backends accept unchanged:
//
//   - CUE evaluates through cuelang.org/go and backs the full engine
//   - Expr evaluates through github.com/expr-lang/expr and backs the
//     legacy engine
//
// String comparisons are case-insensitive. Operands that both read as
// numbers compare numerically.
package compiler
