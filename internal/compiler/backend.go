package compiler

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Evaluator evaluates translated expressions.
type Evaluator interface {
	Eval(expression string) (bool, error)
}

// Evaluate translates cond and evaluates it with ev. An empty condition is
// true.
func Evaluate(ev Evaluator, cond string, funcs Funcs) (bool, error) {
	expression, err := Translate(cond, funcs)
	if err != nil {
		return false, err
	}
	ok, err := ev.Eval(expression)
	if err != nil {
		if IsCompileError(err) {
			return false, err
		}
		return false, &CompileError{Condition: cond, Pos: -1, Message: err.Error()}
	}
	return ok, nil
}

// CUE evaluates expressions with the CUE runtime.
//
// Thread-safety: safe for concurrent use; evaluation is serialized on the
// shared context.
type CUE struct {
	mu  sync.Mutex
	ctx *cue.Context
}

// NewCUE creates a CUE evaluator.
func NewCUE() *CUE {
	return &CUE{ctx: cuecontext.New()}
}

// Eval compiles expression as a CUE value and reads it as a bool.
func (c *CUE) Eval(expression string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.ctx.CompileString(expression)
	if err := v.Err(); err != nil {
		return false, formatCUEError(expression, err)
	}
	b, err := v.Bool()
	if err != nil {
		return false, formatCUEError(expression, err)
	}
	return b, nil
}

// Expr evaluates expressions with expr-lang. Compiled programs are cached
// by expression text.
//
// Thread-safety: safe for concurrent use.
type Expr struct {
	mu       sync.Mutex
	programs map[string]*vm.Program
}

// NewExpr creates an expr-lang evaluator.
func NewExpr() *Expr {
	return &Expr{programs: make(map[string]*vm.Program)}
}

// Eval compiles (or reuses) expression and runs it.
func (e *Expr) Eval(expression string) (bool, error) {
	prg, err := e.program(expression)
	if err != nil {
		return false, err
	}
	out, err := expr.Run(prg, nil)
	if err != nil {
		return false, &CompileError{Condition: expression, Pos: -1, Message: err.Error()}
	}
	b, ok := out.(bool)
	if !ok {
		return false, &CompileError{Condition: expression, Pos: -1, Message: fmt.Sprintf("result is %T, not bool", out)}
	}
	return b, nil
}

func (e *Expr) program(expression string) (*vm.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, ok := e.programs[expression]; ok {
		return prg, nil
	}
	prg, err := expr.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, &CompileError{Condition: expression, Pos: -1, Message: err.Error()}
	}
	e.programs[expression] = prg
	return prg, nil
}
