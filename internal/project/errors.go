package project

import (
	"errors"
	"fmt"
)

// Reasons carried by InvalidStateError. Match with errors.Is.
var (
	ErrForeignNode    = errors.New("node belongs to another document")
	ErrAttached       = errors.New("node is already attached to a parent")
	ErrDetached       = errors.New("node is not attached to the document tree")
	ErrNotDirectChild = errors.New("node is not a direct child of the project element")
	ErrWrongKind      = errors.New("node has the wrong kind for this operation")
	ErrRootElement    = errors.New("operation not allowed on the project element")
	ErrNoEngine       = errors.New("no evaluation engine available")
	ErrClosed         = errors.New("document is closed")
	ErrNoPath         = errors.New("document has no path")
	ErrNotChild       = errors.New("reference node is not a child of the parent")
	ErrCycle          = errors.New("node would become its own ancestor")
	ErrInvalidName    = errors.New("invalid element or attribute name")
)

// MalformedDocumentError reports text that does not parse as a well-formed
// project document. A failed parse never yields a document.
type MalformedDocumentError struct {
	// Path is the file the text came from, if any.
	Path string

	// Line is the 1-based source line of the failure, or 0 if unknown.
	Line int

	Err error
}

func (e *MalformedDocumentError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<input>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("malformed document %s:%d: %v", loc, e.Line, e.Err)
	}
	return fmt.Sprintf("malformed document %s: %v", loc, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// InvalidStateError reports structural misuse of the tree, such as inserting
// a node owned by another document.
type InvalidStateError struct {
	// Op names the operation that was refused.
	Op string

	// Err is one of the Err* reasons above, possibly wrapped.
	Err error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InvalidStateError) Unwrap() error {
	return e.Err
}

func invalidState(op string, err error) *InvalidStateError {
	return &InvalidStateError{Op: op, Err: err}
}

// EvaluationError reports that the evaluation engine failed to build an
// evaluated view. The document is left untouched, so a retry is possible.
type EvaluationError struct {
	// Path is the identity the document was evaluated under.
	Path string

	// Engine is the engine kind that was asked.
	Engine EngineKind

	// Version is the document version the build was attempted at.
	Version int64

	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %s (engine=%s, version=%d): %v", e.Path, e.Engine, e.Version, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// ConcurrencyViolationError reports a mutation of a shared document from
// outside the designated writer.
type ConcurrencyViolationError struct {
	Op string
}

func (e *ConcurrencyViolationError) Error() string {
	return fmt.Sprintf("%s: shared document mutated off the writer context", e.Op)
}

// IsMalformed reports whether err is or wraps a MalformedDocumentError.
func IsMalformed(err error) bool {
	var me *MalformedDocumentError
	return errors.As(err, &me)
}

// IsInvalidState reports whether err is or wraps an InvalidStateError.
func IsInvalidState(err error) bool {
	var ie *InvalidStateError
	return errors.As(err, &ie)
}

// IsEvaluationError reports whether err is or wraps an EvaluationError.
func IsEvaluationError(err error) bool {
	var ee *EvaluationError
	return errors.As(err, &ee)
}

// IsConcurrencyViolation reports whether err is or wraps a
// ConcurrencyViolationError.
func IsConcurrencyViolation(err error) bool {
	var ce *ConcurrencyViolationError
	return errors.As(err, &ce)
}
