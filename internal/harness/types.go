package harness

import "github.com/roach88/projdoc/internal/ir"

// Result is the outcome of running a script.
type Result struct {
	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	// Text is the serialized document after the last step.
	Text string `json:"text"`

	// Version is the document version after the last step.
	Version int64 `json:"version"`

	// Errors holds one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Revisions are the recorded states, the starting document first. Empty
	// when the harness has no store.
	Revisions []ir.Revision `json:"revisions,omitempty"`

	// Snapshot is the evaluated view, when an expectation needed one.
	Snapshot *ir.Snapshot `json:"snapshot,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
