package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/projdoc/internal/project"
)

// AssertionError is a failed expectation.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// CheckExpect checks result against exp and returns one message per failed
// expectation. ev may be nil when exp has no property or item expectations.
// Map-valued expectations are checked in sorted key order.
func CheckExpect(result *Result, exp *Expect, ev project.Evaluation) []string {
	var errs []string
	fail := func(err error) { errs = append(errs, err.Error()) }

	if exp.Version != nil && *exp.Version != result.Version {
		fail(&AssertionError{
			Type:     "version",
			Expected: fmt.Sprintf("%d", *exp.Version),
			Actual:   fmt.Sprintf("%d", result.Version),
		})
	}
	for _, s := range exp.Contains {
		if !strings.Contains(result.Text, s) {
			fail(&AssertionError{Type: "contains", Expected: fmt.Sprintf("text containing %q", s), Actual: "not found"})
		}
	}
	for _, s := range exp.NotContains {
		if strings.Contains(result.Text, s) {
			fail(&AssertionError{Type: "not_contains", Expected: fmt.Sprintf("text without %q", s), Actual: "found"})
		}
	}
	if ev == nil {
		return errs
	}

	for _, name := range slices.Sorted(maps.Keys(exp.Properties)) {
		want := exp.Properties[name]
		got, ok := propertyValue(ev, name)
		switch {
		case !ok:
			fail(&AssertionError{Type: "property", Expected: fmt.Sprintf("%s=%q", name, want), Actual: "undefined"})
		case got != want:
			fail(&AssertionError{Type: "property", Expected: fmt.Sprintf("%s=%q", name, want), Actual: fmt.Sprintf("%s=%q", name, got)})
		}
	}
	for _, itemType := range slices.Sorted(maps.Keys(exp.Items)) {
		want := exp.Items[itemType]
		if got := itemCount(ev, itemType); got != want {
			fail(&AssertionError{
				Type:     "items",
				Expected: fmt.Sprintf("%d %s items", want, itemType),
				Actual:   fmt.Sprintf("%d", got),
			})
		}
	}
	return errs
}

func propertyValue(ev project.Evaluation, name string) (string, bool) {
	for _, p := range ev.Properties() {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}

func itemCount(ev project.Evaluation, itemType string) int {
	n := 0
	for _, it := range ev.Items() {
		if strings.EqualFold(it.Type, itemType) {
			n++
		}
	}
	return n
}
