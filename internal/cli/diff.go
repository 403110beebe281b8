package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffLine is one line of a line diff. Op is "+", "-" or " ".
type DiffLine struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

// LineDiff compares two texts line by line. Line terminators are not part
// of Text, so a change of newline style alone shows up as no change.
func LineDiff(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		op := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = "+"
		case diffmatchpatch.DiffDelete:
			op = "-"
		}
		for _, line := range splitLines(d.Text) {
			out = append(out, DiffLine{Op: op, Text: line})
		}
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r\n")
	}
	return lines
}

// Changed reports whether the diff has any insertions or deletions.
func Changed(diff []DiffLine) bool {
	for _, l := range diff {
		if l.Op != " " {
			return true
		}
	}
	return false
}

// diffPrinter writes a diff with a few lines of context around each change.
type diffPrinter struct {
	context int
	add     *color.Color
	del     *color.Color
	sep     *color.Color
}

func newDiffPrinter(colorize bool) *diffPrinter {
	p := &diffPrinter{
		context: 2,
		add:     color.New(color.FgGreen),
		del:     color.New(color.FgRed),
		sep:     color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.add, p.del, p.sep} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *diffPrinter) print(w io.Writer, diff []DiffLine) {
	show := make([]bool, len(diff))
	for i, l := range diff {
		if l.Op == " " {
			continue
		}
		for j := max(0, i-p.context); j <= min(len(diff)-1, i+p.context); j++ {
			show[j] = true
		}
	}
	gap := false
	for i, l := range diff {
		if !show[i] {
			gap = true
			continue
		}
		if gap {
			p.sep.Fprintln(w, "...")
			gap = false
		}
		switch l.Op {
		case "+":
			p.add.Fprintf(w, "+ %s\n", l.Text)
		case "-":
			p.del.Fprintf(w, "- %s\n", l.Text)
		default:
			fmt.Fprintf(w, "  %s\n", l.Text)
		}
	}
}
