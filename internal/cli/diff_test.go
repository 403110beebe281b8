package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineDiff(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   []DiffLine
	}{
		{
			name:   "replaced line",
			before: "a\nb\nc\n",
			after:  "a\nB\nc\n",
			want:   []DiffLine{{" ", "a"}, {"-", "b"}, {"+", "B"}, {" ", "c"}},
		},
		{
			name:   "appended line",
			before: "a\n",
			after:  "a\nb\n",
			want:   []DiffLine{{" ", "a"}, {"+", "b"}},
		},
		{
			name:   "no trailing newline",
			before: "a",
			after:  "b",
			want:   []DiffLine{{"-", "a"}, {"+", "b"}},
		},
		{
			name:   "identical",
			before: "a\r\nb\r\n",
			after:  "a\r\nb\r\n",
			want:   []DiffLine{{" ", "a"}, {" ", "b"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LineDiff(tt.before, tt.after))
		})
	}
}

func TestChanged(t *testing.T) {
	assert.False(t, Changed(LineDiff("a\n", "a\n")))
	assert.True(t, Changed(LineDiff("a\n", "b\n")))
	assert.False(t, Changed(nil))
}

func TestDiffPrinter_Context(t *testing.T) {
	diff := LineDiff("1\n2\n3\n4\n5\n6\n7\n", "1\n2\n3\n4\nX\n6\n7\n")

	buf := &bytes.Buffer{}
	newDiffPrinter(false).print(buf, diff)
	assert.Equal(t, "...\n  3\n  4\n- 5\n+ X\n  6\n  7\n", buf.String())
}

func TestDiffPrinter_Colour(t *testing.T) {
	diff := LineDiff("a\n", "b\n")

	buf := &bytes.Buffer{}
	newDiffPrinter(true).print(buf, diff)
	assert.Contains(t, buf.String(), "\x1b[31m")
	assert.Contains(t, buf.String(), "\x1b[32m")

	buf.Reset()
	newDiffPrinter(false).print(buf, diff)
	assert.Equal(t, "- a\n+ b\n", buf.String())
}
