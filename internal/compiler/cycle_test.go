package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeTargetCycles_NoDeps(t *testing.T) {
	assert.Empty(t, AnalyzeTargetCycles(nil))
	assert.Empty(t, AnalyzeTargetCycles(map[string][]string{"Build": nil}))
}

func TestAnalyzeTargetCycles_Chain(t *testing.T) {
	deps := map[string][]string{
		"Build":   {"Compile"},
		"Compile": {"Restore"},
		"Restore": nil,
	}
	assert.Empty(t, AnalyzeTargetCycles(deps), "a chain is not a cycle")
}

func TestAnalyzeTargetCycles_SelfLoop(t *testing.T) {
	warnings := AnalyzeTargetCycles(map[string][]string{"Build": {"Build"}})
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"Build", "Build"}, warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "depends on itself")
}

func TestAnalyzeTargetCycles_TwoNodes(t *testing.T) {
	deps := map[string][]string{
		"A": {"B"},
		"B": {"A"},
		"C": {"A"},
	}
	warnings := AnalyzeTargetCycles(deps)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"A", "B", "A"}, warnings[0].Path)
	assert.Equal(t, "target dependency cycle: A → B → A", warnings[0].Message)
}

func TestAnalyzeTargetCycles_Separate(t *testing.T) {
	deps := map[string][]string{
		"X": {"Y"},
		"Y": {"X"},
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
	}
	warnings := AnalyzeTargetCycles(deps)
	require.Len(t, warnings, 2)
	assert.Equal(t, []string{"A", "B", "C", "A"}, warnings[0].Path)
	assert.Equal(t, []string{"X", "Y", "X"}, warnings[1].Path)
}

func TestAnalyzeTargetCycles_MissingTargetIgnored(t *testing.T) {
	deps := map[string][]string{"Build": {"Undefined"}}
	assert.Empty(t, AnalyzeTargetCycles(deps))
}
