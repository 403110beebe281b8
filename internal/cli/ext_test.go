package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExt_ListAndGet(t *testing.T) {
	path := writeLibrary(t)

	stdout, _, err := execute(t, "ext", "ls", path)
	require.NoError(t, err)
	assert.Equal(t, "Tool\n", stdout)

	stdout, _, err = execute(t, "ext", "get", path, "Tool")
	require.NoError(t, err)
	assert.Equal(t, "<Setting Key=\"x\">1</Setting>\n", stdout)
}

func TestExt_GetMissing(t *testing.T) {
	path := writeLibrary(t)
	_, _, err := execute(t, "ext", "get", path, "Nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), `no extension section "Nope"`)
}

func TestExt_SetSavesFile(t *testing.T) {
	path := writeLibrary(t)

	stdout, _, err := execute(t, "ext", "set", path, "Tool", "<Setting>2</Setting>")
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<Tool><Setting>2</Setting></Tool>")
}

func TestExt_SetMalformedFragment(t *testing.T) {
	path := writeLibrary(t)
	_, _, err := execute(t, "ext", "set", path, "Tool", "<Setting>")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "fragment is not well-formed")
}

func TestExt_Remove(t *testing.T) {
	path := writeLibrary(t)

	_, _, err := execute(t, "ext", "rm", path, "Tool")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ProjectExtensions")

	_, _, err = execute(t, "ext", "rm", path, "Tool")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
