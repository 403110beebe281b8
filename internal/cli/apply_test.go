package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/projdoc/internal/testutil"
)

const addVersionScript = `steps:
  - op: set_property
    name: Version
    value: "2.0"
`

func writeScriptFile(t *testing.T, content string) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), "edit.yaml", content)
}

func TestApply_PrintsDiffWithoutWriting(t *testing.T) {
	path := writeLibrary(t)
	script := writeScriptFile(t, addVersionScript)

	stdout, _, err := execute(t, "apply", path, script)
	require.NoError(t, err)
	assert.Contains(t, stdout, "+     <Version>2.0</Version>\n")
	assert.Contains(t, stdout, "applied 1 step(s), version 1")
	assert.NotContains(t, stdout, "wrote")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testutil.Library, string(data))
}

func TestApply_Write(t *testing.T) {
	path := writeLibrary(t)
	script := writeScriptFile(t, addVersionScript)

	stdout, _, err := execute(t, "apply", "--write", path, script)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "    <OutputPath>bin\\$(Configuration)</OutputPath>\n    <Version>2.0</Version>\n  </PropertyGroup>")
}

func TestApply_RecordsRevision(t *testing.T) {
	path := writeLibrary(t)
	script := writeScriptFile(t, addVersionScript)
	db := filepath.Join(t.TempDir(), "history.db")

	stdout, _, err := execute(t, "apply", "--db", db, path, script)
	require.NoError(t, err)
	assert.Contains(t, stdout, "recorded revision ")

	stdout, _, err = execute(t, "--format", "json", "history", "--db", db, path)
	require.NoError(t, err)
	var resp struct {
		Data []HistoryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, path, resp.Data[0].Path)
	assert.Equal(t, int64(1), resp.Data[0].Version)
	assert.Empty(t, resp.Data[0].Engines)
}

func TestApply_JSON(t *testing.T) {
	path := writeLibrary(t)
	script := writeScriptFile(t, addVersionScript)

	stdout, _, err := execute(t, "--format", "json", "apply", path, script)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   ApplyResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Changed)
	assert.Equal(t, 1, resp.Data.Steps)
	assert.Contains(t, resp.Data.Diff, DiffLine{Op: "+", Text: "    <Version>2.0</Version>"})
}

func TestApply_BadScript(t *testing.T) {
	path := writeLibrary(t)
	script := writeScriptFile(t, "steps:\n  - op: explode\n")

	_, _, err := execute(t, "apply", path, script)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load script")
}

func TestApply_FailedStep(t *testing.T) {
	path := writeLibrary(t)
	script := writeScriptFile(t, "steps:\n  - op: remove_target\n    name: Deploy\n")

	_, _, err := execute(t, "apply", path, script)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `no target "Deploy"`)
}

func TestApply_NoChanges(t *testing.T) {
	path := writeLibrary(t)
	script := writeScriptFile(t, "steps: []\n")

	stdout, _, err := execute(t, "apply", path, script)
	require.NoError(t, err)
	assert.Contains(t, stdout, "no changes")
}
