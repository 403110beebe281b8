package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/projdoc/internal/project"
	"github.com/roach88/projdoc/internal/testutil"
)

func TestCheck_Identical(t *testing.T) {
	path := writeLibrary(t)
	stdout, _, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ "+path+": round trip is byte-identical")
	assert.NotContains(t, stdout, "warning")
}

func TestCheck_JSON(t *testing.T) {
	path := writeLibrary(t)
	stdout, _, err := execute(t, "--format", "json", "check", path)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Identical)
	assert.Empty(t, resp.Data.Diff)
}

func TestCheck_TargetCycleWarning(t *testing.T) {
	text := "<Project>\n  <Target Name=\"Build\" DependsOnTargets=\"Build\" />\n  <Target Name=\"Clean\" />\n</Project>\n"
	path := testutil.WriteFile(t, t.TempDir(), "cycle.proj", text)

	stdout, _, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "warning: target depends on itself: Build → Build")
}

func TestCheck_MalformedExitCode(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "bad.proj", "<Project><Oops></Project>")
	_, _, err := execute(t, "check", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTargetCycleWarnings(t *testing.T) {
	d, err := project.Parse([]byte(testutil.Library))
	require.NoError(t, err)
	assert.Empty(t, targetCycleWarnings(d))

	compile, err := d.AddTarget("Compile")
	require.NoError(t, err)
	require.NoError(t, compile.SetAttr("DependsOnTargets", " Build ; "))
	warnings := targetCycleWarnings(d)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "target dependency cycle")
}
