package harness

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/projdoc/internal/project"
	"github.com/roach88/projdoc/internal/store"
	"github.com/roach88/projdoc/internal/testutil"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), "script.yaml", content)
}

func TestLoadScript_Valid(t *testing.T) {
	s, err := LoadScript("testdata/scripts/add_reference.yaml")
	require.NoError(t, err)

	assert.Equal(t, "add_reference", s.Name)
	assert.Contains(t, s.Document, `<Reference Include="System" />`)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, OpSetProperty, s.Steps[0].Op)
	assert.Equal(t, "item:Reference:System.Xml", s.Steps[2].Select)
	assert.Equal(t, "'$(Configuration)'=='Debug'", s.Steps[2].Condition)
	require.NotNil(t, s.Expect)
	require.NotNil(t, s.Expect.Version)
	assert.Equal(t, int64(3), *s.Expect.Version)
	assert.Equal(t, 1, s.Expect.Items["Reference"])
}

func TestLoadScript_ResolvesFileAgainstScriptDir(t *testing.T) {
	s, err := LoadScript("testdata/scripts/file_items.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "projects", "app.proj"), s.File)
	assert.Equal(t, "shared\\c.cs", s.Steps[0].Metadata["Link"])
}

func TestLoadScript_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "document: <Project />\n",
			wantErr: "name is required",
		},
		{
			name:    "no document",
			content: "name: x\n",
			wantErr: "document or file is required",
		},
		{
			name:    "document and file",
			content: "name: x\ndocument: <Project />\nfile: a.proj\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "unknown field",
			content: "name: x\ndocument: <Project />\nflow: []\n",
			wantErr: "failed to parse script YAML",
		},
		{
			name:    "bad engine",
			content: "name: x\ndocument: <Project />\nengine: turbo\n",
			wantErr: `engine must be legacy or full, got "turbo"`,
		},
		{
			name:    "missing op",
			content: "name: x\ndocument: <Project />\nsteps:\n  - name: A\n",
			wantErr: "steps[0]: op is required",
		},
		{
			name:    "unknown op",
			content: "name: x\ndocument: <Project />\nsteps:\n  - op: frobnicate\n",
			wantErr: `steps[0]: unknown op "frobnicate"`,
		},
		{
			name:    "missing step field",
			content: "name: x\ndocument: <Project />\nsteps:\n  - op: add_item\n    type: Compile\n",
			wantErr: "add_item requires include",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScript(writeScript(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScript_MissingFile(t *testing.T) {
	_, err := LoadScript(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read script file")
}

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"add_reference", "retarget"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScript(filepath.Join("testdata", "scripts", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_FileScriptWithImports(t *testing.T) {
	s, err := LoadScript("testdata/scripts/file_items.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.NotNil(t, result.Snapshot)
	assert.Equal(t, "full", result.Snapshot.Engine)

	require.Len(t, result.Revisions, 4)
	for i, rev := range result.Revisions {
		assert.Equal(t, int64(i), rev.Version)
		if i > 0 {
			assert.Greater(t, rev.Seq, result.Revisions[i-1].Seq)
		}
	}
	assert.Equal(t, result.Text, result.Revisions[3].Text)
}

func TestRun_RecordsEvaluation(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	s, err := LoadScript("testdata/scripts/add_reference.yaml")
	require.NoError(t, err)

	h := New(WithStore(st))
	result, err := h.Run(context.Background(), s)
	require.NoError(t, err)

	last := result.Revisions[len(result.Revisions)-1]
	rec, found, err := st.ReadEvaluation(context.Background(), last.ID, "legacy")
	require.NoError(t, err)
	require.True(t, found)
	if diff := cmp.Diff(*result.Snapshot, rec.Snapshot, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("stored snapshot mismatch (-run +stored):\n%s", diff)
	}

	revs, err := st.ListRevisions(context.Background(), "add_reference.proj")
	require.NoError(t, err)
	assert.Len(t, revs, 4)
}

func TestRun_WithoutStore(t *testing.T) {
	s := &Script{
		Name:     "plain",
		Document: "<Project>\n  <PropertyGroup />\n</Project>\n",
		Steps:    []Step{{Op: OpSetProperty, Name: "A", Value: "1"}},
	}
	result, err := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))).Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Empty(t, result.Revisions)
	assert.Nil(t, result.Snapshot)
	assert.Equal(t, int64(1), result.Version)
}

func TestRun_FailedExpectations(t *testing.T) {
	version := int64(9)
	s := &Script{
		Name:     "failing",
		Document: "<Project>\n  <PropertyGroup>\n    <A>1</A>\n  </PropertyGroup>\n</Project>\n",
		Expect: &Expect{
			Version:     &version,
			Contains:    []string{"<B>"},
			NotContains: []string{"<A>"},
			Properties:  map[string]string{"A": "2", "Missing": "x"},
			Items:       map[string]int{"Compile": 1},
		},
	}
	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.Contains(t, result.Errors[0], "Assertion failed: version")
	assert.Contains(t, result.Errors[0], "Expected: 9")
	assert.Contains(t, result.Errors[1], "Assertion failed: contains")
	assert.Contains(t, result.Errors[2], "Assertion failed: not_contains")
	assert.Contains(t, result.Errors[3], `Actual: A="1"`)
	assert.Contains(t, result.Errors[4], "Actual: undefined")
	assert.Contains(t, result.Errors[5], "Expected: 1 Compile items")
}

func TestRun_StepError(t *testing.T) {
	s := &Script{
		Name:     "broken",
		Document: "<Project />\n",
		Steps:    []Step{{Op: OpRemoveTarget, Name: "Build"}},
	}
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `steps[0] remove_target: no target "Build"`)
}

func TestRun_MalformedDocument(t *testing.T) {
	_, err := Run(&Script{Name: "bad", Document: "<Project>"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse document")
	assert.True(t, project.IsMalformed(err))
}

func TestApply(t *testing.T) {
	d, err := project.Parse([]byte(testutil.Library))
	require.NoError(t, err)

	err = Apply(d, []Step{
		{Op: OpSetProperty, Name: "Version", Value: "2.0"},
		{Op: OpRemoveImport, Project: "COMMON.targets"},
		{Op: OpSetAttr, Select: "target:Build", Name: "DependsOnTargets", Value: "Restore"},
		{Op: OpRemoveExtension, Name: "Tool"},
		{Op: OpSetToolsVersion, Value: "15.0"},
	})
	require.NoError(t, err)

	text := d.String()
	assert.Contains(t, text, "<Version>2.0</Version>")
	assert.NotContains(t, text, "common.targets")
	assert.Contains(t, text, `<Target Name="Build" DependsOnTargets="Restore">`)
	assert.NotContains(t, text, "ProjectExtensions")
	assert.Equal(t, "15.0", d.ToolsVersion())
	assert.Equal(t, int64(5), d.Version())
}

func TestApply_StopsAtFirstFailure(t *testing.T) {
	d, err := project.Parse([]byte(testutil.Library))
	require.NoError(t, err)

	err = Apply(d, []Step{
		{Op: OpSetProperty, Name: "Version", Value: "2.0"},
		{Op: OpRemoveItem, Type: "Compile", Include: "z.cs"},
		{Op: OpSetProperty, Name: "Never", Value: "x"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `steps[1] remove_item: no Compile item "z.cs"`)
	assert.Nil(t, d.Property("Never"))
	assert.Equal(t, int64(1), d.Version())
}

func TestApply_ValidatesSteps(t *testing.T) {
	d := project.New()
	err := Apply(d, []Step{{Op: OpSetMetadata, Name: "Link"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0]: set_metadata requires select")
	assert.Equal(t, int64(0), d.Version())
}

func TestResolve(t *testing.T) {
	d, err := project.Parse([]byte(testutil.Library))
	require.NoError(t, err)

	tests := []struct {
		sel  string
		want *project.Node
	}{
		{"project", &d.Node},
		{"property:AssemblyName", d.Property("AssemblyName")},
		{"item:Compile:b.cs", d.FindItem("Compile", "b.cs")},
		{"target:Build", d.Target("Build")},
		{"import:common.targets", findImport(d, "common.targets")},
		{"property_group:0", d.Property("AssemblyName").Parent()},
		{"item_group:1", d.FindItem("Reference", "System").Parent()},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			require.NotNil(t, tt.want)
			got, err := resolve(d, tt.sel)
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	d, err := project.Parse([]byte(testutil.Library))
	require.NoError(t, err)

	tests := []struct {
		sel     string
		wantErr string
	}{
		{"item:Compile", "want item:<type>:<include>"},
		{"property_group:x", "bad index"},
		{"item_group:5", "matches nothing"},
		{"target:Nope", "matches nothing"},
		{"frob:x", "unknown selector"},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			_, err := resolve(d, tt.sel)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: "version", Expected: "3", Actual: "2"}
	assert.Equal(t, "Assertion failed: version\n  Expected: 3\n  Actual: 2\n", err.Error())
}

func TestScriptFilesParse(t *testing.T) {
	entries, err := os.ReadDir("testdata/scripts")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		_, err := LoadScript(filepath.Join("testdata", "scripts", e.Name()))
		assert.NoError(t, err, e.Name())
	}
}

func TestLoadSteps_IgnoresDocument(t *testing.T) {
	path := writeScript(t, "steps:\n  - op: add_target\n    name: Pack\n")
	steps, err := LoadSteps(path)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, OpAddTarget, steps[0].Op)

	_, err = LoadSteps(writeScript(t, "steps:\n  - op: add_target\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add_target requires name")
}
