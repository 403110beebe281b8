package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/projdoc/internal/ir"
)

func TestPropertyTable_Expand(t *testing.T) {
	props := newPropertyTable("", nil)
	props.set("Configuration", "Debug")
	props.set("Platform", "x64")

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"$(Configuration)", "Debug"},
		{"bin\\$(configuration)\\$(PLATFORM)", "bin\\Debug\\x64"},
		{"$( Configuration )", "Debug"},
		{"[$(Undefined)]", "[]"},
		{"$([System.IO.Path]::GetTempPath())", "$([System.IO.Path]::GetTempPath())"},
		{"@(Compile);%(Link)", "@(Compile);%(Link)"},
		{"$(Configuration", "$(Configuration"},
		{"$()", "$()"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, props.expand(tt.in), tt.in)
	}
}

func TestPropertyTable_CaseInsensitiveRedefinition(t *testing.T) {
	props := newPropertyTable("", nil)
	props.set("OutputPath", "bin")
	props.set("outputpath", "out")

	want := []ir.Property{{Name: "OutputPath", Value: "out"}}
	if diff := cmp.Diff(want, props.properties()); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestPropertyTable_GlobalsWin(t *testing.T) {
	props := newPropertyTable("", map[string]string{"Configuration": "Release", "A": "1"})
	assert.False(t, props.set("configuration", "Debug"))

	v, ok := props.get("Configuration")
	assert.True(t, ok)
	assert.Equal(t, "Release", v)

	want := []ir.Property{{Name: "A", Value: "1"}, {Name: "Configuration", Value: "Release"}}
	if diff := cmp.Diff(want, props.properties()); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestPropertyTable_Reserved(t *testing.T) {
	props := newPropertyTable("/src/app/App.proj", nil)
	props.enterFile("/src/build/common.props")

	assert.Equal(t, "/src/app", props.expand("$(MSBuildProjectDirectory)"))
	assert.Equal(t, "App.proj", props.expand("$(MSBuildProjectFile)"))
	assert.Equal(t, "App", props.expand("$(MSBuildProjectName)"))
	assert.Equal(t, "/src/build/", props.expand("$(MSBuildThisFileDirectory)"))
	assert.Equal(t, "common.props", props.expand("$(MSBuildThisFile)"))

	assert.False(t, props.set("MSBuildProjectName", "Other"))
	assert.Empty(t, props.properties(), "reserved properties are not listed")
}
