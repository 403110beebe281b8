package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ConditionedGroups has one unconditioned property group followed by one
// gated on the Debug configuration, and no imports.
const ConditionedGroups = `<?xml version="1.0" encoding="utf-8"?>
<Project ToolsVersion="4.0" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <PropertyGroup>
    <Configuration>Debug</Configuration>
    <OutputType>Exe</OutputType>
  </PropertyGroup>
  <PropertyGroup Condition="'$(Configuration)'=='Debug'">
    <DebugSymbols>true</DebugSymbols>
  </PropertyGroup>
</Project>
`

// Library is a small but complete project: settings, two item groups, an
// import, a target and an extension section.
const Library = `<?xml version="1.0" encoding="utf-8"?>
<Project DefaultTargets="Build" ToolsVersion="4.0" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <!-- library settings -->
  <PropertyGroup>
    <AssemblyName>Lib</AssemblyName>
    <Configuration>Release</Configuration>
    <OutputPath>bin\$(Configuration)</OutputPath>
  </PropertyGroup>
  <ItemGroup>
    <Compile Include="a.cs" />
    <Compile Include="b.cs">
      <Link>shared\b.cs</Link>
    </Compile>
  </ItemGroup>
  <ItemGroup>
    <Reference Include="System" />
    <Reference Include="System.Xml" Condition="'$(Configuration)'=='Debug'" />
  </ItemGroup>
  <Import Project="common.targets" />
  <Target Name="Build" DependsOnTargets="Compile">
    <Message Text="building $(AssemblyName)" />
  </Target>
  <ProjectExtensions>
    <Tool><Setting Key="x">1</Setting></Tool>
  </ProjectExtensions>
</Project>
`

// CommonTargets is imported by Library.
const CommonTargets = `<Project xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <PropertyGroup>
    <Common>yes</Common>
  </PropertyGroup>
  <Target Name="Compile" />
</Project>
`

// WriteFile writes content to name under dir and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
