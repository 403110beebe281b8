package project

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string, opts ...Option) *Document {
	t.Helper()
	d, err := Parse([]byte(text), opts...)
	require.NoError(t, err)
	return d
}

func TestInsert_MatchesSiblingIndent(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		expect string
	}{
		{
			name:   "two spaces",
			text:   "<Project>\n  <ItemGroup>\n    <A Include=\"a\" />\n  </ItemGroup>\n</Project>\n",
			expect: "<Project>\n  <ItemGroup>\n    <A Include=\"a\" />\n  </ItemGroup>\n  <ItemGroup />\n</Project>\n",
		},
		{
			name:   "four spaces",
			text:   "<Project>\n    <ItemGroup>\n        <A Include=\"a\" />\n    </ItemGroup>\n</Project>\n",
			expect: "<Project>\n    <ItemGroup>\n        <A Include=\"a\" />\n    </ItemGroup>\n    <ItemGroup />\n</Project>\n",
		},
		{
			name:   "tabs",
			text:   "<Project>\n\t<ItemGroup>\n\t\t<A Include=\"a\" />\n\t</ItemGroup>\n</Project>\n",
			expect: "<Project>\n\t<ItemGroup>\n\t\t<A Include=\"a\" />\n\t</ItemGroup>\n\t<ItemGroup />\n</Project>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustParse(t, tt.text)
			_, err := d.AddItemGroup("")
			require.NoError(t, err)
			assert.Equal(t, tt.expect, d.String())
		})
	}
}

func TestInsert_IntoEmptyGroupUsesParentStep(t *testing.T) {
	d := New()
	_, err := d.AddItem("Compile", "a.cs")
	require.NoError(t, err)

	expect := `<?xml version="1.0" encoding="utf-8"?>
<Project ToolsVersion="4.0" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <PropertyGroup />
  <ItemGroup>
    <Compile Include="a.cs" />
  </ItemGroup>
</Project>
`
	assert.Equal(t, expect, d.String())
}

func TestInsert_KeepsNewlineStyle(t *testing.T) {
	d := mustParse(t, "<Project>\r\n  <PropertyGroup />\r\n</Project>\r\n")
	_, err := d.AddItem("Compile", "a.cs")
	require.NoError(t, err)

	assert.Equal(t,
		"<Project>\r\n  <PropertyGroup />\r\n  <ItemGroup>\r\n    <Compile Include=\"a.cs\" />\r\n  </ItemGroup>\r\n</Project>\r\n",
		d.String())
}

func TestInsert_SelfClosingParentOpens(t *testing.T) {
	d := mustParse(t, "<Project>\n  <PropertyGroup Condition=\"'$(A)'=='1'\" />\n</Project>\n")
	g := d.firstElement()

	require.NoError(t, g.AppendChild(d.CreateProperty("B", "2")))
	assert.Equal(t,
		"<Project>\n  <PropertyGroup Condition=\"'$(A)'=='1'\">\n    <B>2</B>\n  </PropertyGroup>\n</Project>\n",
		d.String())
}

func TestInsert_BeforeFirstChildWithoutWhitespace(t *testing.T) {
	d := mustParse(t, "<Project><Target Name=\"T\" /></Project>")
	_, err := d.AddImport("a.targets", "")
	require.NoError(t, err)

	assert.Equal(t,
		"<Project>\n  <Import Project=\"a.targets\" />\n  <Target Name=\"T\" /></Project>",
		d.String())
}

func TestRemove_LeavesNoBlankLine(t *testing.T) {
	without := "<Project>\n  <PropertyGroup />\n  <Target Name=\"B\" />\n</Project>\n"
	with := "<Project>\n  <PropertyGroup />\n  <ItemGroup>\n    <None Include=\"x\" />\n  </ItemGroup>\n  <Target Name=\"B\" />\n</Project>\n"

	d := mustParse(t, with)
	item := d.FindItem("None", "x")
	require.NotNil(t, item)

	require.NoError(t, d.RemoveItem(item, true))
	assert.Equal(t, without, d.String())
}

func TestRemove_Positions(t *testing.T) {
	text := "<Project>\n  <A />\n  <B />\n  <C />\n</Project>\n"
	tests := []struct {
		remove string
		expect string
	}{
		{"A", "<Project>\n  <B />\n  <C />\n</Project>\n"},
		{"B", "<Project>\n  <A />\n  <C />\n</Project>\n"},
		{"C", "<Project>\n  <A />\n  <B />\n</Project>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.remove, func(t *testing.T) {
			d := mustParse(t, text)
			require.NoError(t, d.Child(tt.remove).Remove())
			assert.Equal(t, tt.expect, d.String())
		})
	}
}

func TestRemove_TakesOneLineOnly(t *testing.T) {
	d := mustParse(t, "<Project>\n  <A />\n\n  <B />\n</Project>\n")
	require.NoError(t, d.Child("B").Remove())
	assert.Equal(t, "<Project>\n  <A />\n\n</Project>\n", d.String())
}

func TestRemove_CRLF(t *testing.T) {
	d := mustParse(t, "<Project>\r\n  <A />\r\n  <B />\r\n</Project>\r\n")
	require.NoError(t, d.Child("B").Remove())
	assert.Equal(t, "<Project>\r\n  <A />\r\n</Project>\r\n", d.String())
}

func TestRemove_RepeatedEditsDoNotAccumulate(t *testing.T) {
	d := mustParse(t, "<Project>\n  <PropertyGroup />\n</Project>\n")
	original := d.String()

	for i := 0; i < 5; i++ {
		item, err := d.AddItem("None", "x")
		require.NoError(t, err)
		require.NoError(t, d.RemoveItem(item, true))
	}
	assert.Equal(t, original, d.String())
}

func TestMove_ReindentsSubtree(t *testing.T) {
	d := mustParse(t, `<Project>
  <ItemGroup>
    <Compile Include="a.cs" />
  </ItemGroup>
  <Target Name="T">
    <ItemGroup>
      <Extra Include="e.txt">
        <Kind>x</Kind>
      </Extra>
    </ItemGroup>
  </Target>
</Project>
`)
	extra := d.FindItem("Extra", "e.txt")
	a := d.FindItem("Compile", "a.cs")
	require.NotNil(t, extra)
	require.NotNil(t, a)

	require.NoError(t, d.MoveAfter(extra, a))
	assert.Equal(t, `<Project>
  <ItemGroup>
    <Compile Include="a.cs" />
    <Extra Include="e.txt">
      <Kind>x</Kind>
    </Extra>
  </ItemGroup>
  <Target Name="T">
    <ItemGroup>
    </ItemGroup>
  </Target>
</Project>
`, d.String())
	assert.Equal(t, int64(1), d.Version(), "a move is one edit")
}

func TestMove_Before(t *testing.T) {
	d := mustParse(t, "<Project>\n  <A />\n  <B />\n  <C />\n</Project>\n")
	require.NoError(t, d.MoveBefore(d.Child("C"), d.Child("A")))
	assert.Equal(t, "<Project>\n  <C />\n  <A />\n  <B />\n</Project>\n", d.String())
}

func TestShiftLines(t *testing.T) {
	assert.Equal(t, "\n    a\n    b", shiftLines("\n  a\n  b", "  ", "    "))
	assert.Equal(t, "\r\n  x", shiftLines("\r\n    x", "    ", "  "))
	assert.Equal(t, "\n\tx", shiftLines("\nx", "", "\t"))
	assert.Equal(t, "no breaks", shiftLines("no breaks", "", "  "))
}

func TestIndentOf(t *testing.T) {
	d := mustParse(t, "<Project>\n   <ItemGroup>\n      <A Include=\"a\" />\n   </ItemGroup>\n</Project>")
	item := d.FindItem("A", "a")
	require.NotNil(t, item)

	assert.Equal(t, "", indentOf(&d.Node))
	assert.Equal(t, "   ", indentOf(item.Parent()))
	assert.Equal(t, "      ", indentOf(item))
	assert.True(t, strings.HasSuffix(d.String(), "</Project>"))
}
