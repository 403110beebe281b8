package project

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/projdoc/internal/testutil"
)

func TestScenario_GlobalGroupAndTopImport(t *testing.T) {
	d := mustParse(t, testutil.ConditionedGroups)

	groups := slices.Collect(d.PropertyGroups())
	require.Len(t, groups, 2)
	assert.Same(t, groups[0], d.GlobalPropertyGroup())
	assert.Equal(t, "'$(Configuration)'=='Debug'", groups[1].Condition())

	before := d.Version()
	imp, err := d.AddImport("x.targets", "")
	require.NoError(t, err)
	assert.Equal(t, before+1, d.Version())

	assert.Same(t, imp, d.firstElement(), "first import goes to the top")
	expect := strings.Replace(testutil.ConditionedGroups,
		"  <PropertyGroup>\n",
		"  <Import Project=\"x.targets\" />\n  <PropertyGroup>\n", 1)
	assert.Equal(t, expect, d.String())
}

func TestScenario_SameNamedItemsShareNewGroup(t *testing.T) {
	d := New()
	pg := d.firstElement()
	require.Equal(t, KindPropertyGroup, pg.Kind())

	first, err := d.AddItem("Compile", "a.cs")
	require.NoError(t, err)
	groups := slices.Collect(d.ItemGroups())
	require.Len(t, groups, 1)
	assert.Same(t, groups[0], first.Parent())

	elements := slices.Collect(d.Elements())
	assert.Equal(t, []*Node{pg, groups[0]}, elements, "new group follows the property group")

	second, err := d.AddItem("Compile", "b.cs")
	require.NoError(t, err)
	assert.Same(t, groups[0], second.Parent())
	assert.Len(t, slices.Collect(d.ItemGroups()), 1)
}

func TestAddItem_AffinityWithOtherGroups(t *testing.T) {
	d := mustParse(t, testutil.Library)

	r, err := d.AddItem("Reference", "System.Core")
	require.NoError(t, err)
	c, err := d.AddItem("Compile", "c.cs")
	require.NoError(t, err)
	r2, err := d.AddItem("Reference", "System.Data")
	require.NoError(t, err)

	groups := slices.Collect(d.ItemGroups())
	require.Len(t, groups, 2)
	assert.Same(t, groups[1], r.Parent())
	assert.Same(t, groups[1], r2.Parent())
	assert.Same(t, groups[0], c.Parent())

	var includes []string
	for it := range d.Items("Reference") {
		includes = append(includes, it.Include())
	}
	assert.Equal(t, []string{"System", "System.Xml", "System.Core", "System.Data"}, includes)
}

func TestAddItem_NewTypeGetsOwnGroup(t *testing.T) {
	d := mustParse(t, testutil.Library)

	item, err := d.AddItem("Content", "readme.txt")
	require.NoError(t, err)

	groups := slices.Collect(d.ItemGroups())
	require.Len(t, groups, 3)
	assert.Same(t, groups[2], item.Parent(), "new group goes after the last item group")
}

func TestAddItem_Metadata(t *testing.T) {
	d := New()
	item, err := d.AddItem("Compile", "a.cs", Metadata{Name: "Link", Value: "x\\a.cs"}, Metadata{Name: "SubType", Value: "Code"})
	require.NoError(t, err)

	v, ok := item.Metadata("Link")
	assert.True(t, ok)
	assert.Equal(t, "x\\a.cs", v)
	assert.Contains(t, d.String(),
		"    <Compile Include=\"a.cs\">\n      <Link>x\\a.cs</Link>\n      <SubType>Code</SubType>\n    </Compile>\n")
	assert.Equal(t, int64(1), d.Version())
}

func TestAddItem_InvalidMetadataName(t *testing.T) {
	d := New()
	_, err := d.AddItem("Compile", "a.cs", Metadata{Name: "Include", Value: "x"})
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Equal(t, int64(0), d.Version())
}

func TestBestItemGroup_ReservesNewGroup(t *testing.T) {
	d := New()

	g, err := d.BestItemGroup("Compile")
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Version())
	assert.Empty(t, d.bestGroups, "an empty group is not memoized")

	again, err := d.BestItemGroup("Compile")
	require.NoError(t, err)
	assert.Same(t, g, again)
	assert.Equal(t, int64(1), d.Version(), "reusing the reserved group is not an edit")
}

func TestBestItemGroup_ThenAddItemUsesSameGroup(t *testing.T) {
	d := New()

	g, err := d.BestItemGroup("Compile")
	require.NoError(t, err)
	item, err := d.AddItem("Compile", "a.cs")
	require.NoError(t, err)

	assert.Same(t, g, item.Parent())
	assert.Len(t, slices.Collect(d.ItemGroups()), 1, "no second group is created")
	assert.Same(t, g, d.bestGroups["Compile"])
	assert.Empty(t, d.reserved)
}

func TestBestItemGroup_RemovedReservationForgotten(t *testing.T) {
	d := New()

	g, err := d.BestItemGroup("Compile")
	require.NoError(t, err)
	require.NoError(t, d.RemoveGroup(g))
	assert.Empty(t, d.reserved)

	item, err := d.AddItem("Compile", "a.cs")
	require.NoError(t, err)
	assert.NotSame(t, g, item.Parent())
	assert.True(t, item.attached())
}

func TestBestItemGroup_EvictedOnManagedRemoval(t *testing.T) {
	d := mustParse(t, testutil.Library)

	g, err := d.BestItemGroup("Reference")
	require.NoError(t, err)
	assert.Same(t, g, d.bestGroups["Reference"])
	assert.Equal(t, int64(0), d.Version(), "finding an existing group is not an edit")

	for _, inc := range []string{"System", "System.Xml"} {
		require.NoError(t, d.RemoveItem(d.FindItem("Reference", inc), false))
	}
	_, cached := d.bestGroups["Reference"]
	assert.False(t, cached, "removing the last item of a type evicts it")
	assert.Len(t, slices.Collect(d.ItemGroups()), 2, "group kept when not asked to remove it")
}

func TestBestItemGroup_CacheAlwaysValid(t *testing.T) {
	d := mustParse(t, testutil.Library)

	_, err := d.AddItem("Compile", "c.cs")
	require.NoError(t, err)
	g := d.bestGroups["Compile"]
	require.NotNil(t, g)

	require.NoError(t, d.RemoveGroup(g))
	_, cached := d.bestGroups["Compile"]
	assert.False(t, cached)

	item, err := d.AddItem("Compile", "d.cs")
	require.NoError(t, err)
	assert.NotSame(t, g, item.Parent())
	assert.True(t, item.attached())
}

func TestImports_IncludesGroups(t *testing.T) {
	d := mustParse(t, `<Project>
  <Import Project="a.props" />
  <ImportGroup Condition="'$(X)'=='1'">
    <Import Project="b.props" />
    <Import Project="c.props" />
  </ImportGroup>
  <Import Project="d.targets" />
</Project>
`)
	var projects []string
	for imp := range d.Imports() {
		v, _ := imp.Attr("Project")
		projects = append(projects, v)
	}
	assert.Equal(t, []string{"a.props", "b.props", "c.props", "d.targets"}, projects)
}

func TestImports_AddAfterLast(t *testing.T) {
	d := mustParse(t, "<Project>\n  <Import Project=\"a.props\" />\n  <PropertyGroup />\n  <Target Name=\"T\" />\n</Project>\n")
	_, err := d.AddImport("b.props", "Exists('b.props')")
	require.NoError(t, err)

	assert.Equal(t,
		"<Project>\n  <Import Project=\"a.props\" />\n  <Import Project=\"b.props\" Condition=\"Exists('b.props')\" />\n  <PropertyGroup />\n  <Target Name=\"T\" />\n</Project>\n",
		d.String())
}

func TestGlobalPropertyGroup_None(t *testing.T) {
	d := mustParse(t, "<Project>\n  <PropertyGroup Condition=\"true\" />\n</Project>")
	assert.Nil(t, d.GlobalPropertyGroup())
	assert.Nil(t, d.Property("A"))

	p, err := d.SetProperty("A", "1")
	require.NoError(t, err)
	assert.Same(t, d.GlobalPropertyGroup(), p.Parent())
	groups := slices.Collect(d.PropertyGroups())
	require.Len(t, groups, 2)
	assert.Same(t, groups[1], p.Parent(), "created after the existing property group")
}

func TestTypedViewsAreLive(t *testing.T) {
	d := New()
	seq := d.Targets()
	assert.Empty(t, slices.Collect(seq))

	_, err := d.AddTarget("Build")
	require.NoError(t, err)
	assert.Len(t, slices.Collect(seq), 1, "the same sequence sees the new target")
}
