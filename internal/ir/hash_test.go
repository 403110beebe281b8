package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash_Stable(t *testing.T) {
	a := ContentHash([]byte("<Project />"))
	b := ContentHash([]byte("<Project />"))
	c := ContentHash([]byte("<Project/>"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestSnapshotHash_IgnoresMetadataMapOrder(t *testing.T) {
	s1 := Snapshot{
		Identity: "a.proj",
		Engine:   "full",
		Items: []Item{{Type: "Compile", Include: "a.cs", Metadata: map[string]string{"x": "1", "y": "2"}}},
	}
	s2 := s1
	s2.Items = []Item{{Type: "Compile", Include: "a.cs", Metadata: map[string]string{"y": "2", "x": "1"}}}
	assert.Equal(t, MustSnapshotHash(s1), MustSnapshotHash(s2))

	s2.Items[0].Include = "b.cs"
	assert.NotEqual(t, MustSnapshotHash(s1), MustSnapshotHash(s2))
}

func TestRevisionID(t *testing.T) {
	h := ContentHash([]byte("x"))
	id1, err := RevisionID("a.proj", 3, h)
	require.NoError(t, err)
	id2, err := RevisionID("a.proj", 4, h)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func TestSnapshot_PropertyLastWins(t *testing.T) {
	s := Snapshot{Properties: []Property{{Name: "A", Value: "1"}, {Name: "A", Value: "2"}}}
	v, ok := s.Property("A")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	_, ok = s.Property("B")
	assert.False(t, ok)
}
