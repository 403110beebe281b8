package project

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/projdoc/internal/testutil"
)

func TestShared_MutationOffWriterRefused(t *testing.T) {
	d := mustParse(t, testutil.Library)
	var onWriter atomic.Bool
	require.NoError(t, d.MarkShared(onWriter.Load))
	assert.True(t, d.IsShared())

	before := d.String()
	_, err := d.SetProperty("A", "1")
	assert.True(t, IsConcurrencyViolation(err))
	_, err = d.AddItem("Compile", "x.cs")
	assert.True(t, IsConcurrencyViolation(err))
	err = d.FindItem("Compile", "a.cs").SetCondition("x")
	assert.True(t, IsConcurrencyViolation(err))
	err = d.SetEngineKind(LegacyEngine)
	assert.True(t, IsConcurrencyViolation(err))

	assert.Equal(t, int64(0), d.Version())
	assert.Equal(t, before, d.String())

	onWriter.Store(true)
	_, err = d.SetProperty("A", "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Version())
}

func TestShared_ReadsAllowedAnywhere(t *testing.T) {
	d := mustParse(t, testutil.Library)
	require.NoError(t, d.MarkShared(func() bool { return false }))

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NotNil(t, d.GlobalPropertyGroup())
		assert.NotNil(t, d.FindItem("Compile", "a.cs"))
		assert.NotEmpty(t, d.String())
	}()
	<-done
}

func TestShared_Unmark(t *testing.T) {
	d := New()
	require.NoError(t, d.MarkShared(func() bool { return true }))
	require.NoError(t, d.MarkShared(nil))
	assert.False(t, d.IsShared())

	_, err := d.SetProperty("A", "1")
	assert.NoError(t, err)
}

func TestShared_OnlyWriterMayUnmark(t *testing.T) {
	d := New()
	var onWriter atomic.Bool
	require.NoError(t, d.MarkShared(onWriter.Load))

	err := d.MarkShared(nil)
	assert.True(t, IsConcurrencyViolation(err))
	err = d.MarkShared(func() bool { return true })
	assert.True(t, IsConcurrencyViolation(err), "a non-writer cannot swap the predicate either")
	assert.True(t, d.IsShared())

	_, err = d.SetProperty("A", "1")
	assert.True(t, IsConcurrencyViolation(err), "the original predicate is still in force")

	onWriter.Store(true)
	require.NoError(t, d.MarkShared(nil))
	assert.False(t, d.IsShared())
}
