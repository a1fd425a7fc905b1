package conflicts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimisticWrite_AppliesImmediately(t *testing.T) {
	applied := false
	w := newOptimisticWrite(func() { applied = true }, func() {})

	assert.True(t, applied)
	assert.Equal(t, writePending, w.State())
}

func TestOptimisticWrite_Commit(t *testing.T) {
	reverted := false
	w := newOptimisticWrite(func() {}, func() { reverted = true })

	require.NoError(t, w.Commit())
	assert.Equal(t, writeCommitted, w.State())
	assert.False(t, reverted)
}

func TestOptimisticWrite_Rollback(t *testing.T) {
	value := 0
	w := newOptimisticWrite(func() { value = 1 }, func() { value = 0 })

	require.Equal(t, 1, value)
	require.NoError(t, w.Rollback())
	assert.Equal(t, 0, value)
	assert.Equal(t, writeRolledBack, w.State())
}

func TestOptimisticWrite_SettlesOnce(t *testing.T) {
	reverts := 0
	w := newOptimisticWrite(func() {}, func() { reverts++ })

	require.NoError(t, w.Commit())
	assert.ErrorIs(t, w.Commit(), ErrWriteSettled)
	assert.ErrorIs(t, w.Rollback(), ErrWriteSettled)
	assert.Equal(t, 0, reverts)
	assert.Equal(t, writeCommitted, w.State())

	w = newOptimisticWrite(func() {}, func() { reverts++ })
	require.NoError(t, w.Rollback())
	assert.ErrorIs(t, w.Rollback(), ErrWriteSettled)
	assert.ErrorIs(t, w.Commit(), ErrWriteSettled)
	assert.Equal(t, 1, reverts)
}
