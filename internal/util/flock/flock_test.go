package flock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.lock")
	l := New(path)

	require.NoError(t, l.Acquire(context.Background(), 0))
	require.NoError(t, l.Release())
}

func TestAcquire_HeldByOther(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.lock")

	first := New(path)
	require.NoError(t, first.Acquire(context.Background(), 0))
	defer first.Release() //nolint:errcheck

	second := New(path)
	err := second.Acquire(context.Background(), 0)
	assert.Error(t, err)
}

func TestAcquire_TimesOut(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.lock")

	first := New(path)
	require.NoError(t, first.Acquire(context.Background(), 0))
	defer first.Release() //nolint:errcheck

	second := New(path)
	start := time.Now()
	err := second.Acquire(context.Background(), 700*time.Millisecond)
	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
}

func TestRelease_NeverAcquired(t *testing.T) {
	t.Parallel()

	l := New(filepath.Join(t.TempDir(), "test.lock"))
	assert.NoError(t, l.Release())
}
