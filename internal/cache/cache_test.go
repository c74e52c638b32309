package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func TestAcquireHitBumpsRecency(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a")

	c := New(4)
	f1, err := c.Acquire(a)
	require.NoError(t, err)
	f2, err := c.Acquire(a)
	require.NoError(t, err)
	require.Same(t, f1, f2)
	require.Equal(t, 1, c.Len())
}

func TestEvictionBatchOfThree(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a")
	b := touch(t, dir, "b")
	cc := touch(t, dir, "c")
	d := touch(t, dir, "d")

	cache := New(3)
	_, err := cache.Acquire(a)
	require.NoError(t, err)
	_, err = cache.Acquire(b)
	require.NoError(t, err)
	_, err = cache.Acquire(cc)
	require.NoError(t, err)
	require.Equal(t, 3, cache.Len())

	_, err = cache.Acquire(d)
	require.NoError(t, err)

	// capacity 3 -> evict ceil(3/3)=1 entry: the LRU, which is "a".
	require.Equal(t, 3, cache.Len())
	_, wasOpen := cache.index[a]
	require.False(t, wasOpen)
	_, stillOpen := cache.index[b]
	require.True(t, stillOpen)
	_, stillOpen2 := cache.index[cc]
	require.True(t, stillOpen2)
	_, stillOpen3 := cache.index[d]
	require.True(t, stillOpen3)
}

func TestEvictionBatchSize(t *testing.T) {
	dir := t.TempDir()
	cache := New(9) // ceil(9/3) = 3
	var paths []string
	for i := 0; i < 9; i++ {
		paths = append(paths, touch(t, dir, string(rune('a'+i))))
	}
	for _, p := range paths {
		_, err := cache.Acquire(p)
		require.NoError(t, err)
	}
	require.Equal(t, 9, cache.Len())

	overflow := touch(t, dir, "overflow")
	_, err := cache.Acquire(overflow)
	require.NoError(t, err)

	// 9 existing + 1 new - 3 evicted = 7
	require.Equal(t, 7, cache.Len())
}

func TestCloseClosesAll(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a")
	cache := New(4)
	_, err := cache.Acquire(a)
	require.NoError(t, err)
	require.NoError(t, cache.Close())
	require.Equal(t, 0, cache.Len())
}
