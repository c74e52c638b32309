package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetFlush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.index")

	s, err := Open(path, CreateReadWrite)
	require.NoError(t, err)

	require.NoError(t, s.Put("chr1", []byte("hello")))
	require.NoError(t, s.Put("chr2", []byte("world")))

	v, ok, err := s.Get("chr1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), v)

	require.NoError(t, s.Close())

	ro, err := Open(path, ReadOnly)
	require.NoError(t, err)
	defer ro.Close()

	v, ok, err = ro.Get("chr2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("world"), v)

	_, ok, err = ro.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIterateKeysOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.index")

	s, err := Open(path, CreateReadWrite)
	require.NoError(t, err)
	for _, k := range []string{"zeta", "alpha", "mu"} {
		require.NoError(t, s.Put(k, []byte(k)))
	}

	cur, err := s.IterateKeys()
	require.NoError(t, err)
	defer cur.Close()

	var got []string
	for {
		k, ok, err := cur.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, k)
	}
	require.Equal(t, []string{"alpha", "mu", "zeta"}, got)
}

func TestReadOnlyPutRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.index")

	s, err := Open(path, CreateReadWrite)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ro, err := Open(path, ReadOnly)
	require.NoError(t, err)
	defer ro.Close()

	err = ro.Put("x", []byte("y"))
	require.Error(t, err)
}

func TestOpenMissingReadOnly(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(filepath.Join(dir, "missing.index"), ReadOnly)
	require.Error(t, err)
}

func TestOpenWithDSNArgs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.index")

	s, err := Open(path, CreateReadWrite, "_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	require.NoError(t, s.Put("chr1", []byte("hello")))
	require.NoError(t, s.Close())

	ro, err := Open(path, ReadOnly, "_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	defer ro.Close()

	v, ok, err := ro.Get("chr1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), v)
}

func TestCloseAbortedRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.index")

	s, err := Open(path, CreateReadWrite)
	require.NoError(t, err)
	require.NoError(t, s.Put("x", []byte("y")))
	require.NoError(t, s.CloseAborted())

	_, err = Open(path, ReadOnly)
	require.Error(t, err)
}
