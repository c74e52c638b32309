package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shockdb/seqidx/internal/store"
)

func TestRegisterIdempotent(t *testing.T) {
	r := New()
	a, err := r.Register("/a.fa")
	require.NoError(t, err)
	b, err := r.Register("/b.fa")
	require.NoError(t, err)
	again, err := r.Register("/a.fa")
	require.NoError(t, err)

	require.Equal(t, a, again)
	require.NotEqual(t, a, b)
	require.Equal(t, 2, r.Len())

	p, ok := r.Path(a)
	require.True(t, ok)
	require.Equal(t, "/a.fa", p)
}

func TestPersistAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.index")

	s, err := store.Open(path, store.CreateReadWrite)
	require.NoError(t, err)

	r := New()
	_, err = r.Register("/first.fa")
	require.NoError(t, err)
	_, err = r.Register("/second.fa")
	require.NoError(t, err)
	require.NoError(t, r.Persist(s))
	require.NoError(t, s.Close())

	ro, err := store.Open(path, store.ReadOnly)
	require.NoError(t, err)
	defer ro.Close()

	reloaded, err := Load(ro)
	require.NoError(t, err)
	require.Equal(t, []string{"/first.fa", "/second.fa"}, reloaded.Paths())
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	content := "files:\n  - path: /a.fa\n    alias: alpha\n  - path: /b.fa\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Files, 2)
	require.Equal(t, "alpha", m.Files[0].Alias)

	r, err := NewFromManifest(m)
	require.NoError(t, err)
	require.Equal(t, []string{"/a.fa", "/b.fa"}, r.Paths())
}
