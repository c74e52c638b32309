package seqidx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shockdb/seqidx/internal/config"
)

func writeFasta(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestEngineSimpleExtraction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.fa")
	writeFasta(t, path, ">chr1 foo\nAAAACCCC\nGGGGTTTT\nN\n")

	eng, err := Open([]string{path}, config.Default())
	require.NoError(t, err)
	defer eng.Close()

	length, err := eng.Length("chr1")
	require.NoError(t, err)
	require.Equal(t, uint64(17), length)

	data, _, err := eng.Subseq("chr1", ptr(1), ptr(8))
	require.NoError(t, err)
	require.Equal(t, "AAAACCCC", string(data))

	data, _, err = eng.Subseq("chr1", ptr(5), ptr(12))
	require.NoError(t, err)
	require.Equal(t, "CCCCGGGG", string(data))

	data, _, err = eng.Subseq("chr1", ptr(17), ptr(17))
	require.NoError(t, err)
	require.Equal(t, "N", string(data))
}

func TestEngineCompoundID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.fa")
	writeFasta(t, path, ">chr1 foo\nAAAACCCC\nGGGGTTTT\nN\n")

	eng, err := Open([]string{path}, config.Default())
	require.NoError(t, err)
	defer eng.Close()

	data, meta, err := eng.Subseq("chr1:5,12", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "CCCCGGGG", string(data))
	require.Equal(t, int8(1), meta.Strand)

	data, meta, err = eng.Subseq("chr1:12..5", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "CCCCGGGG", string(data))
	require.Equal(t, int8(-1), meta.Strand)
}

func TestEngineCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny_crlf.fa")
	writeFasta(t, path, ">chr1 foo\r\nAAAACCCC\r\nGGGGTTTT\r\nN\r\n")

	eng, err := Open([]string{path}, config.Default())
	require.NoError(t, err)
	defer eng.Close()

	data, _, err := eng.Subseq("chr1", ptr(1), ptr(8))
	require.NoError(t, err)
	require.Equal(t, "AAAACCCC", string(data))
}

func TestEngineGeometryViolation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.fa")
	writeFasta(t, path, ">r1\nAAAAAAAA\nAAAAAAAA\nAAAAAAA\nAAAAAAAA\n")

	_, err := Open([]string{path}, config.Default())
	require.Error(t, err)
}

func TestEngineMultiFileRegistryLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	f1 := filepath.Join(dir, "a.fa")
	f2 := filepath.Join(dir, "b.fa")
	writeFasta(t, f1, ">chr1\nAAAA\n")
	writeFasta(t, f2, ">chr1\nTTTT\n")

	eng, err := Open([]string{f1, f2}, config.Default())
	require.NoError(t, err)
	defer eng.Close()

	data, _, err := eng.Subseq("chr1", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "TTTT", string(data))

	p, err := eng.Path("chr1")
	require.NoError(t, err)
	require.Equal(t, f2, p)
}

func TestEngineUnknownID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.fa")
	writeFasta(t, path, ">chr1\nACGT\n")

	eng, err := Open([]string{path}, config.Default())
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Length("nope")
	require.Error(t, err)
	require.False(t, eng.Contains("nope"))
	require.True(t, eng.Contains("chr1"))
}

func TestEngineIdsAndStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "two.fa")
	writeFasta(t, path, ">a\nACGT\n>b\nTTTT\n")

	eng, err := Open([]string{path}, config.Default())
	require.NoError(t, err)
	defer eng.Close()

	it, err := eng.Ids()
	require.NoError(t, err)
	var ids []string
	for {
		id, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		ids = append(ids, id)
	}
	require.NoError(t, it.Close())
	require.ElementsMatch(t, []string{"a", "b"}, ids)

	st, err := eng.Stream()
	require.NoError(t, err)
	found := map[string]string{}
	for {
		id, data, ok, err := st.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		found[id] = string(data)
	}
	require.NoError(t, st.Close())
	require.Equal(t, "ACGT", found["a"])
	require.Equal(t, "TTTT", found["b"])
}

func ptr(n uint64) *uint64 { return &n }
