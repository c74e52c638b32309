package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFastaScannerBoundaries(t *testing.T) {
	data := []byte(">chr1 foo\nAAAACCCC\nGGGGTTTT\nN\n>chr2\nACGT\n")

	type rec struct {
		id                                          string
		headerOffset, firstContentOffset, recordEnd int64
	}
	var got []rec
	err := FastaScanner{}.ScanRecords(data, func(header []byte, ho, fco, re int64) error {
		got = append(got, rec{id: string(header), headerOffset: ho, firstContentOffset: fco, recordEnd: re})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(0), got[0].headerOffset)
	require.Equal(t, int64(10), got[0].firstContentOffset) // len(">chr1 foo\n")
	require.Equal(t, int64(30), got[0].recordEnd) // start of ">chr2\n"
}

func TestFastqScannerBoundaries(t *testing.T) {
	data := []byte("@r1\nACGT\n+\nIIII\n@r2\nTTTT\n+r2\nJJJJ\n")

	var seqs []string
	err := FastqScanner{}.ScanRecords(data, func(header []byte, ho, fco, re int64) error {
		seqs = append(seqs, string(data[fco:re]))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"ACGT", "TTTT"}, seqs)
}

func TestDefaultIDTransform(t *testing.T) {
	f := DefaultIDTransform('>')
	require.Equal(t, "chr1", f([]byte(">chr1 some description\n")))
	require.Equal(t, "chr1", f([]byte(">chr1\n")))
}

func TestDefaultClassifier(t *testing.T) {
	c := DefaultClassifier{}
	require.Equal(t, KindDNA, c.Classify([]byte("ACGTACGTNN")))
	require.Equal(t, KindRNA, c.Classify([]byte("ACGUACGU")))
	require.Equal(t, KindProtein, c.Classify([]byte("MKVLEQ")))
}

func TestDetect(t *testing.T) {
	_, isFasta := Detect([]byte(">chr1\nACGT\n")).(FastaScanner)
	require.True(t, isFasta)

	_, isFastq := Detect([]byte("@r1\nACGT\n+\nIIII\n")).(FastqScanner)
	require.True(t, isFastq)
}
