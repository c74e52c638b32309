package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip32(t *testing.T) {
	d := Descriptor{
		Offset:           123456,
		SeqLength:        789,
		LineLength:       81,
		TerminatorLength: 1,
		FileNo:           3,
		PayloadKind:      1,
	}
	buf, err := Pack(Variant32, d)
	require.NoError(t, err)
	require.Len(t, buf, 14)

	got, err := Unpack(Variant32, buf)
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestRoundTrip64(t *testing.T) {
	d := Descriptor{
		Offset:           1 << 40,
		SeqLength:        1 << 33,
		LineLength:       61,
		TerminatorLength: 2,
		FileNo:           255,
		PayloadKind:      4,
	}
	buf, err := Pack(Variant64, d)
	require.NoError(t, err)
	require.Len(t, buf, 22)

	got, err := Unpack(Variant64, buf)
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestPack32Overflow(t *testing.T) {
	d := Descriptor{Offset: 1 << 33}
	_, err := Pack(Variant32, d)
	require.Error(t, err)
}

func TestSelect(t *testing.T) {
	require.Equal(t, Variant32, Select(1000))
	require.Equal(t, Variant32, Select(maxUint32))
	require.Equal(t, Variant64, Select(maxUint32+1))
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("32")
	require.NoError(t, err)
	require.Equal(t, Variant32, v)

	v, err = ParseVariant("64")
	require.NoError(t, err)
	require.Equal(t, Variant64, v)

	_, err = ParseVariant("16")
	require.Error(t, err)
}

func TestPayloadCharsPerLine(t *testing.T) {
	d := Descriptor{LineLength: 81, TerminatorLength: 1}
	require.Equal(t, 80, d.PayloadCharsPerLine())
}
