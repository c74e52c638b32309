// Package descriptor packs and unpacks the fixed-width record
// descriptor described in the data model: the atomic unit of the
// persistent index, mapping a record id to its byte geometry in a
// source file.
//
// Two layouts exist, chosen once per index at build time depending on
// the largest source file's size (see Select). Both are fixed,
// big-endian (network byte order) so an index built on one machine is
// byte-for-byte readable on another of the same codec variant; fields
// are written and read with explicit encoding/binary.BigEndian calls
// instead of inheriting the host's byte order.
package descriptor

import (
	"encoding/binary"
	"fmt"
)

// Variant identifies which descriptor layout an index uses.
type Variant uint8

const (
	// Variant32 uses 32-bit offset/seq_length fields. Valid for source
	// files up to 2^32-1 bytes.
	Variant32 Variant = 32
	// Variant64 uses 64-bit offset/seq_length fields.
	Variant64 Variant = 64
)

func (v Variant) String() string {
	if v == Variant64 {
		return "64"
	}
	return "32"
}

// ParseVariant turns the reserved __codec__ meta-value back into a
// Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "32":
		return Variant32, nil
	case "64":
		return Variant64, nil
	default:
		return 0, fmt.Errorf("descriptor: unknown codec variant %q", s)
	}
}

// maxUint32 is the threshold at which Select must pick Variant64.
const maxUint32 = 1<<32 - 1

// Select returns the codec variant appropriate for an index whose
// largest source file is maxFileSize bytes, per the selection rule in
// 64-bit iff maxFileSize exceeds 2^32-1.
func Select(maxFileSize int64) Variant {
	if maxFileSize > maxUint32 {
		return Variant64
	}
	return Variant32
}

// Descriptor is the in-memory, variant-independent representation of
// one record's geometry.
type Descriptor struct {
	Offset           uint64 // byte offset of the first content byte
	SeqLength        uint64 // total content bytes, terminators excluded
	LineLength       uint16 // full interior line length, terminator included
	TerminatorLength uint16 // 1 (LF) or 2 (CRLF)
	FileNo           uint8  // file registry index
	PayloadKind      uint8  // opaque tag, not interpreted by the core
}

// Size returns the packed byte width of d under variant v.
func Size(v Variant) int {
	if v == Variant64 {
		return 8 + 8 + 2 + 2 + 1 + 1
	}
	return 4 + 4 + 2 + 2 + 1 + 1
}

// PayloadCharsPerLine returns the number of content bytes carried by one
// full interior line.
func (d Descriptor) PayloadCharsPerLine() int {
	return int(d.LineLength) - int(d.TerminatorLength)
}

// Pack serializes d under variant v.
func Pack(v Variant, d Descriptor) ([]byte, error) {
	buf := make([]byte, Size(v))
	switch v {
	case Variant32:
		if d.Offset > maxUint32 || d.SeqLength > maxUint32 {
			return nil, fmt.Errorf("descriptor: value overflows 32-bit codec (offset=%d seq_length=%d)", d.Offset, d.SeqLength)
		}
		binary.BigEndian.PutUint32(buf[0:4], uint32(d.Offset))
		binary.BigEndian.PutUint32(buf[4:8], uint32(d.SeqLength))
		binary.BigEndian.PutUint16(buf[8:10], d.LineLength)
		binary.BigEndian.PutUint16(buf[10:12], d.TerminatorLength)
		buf[12] = d.FileNo
		buf[13] = d.PayloadKind
	case Variant64:
		binary.BigEndian.PutUint64(buf[0:8], d.Offset)
		binary.BigEndian.PutUint64(buf[8:16], d.SeqLength)
		binary.BigEndian.PutUint16(buf[16:18], d.LineLength)
		binary.BigEndian.PutUint16(buf[18:20], d.TerminatorLength)
		buf[20] = d.FileNo
		buf[21] = d.PayloadKind
	default:
		return nil, fmt.Errorf("descriptor: unknown variant %d", v)
	}
	return buf, nil
}

// Unpack deserializes a packed descriptor under variant v.
func Unpack(v Variant, buf []byte) (Descriptor, error) {
	var d Descriptor
	if len(buf) != Size(v) {
		return d, fmt.Errorf("descriptor: buffer length %d does not match variant %s (want %d)", len(buf), v, Size(v))
	}
	switch v {
	case Variant32:
		d.Offset = uint64(binary.BigEndian.Uint32(buf[0:4]))
		d.SeqLength = uint64(binary.BigEndian.Uint32(buf[4:8]))
		d.LineLength = binary.BigEndian.Uint16(buf[8:10])
		d.TerminatorLength = binary.BigEndian.Uint16(buf[10:12])
		d.FileNo = buf[12]
		d.PayloadKind = buf[13]
	case Variant64:
		d.Offset = binary.BigEndian.Uint64(buf[0:8])
		d.SeqLength = binary.BigEndian.Uint64(buf[8:16])
		d.LineLength = binary.BigEndian.Uint16(buf[16:18])
		d.TerminatorLength = binary.BigEndian.Uint16(buf[18:20])
		d.FileNo = buf[20]
		d.PayloadKind = buf[21]
	default:
		return d, fmt.Errorf("descriptor: unknown variant %d", v)
	}
	return d, nil
}
