// Package scanner defines the injected "scanner strategy" the indexer
// depends on for ad-hoc polymorphism over payload class: a
// small capability bundle of record-boundary detection, optional
// payload classification, and optional identifier transformation. The
// indexer owns identifier extraction, line-geometry discovery,
// validation, and length computation — the hard, format-independent
// part; a Scanner only needs to tell it where each record's header and
// content run.
//
// This package also bundles ready-to-use FASTA and FASTQ scanners so
// the module is usable out of the box, and a Detect function that
// picks between them by sniffing a leading window of bytes
// against per-format regexes.
package scanner

import "regexp"

// EmitFunc is called once per record a Scanner discovers. headerLine is
// the full header line, terminator included, starting at headerOffset.
// firstContentOffset is the offset of the first content byte (the byte
// immediately after the header line's terminator). recordEnd is the
// offset one past the record's last content line, terminator included:
// for FASTA the start of the next header (or EOF), for FASTQ the start
// of the '+' separator line.
type EmitFunc func(headerLine []byte, headerOffset, firstContentOffset, recordEnd int64) error

// Scanner walks a source file's bytes and reports record boundaries by
// calling emit once per record, in file order.
type Scanner interface {
	ScanRecords(data []byte, emit EmitFunc) error
}

// Classifier assigns an opaque payload_kind tag to a record given its
// first content line (terminator stripped). The core never interprets
// the returned value.
type Classifier interface {
	Classify(firstContentLine []byte) uint8
}

// IDTransform maps a full header line to a record identifier, replacing
// the default "substring to first whitespace" rule.
type IDTransform func(headerLine []byte) string

// Opaque payload_kind vocabulary used by the bundled DefaultClassifier.
// Callers supplying their own Classifier are free to use any uint8
// vocabulary; the core never branches on this value.
const (
	KindUnknown uint8 = iota
	KindDNA
	KindRNA
	KindProtein
	KindQuality
)

// sniffWindow bounds how many leading bytes Detect inspects to
// pick a format.
const sniffWindow = 32768

var (
	fastaRegex = regexp.MustCompile(`^[\n\r]*>\S+`)
	fastqRegex = regexp.MustCompile(`^[\n\r]*@\S+[\n\r]+[A-Za-z*\-]+[\n\r]+\+`)
)

// Detect picks a Scanner for data by matching a leading window against
// the bundled formats' signatures, fastq first, then fasta. Both
// signatures anchor at the first non-blank byte ('@' or '>'), so at
// most one of them matches; data matching neither is treated as FASTA.
func Detect(data []byte) Scanner {
	window := data
	if len(window) > sniffWindow {
		window = window[:sniffWindow]
	}
	switch {
	case fastqRegex.Match(window):
		return FastqScanner{}
	case fastaRegex.Match(window):
		return FastaScanner{}
	default:
		return FastaScanner{}
	}
}
