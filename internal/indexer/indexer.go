// Package indexer implements the format-independent half of building an
// index: header detection is delegated to an injected scanner.Scanner,
// but identifier extraction, line-geometry discovery and validation,
// length computation, and descriptor emission are owned here — the
// hard part, unchanged in algorithm across every payload format a
// Scanner might describe.
package indexer

import (
	"bytes"
	"os"
	"strconv"

	"github.com/shockdb/seqidx/internal/descriptor"
	"github.com/shockdb/seqidx/internal/errs"
	"github.com/shockdb/seqidx/internal/scanner"
	"github.com/shockdb/seqidx/internal/store"
	"github.com/shockdb/seqidx/internal/telemetry"
)

// Options configures one Indexer. Scanner, Classifier, and IDTransform
// are the three capabilities giving "ad-hoc polymorphism over payload
// class"; a zero Options builds a fully-defaulted FASTA/FASTQ indexer.
type Options struct {
	// Scanner discovers record boundaries. Nil means auto-detect per
	// file via scanner.Detect.
	Scanner scanner.Scanner
	// Classifier assigns payload_kind. Nil means scanner.DefaultClassifier.
	Classifier scanner.Classifier
	// IDTransform maps a header line to a record id. Nil means the
	// default "to first whitespace" rule, sentinel-agnostic.
	IDTransform scanner.IDTransform
	// Lenient survives a LineGeometryViolation by logging it and
	// indexing the record with best-effort geometry instead of failing
	// the whole pass.
	Lenient bool
	// Debug, when set together with Log, emits one line per indexed
	// file and a warning for every duplicate record id encountered
	// (last write wins regardless).
	Debug bool
	// Log receives progress and warning lines. Nil disables logging.
	Log *telemetry.Logger
}

// Indexer builds descriptors for one or more source files against a
// fixed codec variant and writes them to a store.
type Indexer struct {
	opts Options
}

// New returns an Indexer configured by opts.
func New(opts Options) *Indexer {
	if opts.Classifier == nil {
		opts.Classifier = scanner.DefaultClassifier{}
	}
	if opts.IDTransform == nil {
		opts.IDTransform = genericIDTransform
	}
	return &Indexer{opts: opts}
}

// genericIDTransform applies the default "to first whitespace" rule
// using the header line's own first byte as the sentinel, so it works
// across scanners without needing to know which sentinel they use.
func genericIDTransform(header []byte) string {
	if len(header) == 0 {
		return ""
	}
	return scanner.DefaultIDTransform(header[0])(header)
}

// IndexFile scans path, computes one descriptor per record under
// variant, and writes it to s under its extracted id. It returns the
// number of records emitted.
func (ix *Indexer) IndexFile(path string, fileNo uint8, variant descriptor.Variant, s *store.Store) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errs.PathInvalidf("reading %s: %v", path, err)
	}

	sc := ix.opts.Scanner
	if sc == nil {
		sc = scanner.Detect(data)
	}

	count := 0
	lineNo := 1
	lastPos := int64(0)

	scanErr := sc.ScanRecords(data, func(header []byte, headerOffset, firstContent, recordEnd int64) error {
		lineNo += bytes.Count(data[lastPos:headerOffset], []byte{'\n'})
		contentStartLine := lineNo + 1

		id := ix.opts.IDTransform(header)

		geom, gerr := measureGeometry(data, firstContent, recordEnd, path, contentStartLine, ix.opts.Lenient, ix.opts.Log)
		if gerr != nil {
			return gerr
		}

		kind := ix.opts.Classifier.Classify(geom.firstLine)
		d := descriptor.Descriptor{
			Offset:           uint64(firstContent),
			SeqLength:        geom.seqLength,
			LineLength:       geom.lineLength,
			TerminatorLength: geom.termLength,
			FileNo:           fileNo,
			PayloadKind:      kind,
		}
		packed, perr := descriptor.Pack(variant, d)
		if perr != nil {
			return perr
		}

		if ix.opts.Debug && ix.opts.Log != nil {
			if _, exists, _ := s.Get(id); exists {
				ix.opts.Log.Warn("index", "duplicate record id, overwriting", map[string]interface{}{
					"id": id, "file": path,
				})
			}
		}

		if err := s.Put(id, packed); err != nil {
			return err
		}
		count++

		lineNo += bytes.Count(data[headerOffset:recordEnd], []byte{'\n'})
		lastPos = recordEnd
		return nil
	})
	if scanErr != nil {
		return count, scanErr
	}

	if ix.opts.Debug && ix.opts.Log != nil {
		ix.opts.Log.Info("index", "indexed file", map[string]interface{}{
			"file": path, "records": count, "bytes": len(data),
		})
	}
	return count, nil
}

// geometry holds the per-record measurements the descriptor needs, plus
// the first content line (terminator stripped) for classification.
type geometry struct {
	lineLength uint16
	termLength uint16
	seqLength  uint64
	firstLine  []byte
}

// measureGeometry walks a record's content lines, discovering geometry
// from the first and validating every interior line against it
// steps 3-4). lineNo is the 1-based source line of the first content
// byte, used only for error messages.
func measureGeometry(data []byte, from, to int64, path string, lineNo int, lenient bool, log *telemetry.Logger) (geometry, error) {
	var g geometry
	pos := from
	first := true

	for pos < to {
		idx := bytes.IndexByte(data[pos:to], '\n')
		var end int64
		var term uint16
		if idx == -1 {
			end = to
			term = 0
		} else {
			end = pos + int64(idx) + 1
			if idx > 0 && data[pos+int64(idx)-1] == '\r' {
				term = 2
			} else {
				term = 1
			}
		}
		rawLen := end - pos
		if rawLen > 0xFFFF {
			return geometry{}, errs.LineTooLongf(path, lineNo, int(rawLen))
		}
		isLast := end >= to

		switch {
		case first:
			g.lineLength = uint16(rawLen)
			g.termLength = term
			g.firstLine = trimTerminator(data[pos:end], term)
			first = false
		case !isLast:
			if uint16(rawLen) != g.lineLength || term != g.termLength {
				if !lenient {
					return geometry{}, errs.LineGeometryViolationf(path, lineNo,
						lineGeomDesc(g.lineLength, g.termLength), lineGeomDesc(uint16(rawLen), term))
				}
				if log != nil {
					log.Warn("index", "lenient geometry recovery", map[string]interface{}{
						"file": path, "line": lineNo,
						"expected": lineGeomDesc(g.lineLength, g.termLength),
						"actual":   lineGeomDesc(uint16(rawLen), term),
					})
				}
			}
		}

		g.seqLength += uint64(rawLen) - uint64(term)
		pos = end
		lineNo++
	}
	return g, nil
}

func trimTerminator(line []byte, term uint16) []byte {
	if int(term) > len(line) {
		return line
	}
	return line[:len(line)-int(term)]
}

func lineGeomDesc(length, term uint16) string {
	return "length=" + strconv.Itoa(int(length)) + " terminator=" + strconv.Itoa(int(term))
}
