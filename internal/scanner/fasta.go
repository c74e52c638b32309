package scanner

import "bytes"

// FastaScanner discovers FASTA records: a header line starting with '>'
// at column 0, followed by content lines until the next such header or
// EOF. Only reports boundaries; the indexer does geometry/validation
// itself.
type FastaScanner struct{}

// headerStarts returns the byte offsets of every line that begins with
// sentinel, scanning data once.
func headerStarts(data []byte, sentinel byte) []int64 {
	var starts []int64
	if len(data) > 0 && data[0] == sentinel {
		starts = append(starts, 0)
	}
	pos := 0
	for {
		idx := bytes.IndexByte(data[pos:], '\n')
		if idx == -1 {
			break
		}
		lineStart := pos + idx + 1
		if lineStart < len(data) && data[lineStart] == sentinel {
			starts = append(starts, int64(lineStart))
		}
		pos = lineStart
	}
	return starts
}

func lineEnd(data []byte, from int64) int64 {
	idx := bytes.IndexByte(data[from:], '\n')
	if idx == -1 {
		return int64(len(data))
	}
	return from + int64(idx) + 1
}

// ScanRecords implements Scanner.
func (FastaScanner) ScanRecords(data []byte, emit EmitFunc) error {
	starts := headerStarts(data, '>')
	for i, headerOffset := range starts {
		firstContent := lineEnd(data, headerOffset)
		var recordEnd int64
		if i+1 < len(starts) {
			recordEnd = starts[i+1]
		} else {
			recordEnd = int64(len(data))
		}
		header := data[headerOffset:firstContent]
		if err := emit(header, headerOffset, firstContent, recordEnd); err != nil {
			return err
		}
	}
	return nil
}
