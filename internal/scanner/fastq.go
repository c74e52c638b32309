package scanner

import "fmt"

// FastqScanner discovers FASTQ records: four lines per record — an '@'
// header, a sequence line, a '+' separator line, and a quality line —
// one record at a time, no interleaved/wrapped FASTQ support.
//
// Only the sequence line is reported as the record's queryable content
// span; the quality line is skipped over but not indexed for
// random-access extraction; the core's descriptor models one payload
// per record and sequence is what compound-id range queries target
// (see DESIGN.md for this decision).
type FastqScanner struct{}

// ScanRecords implements Scanner.
func (FastqScanner) ScanRecords(data []byte, emit EmitFunc) error {
	n := int64(len(data))
	pos := int64(0)
	for pos < n {
		hStart := pos
		hEnd := lineEnd(data, hStart)
		if data[hStart] != '@' {
			return fmt.Errorf("scanner: fastq record at byte %d does not start with '@'", hStart)
		}

		sStart := hEnd
		if sStart >= n {
			return fmt.Errorf("scanner: fastq record at byte %d is missing its sequence line", hStart)
		}
		sEnd := lineEnd(data, sStart)

		pStart := sEnd
		if pStart >= n || data[pStart] != '+' {
			return fmt.Errorf("scanner: fastq record at byte %d is missing its '+' separator line", hStart)
		}
		pEnd := lineEnd(data, pStart)

		qStart := pEnd
		qEnd := lineEnd(data, qStart)

		header := data[hStart:hEnd]
		if err := emit(header, hStart, sStart, sEnd); err != nil {
			return err
		}

		if qEnd <= pos {
			break // no progress; malformed trailing data, stop rather than loop forever
		}
		pos = qEnd
	}
	return nil
}
