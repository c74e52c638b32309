package scanner

import "bytes"

// DefaultClassifier assigns payload_kind by a residue-alphabet
// heuristic over a record's first content line: only ACGTN (either
// case) → DNA; any U and none of the protein-only letters EFILPQZ →
// RNA; any of EFILPQZ → protein; otherwise unknown. Other bytes on the
// line are not checked. Classification is left as an upper-layer
// parameter; the core never interprets the result.
type DefaultClassifier struct{}

var (
	dnaAlphabet     = []byte("ACGTNacgtn")
	rnaOnly         = []byte("Uu")
	proteinOnly     = []byte("EFILPQZefilpqz")
)

// Classify implements Classifier.
func (DefaultClassifier) Classify(firstContentLine []byte) uint8 {
	if len(firstContentLine) == 0 {
		return KindUnknown
	}
	hasU := bytes.ContainsAny(firstContentLine, string(rnaOnly))
	hasProteinOnly := bytes.ContainsAny(firstContentLine, string(proteinOnly))
	allDNA := true
	for _, b := range firstContentLine {
		if !bytes.ContainsRune(dnaAlphabet, rune(b)) {
			allDNA = false
			break
		}
	}
	switch {
	case allDNA && !hasU:
		return KindDNA
	case hasU && !hasProteinOnly:
		return KindRNA
	case hasProteinOnly:
		return KindProtein
	default:
		return KindUnknown
	}
}

// DefaultIDTransform implements the default rule: the
// substring from the byte after the sentinel up to the first
// whitespace byte.
func DefaultIDTransform(sentinel byte) IDTransform {
	return func(headerLine []byte) string {
		line := bytes.TrimRight(headerLine, "\r\n")
		if len(line) == 0 || line[0] != sentinel {
			return string(line)
		}
		rest := line[1:]
		if idx := bytes.IndexAny(rest, " \t"); idx != -1 {
			rest = rest[:idx]
		}
		return string(rest)
	}
}
