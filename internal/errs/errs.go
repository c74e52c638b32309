// Package errs defines the error taxonomy for the indexing engine.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies one of the fixed error categories the engine can raise.
type Kind int

const (
	// PathInvalid means the constructor argument is neither a file, a
	// directory, nor a nonempty list.
	PathInvalid Kind = iota
	// NoMatchingFiles means a directory contained no files matching glob.
	NoMatchingFiles
	// IndexUnavailable means the persistent store could not be opened.
	IndexUnavailable
	// LineGeometryViolation means an interior content line's length or
	// terminator did not match the record's first content line.
	LineGeometryViolation
	// LineTooLong means a content line exceeded the 16-bit length field.
	LineTooLong
	// UnknownId means a lookup targeted an id absent from the index.
	UnknownId
	// IoError means an underlying read/seek failed mid-query.
	IoError
	// ReadOnlyViolation means a mutation was attempted through a
	// read-only adapter.
	ReadOnlyViolation
)

func (k Kind) String() string {
	switch k {
	case PathInvalid:
		return "PathInvalid"
	case NoMatchingFiles:
		return "NoMatchingFiles"
	case IndexUnavailable:
		return "IndexUnavailable"
	case LineGeometryViolation:
		return "LineGeometryViolation"
	case LineTooLong:
		return "LineTooLong"
	case UnknownId:
		return "UnknownId"
	case IoError:
		return "IoError"
	case ReadOnlyViolation:
		return "ReadOnlyViolation"
	default:
		return "Unknown"
	}
}

// Error is the engine's concrete error type for the kinds above. Errors
// of this type can be distinguished with errors.Is against the sentinel
// values below, or inspected with errors.As for their Kind/fields. Some
// internal failures (descriptor codec, registry overflow, config file
// reading, FASTQ scanning) are plain fmt.Errorf errors with no Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel for the same Kind, so callers
// can write errors.Is(err, errs.ErrUnknownId).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == ""
}

func new(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

// Sentinel values for use with errors.Is. They carry no message so Is
// matches on Kind alone.
var (
	ErrPathInvalid           = new(PathInvalid, "")
	ErrNoMatchingFiles       = new(NoMatchingFiles, "")
	ErrIndexUnavailable      = new(IndexUnavailable, "")
	ErrLineGeometryViolation = new(LineGeometryViolation, "")
	ErrLineTooLong           = new(LineTooLong, "")
	ErrUnknownId             = new(UnknownId, "")
	ErrIoError               = new(IoError, "")
	ErrReadOnlyViolation     = new(ReadOnlyViolation, "")
)

// PathInvalidf builds a PathInvalid error.
func PathInvalidf(format string, a ...interface{}) error {
	return &Error{Kind: PathInvalid, Msg: fmt.Sprintf(format, a...)}
}

// NoMatchingFilesf builds a NoMatchingFiles error.
func NoMatchingFilesf(format string, a ...interface{}) error {
	return &Error{Kind: NoMatchingFiles, Msg: fmt.Sprintf(format, a...)}
}

// IndexUnavailablef builds an IndexUnavailable error wrapping cause.
func IndexUnavailablef(cause error, format string, a ...interface{}) error {
	return &Error{Kind: IndexUnavailable, Msg: fmt.Sprintf(format, a...), Err: cause}
}

// LineGeometryViolationf builds a LineGeometryViolation error.
func LineGeometryViolationf(file string, line int, expected, actual string) error {
	return &Error{
		Kind: LineGeometryViolation,
		Msg:  fmt.Sprintf("%s:%d: expected %s, got %s", file, line, expected, actual),
	}
}

// LineTooLongf builds a LineTooLong error.
func LineTooLongf(file string, line int, length int) error {
	return &Error{
		Kind: LineTooLong,
		Msg:  fmt.Sprintf("%s:%d: line length %d exceeds 65535 bytes", file, line, length),
	}
}

// UnknownIdf builds an UnknownId error.
func UnknownIdf(id string) error {
	return &Error{Kind: UnknownId, Msg: fmt.Sprintf("unknown id %q", id)}
}

// IoErrorf builds an IoError wrapping cause.
func IoErrorf(cause error, format string, a ...interface{}) error {
	return &Error{Kind: IoError, Msg: fmt.Sprintf(format, a...), Err: cause}
}

// ReadOnlyViolationf builds a ReadOnlyViolation error.
func ReadOnlyViolationf(op string) error {
	return &Error{Kind: ReadOnlyViolation, Msg: fmt.Sprintf("operation %q not permitted on a read-only view", op)}
}

// As is a small helper mirroring errors.As for *Error, used internally
// to branch on Kind without importing the stdlib errors package at
// every call site.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
