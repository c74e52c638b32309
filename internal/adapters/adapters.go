// Package adapters provides thin, read-only facades over the engine's
// query surface, mirroring the source's tied-hash and tied-handle
// wrappers, map-like and iterator-like: no independent
// state beyond a cursor, no semantics the query surface doesn't already
// have. Ecosystems without map syntactic sugar can ignore this package
// entirely and call the engine directly.
package adapters

import (
	"github.com/shockdb/seqidx/internal/errs"
)

// subseqFunc and idsFunc are the two capabilities Map needs from a
// caller's engine; kept as closures instead of an interface so this
// package has no import-cycle dependency on the root package's
// concrete Engine type.
type subseqFunc func(id string) ([]byte, bool, error)
type idsFunc func() ([]string, error)

// Map exposes Len, Get, Has, and Keys over an engine's query surface.
// Put and Delete always fail with ReadOnlyViolation: the index is
// read-only from this facade's point of view.
type Map struct {
	subseq subseqFunc
	ids    idsFunc
}

// NewMap builds a Map adapter from the two closures a caller's engine
// type needs to supply: payload-by-id, and id enumeration. This keeps
// the adapter decoupled from the root package's concrete Engine type.
func NewMap(subseq subseqFunc, ids idsFunc) *Map {
	return &Map{subseq: subseq, ids: ids}
}

// Len returns the number of records in the index.
func (m *Map) Len() (int, error) {
	keys, err := m.ids()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Get returns a record's full payload.
func (m *Map) Get(id string) ([]byte, bool, error) {
	return m.subseq(id)
}

// Has reports whether id is present.
func (m *Map) Has(id string) (bool, error) {
	_, ok, err := m.subseq(id)
	return ok, err
}

// Keys returns every record id.
func (m *Map) Keys() ([]string, error) {
	return m.ids()
}

// Put always fails: the index is read-only through this facade.
func (m *Map) Put(string, []byte) error {
	return errs.ReadOnlyViolationf("adapters.Map.Put")
}

// Delete always fails: the index is read-only through this facade.
func (m *Map) Delete(string) error {
	return errs.ReadOnlyViolationf("adapters.Map.Delete")
}

// Stream is a pull-style, single-shot iterator over (id, payload)
// pairs, mirroring the source's tied-handle iterator facade.
type Stream struct {
	next func() (string, []byte, bool, error)
}

// NewStream builds a Stream adapter from a next-item closure, typically
// supplied by adapting a *seqidx.StreamIterator.
func NewStream(next func() (string, []byte, bool, error)) *Stream {
	return &Stream{next: next}
}

// Next returns the next (id, payload) pair, or ok=false when exhausted.
func (s *Stream) Next() (id string, payload []byte, ok bool, err error) {
	return s.next()
}
