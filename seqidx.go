// Package seqidx implements the indexed random-access engine for large
// biological sequence files: a persistent on-disk index mapping record
// identifiers to byte geometry, and sub-linear extraction of arbitrary
// sub-ranges without rereading a whole source file.
//
// Engine is the library's single entry point, tying together the file
// registry, the persistent store, the freshness controller, the
// indexer, the coordinate translator, and the file-handle cache, under
// the single-threaded cooperative model described in the design notes:
// an Engine is not safe for concurrent use.
package seqidx

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shockdb/seqidx/internal/adapters"
	"github.com/shockdb/seqidx/internal/cache"
	"github.com/shockdb/seqidx/internal/config"
	"github.com/shockdb/seqidx/internal/coord"
	"github.com/shockdb/seqidx/internal/descriptor"
	"github.com/shockdb/seqidx/internal/errs"
	"github.com/shockdb/seqidx/internal/freshness"
	"github.com/shockdb/seqidx/internal/indexer"
	"github.com/shockdb/seqidx/internal/registry"
	"github.com/shockdb/seqidx/internal/scanner"
	"github.com/shockdb/seqidx/internal/store"
	"github.com/shockdb/seqidx/internal/telemetry"
)

// Metadata describes the resolved coordinates of a Subseq call,
// including the strand implied by a start > stop query.
type Metadata struct {
	ID     string
	Start  uint64
	Stop   uint64
	Strand int8
}

// Engine is an open index over one or more source files.
type Engine struct {
	store     *store.Store
	registry  *registry.Registry
	variant   descriptor.Variant
	cache     *cache.Cache
	log       *telemetry.Logger
	indexPath string
	clean     bool
}

// Open resolves inputs (a single directory, a single file, or an
// explicit list of files), builds or refreshes the index, and returns a
// ready-to-query Engine. Use Options to pass a pre-parsed
// config.Options, or Open with config.Default() for the documented
// defaults.
func Open(inputs []string, opts config.Options) (*Engine, error) {
	if len(inputs) == 0 {
		return nil, errs.PathInvalidf("no input files or directories given")
	}

	files, indexPath, err := resolveInputs(inputs, opts)
	if err != nil {
		return nil, err
	}

	log := telemetry.Discard()
	if opts.Debug {
		log = telemetry.New(nil, true)
		log.DumpDebug("index", "resolved engine options", opts)
	}

	ix := indexer.New(indexer.Options{
		Scanner:     opts.Scanner,
		Classifier:  opts.Classifier,
		IDTransform: opts.IDTransform,
		Lenient:     opts.Lenient,
		Debug:       opts.Debug,
		Log:         log,
	})

	ctl := &freshness.Controller{
		IndexPath:    indexPath,
		Files:        files,
		Indexer:      ix,
		ForceReindex: opts.Reindex,
		StoreArgs:    opts.StoreArgs,
		Log:          log,
	}
	res, err := ctl.Open()
	if err != nil {
		return nil, err
	}

	return &Engine{
		store:     res.Store,
		registry:  res.Registry,
		variant:   res.Variant,
		cache:     cache.New(opts.MaxOpen),
		log:       log,
		indexPath: indexPath,
		clean:     opts.Clean,
	}, nil
}

// resolveInputs implements the index-naming rules and the
// PathInvalid/NoMatchingFiles constructor contract.
func resolveInputs(inputs []string, opts config.Options) (files []string, indexPath string, err error) {
	glob := opts.Glob
	if glob == "" {
		glob = "*"
	}

	if len(inputs) == 1 {
		info, statErr := os.Stat(inputs[0])
		if statErr != nil {
			return nil, "", errs.PathInvalidf("%s: %v", inputs[0], statErr)
		}
		abs, err := filepath.Abs(inputs[0])
		if err != nil {
			return nil, "", errs.PathInvalidf("%s: %v", inputs[0], err)
		}
		if info.IsDir() {
			matches, err := filepath.Glob(filepath.Join(abs, glob))
			if err != nil {
				return nil, "", errs.PathInvalidf("globbing %s: %v", abs, err)
			}
			var only []string
			for _, m := range matches {
				if fi, err := os.Stat(m); err == nil && !fi.IsDir() {
					only = append(only, m)
				}
			}
			if len(only) == 0 {
				return nil, "", errs.NoMatchingFilesf("no files matching %q in %s", glob, abs)
			}
			sort.Strings(only)
			idxPath := filepath.Join(abs, "directory.index")
			if opts.IndexName != "" {
				idxPath = opts.IndexName
			}
			return only, idxPath, nil
		}
		idxPath := abs + ".index"
		if opts.IndexName != "" {
			idxPath = opts.IndexName
		}
		return []string{abs}, idxPath, nil
	}

	var abss []string
	for _, p := range inputs {
		if _, err := os.Stat(p); err != nil {
			return nil, "", errs.PathInvalidf("%s: %v", p, err)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, "", errs.PathInvalidf("%s: %v", p, err)
		}
		abss = append(abss, abs)
	}
	sorted := append([]string(nil), abss...)
	sort.Strings(sorted)
	sum := md5.Sum([]byte(strings.Join(sorted, "\x00")))
	idxPath := "fileset_" + hex.EncodeToString(sum[:]) + ".index"
	if opts.IndexName != "" {
		idxPath = opts.IndexName
	}
	return abss, idxPath, nil
}

// Close releases the Engine's file-handle cache and closes the
// persistent store. If Clean was set, the index file is deleted.
func (e *Engine) Close() error {
	e.cache.Close()
	err := e.store.Close()
	if e.clean {
		os.Remove(e.indexPath)
		os.Remove(e.indexPath + "-wal")
		os.Remove(e.indexPath + "-shm")
	}
	return err
}

func (e *Engine) descriptorFor(id string) (descriptor.Descriptor, error) {
	raw, ok, err := e.store.Get(id)
	if err != nil {
		return descriptor.Descriptor{}, err
	}
	if !ok {
		return descriptor.Descriptor{}, errs.UnknownIdf(id)
	}
	return descriptor.Unpack(e.variant, raw)
}

// Contains reports whether id is present in the index.
func (e *Engine) Contains(id string) bool {
	_, ok, _ := e.store.Get(id)
	return ok
}

// Length returns a record's total content length, excluding line
// terminators.
func (e *Engine) Length(id string) (uint64, error) {
	d, err := e.descriptorFor(id)
	if err != nil {
		return 0, err
	}
	return d.SeqLength, nil
}

// Path returns the absolute source-file path a record was indexed from.
func (e *Engine) Path(id string) (string, error) {
	d, err := e.descriptorFor(id)
	if err != nil {
		return "", err
	}
	p, ok := e.registry.Path(d.FileNo)
	if !ok {
		return "", errs.IoErrorf(nil, "file_no %d has no registered path", d.FileNo)
	}
	return p, nil
}

// Subseq extracts id's content bytes in [start, stop] (1-based,
// inclusive). A nil start and stop attempt compound-id parsing on id
// before falling back to the whole record.
func (e *Engine) Subseq(id string, start, stop *uint64) ([]byte, Metadata, error) {
	coreID := id
	qStart, qStop := start, stop
	if start == nil && stop == nil {
		core, a, b, ok, err := coord.ParseCompoundID(id)
		if err != nil {
			return nil, Metadata{}, err
		}
		if ok {
			coreID, qStart, qStop = core, &a, &b
		}
	}

	d, err := e.descriptorFor(coreID)
	if err != nil {
		return nil, Metadata{}, err
	}
	rng := coord.Resolve(qStart, qStop, d.SeqLength)

	path, ok := e.registry.Path(d.FileNo)
	if !ok {
		return nil, Metadata{}, errs.IoErrorf(nil, "file_no %d has no registered path", d.FileNo)
	}
	data, err := coord.Extract(e.cache, path, d, rng.Start, rng.Stop)
	if err != nil {
		return nil, Metadata{}, err
	}
	return data, Metadata{ID: coreID, Start: rng.Start, Stop: rng.Stop, Strand: rng.Strand}, nil
}

// reservedKeyPrefix marks the meta-keys that Ids/Stream must never
// surface as record identifiers.
const reservedKeyPrefix = "__"

func isReservedKey(key string) bool {
	return strings.HasPrefix(key, reservedKeyPrefix)
}

// IDIterator is a restartable, finite iterator over record ids, in the
// underlying store's order.
type IDIterator struct {
	cur *store.Cursor
}

// Next advances the iterator, skipping reserved meta-keys.
func (it *IDIterator) Next() (string, bool, error) {
	for {
		id, ok, err := it.cur.Next()
		if err != nil || !ok {
			return "", false, err
		}
		if isReservedKey(id) {
			continue
		}
		return id, true, nil
	}
}

// Close releases the iterator's underlying cursor.
func (it *IDIterator) Close() error { return it.cur.Close() }

// Ids returns a fresh iterator over every record id in the index.
func (e *Engine) Ids() (*IDIterator, error) {
	cur, err := e.store.IterateKeys()
	if err != nil {
		return nil, err
	}
	return &IDIterator{cur: cur}, nil
}

// StreamIterator is a single-shot iterator of (id, full payload) pairs.
type StreamIterator struct {
	ids *IDIterator
	eng *Engine
}

// Next advances the stream, returning the next record's id and full
// payload.
func (s *StreamIterator) Next() (string, []byte, bool, error) {
	id, ok, err := s.ids.Next()
	if err != nil || !ok {
		return "", nil, false, err
	}
	data, _, err := s.eng.Subseq(id, nil, nil)
	if err != nil {
		return "", nil, false, err
	}
	return id, data, true, nil
}

// Close releases the stream's underlying cursor.
func (s *StreamIterator) Close() error { return s.ids.Close() }

// Stream returns a single-shot iterator over every record's full
// payload.
func (e *Engine) Stream() (*StreamIterator, error) {
	ids, err := e.Ids()
	if err != nil {
		return nil, err
	}
	return &StreamIterator{ids: ids, eng: e}, nil
}

// MapAdapter returns a read-only, map-like facade over the index:
// Len/Get/Has/Keys backed by Subseq and Ids, with Put/Delete failing as
// ReadOnlyViolation.
func (e *Engine) MapAdapter() *adapters.Map {
	return adapters.NewMap(
		func(id string) ([]byte, bool, error) {
			data, _, err := e.Subseq(id, nil, nil)
			if err != nil {
				if ae, ok := errs.As(err); ok && ae.Kind == errs.UnknownId {
					return nil, false, nil
				}
				return nil, false, err
			}
			return data, true, nil
		},
		func() ([]string, error) {
			it, err := e.Ids()
			if err != nil {
				return nil, err
			}
			defer it.Close()
			var out []string
			for {
				id, ok, err := it.Next()
				if err != nil {
					return nil, err
				}
				if !ok {
					break
				}
				out = append(out, id)
			}
			return out, nil
		},
	)
}

// StreamAdapter returns a pull-style, single-shot (id, payload)
// iterator facade over Stream.
func (e *Engine) StreamAdapter() (*adapters.Stream, error) {
	it, err := e.Stream()
	if err != nil {
		return nil, err
	}
	return adapters.NewStream(it.Next), nil
}

// Scanner, Classifier, and IDTransform re-export the injected-strategy
// types so callers configuring an Engine never need to import the
// internal/scanner package directly.
type (
	Scanner     = scanner.Scanner
	Classifier  = scanner.Classifier
	IDTransform = scanner.IDTransform
)
