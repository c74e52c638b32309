// Package freshness implements the engine's freshness controller
// decide on open whether the persistent index is stale, rebuild
// only what changed, and guard the rebuild with a crash-recovery
// sentinel.
package freshness

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/shockdb/seqidx/internal/descriptor"
	"github.com/shockdb/seqidx/internal/errs"
	"github.com/shockdb/seqidx/internal/indexer"
	"github.com/shockdb/seqidx/internal/registry"
	"github.com/shockdb/seqidx/internal/store"
	"github.com/shockdb/seqidx/internal/telemetry"
)

// Reserved meta-keys for the __codec__/__sentinel__ contract.
const (
	codecKey      = "__codec__"
	sentinelKey   = "__sentinel__"
	sentinelValue = "in_progress"
)

// Controller drives one engine's open/rebuild decision.
type Controller struct {
	IndexPath    string
	Files        []string // absolute source paths, registry order
	Indexer      *indexer.Indexer
	ForceReindex bool
	StoreArgs    string // raw sqlite DSN query string, passed through to store.Open
	Log          *telemetry.Logger
}

// Result is what Open hands back to the caller: an opened (read-only)
// store, the reconstructed registry, and the codec variant in force.
type Result struct {
	Store    *store.Store
	Registry *registry.Registry
	Variant  descriptor.Variant
}

// Open implements the freshness decision and rebuild algorithm.
func (c *Controller) Open() (*Result, error) {
	info, statErr := os.Stat(c.IndexPath)
	absent := statErr != nil
	var indexMtime time.Time
	if !absent {
		indexMtime = info.ModTime()
	}

	if c.ForceReindex && !absent {
		removeIndexFiles(c.IndexPath)
		absent = true
	}

	if !absent && wasLeftInProgress(c.IndexPath) {
		if c.Log != nil {
			c.Log.Warn("index", "discarding index left in_progress by a crashed build", map[string]interface{}{
				"path": c.IndexPath,
			})
		}
		removeIndexFiles(c.IndexPath)
		absent = true
	}

	var updated []string
	if absent {
		updated = c.Files
	} else {
		updated = c.staleFiles(indexMtime)
	}

	if absent || len(updated) > 0 {
		return c.rebuild(absent, updated)
	}

	s, err := store.Open(c.IndexPath, store.ReadOnly, c.StoreArgs)
	if err != nil {
		return nil, err
	}
	reg, err := registry.Load(s)
	if err != nil {
		s.Close()
		return nil, err
	}
	variant, err := loadVariant(s)
	if err != nil {
		s.Close()
		return nil, err
	}
	return &Result{Store: s, Registry: reg, Variant: variant}, nil
}

func (c *Controller) staleFiles(indexMtime time.Time) []string {
	var updated []string
	for _, f := range c.Files {
		fi, err := os.Stat(f)
		if err != nil {
			continue
		}
		if fi.ModTime().After(indexMtime) {
			updated = append(updated, f)
		}
	}
	return updated
}

// rebuild performs a full build (absent index) or a partial rebuild
// (only the updated files) and returns the reopened read-only result.
func (c *Controller) rebuild(full bool, updated []string) (*Result, error) {
	var reg *registry.Registry
	var variant descriptor.Variant
	var err error

	// A full build starts from nothing, so it is built under a
	// throwaway name and only linked in under IndexPath once it is
	// known-good: a crash mid-build then leaves no index at all rather
	// than a half-written one at the real path. A partial rebuild
	// mutates the existing file in place (copying a large index just to
	// rebuild a handful of records would be wasteful), and relies on the
	// in_progress sentinel for crash recovery instead.
	buildPath := c.IndexPath
	if full {
		buildPath = fmt.Sprintf("%s.build-%s", c.IndexPath, uuid.New().String())
	}

	rw, err := store.Open(buildPath, store.CreateReadWrite, c.StoreArgs)
	if err != nil {
		return nil, err
	}
	abort := func() {
		rw.CloseAborted()
		if full {
			removeIndexFiles(buildPath)
		}
	}

	if full {
		reg = registry.New()
		for _, f := range c.Files {
			if _, err := reg.Register(f); err != nil {
				abort()
				return nil, err
			}
		}
		variant = descriptor.Select(maxFileSize(c.Files))
	} else {
		reg, err = registry.Load(rw)
		if err != nil {
			abort()
			return nil, err
		}
		for _, f := range c.Files {
			if _, err := reg.Register(f); err != nil {
				abort()
				return nil, err
			}
		}
		variant, err = loadVariant(rw)
		if err != nil {
			abort()
			return nil, err
		}
	}

	if err := rw.Put(sentinelKey, []byte(sentinelValue)); err != nil {
		abort()
		return nil, err
	}
	if err := rw.Put(codecKey, []byte(variant.String())); err != nil {
		abort()
		return nil, err
	}
	if err := reg.Persist(rw); err != nil {
		abort()
		return nil, err
	}

	for _, f := range updated {
		fileNo, ok := reg.FileNo(f)
		if !ok {
			abort()
			return nil, errs.PathInvalidf("file %s was not registered", f)
		}
		if _, err := c.Indexer.IndexFile(f, fileNo, variant, rw); err != nil {
			abort()
			return nil, err
		}
	}

	if err := rw.Put(sentinelKey, []byte("done")); err != nil {
		abort()
		return nil, err
	}
	if err := rw.Close(); err != nil {
		if full {
			removeIndexFiles(buildPath)
		}
		return nil, err
	}

	if full {
		if err := os.Rename(buildPath, c.IndexPath); err != nil {
			removeIndexFiles(buildPath)
			return nil, errs.IoErrorf(err, "linking built index into place")
		}
		removeIndexFiles(buildPath)
	}

	ro, err := store.Open(c.IndexPath, store.ReadOnly, c.StoreArgs)
	if err != nil {
		return nil, err
	}
	return &Result{Store: ro, Registry: reg, Variant: variant}, nil
}

func loadVariant(s *store.Store) (descriptor.Variant, error) {
	val, ok, err := s.Get(codecKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errs.IndexUnavailablef(nil, "index is missing its %s meta-key", codecKey)
	}
	return descriptor.ParseVariant(string(val))
}

func wasLeftInProgress(path string) bool {
	s, err := store.Open(path, store.ReadOnly)
	if err != nil {
		return false
	}
	defer s.Close()
	val, ok, err := s.Get(sentinelKey)
	if err != nil || !ok {
		return false
	}
	return string(val) == sentinelValue
}

func removeIndexFiles(path string) {
	os.Remove(path)
	os.Remove(path + "-wal")
	os.Remove(path + "-shm")
}

func maxFileSize(files []string) int64 {
	var max int64
	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil {
			continue
		}
		if fi.Size() > max {
			max = fi.Size()
		}
	}
	return max
}
