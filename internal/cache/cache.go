// Package cache implements the engine's file-handle LRU cache: a
// bounded associative cache of open *os.File handles keyed by absolute
// path, batch-evicting the least-recently-used third on overflow rather
// than evicting one-in-one-out, to amortize eviction cost over many
// misses. Grounded on the container/list-based LRU block cache pattern
// used elsewhere in the reference corpus, adapted here to hold file
// handles instead of byte blocks.
package cache

import (
	"container/list"
	"os"

	"github.com/shockdb/seqidx/internal/errs"
)

// entry is one cached handle; recency is tracked purely by its position
// in the LRU list (front = most recently used), per its monotone
// recency counter requirement — realized here as list position instead
// of an explicit counter field, the idiomatic container/list idiom.
type entry struct {
	path string
	file *os.File
}

// Cache is a bounded, single-threaded LRU cache of open file handles.
// Not safe for concurrent use, matching the engine's single-threaded
// model.
type Cache struct {
	capacity int
	ll       *list.List // front = most recently used
	index    map[string]*list.Element
}

// New returns a Cache with the given capacity (file-handle count). A
// capacity of 0 or less defaults to 32, the engine's default max_open.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 32
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Acquire returns the open handle for path, opening it if absent. A hit
// bumps path to most-recently-used. A miss that would overflow capacity
// first evicts ⌈capacity/3⌉ least-recently-used handles in one batch.
func (c *Cache) Acquire(path string) (*os.File, error) {
	if el, ok := c.index[path]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*entry).file, nil
	}

	if len(c.index) >= c.capacity {
		c.evictBatch()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.IoErrorf(err, "opening %s", path)
	}
	el := c.ll.PushFront(&entry{path: path, file: f})
	c.index[path] = el
	return f, nil
}

// evictBatch closes and removes the ⌈capacity/3⌉ least-recently-used
// entries.
func (c *Cache) evictBatch() {
	n := (c.capacity + 2) / 3
	for i := 0; i < n; i++ {
		el := c.ll.Back()
		if el == nil {
			return
		}
		e := el.Value.(*entry)
		e.file.Close()
		delete(c.index, e.path)
		c.ll.Remove(el)
	}
}

// Len returns the number of handles currently open.
func (c *Cache) Len() int { return len(c.index) }

// Close closes every cached handle and empties the cache.
func (c *Cache) Close() error {
	var first error
	for el := c.ll.Front(); el != nil; el = el.Next() {
		if err := el.Value.(*entry).file.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.ll.Init()
	c.index = make(map[string]*list.Element)
	return first
}
