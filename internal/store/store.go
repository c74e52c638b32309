// Package store implements the persistent index store: an on-disk
// key→value mapping from record id to packed descriptor bytes,
// reopenable by an independent process as long as the codec variant and
// this persistence driver match.
//
// The on-disk artifact is a single SQLite file written with
// modernc.org/sqlite, a pure-Go driver — so the index never depends on
// a running database server, keeping it a single portable file. Writes
// made during an indexing pass are buffered in an in-memory ordered
// structure (google/btree) and flushed to the table in batched
// transactions, backed by a real embedded SQL engine instead of a
// bespoke binary format.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/google/btree"

	"github.com/shockdb/seqidx/internal/errs"

	_ "modernc.org/sqlite"
)

// Mode selects how Open treats the underlying file.
type Mode int

const (
	// ReadOnly opens an existing store for queries only; Put fails with
	// errs.ReadOnlyViolation.
	ReadOnly Mode = iota
	// CreateReadWrite creates the store if absent and allows Put.
	CreateReadWrite
)

// flushThreshold bounds how many buffered writes accumulate before an
// automatic flush, so a very long indexing pass doesn't hold unbounded
// memory.
const flushThreshold = 4096

type item struct {
	key   string
	value []byte
}

func (i item) Less(than btree.Item) bool { return i.key < than.(item).key }

// Store is the persistent index store.
type Store struct {
	path string
	mode Mode
	db   *sql.DB

	mu     sync.Mutex
	buffer *btree.BTree
}

// Open opens (or creates, in CreateReadWrite mode) the store file at
// path. It fails with errs.IndexUnavailable if the file cannot be
// opened or the schema cannot be ensured.
//
// dsnArgs, if non-empty, is a raw "key=value&key=value" query string
// appended to the sqlite DSN (e.g. "_pragma=busy_timeout(5000)"), for a
// caller that needs to tune the driver beyond this package's own
// defaults. At most one value is used; it exists as a variadic purely
// so existing callers that don't need it can omit it.
func Open(path string, mode Mode, dsnArgs ...string) (*Store, error) {
	if mode == ReadOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, errs.IndexUnavailablef(err, "index file %s is not accessible", path)
		}
	}
	var extra string
	if len(dsnArgs) > 0 {
		extra = dsnArgs[0]
	}
	dsn := path
	if mode == ReadOnly {
		dsn = fmt.Sprintf("file:%s?mode=ro&immutable=1", path)
		if extra != "" {
			dsn += "&" + extra
		}
	} else if extra != "" {
		dsn = fmt.Sprintf("file:%s?%s", path, extra)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.IndexUnavailablef(err, "opening index store %s", path)
	}
	if mode == CreateReadWrite {
		if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS records (id TEXT PRIMARY KEY, value BLOB NOT NULL)`); err != nil {
			db.Close()
			return nil, errs.IndexUnavailablef(err, "creating schema in %s", path)
		}
		if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA synchronous = NORMAL;`); err != nil {
			db.Close()
			return nil, errs.IndexUnavailablef(err, "setting pragmas on %s", path)
		}
	} else {
		// verify the schema exists for a read-only open against a file
		// that happens to exist but isn't one of our indexes.
		if _, err := db.Exec(`SELECT 1 FROM records LIMIT 0`); err != nil {
			db.Close()
			return nil, errs.IndexUnavailablef(err, "%s is not a valid index store", path)
		}
	}
	return &Store{path: path, mode: mode, db: db, buffer: btree.New(32)}, nil
}

// Put stores value under key. Only valid in CreateReadWrite mode.
func (s *Store) Put(key string, value []byte) error {
	if s.mode != CreateReadWrite {
		return errs.ReadOnlyViolationf("store.Put")
	}
	s.mu.Lock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.buffer.ReplaceOrInsert(item{key: key, value: cp})
	n := s.buffer.Len()
	s.mu.Unlock()

	if n >= flushThreshold {
		return s.Flush()
	}
	return nil
}

// Flush writes any buffered puts to the table in one transaction.
func (s *Store) Flush() error {
	s.mu.Lock()
	if s.buffer.Len() == 0 {
		s.mu.Unlock()
		return nil
	}
	pending := make([]item, 0, s.buffer.Len())
	s.buffer.Ascend(func(i btree.Item) bool {
		pending = append(pending, i.(item))
		return true
	})
	s.buffer.Clear(false)
	s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errs.IoErrorf(err, "beginning flush transaction")
	}
	stmt, err := tx.Prepare(`INSERT INTO records (id, value) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET value = excluded.value`)
	if err != nil {
		tx.Rollback()
		return errs.IoErrorf(err, "preparing flush statement")
	}
	defer stmt.Close()
	for _, it := range pending {
		if _, err := stmt.Exec(it.key, it.value); err != nil {
			tx.Rollback()
			return errs.IoErrorf(err, "flushing key %q", it.key)
		}
	}
	if err := tx.Commit(); err != nil {
		return errs.IoErrorf(err, "committing flush transaction")
	}
	return nil
}

// Get returns the value for key, checking the unflushed write buffer
// first so a reader never misses its own writer's recent puts.
func (s *Store) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	if v := s.buffer.Get(item{key: key}); v != nil {
		val := v.(item).value
		s.mu.Unlock()
		return val, true, nil
	}
	s.mu.Unlock()

	var val []byte
	err := s.db.QueryRow(`SELECT value FROM records WHERE id = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.IoErrorf(err, "reading key %q", key)
	}
	return val, true, nil
}

// Cursor is a restartable, lazy iterator over stored keys, in ascending
// id order.
type Cursor struct {
	rows *sql.Rows
}

// IterateKeys returns a Cursor over all keys, including reserved
// meta-keys (the caller is expected to filter those, as the query
// surface does).
func (s *Store) IterateKeys() (*Cursor, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT id FROM records ORDER BY id ASC`)
	if err != nil {
		return nil, errs.IoErrorf(err, "iterating keys")
	}
	return &Cursor{rows: rows}, nil
}

// Next advances the cursor, returning false when exhausted.
func (c *Cursor) Next() (string, bool, error) {
	if !c.rows.Next() {
		return "", false, c.rows.Err()
	}
	var id string
	if err := c.rows.Scan(&id); err != nil {
		return "", false, errs.IoErrorf(err, "scanning key")
	}
	return id, true, nil
}

// Close releases the cursor's underlying rows.
func (c *Cursor) Close() error { return c.rows.Close() }

// Close flushes and closes the store.
func (s *Store) Close() error {
	if s.mode == CreateReadWrite {
		if err := s.Flush(); err != nil {
			s.db.Close()
			return err
		}
	}
	return s.db.Close()
}

// CloseAborted closes the store without flushing and deletes its file
// (and any SQLite WAL/SHM sidecar files), per the "close on an aborted
// indexing pass is followed by an unlink" contract.
func (s *Store) CloseAborted() error {
	s.db.Close()
	os.Remove(s.path)
	os.Remove(s.path + "-wal")
	os.Remove(s.path + "-shm")
	return nil
}

// Path returns the store's underlying file path.
func (s *Store) Path() string { return s.path }
