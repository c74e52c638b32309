// Package registry maintains the in-memory bijection between small
// integer file numbers (embedded in every record descriptor) and
// absolute file paths. It is engine-owned and scoped to one
// engine instance — deliberately not a process-wide mutable registry
// (see DESIGN.md, "Global registry of file-number↔path").
package registry

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/shockdb/seqidx/internal/errs"
	"github.com/shockdb/seqidx/internal/store"
)

// metaPrefix and metaSuffix bracket the reserved __file_<n>__ meta-keys
// persisted alongside record descriptors.
const (
	metaPrefix = "__file_"
	metaSuffix = "__"
)

// Registry is a file_no ↔ absolute path bijection. It is not safe for
// concurrent use, matching the engine's single-threaded model.
type Registry struct {
	byPath map[string]uint8
	byNo   []string // byNo[n] is the path for file_no n
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byPath: map[string]uint8{}}
}

// Register assigns path the next free file_no, or returns its existing
// one if already registered.
func (r *Registry) Register(path string) (uint8, error) {
	if no, ok := r.byPath[path]; ok {
		return no, nil
	}
	if len(r.byNo) > 255 {
		return 0, fmt.Errorf("registry: cannot register more than 256 files")
	}
	no := uint8(len(r.byNo))
	r.byNo = append(r.byNo, path)
	r.byPath[path] = no
	return no, nil
}

// Path returns the absolute path for file_no, if registered.
func (r *Registry) Path(no uint8) (string, bool) {
	if int(no) >= len(r.byNo) {
		return "", false
	}
	return r.byNo[no], true
}

// FileNo returns the file_no for path, if registered.
func (r *Registry) FileNo(path string) (uint8, bool) {
	no, ok := r.byPath[path]
	return no, ok
}

// Paths returns all registered paths in file_no order.
func (r *Registry) Paths() []string {
	out := make([]string, len(r.byNo))
	copy(out, r.byNo)
	return out
}

// Len returns the number of registered files.
func (r *Registry) Len() int { return len(r.byNo) }

// metaKey returns the reserved meta-key for file_no n.
func metaKey(n int) string {
	return fmt.Sprintf("%s%d%s", metaPrefix, n, metaSuffix)
}

// Persist writes one reserved meta-key per registered file to s, so a
// reopening process can reconstruct the registry deterministically.
func (r *Registry) Persist(s *store.Store) error {
	for n, path := range r.byNo {
		if err := s.Put(metaKey(n), []byte(path)); err != nil {
			return err
		}
	}
	return nil
}

// Load reconstructs a Registry from an opened store's reserved
// __file_<n>__ meta-keys.
func Load(s *store.Store) (*Registry, error) {
	cur, err := s.IterateKeys()
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	r := New()
	found := map[int]string{}
	max := -1
	for {
		key, ok, err := cur.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if !strings.HasPrefix(key, metaPrefix) || !strings.HasSuffix(key, metaSuffix) {
			continue
		}
		numStr := strings.TrimSuffix(strings.TrimPrefix(key, metaPrefix), metaSuffix)
		n, err := strconv.Atoi(numStr)
		if err != nil {
			continue
		}
		val, ok, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		found[n] = string(val)
		if n > max {
			max = n
		}
	}
	if max < 0 {
		return r, nil
	}
	r.byNo = make([]string, max+1)
	for n, path := range found {
		r.byNo[n] = path
		r.byPath[path] = uint8(n)
	}
	return r, nil
}

// Manifest is an explicit, ordered fileset description loadable from
// YAML. It lets a caller pin file_no assignment order across
// environments where directory-listing order is not portable.
type Manifest struct {
	Files []ManifestFile `yaml:"files"`
}

// ManifestFile names one source file and an optional human alias
// (unused by the core, useful for a caller's own bookkeeping).
type ManifestFile struct {
	Path  string `yaml:"path"`
	Alias string `yaml:"alias,omitempty"`
}

// LoadManifest reads and parses a YAML fileset manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.PathInvalidf("reading manifest %s: %v", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errs.PathInvalidf("parsing manifest %s: %v", path, err)
	}
	return &m, nil
}

// NewFromManifest builds a Registry by registering every manifest entry
// in file order, so file_no assignment is deterministic and portable.
func NewFromManifest(m *Manifest) (*Registry, error) {
	r := New()
	for _, f := range m.Files {
		if _, err := r.Register(f.Path); err != nil {
			return nil, err
		}
	}
	return r, nil
}
