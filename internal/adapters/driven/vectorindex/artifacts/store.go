// Package artifacts persists question index generations on the local
// filesystem.
//
// Each generation lives in its own directory under generations/ and holds
// the serialised index, the position-to-id map and a manifest. A generation
// is written under a temporary name and renamed into place, then the CURRENT
// file is atomically replaced to point at it. Readers follow CURRENT, so they
// always see a complete index and id map from the same build.
package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
	"github.com/UceeCode/waec-ai/internal/logger"
)

// File names inside a generation directory.
const (
	IndexFile    = "question_index.bin"
	IDMapFile    = "question_id_map.json"
	ManifestFile = "manifest.json"

	currentFile    = "CURRENT"
	generationsDir = "generations"
	tmpPrefix      = ".tmp-"

	defaultKeep = 2
)

// Verify interface compliance.
var _ driven.IndexArtifactStore = (*Store)(nil)

// manifest describes a generation.
type manifest struct {
	Generation string    `json:"generation"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	Entries    int       `json:"entries"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store implements driven.IndexArtifactStore on a directory.
type Store struct {
	dir  string
	keep int
}

// Option configures a Store.
type Option func(*Store)

// WithKeep sets how many generations are retained, including the current
// one. Values below 1 are ignored.
func WithKeep(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.keep = n
		}
	}
}

// New creates a Store rooted at dir. If dir is empty, defaults to
// ~/.waec/index.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".waec", "index")
	}
	if err := os.MkdirAll(filepath.Join(dir, generationsDir), 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	s := &Store{dir: dir, keep: defaultKeep}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load returns the generation CURRENT points at.
func (s *Store) Load(_ context.Context) (*driven.IndexArtifacts, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, currentFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading current pointer: %w", err)
	}
	generation := strings.TrimSpace(string(raw))
	if generation == "" {
		return nil, fmt.Errorf("empty current pointer: %w", domain.ErrCorruptIndex)
	}

	genDir := filepath.Join(s.dir, generationsDir, generation)

	var m manifest
	if err := readJSON(filepath.Join(genDir, ManifestFile), &m); err != nil {
		return nil, err
	}
	var ids []string
	if err := readJSON(filepath.Join(genDir, IDMapFile), &ids); err != nil {
		return nil, err
	}
	index, err := os.ReadFile(filepath.Join(genDir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v: %w", IndexFile, err, domain.ErrCorruptIndex)
	}
	if len(ids) != m.Entries {
		return nil, fmt.Errorf("id map has %d entries, manifest says %d: %w", len(ids), m.Entries, domain.ErrCorruptIndex)
	}

	return &driven.IndexArtifacts{
		Generation: generation,
		Index:      index,
		IDMap:      ids,
		Model:      m.Model,
		Dimensions: m.Dimensions,
		CreatedAt:  m.CreatedAt,
	}, nil
}

// Save writes a new generation and publishes it.
func (s *Store) Save(_ context.Context, a driven.IndexArtifacts) (string, error) {
	generation := uuid.NewString()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	root := filepath.Join(s.dir, generationsDir)
	tmpDir := filepath.Join(root, tmpPrefix+generation)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("creating generation directory: %w", err)
	}
	published := false
	defer func() {
		if !published {
			_ = os.RemoveAll(tmpDir)
		}
	}()

	ids := a.IDMap
	if ids == nil {
		ids = []string{}
	}
	m := manifest{
		Generation: generation,
		Model:      a.Model,
		Dimensions: a.Dimensions,
		Entries:    len(ids),
		CreatedAt:  a.CreatedAt,
	}

	if err := writeFile(filepath.Join(tmpDir, IndexFile), a.Index); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(tmpDir, IDMapFile), ids); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(tmpDir, ManifestFile), m); err != nil {
		return "", err
	}

	if err := os.Rename(tmpDir, filepath.Join(root, generation)); err != nil {
		return "", fmt.Errorf("publishing generation: %w", err)
	}
	published = true

	if err := s.setCurrent(generation); err != nil {
		_ = os.RemoveAll(filepath.Join(root, generation))
		return "", err
	}

	s.prune(generation)
	logger.Debug("published index generation %s (%d entries)", generation, m.Entries)
	return generation, nil
}

// setCurrent atomically replaces the CURRENT pointer.
func (s *Store) setCurrent(generation string) error {
	tmp := filepath.Join(s.dir, currentFile+tmpPrefix+generation)
	if err := writeFile(tmp, []byte(generation+"\n")); err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, currentFile)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("updating current pointer: %w", err)
	}
	return nil
}

// prune removes all but the newest keep generations. The current generation
// is never removed. Failures are logged and otherwise ignored.
func (s *Store) prune(current string) {
	root := filepath.Join(s.dir, generationsDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		logger.Warn("listing index generations: %v", err)
		return
	}

	type gen struct {
		name    string
		created time.Time
	}
	var gens []gen
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), tmpPrefix) || e.Name() == current {
			continue
		}
		var m manifest
		if err := readJSON(filepath.Join(root, e.Name(), ManifestFile), &m); err != nil {
			// Unreadable generations are never published again.
			gens = append(gens, gen{name: e.Name()})
			continue
		}
		gens = append(gens, gen{name: e.Name(), created: m.CreatedAt})
	}

	sort.Slice(gens, func(i, j int) bool { return gens[i].created.After(gens[j].created) })
	for i, g := range gens {
		if i < s.keep-1 {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, g.name)); err != nil {
			logger.Warn("removing index generation %s: %v", g.name, err)
		}
	}
}

// Generations lists the generation ids on disk in no particular order.
func (s *Store) Generations() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, generationsDir))
	if err != nil {
		return nil, fmt.Errorf("listing index generations: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), tmpPrefix) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, data)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %v: %w", filepath.Base(path), err, domain.ErrCorruptIndex)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %v: %w", filepath.Base(path), err, domain.ErrCorruptIndex)
	}
	return nil
}
