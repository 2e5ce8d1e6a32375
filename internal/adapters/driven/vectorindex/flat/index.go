// Package flat provides an exact, brute-force L2 vector index. Vectors are
// addressed by insertion position; the caller keeps the position-to-id map.
package flat

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/viant/vec/search"

	"github.com/UceeCode/waec-ai/internal/core/domain"
	"github.com/UceeCode/waec-ai/internal/core/ports/driven"
)

const (
	magic      = "WQFX"
	version    = uint32(1)
	headerSize = 16
)

// Verify interface compliance.
var (
	_ driven.VectorIndex        = (*Index)(nil)
	_ driven.VectorIndexFactory = Factory{}
)

// Index is an in-memory flat index ranked by Euclidean distance.
type Index struct {
	mu   sync.RWMutex
	dim  int
	vecs []search.Float32s
}

// New creates an empty index for vectors of the given size.
func New(dimensions int) *Index {
	return &Index{dim: dimensions}
}

// Factory creates flat indexes.
type Factory struct{}

// NewIndex implements driven.VectorIndexFactory.
func (Factory) NewIndex(dimensions int) driven.VectorIndex {
	return New(dimensions)
}

// Add appends vectors; the first added gets position Len() before the call.
// Either every vector is added or none is.
func (i *Index) Add(vectors [][]float32) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for n, v := range vectors {
		if len(v) != i.dim {
			return fmt.Errorf("vector %d has %d dimensions, index has %d: %w", n, len(v), i.dim, domain.ErrDimensionMismatch)
		}
	}
	for _, v := range vectors {
		i.vecs = append(i.vecs, search.Float32s(slices.Clone(v)))
	}
	return nil
}

// Search returns up to k nearest positions, closest first. Ties keep
// insertion order.
func (i *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if k <= 0 || len(i.vecs) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w", len(query), i.dim, domain.ErrDimensionMismatch)
	}

	hits := make([]driven.VectorHit, len(i.vecs))
	for pos, v := range i.vecs {
		hits[pos] = driven.VectorHit{Position: pos, Distance: v.EuclideanDistance(query)}
	}
	slices.SortStableFunc(hits, func(a, b driven.VectorHit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vecs)
}

// Dimensions returns the vector size.
func (i *Index) Dimensions() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dim
}

// MarshalBinary encodes the index as: magic "WQFX", version(uint32),
// dim(uint32), n(uint32), then n*dim little-endian float32 values.
func (i *Index) MarshalBinary() ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]byte, headerSize+4*i.dim*len(i.vecs))
	copy(out, magic)
	binary.LittleEndian.PutUint32(out[4:], version)
	binary.LittleEndian.PutUint32(out[8:], uint32(i.dim))
	binary.LittleEndian.PutUint32(out[12:], uint32(len(i.vecs)))

	off := headerSize
	for _, v := range i.vecs {
		for _, f := range v {
			binary.LittleEndian.PutUint32(out[off:], math.Float32bits(f))
			off += 4
		}
	}
	return out, nil
}

// UnmarshalBinary replaces the index contents with the encoded data.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize || string(data[:4]) != magic {
		return fmt.Errorf("flat index: bad header: %w", domain.ErrCorruptIndex)
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != version {
		return fmt.Errorf("flat index: unsupported version %d: %w", v, domain.ErrCorruptIndex)
	}
	dim := int(binary.LittleEndian.Uint32(data[8:]))
	n := int(binary.LittleEndian.Uint32(data[12:]))
	// Bound dim and n by the payload before multiplying so a crafted header
	// cannot overflow the expected length.
	avail := (len(data) - headerSize) / 4
	switch {
	case dim == 0 && n > 0:
		return fmt.Errorf("flat index: %d vectors with zero dimensions: %w", n, domain.ErrCorruptIndex)
	case dim > 0 && n > avail/dim:
		return fmt.Errorf("flat index: header claims %d vectors of %d dimensions, payload holds %d floats: %w",
			n, dim, avail, domain.ErrCorruptIndex)
	}
	if want := headerSize + 4*dim*n; len(data) != want {
		return fmt.Errorf("flat index: expected %d bytes, got %d: %w", want, len(data), domain.ErrCorruptIndex)
	}

	vecs := make([]search.Float32s, n)
	off := headerSize
	for pos := range vecs {
		v := make(search.Float32s, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vecs[pos] = v
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.dim = dim
	i.vecs = vecs
	return nil
}
