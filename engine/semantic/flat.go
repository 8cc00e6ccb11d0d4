package semantic

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/chocoworld/chocochat/engine/domain"
)

// FlatIndex is a brute-force cosine index over the whole corpus. It is built
// once, read-only afterwards; a rebuild produces a new value that replaces
// the old one wholesale.
type FlatIndex struct {
	mu        sync.RWMutex
	dimension int
	units     []domain.Unit
	vectors   [][]float32 // stored L2-normalized
}

// NewFlatIndex creates an empty index. The dimension is fixed by the first
// Add.
func NewFlatIndex() *FlatIndex { return &FlatIndex{} }

// Add appends units with their embeddings. Vectors are normalized on entry
// so Search reduces to a dot product.
func (f *FlatIndex) Add(_ context.Context, units []domain.Unit, vectors [][]float32) error {
	if len(units) != len(vectors) {
		return fmt.Errorf("semantic: %d units but %d vectors", len(units), len(vectors))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, v := range vectors {
		if f.dimension == 0 {
			f.dimension = len(v)
		}
		if len(v) != f.dimension {
			return fmt.Errorf("semantic: vector %d has dimension %d, index has %d", i, len(v), f.dimension)
		}
		f.vectors = append(f.vectors, normalize(v))
		f.units = append(f.units, units[i])
	}
	return nil
}

// Search returns the k nearest units by cosine distance, ascending. Ties
// keep insertion order so repeated builds rank identically.
func (f *FlatIndex) Search(_ context.Context, vector []float32, k int) ([]SearchResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if k <= 0 {
		return nil, nil
	}
	q := normalize(vector)
	results := make([]SearchResult, len(f.vectors))
	for i, v := range f.vectors {
		results[i] = SearchResult{Unit: f.units[i], Distance: 1 - dot(q, v)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// ListByKind walks the whole corpus and returns units of the given kind in
// insertion order.
func (f *FlatIndex) ListByKind(_ context.Context, kind domain.Kind) ([]domain.Unit, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []domain.Unit
	for _, u := range f.units {
		if u.Kind == kind {
			out = append(out, u)
		}
	}
	return out, nil
}

// Count reports the number of indexed units.
func (f *FlatIndex) Count(_ context.Context) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.units), nil
}

// Dimension returns the vector dimension, 0 while empty.
func (f *FlatIndex) Dimension() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dimension
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// normalize returns v scaled to unit length. The zero vector is returned
// as-is; it is equidistant from everything.
func normalize(v []float32) []float32 {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	if sq == 0 {
		return v
	}
	inv := float32(1 / math.Sqrt(sq))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}
