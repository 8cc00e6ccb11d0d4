// Package semantic owns nearest-neighbour search over embedded units. Two
// backends implement the same contract: a flat in-memory index persisted as a
// local snapshot, and a Qdrant collection for corpora that outgrow one.
package semantic

import (
	"context"

	"github.com/chocoworld/chocochat/engine/domain"
)

// SearchResult is one nearest-neighbour hit. Distance is cosine distance in
// [0, 2], ascending; 0 means an identical direction.
type SearchResult struct {
	Unit     domain.Unit `json:"unit"`
	Distance float32     `json:"distance"`
}

// Searcher is the read side used when answering questions.
type Searcher interface {
	// Search returns the k nearest units, most similar first. A k larger
	// than the corpus returns the whole corpus.
	Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error)
	// ListByKind enumerates every unit of one kind. This is a full walk,
	// not a similarity query: "list everything of type X" has no
	// meaningful nearest neighbours.
	ListByKind(ctx context.Context, kind domain.Kind) ([]domain.Unit, error)
	// Count reports the number of indexed units.
	Count(ctx context.Context) (int, error)
}

// VectorStore adds the build-time write side.
type VectorStore interface {
	Searcher
	Add(ctx context.Context, units []domain.Unit, vectors [][]float32) error
}
