package main

import (
	"context"
	"sync/atomic"

	"github.com/chocoworld/chocochat/engine/domain"
	"github.com/chocoworld/chocochat/engine/semantic"
)

// indexHolder serves searches from the current snapshot and swaps in a new
// one atomically on reload. Before the first successful load every call
// reports ErrNotReady.
type indexHolder struct {
	ptr atomic.Pointer[semantic.FlatIndex]
}

func (h *indexHolder) reload(dir string, verify bool) error {
	idx, err := semantic.LoadSnapshot(dir, verify)
	if err != nil {
		return err
	}
	h.ptr.Store(idx)
	return nil
}

func (h *indexHolder) Search(ctx context.Context, vector []float32, k int) ([]semantic.SearchResult, error) {
	idx := h.ptr.Load()
	if idx == nil {
		return nil, domain.ErrNotReady
	}
	return idx.Search(ctx, vector, k)
}

func (h *indexHolder) ListByKind(ctx context.Context, kind domain.Kind) ([]domain.Unit, error) {
	idx := h.ptr.Load()
	if idx == nil {
		return nil, domain.ErrNotReady
	}
	return idx.ListByKind(ctx, kind)
}

func (h *indexHolder) Count(ctx context.Context) (int, error) {
	idx := h.ptr.Load()
	if idx == nil {
		return 0, domain.ErrNotReady
	}
	return idx.Count(ctx)
}
