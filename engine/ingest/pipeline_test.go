package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/chocoworld/chocochat/engine/domain"
	"github.com/chocoworld/chocochat/engine/semantic"
	"github.com/chocoworld/chocochat/pkg/fn"
)

type fakeEmbedder struct {
	calls     int
	batches   [][]string
	err       error
	failFirst int // fail this many calls before succeeding
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.batches = append(f.batches, texts)
	if f.failFirst > 0 {
		f.failFirst--
		return nil, errors.New("transient")
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1, 0}
	}
	return out, nil
}

func faqUnits(n int) []domain.Unit {
	units := make([]domain.Unit, n)
	for i := range units {
		units[i] = domain.Unit{
			Text: fmt.Sprintf("❓ 질문: q%d\n📝 답변: a%d", i, i),
			Kind: domain.KindFAQ,
			Attrs: map[string]string{
				domain.AttrFAQID:    fmt.Sprint(i + 1),
				domain.AttrCategory: "일반",
			},
		}
	}
	return units
}

func TestPipeline_StoresAllUnits(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := semantic.NewFlatIndex()
	pipeline := NewPipeline(embedder, store, slog.Default())

	n, err := pipeline(context.Background(), faqUnits(7)).Unwrap()
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if n != 7 {
		t.Errorf("stored %d units, want 7", n)
	}
	count, _ := store.Count(context.Background())
	if count != 7 {
		t.Errorf("index holds %d units, want 7", count)
	}
}

func TestPipeline_EmptyCorpus(t *testing.T) {
	pipeline := NewPipeline(&fakeEmbedder{}, semantic.NewFlatIndex(), slog.Default())

	_, err := pipeline(context.Background(), nil).Unwrap()
	if !errors.Is(err, domain.ErrCorpusEmpty) {
		t.Fatalf("got %v, want ErrCorpusEmpty", err)
	}
}

func TestPipeline_InvalidUnitShortCircuits(t *testing.T) {
	embedder := &fakeEmbedder{}
	pipeline := NewPipeline(embedder, semantic.NewFlatIndex(), slog.Default())

	units := []domain.Unit{{Text: "", Kind: domain.KindProduct}}
	_, err := pipeline(context.Background(), units).Unwrap()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if embedder.calls != 0 {
		t.Errorf("embedder called %d times after validation failure", embedder.calls)
	}
}

func TestNewEmbed_Batches(t *testing.T) {
	embedder := &fakeEmbedder{}
	stage := NewEmbed(embedder)

	units := faqUnits(EmbedBatchSize*2 + 5)
	c, err := stage(context.Background(), units).Unwrap()
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if embedder.calls != 3 {
		t.Errorf("got %d batches, want 3", embedder.calls)
	}
	if len(embedder.batches[2]) != 5 {
		t.Errorf("last batch size = %d, want 5", len(embedder.batches[2]))
	}
	if len(c.Vectors) != len(units) {
		t.Errorf("got %d vectors for %d units", len(c.Vectors), len(units))
	}
}

func TestPipeline_RetriesTransientEmbedFailure(t *testing.T) {
	embedder := &fakeEmbedder{failFirst: 1}
	store := semantic.NewFlatIndex()
	retry := fn.RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond}
	pipeline := newPipeline(embedder, store, slog.Default(), retry)

	n, err := pipeline(context.Background(), faqUnits(3)).Unwrap()
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if n != 3 {
		t.Errorf("stored %d units, want 3", n)
	}
	if embedder.calls != 2 {
		t.Errorf("embedder called %d times, want a retry after the failure", embedder.calls)
	}
}

func TestNewEmbed_UpstreamError(t *testing.T) {
	sentinel := errors.New("boom")
	stage := NewEmbed(&fakeEmbedder{err: sentinel})

	_, err := stage(context.Background(), faqUnits(2)).Unwrap()
	if !errors.Is(err, sentinel) {
		t.Fatalf("got %v, want wrapped boom", err)
	}
}
