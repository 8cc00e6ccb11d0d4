package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chocoworld/chocochat/engine/domain"
	"github.com/chocoworld/chocochat/engine/semantic"
	"github.com/chocoworld/chocochat/pkg/fn"
)

const (
	// EmbedBatchSize is the max texts per embedding request.
	EmbedBatchSize = 100
	// RebuiltSubject announces a finished index rebuild.
	RebuiltSubject = "chocochat.index.rebuilt"
)

// RebuiltEvent is published on RebuiltSubject after a rebuild lands, so
// running servers can swap in the fresh snapshot.
type RebuiltEvent struct {
	Count     int       `json:"count"`
	Dimension int       `json:"dimension"`
	At        time.Time `json:"at"`
}

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddedCorpus pairs the corpus with its embeddings, index-aligned.
type EmbeddedCorpus struct {
	Units   []domain.Unit
	Vectors [][]float32
}

// Validate rejects an empty corpus and any malformed unit before the
// pipeline spends money on embeddings.
var Validate fn.Stage[[]domain.Unit, []domain.Unit] = func(_ context.Context, units []domain.Unit) fn.Result[[]domain.Unit] {
	if len(units) == 0 {
		return fn.Err[[]domain.Unit](domain.ErrCorpusEmpty)
	}
	for i, u := range units {
		if err := domain.ValidateUnit(u); err != nil {
			return fn.Err[[]domain.Unit](fmt.Errorf("ingest: unit %d: %w", i, err))
		}
	}
	return fn.Ok(units)
}

// NewEmbed creates the embedding stage. Texts go out in batches of
// EmbedBatchSize so one oversized corpus doesn't blow a single request.
func NewEmbed(client Embedder) fn.Stage[[]domain.Unit, EmbeddedCorpus] {
	return func(ctx context.Context, units []domain.Unit) fn.Result[EmbeddedCorpus] {
		vectors := make([][]float32, 0, len(units))
		for i := 0; i < len(units); i += EmbedBatchSize {
			end := i + EmbedBatchSize
			if end > len(units) {
				end = len(units)
			}
			texts := make([]string, end-i)
			for j, u := range units[i:end] {
				texts[j] = u.Text
			}
			batch, err := client.EmbedBatch(ctx, texts)
			if err != nil {
				return fn.Err[EmbeddedCorpus](fmt.Errorf("ingest: embed batch at %d: %w", i, err))
			}
			vectors = append(vectors, batch...)
		}
		if len(vectors) != len(units) {
			return fn.Err[EmbeddedCorpus](fmt.Errorf("ingest: %d units but %d embeddings", len(units), len(vectors)))
		}
		return fn.Ok(EmbeddedCorpus{Units: units, Vectors: vectors})
	}
}

// NewStore creates the storage stage, writing into any vector backend.
func NewStore(store semantic.VectorStore) fn.Stage[EmbeddedCorpus, int] {
	return func(ctx context.Context, c EmbeddedCorpus) fn.Result[int] {
		if err := store.Add(ctx, c.Units, c.Vectors); err != nil {
			return fn.Err[int](fmt.Errorf("ingest: store: %w", err))
		}
		return fn.Ok(len(c.Units))
	}
}

// loggedTap logs entry and duration of a stage.
func loggedTap[T any](name string, log *slog.Logger) fn.Stage[T, T] {
	return func(ctx context.Context, t T) fn.Result[T] {
		log.Info("stage.enter", "stage", name)
		start := time.Now()
		defer func() {
			log.Info("stage.exit", "stage", name, "duration", time.Since(start))
		}()
		return fn.Ok(t)
	}
}

// NewPipeline composes validate → embed → store with tracing and logging.
// The embed stage retries transient failures before the whole rebuild is
// abandoned. The result is the number of stored units.
func NewPipeline(client Embedder, store semantic.VectorStore, log *slog.Logger) fn.Stage[[]domain.Unit, int] {
	return newPipeline(client, store, log, fn.DefaultRetry)
}

func newPipeline(client Embedder, store semantic.VectorStore, log *slog.Logger, retry fn.RetryOpts) fn.Stage[[]domain.Unit, int] {
	if log == nil {
		log = slog.Default()
	}
	embed := fn.RetryStage(retry, NewEmbed(client))
	validated := fn.Then(loggedTap[[]domain.Unit]("validate", log), fn.Traced("ingest.validate", Validate))
	embedded := fn.Then(validated, fn.Then(loggedTap[[]domain.Unit]("embed", log), fn.Traced("ingest.embed", embed)))
	stored := fn.Then(embedded, fn.Then(loggedTap[EmbeddedCorpus]("store", log), fn.Traced("ingest.store", NewStore(store))))
	return stored
}
